package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestSpansShareTraceAndNest(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, slog.LevelDebug))

	ctx, outer := StartSpan(ctx, "outer")
	traceID := TraceIDFromContext(ctx)
	outerID := SpanIDFromContext(ctx)
	require.NotEmpty(t, traceID)

	innerCtx, inner := StartSpan(ctx, "inner")
	assert.Equal(t, traceID, TraceIDFromContext(innerCtx))
	inner.Fail(errors.New("boom"))
	inner.End()
	outer.End()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var failed, done map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &failed))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &done))

	assert.Equal(t, "span failed", failed["msg"])
	assert.Equal(t, "boom", failed["error"])
	assert.Equal(t, outerID, failed["parent_span_id"])
	assert.Equal(t, traceID, failed["trace_id"])

	assert.Equal(t, "span completed", done["msg"])
	assert.Equal(t, "outer", done["span_name"])
	assert.NotContains(t, done, "parent_span_id")
}
