package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidstream/backend/internal/apperror"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testConfig() TokenConfig {
	return TokenConfig{
		Issuer:        "vidstream-test",
		AccessSecret:  "access-secret-0123456789",
		RefreshSecret: "refresh-secret-0123456789",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
}

func newTestManager(t *testing.T) (*Manager, *InMemoryCredentialStore, *clock) {
	t.Helper()
	store := NewInMemoryCredentialStore()
	store.AddUser("user-1")
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}

	manager, err := NewManager(testConfig(), store, WithClock(clk.Now))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager, store, clk
}

func TestManagerIssueAndVerify(t *testing.T) {
	manager, store, _ := newTestManager(t)

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}
	if got := store.Stored("user-1"); got != tokens.RefreshToken {
		t.Fatalf("expected refresh token to be stored verbatim")
	}

	userID, err := manager.VerifyAccess(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}

	if _, err := manager.VerifyAccess(tokens.RefreshToken); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Fatalf("refresh token must not verify as access token, got %v", err)
	}
}

func TestManagerIssueOverwritesPreviousSession(t *testing.T) {
	manager, _, _ := newTestManager(t)
	ctx := context.Background()

	first, err := manager.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := manager.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue again: %v", err)
	}
	if first.RefreshToken == second.RefreshToken {
		t.Fatal("expected distinct refresh tokens for repeated issues")
	}

	if _, err := manager.Rotate(ctx, first.RefreshToken); !errors.Is(err, apperror.ErrRevokedOrStale) {
		t.Fatalf("expected the first session to be stale, got %v", err)
	}
}

func TestManagerIssueValidation(t *testing.T) {
	manager, _, _ := newTestManager(t)
	if _, err := manager.Issue(context.Background(), ""); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty user id, got %v", err)
	}
	if _, err := manager.Issue(context.Background(), "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
}

func TestManagerRotateSucceedsOnce(t *testing.T) {
	manager, store, _ := newTestManager(t)
	ctx := context.Background()

	tokens, err := manager.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rotated, err := manager.Rotate(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected a new refresh token")
	}
	if store.Stored("user-1") != rotated.RefreshToken {
		t.Fatal("expected rotated token to replace the stored one")
	}

	if _, err := manager.Rotate(ctx, tokens.RefreshToken); !errors.Is(err, apperror.ErrRevokedOrStale) {
		t.Fatalf("expected reuse to be rejected as stale, got %v", err)
	}
	if _, err := manager.Rotate(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("expected the new token to rotate, got %v", err)
	}
}

func TestManagerRotateConcurrentlyOnlyOneWins(t *testing.T) {
	manager, _, _ := newTestManager(t)
	ctx := context.Background()

	tokens, err := manager.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.Rotate(ctx, tokens.RefreshToken); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful rotation, got %d", successes)
	}
}

func TestManagerRotateFailures(t *testing.T) {
	manager, store, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := manager.Rotate(ctx, ""); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for empty token, got %v", err)
	}
	if _, err := manager.Rotate(ctx, "not-a-jwt"); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for garbage, got %v", err)
	}

	tokens, err := manager.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := manager.Rotate(ctx, tokens.AccessToken); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Fatalf("access token must not rotate, got %v", err)
	}

	store.RemoveUser("user-1")
	if _, err := manager.Rotate(ctx, tokens.RefreshToken); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for a deleted user, got %v", err)
	}
}

func TestManagerRejectsExpiredTokens(t *testing.T) {
	manager, _, clk := newTestManager(t)
	ctx := context.Background()

	tokens, err := manager.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clk.Advance(16 * time.Minute)
	if _, err := manager.VerifyAccess(tokens.AccessToken); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Fatalf("expected expired access token to be rejected, got %v", err)
	}

	clk.Advance(24 * time.Hour)
	if _, err := manager.Rotate(ctx, tokens.RefreshToken); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Fatalf("expected expired refresh token to be rejected, got %v", err)
	}
}

func TestManagerRejectsForeignSignatures(t *testing.T) {
	manager, _, clk := newTestManager(t)

	forge := func(method jwt.SigningMethod, key any) string {
		token := jwt.NewWithClaims(method, claims{
			Kind: kindAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "vidstream-test",
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(clk.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return signed
	}

	tests := map[string]string{
		"wrong secret":   forge(jwt.SigningMethodHS256, []byte("some-other-secret-value")),
		"refresh secret": forge(jwt.SigningMethodHS256, []byte(testConfig().RefreshSecret)),
		"different alg":  forge(jwt.SigningMethodHS512, []byte(testConfig().AccessSecret)),
		"unsigned":       forge(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := manager.VerifyAccess(token); !errors.Is(err, apperror.ErrUnauthenticated) {
				t.Fatalf("expected rejection, got %v", err)
			}
		})
	}
}

func TestManagerRevoke(t *testing.T) {
	manager, store, _ := newTestManager(t)
	ctx := context.Background()

	tokens, err := manager.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := manager.Revoke(ctx, "user-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if store.Stored("user-1") != "" {
		t.Fatal("expected stored token to be cleared")
	}
	if _, err := manager.Rotate(ctx, tokens.RefreshToken); !errors.Is(err, apperror.ErrRevokedOrStale) {
		t.Fatalf("expected revoked token to be stale, got %v", err)
	}
}

func TestNewManagerValidatesSecrets(t *testing.T) {
	store := NewInMemoryCredentialStore()

	short := testConfig()
	short.AccessSecret = "short"
	if _, err := NewManager(short, store); err == nil || !strings.Contains(err.Error(), "at least") {
		t.Fatalf("expected short secret to be rejected, got %v", err)
	}

	same := testConfig()
	same.RefreshSecret = same.AccessSecret
	if _, err := NewManager(same, store); err == nil {
		t.Fatal("expected identical secrets to be rejected")
	}

	if _, err := NewManager(testConfig(), nil); err == nil {
		t.Fatal("expected nil store to be rejected")
	}
}
