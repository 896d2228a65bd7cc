// Package storage keeps uploaded media in an object store and hands back
// references to it.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/vidstream/backend/internal/apperror"
	"github.com/vidstream/backend/internal/logging"
	"github.com/vidstream/backend/internal/metrics"
	"github.com/vidstream/backend/internal/models"
)

// MediaStore persists media files. Store returns a reference with a public
// URL and an opaque storage id; Remove deletes by storage id.
type MediaStore interface {
	Store(ctx context.Context, name, contentType string, content io.Reader) (models.MediaAsset, error)
	Remove(ctx context.Context, storageID string) error
}

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// objectKey derives a unique key keeping the original extension.
func objectKey(prefix, name string) string {
	key := uuid.NewString() + strings.ToLower(path.Ext(name))
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

// RemoveQuietly deletes asset and only logs a failure. Assets without a
// storage id are skipped.
func RemoveQuietly(ctx context.Context, store MediaStore, asset models.MediaAsset, label string) {
	if asset.StorageID == "" {
		return
	}
	if err := store.Remove(ctx, asset.StorageID); err != nil {
		failure := apperror.DeleteFailed(label, err)
		logging.FromContext(ctx).Warn(failure.Error(), "storageId", asset.StorageID, "error", failure.Cause)
	}
}

type instrumented struct {
	MediaStore
	metrics metrics.Recorder
}

// Instrument counts failed store and remove calls of next.
func Instrument(next MediaStore, recorder metrics.Recorder) MediaStore {
	return &instrumented{MediaStore: next, metrics: metrics.OrDiscard(recorder)}
}

func (s *instrumented) Store(ctx context.Context, name, contentType string, content io.Reader) (models.MediaAsset, error) {
	asset, err := s.MediaStore.Store(ctx, name, contentType, content)
	if err != nil {
		s.metrics.RecordMediaFailure("store")
	}
	return asset, err
}

func (s *instrumented) Remove(ctx context.Context, storageID string) error {
	err := s.MediaStore.Remove(ctx, storageID)
	if err != nil {
		s.metrics.RecordMediaFailure("remove")
	}
	return err
}
