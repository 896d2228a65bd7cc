package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/vidstream/backend/internal/models"
)

// ErrObjectNotFound is returned by MemoryStore.Remove for unknown ids.
var ErrObjectNotFound = errors.New("object not found")

type object struct {
	contentType string
	data        []byte
}

// MemoryStore keeps media in process. It serves tests and local runs
// without an object store.
type MemoryStore struct {
	mu       sync.Mutex
	baseURL  string
	objects  map[string]object
	duration float64

	storeErr  error
	removeErr error
}

// NewMemoryStore returns an empty store whose URLs start with baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://media"
	}
	return &MemoryStore{baseURL: baseURL, objects: make(map[string]object)}
}

func (m *MemoryStore) Store(ctx context.Context, name, contentType string, content io.Reader) (models.MediaAsset, error) {
	if err := ctx.Err(); err != nil {
		return models.MediaAsset{}, err
	}
	if content == nil {
		return models.MediaAsset{}, errors.New("memory storage: empty upload")
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return models.MediaAsset{}, fmt.Errorf("memory storage: read %s: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return models.MediaAsset{}, m.storeErr
	}
	key := objectKey("", name)
	m.objects[key] = object{contentType: contentType, data: data}
	return models.MediaAsset{URL: m.baseURL + "/" + key, StorageID: key, Duration: m.duration}, nil
}

func (m *MemoryStore) Remove(ctx context.Context, storageID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	if _, ok := m.objects[storageID]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, storageID)
	return nil
}

// FailStoreWith makes Store fail with err until cleared with nil.
func (m *MemoryStore) FailStoreWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeErr = err
}

// FailRemoveWith makes Remove fail with err until cleared with nil.
func (m *MemoryStore) FailRemoveWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeErr = err
}

// ReportDuration sets the duration attached to subsequently stored assets.
func (m *MemoryStore) ReportDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = seconds
}

// Has reports whether storageID is held.
func (m *MemoryStore) Has(storageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[storageID]
	return ok
}

// Len returns the number of held objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var (
	_ MediaStore = (*MemoryStore)(nil)
	_ MediaStore = (*S3Store)(nil)
)
