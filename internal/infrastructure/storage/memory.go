package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

// MemoryObjectStorage keeps objects in a map. It backs tests and local runs
// without S3; presigned URLs point at BaseURL and are not served.
type MemoryObjectStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: "http://storage.local",
		objects: make(map[string]memoryObject),
	}
}

func (m *MemoryObjectStorage) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

func (m *MemoryObjectStorage) PresignGet(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}
	expires := time.Now().Add(expiresIn)
	u := m.BaseURL + "/" + key + "?expires=" + url.QueryEscape(expires.UTC().Format(time.RFC3339))
	return u, expires, nil
}

func (m *MemoryObjectStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Object returns a stored object's bytes and content type
func (m *MemoryObjectStorage) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	return bytes.Clone(obj.data), obj.contentType, true
}

var _ ObjectStorage = (*MemoryObjectStorage)(nil)
