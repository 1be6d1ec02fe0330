// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MemoryStore is an in-process [ObjectStore] used in tests and when object
// storage credentials are not configured.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStore returns an empty store whose URLs start with baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject), baseURL: baseURL}
}

func (store *MemoryStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("storage: read body: %w", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.objects[key] = memoryObject{data: bytes.Clone(data), contentType: contentType}
	return nil
}

func (store *MemoryStore) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	if _, ok := store.objects[key]; !ok {
		return "", fmt.Errorf("storage: object %s not found", key)
	}
	return fmt.Sprintf("%s/%s?expires=%d", store.baseURL, key, int(expiry.Seconds())), nil
}

func (store *MemoryStore) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.objects, key)
	return nil
}

// Get returns a stored object's content type and bytes.
func (store *MemoryStore) Get(key string) (string, []byte, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	object, ok := store.objects[key]
	return object.contentType, object.data, ok
}
