// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"time"
)

type codeEntry struct {
	code      string
	expiresAt time.Time
}

// MemoryCodeStore is a process-local [CodeStore] for single-replica
// deployments and tests.
//
// Expired entries are invisible to [MemoryCodeStore.Get] immediately and are
// physically removed by [MemoryCodeStore.Sweep].
type MemoryCodeStore struct {
	mu      sync.Mutex
	entries map[string]codeEntry
	now     func() time.Time
}

// NewMemoryCodeStore creates an empty store. A nil clock defaults to [time.Now].
func NewMemoryCodeStore(clock func() time.Time) *MemoryCodeStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryCodeStore{
		entries: make(map[string]codeEntry),
		now:     clock,
	}
}

// Put stores code for email, replacing any previous code and restarting the ttl.
func (store *MemoryCodeStore) Put(_ context.Context, email, code string, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.entries[email] = codeEntry{code: code, expiresAt: store.now().Add(ttl)}
	return nil
}

// Get returns the live code for email or [ErrCodeNotFound].
func (store *MemoryCodeStore) Get(_ context.Context, email string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, ok := store.entries[email]
	if !ok || !store.now().Before(entry.expiresAt) {
		return "", ErrCodeNotFound
	}
	return entry.code, nil
}

// Delete removes the entry for email while it still holds code.
func (store *MemoryCodeStore) Delete(_ context.Context, email, code string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if entry, ok := store.entries[email]; ok && entry.code == code {
		delete(store.entries, email)
	}
	return nil
}

// Sweep drops every expired entry and returns how many were removed.
func (store *MemoryCodeStore) Sweep() int {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := store.now()
	removed := 0
	for email, entry := range store.entries {
		if !now.Before(entry.expiresAt) {
			delete(store.entries, email)
			removed++
		}
	}
	return removed
}

// StartJanitor runs [MemoryCodeStore.Sweep] every interval until ctx is cancelled.
func (store *MemoryCodeStore) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				store.Sweep()
			}
		}
	}()
}
