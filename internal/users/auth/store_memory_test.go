// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/users/auth"
)

func TestMemoryCodeStore_LastWriteWins(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	store := auth.NewMemoryCodeStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a@x.com", "111111", time.Minute))
	require.NoError(t, store.Put(ctx, "a@x.com", "222222", time.Minute))

	code, err := store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", code)
}

/*
TestMemoryCodeStore_Expiry checks that an entry is unreadable from the instant
its ttl elapses, even before it is swept.
*/
func TestMemoryCodeStore_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	store := auth.NewMemoryCodeStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a@x.com", "111111", time.Minute))

	clock.Advance(time.Minute - time.Nanosecond)
	_, err := store.Get(ctx, "a@x.com")
	assert.NoError(t, err)

	clock.Advance(time.Nanosecond)
	_, err = store.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, auth.ErrCodeNotFound)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Sweep())
}

func TestMemoryCodeStore_PutRestartsTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	store := auth.NewMemoryCodeStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a@x.com", "111111", time.Minute))
	clock.Advance(50 * time.Second)
	require.NoError(t, store.Put(ctx, "a@x.com", "222222", time.Minute))
	clock.Advance(50 * time.Second)

	code, err := store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", code)
}

func TestMemoryCodeStore_DeleteOnlyMatchingCode(t *testing.T) {
	store := auth.NewMemoryCodeStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a@x.com", "222222", time.Minute))

	require.NoError(t, store.Delete(ctx, "a@x.com", "111111"))
	code, err := store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", code)

	require.NoError(t, store.Delete(ctx, "a@x.com", "222222"))
	_, err = store.Get(ctx, "a@x.com")
	assert.ErrorIs(t, err, auth.ErrCodeNotFound)
}

func TestMemoryCodeStore_Concurrent(t *testing.T) {
	store := auth.NewMemoryCodeStore(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@x.com", i%5)
			_ = store.Put(ctx, email, fmt.Sprintf("%06d", i), time.Minute)
			_, _ = store.Get(ctx, email)
			store.Sweep()
		}(i)
	}
	wg.Wait()

	for i := range 5 {
		code, err := store.Get(ctx, fmt.Sprintf("user%d@x.com", i))
		require.NoError(t, err)
		assert.Len(t, code, 6)
	}
}
