package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.SetClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var got map[string]int
	require.NoError(t, m.Get(ctx, "k", &got))
	assert.Equal(t, 1, got["a"])
	assert.True(t, m.Exists(ctx, "k"))

	now = now.Add(time.Minute)
	assert.ErrorIs(t, m.Get(ctx, "k", &got), ErrCacheMiss)
	assert.False(t, m.Exists(ctx, "k"))
}

func TestMemory_GetOrSetCallsFetcherOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []string{"1A", "2B"}, nil
	}

	var first, second []string
	require.NoError(t, m.GetOrSet(ctx, "seats", time.Minute, fetch, &first))
	require.NoError(t, m.GetOrSet(ctx, "seats", time.Minute, fetch, &second))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestMemory_DeletePattern(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Put("aerolink:booking:session:s1:draft", []byte(`{}`), 0)
	m.Put("aerolink:booking:session:s1:seats", []byte(`{}`), 0)
	m.Put("aerolink:booking:session:s2:draft", []byte(`{}`), 0)

	require.NoError(t, m.DeletePattern(ctx, "aerolink:booking:session:s1:*"))

	assert.Equal(t, []string{"aerolink:booking:session:s2:draft"}, m.Keys())
}
