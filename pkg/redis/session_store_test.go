package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	newTestRedis(t)
	store := NewSessionStore(time.Hour)
	ctx := context.Background()

	state := &SessionState{
		CatalogIndex: 2,
		AdminStep:    "price",
		Draft:        &ProductDraft{Name: "Channel bot", Price: 500000},
	}
	require.NoError(t, store.Save(ctx, 42, state))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CatalogIndex)
	assert.Equal(t, "price", got.AdminStep)
	require.NotNil(t, got.Draft)
	assert.Equal(t, int64(500000), got.Draft.Price)
}

func TestSessionStore_MissingReturnsZeroState(t *testing.T) {
	newTestRedis(t)
	store := NewSessionStore(time.Hour)

	got, err := store.Get(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CatalogIndex)
	assert.Empty(t, got.AdminStep)
	assert.Nil(t, got.Draft)
}

func TestSessionStore_Delete(t *testing.T) {
	newTestRedis(t)
	store := NewSessionStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 7, &SessionState{CatalogIndex: 1}))
	require.NoError(t, store.Delete(ctx, 7))

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CatalogIndex)
}
