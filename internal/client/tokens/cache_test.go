package tokens

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/launchserver/internal/client/client"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "launcher.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCache(db)
}

func TestCache_SaveLoad(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	want := Tokens{Username: "alice", AccessToken: "a1", RefreshToken: "r1"}
	require.NoError(t, c.Save(ctx, want))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestCache_SaveReplaces(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, Tokens{Username: "alice", AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, c.Save(ctx, Tokens{Username: "alice", AccessToken: "a2"}))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.AccessToken)
	assert.Empty(t, got.RefreshToken)
}

func TestCache_LoadEmpty(t *testing.T) {
	_, err := newCache(t).Load(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}

func TestCache_Clear(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, Tokens{Username: "alice", AccessToken: "a1"}))
	require.NoError(t, c.Clear(ctx))

	_, err := c.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)
}
