package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientBehavesAsEmptyCache(t *testing.T) {
	var c *Client
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	claimed, err := c.SetNX(ctx, "k", []byte("v"), time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisReadsAsMiss(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))

	got, err := c.Get(ctx, "ledger:central:balance")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
}
