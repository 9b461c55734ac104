package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soprimec/rental-engine/cache"
)

func TestCache_SetGetClear(t *testing.T) {
	c, err := cache.New(1<<20, time.Minute)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	c.Set("dashboard:2024-03-15", []byte(`{"total":1}`))

	got, ok := c.Get("dashboard:2024-03-15")
	require.True(t, ok)
	assert.JSONEq(t, `{"total":1}`, string(got))

	c.Clear()
	_, ok = c.Get("dashboard:2024-03-15")
	assert.False(t, ok)
}

func TestCache_NilIsDisabled(t *testing.T) {
	var c *cache.Cache
	c.Set("k", []byte("v"))
	_, ok := c.Get("k")
	assert.False(t, ok)
	c.Clear()
	c.Close()
}
