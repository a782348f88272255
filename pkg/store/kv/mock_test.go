package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_SetGet_RoundTrips(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	type payload struct {
		Name string
	}
	require.NoError(t, m.Set(ctx, "k1", payload{Name: "widget"}, 0))

	var out payload
	ok, err := m.Get(ctx, "k1", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "widget", out.Name)
}

func TestMock_Get_MissingKeyReturnsFalse(t *testing.T) {
	m := NewMock()
	var out string
	ok, err := m.Get(context.Background(), "nope", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMock_Get_ExpiredTTLReturnsFalse(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k1", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var out string
	ok, err := m.Get(ctx, "k1", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMock_Delete(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k1", "v", 0))
	require.NoError(t, m.Delete(ctx, "k1"))

	var out string
	ok, err := m.Get(ctx, "k1", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}
