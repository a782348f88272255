package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_PutGet_RoundTrips(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	content := "hello document"

	require.NoError(t, m.Put(ctx, "docs/1.txt", strings.NewReader(content), int64(len(content)), "text/plain"))

	r, info, err := m.Get(ctx, "docs/1.txt")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	assert.Equal(t, int64(len(content)), info.Size)
	assert.Equal(t, "text/plain", info.ContentType)
}

func TestMock_Exists(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	exists, err := m.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, m.Put(ctx, "a", strings.NewReader("x"), 1, "text/plain"))
	exists, err = m.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMock_Delete(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	require.NoError(t, m.Put(ctx, "a", strings.NewReader("x"), 1, "text/plain"))
	require.NoError(t, m.Delete(ctx, "a"))

	exists, err := m.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)
}
