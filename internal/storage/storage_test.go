package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarforge/internal/config"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key := NewKey("originals", 7, "My Photo.png")
	require.NoError(t, s.Put(ctx, key, "image/png", strings.NewReader("pixels")))

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrObjectNotFound))

	// deleting twice is not an error
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorage_KeyStaysInsideBase(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	full, err := s.resolve("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(full, dir))
}

func TestNewKey(t *testing.T) {
	key := NewKey("results", 3, "../weird name!.jpg")
	assert.True(t, strings.HasPrefix(key, "results/3/"))
	assert.True(t, strings.HasSuffix(key, "-weird_name.jpg"))
	assert.NotEqual(t, key, NewKey("results", 3, "../weird name!.jpg"))

	assert.True(t, strings.HasSuffix(NewKey("x", 1, ""), "-file"))
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Type: "ftp"})
	assert.Error(t, err)
}
