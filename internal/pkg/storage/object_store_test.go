package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/penwise/backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleKey(t *testing.T) {
	assert.Equal(t, "user-1/s-1/notes.md", SampleKey("user-1", "s-1", "notes.md"))
	assert.Equal(t, "user-1/s-1/passwd", SampleKey("user-1", "s-1", "../../etc/passwd"))
	assert.Equal(t, "a_b/s-1/x.txt", SampleKey("a/b", "s-1", `C:\docs\x.txt`))
	assert.Equal(t, "anonymous/s-1/upload", SampleKey("", "s-1", ""))
}

func TestLocalStorePutDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	key := SampleKey("user-1", "s-1", "notes.md")
	require.NoError(t, store.Put(ctx, key, strings.NewReader("# hello"), 7, "text/markdown"))

	data, err := os.ReadFile(filepath.Join(root, "user-1", "s-1", "notes.md"))
	require.NoError(t, err)
	assert.Equal(t, "# hello", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, "user-1", "s-1", "notes.md"))
	assert.True(t, os.IsNotExist(err))

	// 重复删除不报错
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocalStoreKeyStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), 1, ""))
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)

	assert.Error(t, store.Put(context.Background(), "", strings.NewReader("x"), 1, ""))
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Dir = t.TempDir()

	store, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	cfg.Storage.Type = "s3-unknown"
	_, err = New(cfg)
	assert.Error(t, err)
}
