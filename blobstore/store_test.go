package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store Store) {
	ctx := context.Background()
	data := []byte("GSIX snapshot bytes for the blob store test")

	_, err := store.Open(ctx, "missing.gsix")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Put(ctx, "indexes/chr1.gsix", data))
	require.NoError(t, store.Put(ctx, "indexes/chr2.gsix", []byte("other")))
	require.NoError(t, store.Put(ctx, "notes.txt", []byte("x")))

	blob, err := store.Open(ctx, "indexes/chr1.gsix")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 8)
	n, err := blob.ReadAt(ctx, buf, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "snapshot", string(buf))

	n, err = blob.ReadAt(ctx, buf, int64(len(data))-3)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "est", string(buf[:n]))

	all, err := io.ReadAll(NewReader(ctx, blob))
	require.NoError(t, err)
	assert.Equal(t, data, all)

	if m, ok := blob.(Mappable); ok {
		b, err := m.Bytes()
		require.NoError(t, err)
		assert.Equal(t, data, b)
	}

	names, err := store.List(ctx, "indexes/")
	require.NoError(t, err)
	assert.Equal(t, []string{"indexes/chr1.gsix", "indexes/chr2.gsix"}, names)

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, names, 3)

	// Put replaces.
	require.NoError(t, store.Put(ctx, "indexes/chr2.gsix", []byte("replaced")))
	b2, err := store.Open(ctx, "indexes/chr2.gsix")
	require.NoError(t, err)
	got, err := io.ReadAll(NewReader(ctx, b2))
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(got))
	require.NoError(t, b2.Close())

	require.NoError(t, store.Delete(ctx, "indexes/chr2.gsix"))
	require.NoError(t, store.Delete(ctx, "indexes/chr2.gsix"), "deleting twice is fine")
	_, err = store.Open(ctx, "indexes/chr2.gsix")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	testStore(t, NewLocalStore(t.TempDir()))
}

func TestMemoryStore_PutCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := []byte("ACGT")
	require.NoError(t, store.Put(ctx, "a", data))
	data[0] = 'T'

	blob, err := store.Open(ctx, "a")
	require.NoError(t, err)
	got, err := io.ReadAll(NewReader(ctx, blob))
	require.NoError(t, err)
	assert.Equal(t, "ACGT", string(got))
}

func TestLocalStore_ListSkipsTemp(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.gsix", []byte("a")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("partial"), 0o644))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.gsix"}, names)

	empty := NewLocalStore(filepath.Join(dir, "does-not-exist"))
	names, err = empty.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Put(ctx, "a", []byte("a")), context.Canceled)
	_, err := store.Open(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReader_SmallBuffers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := bytes.Repeat([]byte("ACGT"), 1000)
	require.NoError(t, store.Put(ctx, "big", data))

	blob, err := store.Open(ctx, "big")
	require.NoError(t, err)
	r := NewReader(ctx, blob)
	var out bytes.Buffer
	buf := make([]byte, 7)
	for {
		n, err := r.Read(buf)
		out.Write(buf[:n])
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, data, out.Bytes())
}
