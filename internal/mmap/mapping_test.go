package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestMapping_OpenReadClose(t *testing.T) {
	m, err := Open(writeTemp(t, []byte("AC5G6T5TA")))
	require.NoError(t, err)

	assert.Equal(t, 9, m.Size())
	assert.Equal(t, []byte("AC5G6T5TA"), m.Bytes())
	require.NoError(t, m.Advise(AccessRandom))

	buf := make([]byte, 3)
	n, err := m.ReadAt(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "5G6", string(buf))

	buf = make([]byte, 4)
	n, err = m.ReadAt(buf, 7)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "TA", string(buf[:n]))

	_, err = m.ReadAt(buf, 100)
	assert.Equal(t, io.EOF, err)
	_, err = m.ReadAt(buf, -1)
	assert.Equal(t, ErrInvalidOffset, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessSequential), ErrClosed)
	_, err = m.ReadAt(buf, 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMapping_EmptyFile(t *testing.T) {
	m, err := Open(writeTemp(t, nil))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Size())
	assert.NoError(t, m.Advise(AccessSequential))
}

func TestMapping_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
