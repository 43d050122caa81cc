package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileRoundTrip(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "doc.json"))

	require.NoError(t, f.Save(doc{Name: "alpha", Count: 3}))

	var got doc
	found, err := f.Load(&got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, doc{Name: "alpha", Count: 3}, got)
}

func TestFileLoadMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "missing.json"))

	var got doc
	found, err := f.Load(&got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileHealsDirectoryOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.MkdirAll(path, 0o755))

	f := NewFile(path)
	var got doc
	found, err := f.Load(&got)
	require.NoError(t, err)
	assert.False(t, found)

	// The directory is gone; a save must now succeed as a plain file.
	require.NoError(t, f.Save(doc{Name: "healed"}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestFileHealsDirectoryOnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.MkdirAll(path, 0o755))

	f := NewFile(path)
	require.NoError(t, f.Save(doc{Name: "beta"}))

	var got doc
	found, err := f.Load(&got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "beta", got.Name)
}

func TestFileSaveLeavesNoTempBehind(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "doc.json"))
	require.NoError(t, f.Save(doc{Name: "gamma"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.json", entries[0].Name())
}
