package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempRunName(t *testing.T) {
	a := TempRunName("https://example.com/file", "out/file.bin")
	b := TempRunName("https://example.com/file", "out/file.bin")
	c := TempRunName("https://example.com/other", "out/file.bin")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}

func TestNewRunTempDir(t *testing.T) {
	first := NewRunTempDir("https://example.com/file", "out/file.bin")
	second := NewRunTempDir("https://example.com/file", "out/file.bin")
	assert.NotEqual(t, first, second, "every run gets its own directory")
	assert.Equal(t, filepath.Join("out", TempDirName), filepath.Dir(first))
	assert.Contains(t, filepath.Base(first), TempRunName("https://example.com/file", "out/file.bin"))
}

func TestSegmentFileName(t *testing.T) {
	assert.Equal(t, "file.bin.part3", SegmentFileName("out/file.bin", 3))
}

func TestParseHeaderArgs(t *testing.T) {
	got := ParseHeaderArgs([]string{"Authorization: Basic abc", "X-Empty:", "broken"})
	assert.Equal(t, map[string]string{"Authorization": "Basic abc", "X-Empty": ""}, got)
}

func TestRemoveIfEmpty(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full")
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.MkdirAll(full, 0755))
	require.NoError(t, os.MkdirAll(empty, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(full, "x"), []byte("x"), 0644))

	require.NoError(t, RemoveIfEmpty(full))
	require.NoError(t, RemoveIfEmpty(empty))
	require.NoError(t, RemoveIfEmpty(filepath.Join(dir, "missing")))

	_, err := os.Stat(full)
	assert.NoError(t, err)
	_, err = os.Stat(empty)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanTempRoot(t *testing.T) {
	dir := t.TempDir()
	for _, run := range []string{"aaa-1", "bbb-2"} {
		runDir := filepath.Join(dir, TempDirName, run)
		require.NoError(t, os.MkdirAll(runDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(runDir, "f.part0"), []byte("x"), 0644))
	}

	removed, err := CleanTempRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	_, err = os.Stat(filepath.Join(dir, TempDirName))
	assert.True(t, os.IsNotExist(err))

	removed, err = CleanTempRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
