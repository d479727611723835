package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Create(t *testing.T) {
	m := NewManager(t.TempDir())

	first, err := m.Create()
	require.NoError(t, err)
	second, err := m.Create()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.DirExists(t, first)
	assert.DirExists(t, second)
	assert.Equal(t, m.BaseDir, filepath.Dir(first))
	assert.Len(t, filepath.Base(first), 32)
}

func TestManager_Destroy(t *testing.T) {
	m := NewManager(t.TempDir())

	path, err := m.Create()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(path, "a", "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "a", "b", "data.csv"), []byte("x"), 0644))

	m.Destroy(path)
	assert.NoDirExists(t, path)

	// destroying twice is harmless
	m.Destroy(path)
}

func TestManager_DestroyOutsideBaseDir(t *testing.T) {
	m := NewManager(t.TempDir())
	other := t.TempDir()

	m.Destroy(other)
	m.Destroy(m.BaseDir)

	assert.DirExists(t, other)
	assert.DirExists(t, m.BaseDir)
}

func TestNewManager_DefaultsToTempDir(t *testing.T) {
	assert.Equal(t, os.TempDir(), NewManager("").BaseDir)
}
