package auth

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_MissingFileMeansSignedOut(t *testing.T) {
	src := NewFileTokenSource(t.TempDir())
	token, err := src.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not-yet-created")
	src := NewFileTokenSource(dir)

	require.NoError(t, src.Save("jwt-abc"))
	token, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", token)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dir, "token"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestSave_RejectsEmptyToken(t *testing.T) {
	src := NewFileTokenSource(t.TempDir())
	assert.Error(t, src.Save(""))
	assert.Error(t, src.Save("   "))
}

func TestClear(t *testing.T) {
	src := NewFileTokenSource(t.TempDir())
	require.NoError(t, src.Save("jwt-abc"))
	require.NoError(t, src.Clear())

	token, err := src.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	assert.NoError(t, src.Clear(), "clearing twice is fine")
}
