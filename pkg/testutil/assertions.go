package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertSymlinkTarget asserts that path is a symlink pointing at target
func AssertSymlinkTarget(t *testing.T, path, target string, msgAndArgs ...interface{}) {
	t.Helper()

	info, err := os.Lstat(path)
	require.NoError(t, err, msgAndArgs...)
	require.NotZero(t, info.Mode()&os.ModeSymlink, "%s is not a symlink", path)

	got, err := os.Readlink(path)
	require.NoError(t, err, msgAndArgs...)
	assert.Equal(t, target, got, msgAndArgs...)
}

// AssertRealDir asserts that path is a directory and not a symlink to one
func AssertRealDir(t *testing.T, path string, msgAndArgs ...interface{}) {
	t.Helper()

	info, err := os.Lstat(path)
	require.NoError(t, err, msgAndArgs...)
	assert.True(t, info.IsDir(), "%s is not a real directory (mode %s)", path, info.Mode())
}

// AssertNotExists asserts that nothing exists at path, not even a dangling link
func AssertNotExists(t *testing.T, path string, msgAndArgs ...interface{}) {
	t.Helper()

	_, err := os.Lstat(path)
	assert.True(t, os.IsNotExist(err), "expected %s to be absent, got err=%v", path, err)
}

// AssertFileContent asserts that reading path, following symlinks, yields content
func AssertFileContent(t *testing.T, path, content string) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data), "content of %s", filepath.Base(path))
}
