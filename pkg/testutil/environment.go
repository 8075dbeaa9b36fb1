package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// FileTree represents a directory structure for testing.
// Values are file contents (string), nested trees (FileTree) or symlinks (Link).
type FileTree map[string]interface{}

// Link creates a symlink pointing at Target
type Link struct {
	Target string
}

// TestEnvironment holds package trees and a destination for one test
type TestEnvironment struct {
	// StoreDir contains one directory per package
	StoreDir string
	// OutDir is an absent destination, ready to be composed into
	OutDir string

	t *testing.T
}

// NewTestEnvironment creates a new test environment under t.TempDir()
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	tempDir := t.TempDir()
	env := &TestEnvironment{
		StoreDir: filepath.Join(tempDir, "store"),
		OutDir:   filepath.Join(tempDir, "out"),
		t:        t,
	}
	CreateDirT(t, env.StoreDir)
	return env
}

// AddPackage creates a package tree in the store and returns its root
func (env *TestEnvironment) AddPackage(name string, tree FileTree) string {
	env.t.Helper()

	root := filepath.Join(env.StoreDir, name)
	CreateDirT(env.t, root)
	CreateFileTree(env.t, root, tree)
	return root
}

// Propagate writes the propagated-user-env-packages manifest of a package
func (env *TestEnvironment) Propagate(root string, propagated ...string) {
	env.t.Helper()
	CreateFileT(env.t, filepath.Join(root, "nix-support", "propagated-user-env-packages"),
		strings.Join(propagated, " ")+"\n")
}

// PropagateBuildInputs writes the propagated-build-inputs manifest of a package
func (env *TestEnvironment) PropagateBuildInputs(root string, propagated ...string) {
	env.t.Helper()
	CreateFileT(env.t, filepath.Join(root, "nix-support", "propagated-build-inputs"),
		strings.Join(propagated, "\n")+"\n")
}

// CreateFileTree recursively creates a file tree below basePath
func CreateFileTree(t *testing.T, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			CreateFileT(t, fullPath, v)
		case FileTree:
			CreateDirT(t, fullPath)
			CreateFileTree(t, fullPath, v)
		case Link:
			CreateSymlinkT(t, v.Target, fullPath)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

// CreateFileT writes a file, creating parent directories
func CreateFileT(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// CreateDirT creates a directory and its parents
func CreateDirT(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0755))
}

// CreateSymlinkT creates a symlink at path pointing at target
func CreateSymlinkT(t *testing.T, target, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.Symlink(target, path))
}
