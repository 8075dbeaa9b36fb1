package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Snapshot maps every path below a composed root to a description:
// "dir", or "link -> <target>" where the target is made relative to
// base when it lies inside it.
type Snapshot map[string]string

// TakeSnapshot describes the tree at root
func TakeSnapshot(t *testing.T, root, base string) Snapshot {
	t.Helper()

	snap := make(Snapshot)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			if relTarget, err := filepath.Rel(base, target); err == nil && !strings.HasPrefix(relTarget, "..") {
				target = filepath.ToSlash(relTarget)
			}
			snap[rel] = "link -> " + target
		case d.IsDir():
			snap[rel] = "dir"
		default:
			snap[rel] = "file"
		}
		return nil
	})
	require.NoError(t, err)
	return snap
}

// Paths returns the snapshot's paths in sorted order
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
