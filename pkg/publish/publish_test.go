package publish

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/flox/flox-sub009/pkg/compose"
	"github.com/flox/flox-sub009/pkg/errors"
	"github.com/flox/flox-sub009/pkg/filesystem"
	"github.com/flox/flox-sub009/pkg/logging"
	"github.com/flox/flox-sub009/pkg/priority"
	"github.com/flox/flox-sub009/pkg/testutil"
	"github.com/flox/flox-sub009/pkg/types"
	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeFrom(roots ...string) BuildFunc {
	return func(dir string) (compose.Result, error) {
		var contributions []compose.Contribution
		for _, root := range roots {
			contributions = append(contributions, compose.Contribution{
				SourceRoot: root,
				Included:   true,
				Priority:   priority.Priority{Rank: 5},
			})
		}
		return compose.Compose(dir, contributions)
	}
}

func failing(dir string) (compose.Result, error) {
	// leave something behind to prove the temp dir is cleaned up
	if err := os.WriteFile(filepath.Join(dir, "partial"), nil, 0644); err != nil {
		return compose.Result{}, err
	}
	return compose.Result{}, errors.New(errors.ErrTypeConflict, "boom")
}

func siblings(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestPublish_NewDestination(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	hello := env.AddPackage("hello", testutil.FileTree{"bin": testutil.FileTree{"hello": "#!"}})
	dest := filepath.Join(t.TempDir(), "profiles", "default")

	result, err := Publish(context.Background(), dest, composeFrom(hello), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Links)
	testutil.AssertSymlinkTarget(t, filepath.Join(dest, "bin"), filepath.Join(hello, "bin"))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	assert.ElementsMatch(t, []string{"default", "default.lock"}, siblings(t, filepath.Dir(dest)))
}

func TestPublish_ReplacesExisting(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	v1 := env.AddPackage("hello-1", testutil.FileTree{"bin": testutil.FileTree{"hello": "1"}})
	v2 := env.AddPackage("hello-2", testutil.FileTree{"bin": testutil.FileTree{"hello": "2"}})
	dest := filepath.Join(t.TempDir(), "env")

	_, err := Publish(context.Background(), dest, composeFrom(v1), Options{})
	require.NoError(t, err)
	_, err = Publish(context.Background(), dest, composeFrom(v2), Options{})
	require.NoError(t, err)

	testutil.AssertFileContent(t, filepath.Join(dest, "bin", "hello"), "2")
	testutil.AssertNotExists(t, BackupPath(dest))
}

func TestPublish_KeepBackup(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	v1 := env.AddPackage("hello-1", testutil.FileTree{"bin": testutil.FileTree{"hello": "1"}})
	v2 := env.AddPackage("hello-2", testutil.FileTree{"bin": testutil.FileTree{"hello": "2"}})
	dest := filepath.Join(t.TempDir(), "env")

	_, err := Publish(context.Background(), dest, composeFrom(v1), Options{KeepBackup: true})
	require.NoError(t, err)
	_, err = Publish(context.Background(), dest, composeFrom(v2), Options{KeepBackup: true})
	require.NoError(t, err)

	testutil.AssertFileContent(t, filepath.Join(dest, "bin", "hello"), "2")
	testutil.AssertFileContent(t, filepath.Join(BackupPath(dest), "bin", "hello"), "1")
}

func TestPublish_FailureKeepsExisting(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	v1 := env.AddPackage("hello-1", testutil.FileTree{"bin": testutil.FileTree{"hello": "1"}})
	dest := filepath.Join(t.TempDir(), "env")

	_, err := Publish(context.Background(), dest, composeFrom(v1), Options{})
	require.NoError(t, err)

	_, err = Publish(context.Background(), dest, failing, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTypeConflict))

	testutil.AssertFileContent(t, filepath.Join(dest, "bin", "hello"), "1")
	assert.ElementsMatch(t, []string{"env", "env.lock"}, siblings(t, filepath.Dir(dest)))
}

func TestPublish_ConflictLeavesNoDestination(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	a := env.AddPackage("a", testutil.FileTree{"bin": testutil.FileTree{"tool": "a"}})
	b := env.AddPackage("b", testutil.FileTree{"bin": testutil.FileTree{"tool": "b"}})
	dest := filepath.Join(t.TempDir(), "env")

	_, err := Publish(context.Background(), dest, composeFrom(a, b), Options{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrPriorityConflict, errors.GetErrorCode(err))
	testutil.AssertNotExists(t, dest)
}

func TestPublish_CancelledContext(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	hello := env.AddPackage("hello", testutil.FileTree{"bin": testutil.FileTree{"hello": "#!"}})
	dest := filepath.Join(t.TempDir(), "env")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Publish(ctx, dest, composeFrom(hello), Options{})
	require.ErrorIs(t, err, context.Canceled)
	testutil.AssertNotExists(t, dest)
	assert.ElementsMatch(t, []string{"env.lock"}, siblings(t, filepath.Dir(dest)))
}

func TestPublish_Locked(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "env")

	held := flock.New(LockPath(dest))
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	called := false
	_, err = Publish(context.Background(), dest, func(string) (compose.Result, error) {
		called = true
		return compose.Result{}, nil
	}, Options{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrDestLocked, errors.GetErrorCode(err))
	assert.False(t, called)
}

func TestPublish_EmptyDestination(t *testing.T) {
	_, err := Publish(context.Background(), "", failing, Options{})
	assert.Equal(t, errors.ErrInvalidInput, errors.GetErrorCode(err))
}

// renameFailer fails every rename away from one path
type renameFailer struct {
	types.FS
	from string
}

func (r renameFailer) Rename(oldpath, newpath string) error {
	if oldpath == r.from {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	return r.FS.Rename(oldpath, newpath)
}

func TestSwap_RestoresPreviousTree(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "env")
	tmp := filepath.Join(dir, ".env.tmp-1")
	testutil.CreateFileT(t, filepath.Join(dest, "marker"), "old")
	testutil.CreateFileT(t, filepath.Join(tmp, "marker"), "new")

	fsys := renameFailer{FS: filesystem.NewOS(), from: tmp}
	err := swap(fsys, logging.GetLogger("publish"), tmp, dest, false)
	require.Error(t, err)
	assert.Equal(t, errors.ErrPublish, errors.GetErrorCode(err))

	testutil.AssertFileContent(t, filepath.Join(dest, "marker"), "old")
	testutil.AssertNotExists(t, BackupPath(dest))
}

func TestSwap_ClearsStaleBackup(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "env")
	tmp := filepath.Join(dir, ".env.tmp-1")
	testutil.CreateFileT(t, filepath.Join(dest, "marker"), "current")
	testutil.CreateFileT(t, filepath.Join(BackupPath(dest), "marker"), "stale")
	testutil.CreateFileT(t, filepath.Join(tmp, "marker"), "new")

	require.NoError(t, swap(filesystem.NewOS(), logging.GetLogger("publish"), tmp, dest, true))

	testutil.AssertFileContent(t, filepath.Join(dest, "marker"), "new")
	testutil.AssertFileContent(t, filepath.Join(BackupPath(dest), "marker"), "current")
	testutil.AssertNotExists(t, tmp)
}
