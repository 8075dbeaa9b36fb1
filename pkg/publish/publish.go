// Package publish builds a composition next to its destination and swaps it
// into place, so readers of the destination never see a half-linked tree.
package publish

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/flox/flox-sub009/pkg/compose"
	"github.com/flox/flox-sub009/pkg/errors"
	"github.com/flox/flox-sub009/pkg/filesystem"
	"github.com/flox/flox-sub009/pkg/logging"
	"github.com/flox/flox-sub009/pkg/types"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

const (
	lockSuffix   = ".lock"
	backupSuffix = ".old"
)

// BuildFunc populates an empty directory, usually by calling compose.Compose
type BuildFunc func(dir string) (compose.Result, error)

// Options controls publishing
type Options struct {
	// KeepBackup leaves the replaced tree at <dest>.old
	KeepBackup bool
}

// LockPath returns the path of the lock guarding dest
func LockPath(dest string) string {
	return filepath.Clean(dest) + lockSuffix
}

// BackupPath returns where the replaced tree of dest is kept
func BackupPath(dest string) string {
	return filepath.Clean(dest) + backupSuffix
}

// Publish runs build against a temporary sibling of dest and renames the
// result over dest. On any failure dest is left as it was.
func Publish(ctx context.Context, dest string, build BuildFunc, opts Options) (compose.Result, error) {
	if dest == "" {
		return compose.Result{}, errors.New(errors.ErrInvalidInput, "no destination given")
	}
	dest = filepath.Clean(dest)
	logger := logging.GetLogger("publish").With().Str("dest", dest).Logger()
	defer logging.LogOperationStart(logger, "publish")()

	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return compose.Result{}, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", parent)
	}

	lock := flock.New(LockPath(dest))
	locked, err := lock.TryLock()
	if err != nil {
		return compose.Result{}, errors.Wrapf(err, errors.ErrPublish, "failed to lock %s", lock.Path())
	}
	if !locked {
		return compose.Result{}, errors.Newf(errors.ErrDestLocked, "%s is being composed by another process", dest).
			WithDetail("lock", lock.Path())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn().Err(err).Msg("Failed to release lock")
		}
	}()

	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dest)+".tmp-")
	if err != nil {
		return compose.Result{}, errors.Wrapf(err, errors.ErrDirCreate, "failed to create temp dir in %s", parent)
	}
	logger.Debug().Str("tmp", tmp).Msg("Composing into temp dir")

	result, err := build(tmp)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if rmErr := os.RemoveAll(tmp); rmErr != nil {
			logger.Warn().Err(rmErr).Str("tmp", tmp).Msg("Failed to remove temp dir")
		}
		return compose.Result{}, err
	}

	fsys := filesystem.NewOS()
	if err := swap(fsys, logger, tmp, dest, opts.KeepBackup); err != nil {
		_ = fsys.RemoveAll(tmp)
		return compose.Result{}, err
	}

	logger.Info().Int("links", result.Links).Msg("Published environment")
	return result, nil
}

// swap moves tmp to dest, parking any existing dest at its backup path
// until the new tree is in place
func swap(fsys types.FS, logger zerolog.Logger, tmp, dest string, keepBackup bool) error {
	backup := BackupPath(dest)

	hadOld := false
	if _, err := fsys.Lstat(dest); err == nil {
		if err := fsys.RemoveAll(backup); err != nil {
			return errors.Wrapf(err, errors.ErrPublish, "failed to clear stale backup %s", backup)
		}
		if err := fsys.Rename(dest, backup); err != nil {
			return errors.Wrapf(err, errors.ErrPublish, "failed to move %s aside", dest)
		}
		hadOld = true
	} else if !stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", dest)
	}

	if err := os.Chmod(tmp, 0755); err != nil {
		logger.Warn().Err(err).Str("tmp", tmp).Msg("Failed to set permissions on new tree")
	}

	if err := fsys.Rename(tmp, dest); err != nil {
		if hadOld {
			if rerr := fsys.Rename(backup, dest); rerr != nil {
				logger.Error().Err(rerr).Str("backup", backup).Msg("Failed to restore previous tree")
			}
		}
		return errors.Wrapf(err, errors.ErrPublish, "failed to move new tree to %s", dest)
	}

	if hadOld && !keepBackup {
		if err := fsys.RemoveAll(backup); err != nil {
			logger.Warn().Err(err).Str("backup", backup).Msg("Failed to remove previous tree")
		}
	}
	return nil
}
