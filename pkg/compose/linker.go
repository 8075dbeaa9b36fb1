package compose

import (
	"path"
	"path/filepath"
	"sort"

	"github.com/flox/flox-sub009/pkg/errors"
	"github.com/flox/flox-sub009/pkg/priority"
	"github.com/flox/flox-sub009/pkg/types"
	"github.com/rs/zerolog"
)

// linker links source trees into one destination, recording every link in
// the ledger it was given
type linker struct {
	fs       types.FS
	logger   zerolog.Logger
	ledger   *ledger
	excluder excluder
}

// link links the entries of srcDir into dstDir. relDir is dstDir relative
// to the destination root ("" for the root itself). A srcDir that is
// missing or not a directory is skipped with a warning.
func (l *linker) link(dstDir, srcDir, relDir string, prio priority.Priority) error {
	_, err := l.linkTree(dstDir, srcDir, relDir, prio)
	return err
}

// linkTree is link, also reporting whether srcDir could be listed
func (l *linker) linkTree(dstDir, srcDir, relDir string, prio priority.Priority) (bool, error) {
	names, err := l.fs.ReadDirNames(srcDir)
	if err != nil {
		if isAbsent(err) {
			l.logger.Warn().
				Str("path", srcDir).
				Msg("Not including path in the environment because it is not a directory")
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to list %s", srcDir)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := l.linkEntry(dstDir, srcDir, relDir, name, prio); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (l *linker) linkEntry(dstDir, srcDir, relDir, name string, prio priority.Priority) error {
	rel := path.Join(relDir, name)
	if l.excluder.excluded(rel, name) {
		l.logger.Trace().Str("path", rel).Msg("Skipping excluded entry")
		return nil
	}

	srcPath := filepath.Join(srcDir, name)
	dstPath := filepath.Join(dstDir, name)

	kind, err := classifySource(l.fs, srcPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", srcPath)
	}

	switch kind {
	case entryMissing:
		l.logger.Warn().
			Str("source", srcPath).
			Str("path", rel).
			Msg("Skipping dangling symlink")
		return nil
	case entryDirectory:
		return l.linkDirectory(dstPath, srcPath, rel, prio)
	default:
		return l.linkLeaf(dstPath, srcPath, rel, prio)
	}
}

func (l *linker) linkDirectory(dstPath, srcPath, rel string, prio priority.Priority) error {
	kind, err := classifyDest(l.fs, dstPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", dstPath)
	}

	switch kind {
	case entryMissing:
		return l.createLink(srcPath, dstPath, rel, prio)
	case entryDirectory:
		return l.link(dstPath, srcPath, rel, prio)
	case entryLinkToDirectory:
		return l.explode(dstPath, srcPath, rel, prio)
	default:
		return l.typeConflict(dstPath, srcPath, rel, prio)
	}
}

// explode replaces a lazily linked directory with a real one holding the
// previous contributor's entries at their recorded priority, then links the
// new contributor into it.
func (l *linker) explode(dstPath, srcPath, rel string, prio priority.Priority) error {
	previous, err := l.linkTarget(dstPath)
	if err != nil {
		return err
	}
	previousPrio, ok := l.ledger.lookup(rel)
	if !ok {
		return errors.Newf(errors.ErrInternal, "no priority recorded for %s", rel)
	}

	l.logger.Trace().
		Str("path", rel).
		Str("previous", previous).
		Str("incoming", srcPath).
		Msg("Exploding directory")

	if err := l.fs.Remove(dstPath); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkRemove, "failed to remove %s", dstPath)
	}
	l.ledger.unlinked(rel)

	if err := l.fs.Mkdir(dstPath, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", dstPath)
	}

	if err := l.link(dstPath, previous, rel, previousPrio); err != nil {
		return err
	}
	return l.link(dstPath, srcPath, rel, prio)
}

func (l *linker) linkLeaf(dstPath, srcPath, rel string, prio priority.Priority) error {
	kind, err := classifyDest(l.fs, dstPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", dstPath)
	}

	switch kind {
	case entryMissing:
		return l.createLink(srcPath, dstPath, rel, prio)
	case entryDirectory, entryLinkToDirectory:
		return l.typeConflict(dstPath, srcPath, rel, prio)
	}

	existing, ok := l.ledger.lookup(rel)
	if !ok {
		return errors.Newf(errors.ErrInternal, "no priority recorded for %s", rel)
	}

	switch priority.Compare(existing, prio) {
	case priority.KeepExisting, priority.Identical:
		l.logger.Trace().
			Str("path", rel).
			Str("discarded", srcPath).
			Msg("Keeping existing entry")
		return nil
	case priority.Conflict:
		existingSrc, err := l.linkTarget(dstPath)
		if err != nil {
			return err
		}
		return &ConflictError{
			Kind: PriorityConflict,
			Record: ConflictRecord{
				Path:     rel,
				Existing: existingSrc,
				Incoming: srcPath,
				Rank:     prio.Rank,
			},
		}
	}

	l.logger.Trace().
		Str("path", rel).
		Str("winner", srcPath).
		Msg("Replacing lower priority entry")
	if err := l.fs.Remove(dstPath); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkRemove, "failed to remove %s", dstPath)
	}
	l.ledger.unlinked(rel)
	return l.createLink(srcPath, dstPath, rel, prio)
}

func (l *linker) createLink(srcPath, dstPath, rel string, prio priority.Priority) error {
	if err := l.fs.Symlink(srcPath, dstPath); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s to %s", dstPath, srcPath)
	}
	l.ledger.linked(rel, prio)
	return nil
}

// typeConflict reports a file and a directory claimed at the same path
func (l *linker) typeConflict(dstPath, srcPath, rel string, prio priority.Priority) error {
	existing := dstPath
	if target, err := l.fs.Readlink(dstPath); err == nil {
		existing = absTarget(dstPath, target)
	}
	return &ConflictError{
		Kind: TypeConflict,
		Record: ConflictRecord{
			Path:     rel,
			Existing: existing,
			Incoming: srcPath,
			Rank:     prio.Rank,
		},
	}
}

// linkTarget returns the absolute source path a destination link points at
func (l *linker) linkTarget(dstPath string) (string, error) {
	target, err := l.fs.Readlink(dstPath)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read link %s", dstPath)
	}
	return absTarget(dstPath, target), nil
}

func absTarget(linkPath, target string) string {
	if filepath.IsAbs(target) {
		return target
	}
	return filepath.Join(filepath.Dir(linkPath), target)
}
