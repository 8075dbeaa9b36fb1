package compose

import (
	"errors"
	"io/fs"
	"syscall"

	"github.com/flox/flox-sub009/pkg/types"
)

// entryKind is the shape of a path as seen by the linker, decided once per
// path from a single stat
type entryKind int

const (
	entryMissing entryKind = iota
	entryFile
	entryDirectory
	entryLinkToDirectory
	entryLinkToFile
)

func (k entryKind) String() string {
	switch k {
	case entryMissing:
		return "missing"
	case entryFile:
		return "file"
	case entryDirectory:
		return "directory"
	case entryLinkToDirectory:
		return "link to directory"
	case entryLinkToFile:
		return "link to file"
	default:
		return "unknown"
	}
}

// isAbsent reports errors that mean "nothing usable at this path"
func isAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// classifySource follows symlinks: a source entry is a file, a directory,
// or missing when it is a dangling link.
func classifySource(fsys types.FS, path string) (entryKind, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if isAbsent(err) {
			return entryMissing, nil
		}
		return entryMissing, err
	}
	if info.IsDir() {
		return entryDirectory, nil
	}
	return entryFile, nil
}

// classifyDest does not follow the entry itself, but looks through a link
// to tell lazily linked directories apart from linked files.
func classifyDest(fsys types.FS, path string) (entryKind, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		if isAbsent(err) {
			return entryMissing, nil
		}
		return entryMissing, err
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := fsys.Stat(path)
		if err != nil {
			if isAbsent(err) {
				return entryLinkToFile, nil
			}
			return entryMissing, err
		}
		if target.IsDir() {
			return entryLinkToDirectory, nil
		}
		return entryLinkToFile, nil
	case info.IsDir():
		return entryDirectory, nil
	default:
		return entryFile, nil
	}
}
