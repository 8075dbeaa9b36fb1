// Package filesystem provides filesystem implementations for buildenv.
//
// This package contains implementations of the types.FS interface.
// Only the OS filesystem is provided: composition depends on real
// symlink semantics that in-memory filesystems do not model.
package filesystem
