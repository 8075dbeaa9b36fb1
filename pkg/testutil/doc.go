// Package testutil provides utilities for testing buildenv components.
//
// Key components:
//   - TestEnvironment: a temporary store of package trees plus a fresh
//     destination directory, cleaned up with the test
//   - FileTree / Link: declarative package tree setup
//   - Snapshot: a structural description of a composed tree, used to
//     compare compositions with each other
//   - Assert helpers for symlinks and directories built on testify
//
// Composition relies on real symlink semantics, so every environment lives
// on the real filesystem under t.TempDir().
package testutil
