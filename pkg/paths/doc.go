// Package paths provides centralized path handling for buildenv.
//
// Per-user files follow the XDG Base Directory specification:
//
//   - configuration: $XDG_CONFIG_HOME/buildenv/config.toml, or the
//     directory named by BUILDENV_CONFIG_DIR
//   - log file: $XDG_STATE_HOME/buildenv/buildenv.log, falling back to
//     ~/.local/state when XDG_STATE_HOME is unset
//
// Paths given on the command line may start with ~, which ExpandHome
// resolves against the user's home directory.
package paths
