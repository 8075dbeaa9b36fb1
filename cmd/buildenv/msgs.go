package buildenv

// Command descriptions
const (
	MsgRootShort = "Compose package trees into one symlinked environment"
	MsgRootLong  = `buildenv merges realized package trees into a single directory made of
symlinks. Directories are shared by linking them whole until a second
package needs to put something inside them. When two packages provide the
same file, the one with the lower priority number wins; equal priorities
from different packages are a conflict.`

	MsgComposeShort = "Compose the environment described by a lock file"
	MsgComposeLong  = `Compose reads a resolved environment (TOML, YAML or JSON) and links the
outputs it installs, plus everything they propagate, into the output
directory. The new tree is built next to the output and swapped in only
when the composition succeeds.`
	MsgComposeExample = `  # Build an environment from a lock file
  buildenv compose --lock env.toml --out ./result

  # Compose the packages of another platform
  buildenv compose --lock env.json --out ./result --system aarch64-darwin`

	MsgMergeShort = "Merge package trees given on the command line"
	MsgMergeLong  = `Merge links the given trees into the output directory. Each tree is its own
package; an optional @RANK suffix sets its priority, otherwise the
configured default priority applies.`
	MsgMergeExample = `  # Let the first tree win over the second
  buildenv merge --out ./result /store/hello@1 /store/hello-wrapped@2`

	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgCompletionLong  = `To load completions:

Bash:
  $ source <(buildenv completion bash)

Zsh:
  $ buildenv completion zsh > "${fpath[1]}/_buildenv"

Fish:
  $ buildenv completion fish | source

PowerShell:
  PS> buildenv completion powershell | Out-String | Invoke-Expression
`
)

// Flag descriptions
const (
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Config file (default is $XDG_CONFIG_HOME/buildenv/config.toml)"
	MsgFlagLock    = "Lock file describing the environment"
	MsgFlagOut     = "Directory to compose into; replaced on success"
	MsgFlagSystem  = "Only compose packages for this system (default from config or the running platform)"
)

// Output formats
const (
	MsgVersionFormat = "buildenv version %s\n  commit: %s\n  built:  %s\n"
)
