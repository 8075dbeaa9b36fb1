package buildenv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flox/flox-sub009/internal/version"
	"github.com/flox/flox-sub009/pkg/compose"
	"github.com/flox/flox-sub009/pkg/config"
	"github.com/flox/flox-sub009/pkg/lockfile"
	"github.com/flox/flox-sub009/pkg/logging"
	"github.com/flox/flox-sub009/pkg/paths"
	"github.com/flox/flox-sub009/pkg/priority"
	"github.com/flox/flox-sub009/pkg/publish"
	"github.com/flox/flox-sub009/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app is the state shared by the commands of one invocation
type app struct {
	verbosity  int
	configFile string
	// names maps package roots to display names for error reports
	names map[string]string
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	a := &app{}
	rootCmd := newRootCmd(a)
	if err := rootCmd.Execute(); err != nil {
		ui.NewPrinter(rootCmd.ErrOrStderr(), a.names).Error(err)
		return 1
	}
	return 0
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "buildenv",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfiguration(a.configFile)
			if err != nil {
				return err
			}
			config.Initialize(cfg)

			verbosity := a.verbosity
			if verbosity == 0 {
				verbosity = cfg.Logging.Verbosity
			}
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", MsgFlagConfig)

	rootCmd.AddCommand(newComposeCmd(a))
	rootCmd.AddCommand(newMergeCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newComposeCmd(a *app) *cobra.Command {
	var lockPath, out, system string

	cmd := &cobra.Command{
		Use:     "compose --lock FILE --out DIR",
		Short:   MsgComposeShort,
		Long:    MsgComposeLong,
		Example: MsgComposeExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lockAbs, err := paths.Absolute(lockPath)
			if err != nil {
				return err
			}
			lock, err := lockfile.Load(lockAbs)
			if err != nil {
				return err
			}
			a.names = lock.PackageNames()

			if system == "" {
				system = config.Get().TargetSystem()
			}
			contributions := lock.Contributions(system, config.GetCompose().DefaultPriority)

			log.Info().
				Str("lock", lockPath).
				Str("system", system).
				Int("contributions", len(contributions)).
				Msg("Composing environment")

			return a.publish(cmd, out, contributions)
		},
	}

	cmd.Flags().StringVar(&lockPath, "lock", "", MsgFlagLock)
	cmd.Flags().StringVar(&out, "out", "", MsgFlagOut)
	cmd.Flags().StringVar(&system, "system", "", MsgFlagSystem)
	_ = cmd.MarkFlagRequired("lock")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newMergeCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:     "merge --out DIR PATH[@RANK]...",
		Short:   MsgMergeShort,
		Long:    MsgMergeLong,
		Example: MsgMergeExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contributions := make([]compose.Contribution, 0, len(args))
			a.names = make(map[string]string, len(args))
			for _, arg := range args {
				contribution, name, err := parseTreeArg(arg, config.GetCompose().DefaultPriority)
				if err != nil {
					return err
				}
				contributions = append(contributions, contribution)
				a.names[contribution.SourceRoot] = name
			}
			return a.publish(cmd, out, contributions)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", MsgFlagOut)
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

// publish composes contributions into out and reports the result
func (a *app) publish(cmd *cobra.Command, out string, contributions []compose.Contribution) error {
	dest, err := paths.Absolute(out)
	if err != nil {
		return err
	}

	result, err := publish.Publish(cmd.Context(), dest, func(dir string) (compose.Result, error) {
		return compose.Compose(dir, contributions)
	}, publish.Options{KeepBackup: config.GetPublish().KeepBackup})
	if err != nil {
		return err
	}

	ui.NewPrinter(cmd.OutOrStdout(), a.names).Summary(result, dest)
	return nil
}

// parseTreeArg reads PATH or PATH@RANK and also returns PATH as written.
// The suffix only counts as a rank when it is a number, so paths
// containing '@' still work.
func parseTreeArg(arg string, defaultRank int) (compose.Contribution, string, error) {
	path, rank := arg, defaultRank
	if i := strings.LastIndex(arg, "@"); i > 0 {
		if n, err := strconv.Atoi(arg[i+1:]); err == nil {
			path, rank = arg[:i], n
		}
	}

	abs, err := paths.Absolute(path)
	if err != nil {
		return compose.Contribution{}, "", err
	}

	return compose.Contribution{
		SourceRoot: abs,
		Included:   true,
		Priority:   priority.Priority{Rank: rank, Owner: abs},
	}, path, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
}
