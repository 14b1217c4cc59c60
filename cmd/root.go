package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cloudcleaner/cloudcleaner/internal/logging"
)

var (
	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	verbosity  int
	configFile string
}

// NewRootCmd builds the ccl command tree. Each call returns fresh
// commands and flag state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "ccl",
		Short: "Find and safely remove reclaimable disk space",
		Long: `cloudcleaner finds caches, temp files and logs that can be reclaimed,
checks every path against protected-location rules, and deletes what you
select, optionally through the trash, keeping an audit trail.

Typical flow: ccl scan, then ccl preview PATH..., then ccl clean PATH...`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/cloudcleaner/config.toml)")

	rootCmd.AddCommand(newScanCmd(opts))
	rootCmd.AddCommand(newPreviewCmd(opts))
	rootCmd.AddCommand(newCleanCmd(opts))
	rootCmd.AddCommand(newClassifyCmd(opts))
	rootCmd.AddCommand(newExclusionsCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// Execute runs the root command. Cancelling ctx stops a running scan or
// cleanup between items.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
