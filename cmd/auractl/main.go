// Command auractl is the operator's command line for the intake store:
// admin login, listing and moving submissions, payments, portfolio and
// submitting an intake draft.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "auractl",
		Short:         "Manage website-build submissions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.APIURL, "api", envOr("AURA_API_URL", "http://localhost:8080"), "store API base URL")
	cmd.PersistentFlags().StringVar(&opts.StateDB, "state", envOr("AURA_STATE_DB", defaultStatePath()), "local state database")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", envOr("AURA_LOG_LEVEL", "warn"), "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newListCommand(opts),
		newShowCommand(opts),
		newStatusCommand(opts),
		newNoteCommand(opts),
		newPayCommand(opts),
		newVerifyCommand(opts),
		newStatsCommand(opts),
		newTrackCommand(opts),
		newSubmitCommand(opts),
		newPortfolioCommand(opts),
		newLangCommand(opts),
	)
	return cmd
}
