package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/sharext-labs/sharext/internal/branding"
	"github.com/sharext-labs/sharext/internal/config"
	"github.com/sharext-labs/sharext/internal/log"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` exports the editor extensions installed on this machine to a list file
that can be shared, and shows such lists with the install state of every entry.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		log.SetLevel(config.Get(config.KeyLogLevel))
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
