package cli

import (
	"fmt"

	"github.com/sharext-labs/sharext/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write settings stored at ~/.sharext/config.yaml.

Keys:
  extensions_dir            editor extensions directory (default ~/.vscode/extensions)
  code_binary               editor command used to install extensions (default "code")
  marketplace.api_url       extension query endpoint
  marketplace.api_version   gallery API version
  marketplace.timeout       per-lookup timeout, e.g. "15s"
  reconcile.concurrency     parallel marketplace lookups during export
  view.addr                 listen address of the viewer
  log_level                 debug, info, warn, error or off

Every key can also be set through the environment, e.g. SHAREXT_MARKETPLACE_API_URL.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}
