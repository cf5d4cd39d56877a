package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/sharext-labs/sharext/internal/config"
	"github.com/sharext-labs/sharext/internal/inventory"
	"github.com/sharext-labs/sharext/internal/listcodec"
	"github.com/sharext-labs/sharext/internal/marketplace"
	"github.com/sharext-labs/sharext/internal/reconcile"
	"github.com/spf13/cobra"
)

var exportExtensionsDir string

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export installed extensions to a list file",
	Long: `Export the extensions installed in the local editor to a list file.

Every extension is looked up in the marketplace for its name, author,
description and icon. When a lookup fails, the metadata of the installed copy
is used instead, so the list always contains every installed extension.

The file name must end with "` + listcodec.FileExtension() + `" and defaults to ` + listcodec.DefaultFileName() + `.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportExtensionsDir, "extensions-dir", "", "Editor extensions directory (overrides extensions_dir)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	path := listcodec.DefaultFileName()
	if len(args) == 1 {
		path = args[0]
	}
	// Reject bad names before doing any work.
	if err := listcodec.ValidatePath(path); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	status := cmd.ErrOrStderr()

	dir := extensionsDir(exportExtensionsDir)
	color.New(color.FgCyan).Fprintln(status, "Retrieving local extensions...")
	items, err := inventory.Scan(dir)
	if err != nil {
		return fmt.Errorf("reading installed extensions: %w", err)
	}
	if len(items) == 0 {
		color.New(color.FgYellow).Fprintf(status, "No installed extensions found in %s\n", dir)
	}

	engine := &reconcile.Engine{
		Source:         newMarketplaceClient(),
		MaxConcurrency: config.GetInt(config.KeyReconcileConcurrency),
	}
	fallbacks := 0
	records := engine.Reconcile(cmd.Context(), items, func(p reconcile.Progress) {
		marker := color.GreenString("✓")
		if p.Err != nil {
			fallbacks++
			marker = color.YellowString("!")
		}
		fmt.Fprintf(status, "%s %s Fetching info for '%s'...\n",
			color.HiBlackString("[%d/%d]", p.Completed, p.Total), marker, p.Name)
	})

	color.New(color.FgCyan).Fprintln(status, "Writing JSON file...")
	if err := listcodec.WriteFile(path, records); err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	color.New(color.FgGreen).Fprintf(out, "Exported %d extensions to %s\n", len(records), abs)
	if fallbacks > 0 {
		color.New(color.FgYellow).Fprintf(out, "%d not found in the marketplace, local metadata was used\n", fallbacks)
	}
	return nil
}

// extensionsDir picks the extensions directory: flag, then config, then
// the editor default.
func extensionsDir(flag string) string {
	if flag != "" {
		return flag
	}
	if dir := config.Get(config.KeyExtensionsDir); dir != "" {
		return dir
	}
	return inventory.DefaultDir()
}

func newMarketplaceClient() *marketplace.Client {
	return marketplace.New(
		marketplace.WithAPIURL(config.Get(config.KeyMarketplaceAPIURL)),
		marketplace.WithAPIVersion(config.Get(config.KeyMarketplaceAPIVersion)),
		marketplace.WithTimeout(config.GetDuration(config.KeyMarketplaceTimeout)),
	)
}
