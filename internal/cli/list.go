package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/sharext-labs/sharext/internal/extension"
	"github.com/sharext-labs/sharext/internal/inventory"
	"github.com/sharext-labs/sharext/internal/listcodec"
	"github.com/sharext-labs/sharext/internal/log"
	"github.com/spf13/cobra"
)

var (
	listJSON          bool
	listStrict        bool
	listExtensionsDir string
)

var listCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "Show the extensions in a list file",
	Long: `Show the extensions stored in a list file, sorted by name, and whether each
one is installed locally. Records that cannot be read are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listStrict, "strict", false, "Fail when any record is malformed")
	listCmd.Flags().StringVar(&listExtensionsDir, "extensions-dir", "", "Editor extensions directory (overrides extensions_dir)")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents a list record for display.
type listEntry struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Author          string `json:"author"`
	Description     string `json:"description"`
	MarketplaceLink string `json:"marketplaceLink"`
	Installed       bool   `json:"installed"`
}

func runList(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := listcodec.ValidatePath(path); err != nil {
		return err
	}

	decoded, err := listcodec.ReadFile(path)
	if err != nil {
		return err
	}
	warn := color.New(color.FgYellow)
	for _, m := range decoded.Malformed {
		warn.Fprintf(cmd.ErrOrStderr(), "skipped %v\n", m)
	}
	if listStrict {
		if err := decoded.Err(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	records := decoded.Records
	items, err := inventory.Scan(extensionsDir(listExtensionsDir))
	if err != nil {
		log.Warn().Err(err).Msg("reading installed extensions")
	} else {
		records = extension.MarkInstalled(records, items)
	}

	entries := make([]listEntry, 0, len(records))
	for _, r := range records {
		installed, _ := r.IsInstalled()
		entries = append(entries, listEntry{
			ID:              r.ID,
			Name:            r.Name,
			Author:          r.Author,
			Description:     r.Description,
			MarketplaceLink: r.MarketplaceLink(),
			Installed:       installed,
		})
	}

	if listJSON {
		return printListJSON(cmd, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "The list has no extensions.")
		return nil
	}
	return printListTable(cmd, entries)
}

func printListTable(cmd *cobra.Command, entries []listEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tAUTHOR\tINSTALLED")
	for _, e := range entries {
		author := e.Author
		if author == "" {
			author = "-"
		}
		installed := "no"
		if e.Installed {
			installed = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.ID, author, installed)
	}
	return w.Flush()
}

func printListJSON(cmd *cobra.Command, entries []listEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
