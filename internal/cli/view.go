package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/browser"
	"github.com/sharext-labs/sharext/internal/config"
	"github.com/sharext-labs/sharext/internal/host"
	"github.com/sharext-labs/sharext/internal/inventory"
	"github.com/sharext-labs/sharext/internal/listcodec"
	"github.com/sharext-labs/sharext/internal/log"
	"github.com/sharext-labs/sharext/internal/viewer"
	"github.com/sharext-labs/sharext/internal/webview"
	"github.com/sharext-labs/sharext/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	viewAddr          string
	viewNoBrowser     bool
	viewExtensionsDir string
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Browse a list file in the browser",
	Long: `Serve a live view of a list file on a local address and open it in the browser.

The view follows the file: saving it refreshes the page, deleting it closes the
view, and installing or removing extensions updates the install state. Type the
path of another list file and press Enter to switch to it, or type "close" to
close the current one. The page offers "Open" and "Install" for every entry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().StringVar(&viewAddr, "addr", "", "Listen address (overrides view.addr)")
	viewCmd.Flags().BoolVar(&viewNoBrowser, "no-browser", false, "Do not open a browser tab")
	viewCmd.Flags().StringVar(&viewExtensionsDir, "extensions-dir", "", "Editor extensions directory (overrides extensions_dir)")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	var first string
	if len(args) == 1 {
		first, err = workspace.Resolve(cwd, args[0])
		if err != nil {
			return err
		}
		if err := listcodec.ValidatePath(first); err != nil {
			return err
		}
	}

	addr := viewAddr
	if addr == "" {
		addr = config.Get(config.KeyViewAddr)
	}
	var opts []webview.Option
	if !viewNoBrowser {
		opts = append(opts, webview.WithReveal(browser.OpenURL))
	}
	server := webview.NewServer(addr, opts...)
	if err := server.Start(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("stopping view server")
		}
	}()

	inv := inventory.New(extensionsDir(viewExtensionsDir))
	ctrl, err := viewer.New(viewer.Config{
		Loader:  viewer.ArtifactLoader{Inventory: inv},
		Open:    server.Open,
		Actions: host.New(config.Get(config.KeyCodeBinary)),
	})
	if err != nil {
		return err
	}

	files, err := workspace.NewWatcher(0)
	if err != nil {
		return err
	}
	defer files.Close()
	if err := files.Add(cwd); err != nil {
		return err
	}
	if first != "" {
		if err := files.Add(first); err != nil {
			return err
		}
	}
	files.Start(ctx)

	var inventoryChanges <-chan struct{}
	if w, err := startInventoryWatcher(ctx, inv.Dir); err != nil {
		log.Warn().Err(err).Msg("install state will not refresh automatically")
	} else {
		defer w.Close()
		inventoryChanges = w.Changes()
	}

	focus := make(chan viewer.Event)
	go readFocus(ctx, cmd.InOrStdin(), cwd, focus)

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(out, "Extensions viewer at %s\n", color.CyanString(server.URL()))
	fmt.Fprintln(out, color.HiBlackString("Type a list file path to show it, \"close\" to close it, Ctrl+C to quit."))

	if first != "" {
		handleViewEvent(ctx, ctrl, viewer.ArtifactOpened{Ref: first}, errOut)
	}

	for {
		select {
		case <-ctx.Done():
			if err := ctrl.Close(); err != nil && !errors.Is(err, viewer.ErrInvalidTransition) {
				log.Warn().Err(err).Msg("closing view")
			}
			return nil

		case ev := <-files.Events():
			handleViewEvent(ctx, ctrl, ev, errOut)

		case ev := <-focus:
			if f, ok := ev.(viewer.FocusChanged); ok && listcodec.IsListPath(f.Ref) {
				if err := files.Add(f.Ref); err != nil {
					log.Warn().Err(err).Str("path", f.Ref).Msg("changes to this file will not refresh the view")
				}
			}
			handleViewEvent(ctx, ctrl, ev, errOut)

		case <-inventoryChanges:
			handleViewEvent(ctx, ctrl, viewer.InventoryChanged{}, errOut)
		}
	}
}

func startInventoryWatcher(ctx context.Context, dir string) (*inventory.Watcher, error) {
	w, err := inventory.NewWatcher(dir, 0)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// readFocus forwards focus input to events until input ends or ctx is done.
func readFocus(ctx context.Context, in io.Reader, dir string, events chan<- viewer.Event) {
	err := workspace.NewFocusReader(in, dir).Run(ctx, func(ev viewer.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("reading focus input")
	}
}

func handleViewEvent(ctx context.Context, ctrl *viewer.Controller, ev viewer.Event, errOut io.Writer) {
	if err := ctrl.Handle(ctx, ev); err != nil {
		color.New(color.FgRed).Fprintf(errOut, "%v\n", err)
	}
}
