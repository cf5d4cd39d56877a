//go:build integration

package integration_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sharext-labs/sharext/internal/extension"
	"github.com/sharext-labs/sharext/internal/inventory"
	"github.com/sharext-labs/sharext/internal/listcodec"
	"github.com/sharext-labs/sharext/internal/viewer"
	"github.com/sharext-labs/sharext/internal/webview"
	"github.com/sharext-labs/sharext/internal/workspace"
)

type recordingActions struct {
	mu        sync.Mutex
	installed []string
}

func (a *recordingActions) OpenExtension(ctx context.Context, id string) error { return nil }

func (a *recordingActions) InstallExtension(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.installed = append(a.installed, id)
	return nil
}

// TestViewFollowsListFile drives the viewer through file activity the way
// the view command does: watcher events go to the controller, which renders
// into the web panel.
func TestViewFollowsListFile(t *testing.T) {
	env := setupTestEnv(t)
	installExtension(t, env.ExtensionsDir, "golang", "go", "Go", "0.41.0")

	server := webview.NewServer("127.0.0.1:0")
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	ctrl, err := viewer.New(viewer.Config{
		Loader:  viewer.ArtifactLoader{Inventory: inventory.New(env.ExtensionsDir)},
		Open:    server.Open,
		Actions: &recordingActions{},
	})
	if err != nil {
		t.Fatalf("viewer.New: %v", err)
	}

	files, err := workspace.NewWatcher(0)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer files.Close()
	if err := files.Add(env.WorkDir); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	files.Start(ctx)
	handleErrs := make(chan error, 16)
	go func() {
		for {
			select {
			case ev := <-files.Events():
				if err := ctrl.Handle(ctx, ev); err != nil {
					handleErrs <- err
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	path := filepath.Join(env.WorkDir, "team.sharext.json")
	if err := listcodec.WriteFile(path, []extension.Record{
		{ID: "pub.zeta", Name: "Zeta"},
		{ID: "golang.go", Name: "Go"},
	}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	body := waitForPage(t, ts.URL, func(b string) bool { return strings.Contains(b, "Zeta") })
	if strings.Index(body, ">Go<") > strings.Index(body, "Zeta") {
		t.Error("Go should be listed before Zeta")
	}
	if !strings.Contains(body, `data-command="installExtension" data-id="pub.zeta"`) {
		t.Error("Zeta is not installed and should offer Install")
	}
	if strings.Contains(body, `data-command="installExtension" data-id="golang.go"`) {
		t.Error("Go is installed and should not offer Install")
	}
	if got := ctrl.State(); got != viewer.StateOpen {
		t.Errorf("state = %s, want open", got)
	}

	if err := listcodec.WriteFile(path, []extension.Record{{ID: "pub.alpha", Name: "Alpha"}}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	waitForPage(t, ts.URL, func(b string) bool { return strings.Contains(b, "Alpha") && !strings.Contains(b, "Zeta") })

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	waitForPage(t, ts.URL, func(b string) bool { return strings.Contains(b, "No extension list is open") })
	if got := ctrl.Source(); got != "" {
		t.Errorf("source = %q after the file was removed, want none", got)
	}

	select {
	case err := <-handleErrs:
		t.Errorf("handling a file event failed: %v", err)
	default:
	}
}
