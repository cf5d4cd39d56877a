//go:build integration

package integration_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir       string // HOME, holds .sharext/config.yaml
	ExtensionsDir string // editor extensions directory
	WorkDir       string // where list files are written
}

// setupTestEnv creates isolated temp directories and points HOME at one of
// them so no user configuration leaks into the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:       t.TempDir(),
		ExtensionsDir: t.TempDir(),
		WorkDir:       t.TempDir(),
	}
	t.Setenv("HOME", env.HomeDir)
	return env
}

// installExtension writes <extensionsDir>/<publisher>.<name>-<version>/package.json.
func installExtension(t *testing.T, extensionsDir, publisher, name, displayName, version string) string {
	t.Helper()
	dir := filepath.Join(extensionsDir, fmt.Sprintf("%s.%s-%s", publisher, name, version))
	manifest := fmt.Sprintf(`{"name": %q, "publisher": %q, "displayName": %q, "description": "local copy of %s", "version": %q}`,
		name, publisher, displayName, displayName, version)
	writeFile(t, filepath.Join(dir, "package.json"), manifest)
	return dir
}

// marketplaceEntry is what the fake marketplace knows about one id.
type marketplaceEntry struct {
	DisplayName string
	Publisher   string
	Description string
	Icon        string
}

// startMarketplace serves the extension-query API for the given entries.
// Unknown ids get an empty result set.
func startMarketplace(t *testing.T, entries map[string]marketplaceEntry) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Filters []struct {
				Criteria []struct {
					Value string `json:"value"`
				} `json:"criteria"`
			} `json:"filters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Filters) == 0 || len(body.Filters[0].Criteria) == 0 {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		id := body.Filters[0].Criteria[0].Value
		e, ok := entries[id]
		if !ok {
			io.WriteString(w, `{"results":[{"extensions":[]}]}`)
			return
		}
		resp := map[string]any{
			"results": []any{map[string]any{
				"extensions": []any{map[string]any{
					"extensionName":    id[strings.Index(id, ".")+1:],
					"displayName":      e.DisplayName,
					"shortDescription": e.Description,
					"publisher":        map[string]any{"publisherName": id[:strings.Index(id, ".")], "displayName": e.Publisher},
					"versions": []any{map[string]any{
						"version": "1.0.0",
						"files": []any{map[string]any{
							"assetType": "Microsoft.VisualStudio.Services.Icons.Small",
							"source":    e.Icon,
						}},
					}},
				}},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeFile creates parent directories and writes content to path.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}

// waitForPage polls url until the body satisfies ok or the timeout expires.
func waitForPage(t *testing.T, url string, ok func(body string) bool) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var body string
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			data, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			body = string(data)
			if ok(body) {
				return body
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("page at %s never reached the expected state; last body:\n%s", url, body)
	return ""
}
