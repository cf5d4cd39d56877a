package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sharext-labs/sharext/internal/extension"
	"github.com/sharext-labs/sharext/internal/log"
)

const (
	manifestFile = "package.json"
	nlsFile      = "package.nls.json"
	obsoleteFile = ".obsolete"

	// placeholderPublisher is what the editor reports for extensions that
	// were never published.
	placeholderPublisher = "undefined_publisher"
)

// packageManifest holds the package.json fields the inventory reads.
type packageManifest struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Publisher   string `json:"publisher"`
	Description string `json:"description"`
	Version     string `json:"version"`
	IsBuiltin   bool   `json:"isBuiltin"`
}

// Inventory is a snapshot source over one extensions directory.
type Inventory struct {
	Dir string
}

// New returns an Inventory for dir, or for DefaultDir when dir is empty.
func New(dir string) *Inventory {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Inventory{Dir: dir}
}

// DefaultDir returns the editor's default extensions directory
// (~/.vscode/extensions).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".vscode", "extensions")
	}
	return filepath.Join(home, ".vscode", "extensions")
}

// Snapshot returns the currently installed extensions.
func (inv *Inventory) Snapshot() ([]extension.LocalItem, error) {
	return Scan(inv.Dir)
}

// Scan reads every extension folder under dir and returns one item per
// extension id, in directory order. A missing directory yields an empty
// inventory; unreadable or invalid folders are skipped.
func Scan(dir string) ([]extension.LocalItem, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading extensions directory %s: %w", dir, err)
	}

	obsolete := loadObsolete(dir)

	var items []extension.LocalItem
	index := make(map[string]int)
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") || obsolete[name] {
			continue
		}

		item, ok := readItem(filepath.Join(dir, name))
		if !ok {
			continue
		}

		if i, seen := index[item.ID]; seen {
			if isNewer(item.Version, items[i].Version) {
				items[i] = item
			}
			continue
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}

	return items, nil
}

// readItem parses one extension folder. It returns false for folders that
// are not extensions or that the inventory excludes.
func readItem(extDir string) (extension.LocalItem, bool) {
	data, err := os.ReadFile(filepath.Join(extDir, manifestFile))
	if err != nil {
		return extension.LocalItem{}, false
	}

	var m packageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		log.Debug().Err(err).Str("dir", extDir).Msg("skipping extension with unreadable package.json")
		return extension.LocalItem{}, false
	}

	if m.IsBuiltin || m.Publisher == "" || m.Name == "" || m.Publisher == placeholderPublisher {
		return extension.LocalItem{}, false
	}

	displayName := m.DisplayName
	description := m.Description
	if isNLSKey(displayName) || isNLSKey(description) {
		nls := loadNLS(extDir)
		displayName = resolveNLS(displayName, nls)
		description = resolveNLS(description, nls)
	}
	if displayName == "" {
		displayName = m.Name
	}

	return extension.LocalItem{
		ID:          m.Publisher + "." + m.Name,
		Name:        displayName,
		Publisher:   m.Publisher,
		Description: description,
		Version:     m.Version,
		Dir:         extDir,
	}, true
}

// loadObsolete reads the editor's list of folders pending removal.
func loadObsolete(dir string) map[string]bool {
	data, err := os.ReadFile(filepath.Join(dir, obsoleteFile))
	if err != nil {
		return nil
	}
	var obsolete map[string]bool
	if err := json.Unmarshal(data, &obsolete); err != nil {
		return nil
	}
	return obsolete
}

// isNLSKey reports whether s is a localization placeholder like "%displayName%".
func isNLSKey(s string) bool {
	return len(s) > 2 && strings.HasPrefix(s, "%") && strings.HasSuffix(s, "%")
}

func loadNLS(extDir string) map[string]any {
	data, err := os.ReadFile(filepath.Join(extDir, nlsFile))
	if err != nil {
		return nil
	}
	var nls map[string]any
	if err := json.Unmarshal(data, &nls); err != nil {
		return nil
	}
	return nls
}

// resolveNLS replaces a placeholder with its localized value. Values may be
// plain strings or {"message": "..."} objects.
func resolveNLS(s string, nls map[string]any) string {
	if !isNLSKey(s) {
		return s
	}
	switch v := nls[strings.Trim(s, "%")].(type) {
	case string:
		return v
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			return msg
		}
	}
	return ""
}
