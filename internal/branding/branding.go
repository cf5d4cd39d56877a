// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. The CLI name doubles as the artifact file suffix
// (<cli_name>.json), so renaming the product renames its list files too.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName            string `yaml:"cli_name"`
	DisplayName        string `yaml:"display_name"`
	Description        string `yaml:"description"`
	HomeDir            string `yaml:"home_dir"`
	EnvPrefix          string `yaml:"env_prefix"`
	GoModule           string `yaml:"go_module"`
	MarketplaceItemURL string `yaml:"marketplace_item_url"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:            "sharext",
			DisplayName:        "ShareXt",
			Description:        "Export installed editor extensions and browse shared extension lists",
			HomeDir:            ".sharext",
			EnvPrefix:          "SHAREXT",
			GoModule:           "github.com/sharext-labs/sharext",
			MarketplaceItemURL: "https://marketplace.visualstudio.com/items?itemName=",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "sharext").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "ShareXt").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".sharext").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "SHAREXT").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// MarketplaceItemURL returns the marketplace page prefix that an extension id
// is appended to.
func MarketplaceItemURL() string { load(); return defaults.MarketplaceItemURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "SHAREXT_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
