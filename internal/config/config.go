package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sharext-labs/sharext/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys recognised in config.yaml. Each can also be set through the
// environment, e.g. marketplace.api_url → SHAREXT_MARKETPLACE_API_URL.
const (
	KeyExtensionsDir         = "extensions_dir"
	KeyCodeBinary            = "code_binary"
	KeyMarketplaceAPIURL     = "marketplace.api_url"
	KeyMarketplaceAPIVersion = "marketplace.api_version"
	KeyMarketplaceTimeout    = "marketplace.timeout"
	KeyReconcileConcurrency  = "reconcile.concurrency"
	KeyViewAddr              = "view.addr"
	KeyLogLevel              = "log_level"
)

// Dir returns the path to the config directory (~/.sharext/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.sharext/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	setDefaults()

	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

func setDefaults() {
	viper.SetDefault(KeyExtensionsDir, "")
	viper.SetDefault(KeyCodeBinary, "code")
	viper.SetDefault(KeyMarketplaceAPIURL, "https://marketplace.visualstudio.com/_apis/public/gallery/extensionquery")
	viper.SetDefault(KeyMarketplaceAPIVersion, "7.2-preview.1")
	viper.SetDefault(KeyMarketplaceTimeout, 15*time.Second)
	viper.SetDefault(KeyReconcileConcurrency, 8)
	viper.SetDefault(KeyViewAddr, "127.0.0.1:0")
	viper.SetDefault(KeyLogLevel, "warn")
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// GetInt returns an integer config value, or 0 if unset or unparsable.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetDuration returns a duration config value such as "15s".
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
