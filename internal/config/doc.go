// Package config manages user-level settings stored at ~/.sharext/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the marketplace endpoint, the editor's extensions directory, and the log
// level. Every key has a default and can be overridden from the environment.
package config
