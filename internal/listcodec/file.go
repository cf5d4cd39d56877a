package listcodec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sharext-labs/sharext/internal/branding"
	"github.com/sharext-labs/sharext/internal/extension"
)

// FileExtension returns the suffix every list file name must end with,
// e.g. "sharext.json".
func FileExtension() string {
	return branding.CLIName() + ".json"
}

// DefaultFileName returns the file name used when the user does not pick one.
func DefaultFileName() string {
	return "extensions." + FileExtension()
}

// IsListPath reports whether path names a list file.
func IsListPath(path string) bool {
	return path != "" && strings.HasSuffix(path, FileExtension())
}

// ValidatePath fails with ErrInvalidPath unless path ends with FileExtension.
func ValidatePath(path string) error {
	if !IsListPath(path) {
		return fmt.Errorf("%w: file path must end with '%s'", ErrInvalidPath, FileExtension())
	}
	return nil
}

// WriteFile encodes records and writes them to path. The path is checked
// before anything touches the filesystem, and the content is written to a
// temporary file that is renamed into place, so a failed write never leaves
// a partial list behind.
func WriteFile(path string, records []extension.Record) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	data, err := Encode(records)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %w", ErrIO, dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("%w: writing %s: %w", ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: writing %s: %w", ErrIO, path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return fmt.Errorf("%w: setting permissions on %s: %w", ErrIO, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("%w: replacing %s: %w", ErrIO, path, err)
	}
	return nil
}

// ReadFile reads and decodes the list stored at path.
func ReadFile(path string) (*Decoded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrIO, path, err)
	}
	decoded, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return decoded, nil
}
