package workspace

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sharext-labs/sharext/internal/viewer"
)

// CloseCommand is the input line that closes the focused file.
const CloseCommand = "close"

// FocusReader reads the file the user wants to look at, one path per line.
// A path moves focus to that file; the line "close" closes the focused
// file. Relative paths are resolved against Dir.
type FocusReader struct {
	Dir string
	r   io.Reader
}

// NewFocusReader reads lines from r, resolving relative paths against dir.
func NewFocusReader(r io.Reader, dir string) *FocusReader {
	return &FocusReader{Dir: dir, r: r}
}

// Run emits an event per meaningful line until r is exhausted or ctx is
// done. emit is called from the calling goroutine.
func (f *FocusReader) Run(ctx context.Context, emit func(viewer.Event)) error {
	var focused string
	scanner := bufio.NewScanner(f.r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == CloseCommand:
			if focused == "" {
				continue
			}
			emit(viewer.ArtifactClosed{Ref: focused})
			focused = ""
		default:
			ref, err := Resolve(f.Dir, line)
			if err != nil {
				return err
			}
			focused = ref
			emit(viewer.FocusChanged{Ref: ref})
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading focus input: %w", err)
	}
	return nil
}

// Resolve returns ref as a cleaned absolute path, resolving relative refs
// against dir.
func Resolve(dir, ref string) (string, error) {
	if !filepath.IsAbs(ref) {
		ref = filepath.Join(dir, ref)
	}
	abs, err := filepath.Abs(ref)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", ref, err)
	}
	return abs, nil
}
