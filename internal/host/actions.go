package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/pkg/browser"
	"github.com/sharext-labs/sharext/internal/extension"
	"github.com/sharext-labs/sharext/internal/log"
)

// ErrInvalidID is returned for ids that are not publisher-qualified names.
var ErrInvalidID = errors.New("invalid extension id")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*\.[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Actions runs host actions against the system browser and the editor CLI.
type Actions struct {
	// CodeBinary is the editor command line, e.g. "code".
	CodeBinary string

	// Stdout and Stderr receive the editor's output; default os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// OpenURL opens a page in the browser; defaults to browser.OpenURL.
	OpenURL func(url string) error
}

// New returns Actions that install through codeBinary.
func New(codeBinary string) *Actions {
	return &Actions{CodeBinary: codeBinary}
}

// OpenExtension opens the marketplace page of id.
func (a *Actions) OpenExtension(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	open := a.OpenURL
	if open == nil {
		open = browser.OpenURL
	}

	link := extension.MarketplaceLink(id)
	log.Debug().Str("id", id).Str("url", link).Msg("opening marketplace page")
	if err := open(link); err != nil {
		return fmt.Errorf("opening %s: %w", link, err)
	}
	return nil
}

// InstallExtension runs `<CodeBinary> --install-extension <id>`.
func (a *Actions) InstallExtension(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if a.CodeBinary == "" {
		return errors.New("no editor command configured")
	}

	bin, err := exec.LookPath(a.CodeBinary)
	if err != nil {
		return fmt.Errorf("installing extensions requires %q on PATH: %w", a.CodeBinary, err)
	}

	stdout := a.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := a.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stderrBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "--install-extension", id)
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	log.Info().Str("id", id).Str("binary", bin).Msg("installing extension")
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderrBuf.String())
			if msg == "" {
				msg = exitErr.Error()
			}
			return fmt.Errorf("installing %s failed (exit %d): %s", id, exitErr.ExitCode(), msg)
		}
		return fmt.Errorf("installing %s: %w", id, err)
	}
	return nil
}

// ValidateID checks that id looks like "publisher.name". Ids come from
// shared files, so anything else is rejected before it reaches a command
// line or URL.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
