package viewer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sharext-labs/sharext/internal/log"
)

// errSkipped marks a guarded rerender whose guard did not hold.
var errSkipped = errors.New("rerender skipped")

// Config holds the collaborators a Controller needs.
type Config struct {
	Loader  Loader
	Open    Opener
	Actions Actions
}

// Controller owns the single view and its binding to a list file. The zero
// value is uninitialized; use New, or Init on a zero value.
type Controller struct {
	mu      sync.Mutex
	state   State
	source  string
	surface Surface
	viewID  uint64 // identifies the current surface for dismissal callbacks
	latest  uint64 // generation of the newest render request

	renderMu sync.Mutex

	loader  Loader
	open    Opener
	actions Actions
}

// New returns an initialized controller in the Closed state.
func New(cfg Config) (*Controller, error) {
	c := &Controller{}
	if err := c.Init(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Init moves a zero-value controller from Uninitialized to Closed.
func (c *Controller) Init(cfg Config) error {
	if cfg.Loader == nil || cfg.Open == nil || cfg.Actions == nil {
		return errors.New("viewer: loader, opener and actions are required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateUninitialized {
		return fmt.Errorf("%w: controller is already initialized", ErrInvalidTransition)
	}
	c.loader = cfg.Loader
	c.open = cfg.Open
	c.actions = cfg.Actions
	c.state = StateClosed
	return nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Source returns the bound list file, or "" when none is bound.
func (c *Controller) Source() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// Rerender binds ref when it is non-empty and differs from the current
// source, opens the view if it is closed, and renders the bound file.
func (c *Controller) Rerender(ctx context.Context, ref string) error {
	return c.rerender(ctx, ref, nil)
}

// rerender runs a render request. guard, when set, is evaluated under the
// state lock before anything changes; if it returns false the request is
// dropped without error.
func (c *Controller) rerender(ctx context.Context, ref string, guard func() bool) error {
	req, err := c.prepare(ref, guard)
	if errors.Is(err, errSkipped) {
		return nil
	}
	if err != nil {
		return err
	}

	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	if c.superseded(req) {
		return nil
	}

	decoded, err := c.loader.Load(ctx, req.source)
	if err != nil {
		return fmt.Errorf("loading %s: %w", req.source, err)
	}

	if c.superseded(req) {
		return nil
	}

	page := Page{
		Title:   Title(req.source),
		Source:  req.source,
		Records: decoded.Records,
	}
	for _, m := range decoded.Malformed {
		page.Problems = append(page.Problems, m.Error())
	}

	if err := req.surface.Render(ctx, page); err != nil {
		return fmt.Errorf("rendering %s: %w", req.source, err)
	}
	log.Debug().Str("source", req.source).Int("records", len(page.Records)).Uint64("generation", req.gen).Msg("rendered extension list")
	return nil
}

// renderRequest is a snapshot of the state a render was requested against.
type renderRequest struct {
	gen     uint64
	viewID  uint64
	source  string
	surface Surface
}

// prepare validates the transition, applies the rebind and opens the view
// when needed.
func (c *Controller) prepare(ref string, guard func() bool) (renderRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUninitialized {
		return renderRequest{}, ErrNotInitialized
	}
	if guard != nil && !guard() {
		return renderRequest{}, errSkipped
	}

	if ref != "" && ref != c.source {
		log.Debug().Str("from", c.source).Str("to", ref).Msg("rebinding viewer")
		c.source = ref
	}
	if c.source == "" {
		return renderRequest{}, ErrNoSourceBound
	}

	if c.state == StateClosed {
		c.viewID++
		id := c.viewID
		surface, err := c.open(Handlers{
			OnMessage: c.dispatch,
			OnDispose: func() { c.dismissed(id) },
		})
		if err != nil {
			return renderRequest{}, fmt.Errorf("opening view: %w", err)
		}
		c.surface = surface
		c.state = StateOpen
	}

	c.latest++
	return renderRequest{
		gen:     c.latest,
		viewID:  c.viewID,
		source:  c.source,
		surface: c.surface,
	}, nil
}

// superseded reports whether a newer request exists or the view this
// request targets has been closed.
func (c *Controller) superseded(req renderRequest) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return req.gen != c.latest || req.viewID != c.viewID || c.state != StateOpen
}

// Close disposes the view and keeps the binding.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.state == StateUninitialized {
		c.mu.Unlock()
		return ErrNotInitialized
	}
	if c.state != StateOpen {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot close a %s viewer", ErrInvalidTransition, state)
	}
	surface := c.detachLocked()
	c.mu.Unlock()

	return disposeSurface(surface)
}

// detachLocked moves to Closed and hands back the surface to dispose.
// Callers hold c.mu.
func (c *Controller) detachLocked() Surface {
	surface := c.surface
	c.surface = nil
	c.state = StateClosed
	return surface
}

func disposeSurface(surface Surface) error {
	if surface == nil {
		return nil
	}
	if err := surface.Dispose(); err != nil {
		return fmt.Errorf("disposing view: %w", err)
	}
	return nil
}

// dismissed handles the user closing the view. Stale callbacks from an
// earlier surface are ignored.
func (c *Controller) dismissed(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen || id != c.viewID {
		return
	}
	log.Debug().Str("source", c.source).Msg("view dismissed")
	c.surface = nil
	c.state = StateClosed
}

// dispatch forwards an inbound surface message to the host actions.
func (c *Controller) dispatch(ctx context.Context, msg Message) {
	if msg.ID == "" {
		log.Warn().Str("command", string(msg.Command)).Msg("ignoring view message without extension id")
		return
	}

	var err error
	switch msg.Command {
	case CommandOpen:
		err = c.actions.OpenExtension(ctx, msg.ID)
	case CommandInstall:
		err = c.actions.InstallExtension(ctx, msg.ID)
	default:
		log.Warn().Str("command", string(msg.Command)).Str("id", msg.ID).Msg("ignoring unknown view message")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("command", string(msg.Command)).Str("id", msg.ID).Msg("view action failed")
	}
}

// Title returns the view title for a list file: the base name up to its
// first dot.
func Title(ref string) string {
	name := filepath.Base(ref)
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	return "Extensions Viewer | " + name
}
