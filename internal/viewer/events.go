package viewer

import (
	"context"
	"fmt"

	"github.com/sharext-labs/sharext/internal/listcodec"
	"github.com/sharext-labs/sharext/internal/log"
)

// Event is an external trigger the controller reacts to.
type Event interface {
	isEvent()
}

// ArtifactOpened reports that a file was opened by the user.
type ArtifactOpened struct{ Ref string }

// ArtifactChanged reports that a file's content changed.
type ArtifactChanged struct{ Ref string }

// ArtifactClosed reports that a file was closed or removed.
type ArtifactClosed struct{ Ref string }

// FocusChanged reports that the user switched to another file.
type FocusChanged struct{ Ref string }

// InventoryChanged reports that installed extensions changed.
type InventoryChanged struct{}

func (ArtifactOpened) isEvent()   {}
func (ArtifactChanged) isEvent()  {}
func (ArtifactClosed) isEvent()   {}
func (FocusChanged) isEvent()     {}
func (InventoryChanged) isEvent() {}

// Handle applies an external event. Events about files that are not list
// files, or about files other than the bound one, are ignored.
func (c *Controller) Handle(ctx context.Context, ev Event) error {
	if c.State() == StateUninitialized {
		return ErrNotInitialized
	}

	switch ev := ev.(type) {
	case ArtifactOpened:
		if !listcodec.IsListPath(ev.Ref) {
			return nil
		}
		return c.Rerender(ctx, ev.Ref)

	case ArtifactChanged:
		return c.rerender(ctx, "", func() bool {
			return c.source != "" && ev.Ref == c.source
		})

	case InventoryChanged:
		return c.rerender(ctx, "", func() bool {
			return c.state == StateOpen
		})

	case FocusChanged:
		if !listcodec.IsListPath(ev.Ref) {
			return nil
		}
		return c.rerender(ctx, ev.Ref, func() bool {
			return ev.Ref != c.source
		})

	case ArtifactClosed:
		return c.sourceClosed(ev.Ref)

	default:
		return fmt.Errorf("%w: unsupported event %T", ErrInvalidTransition, ev)
	}
}

// sourceClosed closes the view when the bound file goes away and clears
// the binding.
func (c *Controller) sourceClosed(ref string) error {
	c.mu.Lock()
	if c.source == "" || ref != c.source {
		c.mu.Unlock()
		return nil
	}
	log.Debug().Str("source", ref).Msg("bound list file closed")
	c.source = ""
	var surface Surface
	if c.state == StateOpen {
		surface = c.detachLocked()
	}
	c.mu.Unlock()

	return disposeSurface(surface)
}
