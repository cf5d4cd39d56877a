package viewer

import (
	"context"

	"github.com/sharext-labs/sharext/internal/extension"
	"github.com/sharext-labs/sharext/internal/listcodec"
)

// Command names an action sent back from the rendered list.
type Command string

const (
	CommandOpen    Command = "openExtension"
	CommandInstall Command = "installExtension"
)

// Message is an inbound action from the view surface.
type Message struct {
	Command Command `json:"command"`
	ID      string  `json:"id"`
}

// Page is everything a surface needs to draw the list.
type Page struct {
	Title    string
	Source   string
	Records  []extension.Record
	Problems []string // malformed records that were skipped
}

// Surface is one allocated view. Render after Dispose must be a no-op.
type Surface interface {
	Render(ctx context.Context, page Page) error
	Dispose() error
}

// Handlers are the callbacks a surface uses to reach the controller. A
// surface must not invoke them from inside Opener or Dispose.
type Handlers struct {
	// OnMessage forwards an action from the rendered list.
	OnMessage func(ctx context.Context, msg Message)
	// OnDispose reports that the user dismissed the view.
	OnDispose func()
}

// Opener allocates and shows a new surface.
type Opener func(h Handlers) (Surface, error)

// Actions executes the two actions the rendered list can request.
type Actions interface {
	OpenExtension(ctx context.Context, id string) error
	InstallExtension(ctx context.Context, id string) error
}

// Loader reads a bound list file into records ready for display.
type Loader interface {
	Load(ctx context.Context, ref string) (*listcodec.Decoded, error)
}
