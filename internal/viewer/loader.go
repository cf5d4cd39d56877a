package viewer

import (
	"context"

	"github.com/sharext-labs/sharext/internal/extension"
	"github.com/sharext-labs/sharext/internal/listcodec"
	"github.com/sharext-labs/sharext/internal/log"
)

// Snapshotter reports the currently installed extensions.
type Snapshotter interface {
	Snapshot() ([]extension.LocalItem, error)
}

// ArtifactLoader reads list files from disk and marks which records are
// installed locally.
type ArtifactLoader struct {
	// Inventory is optional; without it records carry no installed flag.
	Inventory Snapshotter
}

// Load implements Loader.
func (l ArtifactLoader) Load(ctx context.Context, ref string) (*listcodec.Decoded, error) {
	decoded, err := listcodec.ReadFile(ref)
	if err != nil {
		return nil, err
	}
	for _, m := range decoded.Malformed {
		log.Warn().Str("source", ref).Int("index", m.Index).Str("id", m.ID).Msg(m.Error())
	}

	if l.Inventory == nil {
		return decoded, nil
	}
	items, err := l.Inventory.Snapshot()
	if err != nil {
		log.Warn().Err(err).Msg("reading local inventory, showing list without install state")
		return decoded, nil
	}
	decoded.Records = extension.MarkInstalled(decoded.Records, items)
	return decoded, nil
}
