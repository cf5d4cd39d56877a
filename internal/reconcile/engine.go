package reconcile

import (
	"context"
	"sync"

	"github.com/sharext-labs/sharext/internal/extension"
	"github.com/sharext-labs/sharext/internal/log"
	"github.com/sourcegraph/conc/iter"
)

// Source is the metadata lookup the engine depends on.
type Source interface {
	Lookup(ctx context.Context, id string) (extension.Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, id string) (extension.Record, error)

// Lookup calls f.
func (f SourceFunc) Lookup(ctx context.Context, id string) (extension.Record, error) {
	return f(ctx, id)
}

// Progress describes one settled lookup.
type Progress struct {
	Completed int
	Total     int
	Name      string // display name of the item that settled
	Err       error  // non-nil when the item fell back to local fields
}

// ProgressFunc receives progress notifications. Calls are serialized.
type ProgressFunc func(Progress)

// Engine reconciles local items against a metadata Source.
type Engine struct {
	Source Source
	// MaxConcurrency bounds in-flight lookups; 0 uses GOMAXPROCS.
	MaxConcurrency int
}

// Reconcile returns one record per item, in input order.
func (e *Engine) Reconcile(ctx context.Context, items []extension.LocalItem, progress ProgressFunc) []extension.Record {
	outcomes := e.Resolve(ctx, items, progress)
	records := make([]extension.Record, len(outcomes))
	for i, o := range outcomes {
		records[i] = Merge(o)
	}
	return records
}

// Resolve performs the lookups and returns the settled outcome for every
// item, index-aligned with items.
func (e *Engine) Resolve(ctx context.Context, items []extension.LocalItem, progress ProgressFunc) []Outcome {
	if len(items) == 0 {
		return []Outcome{}
	}

	var (
		mu        sync.Mutex
		completed int
	)
	report := func(item extension.LocalItem, err error) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		completed++
		progress(Progress{Completed: completed, Total: len(items), Name: item.Name, Err: err})
	}

	mapper := iter.Mapper[extension.LocalItem, Outcome]{MaxGoroutines: e.MaxConcurrency}
	return mapper.Map(items, func(item *extension.LocalItem) Outcome {
		r, err := e.Source.Lookup(ctx, item.ID)
		if err != nil {
			log.Debug().Err(err).Str("id", item.ID).Msg("marketplace lookup failed, using local metadata")
			report(*item, err)
			return Unresolved{Item: *item, Err: err}
		}
		// The local id is the key; never let the remote side rename it.
		r.ID = item.ID
		report(*item, nil)
		return Resolved{Record: r}
	})
}
