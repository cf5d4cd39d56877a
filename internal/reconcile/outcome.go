package reconcile

import "github.com/sharext-labs/sharext/internal/extension"

// Outcome is the settled result of one lookup: either Resolved or
// Unresolved.
type Outcome interface {
	isOutcome()
}

// Resolved carries the marketplace record for an item.
type Resolved struct {
	Record extension.Record
}

// Unresolved carries the local item whose lookup failed, and why.
type Unresolved struct {
	Item extension.LocalItem
	Err  error
}

func (Resolved) isOutcome()   {}
func (Unresolved) isOutcome() {}

// Merge turns an outcome into the record that goes into the list. Resolved
// records are stamped installed, since they came from the current
// inventory; unresolved items fall back to their local fields.
func Merge(o Outcome) extension.Record {
	switch o := o.(type) {
	case Resolved:
		return o.Record.WithInstalled(true)
	case Unresolved:
		return o.Item.Record()
	default:
		panic("reconcile: unknown outcome type")
	}
}
