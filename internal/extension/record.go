package extension

import (
	"sort"

	"github.com/sharext-labs/sharext/internal/branding"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Record is one extension as it appears in an exported list.
//
// Records are values: code that needs a different field constructs a new
// Record rather than mutating a shared one.
type Record struct {
	ID          string // publisher-qualified, e.g. "golang.go"
	Name        string
	Author      string
	Description string
	IconSource  string // empty until resolved from the marketplace

	// Installed is nil unless the record was cross-checked against the
	// local inventory. It is never persisted.
	Installed *bool

	// Downloads is the marketplace install count, 0 when unknown. It is
	// never persisted.
	Downloads int64
}

// MarketplaceLink returns the marketplace page for the record's id.
func (r Record) MarketplaceLink() string {
	return MarketplaceLink(r.ID)
}

// IsInstalled reports the installed flag and whether it is known at all.
func (r Record) IsInstalled() (installed, known bool) {
	if r.Installed == nil {
		return false, false
	}
	return *r.Installed, true
}

// WithInstalled returns a copy of r with the installed flag set.
func (r Record) WithInstalled(installed bool) Record {
	r.Installed = &installed
	return r
}

// MarketplaceLink builds the marketplace page URL for an extension id.
func MarketplaceLink(id string) string {
	return branding.MarketplaceItemURL() + id
}

// SortByName orders records by name, ascending, ignoring case and using
// locale-aware collation. Records with equal names keep their relative order.
func SortByName(records []Record) {
	c := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(records, func(i, j int) bool {
		return c.CompareString(records[i].Name, records[j].Name) < 0
	})
}

// MarkInstalled returns new records whose Installed flag reflects whether
// each id is present in items. The input slice is not modified.
func MarkInstalled(records []Record, items []LocalItem) []Record {
	installed := make(map[string]bool, len(items))
	for _, item := range items {
		installed[item.ID] = true
	}

	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.WithInstalled(installed[r.ID])
	}
	return out
}
