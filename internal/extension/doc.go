// Package extension defines the extension record shared by every stage of
// the export/view pipeline: the local item read from disk, the enriched
// record written to a list file, and the ordering used for display.
package extension
