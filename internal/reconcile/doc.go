// Package reconcile merges the local inventory with marketplace metadata.
//
// Every local item gets exactly one lookup. Lookups run concurrently and
// settle independently: a failed lookup never fails the batch, it only makes
// that item fall back to its local fields. Results are always index-aligned
// with the input.
package reconcile
