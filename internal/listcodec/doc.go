// Package listcodec reads and writes shared extension lists. A list is a
// UTF-8 JSON array of records stored in a file whose name ends with the
// product's list suffix (see FileExtension). Every element is validated on
// its own; one bad element is reported and skipped, never fatal to the rest
// of the list.
package listcodec
