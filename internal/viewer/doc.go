// Package viewer keeps one rendered extension list in sync with the list
// file it is bound to and with the local inventory.
//
// A Controller owns at most one view surface. It moves between three states:
//
//	Uninitialized --Init--> Closed --Rerender--> Open --Close--> Closed
//
// Every Rerender re-reads the bound file end to end, so rendering the same
// file and inventory twice produces the same page. Renders are serialized,
// and a render that has been overtaken by a newer request is dropped before
// it reaches the surface: the newest request always determines what is on
// screen.
//
// Source references are compared as plain strings; callers should pass
// cleaned absolute paths.
package viewer
