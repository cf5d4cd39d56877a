// Package host performs the actions a rendered extension list can request:
// opening an extension's marketplace page and installing it into the local
// editor.
package host
