// Package workspace turns file system activity and user input into viewer
// events: list files appearing, changing and disappearing on disk, and the
// user switching the file they are looking at.
package workspace
