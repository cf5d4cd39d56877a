// Package inventory reads the editor's installed extensions from disk. It
// scans the extensions directory for package.json manifests, drops builtins
// and placeholder publishers, keeps the newest version of each extension,
// and can watch the directory so a running viewer learns about installs and
// removals.
package inventory
