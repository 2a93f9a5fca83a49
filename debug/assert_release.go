//go:build !debug

// Package debug provides assertions that can be enabled with the debug build
// tag or will otherwise compile to no-ops, and the logger shared by all
// packages of this module.
package debug

// Enabled guards checks that are too expensive for release builds.  Wrap them
// in `if debug.Enabled {...}` so the compiler removes them.
const Enabled = false

// Assert panics if b is false.
func Assert(b bool, message string) {}
