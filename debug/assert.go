//go:build debug

package debug

// Enabled guards checks that are too expensive for release builds, like the
// rasterizer verifying every triangle against the scissor.
const Enabled = true

// Assert logs message at error level and panics with an *AssertionError if b
// is false.
func Assert(b bool, message string) {
	if !b {
		Logger().Error("assertion failed", "msg", message)
		panic(&AssertionError{Message: message})
	}
}
