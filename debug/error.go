package debug

// AssertionError is the panic value of a failed assertion in debug builds.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string { return "assertion failed: " + e.Message }
