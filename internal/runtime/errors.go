package runtime

import "errors"

var (
	ErrRuntime     = errors.New("runtime error")
	ErrUnavailable = errors.New("container runtime unavailable")
)
