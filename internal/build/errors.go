package build

import "errors"

var ErrEnvironmentUnavailable = errors.New("build environment unavailable")
