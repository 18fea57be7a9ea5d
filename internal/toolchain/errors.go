package toolchain

import "errors"

var (
	ErrToolchain        = errors.New("toolchain build failed")
	ErrToolchainMissing = errors.New("toolchain unavailable")
)
