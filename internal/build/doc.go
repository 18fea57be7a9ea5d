// Package build executes routed builds for the release matrix.
//
// Native builds invoke the host toolchain directly. Isolated builds start
// an ephemeral container from a toolchain image, install the cross
// toolchain the target family needs, and run the same restricted build
// inside it with the workspace bind-mounted. Either way, successful builds
// end with the compiled binaries collected into the distribution directory.
//
// Failures are per-triple: a failed build is reported to the caller, which
// continues with the remaining triples.
package build
