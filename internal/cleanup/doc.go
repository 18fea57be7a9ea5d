// Package cleanup guarantees resource teardown on every exit path.
//
// Components that create state which must never outlive the process (the
// isolated signing keychain, transient secret files) register their
// teardown here right after acquisition. The CLI runs the registry both on
// normal completion and from its signal handler, so an interruption at any
// point still releases everything acquired so far.
package cleanup
