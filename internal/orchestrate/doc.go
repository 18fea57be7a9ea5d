// Package orchestrate sequences a release run end to end.
//
// Given a routed plan, it executes each triple serially through the build
// executor, signs and notarizes darwin artifacts inline, records a
// per-triple result, and renders the final summary. Per-triple failures
// never abort the matrix; the results carry them to the caller.
package orchestrate
