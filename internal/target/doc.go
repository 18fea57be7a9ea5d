// Package target classifies platform triples for the release matrix.
//
// Every requested triple receives exactly one routing decision before any
// build executes: native execution on the host, containerized execution, or
// intentional exclusion. Decisions depend only on the triple and the routing
// policy, so the same inputs always produce the same plan.
package target
