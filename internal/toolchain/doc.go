// Package toolchain wraps the cargo compiler invocation.
//
// Builds are release-profile and restricted to an explicit binary set.
// Artifacts land at cargo's conventional target/<triple>/release paths;
// collection into the distribution directory happens elsewhere.
package toolchain
