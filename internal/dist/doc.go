// Package dist collects compiled binaries into the distribution directory.
//
// Artifacts are named {binary}-{triple}, with the .exe suffix appended for
// Windows triples. Signing and notarization mutate the collected files in
// place; this package only places them.
package dist
