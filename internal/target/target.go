package target

import "strings"

// A platform triple as understood by the compiler toolchain
// (e.g., "aarch64-apple-darwin", "x86_64-pc-windows-msvc").
//
// Triples are opaque identifiers; classification only inspects well-known
// substrings and never parses the full architecture/vendor/os/abi structure.
type Triple string

// Default release matrix built when no targets are given on the command line.
var DefaultTriples = []Triple{
	"aarch64-apple-darwin",
	"x86_64-apple-darwin",
	"x86_64-unknown-linux-gnu",
	"aarch64-unknown-linux-gnu",
	"x86_64-unknown-linux-musl",
	"aarch64-unknown-linux-musl",
	"x86_64-pc-windows-msvc",
}

// Returns true if the triple targets an Apple darwin platform.
func (t Triple) IsDarwin() bool {
	return strings.Contains(string(t), "apple-darwin")
}

// Returns true if the triple targets Windows.
func (t Triple) IsWindows() bool {
	return strings.Contains(string(t), "windows")
}

// Returns true if the triple targets Linux.
func (t Triple) IsLinux() bool {
	return strings.Contains(string(t), "linux")
}

// Returns true if the triple uses the statically linked musl C runtime.
func (t Triple) IsMusl() bool {
	return strings.HasSuffix(string(t), "musl")
}

// Returns the executable suffix for binaries built for this triple:
// ".exe" for Windows, empty otherwise.
func (t Triple) ExeSuffix() string {
	if t.IsWindows() {
		return ".exe"
	}
	return ""
}

// Returns the leading architecture component of the triple
// (e.g., "aarch64" for "aarch64-apple-darwin").
func (t Triple) Arch() string {
	arch, _, _ := strings.Cut(string(t), "-")
	return arch
}

func (t Triple) String() string {
	return string(t)
}
