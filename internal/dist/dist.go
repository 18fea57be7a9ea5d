package dist

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shipforge/shipforge/internal/paths"
	"github.com/shipforge/shipforge/internal/target"
)

// The distribution directory release artifacts are collected into.
//
// The directory is append-only across triples; builds run serially so no
// two collections ever race.
type Dir struct {
	path string
}

// Creates the distribution directory if needed and returns a handle to it.
func New(path string) (*Dir, error) {
	if err := os.MkdirAll(path, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}
	return &Dir{path: path}, nil
}

// Returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Returns the deterministic distribution path for a binary and triple:
// {dir}/{binary}-{triple} with the .exe suffix for Windows triples.
func (d *Dir) ArtifactPath(binary string, triple target.Triple) string {
	return filepath.Join(d.path, fmt.Sprintf("%s-%s%s", binary, triple, triple.ExeSuffix()))
}

// Copies each compiled binary into the distribution directory under its
// deterministic name.
//
// source maps a binary name to its expected compiled path. A missing
// artifact after a reported-successful build is logged and skipped; the
// remaining binaries are still collected. Returns the distribution paths
// of the artifacts that were collected.
func (d *Dir) Collect(triple target.Triple, binaries []string, source func(binary string) string) ([]string, error) {
	var collected []string

	for _, binary := range binaries {
		src := source(binary)
		if _, err := os.Stat(src); err != nil {
			slog.Warn("expected artifact missing after build",
				"triple", triple,
				"binary", binary,
				"path", src,
			)
			continue
		}

		dest := d.ArtifactPath(binary, triple)
		if err := copyFile(src, dest); err != nil {
			return collected, fmt.Errorf("%w: %s: %w", ErrFileSystemOperation, dest, err)
		}

		slog.Info("artifact collected", "triple", triple, "binary", binary, "path", dest)
		collected = append(collected, dest)
	}

	return collected, nil
}

// Copies src to dest, preserving the executable bit.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
