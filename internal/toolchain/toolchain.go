package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shipforge/shipforge/internal/target"
)

// Runs a toolchain command in a directory with extra environment variables.
//
// The default implementation shells out; tests substitute a fake to observe
// the invocation without running anything.
type RunFunc func(ctx context.Context, dir string, env []string, name string, args ...string) error

// Drives the cargo toolchain for release builds.
//
// The toolchain is treated as opaque: shipforge asks it to compile a set of
// binaries for a triple and then looks for the artifacts at their
// conventional paths.
type Cargo struct {
	Bin  string  // Cargo executable name or path.
	Root string  // Workspace root containing Cargo.toml and target/.
	Run  RunFunc // Command execution seam, replaceable in tests.
}

// Creates a toolchain handle rooted at dir.
func NewCargo(dir string) *Cargo {
	return &Cargo{
		Bin:  "cargo",
		Root: dir,
		Run:  runCommand,
	}
}

// Verifies the toolchain executable is present on the host.
//
// A missing toolchain is fatal to the whole run: nothing can be built
// without it.
func (c *Cargo) Check() error {
	if _, err := exec.LookPath(c.Bin); err != nil {
		return fmt.Errorf("%w: %s not found in PATH", ErrToolchainMissing, c.Bin)
	}
	return nil
}

// Compiles the requested binaries for a triple in release profile.
//
// Blocks until the toolchain process exits. A non-zero exit is reported as
// ErrToolchain; the caller decides whether the matrix continues.
func (c *Cargo) Build(ctx context.Context, triple target.Triple, binaries []string) error {
	args := BuildArgs(triple, binaries)
	if err := c.Run(ctx, c.Root, nil, c.Bin, args...); err != nil {
		return fmt.Errorf("%w: target %s: %w", ErrToolchain, triple, err)
	}
	return nil
}

// Returns the cargo arguments for a release build restricted to the
// requested binary set.
func BuildArgs(triple target.Triple, binaries []string) []string {
	args := []string{"build", "--release", "--target", string(triple)}
	for _, bin := range binaries {
		args = append(args, "--bin", bin)
	}
	return args
}

// Returns the full build command as a single shell line, for execution
// inside a build container.
func BuildCommand(triple target.Triple, binaries []string) string {
	return "cargo " + strings.Join(BuildArgs(triple, binaries), " ")
}

// Returns the conventional path of a compiled binary for a triple, relative
// to the workspace root. Windows triples carry the .exe suffix.
func ArtifactPath(root string, triple target.Triple, binary string) string {
	return filepath.Join(root, "target", string(triple), "release", binary+triple.ExeSuffix())
}

// Default command execution: inherit the environment, append overrides, and
// stream toolchain output to the user.
func runCommand(ctx context.Context, dir string, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
