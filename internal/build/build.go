package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shipforge/shipforge/internal/dist"
	"github.com/shipforge/shipforge/internal/runtime"
	"github.com/shipforge/shipforge/internal/target"
	"github.com/shipforge/shipforge/internal/toolchain"
)

// Executes routed builds and collects their artifacts.
//
// Builds run one triple at a time: native builds share the compiler output
// directory and the active signing state, so serialization is required, and
// isolated builds simply follow suit.
type Executor struct {
	Cargo     *toolchain.Cargo // Host toolchain for native builds.
	Dist      *dist.Dir        // Distribution directory artifacts are collected into.
	Runtime   *runtime.Runtime // Container runtime for isolated builds; nil when unconfigured.
	Image     string           // Toolchain image for isolated builds.
	Workspace string           // Workspace root, shared with build containers.
}

// Builds a triple directly on the host and collects its artifacts.
func (e *Executor) Native(ctx context.Context, triple target.Triple, binaries []string) ([]string, error) {
	slog.Info("building natively", "triple", triple, "binaries", binaries)

	if err := e.Cargo.Build(ctx, triple, binaries); err != nil {
		return nil, err
	}

	return e.collect(triple, binaries)
}

// Builds a triple inside an ephemeral build container and collects its
// artifacts.
//
// The container runtime must be reachable; otherwise the triple fails with
// ErrEnvironmentUnavailable. The container is provisioned with the cross
// toolchain the triple's family needs, the build runs with the family's
// environment overrides, and the container is destroyed when the build
// finishes regardless of outcome.
func (e *Executor) Isolated(ctx context.Context, triple target.Triple, binaries []string) ([]string, error) {
	if e.Runtime == nil {
		return nil, fmt.Errorf("%w: no container runtime configured", ErrEnvironmentUnavailable)
	}
	if err := e.Runtime.Available(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvironmentUnavailable, err)
	}

	slog.Info("building in container", "triple", triple, "binaries", binaries, "image", e.Image)

	ctr, err := e.Runtime.StartBuilder(ctx, e.Image, containerID(triple), e.Workspace)
	if err != nil {
		return nil, err
	}
	defer ctr.Destroy(ctx)

	if err := provision(ctx, ctr, triple); err != nil {
		return nil, err
	}

	command := toolchain.BuildCommand(triple, binaries)
	result, err := ctr.Exec(ctx, command, toolchain.CrossEnv(triple), runtime.WorkDir, os.Stderr)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("%w: target %s: exit code %d: %s",
			toolchain.ErrToolchain, triple, result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	return e.collect(triple, binaries)
}

// Installs the cross toolchain a triple's family needs into the container.
//
// The rust target is always added; distribution packages are installed only
// for families that need a cross linker or alternate libc.
func provision(ctx context.Context, ctr *runtime.Container, triple target.Triple) error {
	if pkgs := toolchain.CrossPackages(triple); len(pkgs) > 0 {
		install := "apt-get update && apt-get install -y --no-install-recommends " + strings.Join(pkgs, " ")
		if err := ctr.MustExec(ctx, "package install", install, nil, os.Stderr); err != nil {
			return err
		}
	}

	add := "rustup target add " + triple.String()
	return ctr.MustExec(ctx, "rustup target add", add, nil, os.Stderr)
}

// Copies the triple's compiled binaries into the distribution directory.
func (e *Executor) collect(triple target.Triple, binaries []string) ([]string, error) {
	return e.Dist.Collect(triple, binaries, func(binary string) string {
		return toolchain.ArtifactPath(e.Workspace, triple, binary)
	})
}

// Returns a stable container ID for a triple's build container.
func containerID(triple target.Triple) string {
	return "shipforge-build-" + strings.ReplaceAll(triple.String(), "_", "-")
}
