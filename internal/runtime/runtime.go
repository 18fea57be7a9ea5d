package runtime

import (
	"context"
	"fmt"
	"log/slog"
	goruntime "runtime"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
)

// OCI runtime shim for running build containers.
const ociRuntime = "io.containerd.runc.v2"

// Mount point of the build workspace inside every build container.
const WorkDir = "/work"

// Manages the containerd client and provides build container operations.
type Runtime struct {
	client *containerd.Client // Containerd client for managing containers and images.
}

// Creates a runtime connected to the containerd socket at the given address.
//
// The namespace scopes all containerd operations to this tool. The runtime
// must be closed when no longer needed.
func New(address, namespace string) (*Runtime, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &Runtime{client: client}, nil
}

// Closes the containerd client connection.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Verifies the containerd daemon is reachable and serving.
func (rt *Runtime) Available(ctx context.Context) error {
	serving, err := rt.client.IsServing(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !serving {
		return fmt.Errorf("%w: containerd is not serving", ErrUnavailable)
	}
	return nil
}

// Resolves a toolchain image, pulling and unpacking it on first use.
//
// The image is pinned to the host platform: cross-compilation happens via
// the toolchain inside the container, not via emulation.
func (rt *Runtime) ensureImage(ctx context.Context, ref string) (containerd.Image, error) {
	if image, err := rt.client.GetImage(ctx, ref); err == nil {
		return image, nil
	} else if !errdefs.IsNotFound(err) {
		return nil, err
	}

	slog.Info("pulling toolchain image", "ref", ref)

	p, err := platforms.Parse(hostPlatform())
	if err != nil {
		return nil, err
	}

	return rt.client.Pull(ctx, ref,
		containerd.WithPlatformMatcher(platforms.Only(p)),
		containerd.WithPullUnpack,
	)
}

// Starts an ephemeral build container from a toolchain image with the
// workspace bind-mounted read-write at /work.
//
// Any stale container from a previous run with the same ID is removed
// first. A long-running task (sleep infinity) is started so subsequent Exec
// calls have a running process to attach to. The container must be
// destroyed when the build finishes.
func (rt *Runtime) StartBuilder(ctx context.Context, ref, id, workspace string) (*Container, error) {
	image, err := rt.ensureImage(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	c := &Container{
		client:    rt.client,
		id:        id,
		workspace: workspace,
	}

	// Remove any stale container from a previous build with the same ID.
	c.remove(ctx)

	ctr, err := c.create(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := c.startTask(ctx, ctr); err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Debug("build container started", "id", id, "image", ref, "workspace", workspace)

	return c, nil
}

// Returns the OCI platform of the host.
func hostPlatform() string {
	return "linux/" + goruntime.GOARCH
}
