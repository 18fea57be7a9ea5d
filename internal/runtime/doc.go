// Package runtime manages build containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon, pulls toolchain images, and
// starts ephemeral build containers. Each [Container] wraps a running
// containerd task with the build workspace bind-mounted at /work, so
// compiler output written inside the container lands directly in the host
// workspace. Commands are executed inside the container as additional exec
// processes; when the build is done the container should be destroyed to
// release its snapshot and task resources.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "shipforge")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartBuilder(ctx, "docker.io/library/rust:latest", "build-1", "/src/project")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "cargo build --release", nil, runtime.WorkDir, os.Stderr)
//	if err != nil {
//	    return err
//	}
package runtime
