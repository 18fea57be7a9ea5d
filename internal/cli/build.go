package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/shipforge/shipforge/internal"
	"github.com/shipforge/shipforge/internal/build"
	"github.com/shipforge/shipforge/internal/cleanup"
	"github.com/shipforge/shipforge/internal/dist"
	"github.com/shipforge/shipforge/internal/orchestrate"
	"github.com/shipforge/shipforge/internal/paths"
	"github.com/shipforge/shipforge/internal/runtime"
	"github.com/shipforge/shipforge/internal/sign"
	"github.com/shipforge/shipforge/internal/target"
	"github.com/shipforge/shipforge/internal/toolchain"
)

// Represents the 'shipforge build' command.
//
// Credentials arrive through the environment, never flags, so they stay out
// of shell history and process listings.
type BuildCmd struct {
	Targets    []string `short:"t" help:"Target triples to build; defaults to the full release matrix." placeholder:"TRIPLE" env:"SHIPFORGE_TARGETS"`
	Binaries   []string `short:"b" default:"codex" help:"Binary names to build." env:"SHIPFORGE_BINARIES"`
	Workspace  string   `short:"w" default:"." help:"Workspace root containing the toolchain manifest." type:"existingdir"`
	Dist       string   `default:"dist" help:"Distribution directory artifacts are collected into."`
	Image      string   `default:"docker.io/library/rust:latest" help:"Toolchain image for containerized builds." env:"SHIPFORGE_IMAGE"`
	SkipMusl   bool     `default:"true" negatable:"" help:"Exclude musl targets; negate to build them in containers." env:"SKIP_MUSL"`
	Containerd string   `help:"Containerd socket address." placeholder:"ADDR" env:"CONTAINERD_ADDRESS"`

	Certificate         string `help:"Base64-encoded macOS signing certificate (.p12)." env:"APPLE_CERTIFICATE"`
	CertificatePassword string `help:"Password for the signing certificate." env:"APPLE_CERTIFICATE_PASSWORD"`
	NotaryKey           string `help:"Base64-encoded App Store Connect API key (.p8)." env:"APPLE_NOTARY_KEY"`
	NotaryKeyID         string `help:"App Store Connect API key ID." env:"APPLE_NOTARY_KEY_ID"`
	NotaryIssuer        string `help:"App Store Connect issuer ID." env:"APPLE_NOTARY_ISSUER"`
}

// Executes the build command.
//
// Only environment problems are fatal here: a missing toolchain or an
// uncreatable distribution directory abort the run. Individual target
// failures are carried through to the summary instead.
func (c *BuildCmd) Run(ctx context.Context) error {
	cargo := toolchain.NewCargo(c.Workspace)
	if err := cargo.Check(); err != nil {
		return err
	}

	policy := target.DefaultPolicy()
	policy.SkipMusl = c.SkipMusl

	plan := target.Plan(triples(c.Targets), policy)
	for _, route := range plan {
		slog.Info("target planned", "triple", route.Triple, "decision", route.Decision)
	}

	d, err := dist.New(c.Dist)
	if err != nil {
		return err
	}

	o := &orchestrate.Orchestrator{
		Executor: &build.Executor{
			Cargo:     cargo,
			Dist:      d,
			Runtime:   c.connectRuntime(plan),
			Image:     c.Image,
			Workspace: c.Workspace,
		},
		Binaries: c.Binaries,
		Signer:   sign.NewCodesignBackend(),
		Notarizer: sign.NewNotarizer(
			sign.NewNotaryToolBackend(),
			sign.Credentials{Key: c.NotaryKey, KeyID: c.NotaryKeyID, Issuer: c.NotaryIssuer},
			paths.Scratch(),
		),
	}

	if policy.HostOS == "darwin" {
		o.Identity = c.setupSigning(ctx)
	}

	results := o.Run(ctx, plan)

	// Tear down the keychain and runtime connection before reporting, so
	// the summary describes a fully settled state.
	cleanup.Run()

	orchestrate.Summary(os.Stdout, results, d.Path())
	return nil
}

// Establishes the isolated signing keychain and registers its teardown.
//
// Signing is best-effort at this level: missing credentials or a failed
// setup disable signing for the run instead of aborting it, and the darwin
// artifacts ship unsigned.
func (c *BuildCmd) setupSigning(ctx context.Context) *sign.Identity {
	kc, err := sign.Setup(ctx, sign.Config{
		Certificate: c.Certificate,
		Password:    c.CertificatePassword,
		Scratch:     paths.Scratch(),
		Store:       sign.NewSecurityStore(),
	})
	switch {
	case errors.Is(err, sign.ErrUnavailable):
		slog.Warn("signing credentials not configured; darwin artifacts will ship unsigned")
		return nil
	case err != nil:
		slog.Error("signing setup failed; darwin artifacts will ship unsigned", "error", err)
		return nil
	}

	// Teardown must run even when the run's context is already canceled.
	cleanup.Register(func() { kc.Teardown(context.Background()) })

	return kc.Identity()
}

// Connects to the container runtime when the plan has isolated builds.
//
// Connection failure is not fatal: the isolated triples will fail
// individually with an environment error while the rest of the plan runs.
func (c *BuildCmd) connectRuntime(plan []target.Route) *runtime.Runtime {
	needed := false
	for _, route := range plan {
		if route.Decision == target.Isolated {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	addr := c.Containerd
	if addr == "" {
		addr = paths.ContainerdSocket()
	}

	rt, err := runtime.New(addr, internal.Name)
	if err != nil {
		slog.Warn("container runtime unavailable; isolated builds will fail",
			"address", addr, "error", err)
		return nil
	}

	cleanup.Register(func() {
		if err := rt.Close(); err != nil {
			slog.Warn("failed to close runtime connection", "error", err)
		}
	})

	return rt
}

// Resolves the requested triples, defaulting to the full release matrix.
func triples(args []string) []target.Triple {
	if len(args) == 0 {
		return target.DefaultTriples
	}
	ts := make([]target.Triple, len(args))
	for i, arg := range args {
		ts[i] = target.Triple(arg)
	}
	return ts
}
