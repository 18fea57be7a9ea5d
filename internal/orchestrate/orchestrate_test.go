package orchestrate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shipforge/shipforge/internal/build"
	"github.com/shipforge/shipforge/internal/dist"
	"github.com/shipforge/shipforge/internal/sign"
	"github.com/shipforge/shipforge/internal/target"
	"github.com/shipforge/shipforge/internal/toolchain"
)

type fakeSigner struct {
	signed []string
	err    error
}

func (f *fakeSigner) Sign(ctx context.Context, path string, identity *sign.Identity) error {
	if f.err != nil {
		return f.err
	}
	f.signed = append(f.signed, path)
	return nil
}

type fakeNotary struct {
	submitted []string
	stapled   []string
	status    string
}

func (f *fakeNotary) Submit(ctx context.Context, archivePath, keyPath, keyID, issuer string) (sign.Submission, error) {
	f.submitted = append(f.submitted, archivePath)
	return sign.Submission{ID: "sub-1", Status: f.status}, nil
}

func (f *fakeNotary) Staple(ctx context.Context, path string) error {
	f.stapled = append(f.stapled, path)
	return nil
}

// Base64 of a placeholder key blob.
const testKey = "a2V5LWJ5dGVz"

func testOrchestrator(t *testing.T) (*Orchestrator, string) {
	t.Helper()

	workspace := t.TempDir()
	d, err := dist.New(filepath.Join(workspace, "dist"))
	if err != nil {
		t.Fatalf("dist.New: %v", err)
	}

	cargo := toolchain.NewCargo(workspace)
	cargo.Run = func(ctx context.Context, dir string, env []string, name string, args ...string) error {
		return nil
	}

	return &Orchestrator{
		Executor: &build.Executor{
			Cargo:     cargo,
			Dist:      d,
			Workspace: workspace,
		},
		Binaries: []string{"codex"},
	}, workspace
}

func placeArtifact(t *testing.T, workspace string, triple target.Triple, binary string) {
	t.Helper()
	path := toolchain.ArtifactPath(workspace, triple, binary)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("binary"), 0755); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
}

func TestRunSkippedTriple(t *testing.T) {
	o, _ := testOrchestrator(t)

	plan := []target.Route{
		{Triple: "aarch64-apple-darwin", Decision: target.Skipped, Reason: "darwin targets require a macOS host"},
	}

	results := o.Run(context.Background(), plan)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if !r.OK() || r.Decision != target.Skipped || len(r.Artifacts) != 0 {
		t.Fatalf("skipped result = %+v", r)
	}
	if r.Reason == "" {
		t.Fatal("skipped result lost its reason")
	}
}

func TestRunSignsAndNotarizesDarwin(t *testing.T) {
	o, workspace := testOrchestrator(t)

	triple := target.Triple("aarch64-apple-darwin")
	o.Executor.Cargo.Run = func(ctx context.Context, dir string, env []string, name string, args ...string) error {
		placeArtifact(t, workspace, triple, "codex")
		return nil
	}

	signer := &fakeSigner{}
	notary := &fakeNotary{status: "Accepted"}
	o.Identity = &sign.Identity{Fingerprint: strings.Repeat("A", 40), Name: "Developer ID Application: Test"}
	o.Signer = signer
	o.Notarizer = sign.NewNotarizer(notary,
		sign.Credentials{Key: testKey, KeyID: "KEY1", Issuer: "issuer-1"},
		t.TempDir())

	results := o.Run(context.Background(), []target.Route{{Triple: triple, Decision: target.Native}})
	r := results[0]
	if r.Err != nil {
		t.Fatalf("Run: %v", r.Err)
	}
	if len(signer.signed) != 1 {
		t.Fatalf("signed %d artifacts, want 1", len(signer.signed))
	}
	if len(notary.stapled) != 1 || notary.stapled[0] != r.Artifacts[0] {
		t.Fatalf("stapled = %v, want the collected artifact", notary.stapled)
	}
	if r.Notary != sign.StatusAccepted {
		t.Fatalf("notary status = %v, want accepted", r.Notary)
	}
}

func TestRunUnsignedDarwinWithoutIdentity(t *testing.T) {
	o, workspace := testOrchestrator(t)

	triple := target.Triple("x86_64-apple-darwin")
	o.Executor.Cargo.Run = func(ctx context.Context, dir string, env []string, name string, args ...string) error {
		placeArtifact(t, workspace, triple, "codex")
		return nil
	}

	results := o.Run(context.Background(), []target.Route{{Triple: triple, Decision: target.Native}})
	r := results[0]
	if r.Err != nil {
		t.Fatalf("Run: %v", r.Err)
	}
	if r.Notary != sign.StatusSkipped {
		t.Fatalf("notary status = %v, want skipped", r.Notary)
	}
	if len(r.Artifacts) != 1 {
		t.Fatalf("collected %d artifacts, want 1", len(r.Artifacts))
	}
}

func TestRunSigningFailureRecorded(t *testing.T) {
	o, workspace := testOrchestrator(t)

	triple := target.Triple("aarch64-apple-darwin")
	o.Executor.Cargo.Run = func(ctx context.Context, dir string, env []string, name string, args ...string) error {
		placeArtifact(t, workspace, triple, "codex")
		return nil
	}

	signErr := errors.New("identity revoked")
	o.Identity = &sign.Identity{Fingerprint: strings.Repeat("B", 40), Name: "Test"}
	o.Signer = &fakeSigner{err: signErr}
	o.Notarizer = sign.NewNotarizer(&fakeNotary{}, sign.Credentials{}, t.TempDir())

	results := o.Run(context.Background(), []target.Route{{Triple: triple, Decision: target.Native}})
	if !errors.Is(results[0].Err, signErr) {
		t.Fatalf("error = %v, want signing failure", results[0].Err)
	}
}

func TestRunContinuesPastFailure(t *testing.T) {
	o, workspace := testOrchestrator(t)

	good := target.Triple("x86_64-apple-darwin")
	o.Executor.Cargo.Run = func(ctx context.Context, dir string, env []string, name string, args ...string) error {
		placeArtifact(t, workspace, good, "codex")
		return nil
	}

	plan := []target.Route{
		// No runtime configured, so the isolated triple fails.
		{Triple: "x86_64-unknown-linux-gnu", Decision: target.Isolated},
		{Triple: good, Decision: target.Native},
	}

	results := o.Run(context.Background(), plan)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	// Native builds are reordered ahead of isolated ones.
	if results[0].Triple != good || results[0].Err != nil {
		t.Fatalf("first result = %+v, want successful native build", results[0])
	}
	if !errors.Is(results[1].Err, build.ErrEnvironmentUnavailable) {
		t.Fatalf("second error = %v, want ErrEnvironmentUnavailable", results[1].Err)
	}
}

func TestCount(t *testing.T) {
	results := []Result{
		{Triple: "a", Decision: target.Native},
		{Triple: "b", Decision: target.Isolated, Err: errors.New("boom")},
		{Triple: "c", Decision: target.Skipped},
		{Triple: "d", Decision: target.Isolated},
	}

	tally := Count(results)
	if tally.Built != 2 || tally.Skipped != 1 || tally.Failed != 1 {
		t.Fatalf("tally = %+v, want 2 built, 1 skipped, 1 failed", tally)
	}
}

func TestSummaryOutput(t *testing.T) {
	results := []Result{
		{
			Triple:    "aarch64-apple-darwin",
			Decision:  target.Native,
			Artifacts: []string{"dist/codex-aarch64-apple-darwin"},
			Notary:    sign.StatusAccepted,
		},
		{
			Triple:   "x86_64-unknown-linux-musl",
			Decision: target.Skipped,
			Reason:   "musl builds are excluded by default (openssl incompatibility)",
		},
		{
			Triple:   "x86_64-unknown-linux-gnu",
			Decision: target.Isolated,
			Err:      errors.New("exit code 101"),
		},
	}

	var buf strings.Builder
	Summary(&buf, results, "dist")

	out := buf.String()
	for _, want := range []string{
		"codex-aarch64-apple-darwin",
		"notarized",
		"musl builds are excluded",
		"exit code 101",
		"1 built, 1 skipped, 1 failed",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
