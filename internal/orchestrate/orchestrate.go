package orchestrate

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/shipforge/shipforge/internal/build"
	"github.com/shipforge/shipforge/internal/sign"
	"github.com/shipforge/shipforge/internal/target"
)

// Outcome of one triple in the release matrix.
type Result struct {
	Triple    target.Triple
	Decision  target.Decision
	Reason    string      // Why the triple was excluded, for skipped triples.
	Artifacts []string    // Distribution paths of the collected artifacts.
	Notary    sign.Status // Notarization outcome for darwin artifacts.
	Err       error       // Build or post-processing failure for this triple.
}

// Returns true when the triple built (or was intentionally skipped) without
// error.
func (r Result) OK() bool {
	return r.Err == nil
}

// Drives a routed release plan to completion.
//
// Triples execute serially in plan order. A failing triple is recorded and
// the matrix continues; only the caller decides whether any failure is
// fatal. Darwin artifacts are signed and notarized inline, immediately
// after their build, while the signing identity is still available.
type Orchestrator struct {
	Executor  *build.Executor
	Binaries  []string
	Identity  *sign.Identity      // Resolved signing identity; nil disables signing.
	Signer    sign.SigningBackend // Used only when Identity is set.
	Notarizer *sign.Notarizer     // Handles absent credentials internally.
}

// Executes every route in the plan and returns one result per triple.
//
// Native builds run before isolated ones so signing happens while the
// keychain is freshly unlocked; within each group plan order is preserved.
func (o *Orchestrator) Run(ctx context.Context, plan []target.Route) []Result {
	ordered := slices.Clone(plan)
	slices.SortStableFunc(ordered, func(a, b target.Route) int {
		return rank(a.Decision) - rank(b.Decision)
	})

	results := make([]Result, 0, len(ordered))
	for _, route := range ordered {
		result := o.runOne(ctx, route)
		if result.Err != nil {
			slog.Error("target failed", "triple", route.Triple, "error", result.Err)
		}
		results = append(results, result)
	}
	return results
}

// Execution order of routing decisions: isolated builds always run last.
func rank(d target.Decision) int {
	if d == target.Isolated {
		return 1
	}
	return 0
}

func (o *Orchestrator) runOne(ctx context.Context, route target.Route) Result {
	result := Result{
		Triple:   route.Triple,
		Decision: route.Decision,
		Reason:   route.Reason,
	}

	switch route.Decision {
	case target.Skipped:
		return result

	case target.Native:
		result.Artifacts, result.Err = o.Executor.Native(ctx, route.Triple, o.Binaries)

	case target.Isolated:
		result.Artifacts, result.Err = o.Executor.Isolated(ctx, route.Triple, o.Binaries)
	}

	if result.Err == nil && route.Triple.IsDarwin() {
		result.Notary, result.Err = o.finishDarwin(ctx, result.Artifacts)
	}

	return result
}

// Signs and notarizes the darwin artifacts of a successful build.
//
// Without a signing identity the artifacts ship unsigned and notarization
// is not attempted. With one, every artifact must sign; notarization then
// runs per artifact and the first rejection is reported for the triple.
func (o *Orchestrator) finishDarwin(ctx context.Context, artifacts []string) (sign.Status, error) {
	if o.Identity == nil {
		slog.Warn("no signing identity; darwin artifacts ship unsigned")
		return sign.StatusSkipped, nil
	}

	for _, artifact := range artifacts {
		if err := o.Signer.Sign(ctx, artifact, o.Identity); err != nil {
			return sign.StatusSkipped, err
		}
	}

	status := sign.StatusSkipped
	for _, artifact := range artifacts {
		s, err := o.Notarizer.Notarize(ctx, artifact, filepath.Base(artifact))
		if err != nil {
			return s, err
		}
		status = s
	}
	return status, nil
}
