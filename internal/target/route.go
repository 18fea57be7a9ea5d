package target

import (
	"log/slog"
	"runtime"
)

// Where a triple's build is executed.
type Decision int

const (
	// Build runs directly on the host with the local toolchain.
	Native Decision = iota

	// Build runs inside a containerized build environment.
	Isolated

	// Triple is intentionally excluded from this run.
	Skipped
)

// Returns the decision name ("native", "isolated", or "skipped").
func (d Decision) String() string {
	switch d {
	case Native:
		return "native"
	case Isolated:
		return "isolated"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Controls how triples are routed.
type Policy struct {
	HostOS   string // Host operating system as reported by runtime.GOOS.
	SkipMusl bool   // Whether musl triples are excluded instead of containerized.
}

// Returns the routing policy for the current host with default flags.
func DefaultPolicy() Policy {
	return Policy{
		HostOS:   runtime.GOOS,
		SkipMusl: true,
	}
}

// A triple paired with its routing decision and an optional reason for
// skipped triples.
type Route struct {
	Triple   Triple
	Decision Decision
	Reason   string
}

// Classifies a triple into exactly one routing decision.
//
// Rules, highest priority first:
//
//   - Darwin triples build natively on a macOS host and are never
//     cross-built elsewhere.
//   - Windows triples build natively on Windows; from any other host they
//     take the containerized path via a mingw cross toolchain. That path is
//     fragile and not guaranteed to succeed.
//   - Musl triples are excluded unless the policy asks for them, in which
//     case they are containerized.
//   - Remaining Linux triples are containerized.
//   - Anything unrecognized is excluded.
//
// Repeated calls with identical inputs return identical decisions.
func Classify(t Triple, p Policy) (Decision, string) {
	switch {
	case t.IsDarwin():
		if p.HostOS == "darwin" {
			return Native, ""
		}
		return Skipped, "darwin targets require a macOS host"

	case t.IsWindows():
		if p.HostOS == "windows" {
			return Native, ""
		}
		return Isolated, ""

	case t.IsMusl():
		if p.SkipMusl {
			return Skipped, "musl builds are excluded by default (openssl incompatibility)"
		}
		return Isolated, ""

	case t.IsLinux():
		return Isolated, ""

	default:
		return Skipped, "unrecognized target family"
	}
}

// Computes the routing decision for every triple up front.
//
// The plan is computed once before any build executes; decisions are
// read-only thereafter. Skipped triples are logged as warnings since they
// are intentional exclusions, not failures.
func Plan(triples []Triple, p Policy) []Route {
	plan := make([]Route, 0, len(triples))
	for _, t := range triples {
		decision, reason := Classify(t, p)
		if decision == Skipped {
			slog.Warn("target excluded from plan", "triple", t, "reason", reason)
		}
		plan = append(plan, Route{Triple: t, Decision: decision, Reason: reason})
	}
	return plan
}
