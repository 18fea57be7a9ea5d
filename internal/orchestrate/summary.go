package orchestrate

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/gookit/color"

	"github.com/shipforge/shipforge/internal/sign"
	"github.com/shipforge/shipforge/internal/target"
)

// Aggregate counts over a run's results.
type Tally struct {
	Built   int
	Skipped int
	Failed  int
}

// Counts results by outcome.
func Count(results []Result) Tally {
	var t Tally
	for _, r := range results {
		switch {
		case r.Err != nil:
			t.Failed++
		case r.Decision == target.Skipped:
			t.Skipped++
		default:
			t.Built++
		}
	}
	return t
}

// Writes a per-triple summary of the run followed by aggregate counts.
//
// Written after all triples have finished, so the user gets one readable
// block regardless of how noisy the build output was.
func Summary(w io.Writer, results []Result, distPath string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, color.Bold.Sprint("Release summary"))

	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "  %s %s (%s): %v\n",
				color.Red.Sprint("✗"), r.Triple, r.Decision, r.Err)

		case r.Decision == target.Skipped:
			fmt.Fprintf(w, "  %s %s: %s\n",
				color.Yellow.Sprint("-"), r.Triple, r.Reason)

		default:
			fmt.Fprintf(w, "  %s %s (%s)%s\n",
				color.Green.Sprint("✓"), r.Triple, r.Decision, notaryNote(r))
			for _, artifact := range r.Artifacts {
				fmt.Fprintf(w, "      %s\n", filepath.Base(artifact))
			}
		}
	}

	t := Count(results)
	fmt.Fprintf(w, "\n%d built, %d skipped, %d failed; artifacts in %s\n",
		t.Built, t.Skipped, t.Failed, distPath)
}

func notaryNote(r Result) string {
	if !r.Triple.IsDarwin() {
		return ""
	}
	switch r.Notary {
	case sign.StatusAccepted:
		return ", notarized"
	default:
		return ", not notarized"
	}
}
