package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/gookit/color"

	"github.com/shipforge/shipforge/internal/target"
)

// Represents the 'shipforge plan' command.
//
// Computes and prints the routing plan without building anything, so a
// pipeline can be inspected before committing to a long run.
type PlanCmd struct {
	Targets  []string `short:"t" help:"Target triples to plan; defaults to the full release matrix." placeholder:"TRIPLE" env:"SHIPFORGE_TARGETS"`
	SkipMusl bool     `default:"true" negatable:"" help:"Exclude musl targets; negate to build them in containers." env:"SKIP_MUSL"`
}

// Executes the plan command.
func (c *PlanCmd) Run(ctx context.Context) error {
	policy := target.DefaultPolicy()
	policy.SkipMusl = c.SkipMusl

	plan := target.Plan(triples(c.Targets), policy)

	fmt.Fprintf(os.Stdout, "Routing plan (%s host):\n", policy.HostOS)
	for _, route := range plan {
		switch route.Decision {
		case target.Skipped:
			fmt.Fprintf(os.Stdout, "  %-34s %s (%s)\n",
				route.Triple, color.Yellow.Sprint(route.Decision), route.Reason)
		case target.Native:
			fmt.Fprintf(os.Stdout, "  %-34s %s\n",
				route.Triple, color.Green.Sprint(route.Decision))
		default:
			fmt.Fprintf(os.Stdout, "  %-34s %s\n",
				route.Triple, color.Cyan.Sprint(route.Decision))
		}
	}
	return nil
}
