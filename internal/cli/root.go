package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/shipforge/shipforge/internal"
	"github.com/shipforge/shipforge/internal/cleanup"
)

// Represents the root command for the shipforge release builder.
var RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Verbose bool       `short:"v" help:"Enable verbose output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Build   BuildCmd   `cmd:"" help:"Build, sign, and collect release artifacts."`
	Plan    PlanCmd    `cmd:"" help:"Show the routing plan without building."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
//
// Registered cleanup hooks run after the subcommand returns, on the error
// path included. An interrupt cancels the bound context; subcommands unwind
// and the hooks still fire before the process exits.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer cleanup.Run()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Builds release binaries across the target matrix.\n\nRoutes each target to a native or containerized build, signs and notarizes macOS artifacts, and collects everything into the distribution directory."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
//
// Flags are combined with build-time defaults; the shared level variable is
// adjusted in place so the handler installed by main picks the change up.
func configureLogger() {
	if RootCmd.Debug {
		internal.SetDebug(true)
	}
	if RootCmd.Quiet {
		internal.SetQuiet(true)
	}
	if RootCmd.Verbose {
		internal.SetVerbose(true)
	}

	switch {
	case internal.IsDebug():
		internal.LogLevel.Set(slog.LevelDebug)
	case internal.IsQuiet():
		internal.LogLevel.Set(slog.LevelWarn)
	default:
		internal.LogLevel.Set(slog.LevelInfo)
	}
}
