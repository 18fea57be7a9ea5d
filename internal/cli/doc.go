// Parses flags and configures logging for the shipforge release builder.
//
// The tool accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global log level is adjusted to reflect the final verbosity before the
// selected subcommand runs. Signing and notarization credentials are read
// from environment variables only.
package cli
