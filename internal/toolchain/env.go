package toolchain

import "github.com/shipforge/shipforge/internal/target"

// Returns the environment overrides required to cross-compile a triple
// inside the build container.
//
// The overrides select the cross linker and C compiler for each target
// family. Triples outside these families build with the image defaults.
func CrossEnv(triple target.Triple) []string {
	switch {
	case triple == "aarch64-unknown-linux-gnu":
		return []string{
			"CC_aarch64_unknown_linux_gnu=aarch64-linux-gnu-gcc",
			"CXX_aarch64_unknown_linux_gnu=aarch64-linux-gnu-g++",
			"CARGO_TARGET_AARCH64_UNKNOWN_LINUX_GNU_LINKER=aarch64-linux-gnu-gcc",
		}
	case triple == "x86_64-unknown-linux-musl":
		return []string{
			"CC_x86_64_unknown_linux_musl=musl-gcc",
			"CARGO_TARGET_X86_64_UNKNOWN_LINUX_MUSL_LINKER=musl-gcc",
		}
	case triple == "aarch64-unknown-linux-musl":
		return []string{
			"CC_aarch64_unknown_linux_musl=aarch64-linux-gnu-gcc",
			"CARGO_TARGET_AARCH64_UNKNOWN_LINUX_MUSL_LINKER=aarch64-linux-gnu-gcc",
		}
	case triple.IsWindows():
		// Known-fragile cross path; lld stands in for the MSVC linker.
		return []string{
			"CARGO_TARGET_X86_64_PC_WINDOWS_MSVC_LINKER=lld-link",
		}
	default:
		return nil
	}
}

// Returns the distribution packages a build container needs before it can
// cross-compile the triple. The base image already carries the host
// toolchain; only cross targets need extras.
func CrossPackages(triple target.Triple) []string {
	switch {
	case triple == "aarch64-unknown-linux-gnu", triple == "aarch64-unknown-linux-musl":
		return []string{"gcc-aarch64-linux-gnu", "g++-aarch64-linux-gnu", "libc6-dev-arm64-cross"}
	case triple == "x86_64-unknown-linux-musl":
		return []string{"musl-tools"}
	case triple.IsWindows():
		return []string{"lld", "mingw-w64"}
	default:
		return nil
	}
}
