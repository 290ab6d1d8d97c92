// Package platform maps the running OS and CPU architecture to the naming
// convention used by the Zig release index and the local cache layout.
package platform

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/tarnstead/zigpin/internal/messages"
)

// Arch is a CPU architecture in Zig release naming.
type Arch string

// OS is an operating system in Zig release naming.
type OS string

// Supported architectures.
const (
	ArchX86     Arch = "x86"
	ArchX8664   Arch = "x86_64"
	ArchAarch64 Arch = "aarch64"
	ArchRiscv64 Arch = "riscv64"
)

// Supported operating systems.
const (
	OSLinux   OS = "linux"
	OSMacOS   OS = "macos"
	OSWindows OS = "windows"
)

// ErrUnsupported reports a host outside the supported platform set.
var ErrUnsupported = errors.New(messages.PlatformUnsupported)

// Platform identifies one supported architecture/OS pair.
// It is computed once per run and immutable thereafter.
type Platform struct {
	Arch Arch
	OS   OS
}

// Detect returns the Platform for the running process.
func Detect() (Platform, error) {
	return fromRuntime(runtime.GOOS, runtime.GOARCH)
}

// fromRuntime maps GOOS/GOARCH values onto release naming.
func fromRuntime(goos string, goarch string) (Platform, error) {
	var arch Arch
	switch goarch {
	case "386":
		arch = ArchX86
	case "amd64":
		arch = ArchX8664
	case "arm64":
		arch = ArchAarch64
	case "riscv64":
		arch = ArchRiscv64
	default:
		return Platform{}, fmt.Errorf(messages.PlatformUnsupportedArchFmt, ErrUnsupported, goarch)
	}

	var os OS
	switch goos {
	case "linux":
		os = OSLinux
	case "darwin":
		os = OSMacOS
	case "windows":
		os = OSWindows
	default:
		return Platform{}, fmt.Errorf(messages.PlatformUnsupportedOSFmt, ErrUnsupported, goos)
	}

	return Platform{Arch: arch, OS: os}, nil
}

// String returns the release index key for the platform, e.g. "x86_64-linux".
func (p Platform) String() string {
	return string(p.Arch) + "-" + string(p.OS)
}

// ArchiveExt returns the release archive extension for the platform.
func (p Platform) ArchiveExt() string {
	if p.OS == OSWindows {
		return ".zip"
	}
	return ".tar.xz"
}

// ExeName returns the toolchain entry-point binary name for the platform.
func (p Platform) ExeName() string {
	if p.OS == OSWindows {
		return "zig.exe"
	}
	return "zig"
}
