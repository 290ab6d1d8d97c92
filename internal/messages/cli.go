package messages

// CLI messages for user-facing diagnostics and progress output.
const (
	// CLIErrorFmt formats the final fatal diagnostic written by the entry point.
	CLIErrorFmt = "zigpin: %v\n"

	// ProjectDeclarationNotFound explains how to declare a toolchain version.
	ProjectDeclarationNotFound = "no .zigversion file found in this directory or any parent\n\nzigpin needs a declared toolchain version to run.\nRemediation:\n  - create a .zigversion file containing the version to pin (e.g. 0.14.1)\n  - leave the file empty to track master development builds"

	InstallDownloadingFmt          = "Downloading zig %s...\n"
	InstallInstalledFmt            = "Installed zig %s\n"
	InstallRemoveArchiveWarningFmt = "warning: could not remove archive %s: %v\n"
	InstallNotCachedOfflineFmt     = "zig %s is not cached (expected at %s); network access disabled via ZIGPIN_OFFLINE"

	DownloadNoMatchingReleaseFmt = "download %s: release not found (HTTP 404)\n\nCould not find a matching release; check the declared version.\nRemediation:\n  - verify the version in .zigversion exists for this platform\n  - development builds roll off the server; move the pin to a newer build\n  - leave .zigversion empty to track master"
	DownloadTimeoutFmt           = "download %s: request timed out\n\nRemediation:\n  - check your internet connection\n  - if behind a proxy, ensure HTTP_PROXY/HTTPS_PROXY are set\n  - to run a previously cached toolchain offline, set ZIGPIN_OFFLINE=1"
)
