package messages

// System messages for internal operations.
const (
	// DispatchErrDelegated indicates execution was handed off to the toolchain.
	DispatchErrDelegated = "delegated to toolchain"
	// DispatchMissingArgv0 indicates argv[0] is missing.
	DispatchMissingArgv0        = "missing argv[0]"
	DispatchWorkingDirRequired  = "working directory is required"
	DispatchExitHandlerRequired = "exit handler is required"
	DispatchSystemRequired      = "dispatch system is required"

	// PlatformUnsupported is the sentinel text for unsupported host platforms.
	PlatformUnsupported        = "unsupported platform"
	PlatformUnsupportedOSFmt   = "%w: operating system %q"
	PlatformUnsupportedArchFmt = "%w: architecture %q"

	// ProjectStartDirRequired indicates the locator was given no start directory.
	ProjectStartDirRequired       = "start directory is required"
	ProjectResolvePathFmt         = "resolve path %s: %w"
	ProjectCheckPathFmt           = "check %s: %w"
	ProjectDeclarationIsDirFmt    = "%s exists but is a directory; move or remove it and retry"
	ProjectReadDeclarationFmt     = "read %s: %w"
	ProjectDeclarationTooLargeFmt = "declaration %s exceeds %d bytes"
	ProjectDeclarationMultiline   = "declaration spans multiple lines"
	ProjectDeclarationInvalidFmt  = "%w; %s must hold a single version token"

	CacheResolveHomeFmt = "resolve home dir: %w"
	CacheCreateRootFmt  = "create cache root %s: %w"

	// IndexPlatformNotFound is the sentinel text for versions with no build for the host.
	IndexPlatformNotFound       = "no release for this platform"
	IndexPlatformNotFoundFmt    = "%w: version %s has no %s build"
	IndexDownloadURLNotFound    = "release index entry has no download url"
	IndexDownloadURLNotFoundFmt = "%w: version %s, platform %s"
	IndexRequestFmt             = "build index request: %w"
	IndexFetchFmt               = "fetch release index %s: %w"
	IndexStatusFmt              = "fetch release index %s: unexpected status %s"
	IndexDecodeFmt              = "decode release index %s: %w"
	IndexVersionFieldFmt        = "decode version field of index entry %s: %w"
	IndexEntryFmt               = "decode index entry %s/%s: %w"

	DownloadRequestFmt          = "build download request: %w"
	DownloadFailedFmt           = "download %s: %w"
	DownloadUnexpectedStatusFmt = "download %s: unexpected status %s"
	DownloadTooLargeFmt         = "download %s: response too large (%d bytes > limit %d bytes)"
	DownloadCreateFileFmt       = "create archive file %s: %w"
	DownloadWriteFmt            = "write archive %s: %w"
	DownloadSyncFmt             = "sync archive file: %w"
	DownloadCloseFmt            = "close archive file: %w"

	ExtractUnsupportedFormatFmt = "unsupported archive format: %s"
	ExtractOpenArchiveFmt       = "open archive %s: %w"
	ExtractXZStreamFmt          = "open xz stream: %w"
	ExtractReadArchiveFmt       = "read archive %s: %w"
	ExtractEmptyArchiveFmt      = "archive %s has no entries"
	ExtractNoTopLevelFmt        = "archive entry %q sits outside the top-level directory"
	ExtractSecondTopLevelFmt    = "archive has more than one top-level directory (%q and %q)"
	ExtractIllegalPathFmt       = "archive entry %q escapes the install directory"
	ExtractIllegalLinkFmt       = "symlink %q points outside the install directory"
	ExtractCreateDirFmt         = "create dir %s: %w"
	ExtractCreateFileFmt        = "create file %s: %w"
	ExtractWriteFileFmt         = "write file %s: %w"
	ExtractSymlinkFmt           = "create symlink %s: %w"
	ExtractUnsupportedEntryFmt  = "unsupported archive entry %q"

	InstallCheckBinaryFmt   = "check toolchain binary %s: %w"
	InstallMissingBinaryFmt = "toolchain archive %s did not contain %s"
	InstallCleanArchiveFmt  = "remove stale archive %s: %w"
	InstallCleanDirFmt      = "remove stale install dir %s: %w"
	InstallStagingDirFmt    = "create staging dir: %w"
	InstallMoveDirFmt       = "move toolchain into %s: %w"
	InstallOpenArchiveFmt   = "open %s: %w"
	InstallHashArchiveFmt   = "hash %s: %w"
	InstallChecksumBadFmt   = "checksum mismatch for %s (expected %s, got %s)"

	LockOpenFmt    = "open lock %s: %w"
	LockAcquireFmt = "lock %s: %w"
	LockTimeoutFmt = "timed out waiting for lock after %s"
)
