// Package install materializes pinned toolchain versions in the local cache.
package install

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/tarnstead/zigpin/internal/cache"
	"github.com/tarnstead/zigpin/internal/extract"
	"github.com/tarnstead/zigpin/internal/index"
	"github.com/tarnstead/zigpin/internal/messages"
	"github.com/tarnstead/zigpin/internal/platform"
)

// Resolver turns a version spec into a concrete downloadable release.
type Resolver interface {
	Resolve(ctx context.Context, spec string, p platform.Platform) (index.Release, error)
}

// Fetcher streams a release archive to a local path.
type Fetcher interface {
	Fetch(ctx context.Context, url string, dest string) error
}

var (
	osStat         = os.Stat
	osRemove       = os.Remove
	osRemoveAll    = os.RemoveAll
	osMkdirTemp    = os.MkdirTemp
	osRename       = os.Rename
	extractArchive = extract.Extract
)

// Manager ensures pinned toolchain versions are present under the cache root.
type Manager struct {
	root     string
	plat     platform.Platform
	resolver Resolver
	fetcher  Fetcher
	progress io.Writer
	offline  bool
}

// NewManager returns a Manager rooted at the cache directory root.
// progress receives install status lines and may be nil. When offline is set,
// versions that are not already cached fail instead of touching the network.
func NewManager(root string, plat platform.Platform, resolver Resolver, fetcher Fetcher, progress io.Writer, offline bool) *Manager {
	if progress == nil {
		progress = io.Discard
	}
	return &Manager{
		root:     root,
		plat:     plat,
		resolver: resolver,
		fetcher:  fetcher,
		progress: progress,
		offline:  offline,
	}
}

// Ensure makes the toolchain named by spec available and returns its install
// directory. An already-installed version is returned without any network
// traffic. Resolution happens before anything touches the disk, so a failed
// lookup leaves the cache untouched; the download-and-extract path runs under
// an advisory file lock so concurrent runs of the same version cooperate.
func (m *Manager) Ensure(ctx context.Context, spec string) (string, error) {
	paths := cache.Resolve(m.root, m.plat, spec)
	ok, err := m.installed(paths)
	if err != nil {
		return "", err
	}
	if ok {
		return paths.InstallDir, nil
	}

	if m.offline {
		return "", fmt.Errorf(messages.InstallNotCachedOfflineFmt, spec, paths.InstallDir)
	}

	rel, err := m.resolver.Resolve(ctx, spec, m.plat)
	if err != nil {
		return "", err
	}

	if rel.Version != spec {
		// Channel specs resolve to a concrete build that may already be
		// cached from a previous run.
		paths = cache.Resolve(m.root, m.plat, rel.Version)
		ok, err := m.installed(paths)
		if err != nil {
			return "", err
		}
		if ok {
			return paths.InstallDir, nil
		}
	}

	if err := cache.EnsureRoot(m.root); err != nil {
		return "", err
	}
	err = withFileLock(paths.InstallDir+".lock", func() error {
		// Another process may have completed this install while we waited.
		ok, err := m.installed(paths)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if err := m.cleanStale(paths); err != nil {
			return err
		}
		return m.materialize(ctx, rel, paths)
	})
	if err != nil {
		return "", err
	}
	return paths.InstallDir, nil
}

// materialize downloads, verifies, and unpacks one release into place.
// The archive is deleted afterwards whether or not the install succeeded.
func (m *Manager) materialize(ctx context.Context, rel index.Release, paths cache.Paths) error {
	_, _ = fmt.Fprintf(m.progress, messages.InstallDownloadingFmt, rel.Version)
	if err := m.fetcher.Fetch(ctx, rel.TarballURL, paths.ArchivePath); err != nil {
		return err
	}
	defer func() {
		if err := osRemove(paths.ArchivePath); err != nil && !os.IsNotExist(err) {
			_, _ = color.New(color.FgYellow).Fprintf(m.progress, messages.InstallRemoveArchiveWarningFmt, paths.ArchivePath, err)
		}
	}()

	if rel.Shasum != "" {
		if err := verifyChecksum(paths.ArchivePath, rel.Shasum); err != nil {
			return err
		}
	}

	// Staged extract; the rename into place is the commit point.
	stagingDir, err := osMkdirTemp(m.root, "staging-*")
	if err != nil {
		return fmt.Errorf(messages.InstallStagingDirFmt, err)
	}
	defer func() {
		_ = osRemoveAll(stagingDir)
	}()

	if err := extractArchive(paths.ArchivePath, stagingDir); err != nil {
		return err
	}

	bin := filepath.Join(stagingDir, m.plat.ExeName())
	if _, err := osStat(bin); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf(messages.InstallMissingBinaryFmt, filepath.Base(paths.ArchivePath), m.plat.ExeName())
		}
		return fmt.Errorf(messages.InstallCheckBinaryFmt, bin, err)
	}

	if err := osRename(stagingDir, paths.InstallDir); err != nil {
		return fmt.Errorf(messages.InstallMoveDirFmt, paths.InstallDir, err)
	}
	_, _ = fmt.Fprintf(m.progress, messages.InstallInstalledFmt, rel.Version)
	return nil
}

// installed reports whether the install dir holds the entry binary.
// A directory without the binary is a partial install and counts as absent.
func (m *Manager) installed(paths cache.Paths) (bool, error) {
	bin := filepath.Join(paths.InstallDir, m.plat.ExeName())
	if _, err := osStat(bin); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf(messages.InstallCheckBinaryFmt, bin, err)
	}
	return true, nil
}

// cleanStale removes leftover artifacts from an interrupted installation.
func (m *Manager) cleanStale(paths cache.Paths) error {
	if err := osRemove(paths.ArchivePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf(messages.InstallCleanArchiveFmt, paths.ArchivePath, err)
	}
	if err := osRemoveAll(paths.InstallDir); err != nil {
		return fmt.Errorf(messages.InstallCleanDirFmt, paths.InstallDir, err)
	}
	return nil
}

// verifyChecksum computes the SHA-256 of path and compares it to expected.
func verifyChecksum(path string, expected string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf(messages.InstallOpenArchiveFmt, path, err)
	}
	defer func() { _ = file.Close() }()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return fmt.Errorf(messages.InstallHashArchiveFmt, path, err)
	}
	actual := fmt.Sprintf("%x", hasher.Sum(nil))
	if actual != expected {
		return fmt.Errorf(messages.InstallChecksumBadFmt, filepath.Base(path), expected, actual)
	}
	return nil
}
