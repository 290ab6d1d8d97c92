package install

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarnstead/zigpin/internal/cache"
	"github.com/tarnstead/zigpin/internal/index"
	"github.com/tarnstead/zigpin/internal/platform"
	"github.com/tarnstead/zigpin/internal/testutil"
)

var linuxAMD64 = platform.Platform{Arch: platform.ArchX8664, OS: platform.OSLinux}

type fakeResolver struct {
	fn   func(spec string) (index.Release, error)
	hits int
}

func (r *fakeResolver) Resolve(_ context.Context, spec string, _ platform.Platform) (index.Release, error) {
	r.hits++
	return r.fn(spec)
}

type fakeFetcher struct {
	fn   func(url string, dest string) error
	hits int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, dest string) error {
	f.hits++
	return f.fn(url, dest)
}

// archiveFetcher returns a fetcher that writes a canned archive to dest.
func archiveFetcher(t *testing.T, archive []byte) *fakeFetcher {
	t.Helper()
	return &fakeFetcher{fn: func(_ string, dest string) error {
		return os.WriteFile(dest, archive, 0o644)
	}}
}

func concreteResolver(shasum string) *fakeResolver {
	return &fakeResolver{fn: func(spec string) (index.Release, error) {
		return index.Release{
			Version:    spec,
			TarballURL: "https://example.test/zig-x86_64-linux-" + spec + ".tar.xz",
			Shasum:     shasum,
		}, nil
	}}
}

func TestEnsureFreshInstall(t *testing.T) {
	root := t.TempDir()
	archive := testutil.ToolchainArchive(t, "zig-x86_64-linux-0.13.0", "zig")
	resolver := concreteResolver(testutil.SHA256Hex(archive))
	fetcher := archiveFetcher(t, archive)
	var progress bytes.Buffer

	m := NewManager(root, linuxAMD64, resolver, fetcher, &progress, false)
	dir, err := m.Ensure(context.Background(), "0.13.0")
	require.NoError(t, err)

	paths := cache.Resolve(root, linuxAMD64, "0.13.0")
	assert.Equal(t, paths.InstallDir, dir)
	assert.FileExists(t, filepath.Join(dir, "zig"))

	_, statErr := os.Stat(paths.ArchivePath)
	assert.True(t, os.IsNotExist(statErr), "archive should be removed after install")

	assert.Contains(t, progress.String(), "Downloading zig 0.13.0...")
	assert.Contains(t, progress.String(), "Installed zig 0.13.0")
}

func TestEnsureSecondRunSkipsNetwork(t *testing.T) {
	root := t.TempDir()
	archive := testutil.ToolchainArchive(t, "zig-x86_64-linux-0.13.0", "zig")
	resolver := concreteResolver("")
	fetcher := archiveFetcher(t, archive)

	m := NewManager(root, linuxAMD64, resolver, fetcher, nil, false)
	first, err := m.Ensure(context.Background(), "0.13.0")
	require.NoError(t, err)
	second, err := m.Ensure(context.Background(), "0.13.0")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, resolver.hits, "second run must not resolve")
	assert.Equal(t, 1, fetcher.hits, "second run must not download")
}

func TestEnsureHealsPartialInstall(t *testing.T) {
	root := t.TempDir()
	paths := cache.Resolve(root, linuxAMD64, "0.13.0")

	// A crashed earlier run: install dir without the binary, orphan archive.
	require.NoError(t, os.MkdirAll(filepath.Join(paths.InstallDir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(paths.ArchivePath, []byte("junk"), 0o644))

	archive := testutil.ToolchainArchive(t, "zig-x86_64-linux-0.13.0", "zig")
	resolver := concreteResolver("")
	fetcher := archiveFetcher(t, archive)

	m := NewManager(root, linuxAMD64, resolver, fetcher, nil, false)
	dir, err := m.Ensure(context.Background(), "0.13.0")
	require.NoError(t, err)

	assert.Equal(t, paths.InstallDir, dir)
	assert.FileExists(t, filepath.Join(dir, "zig"))
	assert.Equal(t, 1, fetcher.hits)
}

func TestEnsureChannelInstallsAtCanonicalVersion(t *testing.T) {
	root := t.TempDir()
	canonical := "0.14.0-dev.2837+f38d7a92c"
	archive := testutil.ToolchainArchive(t, "zig-x86_64-linux-"+canonical, "zig")
	resolver := &fakeResolver{fn: func(string) (index.Release, error) {
		return index.Release{
			Version:    canonical,
			TarballURL: "https://example.test/builds/zig-x86_64-linux-" + canonical + ".tar.xz",
		}, nil
	}}
	fetcher := archiveFetcher(t, archive)

	m := NewManager(root, linuxAMD64, resolver, fetcher, nil, false)
	dir, err := m.Ensure(context.Background(), "master")
	require.NoError(t, err)

	want := cache.Resolve(root, linuxAMD64, canonical)
	assert.Equal(t, want.InstallDir, dir)
	assert.FileExists(t, filepath.Join(dir, "zig"))
}

func TestEnsureChannelReusesCanonicalInstall(t *testing.T) {
	root := t.TempDir()
	canonical := "0.14.0-dev.2837+f38d7a92c"
	want := cache.Resolve(root, linuxAMD64, canonical)
	require.NoError(t, os.MkdirAll(want.InstallDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(want.InstallDir, "zig"), []byte("bin"), 0o755))

	resolver := &fakeResolver{fn: func(string) (index.Release, error) {
		return index.Release{Version: canonical, TarballURL: "https://example.test/t.tar.xz"}, nil
	}}
	fetcher := &fakeFetcher{fn: func(string, string) error {
		return errors.New("must not download")
	}}

	m := NewManager(root, linuxAMD64, resolver, fetcher, nil, false)
	dir, err := m.Ensure(context.Background(), "master")
	require.NoError(t, err)

	assert.Equal(t, want.InstallDir, dir)
	assert.Equal(t, 1, resolver.hits, "channels re-resolve every run")
	assert.Zero(t, fetcher.hits)
}

func TestEnsureChecksumMismatch(t *testing.T) {
	root := t.TempDir()
	archive := testutil.ToolchainArchive(t, "zig-x86_64-linux-0.13.0", "zig")
	resolver := concreteResolver("0000000000000000000000000000000000000000000000000000000000000000")
	fetcher := archiveFetcher(t, archive)

	m := NewManager(root, linuxAMD64, resolver, fetcher, nil, false)
	_, err := m.Ensure(context.Background(), "0.13.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")

	paths := cache.Resolve(root, linuxAMD64, "0.13.0")
	assert.NoDirExists(t, paths.InstallDir, "no install dir may remain after a checksum failure")
	_, statErr := os.Stat(paths.ArchivePath)
	assert.True(t, os.IsNotExist(statErr), "the bad archive should be removed")
}

func TestEnsureMissingEntryBinary(t *testing.T) {
	root := t.TempDir()
	archive := testutil.TarXZBytes(t, []testutil.ArchiveFile{
		{Name: "zig-x86_64-linux-0.13.0/", Mode: 0o755},
		{Name: "zig-x86_64-linux-0.13.0/lib/std.zig", Body: "// std\n", Mode: 0o644},
	})
	resolver := concreteResolver("")
	fetcher := archiveFetcher(t, archive)

	m := NewManager(root, linuxAMD64, resolver, fetcher, nil, false)
	_, err := m.Ensure(context.Background(), "0.13.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not contain zig")

	paths := cache.Resolve(root, linuxAMD64, "0.13.0")
	assert.NoDirExists(t, paths.InstallDir)
}

func TestEnsureCorruptArchiveLeavesNothingBehind(t *testing.T) {
	root := t.TempDir()
	resolver := concreteResolver("")
	fetcher := &fakeFetcher{fn: func(_ string, dest string) error {
		return os.WriteFile(dest, []byte("definitely not an xz stream"), 0o644)
	}}

	m := NewManager(root, linuxAMD64, resolver, fetcher, nil, false)
	_, err := m.Ensure(context.Background(), "0.13.0")
	require.Error(t, err)

	paths := cache.Resolve(root, linuxAMD64, "0.13.0")
	assert.NoDirExists(t, paths.InstallDir)
	_, statErr := os.Stat(paths.ArchivePath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnsureFetchErrorPropagates(t *testing.T) {
	root := t.TempDir()
	resolver := concreteResolver("")
	fetcher := &fakeFetcher{fn: func(string, string) error {
		return errors.New("connection refused")
	}}

	m := NewManager(root, linuxAMD64, resolver, fetcher, nil, false)
	_, err := m.Ensure(context.Background(), "0.13.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestEnsureOfflineCachedVersion(t *testing.T) {
	root := t.TempDir()
	paths := cache.Resolve(root, linuxAMD64, "0.13.0")
	require.NoError(t, os.MkdirAll(paths.InstallDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(paths.InstallDir, "zig"), []byte("bin"), 0o755))

	resolver := &fakeResolver{fn: func(string) (index.Release, error) {
		return index.Release{}, errors.New("must not resolve offline")
	}}
	fetcher := &fakeFetcher{fn: func(string, string) error {
		return errors.New("must not download offline")
	}}

	m := NewManager(root, linuxAMD64, resolver, fetcher, nil, true)
	dir, err := m.Ensure(context.Background(), "0.13.0")
	require.NoError(t, err)
	assert.Equal(t, paths.InstallDir, dir)
	assert.Zero(t, resolver.hits)
	assert.Zero(t, fetcher.hits)
}

func TestEnsureOfflineUncachedVersion(t *testing.T) {
	root := t.TempDir()
	resolver := concreteResolver("")
	fetcher := archiveFetcher(t, nil)

	m := NewManager(root, linuxAMD64, resolver, fetcher, nil, true)
	_, err := m.Ensure(context.Background(), "0.12.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zig 0.12.0 is not cached")
	assert.Contains(t, err.Error(), "ZIGPIN_OFFLINE")
	assert.Zero(t, resolver.hits)
	assert.Zero(t, fetcher.hits)
}

func TestEnsureResolverErrorPropagates(t *testing.T) {
	root := t.TempDir()
	resolver := &fakeResolver{fn: func(string) (index.Release, error) {
		return index.Release{}, index.ErrPlatformNotFound
	}}
	fetcher := archiveFetcher(t, nil)

	m := NewManager(root, linuxAMD64, resolver, fetcher, nil, false)
	_, err := m.Ensure(context.Background(), "0.13.0")
	require.ErrorIs(t, err, index.ErrPlatformNotFound)
	assert.Zero(t, fetcher.hits)

	entries, readErr := os.ReadDir(root)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "a failed resolution must not write anything")
}

func TestEnsureWarnsWhenArchiveRemovalFails(t *testing.T) {
	origRemove := osRemove
	osRemove = func(path string) error {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return os.ErrNotExist
		}
		return errors.New("device busy")
	}
	t.Cleanup(func() { osRemove = origRemove })

	root := t.TempDir()
	archive := testutil.ToolchainArchive(t, "zig-x86_64-linux-0.13.0", "zig")
	resolver := concreteResolver("")
	fetcher := archiveFetcher(t, archive)
	var progress bytes.Buffer

	m := NewManager(root, linuxAMD64, resolver, fetcher, &progress, false)
	_, err := m.Ensure(context.Background(), "0.13.0")
	require.NoError(t, err, "a failed archive cleanup must not fail the install")
	assert.Contains(t, progress.String(), "could not remove archive")
}
