// Package cache computes the deterministic on-disk layout for toolchain installs.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/tarnstead/zigpin/internal/messages"
	"github.com/tarnstead/zigpin/internal/platform"
)

// EnvHome overrides the default cache root directory.
const EnvHome = "ZIGPIN_HOME"

// rootDirName is the cache directory created under the user's home.
const rootDirName = ".zigpin"

// Paths holds the computed locations for one toolchain install.
// ArchivePath is a sibling of InstallDir with the archive extension appended;
// it only exists while an installation is in flight.
type Paths struct {
	InstallDir  string
	ArchivePath string
}

// Resolve returns the paths for a platform/version pair under root.
// Distinct pairs never collide: the version and platform strings are both
// embedded in the directory name.
func Resolve(root string, p platform.Platform, version string) Paths {
	dir := filepath.Join(root, fmt.Sprintf("zig-%s-%s", p, version))
	return Paths{
		InstallDir:  dir,
		ArchivePath: dir + p.ArchiveExt(),
	}
}

// DefaultRoot resolves the cache root directory, honoring ZIGPIN_HOME when set.
func DefaultRoot(getenv func(string) string) (string, error) {
	if override := strings.TrimSpace(getenv(EnvHome)); override != "" {
		return override, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf(messages.CacheResolveHomeFmt, err)
	}
	return filepath.Join(home, rootDirName), nil
}

// EnsureRoot creates the cache root when missing. An existing root is not an error.
func EnsureRoot(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf(messages.CacheCreateRootFmt, root, err)
	}
	return nil
}
