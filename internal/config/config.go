// Package config resolves zigpin settings from the optional cache-root
// config file and ZIGPIN_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/tarnstead/zigpin/internal/messages"
)

// File is the optional user config filename inside the cache root.
const File = "config.toml"

// Environment overrides. Each wins over the corresponding config file value.
const (
	EnvIndexURL         = "ZIGPIN_INDEX_URL"
	EnvBuildsURL        = "ZIGPIN_BUILDS_URL"
	EnvOffline          = "ZIGPIN_OFFLINE"
	EnvVersionOverride  = "ZIGPIN_VERSION"
	EnvMaxDownloadBytes = "ZIGPIN_MAX_DOWNLOAD_BYTES"
)

// Defaults point at the canonical Zig release host.
const (
	DefaultIndexURL  = "https://ziglang.org/download/index.json"
	DefaultBuildsURL = "https://ziglang.org/builds"
)

// defaultMaxDownloadBytes caps archive downloads at 4 GiB.
const defaultMaxDownloadBytes = int64(4 * 1024 * 1024 * 1024)

// Config holds the resolved zigpin settings.
type Config struct {
	IndexURL         string `toml:"index_url"`
	BuildsURL        string `toml:"builds_url"`
	MaxDownloadBytes int64  `toml:"max_download_bytes"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		IndexURL:         DefaultIndexURL,
		BuildsURL:        DefaultBuildsURL,
		MaxDownloadBytes: defaultMaxDownloadBytes,
	}
}

// Load resolves configuration for the given cache root. A missing config
// file is not an error; environment overrides win over file values.
func Load(root string, getenv func(string) string) (Config, error) {
	cfg := Defaults()

	path := filepath.Join(root, File)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		fileCfg, err := Parse(data, path)
		if err != nil {
			return Config{}, err
		}
		cfg.merge(fileCfg)
	case errors.Is(err, os.ErrNotExist):
		// The config file is optional.
	default:
		return Config{}, fmt.Errorf(messages.ConfigReadFileFmt, path, err)
	}

	if v := strings.TrimSpace(getenv(EnvIndexURL)); v != "" {
		cfg.IndexURL = v
	}
	if v := strings.TrimSpace(getenv(EnvBuildsURL)); v != "" {
		cfg.BuildsURL = v
	}
	if v := strings.TrimSpace(getenv(EnvMaxDownloadBytes)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxDownloadBytes = n
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.BuildsURL = strings.TrimRight(cfg.BuildsURL, "/")
	return cfg, nil
}

// Parse decodes config TOML data from a source identifier.
// data is the TOML content; source is used in error messages.
func Parse(data []byte, source string) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf(messages.ConfigInvalidConfigFmt, source, err)
	}
	if err := decodeStrict(data); err != nil {
		return Config{}, fmt.Errorf(messages.ConfigUnrecognizedKeysFmt, source, err)
	}
	return cfg, nil
}

// decodeStrict re-decodes the TOML data with strict unknown-field rejection.
// This catches keys that toml.Unmarshal silently ignores.
func decodeStrict(data []byte) error {
	var cfg Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(&cfg)
}

// merge overlays non-zero fields from other onto c.
func (c *Config) merge(other Config) {
	if other.IndexURL != "" {
		c.IndexURL = other.IndexURL
	}
	if other.BuildsURL != "" {
		c.BuildsURL = other.BuildsURL
	}
	if other.MaxDownloadBytes != 0 {
		c.MaxDownloadBytes = other.MaxDownloadBytes
	}
}

func (c Config) validate() error {
	if err := checkURL("index_url", c.IndexURL); err != nil {
		return err
	}
	if err := checkURL("builds_url", c.BuildsURL); err != nil {
		return err
	}
	if c.MaxDownloadBytes <= 0 {
		return fmt.Errorf(messages.ConfigNegativeBytesFmt, c.MaxDownloadBytes)
	}
	return nil
}

func checkURL(field string, value string) error {
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf(messages.ConfigInvalidURLFmt, field, value)
	}
	return nil
}
