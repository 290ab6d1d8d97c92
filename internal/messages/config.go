package messages

// Config messages for loading and validating config.toml.
const (
	// ConfigReadFileFmt formats config read failures.
	ConfigReadFileFmt         = "read config %s: %w"
	ConfigInvalidConfigFmt    = "invalid config %s: %w"
	ConfigUnrecognizedKeysFmt = "%s: unrecognized config keys: %w"
	ConfigInvalidURLFmt       = "config %s must be an http(s) url, got %q"
	ConfigNegativeBytesFmt    = "config max_download_bytes must be positive, got %d"
)
