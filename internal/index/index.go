// Package index resolves version specs against the remote Zig release index.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tarnstead/zigpin/internal/messages"
	"github.com/tarnstead/zigpin/internal/platform"
)

// ErrPlatformNotFound reports a version that is listed in the index but has
// no build for the local platform.
var ErrPlatformNotFound = errors.New(messages.IndexPlatformNotFound)

// ErrDownloadURLNotFound reports a listed platform entry missing its tarball field.
var ErrDownloadURLNotFound = errors.New(messages.IndexDownloadURLNotFound)

const requestTimeout = 30 * time.Second

// Release identifies one concrete downloadable toolchain build.
// Version is canonical: a channel spec like "master" resolves to the concrete
// build the channel currently points at. Shasum is empty for releases whose
// URL was synthesized rather than read from the index.
type Release struct {
	Version    string
	TarballURL string
	Shasum     string
}

// Client resolves version specs against a release index.
type Client struct {
	indexURL   string
	buildsURL  string
	httpClient *http.Client
}

// NewClient returns a Client for the given index and builds base URLs.
func NewClient(indexURL string, buildsURL string) *Client {
	return &Client{
		indexURL:   indexURL,
		buildsURL:  buildsURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// asset is the per-platform payload inside an index entry.
type asset struct {
	Tarball string `json:"tarball"`
	Shasum  string `json:"shasum"`
}

// Resolve looks spec up in the release index for platform p.
//
// A spec missing from the index entirely is assumed to name an unlisted
// development build and resolves to a synthesized builds URL without further
// network traffic. A spec that is present but has no entry for p fails with
// ErrPlatformNotFound; a platform entry without a tarball field fails with
// ErrDownloadURLNotFound.
func (c *Client) Resolve(ctx context.Context, spec string, p platform.Platform) (Release, error) {
	idx, err := c.fetchIndex(ctx)
	if err != nil {
		return Release{}, err
	}

	entry, ok := idx[spec]
	if !ok {
		return Release{Version: spec, TarballURL: c.SynthesizeURL(spec, p)}, nil
	}

	canonical := spec
	if raw, ok := entry["version"]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return Release{}, fmt.Errorf(messages.IndexVersionFieldFmt, spec, err)
		}
		if v != "" {
			canonical = v
		}
	}

	raw, ok := entry[p.String()]
	if !ok {
		return Release{}, fmt.Errorf(messages.IndexPlatformNotFoundFmt, ErrPlatformNotFound, spec, p)
	}
	var a asset
	if err := json.Unmarshal(raw, &a); err != nil {
		return Release{}, fmt.Errorf(messages.IndexEntryFmt, spec, p, err)
	}
	if a.Tarball == "" {
		return Release{}, fmt.Errorf(messages.IndexDownloadURLNotFoundFmt, ErrDownloadURLNotFound, spec, p)
	}

	return Release{Version: canonical, TarballURL: a.Tarball, Shasum: a.Shasum}, nil
}

// SynthesizeURL constructs the canonical per-platform build URL for a version
// that has no index entry.
func (c *Client) SynthesizeURL(version string, p platform.Platform) string {
	return fmt.Sprintf("%s/zig-%s-%s%s", c.buildsURL, p, version, p.ArchiveExt())
}

// fetchIndex downloads and decodes the release index document.
// Entries map version strings to objects whose platform keys hold asset
// fields and whose scalar keys (version, date) hold release metadata.
func (c *Client) fetchIndex(ctx context.Context) (map[string]map[string]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.indexURL, nil)
	if err != nil {
		return nil, fmt.Errorf(messages.IndexRequestFmt, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "zigpin")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf(messages.IndexFetchFmt, c.indexURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(messages.IndexStatusFmt, c.indexURL, resp.Status)
	}

	var idx map[string]map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&idx); err != nil {
		return nil, fmt.Errorf(messages.IndexDecodeFmt, c.indexURL, err)
	}
	return idx, nil
}
