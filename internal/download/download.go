// Package download streams release archives to the local cache.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/tarnstead/zigpin/internal/messages"
	"github.com/tarnstead/zigpin/internal/terminal"
)

// transferTimeout bounds the whole archive transfer. Release archives run to
// a few hundred megabytes, so this is generous rather than snappy.
const transferTimeout = 15 * time.Minute

var isInteractiveFn = terminal.IsInteractive

// Fetcher downloads archives with a byte cap and optional progress output.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	progress io.Writer
}

// NewFetcher returns a Fetcher writing progress to progress.
// maxBytes caps the response body size; progress may be nil.
func NewFetcher(maxBytes int64, progress io.Writer) *Fetcher {
	if progress == nil {
		progress = io.Discard
	}
	return &Fetcher{
		client:   &http.Client{Timeout: transferTimeout},
		maxBytes: maxBytes,
		progress: progress,
	}
}

// Fetch streams the body at url into the file at dest, overwriting any
// existing content. A non-success status is fatal; nothing is retried.
func (f *Fetcher) Fetch(ctx context.Context, url string, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf(messages.DownloadRequestFmt, err)
	}
	req.Header.Set("User-Agent", "zigpin")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeoutError(err) {
			return fmt.Errorf(messages.DownloadTimeoutFmt, url)
		}
		return fmt.Errorf(messages.DownloadFailedFmt, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf(messages.DownloadNoMatchingReleaseFmt, url)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(messages.DownloadUnexpectedStatusFmt, url, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf(messages.DownloadCreateFileFmt, dest, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(dest)
		}
	}()

	body := f.wrapProgress(resp.Body, resp.ContentLength)
	n, copyErr := io.Copy(out, io.LimitReader(body, f.maxBytes+1))
	if copyErr != nil {
		_ = out.Close()
		if isTimeoutError(copyErr) {
			return fmt.Errorf(messages.DownloadTimeoutFmt, url)
		}
		return fmt.Errorf(messages.DownloadWriteFmt, url, copyErr)
	}
	if n > f.maxBytes {
		_ = out.Close()
		return fmt.Errorf(messages.DownloadTooLargeFmt, url, n, f.maxBytes)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return fmt.Errorf(messages.DownloadSyncFmt, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf(messages.DownloadCloseFmt, err)
	}
	committed = true
	return nil
}

// wrapProgress adds percentage output for interactive terminals.
// Piped invocations get no byte progress, only the install summary lines.
func (f *Fetcher) wrapProgress(body io.Reader, total int64) io.Reader {
	if total <= 0 || f.progress == io.Discard || !isInteractiveFn() {
		return body
	}
	return &progressReader{r: body, total: total, out: f.progress, lastPct: -1}
}

// isTimeoutError reports whether err is a network timeout.
func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// progressReader reports whole-percent transfer progress as it is consumed.
type progressReader struct {
	r       io.Reader
	total   int64
	read    int64
	out     io.Writer
	lastPct int
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct != p.lastPct {
			p.lastPct = pct
			_, _ = fmt.Fprintf(p.out, "\r  %3d%%", pct)
			if pct == 100 {
				_, _ = fmt.Fprintln(p.out)
			}
		}
	}
	return n, err
}
