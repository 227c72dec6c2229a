package gdrive

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

type ProbeResult struct {
	StatusCode  int
	ContentType string
	Size        int64
	FileName    string
}

func (p *ProbeResult) OK() bool {
	return p.StatusCode >= 200 && p.StatusCode <= 299
}

// IsHTML reports an interstitial page rather than file bytes.
func (p *ProbeResult) IsHTML() bool {
	return strings.HasPrefix(strings.ToLower(p.ContentType), "text/html")
}

// Probe requests the first byte of a direct-download link and reads its metadata.
func Probe(ctx context.Context, client *http.Client, rawURL string) (*ProbeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to do request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))

	result := &ProbeResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        contentSize(resp),
		FileName:    dispositionFileName(resp.Header.Get("Content-Disposition")),
	}

	return result, nil
}

func contentSize(resp *http.Response) int64 {
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		if i := strings.LastIndexByte(cr, '/'); i != -1 {
			if size, err := strconv.ParseInt(strings.TrimSpace(cr[i+1:]), 10, 64); err == nil {
				return size
			}
		}
	}

	if resp.StatusCode == http.StatusOK && resp.ContentLength > 0 {
		return resp.ContentLength
	}

	return 0
}

func dispositionFileName(header string) string {
	if header == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(params["filename"])
}
