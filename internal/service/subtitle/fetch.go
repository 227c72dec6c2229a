package subtitle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/sharetube/roomsync/pkg/httpclient"
)

const maxSubtitleBytes = 16 << 20

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zipMagic  = []byte{0x50, 0x4b}
)

var entryRanks = map[string]int{
	".vtt": 5,
	".srt": 4,
	".ass": 3,
	".ssa": 3,
	".sub": 2,
	".txt": 1,
}

// FetchError carries a reason that can be shown to users as is.
type FetchError struct {
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

var ErrNoSubtitleEntry = errors.New("archive has no subtitle entry")

type Subtitle struct {
	Label   string `json:"label"`
	VttText string `json:"vttText"`
}

// Fetch downloads a subtitle, unpacking gzip or zip archives, and returns it as WebVTT.
func (s *Service) Fetch(ctx context.Context, rawURL string) (*Subtitle, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, &FetchError{Reason: "Invalid subtitle URL."}
	}

	data, err := httpclient.Get(ctx, s.client, u.String(), maxSubtitleBytes)
	if err != nil {
		s.logger.InfoContext(ctx, "subtitle download failed", "url", u.String(), "error", err)
		return nil, &FetchError{Reason: "Subtitle download failed.", Err: err}
	}

	label := path.Base(u.Path)
	data, entryName, err := unpack(data)
	if err != nil {
		return nil, &FetchError{Reason: "Subtitle archive could not be read.", Err: err}
	}
	if entryName != "" {
		label = path.Base(entryName)
	}

	text := Decode(data)
	if strings.TrimSpace(text) == "" {
		return nil, &FetchError{Reason: "Subtitle file is empty."}
	}

	return &Subtitle{
		Label:   strings.TrimSuffix(label, path.Ext(label)),
		VttText: ToVTT(text),
	}, nil
}

// unpack returns the subtitle bytes and, for zip archives, the chosen entry name.
func unpack(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("failed to open gzip: %w", err)
		}
		defer zr.Close()

		out, err := io.ReadAll(io.LimitReader(zr, maxSubtitleBytes))
		if err != nil {
			return nil, "", fmt.Errorf("failed to read gzip: %w", err)
		}
		return out, "", nil

	case bytes.HasPrefix(data, zipMagic):
		return unzip(data)
	}

	return data, "", nil
}

func entryRank(name string) int {
	return entryRanks[strings.ToLower(path.Ext(name))]
}

func unzip(data []byte) ([]byte, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip: %w", err)
	}

	var best *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if rank := entryRank(f.Name); rank > 0 && (best == nil || rank > entryRank(best.Name)) {
			best = f
		}
	}
	if best == nil {
		return nil, "", ErrNoSubtitleEntry
	}

	rc, err := best.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip entry: %w", err)
	}
	defer rc.Close()

	out, err := io.ReadAll(io.LimitReader(rc, maxSubtitleBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read zip entry: %w", err)
	}

	return out, best.Name, nil
}
