package archiveorg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/sharetube/roomsync/pkg/httpclient"
)

const maxMetadataBytes = 16 << 20

var ErrNoVideoFiles = errors.New("item has no video files")

var extensionScores = map[string]int{
	".mp4":  130,
	".m4v":  120,
	".webm": 110,
	".mov":  90,
	".mkv":  20,
	".ogv":  10,
	".avi":  10,
	".mpeg": 10,
	".mpg":  10,
}

const (
	originalNameBonus = 25
	defaultVideoScore = 5
)

type File struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Source string `json:"source"`
}

type Metadata struct {
	Files []File `json:"files"`
}

func isArchiveHost(u *url.URL) bool {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host == "archive.org"
}

// DetailsToDownload rewrites a /details/<id> page link to its /download/<id> form.
func DetailsToDownload(u *url.URL) (string, bool) {
	if !isArchiveHost(u) || !strings.HasPrefix(u.Path, "/details/") {
		return "", false
	}

	rest := strings.Trim(strings.TrimPrefix(u.EscapedPath(), "/details/"), "/")
	if rest == "" {
		return "", false
	}

	return "https://archive.org/download/" + rest, true
}

// ParseDownload splits a /download/<identifier>[/<path>] link.
func ParseDownload(u *url.URL) (identifier, filePath string, ok bool) {
	if !isArchiveHost(u) || !strings.HasPrefix(u.Path, "/download/") {
		return "", "", false
	}

	rest := strings.Trim(strings.TrimPrefix(u.Path, "/download/"), "/")
	identifier, filePath, _ = strings.Cut(rest, "/")
	if identifier == "" {
		return "", "", false
	}

	return identifier, filePath, true
}

func DownloadURL(identifier, filePath string) string {
	segments := strings.Split(filePath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return "https://archive.org/download/" + url.PathEscape(identifier) + "/" + strings.Join(segments, "/")
}

func MetadataURL(identifier string) string {
	return "https://archive.org/metadata/" + url.PathEscape(identifier)
}

func FetchMetadata(ctx context.Context, client *http.Client, identifier string) (*Metadata, error) {
	body, err := httpclient.Get(ctx, client, MetadataURL(identifier), maxMetadataBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item metadata: %w", err)
	}

	return ParseMetadata(body)
}

func ParseMetadata(data []byte) (*Metadata, error) {
	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to decode item metadata: %w", err)
	}

	return &metadata, nil
}

func extension(name string) string {
	return strings.ToLower(path.Ext(name))
}

func formatIsVideo(format string) bool {
	format = strings.ToLower(format)
	for _, token := range []string{"mpeg4", "h.264", "webm", "matroska", "quicktime", "video"} {
		if strings.Contains(format, token) {
			return true
		}
	}
	return false
}

func isVideo(f File) bool {
	_, ok := extensionScores[extension(f.Name)]
	return ok || formatIsVideo(f.Format)
}

func formatBonus(format string) int {
	format = strings.ToLower(format)
	switch {
	case strings.Contains(format, "h.264"), strings.Contains(format, "mpeg4"):
		return 15
	case strings.Contains(format, "webm"):
		return 5
	}
	return 0
}

// Score ranks a file for in-browser playback. An mkv original earns no name bonus.
func Score(f File, originalPath string) int {
	score, ok := extensionScores[extension(f.Name)]
	if !ok {
		score = defaultVideoScore
	}
	score += formatBonus(f.Format)

	if originalPath != "" && f.Name == originalPath && extension(originalPath) != ".mkv" {
		score += originalNameBonus
	}

	return score
}

// PickBest returns the highest scoring video file. Ties keep metadata order.
func PickBest(files []File, originalPath string) (File, error) {
	var (
		best      File
		bestScore = -1
	)
	for _, f := range files {
		if !isVideo(f) {
			continue
		}
		if score := Score(f, originalPath); score > bestScore {
			best, bestScore = f, score
		}
	}

	if bestScore < 0 {
		return File{}, ErrNoVideoFiles
	}

	return best, nil
}
