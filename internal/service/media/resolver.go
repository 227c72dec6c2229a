package media

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sharetube/roomsync/pkg/archiveorg"
	"github.com/sharetube/roomsync/pkg/gdrive"
	"github.com/sharetube/roomsync/pkg/ytfeed"
)

const (
	MaxURLLength       = 2048
	maxDisplayNameRune = 120

	nameParam = "wpName"
	sizeParam = "wpSize"
)

var (
	ErrInvalidURL = errors.New("invalid media url")
	ErrNoMedia    = errors.New("no playable media found")
)

// PlaybackError is a drive link that failed its playability probe.
type PlaybackError struct {
	StatusCode int
	Err        error
}

func (e *PlaybackError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Media URL returned HTTP %d.", e.StatusCode)
	}
	return "Could not reach media URL."
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}

type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeApplied
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	}
	return "skipped"
}

type Resolution struct {
	// URLs[0] plays now, the rest are queued in order.
	URLs          []string `json:"urls"`
	SuggestedName string   `json:"suggestedName"`
}

type Resolver struct {
	client   *http.Client
	logger   *slog.Logger
	sanitize *bluemonday.Policy
}

func NewResolver(client *http.Client, logger *slog.Logger) *Resolver {
	return &Resolver{
		client:   client,
		logger:   logger,
		sanitize: bluemonday.StrictPolicy(),
	}
}

// Validate parses raw as an absolute http(s) link.
func Validate(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > MaxURLLength {
		return nil, ErrInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidURL
	}

	return u, nil
}

// Canonicalize rewrites provider share links into their playable form without any I/O.
func Canonicalize(u *url.URL) string {
	if _, ok := gdrive.FolderId(u); !ok {
		if id, key, ok := gdrive.FileId(u); ok {
			return gdrive.DirectURL(id, key)
		}
	}

	if download, ok := archiveorg.DetailsToDownload(u); ok {
		return download
	}

	return u.String()
}

// Resolve turns one user supplied link into playable urls.
// Optional steps that fail leave the best url known so far in place.
func (r *Resolver) Resolve(ctx context.Context, raw string) (Resolution, error) {
	u, err := Validate(raw)
	if err != nil {
		return Resolution{}, err
	}

	if playlistId, ok := ytfeed.PlaylistId(u); ok {
		return r.expandPlaylist(ctx, playlistId)
	}

	if folderId, ok := gdrive.FolderId(u); ok {
		res, err := r.expandFolder(ctx, folderId)
		if err != nil {
			return Resolution{}, err
		}
		return r.finish(ctx, res)
	}

	canonical := Canonicalize(u)
	if preferred, outcome := r.preferArchive(ctx, canonical); outcome == OutcomeApplied {
		canonical = preferred
	}

	return r.finish(ctx, Resolution{URLs: []string{canonical}})
}

func (r *Resolver) expandPlaylist(ctx context.Context, playlistId string) (Resolution, error) {
	playlist, err := ytfeed.Fetch(ctx, r.client, playlistId)
	if err != nil {
		r.logger.InfoContext(ctx, "playlist expansion failed", "playlist_id", playlistId, "error", err)
		return Resolution{}, fmt.Errorf("%w: %w", ErrNoMedia, err)
	}

	res := Resolution{SuggestedName: r.displayName(playlist.Title)}
	for _, entry := range playlist.Entries {
		res.URLs = append(res.URLs, annotate(ytfeed.WatchURL(entry.VideoId, playlistId), nameParam, r.displayName(entry.Title)))
	}

	return res, nil
}

func (r *Resolver) expandFolder(ctx context.Context, folderId string) (Resolution, error) {
	folder, err := gdrive.FetchFolder(ctx, r.client, folderId)
	if err != nil {
		r.logger.InfoContext(ctx, "folder expansion failed", "folder_id", folderId, "error", err)
		return Resolution{}, fmt.Errorf("%w: %w", ErrNoMedia, err)
	}

	res := Resolution{SuggestedName: r.displayName(folder.Title)}
	for _, file := range folder.Files {
		res.URLs = append(res.URLs, annotate(gdrive.DirectURL(file.Id, ""), nameParam, r.displayName(file.Name)))
	}

	return res, nil
}

func (r *Resolver) preferArchive(ctx context.Context, raw string) (string, Outcome) {
	u, err := url.Parse(raw)
	if err != nil {
		return raw, OutcomeSkipped
	}

	identifier, filePath, ok := archiveorg.ParseDownload(u)
	if !ok {
		return raw, OutcomeSkipped
	}

	metadata, err := archiveorg.FetchMetadata(ctx, r.client, identifier)
	if err != nil {
		r.logger.DebugContext(ctx, "archive metadata unavailable", "identifier", identifier, "error", err)
		return raw, OutcomeFailed
	}

	best, err := archiveorg.PickBest(metadata.Files, filePath)
	if err != nil {
		r.logger.DebugContext(ctx, "archive item has no video", "identifier", identifier)
		return raw, OutcomeSkipped
	}

	return archiveorg.DownloadURL(identifier, best.Name), OutcomeApplied
}

// finish probes drive links. The first one must be playable, the rest are only enriched.
func (r *Resolver) finish(ctx context.Context, res Resolution) (Resolution, error) {
	if len(res.URLs) == 0 {
		return Resolution{}, ErrNoMedia
	}

	for i, raw := range res.URLs {
		if !gdrive.IsDirectURL(raw) {
			continue
		}

		probe, err := gdrive.Probe(ctx, r.client, raw)
		if i == 0 {
			if err != nil {
				return Resolution{}, &PlaybackError{Err: err}
			}
			if !probe.OK() {
				return Resolution{}, &PlaybackError{StatusCode: probe.StatusCode}
			}
		}

		enriched, outcome := r.enrich(raw, probe, err)
		r.logger.DebugContext(ctx, "drive probe", "url", raw, "outcome", outcome.String())
		res.URLs[i] = enriched
	}

	return res, nil
}

func (r *Resolver) enrich(raw string, probe *gdrive.ProbeResult, probeErr error) (string, Outcome) {
	if probeErr != nil || !probe.OK() || probe.IsHTML() {
		return raw, OutcomeSkipped
	}

	if probe.Size > 0 {
		raw = annotate(raw, sizeParam, strconv.FormatInt(probe.Size, 10))
	}
	if name := r.displayName(probe.FileName); name != "" {
		raw = annotate(raw, nameParam, name)
	}

	return raw, OutcomeApplied
}

// displayName strips markup and entities and caps the length.
func (r *Resolver) displayName(s string) string {
	s = html.UnescapeString(r.sanitize.Sanitize(s))
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxDisplayNameRune {
		s = strings.TrimSpace(string(runes[:maxDisplayNameRune]))
	}

	return s
}

// annotate sets one query parameter, keeping the existing parameter order.
func annotate(raw, key, value string) string {
	if value == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	kept := make([]string, 0)
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		if name, _, _ := strings.Cut(pair, "="); name == key {
			continue
		}
		kept = append(kept, pair)
	}
	kept = append(kept, key+"="+url.QueryEscape(value))
	u.RawQuery = strings.Join(kept, "&")

	return u.String()
}
