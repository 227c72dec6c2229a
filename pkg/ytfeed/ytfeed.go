package ytfeed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/sharetube/roomsync/pkg/httpclient"
)

const (
	feedURL      = "https://www.youtube.com/feeds/videos.xml?playlist_id="
	maxFeedBytes = 4 << 20
)

var (
	ErrEmptyPlaylist = errors.New("playlist feed has no entries")

	playlistIdRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{8,}$`)
	videoIdRegex    = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)
	titleSuffix     = regexp.MustCompile(`(?i)\s*[-|–]\s*(youtube|videos)\s*$`)
)

type Entry struct {
	VideoId string
	Title   string
}

type Playlist struct {
	Id      string
	Title   string
	Entries []Entry
}

// PlaylistId extracts the list parameter from a youtube link.
func PlaylistId(u *url.URL) (string, bool) {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	host = strings.TrimPrefix(host, "music.")
	if host != "youtube.com" && host != "youtu.be" && host != "youtube-nocookie.com" {
		return "", false
	}

	list := u.Query().Get("list")
	if !playlistIdRegex.MatchString(list) {
		return "", false
	}

	return list, true
}

func FeedURL(playlistId string) string {
	return feedURL + url.QueryEscape(playlistId)
}

// WatchURL builds the canonical watch link for a playlist entry.
func WatchURL(videoId, playlistId string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&list=%s", url.QueryEscape(videoId), url.QueryEscape(playlistId))
}

// CleanTitle strips the trailing site suffix youtube appends to playlist titles.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	for {
		stripped := titleSuffix.ReplaceAllString(title, "")
		if stripped == title {
			return title
		}
		title = strings.TrimSpace(stripped)
	}
}

func Fetch(ctx context.Context, client *http.Client, playlistId string) (*Playlist, error) {
	body, err := httpclient.Get(ctx, client, FeedURL(playlistId), maxFeedBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist feed: %w", err)
	}

	playlist, err := Parse(body)
	if err != nil {
		return nil, err
	}
	playlist.Id = playlistId

	return playlist, nil
}

// Parse reads an Atom playlist feed. Entries keep document order.
func Parse(data []byte) (*Playlist, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse playlist feed: %w", err)
	}

	playlist := Playlist{Title: CleanTitle(feed.Title)}
	for _, item := range feed.Items {
		videoId := entryVideoId(item)
		if videoId == "" {
			continue
		}

		playlist.Entries = append(playlist.Entries, Entry{
			VideoId: videoId,
			Title:   strings.TrimSpace(item.Title),
		})
	}

	if len(playlist.Entries) == 0 {
		return nil, ErrEmptyPlaylist
	}

	return &playlist, nil
}

func entryVideoId(item *gofeed.Item) string {
	if yt, ok := item.Extensions["yt"]; ok {
		if ids := yt["videoId"]; len(ids) > 0 && videoIdRegex.MatchString(ids[0].Value) {
			return ids[0].Value
		}
	}

	if id := strings.TrimPrefix(item.GUID, "yt:video:"); id != item.GUID && videoIdRegex.MatchString(id) {
		return id
	}

	if u, err := url.Parse(item.Link); err == nil {
		if id := u.Query().Get("v"); videoIdRegex.MatchString(id) {
			return id
		}
	}

	return ""
}
