package subtitle

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/sharetube/roomsync/pkg/httpclient"
)

const (
	DefaultBaseURL = "https://www.opensubtitles.org"

	maxResults   = 12
	maxFeedBytes = 4 << 20
)

type Config struct {
	BaseURL string
}

type Service struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

func NewService(client *http.Client, logger *slog.Logger, cfg *Config) *Service {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Service{
		client:  client,
		logger:  logger,
		baseURL: baseURL,
	}
}

type SearchParams struct {
	Query    string
	Language string
	Season   int
	Episode  int
}

type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
}

type SearchResponse struct {
	Query    string   `json:"query"`
	TVSeries bool     `json:"tvSeries"`
	Season   int      `json:"season"`
	Episode  int      `json:"episode"`
	Results  []Result `json:"results"`
	Error    string   `json:"error,omitempty"`
}

func (s *Service) seriesPath(lang, query string, season, episode int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/en/search/sublanguageid-%s/searchonlytvseries-on", s.baseURL, lang)
	if season > 0 {
		fmt.Fprintf(&b, "/season-%d", season)
	}
	if episode > 0 {
		fmt.Fprintf(&b, "/episode-%d", episode)
	}
	fmt.Fprintf(&b, "/moviename-%s/rss_2_00", url.PathEscape(query))
	return b.String()
}

func (s *Service) moviePath(lang, query string) string {
	return fmt.Sprintf("%s/en/search/sublanguageid-%s/searchonlymovies-on/moviename-%s/rss_2_00", s.baseURL, lang, url.PathEscape(query))
}

// Search runs every query variant against the provider feed and ranks the results.
// Failures never escape, they come back as an empty result with Error set.
func (s *Service) Search(ctx context.Context, params *SearchParams) SearchResponse {
	q := Normalize(params.Query, params.Season, params.Episode)
	lang := LanguageCode(params.Language)

	resp := SearchResponse{
		Query:    q.Base,
		TVSeries: q.TVSeries,
		Season:   q.Season,
		Episode:  q.Episode,
		Results:  []Result{},
	}

	variants := Variants(q.Base)
	if len(variants) == 0 {
		resp.Error = "Search query is too short."
		return resp
	}

	seen := make(map[string]struct{})
	results := make([]Result, 0, maxResults)

scan:
	for _, variant := range variants {
		paths := []string{s.moviePath(lang, variant), s.seriesPath(lang, variant, q.Season, q.Episode)}
		if q.TVSeries {
			paths[0], paths[1] = paths[1], paths[0]
		}

		for _, path := range paths {
			items, err := s.fetchFeed(ctx, path)
			if err != nil {
				s.logger.InfoContext(ctx, "subtitle search failed", "path", path, "error", err)
				resp.Error = "Subtitle search failed."
				return resp
			}

			for _, item := range items {
				if _, ok := seen[item.URL]; ok {
					continue
				}
				seen[item.URL] = struct{}{}

				item.Score = Similarity(q.Base, item.Title)
				results = append(results, item)
				if len(results) == maxResults {
					break scan
				}
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	resp.Results = results

	return resp
}

func (s *Service) fetchFeed(ctx context.Context, path string) ([]Result, error) {
	body, err := httpclient.Get(ctx, s.client, path, maxFeedBytes)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Result, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := item.Link
		if len(item.Enclosures) > 0 && item.Enclosures[0].URL != "" {
			link = item.Enclosures[0].URL
		}
		if link == "" {
			continue
		}

		items = append(items, Result{
			Title: strings.TrimSpace(item.Title),
			URL:   link,
		})
	}

	return items, nil
}
