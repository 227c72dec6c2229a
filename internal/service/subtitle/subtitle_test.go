package subtitle

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/sharetube/roomsync/pkg/httpclient"
	"github.com/sharetube/roomsync/pkg/httpclient/httpclienttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeReleaseName(t *testing.T) {
	q := Normalize("Show.Name.S01E02.1080p.WEBRip.x264-GROUP", 0, 0)
	assert.True(t, q.TVSeries)
	assert.Equal(t, 1, q.Season)
	assert.Equal(t, 2, q.Episode)
	assert.Equal(t, "Show Name", q.Base)
}

func TestNormalizeAnimeEpisode(t *testing.T) {
	q := Normalize("[SubGroup] Frieren (2023) 12 [1080p]", 0, 0)
	assert.True(t, q.TVSeries)
	assert.Equal(t, 0, q.Season)
	assert.Equal(t, 12, q.Episode)
	assert.Equal(t, "Frieren", q.Base)
}

func TestNormalizeKeepsSuppliedEpisode(t *testing.T) {
	q := Normalize("Show%20Name%20S03E04", 1, 9)
	assert.True(t, q.TVSeries)
	assert.Equal(t, 1, q.Season)
	assert.Equal(t, 9, q.Episode)
	assert.Equal(t, "Show Name", q.Base)
}

func TestNormalizeMovie(t *testing.T) {
	q := Normalize("Blade_Runner (1982) {Final Cut} BluRay", 0, 0)
	assert.False(t, q.TVSeries)
	assert.Equal(t, "Blade Runner 1982", q.Base)
}

func TestVariants(t *testing.T) {
	variants := Variants("The Lord of the Rings 2001 Extended")
	assert.Equal(t, []string{
		"The Lord of the Rings 2001 Extended",
		"The Lord of the Rings Extended",
		"The Lord of the",
		"The Lord of",
		"The Lord",
		"Lord of Rings 2001",
	}, variants)

	assert.Empty(t, Variants("ab"))
	assert.LessOrEqual(t, len(Variants("a b c d e f g h 1999")), maxVariants)
}

func TestLanguageCode(t *testing.T) {
	assert.Equal(t, "eng", LanguageCode(""))
	assert.Equal(t, "spa", LanguageCode("es"))
	assert.Equal(t, "ger", LanguageCode("German"))
	assert.Equal(t, "fre", LanguageCode("fre"))
	assert.Equal(t, "all", LanguageCode("*"))
	assert.Equal(t, "all", LanguageCode("ALL"))
	assert.Equal(t, "eng", LanguageCode("klingon"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100, Similarity("Show Name", "show.name.s01e02.srt"))
	assert.Equal(t, 50, Similarity("Show Name", "Show Other"))
	assert.Equal(t, 0, Similarity("", "anything"))
}

func rssFeed(items ...[2]string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>results</title>`)
	for _, item := range items {
		b.WriteString(`<item><title>` + item[0] + `</title><link>https://example.com/page</link><enclosure url="` + item[1] + `" type="application/zip" length="1"/></item>`)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func newTestService(h http.HandlerFunc) *Service {
	client := httpclient.New(&httpclient.Config{
		Timeout:   time.Second,
		Transport: httpclienttest.HandlerTransport{Handler: h},
	})
	return NewService(client, slog.Default(), &Config{BaseURL: "https://subs.test"})
}

func TestSearch(t *testing.T) {
	var paths []string
	s := newTestService(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.Contains(r.URL.Path, "searchonlytvseries-on") {
			w.Write([]byte(rssFeed(
				[2]string{"Other Thing S01E02", "https://subs.test/dl/2"},
				[2]string{"Show Name S01E02", "https://subs.test/dl/1"},
			)))
			return
		}
		w.Write([]byte(rssFeed([2]string{"Show Name S01E02", "https://subs.test/dl/1"})))
	})

	resp := s.Search(context.Background(), &SearchParams{Query: "Show.Name.S01E02.720p.HDTV", Language: "en"})
	require.Empty(t, resp.Error)
	assert.True(t, resp.TVSeries)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, Result{Title: "Show Name S01E02", URL: "https://subs.test/dl/1", Score: 100}, resp.Results[0])
	assert.Equal(t, 0, resp.Results[1].Score)

	require.Len(t, paths, 2)
	assert.Equal(t, "/en/search/sublanguageid-eng/searchonlytvseries-on/season-1/episode-2/moviename-Show Name/rss_2_00", paths[0])
	assert.Equal(t, "/en/search/sublanguageid-eng/searchonlymovies-on/moviename-Show Name/rss_2_00", paths[1])
}

func TestSearchStopsAtTwelve(t *testing.T) {
	calls := 0
	s := newTestService(func(w http.ResponseWriter, r *http.Request) {
		calls++
		items := make([][2]string, 0, 20)
		for i := 0; i < 20; i++ {
			items = append(items, [2]string{"Movie", "https://subs.test/dl/" + string(rune('a'+i))})
		}
		w.Write([]byte(rssFeed(items...)))
	})

	resp := s.Search(context.Background(), &SearchParams{Query: "Some Long Movie Title 1999"})
	assert.Len(t, resp.Results, maxResults)
	assert.Equal(t, 1, calls)
}

func TestSearchFailure(t *testing.T) {
	s := newTestService(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	resp := s.Search(context.Background(), &SearchParams{Query: "Anything Here"})
	assert.NotEmpty(t, resp.Error)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

const srtBody = "1\r\n00:00:01,000 --> 00:00:02,500\r\nHello\r\n\r\n2\r\n00:00:03,000 --> 00:00:04,000\r\nWorld\r\n"

func zipArchive(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"readme.nfo", "movie.srt", "movie.vtt", "subs/"} {
		body, ok := entries[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		w.Write([]byte(body))
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFetchZipPrefersVTT(t *testing.T) {
	archive := zipArchive(t, map[string]string{
		"readme.nfo": "nothing",
		"movie.srt":  srtBody,
		"movie.vtt":  "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nFrom vtt\n",
		"subs/":      "",
	})
	s := newTestService(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})

	sub, err := s.Fetch(context.Background(), "https://subs.test/dl/1")
	require.NoError(t, err)
	assert.Equal(t, "movie", sub.Label)
	assert.Contains(t, sub.VttText, "From vtt")
}

func TestFetchZipWithoutSubtitles(t *testing.T) {
	archive := zipArchive(t, map[string]string{"readme.nfo": "nothing"})
	s := newTestService(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})

	_, err := s.Fetch(context.Background(), "https://subs.test/dl/1")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, ErrNoSubtitleEntry)
}

func TestFetchGzipSRT(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(srtBody))
	require.NoError(t, zw.Close())

	s := newTestService(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	})

	sub, err := s.Fetch(context.Background(), "https://subs.test/dl/episode.srt.gz")
	require.NoError(t, err)
	assert.Equal(t, "WEBVTT\n\n1\n00:00:01.000 --> 00:00:02.500\nHello\n\n2\n00:00:03.000 --> 00:00:04.000\nWorld\n", sub.VttText)
}

func TestFetchInvalidURL(t *testing.T) {
	s := newTestService(func(w http.ResponseWriter, r *http.Request) {})

	_, err := s.Fetch(context.Background(), "file:///etc/passwd")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "Invalid subtitle URL.", fetchErr.Reason)
}

func TestDecodeWindows1252(t *testing.T) {
	data := []byte("1\r\n00:00:01,000 --> 00:00:02,000\r\nHe said \x93hi\x94 at the caf\xe9\r\n")

	text := Decode(data)
	assert.Contains(t, text, "“hi”")
	assert.Contains(t, text, "café")
}

func TestDecodeUTF8Passthrough(t *testing.T) {
	assert.Equal(t, "héllo", Decode([]byte("\xef\xbb\xbfhéllo")))
}
