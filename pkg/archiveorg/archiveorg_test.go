package archiveorg

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/sharetube/roomsync/pkg/httpclient"
	"github.com/sharetube/roomsync/pkg/httpclient/httpclienttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metadataJSON = `{
  "files": [
    {"name": "movie.mkv", "format": "Matroska", "source": "original"},
    {"name": "movie.mp4", "format": "h.264", "source": "derivative"},
    {"name": "movie.ogv", "format": "Ogg Video", "source": "derivative"},
    {"name": "movie.thumbs/movie_000001.jpg", "format": "Thumbnail"},
    {"name": "movie_meta.xml", "format": "Metadata"}
  ]
}`

func TestDetailsToDownload(t *testing.T) {
	u, _ := url.Parse("https://archive.org/details/night_of_the_living_dead")
	got, ok := DetailsToDownload(u)
	require.True(t, ok)
	assert.Equal(t, "https://archive.org/download/night_of_the_living_dead", got)

	u, _ = url.Parse("https://example.org/details/x")
	_, ok = DetailsToDownload(u)
	assert.False(t, ok)
}

func TestParseDownload(t *testing.T) {
	u, _ := url.Parse("https://archive.org/download/item1/dir/My%20File.mkv")
	id, p, ok := ParseDownload(u)
	require.True(t, ok)
	assert.Equal(t, "item1", id)
	assert.Equal(t, "dir/My File.mkv", p)
	assert.Equal(t, "https://archive.org/download/item1/dir/My%20File.mkv", DownloadURL(id, p))
}

func TestPickBest(t *testing.T) {
	metadata, err := ParseMetadata([]byte(metadataJSON))
	require.NoError(t, err)

	best, err := PickBest(metadata.Files, "")
	require.NoError(t, err)
	assert.Equal(t, "movie.mp4", best.Name)

	// an mkv original does not earn the name bonus
	best, err = PickBest(metadata.Files, "movie.mkv")
	require.NoError(t, err)
	assert.Equal(t, "movie.mp4", best.Name)

	// a referenced webm beats an mp4 without format bonus
	files := []File{{Name: "a.mp4"}, {Name: "b.webm"}}
	best, err = PickBest(files, "b.webm")
	require.NoError(t, err)
	assert.Equal(t, "b.webm", best.Name)

	_, err = PickBest([]File{{Name: "x.jpg", Format: "JPEG"}}, "")
	assert.ErrorIs(t, err, ErrNoVideoFiles)
}

func TestFetchMetadata(t *testing.T) {
	client := httpclient.New(&httpclient.Config{
		Timeout: time.Second,
		Transport: httpclienttest.HandlerTransport{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/metadata/item1", r.URL.Path)
			w.Write([]byte(metadataJSON))
		})},
	})

	metadata, err := FetchMetadata(context.Background(), client, "item1")
	require.NoError(t, err)
	assert.Len(t, metadata.Files, 5)
}
