package ytfeed

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

const playlistFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
 <link rel="self" href="http://www.youtube.com/feeds/videos.xml?playlist_id=PLabcdefgh"/>
 <id>yt:playlist:PLabcdefgh</id>
 <yt:playlistId>PLabcdefgh</yt:playlistId>
 <title>Tom &amp; Jerry Classics - YouTube</title>
 <entry>
  <id>yt:video:aaaaaaaaaaa</id>
  <yt:videoId>aaaaaaaaaaa</yt:videoId>
  <title>Episode 1 &amp; more</title>
  <link rel="alternate" href="https://www.youtube.com/watch?v=aaaaaaaaaaa"/>
 </entry>
 <entry>
  <id>yt:video:bbbbbbbbbbb</id>
  <title>Episode 2</title>
  <link rel="alternate" href="https://www.youtube.com/watch?v=bbbbbbbbbbb"/>
 </entry>
</feed>`

const emptyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>Nothing</title></feed>`

func TestParse(t *testing.T) {
	playlist, err := Parse([]byte(playlistFeed))
	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry Classics", playlist.Title)
	require.Len(t, playlist.Entries, 2)
	assert.Equal(t, Entry{VideoId: "aaaaaaaaaaa", Title: "Episode 1 & more"}, playlist.Entries[0])
	assert.Equal(t, "bbbbbbbbbbb", playlist.Entries[1].VideoId)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse([]byte(emptyFeed))
	assert.ErrorIs(t, err, ErrEmptyPlaylist)
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "Uploads", CleanTitle("Uploads - Videos - YouTube"))
	assert.Equal(t, "Mix", CleanTitle("  Mix | YouTube "))
	assert.Equal(t, "YouTube Rewind", CleanTitle("YouTube Rewind"))
}

func TestPlaylistId(t *testing.T) {
	u, _ := url.Parse("https://www.youtube.com/playlist?list=PLabcdefgh")
	id, ok := PlaylistId(u)
	assert.True(t, ok)
	assert.Equal(t, "PLabcdefgh", id)

	u, _ = url.Parse("https://www.youtube.com/watch?v=x&list=short")
	_, ok = PlaylistId(u)
	assert.False(t, ok)

	u, _ = url.Parse("https://example.com/watch?list=PLabcdefgh")
	_, ok = PlaylistId(u)
	assert.False(t, ok)
}

func TestFetch(t *testing.T) {
	client := httpclient.New(&httpclient.Config{
		Timeout: time.Second,
		Transport: httpclienttest.HandlerTransport{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "PLabcdefgh", r.URL.Query().Get("playlist_id"))
			w.Write([]byte(playlistFeed))
		})},
	})

	playlist, err := Fetch(context.Background(), client, "PLabcdefgh")
	require.NoError(t, err)
	assert.Equal(t, "PLabcdefgh", playlist.Id)
	assert.Len(t, playlist.Entries, 2)
	assert.Equal(t, "https://www.youtube.com/watch?v=aaaaaaaaaaa&list=PLabcdefgh", WatchURL("aaaaaaaaaaa", playlist.Id))
}
