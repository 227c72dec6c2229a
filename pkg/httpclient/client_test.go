package httpclient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sharetube/roomsync/pkg/httpclient/httpclienttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h http.HandlerFunc) *http.Client {
	return New(&Config{
		Timeout:   time.Second,
		Transport: httpclienttest.HandlerTransport{Handler: h},
	})
}

func TestGet(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte("hello world"))
	})

	body, err := Get(context.Background(), client, "https://example.com/x", 5)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestGetStatusError(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := Get(context.Background(), client, "https://example.com/x", 1024)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}
