package httpclienttest

import (
	"net/http"
	"net/http/httptest"
)

// HandlerTransport serves requests from an http.Handler without touching the network.
type HandlerTransport struct {
	Handler http.Handler
}

func (t HandlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.Handler.ServeHTTP(rec, req)

	resp := rec.Result()
	resp.Request = req
	return resp, nil
}
