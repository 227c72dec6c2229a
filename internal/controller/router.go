package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Group(func(r chi.Router) {
			r.Use(c.authMw)

			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", c.listRooms)
				r.Get("/{room-id}", c.getRoomState)
			})
			r.Get("/media/resolve", c.resolveMedia)
			r.Route("/subtitles", func(r chi.Router) {
				r.Get("/search", c.searchSubtitles)
				r.Get("/fetch", c.fetchSubtitle)
			})
			r.Get("/ws", c.serveWS)
		})
	})

	return r
}
