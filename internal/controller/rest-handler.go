package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/roomsync/internal/service/media"
	"github.com/sharetube/roomsync/internal/service/room"
	"github.com/sharetube/roomsync/internal/service/subtitle"
	"github.com/sharetube/roomsync/pkg/rest"
)

func statusForKind(kind room.ErrorKind) int {
	switch kind {
	case room.KindValidation:
		return http.StatusBadRequest
	case room.KindAuthorization:
		return http.StatusForbidden
	case room.KindExternalFetch:
		return http.StatusBadGateway
	}
	return http.StatusConflict
}

func (c controller) listRooms(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": c.roomService.ListRooms(r.Context())})
}

// getRoomState reads a room. Like every room call it joins the caller.
func (c controller) getRoomState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := c.roomService.GetRoomState(ctx, &room.GetRoomStateParams{
		Caller: c.caller(ctx, chi.URLParam(r, "room-id")),
	})
	if !resp.Accepted {
		rest.WriteJSON(w, statusForKind(resp.Kind), rest.Envelope{"error": resp.Reason})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": resp})
}

type resolveMediaQuery struct {
	URL string `json:"url" validate:"required,max=2048"`
}

func (c controller) resolveMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := resolveMediaQuery{URL: r.URL.Query().Get("url")}
	if validationErrors, ok := c.validate.Validate(query); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	res, err := c.resolver.Resolve(ctx, query.URL)
	if err != nil {
		c.logger.InfoContext(ctx, "resolve failed", "url", query.URL, "error", err)

		var playbackErr *media.PlaybackError
		switch {
		case errors.As(err, &playbackErr):
			rest.WriteJSON(w, http.StatusBadGateway, rest.Envelope{"error": playbackErr.Error()})
		case errors.Is(err, media.ErrInvalidURL):
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": room.ReasonInvalidMediaURL})
		default:
			rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": room.ReasonNoMedia})
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": res})
}

type searchSubtitlesQuery struct {
	Query    string `json:"query" validate:"required,max=300"`
	Language string `json:"language" validate:"omitempty,max=16"`
	Season   int    `json:"season" validate:"gte=0,lte=9999"`
	Episode  int    `json:"episode" validate:"gte=0,lte=99999"`
}

func (c controller) searchSubtitles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values := r.URL.Query()

	season, err := optionalInt(values.Get("season"))
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "season must be a number"})
		return
	}
	episode, err := optionalInt(values.Get("episode"))
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "episode must be a number"})
		return
	}

	query := searchSubtitlesQuery{
		Query:    values.Get("query"),
		Language: values.Get("language"),
		Season:   season,
		Episode:  episode,
	}
	if validationErrors, ok := c.validate.Validate(query); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp := c.subtitles.Search(ctx, &subtitle.SearchParams{
		Query:    query.Query,
		Language: query.Language,
		Season:   query.Season,
		Episode:  query.Episode,
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": resp})
}

type fetchSubtitleQuery struct {
	URL string `json:"url" validate:"required,max=2048"`
}

func (c controller) fetchSubtitle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := fetchSubtitleQuery{URL: r.URL.Query().Get("url")}
	if validationErrors, ok := c.validate.Validate(query); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	sub, err := c.subtitles.Fetch(ctx, query.URL)
	if err != nil {
		c.logger.InfoContext(ctx, "subtitle fetch failed", "url", query.URL, "error", err)

		reason := "Subtitle download failed."
		var fetchErr *subtitle.FetchError
		if errors.As(err, &fetchErr) {
			reason = fetchErr.Reason
		}
		rest.WriteJSON(w, http.StatusBadGateway, rest.Envelope{"error": reason})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": sub})
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
