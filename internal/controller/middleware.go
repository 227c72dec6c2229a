package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sharetube/roomsync/pkg/ctxlogger"
	"github.com/sharetube/roomsync/pkg/rest"
)

func (c controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = ctxlogger.AppendCtx(ctx, slog.String("request_id", c.generateTimeBasedId()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

// authMw resolves the caller from a bearer token, or the token query parameter for browsers
// that cannot set headers on websocket upgrades.
func (c controller) authMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "missing token"})
			return
		}

		claims, err := c.parseJWT(token)
		if err != nil {
			c.logger.InfoContext(r.Context(), "invalid token", "error", err)
			rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": ErrInvalidToken.Error()})
			return
		}

		ctx := context.WithValue(r.Context(), userIdCtxKey, claims.UserId)
		ctx = context.WithValue(ctx, communityIdCtxKey, claims.CommunityId)
		ctx = ctxlogger.AppendCtx(ctx, slog.String("user_id", claims.UserId))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
