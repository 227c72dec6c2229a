package wsrouter

import (
	"context"
	"errors"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seekInput struct {
	AtSeconds float64 `json:"atSeconds"`
}

func TestDispatchDecodesPayload(t *testing.T) {
	r := New()

	var got seekInput
	var gotType string
	Handle(r, "SEEK", func(ctx context.Context, _ *websocket.Conn, input seekInput) error {
		got = input
		gotType = GetMessageTypeFromCtx(ctx)
		return nil
	})

	require.NoError(t, r.Dispatch(context.Background(), nil, []byte(`{"type":"SEEK","payload":{"atSeconds":12.5}}`)))
	assert.Equal(t, 12.5, got.AtSeconds)
	assert.Equal(t, "SEEK", gotType)

	got = seekInput{AtSeconds: 1}
	require.NoError(t, r.Dispatch(context.Background(), nil, []byte(`{"type":"SEEK"}`)))
	assert.Zero(t, got.AtSeconds)
}

func TestDispatchErrors(t *testing.T) {
	r := New()
	Handle(r, "SEEK", func(context.Context, *websocket.Conn, seekInput) error {
		return errors.New("boom")
	})

	ctx := context.Background()
	assert.ErrorIs(t, r.Dispatch(ctx, nil, []byte(`not json`)), ErrInvalidMessage)
	assert.ErrorIs(t, r.Dispatch(ctx, nil, []byte(`{"payload":{}}`)), ErrInvalidMessage)
	assert.ErrorIs(t, r.Dispatch(ctx, nil, []byte(`{"type":"NOPE"}`)), ErrUnknownType)
	assert.ErrorIs(t, r.Dispatch(ctx, nil, []byte(`{"type":"SEEK","payload":{"atSeconds":"x"}}`)), ErrInvalidPayload)
	assert.EqualError(t, r.Dispatch(ctx, nil, []byte(`{"type":"SEEK","payload":{}}`)), "boom")
}

func TestMiddlewareOrder(t *testing.T) {
	r := New()

	var calls []string
	mw := func(name string) Middleware {
		return func(next HandlerFunc[any]) HandlerFunc[any] {
			return func(ctx context.Context, conn *websocket.Conn, payload any) error {
				calls = append(calls, name)
				return next(ctx, conn, payload)
			}
		}
	}
	r.Use(mw("outer"), mw("inner"))
	Handle(r, "PING", func(context.Context, *websocket.Conn, struct{}) error {
		calls = append(calls, "handler")
		return nil
	})

	require.NoError(t, r.Dispatch(context.Background(), nil, []byte(`{"type":"PING"}`)))
	assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
}
