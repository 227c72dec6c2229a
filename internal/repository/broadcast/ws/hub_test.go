package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/sharetube/roomsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastFiltersByCommunity(t *testing.T) {
	h := NewHub(slog.Default(), 4)
	ctx := context.Background()

	a := h.Subscribe("u1", "c1")
	b := h.Subscribe("u2", "c2")

	state := *domain.NewRoomState("room-1", 0)
	state.Version = 3
	h.Broadcast(ctx, domain.ActionPlay, "u1", state, "c1")

	require.Len(t, a.C(), 1)
	assert.Empty(t, b.C())

	var out struct {
		Type    string       `json:"type"`
		Payload StatePayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(<-a.C(), &out))
	assert.Equal(t, domain.ActionPlay, out.Type)
	assert.Equal(t, "u1", out.Payload.ActorUserId)
	assert.Equal(t, "room-1", out.Payload.State.RoomId)
	assert.Equal(t, uint64(3), out.Payload.State.Version)
}

func TestDeliverDropsWhenBufferFull(t *testing.T) {
	h := NewHub(slog.Default(), 1)
	ctx := context.Background()

	slow := h.Subscribe("slow", "c1")
	fast := h.Subscribe("fast", "c1")

	h.Deliver(ctx, "c1", []byte("first"))
	<-fast.C()
	h.Deliver(ctx, "c1", []byte("second"))

	assert.Equal(t, []byte("first"), <-slow.C())
	assert.Empty(t, slow.C())
	assert.Equal(t, []byte("second"), <-fast.C())
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(slog.Default(), 1)

	sub := h.Subscribe("u1", "c1")
	other := h.Subscribe("u1", "c1")
	assert.Equal(t, 2, h.Len())

	h.Unsubscribe(other)
	assert.True(t, h.Connected("u1"))

	h.Unsubscribe(sub)
	h.Unsubscribe(sub)
	assert.Equal(t, 0, h.Len())
	assert.False(t, h.Connected("u1"))

	_, ok := <-sub.C()
	assert.False(t, ok)

	// delivering after unsubscribe must not panic
	h.Deliver(context.Background(), "c1", []byte("late"))
}
