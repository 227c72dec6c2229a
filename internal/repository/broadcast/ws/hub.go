package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/sharetube/roomsync/internal/domain"
)

const DefaultBufferSize = 32

// Output is the frame every websocket client receives.
type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type StatePayload struct {
	ActorUserId string           `json:"actorUserId"`
	State       domain.RoomState `json:"state"`
}

// Encode builds the broadcast frame for a state change.
func Encode(actionTag, actorUserId string, state domain.RoomState) ([]byte, error) {
	return json.Marshal(Output{
		Type: actionTag,
		Payload: StatePayload{
			ActorUserId: actorUserId,
			State:       state,
		},
	})
}

// Subscription is one connected client. Frames arrive on C until the hub unsubscribes it.
type Subscription struct {
	UserId      string
	CommunityId string
	ch          chan []byte
}

func (s *Subscription) C() <-chan []byte {
	return s.ch
}

type hub struct {
	subs       map[*Subscription]struct{}
	mu         sync.RWMutex
	bufferSize int
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger, bufferSize int) *hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	return &hub{
		subs:       make(map[*Subscription]struct{}),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

func (h *hub) Subscribe(userId, communityId string) *Subscription {
	sub := &Subscription{
		UserId:      userId,
		CommunityId: communityId,
		ch:          make(chan []byte, h.bufferSize),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("subscribed", "user_id", userId, "community_id", communityId)
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call twice.
func (h *hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)

	h.logger.Debug("unsubscribed", "user_id", sub.UserId, "community_id", sub.CommunityId)
}

// Connected reports whether userId still has an open subscription.
func (h *hub) Connected(userId string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if sub.UserId == userId {
			return true
		}
	}
	return false
}

func (h *hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast implements the room service gateway for a single instance.
func (h *hub) Broadcast(ctx context.Context, actionTag, actorUserId string, state domain.RoomState, communityId string) {
	msg, err := Encode(actionTag, actorUserId, state)
	if err != nil {
		h.logger.WarnContext(ctx, "encode broadcast", "action", actionTag, "error", err)
		return
	}

	h.Deliver(ctx, communityId, msg)
}

// Deliver queues msg for every subscriber of communityId.
// A subscriber whose buffer is full misses the frame instead of stalling the others.
func (h *hub) Deliver(ctx context.Context, communityId string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if sub.CommunityId != communityId {
			continue
		}

		select {
		case sub.ch <- msg:
		default:
			h.logger.WarnContext(ctx, "subscriber buffer full, frame dropped",
				"user_id", sub.UserId,
				"community_id", communityId,
			)
		}
	}
}
