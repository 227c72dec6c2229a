package room

import "github.com/sharetube/roomsync/internal/domain"

// Handle is exclusive access to a single room while an update callback runs.
type Handle struct {
	State *domain.RoomState
	// Positions holds the last self-reported playback position per participant.
	Positions map[string]float64
	Created   bool
}

func (h *Handle) RemoveParticipant(userId string) (removed, wasHost, hadClaim bool) {
	delete(h.Positions, userId)
	return h.State.RemoveParticipant(userId)
}

type UpdateFunc func(h *Handle) error
