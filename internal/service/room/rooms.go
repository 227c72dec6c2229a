package room

import (
	"context"
	"sort"

	"github.com/sharetube/roomsync/internal/domain"
)

type GetRoomStateParams struct {
	Caller
}

type GetRoomStateResponse struct {
	Result
	ServerTimeMs int64 `json:"serverTimeMs"`
}

// GetRoomState reads a room. Reading joins the caller, so an unhosted room gets a host here too.
func (s *service) GetRoomState(ctx context.Context, params *GetRoomStateParams) GetRoomStateResponse {
	result := s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		return "", nil
	})

	return GetRoomStateResponse{
		Result:       result,
		ServerTimeMs: s.now().UnixMilli(),
	}
}

type ListRoomsResponse struct {
	Rooms []domain.RoomSummary `json:"rooms"`
}

// ListRooms returns every populated room, most recently changed first.
func (s *service) ListRooms(ctx context.Context) ListRoomsResponse {
	states := s.roomRepo.Snapshot(ctx)
	sort.Slice(states, func(i, j int) bool {
		if states[i].Version != states[j].Version {
			return states[i].Version > states[j].Version
		}
		return states[i].RoomId < states[j].RoomId
	})

	rooms := make([]domain.RoomSummary, 0, len(states))
	for i := range states {
		rooms = append(rooms, states[i].Summary())
	}

	return ListRoomsResponse{Rooms: rooms}
}
