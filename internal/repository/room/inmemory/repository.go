package inmemory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sharetube/roomsync/internal/domain"
	"github.com/sharetube/roomsync/internal/repository/room"
)

type entry struct {
	mu      sync.Mutex
	handle  room.Handle
	removed bool
}

type repo struct {
	rooms  map[string]*entry
	mu     sync.RWMutex
	logger *slog.Logger
	now    func() time.Time
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		rooms:  make(map[string]*entry),
		logger: logger,
		now:    time.Now,
	}
}

func (r *repo) lookup(roomId string, create bool) (*entry, bool) {
	r.mu.RLock()
	e, ok := r.rooms[roomId]
	r.mu.RUnlock()
	if ok || !create {
		return e, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.rooms[roomId]; ok {
		return e, false
	}

	e = &entry{
		handle: room.Handle{
			State:     domain.NewRoomState(roomId, r.now().UnixMilli()),
			Positions: make(map[string]float64),
		},
	}
	r.rooms[roomId] = e
	return e, true
}

// Update runs fn with the room locked, creating the room if it does not exist.
// A room left without participants is deleted together with its readiness map.
func (r *repo) Update(ctx context.Context, roomId string, fn room.UpdateFunc) error {
	return r.update(ctx, roomId, true, fn)
}

// UpdateExisting is Update without the implicit creation.
func (r *repo) UpdateExisting(ctx context.Context, roomId string, fn room.UpdateFunc) error {
	return r.update(ctx, roomId, false, fn)
}

func (r *repo) update(ctx context.Context, roomId string, create bool, fn room.UpdateFunc) error {
	funcName := "room.inmemory.update"

	for {
		e, created := r.lookup(roomId, create)
		if e == nil {
			r.logger.DebugContext(ctx, funcName, "room_id", roomId, "error", room.ErrRoomNotFound)
			return room.ErrRoomNotFound
		}

		e.mu.Lock()
		// lost a race with deletion, start over on a fresh entry
		if e.removed {
			e.mu.Unlock()
			continue
		}

		e.handle.Created = created
		err := fn(&e.handle)
		e.handle.Created = false

		if e.handle.State.IsEmpty() {
			e.removed = true
			r.mu.Lock()
			if r.rooms[roomId] == e {
				delete(r.rooms, roomId)
			}
			r.mu.Unlock()
			r.logger.DebugContext(ctx, funcName, "room_id", roomId, "result", "room deleted")
		}
		e.mu.Unlock()

		return err
	}
}

func (r *repo) entries() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*entry, 0, len(r.rooms))
	for _, e := range r.rooms {
		list = append(list, e)
	}
	return list
}

// Snapshot returns copies of every room with participants, deleting empty ones.
func (r *repo) Snapshot(ctx context.Context) []domain.RoomState {
	funcName := "room.inmemory.Snapshot"

	list := make([]domain.RoomState, 0)
	for _, e := range r.entries() {
		e.mu.Lock()
		if !e.removed {
			if e.handle.State.IsEmpty() {
				e.removed = true
				r.mu.Lock()
				if r.rooms[e.handle.State.RoomId] == e {
					delete(r.rooms, e.handle.State.RoomId)
				}
				r.mu.Unlock()
			} else {
				list = append(list, e.handle.State.Clone())
			}
		}
		e.mu.Unlock()
	}

	r.logger.DebugContext(ctx, funcName, "rooms", len(list))
	return list
}

func (r *repo) RoomIds(ctx context.Context) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	return ids
}
