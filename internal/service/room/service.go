package room

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/roomsync/internal/domain"
	"github.com/sharetube/roomsync/internal/repository/room"
	"github.com/sharetube/roomsync/internal/service/media"
	"github.com/sharetube/roomsync/internal/service/subtitle"
)

type iRoomRepo interface {
	Update(ctx context.Context, roomId string, fn room.UpdateFunc) error
	UpdateExisting(ctx context.Context, roomId string, fn room.UpdateFunc) error
	Snapshot(ctx context.Context) []domain.RoomState
	RoomIds(ctx context.Context) []string
}

type iResolver interface {
	Resolve(ctx context.Context, raw string) (media.Resolution, error)
}

type iSubtitleFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*subtitle.Subtitle, error)
}

// iGateway fans state changes out to subscribers. Implementations must not block.
type iGateway interface {
	Broadcast(ctx context.Context, actionTag, actorUserId string, state domain.RoomState, communityId string)
}

type Config struct {
	PlaylistLimit int
	// Now overrides the wall clock, used by tests.
	Now func() time.Time
}

type service struct {
	roomRepo      iRoomRepo
	resolver      iResolver
	subtitles     iSubtitleFetcher
	gateway       iGateway
	logger        *slog.Logger
	now           func() time.Time
	playlistLimit int
}

func NewService(roomRepo iRoomRepo, resolver iResolver, subtitles iSubtitleFetcher, gateway iGateway, logger *slog.Logger, cfg *Config) *service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		roomRepo:      roomRepo,
		resolver:      resolver,
		subtitles:     subtitles,
		gateway:       gateway,
		logger:        logger,
		now:           now,
		playlistLimit: cfg.PlaylistLimit,
	}
}

// Caller identifies who acts on which room. Identity is verified upstream.
type Caller struct {
	RoomId      string
	SenderId    string
	CommunityId string
}

type Result struct {
	Accepted bool             `json:"accepted"`
	Reason   string           `json:"reason"`
	Kind     ErrorKind        `json:"kind,omitempty"`
	State    domain.RoomState `json:"state"`
}

// tx is one action applied to a locked room.
type tx struct {
	ctx    context.Context
	s      *service
	h      *room.Handle
	caller Caller
	nowMs  int64
}

func (t *tx) state() *domain.RoomState {
	return t.h.State
}

// commit records an accepted change and broadcasts the new state.
func (t *tx) commit(actionTag string) {
	t.h.State.Touch(t.nowMs)
	t.s.gateway.Broadcast(t.ctx, actionTag, t.caller.SenderId, t.h.State.Clone(), t.caller.CommunityId)
}

func (t *tx) requireHost() error {
	if !t.state().IsHost(t.caller.SenderId) {
		return authorizationError(ReasonNotHost)
	}
	return nil
}

// join adds the caller to the room and hands it the host role when nobody holds it.
func (t *tx) join() {
	st := t.state()
	joined := st.AddParticipant(t.caller.SenderId)

	hostAssigned := false
	if st.HostUserId == "" {
		st.SetHost(t.caller.SenderId)
		hostAssigned = true
	}

	switch {
	case joined:
		t.commit(domain.ActionParticipantJoin)
	case hostAssigned:
		t.commit(domain.ActionHostSet)
	}
}

// recoverStaleSync clears a generic sync session whose launch never completed.
func (t *tx) recoverStaleSync() {
	if t.state().SyncStale(t.nowMs) {
		t.state().ResetSync()
		t.commit(domain.ActionSyncCleared)
	}
}

func normalizeRoomId(roomId string) (string, error) {
	roomId = strings.TrimSpace(roomId)
	if runes := []rune(roomId); len(runes) > domain.RoomIdMaxLength {
		roomId = string(runes[:domain.RoomIdMaxLength])
	}

	if err := validation.Validate(roomId, roomIdRule...); err != nil {
		return "", validationError(err.Error())
	}

	return roomId, nil
}

type actionFunc func(t *tx) (reason string, err error)

// mutate runs action on the caller's room: get-or-create, join, then the action itself.
func (s *service) mutate(ctx context.Context, caller Caller, action actionFunc) Result {
	return s.run(ctx, caller, true, action)
}

func (s *service) run(ctx context.Context, caller Caller, join bool, action actionFunc) Result {
	roomId, err := normalizeRoomId(caller.RoomId)
	if err != nil {
		return s.reject(ctx, caller, err, domain.RoomState{})
	}
	caller.RoomId = roomId

	if caller.SenderId == "" {
		return s.reject(ctx, caller, validationError(ReasonUserIdRequired), domain.RoomState{})
	}

	var (
		reason string
		state  domain.RoomState
	)
	update := s.roomRepo.Update
	if !join {
		update = s.roomRepo.UpdateExisting
	}

	err = update(ctx, roomId, func(h *room.Handle) error {
		t := &tx{
			ctx:    ctx,
			s:      s,
			h:      h,
			caller: caller,
			nowMs:  s.now().UnixMilli(),
		}

		if join {
			t.join()
		}
		t.recoverStaleSync()

		var actionErr error
		reason, actionErr = action(t)
		state = h.State.Clone()
		return actionErr
	})
	if errors.Is(err, room.ErrRoomNotFound) {
		err = stateError(ReasonRoomNotFound)
	}
	if err != nil {
		return s.reject(ctx, caller, err, state)
	}

	return Result{Accepted: true, Reason: reason, State: state}
}

func (s *service) reject(ctx context.Context, caller Caller, err error, state domain.RoomState) Result {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindState, Reason: ReasonInternal, Err: err}
	}

	s.logger.InfoContext(ctx, "action rejected",
		"room_id", caller.RoomId,
		"user_id", caller.SenderId,
		"kind", e.Kind,
		"reason", e.Reason,
		"error", e.Err,
	)

	return Result{Accepted: false, Reason: e.Reason, Kind: e.Kind, State: state}
}
