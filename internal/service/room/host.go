package room

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/roomsync/internal/domain"
	"github.com/sharetube/roomsync/internal/repository/room"
)

type SetHostParams struct {
	Caller
	TargetUserId string
}

// SetHost transfers the host role directly. Only the current host may do it.
func (s *service) SetHost(ctx context.Context, params *SetHostParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := validation.Validate(params.TargetUserId, targetUserIdRule...); err != nil {
			return "", validationError(err.Error())
		}

		st := t.state()
		if st.HostUserId != "" && !st.IsHost(t.caller.SenderId) {
			return "", authorizationError(ReasonNotHost)
		}
		if !st.HasParticipant(params.TargetUserId) {
			return "", stateError(ReasonNotParticipant)
		}
		if st.HostUserId == params.TargetUserId {
			return "", nil
		}

		st.SetHost(params.TargetUserId)
		t.commit(domain.ActionHostSet)
		return "", nil
	})
}

type SetRoomNameParams struct {
	Caller
	RoomName string
}

func (s *service) SetRoomName(ctx context.Context, params *SetRoomNameParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		name := strings.TrimSpace(params.RoomName)
		if err := validation.Validate(name, roomNameRule...); err != nil {
			return "", validationError(err.Error())
		}

		st := t.state()
		if st.RoomName == name {
			return "", nil
		}

		st.RoomName = name
		t.commit(domain.ActionRoomRename)
		return "", nil
	})
}

type SetViewerQueuePolicyParams struct {
	Caller
	AllowViewerQueueAdd bool
}

func (s *service) SetViewerQueuePolicy(ctx context.Context, params *SetViewerQueuePolicyParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		st := t.state()
		if st.AllowViewerQueueAdd == params.AllowViewerQueueAdd {
			return "", nil
		}

		st.AllowViewerQueueAdd = params.AllowViewerQueueAdd
		t.commit(domain.ActionQueuePolicySet)
		return "", nil
	})
}

type RequestHostClaimParams struct {
	Caller
}

// RequestHostClaim asks the host to hand over control. At most one claim is pending per room.
func (s *service) RequestHostClaim(ctx context.Context, params *RequestHostClaimParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		st := t.state()
		sender := t.caller.SenderId

		switch {
		case st.IsHost(sender):
			return ReasonAlreadyHost, nil
		case st.HostUserId == "":
			st.SetHost(sender)
			t.commit(domain.ActionHostSet)
			return "", nil
		case st.PendingHostUserId == sender:
			return ReasonClaimPending, nil
		case st.PendingHostUserId != "":
			return "", stateError(ReasonClaimTaken)
		}

		st.PendingHostUserId = sender
		t.commit(domain.ActionHostClaimRequested)
		return "", nil
	})
}

type DecideHostClaimParams struct {
	Caller
	Approve bool
	// ClaimantUserId, when set, must match the pending claim.
	ClaimantUserId string
}

func (s *service) DecideHostClaim(ctx context.Context, params *DecideHostClaimParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		st := t.state()
		if st.PendingHostUserId == "" || (params.ClaimantUserId != "" && params.ClaimantUserId != st.PendingHostUserId) {
			return "", stateError(ReasonNoPendingClaim)
		}

		if params.Approve {
			st.SetHost(st.PendingHostUserId)
			t.commit(domain.ActionHostClaimApproved)
			return "", nil
		}

		st.PendingHostUserId = ""
		t.commit(domain.ActionHostClaimRejected)
		return "", nil
	})
}

type LeaveRoomParams struct {
	Caller
}

// LeaveRoom removes the caller. An emptied room is deleted.
func (s *service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) Result {
	return s.run(ctx, params.Caller, false, func(t *tx) (string, error) {
		if !t.state().HasParticipant(t.caller.SenderId) {
			return "", stateError(ReasonNotParticipant)
		}

		t.commit(leave(t.h, t.caller.SenderId))
		return "", nil
	})
}

type DisconnectUserParams struct {
	UserId      string
	CommunityId string
}

type DisconnectUserResponse struct {
	RoomIds []string `json:"roomIds"`
}

// DisconnectUser removes a user from every room it is in, for example when its transport closes.
func (s *service) DisconnectUser(ctx context.Context, params *DisconnectUserParams) DisconnectUserResponse {
	resp := DisconnectUserResponse{RoomIds: []string{}}
	if params.UserId == "" {
		return resp
	}

	for _, roomId := range s.roomRepo.RoomIds(ctx) {
		caller := Caller{RoomId: roomId, SenderId: params.UserId, CommunityId: params.CommunityId}

		err := s.roomRepo.UpdateExisting(ctx, roomId, func(h *room.Handle) error {
			if !h.State.HasParticipant(params.UserId) {
				return nil
			}

			t := &tx{ctx: ctx, s: s, h: h, caller: caller, nowMs: s.now().UnixMilli()}
			t.commit(leave(h, params.UserId))
			resp.RoomIds = append(resp.RoomIds, roomId)
			return nil
		})
		if err != nil {
			s.logger.DebugContext(ctx, "room gone during disconnect", "room_id", roomId, "error", err)
		}
	}

	return resp
}

// leave removes userId and returns the broadcast tag describing what happened to the host role.
func leave(h *room.Handle, userId string) string {
	_, wasHost, hadClaim := h.RemoveParticipant(userId)

	switch {
	case wasHost && h.State.HostUserId != "":
		return domain.ActionHostTransferred
	case wasHost:
		return domain.ActionHostLeft
	case hadClaim:
		return domain.ActionHostClaimCleared
	}

	return domain.ActionParticipantLeft
}
