package room

import (
	"context"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/roomsync/internal/domain"
)

type StartSyncParams struct {
	Caller
	Mode string
}

// HostStartSync enters a sync session.
//
// In generic mode the host counts as ready and launches manually later.
// In youtube mode the room pauses at the slowest reported position and launches on its own.
func (s *service) HostStartSync(ctx context.Context, params *StartSyncParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		mode := strings.ToLower(strings.TrimSpace(params.Mode))
		if err := validation.Validate(mode, syncModeRule...); err != nil {
			return "", validationError(err.Error())
		}
		if err := t.requireHost(); err != nil {
			return "", err
		}

		st := t.state()
		st.ResetSync()
		st.SyncMode = mode
		st.Playing = false

		switch mode {
		case domain.SyncModeGeneric:
			st.SyncTargetSeconds = st.CurrentTimeSeconds
			st.SetReady(t.caller.SenderId, true)
		case domain.SyncModeYoutube:
			target := t.slowestPosition()
			st.SyncTargetSeconds = target
			st.CurrentTimeSeconds = target
			st.SyncLaunchAtMs = t.nowMs + domain.SyncLaunchDelayMs
		}

		t.commit(domain.ActionSyncStart)
		return "", nil
	})
}

// slowestPosition is the minimum position reported by current participants,
// or the room position when nobody reported yet.
func (t *tx) slowestPosition() float64 {
	st := t.state()

	target, found := math.Inf(1), false
	for _, userId := range st.ParticipantUserIds {
		if pos, ok := t.h.Positions[userId]; ok {
			target = min(target, pos)
			found = true
		}
	}

	if !found {
		return st.CurrentTimeSeconds
	}
	return target
}

type LaunchSyncParams struct {
	Caller
}

// HostLaunchSync schedules the simultaneous start of a generic session.
func (s *service) HostLaunchSync(ctx context.Context, params *LaunchSyncParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		if err := t.requireHost(); err != nil {
			return "", err
		}

		st := t.state()
		if st.SyncMode != domain.SyncModeGeneric {
			return "", stateError(ReasonSyncInactive)
		}

		st.SyncLaunchAtMs = t.nowMs + domain.SyncLaunchDelayMs
		t.commit(domain.ActionSyncLaunch)
		return "", nil
	})
}

type ReportSyncStatusParams struct {
	Caller
	PositionSeconds float64
	Ready           bool
}

// ReportSyncStatus records a participant's position and readiness.
// Only a readiness change is a state change.
func (s *service) ReportSyncStatus(ctx context.Context, params *ReportSyncStatusParams) Result {
	return s.mutate(ctx, params.Caller, func(t *tx) (string, error) {
		t.h.Positions[t.caller.SenderId] = domain.ClampMin(params.PositionSeconds, 0)

		st := t.state()
		if st.SyncMode != domain.SyncModeGeneric {
			return "", nil
		}

		if st.SetReady(t.caller.SenderId, params.Ready) {
			t.commit(domain.ActionSyncStatus)
		}
		return "", nil
	})
}
