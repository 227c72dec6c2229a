package domain

import (
	"math"
	"slices"

	"golang.org/x/exp/constraints"
)

const (
	SyncModeIdle    = ""
	SyncModeGeneric = "generic"
	SyncModeYoutube = "youtube"

	// SyncLaunchDelayMs is how far ahead a launch deadline is scheduled.
	SyncLaunchDelayMs int64 = 2200
	// SyncStaleAfterMs is how long past its deadline a generic session survives.
	SyncStaleAfterMs int64 = 12000
)

// Clamp bounds v to [lo, hi]. NaN and infinities below range resolve to lo.
func Clamp[T constraints.Float](v, lo, hi T) T {
	if math.IsNaN(float64(v)) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampMin bounds v below by lo. NaN and +Inf resolve to lo.
func ClampMin[T constraints.Float](v, lo T) T {
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) || v < lo {
		return lo
	}
	return v
}

func ClampRate(rate float64) float64 {
	return Clamp(rate, MinPlaybackRate, MaxPlaybackRate)
}

func (r *RoomState) ResetSync() {
	r.SyncMode = SyncModeIdle
	r.SyncTargetSeconds = 0
	r.SyncLaunchAtMs = 0
	r.SyncReadyUserIds = []string{}
}

func (r *RoomState) SyncActive() bool {
	return r.SyncMode != SyncModeIdle
}

func (r *RoomState) IsReady(userId string) bool {
	return slices.Contains(r.SyncReadyUserIds, userId)
}

// SetReady toggles userId's membership in the ready list. Reports whether it changed.
func (r *RoomState) SetReady(userId string, ready bool) bool {
	index := slices.Index(r.SyncReadyUserIds, userId)
	switch {
	case ready && index == -1:
		r.SyncReadyUserIds = append(r.SyncReadyUserIds, userId)
		return true
	case !ready && index != -1:
		r.SyncReadyUserIds = slices.Delete(r.SyncReadyUserIds, index, index+1)
		return true
	}
	return false
}

// SyncStale reports a generic session whose launch never completed client side.
func (r *RoomState) SyncStale(nowMs int64) bool {
	return r.SyncMode == SyncModeGeneric &&
		r.SyncLaunchAtMs > 0 &&
		nowMs-r.SyncLaunchAtMs > SyncStaleAfterMs
}
