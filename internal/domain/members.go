package domain

import "slices"

func (r *RoomState) HasParticipant(userId string) bool {
	return slices.Contains(r.ParticipantUserIds, userId)
}

// AddParticipant appends userId in join order. Returns false if already present.
func (r *RoomState) AddParticipant(userId string) bool {
	if r.HasParticipant(userId) {
		return false
	}

	r.ParticipantUserIds = append(r.ParticipantUserIds, userId)
	return true
}

// RemoveParticipant drops userId from the participant list and the sync ready list.
// Host passes to the earliest remaining participant, and a pending claim held by userId is cleared.
func (r *RoomState) RemoveParticipant(userId string) (removed, wasHost, hadClaim bool) {
	index := slices.Index(r.ParticipantUserIds, userId)
	if index == -1 {
		return false, false, false
	}

	r.ParticipantUserIds = slices.Delete(r.ParticipantUserIds, index, index+1)
	r.SetReady(userId, false)

	if r.PendingHostUserId == userId {
		r.PendingHostUserId = ""
		hadClaim = true
	}

	if r.HostUserId == userId {
		wasHost = true
		r.HostUserId = ""
		if len(r.ParticipantUserIds) > 0 {
			r.HostUserId = r.ParticipantUserIds[0]
		}
		if r.PendingHostUserId == r.HostUserId {
			r.PendingHostUserId = ""
		}
	}

	return true, wasHost, hadClaim
}

func (r *RoomState) IsHost(userId string) bool {
	return r.HostUserId != "" && r.HostUserId == userId
}

func (r *RoomState) IsEmpty() bool {
	return len(r.ParticipantUserIds) == 0
}

// SetHost transfers host to userId and clears the pending claim if it belonged to userId.
func (r *RoomState) SetHost(userId string) {
	r.HostUserId = userId
	if r.PendingHostUserId == userId {
		r.PendingHostUserId = ""
	}
}
