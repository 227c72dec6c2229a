package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceThenPreviousRestoresQueue(t *testing.T) {
	r := NewRoomState("room", 1)
	r.AddParticipant("host")
	r.SetHost("host")
	r.SetMedia("https://example.com/m.mp4", "u1", true)
	r.Append([]string{"https://example.com/a.mp4", "https://example.com/b.mp4"}, "u2")

	require.NoError(t, r.Advance(true))
	assert.Equal(t, "https://example.com/a.mp4", r.MediaUrl)
	assert.Equal(t, "u2", r.CurrentMediaAddedByUserId)
	assert.Equal(t, []string{"https://example.com/m.mp4"}, r.PlaylistHistoryUrls)
	assert.Equal(t, []string{"u1"}, r.PlaylistHistoryAddedByUserIds)

	require.NoError(t, r.Previous(false))
	assert.Equal(t, "https://example.com/m.mp4", r.MediaUrl)
	assert.Equal(t, "u1", r.CurrentMediaAddedByUserId)
	assert.False(t, r.Playing)
	assert.Equal(t, []string{"https://example.com/a.mp4", "https://example.com/b.mp4"}, r.PlaylistUrls)
	assert.Equal(t, []string{"u2", "u2"}, r.PlaylistAddedByUserIds)
	assert.Empty(t, r.PlaylistHistoryUrls)
}

func TestAdvanceUntaggedMediaDefaultsToHost(t *testing.T) {
	r := NewRoomState("room", 1)
	r.AddParticipant("host")
	r.SetHost("host")
	r.MediaUrl = "https://example.com/m.mp4"
	r.Append([]string{"https://example.com/a.mp4"}, "host")

	require.NoError(t, r.Advance(false))
	assert.Equal(t, []string{"host"}, r.PlaylistHistoryAddedByUserIds)
}

func TestAdvanceEmptyQueue(t *testing.T) {
	r := NewRoomState("room", 1)
	assert.ErrorIs(t, r.Advance(true), ErrQueueEmpty)
	assert.ErrorIs(t, r.Previous(true), ErrHistoryEmpty)
}

func TestMoveQueueItem(t *testing.T) {
	r := NewRoomState("room", 1)
	r.Append([]string{"a", "b", "c"}, "u1")
	r.InsertNext([]string{"x"}, "u2")

	require.NoError(t, r.MoveQueueItem(0, 3))
	assert.Equal(t, []string{"a", "b", "c", "x"}, r.PlaylistUrls)
	assert.Equal(t, []string{"u1", "u1", "u1", "u2"}, r.PlaylistAddedByUserIds)

	assert.ErrorIs(t, r.MoveQueueItem(0, 4), ErrQueueIndexOutOfRange)
	assert.ErrorIs(t, r.RemoveQueueItem(-1), ErrQueueIndexOutOfRange)
}

func TestRemoveParticipantReassignsHost(t *testing.T) {
	r := NewRoomState("room", 1)
	r.AddParticipant("a")
	r.AddParticipant("b")
	r.AddParticipant("c")
	r.SetHost("a")
	r.PendingHostUserId = "b"
	r.SetReady("a", true)

	removed, wasHost, hadClaim := r.RemoveParticipant("a")
	assert.True(t, removed)
	assert.True(t, wasHost)
	assert.False(t, hadClaim)
	assert.Equal(t, "b", r.HostUserId)
	assert.Empty(t, r.PendingHostUserId)
	assert.Empty(t, r.SyncReadyUserIds)

	removed, _, _ = r.RemoveParticipant("zzz")
	assert.False(t, removed)

	r.RemoveParticipant("b")
	r.RemoveParticipant("c")
	assert.Empty(t, r.HostUserId)
	assert.True(t, r.IsEmpty())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 2.0, ClampRate(2.5))
	assert.Equal(t, 0.5, ClampRate(-1))
	assert.Equal(t, 0.5, ClampRate(math.NaN()))
	assert.Equal(t, 1.25, ClampRate(1.25))
	assert.Equal(t, 0.0, ClampMin(math.NaN(), 0))
	assert.Equal(t, 0.0, ClampMin(-3.0, 0))
	assert.Equal(t, 7.5, ClampMin(7.5, 0))
}

func TestTouchAndSummary(t *testing.T) {
	r := NewRoomState("room", 100)
	r.Append([]string{"https://example.com/q.mp4"}, "u1")
	r.Touch(50)
	assert.Equal(t, uint64(1), r.Version)
	assert.Equal(t, int64(100), r.UpdatedAtMs)

	s := r.Summary()
	assert.Equal(t, "https://example.com/q.mp4", s.PreviewMediaUrl)
	assert.Equal(t, 0.0, s.ProgressPercent)

	r.SetMedia("https://example.com/m.mp4", "u1", false)
	r.DurationSeconds = 200
	r.CurrentTimeSeconds = 50
	s = r.Summary()
	assert.Equal(t, "https://example.com/m.mp4", s.PreviewMediaUrl)
	assert.Equal(t, 25.0, s.ProgressPercent)
}

func TestSyncStale(t *testing.T) {
	r := NewRoomState("room", 1)
	r.SyncMode = SyncModeGeneric
	r.SyncLaunchAtMs = 1000
	assert.False(t, r.SyncStale(1000+SyncStaleAfterMs))
	assert.True(t, r.SyncStale(1001+SyncStaleAfterMs))

	r.ResetSync()
	assert.False(t, r.SyncStale(1_000_000))
}
