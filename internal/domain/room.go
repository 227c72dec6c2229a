package domain

const (
	RoomIdMaxLength = 128

	DefaultPlaybackRate = 1.0
	MinPlaybackRate     = 0.5
	MaxPlaybackRate     = 2.0
)

type RoomState struct {
	RoomId             string   `json:"roomId"`
	RoomName           string   `json:"roomName"`
	HostUserId         string   `json:"hostUserId"`
	PendingHostUserId  string   `json:"pendingHostUserId"`
	ParticipantUserIds []string `json:"participantUserIds"`

	MediaUrl                  string  `json:"mediaUrl"`
	DurationSeconds           float64 `json:"durationSeconds"`
	CurrentTimeSeconds        float64 `json:"currentTimeSeconds"`
	Playing                   bool    `json:"playing"`
	PlaybackRate              float64 `json:"playbackRate"`
	CurrentMediaAddedByUserId string  `json:"currentMediaAddedByUserId"`

	PlaylistUrls                  []string `json:"playlistUrls"`
	PlaylistAddedByUserIds        []string `json:"playlistAddedByUserIds"`
	PlaylistHistoryUrls           []string `json:"playlistHistoryUrls"`
	PlaylistHistoryAddedByUserIds []string `json:"playlistHistoryAddedByUserIds"`
	AllowViewerQueueAdd           bool     `json:"allowViewerQueueAdd"`

	SubtitleLabel   string `json:"subtitleLabel"`
	SubtitleVttText string `json:"subtitleVttText"`

	SyncMode          string   `json:"syncMode"`
	SyncTargetSeconds float64  `json:"syncTargetSeconds"`
	SyncLaunchAtMs    int64    `json:"syncLaunchAtMs"`
	SyncReadyUserIds  []string `json:"syncReadyUserIds"`

	Version     uint64 `json:"version"`
	UpdatedAtMs int64  `json:"updatedAtMs"`
}

// NewRoomState returns an empty room named after its id.
func NewRoomState(roomId string, nowMs int64) *RoomState {
	return &RoomState{
		RoomId:                        roomId,
		RoomName:                      roomId,
		ParticipantUserIds:            []string{},
		PlaybackRate:                  DefaultPlaybackRate,
		PlaylistUrls:                  []string{},
		PlaylistAddedByUserIds:        []string{},
		PlaylistHistoryUrls:           []string{},
		PlaylistHistoryAddedByUserIds: []string{},
		SyncReadyUserIds:              []string{},
		UpdatedAtMs:                   nowMs,
	}
}

// Clone returns a deep copy safe to hand out after the room lock is released.
func (r *RoomState) Clone() RoomState {
	c := *r
	c.ParticipantUserIds = cloneStrings(r.ParticipantUserIds)
	c.PlaylistUrls = cloneStrings(r.PlaylistUrls)
	c.PlaylistAddedByUserIds = cloneStrings(r.PlaylistAddedByUserIds)
	c.PlaylistHistoryUrls = cloneStrings(r.PlaylistHistoryUrls)
	c.PlaylistHistoryAddedByUserIds = cloneStrings(r.PlaylistHistoryAddedByUserIds)
	c.SyncReadyUserIds = cloneStrings(r.SyncReadyUserIds)
	return c
}

// Touch records an accepted state change.
func (r *RoomState) Touch(nowMs int64) {
	r.Version++
	if nowMs > r.UpdatedAtMs {
		r.UpdatedAtMs = nowMs
	}
}

func (r *RoomState) HasDefaultName() bool {
	return r.RoomName == "" || r.RoomName == r.RoomId
}

func (r *RoomState) SetMedia(url, addedBy string, playing bool) {
	r.MediaUrl = url
	r.CurrentMediaAddedByUserId = addedBy
	r.CurrentTimeSeconds = 0
	r.DurationSeconds = 0
	r.Playing = playing
	r.SubtitleLabel = ""
	r.SubtitleVttText = ""
	r.ResetSync()
}

type RoomSummary struct {
	RoomId             string   `json:"roomId"`
	RoomName           string   `json:"roomName"`
	PreviewMediaUrl    string   `json:"previewMediaUrl"`
	HostUserId         string   `json:"hostUserId"`
	MediaUrl           string   `json:"mediaUrl"`
	Playing            bool     `json:"playing"`
	CurrentTimeSeconds float64  `json:"currentTimeSeconds"`
	DurationSeconds    float64  `json:"durationSeconds"`
	ProgressPercent    float64  `json:"progressPercent"`
	ParticipantUserIds []string `json:"participantUserIds"`
	Version            uint64   `json:"version"`
}

func (r *RoomState) Summary() RoomSummary {
	preview := r.MediaUrl
	if preview == "" && len(r.PlaylistUrls) > 0 {
		preview = r.PlaylistUrls[0]
	}

	var progress float64
	if r.DurationSeconds > 0 {
		progress = Clamp(r.CurrentTimeSeconds/r.DurationSeconds*100, 0, 100)
	}

	return RoomSummary{
		RoomId:             r.RoomId,
		RoomName:           r.RoomName,
		PreviewMediaUrl:    preview,
		HostUserId:         r.HostUserId,
		MediaUrl:           r.MediaUrl,
		Playing:            r.Playing,
		CurrentTimeSeconds: r.CurrentTimeSeconds,
		DurationSeconds:    r.DurationSeconds,
		ProgressPercent:    progress,
		ParticipantUserIds: cloneStrings(r.ParticipantUserIds),
		Version:            r.Version,
	}
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
