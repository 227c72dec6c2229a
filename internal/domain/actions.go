package domain

// Broadcast action tags.
const (
	ActionParticipantJoin = "participant:join"
	ActionParticipantLeft = "participant:left"

	ActionHostSet            = "host:set"
	ActionHostTransferred    = "host:transferred"
	ActionHostLeft           = "host:left"
	ActionHostClaimRequested = "host:claim-requested"
	ActionHostClaimApproved  = "host:claim-approved"
	ActionHostClaimRejected  = "host:claim-rejected"
	ActionHostClaimCleared   = "host:claim-cleared"

	ActionRoomRename     = "room:rename"
	ActionQueuePolicySet = "queue:policy:set"

	ActionMediaSet      = "media:set"
	ActionQueueAddNext  = "queue:add-next"
	ActionQueueAddLast  = "queue:add-last"
	ActionQueueAdvance  = "queue:advance"
	ActionQueuePrevious = "queue:previous"
	ActionQueueRemove   = "queue:remove"
	ActionQueueMove     = "queue:move"
	ActionQueueEmpty    = "queue:empty"

	ActionDurationSet = "duration:set"
	ActionPlay        = "play"
	ActionPause       = "pause"
	ActionSeek        = "seek"
	ActionRateSet     = "rate:set"

	ActionSubtitleSet   = "subtitle:set"
	ActionSubtitleClear = "subtitle:clear"

	ActionSyncStart   = "sync:start"
	ActionSyncLaunch  = "sync:launch"
	ActionSyncStatus  = "sync:status"
	ActionSyncCleared = "sync:cleared"
)
