package room

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sharetube/roomsync/internal/domain"
	"github.com/sharetube/roomsync/internal/service/media"
)

const (
	roomNameMaxLength     = 100
	subtitleLabelMaxRunes = 200
	subtitleTextMaxBytes  = 2 << 20
)

var roomIdRule = []validation.Rule{
	validation.Required.Error(ReasonRoomIdRequired),
}

var targetUserIdRule = []validation.Rule{
	validation.Required.Error("Target user id is required."),
}

var roomNameRule = []validation.Rule{
	validation.Required.Error("Room name is required."),
	validation.RuneLength(1, roomNameMaxLength).Error("Room name is too long."),
}

var mediaUrlRule = []validation.Rule{
	validation.Required.Error("Media URL is required."),
	validation.Length(1, media.MaxURLLength).Error(ReasonInvalidMediaURL),
}

var syncModeRule = []validation.Rule{
	validation.Required.Error(ReasonInvalidSyncMode),
	validation.In(domain.SyncModeGeneric, domain.SyncModeYoutube).Error(ReasonInvalidSyncMode),
}

var queueIndexRule = []validation.Rule{
	validation.Min(0).Error(ReasonInvalidIndex),
}

var subtitleLabelRule = []validation.Rule{
	validation.RuneLength(0, subtitleLabelMaxRunes).Error("Subtitle label is too long."),
}

var subtitleTextRule = []validation.Rule{
	validation.Length(0, subtitleTextMaxBytes).Error("Subtitle text is too large."),
}
