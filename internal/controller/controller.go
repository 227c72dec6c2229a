package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharetube/roomsync/internal/repository/broadcast/ws"
	"github.com/sharetube/roomsync/internal/service/media"
	"github.com/sharetube/roomsync/internal/service/room"
	"github.com/sharetube/roomsync/internal/service/subtitle"
	"github.com/sharetube/roomsync/pkg/validator"
	"github.com/sharetube/roomsync/pkg/wsrouter"
)

type iRoomService interface {
	GetRoomState(context.Context, *room.GetRoomStateParams) room.GetRoomStateResponse
	ListRooms(context.Context) room.ListRoomsResponse
	SetHost(context.Context, *room.SetHostParams) room.Result
	SetRoomName(context.Context, *room.SetRoomNameParams) room.Result
	SetViewerQueuePolicy(context.Context, *room.SetViewerQueuePolicyParams) room.Result
	RequestHostClaim(context.Context, *room.RequestHostClaimParams) room.Result
	DecideHostClaim(context.Context, *room.DecideHostClaimParams) room.Result
	LeaveRoom(context.Context, *room.LeaveRoomParams) room.Result
	DisconnectUser(context.Context, *room.DisconnectUserParams) room.DisconnectUserResponse
	SetMedia(context.Context, *room.SetMediaParams) room.Result
	AddQueueNext(context.Context, *room.AddQueueParams) room.Result
	AddQueueLast(context.Context, *room.AddQueueParams) room.Result
	AdvanceQueue(context.Context, *room.StepQueueParams) room.Result
	PreviousQueue(context.Context, *room.StepQueueParams) room.Result
	RemoveQueueItem(context.Context, *room.RemoveQueueItemParams) room.Result
	MoveQueueItem(context.Context, *room.MoveQueueItemParams) room.Result
	SetDuration(context.Context, *room.SetDurationParams) room.Result
	Play(context.Context, *room.PlaybackParams) room.Result
	Pause(context.Context, *room.PlaybackParams) room.Result
	Seek(context.Context, *room.SeekParams) room.Result
	SetRate(context.Context, *room.SetRateParams) room.Result
	SetSubtitle(context.Context, *room.SetSubtitleParams) room.Result
	HostStartSync(context.Context, *room.StartSyncParams) room.Result
	HostLaunchSync(context.Context, *room.LaunchSyncParams) room.Result
	ReportSyncStatus(context.Context, *room.ReportSyncStatusParams) room.Result
}

type iMediaResolver interface {
	Resolve(ctx context.Context, raw string) (media.Resolution, error)
}

type iSubtitleService interface {
	Search(ctx context.Context, params *subtitle.SearchParams) subtitle.SearchResponse
	Fetch(ctx context.Context, rawURL string) (*subtitle.Subtitle, error)
}

type iHub interface {
	Subscribe(userId, communityId string) *ws.Subscription
	Unsubscribe(sub *ws.Subscription)
	Connected(userId string) bool
}

type controller struct {
	roomService iRoomService
	resolver    iMediaResolver
	subtitles   iSubtitleService
	hub         iHub
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	secret      []byte
	logger      *slog.Logger
}

func NewController(roomService iRoomService, resolver iMediaResolver, subtitles iSubtitleService, hub iHub, secret string, logger *slog.Logger) *controller {
	c := &controller{
		roomService: roomService,
		resolver:    resolver,
		subtitles:   subtitles,
		hub:         hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		secret:   []byte(secret),
		logger:   logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}

func (c controller) generateTimeBasedId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
