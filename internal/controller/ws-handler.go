package controller

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/sharetube/roomsync/internal/repository/broadcast/ws"
	"github.com/sharetube/roomsync/internal/service/room"
	"github.com/sharetube/roomsync/pkg/wsrouter"
)

// RoomInput is carried by every room message. RequestId is echoed back in the reply.
type RoomInput struct {
	RoomId    string `json:"roomId"`
	RequestId string `json:"requestId,omitempty"`
}

type resultPayload struct {
	RequestType string `json:"requestType"`
	RequestId   string `json:"requestId,omitempty"`
	Result      any    `json:"result"`
}

func (c controller) reply(ctx context.Context, in RoomInput, result any) error {
	return c.writeOutput(ctx, &ws.Output{
		Type: resultType,
		Payload: resultPayload{
			RequestType: wsrouter.GetMessageTypeFromCtx(ctx),
			RequestId:   in.RequestId,
			Result:      result,
		},
	})
}

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

func (c controller) handleGetState(ctx context.Context, _ *websocket.Conn, input RoomInput) error {
	return c.reply(ctx, input, c.roomService.GetRoomState(ctx, &room.GetRoomStateParams{
		Caller: c.caller(ctx, input.RoomId),
	}))
}

func (c controller) handleLeaveRoom(ctx context.Context, _ *websocket.Conn, input RoomInput) error {
	return c.reply(ctx, input, c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		Caller: c.caller(ctx, input.RoomId),
	}))
}

type SetHostInput struct {
	RoomInput
	TargetUserId string `json:"targetUserId"`
}

func (c controller) handleSetHost(ctx context.Context, _ *websocket.Conn, input SetHostInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.SetHost(ctx, &room.SetHostParams{
		Caller:       c.caller(ctx, input.RoomId),
		TargetUserId: input.TargetUserId,
	}))
}

type SetRoomNameInput struct {
	RoomInput
	RoomName string `json:"roomName"`
}

func (c controller) handleSetRoomName(ctx context.Context, _ *websocket.Conn, input SetRoomNameInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.SetRoomName(ctx, &room.SetRoomNameParams{
		Caller:   c.caller(ctx, input.RoomId),
		RoomName: input.RoomName,
	}))
}

type SetQueuePolicyInput struct {
	RoomInput
	AllowViewerQueueAdd bool `json:"allowViewerQueueAdd"`
}

func (c controller) handleSetQueuePolicy(ctx context.Context, _ *websocket.Conn, input SetQueuePolicyInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.SetViewerQueuePolicy(ctx, &room.SetViewerQueuePolicyParams{
		Caller:              c.caller(ctx, input.RoomId),
		AllowViewerQueueAdd: input.AllowViewerQueueAdd,
	}))
}

func (c controller) handleRequestHostClaim(ctx context.Context, _ *websocket.Conn, input RoomInput) error {
	return c.reply(ctx, input, c.roomService.RequestHostClaim(ctx, &room.RequestHostClaimParams{
		Caller: c.caller(ctx, input.RoomId),
	}))
}

type DecideHostClaimInput struct {
	RoomInput
	Approve        bool   `json:"approve"`
	ClaimantUserId string `json:"claimantUserId"`
}

func (c controller) handleDecideHostClaim(ctx context.Context, _ *websocket.Conn, input DecideHostClaimInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.DecideHostClaim(ctx, &room.DecideHostClaimParams{
		Caller:         c.caller(ctx, input.RoomId),
		Approve:        input.Approve,
		ClaimantUserId: input.ClaimantUserId,
	}))
}

type SetMediaInput struct {
	RoomInput
	MediaUrl string `json:"mediaUrl"`
	Autoplay bool   `json:"autoplay"`
}

func (c controller) handleSetMedia(ctx context.Context, _ *websocket.Conn, input SetMediaInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.SetMedia(ctx, &room.SetMediaParams{
		Caller:   c.caller(ctx, input.RoomId),
		MediaUrl: input.MediaUrl,
		Autoplay: input.Autoplay,
	}))
}

type AddQueueInput struct {
	RoomInput
	MediaUrl string `json:"mediaUrl"`
}

func (c controller) handleAddQueueNext(ctx context.Context, _ *websocket.Conn, input AddQueueInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.AddQueueNext(ctx, &room.AddQueueParams{
		Caller:   c.caller(ctx, input.RoomId),
		MediaUrl: input.MediaUrl,
	}))
}

func (c controller) handleAddQueueLast(ctx context.Context, _ *websocket.Conn, input AddQueueInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.AddQueueLast(ctx, &room.AddQueueParams{
		Caller:   c.caller(ctx, input.RoomId),
		MediaUrl: input.MediaUrl,
	}))
}

type StepQueueInput struct {
	RoomInput
	Autoplay bool `json:"autoplay"`
}

func (c controller) handleAdvanceQueue(ctx context.Context, _ *websocket.Conn, input StepQueueInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.AdvanceQueue(ctx, &room.StepQueueParams{
		Caller:   c.caller(ctx, input.RoomId),
		Autoplay: input.Autoplay,
	}))
}

func (c controller) handlePreviousQueue(ctx context.Context, _ *websocket.Conn, input StepQueueInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.PreviousQueue(ctx, &room.StepQueueParams{
		Caller:   c.caller(ctx, input.RoomId),
		Autoplay: input.Autoplay,
	}))
}

type RemoveQueueItemInput struct {
	RoomInput
	Index int `json:"index"`
}

func (c controller) handleRemoveQueueItem(ctx context.Context, _ *websocket.Conn, input RemoveQueueItemInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.RemoveQueueItem(ctx, &room.RemoveQueueItemParams{
		Caller: c.caller(ctx, input.RoomId),
		Index:  input.Index,
	}))
}

type MoveQueueItemInput struct {
	RoomInput
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

func (c controller) handleMoveQueueItem(ctx context.Context, _ *websocket.Conn, input MoveQueueItemInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.MoveQueueItem(ctx, &room.MoveQueueItemParams{
		Caller:    c.caller(ctx, input.RoomId),
		FromIndex: input.FromIndex,
		ToIndex:   input.ToIndex,
	}))
}

type SetDurationInput struct {
	RoomInput
	DurationSeconds float64 `json:"durationSeconds"`
}

func (c controller) handleSetDuration(ctx context.Context, _ *websocket.Conn, input SetDurationInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.SetDuration(ctx, &room.SetDurationParams{
		Caller:          c.caller(ctx, input.RoomId),
		DurationSeconds: input.DurationSeconds,
	}))
}

type PlaybackInput struct {
	RoomInput
	AtSeconds *float64 `json:"atSeconds"`
}

func (c controller) handlePlay(ctx context.Context, _ *websocket.Conn, input PlaybackInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.Play(ctx, &room.PlaybackParams{
		Caller:    c.caller(ctx, input.RoomId),
		AtSeconds: input.AtSeconds,
	}))
}

func (c controller) handlePause(ctx context.Context, _ *websocket.Conn, input PlaybackInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.Pause(ctx, &room.PlaybackParams{
		Caller:    c.caller(ctx, input.RoomId),
		AtSeconds: input.AtSeconds,
	}))
}

type SeekInput struct {
	RoomInput
	AtSeconds float64 `json:"atSeconds"`
}

func (c controller) handleSeek(ctx context.Context, _ *websocket.Conn, input SeekInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.Seek(ctx, &room.SeekParams{
		Caller:    c.caller(ctx, input.RoomId),
		AtSeconds: input.AtSeconds,
	}))
}

type SetRateInput struct {
	RoomInput
	Rate float64 `json:"rate"`
}

func (c controller) handleSetRate(ctx context.Context, _ *websocket.Conn, input SetRateInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.SetRate(ctx, &room.SetRateParams{
		Caller: c.caller(ctx, input.RoomId),
		Rate:   input.Rate,
	}))
}

type SetSubtitleInput struct {
	RoomInput
	Label       string `json:"label"`
	VttText     string `json:"vttText"`
	SubtitleUrl string `json:"subtitleUrl"`
}

func (c controller) handleSetSubtitle(ctx context.Context, _ *websocket.Conn, input SetSubtitleInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.SetSubtitle(ctx, &room.SetSubtitleParams{
		Caller:      c.caller(ctx, input.RoomId),
		Label:       input.Label,
		VttText:     input.VttText,
		SubtitleUrl: input.SubtitleUrl,
	}))
}

type StartSyncInput struct {
	RoomInput
	Mode string `json:"mode"`
}

func (c controller) handleStartSync(ctx context.Context, _ *websocket.Conn, input StartSyncInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.HostStartSync(ctx, &room.StartSyncParams{
		Caller: c.caller(ctx, input.RoomId),
		Mode:   input.Mode,
	}))
}

func (c controller) handleLaunchSync(ctx context.Context, _ *websocket.Conn, input RoomInput) error {
	return c.reply(ctx, input, c.roomService.HostLaunchSync(ctx, &room.LaunchSyncParams{
		Caller: c.caller(ctx, input.RoomId),
	}))
}

type ReportSyncStatusInput struct {
	RoomInput
	PositionSeconds float64 `json:"positionSeconds"`
	Ready           bool    `json:"ready"`
}

func (c controller) handleReportSyncStatus(ctx context.Context, _ *websocket.Conn, input ReportSyncStatusInput) error {
	return c.reply(ctx, input.RoomInput, c.roomService.ReportSyncStatus(ctx, &room.ReportSyncStatusParams{
		Caller:          c.caller(ctx, input.RoomId),
		PositionSeconds: input.PositionSeconds,
		Ready:           input.Ready,
	}))
}
