package controller

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/sharetube/roomsync/internal/repository/broadcast/ws"
	"github.com/sharetube/roomsync/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdWSMw(), c.roomIdWSMw(), c.loggerWSMw())
	mux.OnError(c.handleWSError)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)
	wsrouter.Handle(mux, "GET_STATE", c.handleGetState)
	wsrouter.Handle(mux, "LEAVE_ROOM", c.handleLeaveRoom)

	// host
	wsrouter.Handle(mux, "SET_HOST", c.handleSetHost)
	wsrouter.Handle(mux, "SET_ROOM_NAME", c.handleSetRoomName)
	wsrouter.Handle(mux, "SET_QUEUE_POLICY", c.handleSetQueuePolicy)
	wsrouter.Handle(mux, "REQUEST_HOST_CLAIM", c.handleRequestHostClaim)
	wsrouter.Handle(mux, "DECIDE_HOST_CLAIM", c.handleDecideHostClaim)

	// queue
	wsrouter.Handle(mux, "SET_MEDIA", c.handleSetMedia)
	wsrouter.Handle(mux, "ADD_QUEUE_NEXT", c.handleAddQueueNext)
	wsrouter.Handle(mux, "ADD_QUEUE_LAST", c.handleAddQueueLast)
	wsrouter.Handle(mux, "ADVANCE_QUEUE", c.handleAdvanceQueue)
	wsrouter.Handle(mux, "PREVIOUS_QUEUE", c.handlePreviousQueue)
	wsrouter.Handle(mux, "REMOVE_QUEUE_ITEM", c.handleRemoveQueueItem)
	wsrouter.Handle(mux, "MOVE_QUEUE_ITEM", c.handleMoveQueueItem)

	// player
	wsrouter.Handle(mux, "SET_DURATION", c.handleSetDuration)
	wsrouter.Handle(mux, "PLAY", c.handlePlay)
	wsrouter.Handle(mux, "PAUSE", c.handlePause)
	wsrouter.Handle(mux, "SEEK", c.handleSeek)
	wsrouter.Handle(mux, "SET_RATE", c.handleSetRate)
	wsrouter.Handle(mux, "SET_SUBTITLE", c.handleSetSubtitle)

	// sync
	wsrouter.Handle(mux, "START_SYNC", c.handleStartSync)
	wsrouter.Handle(mux, "LAUNCH_SYNC", c.handleLaunchSync)
	wsrouter.Handle(mux, "REPORT_SYNC_STATUS", c.handleReportSyncStatus)

	return mux
}

type errorPayload struct {
	RequestType string `json:"requestType"`
	Error       string `json:"error"`
}

func (c controller) handleWSError(ctx context.Context, _ *websocket.Conn, err error) {
	c.logger.InfoContext(ctx, "websocket message failed", "error", err)

	if err := c.writeOutput(ctx, &ws.Output{
		Type: errorType,
		Payload: errorPayload{
			RequestType: wsrouter.GetMessageTypeFromCtx(ctx),
			Error:       err.Error(),
		},
	}); err != nil {
		c.logger.InfoContext(ctx, "failed to write error", "error", err)
	}
}
