package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharetube/roomsync/internal/repository/broadcast/ws"
	"github.com/sharetube/roomsync/internal/service/room"
)

const (
	writeWait = 10 * time.Second

	connectedType = "CONNECTED"
	resultType    = "RESULT"
	errorType     = "ERROR"
)

// session serializes writes to one connection. Replies and broadcasts come from different goroutines.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (c controller) writeOutput(ctx context.Context, output *ws.Output) error {
	s := c.getSessionFromCtx(ctx)
	if s == nil {
		return errors.New("no websocket session in context")
	}

	data, err := json.Marshal(output)
	if err != nil {
		return err
	}

	return s.write(data)
}

func (c controller) caller(ctx context.Context, roomId string) room.Caller {
	return room.Caller{
		RoomId:      roomId,
		SenderId:    c.getUserIdFromCtx(ctx),
		CommunityId: c.getCommunityIdFromCtx(ctx),
	}
}

type connectedPayload struct {
	UserId       string `json:"userId"`
	CommunityId  string `json:"communityId"`
	ServerTimeMs int64  `json:"serverTimeMs"`
}

func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userId := c.getUserIdFromCtx(ctx)
	communityId := c.getCommunityIdFromCtx(ctx)

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	s := &session{conn: conn}
	ctx = context.WithValue(ctx, sessionCtxKey, s)

	sub := c.hub.Subscribe(userId, communityId)
	defer c.disconnect(ctx, sub)

	if err := c.writeOutput(ctx, &ws.Output{
		Type: connectedType,
		Payload: connectedPayload{
			UserId:       userId,
			CommunityId:  communityId,
			ServerTimeMs: time.Now().UnixMilli(),
		},
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to write json", "error", err)
		return
	}

	go c.pump(ctx, s, sub)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "connection closed", "error", err)
	}
}

// pump forwards broadcasts until the hub closes the subscription.
func (c controller) pump(ctx context.Context, s *session, sub *ws.Subscription) {
	for msg := range sub.C() {
		if err := s.write(msg); err != nil {
			c.logger.InfoContext(ctx, "failed to forward broadcast", "error", err)
			s.conn.Close()
			return
		}
	}
}

// disconnect drops the subscription and, once the user has no other connection, removes it from its rooms.
func (c controller) disconnect(ctx context.Context, sub *ws.Subscription) {
	c.hub.Unsubscribe(sub)
	if c.hub.Connected(sub.UserId) {
		return
	}

	resp := c.roomService.DisconnectUser(context.WithoutCancel(ctx), &room.DisconnectUserParams{
		UserId:      sub.UserId,
		CommunityId: sub.CommunityId,
	})
	c.logger.DebugContext(ctx, "user disconnected", "room_ids", resp.RoomIds)
}
