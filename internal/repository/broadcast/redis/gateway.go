package redis

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/roomsync/internal/domain"
	"github.com/sharetube/roomsync/internal/repository/broadcast/ws"
)

const (
	channelPrefix  = "community:"
	publishTimeout = 5 * time.Second

	DefaultQueueSize = 256
)

type publication struct {
	ctx         context.Context
	channel     string
	actionTag   string
	roomId      string
	communityId string
	msg         []byte
}

type gateway struct {
	rc     *redis.Client
	logger *slog.Logger
	queue  chan publication
}

// NewGateway publishes room broadcasts so that every instance can fan them out to its own clients.
// Frames are queued and sent by Run one at a time, so a room's versions reach redis in order.
func NewGateway(rc *redis.Client, logger *slog.Logger, queueSize int) *gateway {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	return &gateway{
		rc:     rc,
		logger: logger,
		queue:  make(chan publication, queueSize),
	}
}

func (g *gateway) getChannel(communityId string) string {
	return channelPrefix + communityId
}

// Broadcast enqueues the frame without blocking. A full queue drops it and failures never reach the caller.
func (g *gateway) Broadcast(ctx context.Context, actionTag, actorUserId string, state domain.RoomState, communityId string) {
	msg, err := ws.Encode(actionTag, actorUserId, state)
	if err != nil {
		g.logger.WarnContext(ctx, "encode broadcast", "action", actionTag, "error", err)
		return
	}

	p := publication{
		ctx:         context.WithoutCancel(ctx),
		channel:     g.getChannel(communityId),
		actionTag:   actionTag,
		roomId:      state.RoomId,
		communityId: communityId,
		msg:         msg,
	}

	select {
	case g.queue <- p:
	default:
		g.logger.WarnContext(ctx, "broadcast queue full, dropping frame",
			"action", actionTag,
			"room_id", state.RoomId,
			"community_id", communityId,
		)
	}
}

// Run publishes queued frames in order until ctx is done.
func (g *gateway) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p := <-g.queue:
			g.publish(p)
		}
	}
}

func (g *gateway) publish(p publication) {
	ctx, cancel := context.WithTimeout(p.ctx, publishTimeout)
	defer cancel()

	if err := g.rc.Publish(ctx, p.channel, p.msg).Err(); err != nil {
		g.logger.WarnContext(ctx, "publish broadcast",
			"action", p.actionTag,
			"room_id", p.roomId,
			"community_id", p.communityId,
			"error", err,
		)
	}
}

type iDeliverer interface {
	Deliver(ctx context.Context, communityId string, msg []byte)
}

type relay struct {
	ps     *redis.PubSub
	logger *slog.Logger
}

// Subscribe listens on every community channel. It returns once redis confirms the subscription.
func (g *gateway) Subscribe(ctx context.Context) (*relay, error) {
	ps := g.rc.PSubscribe(ctx, channelPrefix+"*")
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, err
	}

	return &relay{ps: ps, logger: g.logger}, nil
}

// Run feeds published frames into hub until ctx is done or the subscription closes.
func (r *relay) Run(ctx context.Context, hub iDeliverer) error {
	defer r.ps.Close()

	ch := r.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.logger.DebugContext(ctx, "relay", "channel", msg.Channel)
			hub.Deliver(ctx, strings.TrimPrefix(msg.Channel, channelPrefix), []byte(msg.Payload))
		}
	}
}
