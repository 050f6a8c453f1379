package realtime

import (
	"context"
	"encoding/json"

	"go-studioadmin/internal/logging"
	redisrepo "go-studioadmin/internal/repository/redis"

	"go.uber.org/zap"
)

// Broker publishes push events. With Redis every API instance receives the
// event through Pub/Sub and forwards it to its own hub; without Redis the
// event goes straight to the local hub.
type Broker struct {
	hub     *Hub
	redis   *redisrepo.Client
	channel string
	logger  *logging.Logger
}

func NewBroker(h *Hub, r *redisrepo.Client, channel string, l *logging.Logger) *Broker {
	if channel == "" {
		channel = "studio:realtime"
	}
	if l == nil {
		l = logging.Nop()
	}
	return &Broker{hub: h, redis: r, channel: channel, logger: l}
}

func (b *Broker) Hub() *Hub { return b.hub }

// Publish encodes data as a frame on channel/event and fans it out.
func (b *Broker) Publish(ctx context.Context, channel, event string, data any) error {
	f, err := NewFrame(channel, event, data)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if b.redis == nil {
		b.hub.Broadcast(event, raw)
		return nil
	}
	if err := b.redis.Publish(ctx, b.channel, raw); err != nil {
		// other instances miss this one, local admins still get it
		b.logger.WithContext(ctx).Warn("realtime_publish_failed", zap.Error(err))
		b.hub.Broadcast(event, raw)
		return err
	}
	return nil
}

func (b *Broker) PublishSupportMessage(ctx context.Context, ev SupportMessage) error {
	return b.Publish(ctx, SupportChannel, SupportMessageEvent, ev)
}

// Run forwards Pub/Sub frames to the local hub until ctx is done.
// It returns immediately when Redis is not configured.
func (b *Broker) Run(ctx context.Context) error {
	if b.redis == nil {
		return nil
	}
	ps := b.redis.Subscribe(ctx, b.channel)
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		return err
	}
	b.logger.Info("realtime_subscribed", zap.String("channel", b.channel))
	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var f Frame
			if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
				b.logger.Warn("realtime_bad_frame", zap.Error(err))
				continue
			}
			b.hub.Broadcast(f.Event, []byte(msg.Payload))
		}
	}
}
