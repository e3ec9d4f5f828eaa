package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisBridge relays hub changes between service instances over a redis pub/sub channel so a
// subscriber on one instance sees writes made on another.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
	origin  string
	log     logrus.FieldLogger
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub, log logrus.FieldLogger) *RedisBridge {
	if log == nil {
		log = logrus.StandardLogger()
	}
	b := &RedisBridge{
		client:  client,
		channel: channel,
		hub:     hub,
		origin:  uuid.NewString(),
		log:     log.WithField("component", "redis_bridge"),
	}
	hub.Forward(b.forward)
	return b
}

func (b *RedisBridge) forward(change Change) {
	if change.Origin != "" {
		return
	}
	change.Origin = b.origin

	payload, err := json.Marshal(change)
	if err != nil {
		b.log.WithError(err).Warn("failed to encode change")
		return
	}
	if err := b.client.Publish(context.Background(), b.channel, payload).Err(); err != nil {
		b.log.WithError(err).WithField("collection", change.Collection).Warn("failed to publish change")
	}
}

// Run feeds changes made by other instances into the local hub until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	b.log.WithField("channel", b.channel).Info("listening for remote changes")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(msg.Payload)
		}
	}
}

func (b *RedisBridge) handle(payload string) {
	var change Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		b.log.WithError(err).Warn("error parsing change event")
		return
	}
	if change.Origin == b.origin {
		return
	}
	b.hub.Deliver(change)
}
