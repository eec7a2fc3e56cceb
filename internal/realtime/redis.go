package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RedisBroker shares changes between API replicas over Redis pub/sub.
type RedisBroker struct {
	rdb *redis.Client
	log logrus.FieldLogger
}

func NewRedisBroker(rdb *redis.Client, log logrus.FieldLogger) *RedisBroker {
	return &RedisBroker{rdb: rdb, log: log.WithField("component", "realtime.redis")}
}

func (b *RedisBroker) Publish(ctx context.Context, appointmentID uint) error {
	payload, err := encodeChange(newChange(appointmentID))
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, ChangeTopic, payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

func (b *RedisBroker) Listen(ctx context.Context, deliver func(Change), resync func()) error {
	sub := b.rdb.Subscribe(ctx, ChangeTopic)

	// Wait for the subscription confirmation so nothing published after
	// Listen returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", ChangeTopic, err)
	}

	// Receive does not watch ctx; closing the subscription unblocks it.
	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()

	go b.receive(ctx, sub, deliver, resync)

	b.log.WithField("channel", ChangeTopic).Info("listening for appointment changes")
	return nil
}

// receive reads the subscription directly instead of through
// PubSub.Channel so a dropped connection is visible. The next Receive after
// an error reconnects and re-subscribes, and the confirmation it returns
// marks the end of the gap.
func (b *RedisBroker) receive(ctx context.Context, sub *redis.PubSub, deliver func(Change), resync func()) {
	lost := false

	for {
		msg, err := sub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !lost {
				b.log.WithError(err).Warn("change subscription lost, reconnecting")
			}
			lost = true

			select {
			case <-ctx.Done():
				return
			case <-time.After(relistenDelay):
			}
			continue
		}

		switch m := msg.(type) {
		case *redis.Subscription:
			if lost && m.Kind == "subscribe" {
				lost = false
				b.log.Info("change subscription restored, resyncing")
				resync()
			}
		case *redis.Message:
			ch, err := decodeChange(m.Payload)
			if err != nil {
				b.log.WithError(err).Warn("dropping malformed change")
				continue
			}
			deliver(ch)
		}
	}
}

var _ Broker = (*RedisBroker)(nil)
