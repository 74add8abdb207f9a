package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"playday/pkg/logger"
	"playday/pkg/model"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisChannel = "playday:feed"

// RedisBroker publishes through a Redis channel so every instance sees every
// write. Each instance delivers what it receives through a local MemoryBroker.
type RedisBroker struct {
	rdb     *redis.Client
	channel string
	local   *MemoryBroker
	log     *logger.Logger
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

func NewRedisBroker(rdb *redis.Client, channel string, bufferSize int, log *logger.Logger) *RedisBroker {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisBroker{
		rdb:     rdb,
		channel: channel,
		local:   NewMemoryBroker(bufferSize),
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start subscribes to the Redis channel and relays until Stop is called.
func (b *RedisBroker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel

	pubsub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	go b.relay(ctx, pubsub)
	b.log.Info("Live feed relaying through Redis", "channel", b.channel)
	return nil
}

func (b *RedisBroker) relay(ctx context.Context, pubsub *redis.PubSub) {
	defer close(b.done)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event model.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.log.Warn("Dropping malformed feed message", "channel", b.channel, "error", err)
				continue
			}
			if err := b.local.Publish(ctx, event); err != nil {
				return
			}
		}
	}
}

func (b *RedisBroker) Publish(ctx context.Context, event model.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, topic string, filter Filter) (*Subscription, error) {
	return b.local.Subscribe(ctx, topic, filter)
}

func (b *RedisBroker) Stop() {
	b.once.Do(func() {
		if b.cancel != nil {
			b.cancel()
			<-b.done
		}
		b.local.Stop()
	})
}
