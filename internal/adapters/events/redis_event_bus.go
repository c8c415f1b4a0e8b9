package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/businesstrust/backend/internal/infrastructure/clients/redis"
)

// subscriberBuffer is the per-subscriber queue length; events beyond it are dropped
const subscriberBuffer = 100

// RedisEventBus implements the EventBus interface using Redis Pub/Sub.
// One Redis subscription per channel fans out to every local subscriber.
type RedisEventBus struct {
	client *redisclient.Client

	mu            sync.RWMutex
	subscriptions map[string]*redis.PubSub
	subscribers   map[string]*fanout

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		subscribers:   make(map[string]*fanout),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish publishes an event to a channel
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.CompanyEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).Str("event_type", string(event.EventType)).Msg("Published company event")
	return nil
}

// Subscribe returns a channel receiving events until ctx is done or the
// channel is unsubscribed
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.CompanyEvent, error) {
	b.mu.Lock()
	if _, ok := b.subscriptions[channel]; !ok {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		if _, err := pubsub.Receive(ctx); err != nil {
			b.mu.Unlock()
			_ = pubsub.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		b.subscriptions[channel] = pubsub
		b.subscribers[channel] = newFanout()
		go b.receive(channel, pubsub)
	}
	out := b.subscribers[channel].add()
	count := b.subscribers[channel].len()
	b.mu.Unlock()

	log.Info().Str("channel", channel).Int("subscribers", count).Msg("Subscribed to channel")

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.removeSubscriber(channel, out)
	}()

	return out, nil
}

func (b *RedisEventBus) receive(channel string, pubsub *redis.PubSub) {
	defer func() {
		if err := b.closeChannel(channel); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("Failed to close channel")
		}
	}()

	messages := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var event entities.CompanyEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("Dropping undecodable event")
				continue
			}

			b.mu.RLock()
			if f, ok := b.subscribers[channel]; ok {
				if dropped := f.broadcast(&event); dropped > 0 {
					log.Warn().Str("channel", channel).Str("event_id", event.ID).Int("dropped", dropped).Msg("Subscriber queue full")
				}
			}
			b.mu.RUnlock()
		}
	}
}

func (b *RedisEventBus) removeSubscriber(channel string, out chan *entities.CompanyEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, ok := b.subscribers[channel]
	if !ok || !f.remove(out) {
		return
	}
	if f.len() > 0 {
		return
	}

	delete(b.subscribers, channel)
	if pubsub, ok := b.subscriptions[channel]; ok {
		_ = pubsub.Close()
		delete(b.subscriptions, channel)
	}
}

func (b *RedisEventBus) closeChannel(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if f, ok := b.subscribers[channel]; ok {
		f.closeAll()
		delete(b.subscribers, channel)
	}

	pubsub, ok := b.subscriptions[channel]
	if !ok {
		return nil
	}
	delete(b.subscriptions, channel)
	if err := pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close subscription %s: %w", channel, err)
	}
	return nil
}

// Unsubscribe drops every local subscriber of a channel
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return b.closeChannel(channel)
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.RLock()
	channels := make([]string, 0, len(b.subscriptions))
	for channel := range b.subscriptions {
		channels = append(channels, channel)
	}
	b.mu.RUnlock()

	var errs []error
	for _, channel := range channels {
		errs = append(errs, b.closeChannel(channel))
	}
	return errors.Join(errs...)
}
