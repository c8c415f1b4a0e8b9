package events

import (
	"context"
	"sync"

	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
	"github.com/zatekoja/businesstrust/backend/internal/domain/providers"
)

// MemoryEventBus is an in-process EventBus used when Redis is disabled
type MemoryEventBus struct {
	mu     sync.Mutex
	subs   map[string]*fanout
	closed bool
}

var _ providers.EventBus = (*MemoryEventBus)(nil)

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{subs: make(map[string]*fanout)}
}

// Publish delivers event to current subscribers of channel
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.CompanyEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f, ok := b.subs[channel]; ok {
		f.broadcast(event)
	}
	return nil
}

// Subscribe returns a channel receiving events until ctx is done
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.CompanyEvent, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		ch := make(chan *entities.CompanyEvent)
		close(ch)
		return ch, nil
	}
	f, ok := b.subs[channel]
	if !ok {
		f = newFanout()
		b.subs[channel] = f
	}
	out := f.add()
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if f, ok := b.subs[channel]; ok {
			f.remove(out)
			if f.len() == 0 {
				delete(b.subs, channel)
			}
		}
	}()
	return out, nil
}

// Unsubscribe closes every subscriber of channel
func (b *MemoryEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f, ok := b.subs[channel]; ok {
		f.closeAll()
		delete(b.subs, channel)
	}
	return nil
}

// Close closes all subscribers
func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for channel, f := range b.subs {
		f.closeAll()
		delete(b.subs, channel)
	}
	b.closed = true
	return nil
}
