package events

import (
	"github.com/zatekoja/businesstrust/backend/internal/domain/entities"
)

// fanout is the set of local subscriber queues of one channel. Callers
// hold the owning bus lock.
type fanout struct {
	subs map[chan *entities.CompanyEvent]struct{}
}

func newFanout() *fanout {
	return &fanout{subs: make(map[chan *entities.CompanyEvent]struct{})}
}

func (f *fanout) add() chan *entities.CompanyEvent {
	ch := make(chan *entities.CompanyEvent, subscriberBuffer)
	f.subs[ch] = struct{}{}
	return ch
}

// remove closes and forgets ch, reporting whether it was present
func (f *fanout) remove(ch chan *entities.CompanyEvent) bool {
	if _, ok := f.subs[ch]; !ok {
		return false
	}
	delete(f.subs, ch)
	close(ch)
	return true
}

func (f *fanout) len() int {
	return len(f.subs)
}

// broadcast delivers event without blocking and returns how many
// subscribers were skipped because their queue was full
func (f *fanout) broadcast(event *entities.CompanyEvent) int {
	dropped := 0
	for ch := range f.subs {
		select {
		case ch <- event:
		default:
			dropped++
		}
	}
	return dropped
}

func (f *fanout) closeAll() {
	for ch := range f.subs {
		close(ch)
		delete(f.subs, ch)
	}
}
