// Package consentbus provides the broadcast channel behind the consent
// stream: it caches the most recently published consent set and delivers
// it synchronously to each new subscriber before forwarding live updates.
package consentbus

import (
	"log/slog"
	"sync"

	"consentbridge/internal/domain"
)

// subscriberBuffer is the per-subscriber channel capacity. When a slow
// subscriber falls behind, the oldest buffered value is dropped so the
// newest one always gets through; a subscriber never observes a stale
// value after a newer one.
const subscriberBuffer = 8

// Bus is a goroutine-safe broadcast bus with replay-latest semantics.
// The latest published value is the backend's last-known consent set; the
// two are the same datum by construction, so the stream invariant ("most
// recent emission equals the cache") cannot drift.
type Bus struct {
	mu     sync.Mutex
	latest []domain.ServiceConsent
	subs   map[uint64]chan []domain.ServiceConsent
	nextID uint64
	closed bool
	logger *slog.Logger
}

// New creates a bus holding an empty consent set.
func New(logger *slog.Logger) *Bus {
	return &Bus{
		latest: []domain.ServiceConsent{},
		subs:   make(map[uint64]chan []domain.ServiceConsent),
		logger: logger,
	}
}

// Publish stores consents as the new latest set and fans it out to every
// subscriber. The set is normalized (unique template ids) and copied, so
// callers may reuse their slice. Publish after Close is a no-op.
func (b *Bus) Publish(consents []domain.ServiceConsent) {
	next := domain.NormalizeConsents(consents)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.latest = next
	for id, ch := range b.subs {
		if !send(ch, next) {
			b.logger.Debug("consent subscriber lagging, dropped oldest value", "subscriber", id)
			// Make room and retry. Only Publish writes and it holds the
			// lock, so after dropping one value the send cannot fail.
			select {
			case <-ch:
			default:
			}
			send(ch, next)
		}
	}
}

// send attempts a non-blocking delivery.
func send(ch chan []domain.ServiceConsent, v []domain.ServiceConsent) bool {
	select {
	case ch <- v:
		return true
	default:
		return false
	}
}

// Latest returns a copy of the most recently published consent set. The
// zero state is an empty, non-nil set.
func (b *Bus) Latest() []domain.ServiceConsent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.ServiceConsent, len(b.latest))
	copy(out, b.latest)
	return out
}

// Subscribe registers a new subscriber. The returned channel receives the
// current latest set immediately, then every subsequent Publish, and is
// closed when the bus closes. The returned function unsubscribes; it is
// safe to call more than once.
func (b *Bus) Subscribe() (<-chan []domain.ServiceConsent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []domain.ServiceConsent, subscriberBuffer)
	ch <- b.latest
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	b.nextID++
	id := b.nextID
	b.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
	return ch, unsubscribe
}

// Close closes every subscriber channel and rejects further publishes.
// Idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
