// Package events provides the fan-out channel that extraction lifecycle events are broadcast on.
package events

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/resume-extractor/internal/types"
)

// Event names broadcast by the extraction coordinator
const (
	EventStart    = "extraction:start"
	EventProgress = "extraction:progress"
	EventComplete = "extraction:complete"
	EventError    = "extraction:error"
)

const defaultBuffer = 64

// Event is one lifecycle notification for a single extraction
type Event struct {
	Name         string       `json:"event"`
	ExtractionID string       `json:"extractionId"`
	Type         types.Format `json:"type"`
	Path         string       `json:"path"`
	Stage        string       `json:"stage,omitempty"`
	Progress     int          `json:"progress"`
	PageCount    int          `json:"pageCount,omitempty"`
	TextLength   int          `json:"textLength,omitempty"`
	Error        string       `json:"error,omitempty"`
	Time         time.Time    `json:"time"`
}

// Terminal reports whether the event ends an extraction
func (e Event) Terminal() bool {
	return e.Name == EventComplete || e.Name == EventError
}

// Bus broadcasts events to every subscriber. Publish never blocks: a subscriber
// whose buffer is full misses the event and its drop counter is incremented.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	logger *slog.Logger
}

// Option configures a Bus
type Option func(*Bus)

// WithBuffer sets the per-subscriber channel capacity
func WithBuffer(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithLogger sets a custom logger for the bus
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// NewBus creates an empty Bus
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[uint64]*Subscription),
		buffer: defaultBuffer,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Subscribe registers a new listener. Callers must Close the subscription when done.
func (b *Bus) Subscribe() *Subscription {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{C: ch, ch: ch, bus: b, id: b.nextID}
	b.subs[sub.id] = sub
	return sub
}

// Publish fans the event out to all current subscribers. A nil Bus discards events.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- e:
		default:
			sub.dropped.Add(1)
			b.logger.Warn("event dropped for slow subscriber",
				"subscriber", sub.id, "event", e.Name, "path", e.Path)
		}
	}
}

// Subscribers returns the number of active subscriptions
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Subscription is a single listener on a Bus
type Subscription struct {
	// C receives events in publish order. It is closed by Close.
	C <-chan Event

	ch      chan Event
	bus     *Bus
	id      uint64
	dropped atomic.Int64
	once    sync.Once
}

// Close detaches the subscription and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

// Dropped returns how many events were discarded because the buffer was full
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}
