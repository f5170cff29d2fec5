// Package modes owns the shared viewing mode and keeps every connected observer in sync with it.
package modes

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/metrics"
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBuffer is the number of pending updates a subscriber may hold
const DefaultBuffer = 16

// ErrClosed is returned by RequestChange after Close
var ErrClosed = errors.New("mode broadcaster is closed")

// UnknownModeError is returned in strict mode for a label outside the mode set
type UnknownModeError struct {
	Label string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown mode %q", e.Label)
}

// Subscription receives the full mode set after every change.
// C is closed on Unsubscribe, on Close, or when the subscriber is evicted
// for not draining its buffer.
type Subscription struct {
	ID uuid.UUID
	C  <-chan []models.ViewMode

	// Initial is the mode set at the moment the subscription was registered
	Initial []models.ViewMode

	ch      chan []models.ViewMode
	evicted atomic.Bool
}

// Evicted reports whether the subscription was dropped for falling behind
func (s *Subscription) Evicted() bool {
	return s.evicted.Load()
}

// Broadcaster holds the mode set. One mutex serializes every change together
// with its fan-out, so observers only ever see complete post-change sets.
type Broadcaster struct {
	mu     sync.Mutex
	modes  []models.ViewMode
	subs   map[uuid.UUID]*Subscription
	closed bool

	strict  bool
	buffer  int
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// Option configures a Broadcaster
type Option func(*Broadcaster)

// WithStrictLabels rejects changes to labels outside the mode set
func WithStrictLabels() Option {
	return func(b *Broadcaster) { b.strict = true }
}

// WithBuffer sets the per-subscriber buffer size
func WithBuffer(n int) Option {
	return func(b *Broadcaster) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithMetrics records changes and subscriber counts on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Broadcaster) { b.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(b *Broadcaster) { b.logger = l }
}

// New creates a broadcaster over labels with the first one active
func New(labels []string, opts ...Option) (*Broadcaster, error) {
	if len(labels) == 0 {
		return nil, errors.New("mode set must not be empty")
	}

	seen := make(map[string]struct{}, len(labels))
	modes := make([]models.ViewMode, 0, len(labels))
	for i, label := range labels {
		if label == "" {
			return nil, errors.New("mode label must not be empty")
		}
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("duplicate mode label %q", label)
		}
		seen[label] = struct{}{}
		modes = append(modes, models.ViewMode{Label: label, Active: i == 0})
	}

	b := &Broadcaster{
		modes:  modes,
		subs:   make(map[uuid.UUID]*Subscription),
		buffer: DefaultBuffer,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Current returns the active mode. ok is false when no mode is active.
func (b *Broadcaster) Current() (models.ViewMode, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var current models.ViewMode
	found := false
	active := 0
	for _, m := range b.modes {
		if !m.Active {
			continue
		}
		active++
		if !found {
			current, found = m, true
		}
	}

	if active != 1 {
		b.logger.Warn("Mode set does not have exactly one active mode", zap.Int("active", active))
	}
	return current, found
}

// List returns a copy of the full ordered mode set
func (b *Broadcaster) List() []models.ViewMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// Labels returns the configured labels in order
func (b *Broadcaster) Labels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	labels := make([]string, len(b.modes))
	for i, m := range b.modes {
		labels[i] = m.Label
	}
	return labels
}

// RequestChange activates label and deactivates every other mode, then
// delivers the new set to all subscribers before returning it. A label
// outside the set leaves no mode active, or fails with UnknownModeError
// when strict labels are enabled.
func (b *Broadcaster) RequestChange(label string) ([]models.ViewMode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	if b.strict && !b.known(label) {
		return nil, &UnknownModeError{Label: label}
	}

	for i := range b.modes {
		b.modes[i].Active = b.modes[i].Label == label
	}

	b.broadcast()

	if b.metrics != nil {
		b.metrics.ModeChanges.Inc()
	}
	b.logger.Info("Mode changed", zap.String("label", label), zap.Int("subscribers", len(b.subs)))

	return b.snapshot(), nil
}

// Subscribe registers a new observer. A subscription taken after Close
// has its channel already closed.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []models.ViewMode, b.buffer)
	sub := &Subscription{
		ID:      uuid.New(),
		C:       ch,
		Initial: b.snapshot(),
		ch:      ch,
	}

	if b.closed {
		close(ch)
		return sub
	}

	b.subs[sub.ID] = sub
	b.updateSubscriberGauge()
	b.logger.Debug("Mode subscriber added", zap.String("subscriber_id", sub.ID.String()))
	return sub
}

// Unsubscribe removes the subscription and closes its channel. Unknown ids are ignored.
func (b *Broadcaster) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.ch)
	b.updateSubscriberGauge()
}

// SubscriberCount returns the number of registered subscriptions
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscription
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
	b.updateSubscriberGauge()
}

// broadcast must be called with mu held
func (b *Broadcaster) broadcast() {
	for id, sub := range b.subs {
		select {
		case sub.ch <- b.snapshot():
		default:
			sub.evicted.Store(true)
			delete(b.subs, id)
			close(sub.ch)
			if b.metrics != nil {
				b.metrics.ModeEvictions.Inc()
			}
			b.logger.Warn("Evicted slow mode subscriber", zap.String("subscriber_id", id.String()))
		}
	}
	b.updateSubscriberGauge()
}

func (b *Broadcaster) snapshot() []models.ViewMode {
	modes := make([]models.ViewMode, len(b.modes))
	copy(modes, b.modes)
	return modes
}

func (b *Broadcaster) known(label string) bool {
	for _, m := range b.modes {
		if m.Label == label {
			return true
		}
	}
	return false
}

func (b *Broadcaster) updateSubscriberGauge() {
	if b.metrics != nil {
		b.metrics.ModeSubscribers.Set(float64(len(b.subs)))
	}
}
