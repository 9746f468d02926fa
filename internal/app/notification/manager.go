// Package notification fans player state updates out to stream subscribers.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/melodia/internal/api/rpc"
)

// DefaultSendTimeout bounds a single send to one subscriber.
const DefaultSendTimeout = 500 * time.Millisecond

// Stream is the sending side of a subscriber's state stream.
type Stream interface {
	Send(*rpc.StateUpdate) error
}

type subscription struct {
	id     string
	stream Stream
	failed chan struct{} // closed when the subscription is dropped after a failed send
	once   sync.Once
}

func (s *subscription) drop() {
	s.once.Do(func() { close(s.failed) })
}

// Manager manages state stream subscriptions.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription

	sequenceNo   uint64
	sequenceNoMu sync.Mutex

	sendTimeout time.Duration
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
		sendTimeout:   DefaultSendTimeout,
	}
}

// SetSendTimeout changes the per-subscriber send timeout.
func (m *Manager) SetSendTimeout(d time.Duration) {
	if d > 0 {
		m.sendTimeout = d
	}
}

// Subscribe adds a subscription and returns its ID together with a channel
// that is closed if the manager drops the subscription.
func (m *Manager) Subscribe(stream Stream) (string, <-chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	sub := &subscription{
		id:     id,
		stream: stream,
		failed: make(chan struct{}),
	}
	m.subscriptions[id] = sub
	zlog.Debug().Msgf("notification: subscribed: id=%s subscribers=%d", id, len(m.subscriptions))
	return id, sub.failed
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subscriptions[subscriptionID]; ok {
		delete(m.subscriptions, subscriptionID)
		zlog.Debug().Msgf("notification: unsubscribed: id=%s subscribers=%d", subscriptionID, len(m.subscriptions))
	}
}

// NextSequenceNo returns the next sequence number.
func (m *Manager) NextSequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	m.sequenceNo++
	return m.sequenceNo
}

// Broadcast stamps the update with the next sequence number and sends it to
// every subscriber in parallel. Subscribers whose send fails or times out
// are dropped.
func (m *Manager) Broadcast(event string, state rpc.PlayerState) *rpc.StateUpdate {
	update := &rpc.StateUpdate{
		SequenceNo: m.NextSequenceNo(),
		Event:      event,
		State:      state,
	}

	m.mu.RLock()
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			if err := m.sendWithTimeout(s, update); err != nil {
				zlog.Warn().Err(err).Msgf("notification: dropping subscriber: id=%s", s.id)
				m.Unsubscribe(s.id)
				s.drop()
			}
		}(sub)
	}
	wg.Wait()
	return update
}

func (m *Manager) sendWithTimeout(s *subscription, update *rpc.StateUpdate) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.stream.Send(update)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "send timed out")
	}
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions and signals their done channels.
func (m *Manager) Close() {
	m.mu.Lock()
	subs := m.subscriptions
	m.subscriptions = make(map[string]*subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.drop()
	}
}
