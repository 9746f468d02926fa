package notification

import (
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/melodia/internal/api/rpc"
)

type recordingStream struct {
	mu      sync.Mutex
	updates []*rpc.StateUpdate
	err     error
	block   chan struct{}
}

func (s *recordingStream) Send(u *rpc.StateUpdate) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.updates = append(s.updates, u)
	return nil
}

func (s *recordingStream) received() []*rpc.StateUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*rpc.StateUpdate(nil), s.updates...)
}

func TestManager_Broadcast(t *testing.T) {
	m := NewManager()
	a := &recordingStream{}
	b := &recordingStream{}
	m.Subscribe(a)
	m.Subscribe(b)
	assert.Equal(t, 2, m.SubscriberCount())

	first := m.Broadcast("track_changed", rpc.PlayerState{Status: "paused"})
	second := m.Broadcast("track_started", rpc.PlayerState{Status: "playing", IsPlaying: true})
	assert.Equal(t, uint64(1), first.SequenceNo)
	assert.Equal(t, uint64(2), second.SequenceNo)

	for _, s := range []*recordingStream{a, b} {
		got := s.received()
		require.Len(t, got, 2)
		assert.Equal(t, "track_changed", got[0].Event)
		assert.Equal(t, "track_started", got[1].Event)
		assert.True(t, got[1].State.IsPlaying)
	}
}

func TestManager_DropsFailingSubscriber(t *testing.T) {
	m := NewManager()
	good := &recordingStream{}
	bad := &recordingStream{err: errors.New("broken pipe")}
	m.Subscribe(good)
	_, failed := m.Subscribe(bad)

	m.Broadcast("progress", rpc.PlayerState{})

	assert.Equal(t, 1, m.SubscriberCount())
	assert.Len(t, good.received(), 1)
	select {
	case <-failed:
	default:
		t.Fatal("failed channel not closed")
	}
}

func TestManager_DropsSlowSubscriber(t *testing.T) {
	m := NewManager()
	m.SetSendTimeout(20 * time.Millisecond)

	slow := &recordingStream{block: make(chan struct{})}
	defer close(slow.block)
	_, failed := m.Subscribe(slow)

	start := time.Now()
	m.Broadcast("progress", rpc.PlayerState{})
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, m.SubscriberCount())
	<-failed
}

func TestManager_UnsubscribeAndClose(t *testing.T) {
	m := NewManager()
	id, _ := m.Subscribe(&recordingStream{})
	_, done := m.Subscribe(&recordingStream{})

	m.Unsubscribe(id)
	m.Unsubscribe(id)
	assert.Equal(t, 1, m.SubscriberCount())

	m.Close()
	assert.Equal(t, 0, m.SubscriberCount())
	<-done
}
