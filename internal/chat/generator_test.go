package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureBroadcaster struct {
	mu       sync.Mutex
	messages []Message
}

func (c *captureBroadcaster) Broadcast(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *captureBroadcaster) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func TestTick_AdvancesEveryDialog(t *testing.T) {
	synth := newTestSynth()

	// Deterministic clock so updatedAt strictly increases across the tick.
	var clock int64
	synth.now = func() int64 {
		clock++
		return clock
	}

	store := NewStore(10, 50)
	store.Seed(synth, 2)

	before := map[string]Dialog{}
	for _, d := range store.Dialogs() {
		before[d.ID] = d
	}

	sink := &captureBroadcaster{}
	gen := NewGenerator(store, synth, sink, time.Second, zap.NewNop())
	gen.Tick()

	require.Equal(t, 2, sink.count())

	for _, d := range store.Dialogs() {
		prev := before[d.ID]
		log := store.messages[d.ID]

		require.Len(t, log, 2)
		assert.Greater(t, d.UpdatedAt, prev.UpdatedAt)
		assert.Equal(t, log[1], d.LastMessage)
		assert.Equal(t, d.LastMessage.CreatedAt, d.UpdatedAt)
		assert.True(t, d.HasParticipant(d.LastMessage.SenderID))
	}
}

func TestTick_SenderIsAlwaysParticipant(t *testing.T) {
	synth := newTestSynth()
	store := NewStore(10, 50)
	store.Seed(synth, 3)

	participants := map[string][2]string{}
	for _, d := range store.Dialogs() {
		participants[d.ID] = d.ParticipantIDs
	}

	sink := &captureBroadcaster{}
	gen := NewGenerator(store, synth, sink, time.Second, zap.NewNop())
	for i := 0; i < 50; i++ {
		gen.Tick()
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.messages, 150)
	for _, msg := range sink.messages {
		pids := participants[msg.DialogID]
		assert.Contains(t, []string{pids[0], pids[1]}, msg.SenderID)
	}
}

func TestStart_StopsOnCancel(t *testing.T) {
	synth := newTestSynth()
	store := NewStore(10, 50)
	store.Seed(synth, 1)

	sink := &captureBroadcaster{}
	gen := NewGenerator(store, synth, sink, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	gen.Start(ctx)

	require.Eventually(t, func() bool { return sink.count() > 0 },
		time.Second, time.Millisecond, "generator never ticked")

	cancel()
	time.Sleep(20 * time.Millisecond)
	stopped := sink.count()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, sink.count(), "generator kept ticking after cancel")
}
