package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chatsim/internal/observability"
)

// Broadcaster receives every newly generated message. The websocket hub
// implements it; tests substitute their own.
type Broadcaster interface {
	Broadcast(msg Message)
}

// Generator advances every dialog by one synthetic message per tick. Ticks
// are wall-clock scheduled with no catch-up for missed intervals.
type Generator struct {
	store       *Store
	synth       *Synthesizer
	broadcaster Broadcaster
	interval    time.Duration
	log         *zap.Logger
}

func NewGenerator(store *Store, synth *Synthesizer, broadcaster Broadcaster, interval time.Duration, log *zap.Logger) *Generator {
	return &Generator{
		store:       store,
		synth:       synth,
		broadcaster: broadcaster,
		interval:    interval,
		log:         log,
	}
}

// Start runs the tick loop until ctx is cancelled.
func (g *Generator) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()

		g.log.Info("traffic generator started", zap.Duration("interval", g.interval))
		for {
			select {
			case <-ticker.C:
				g.Tick()
			case <-ctx.Done():
				g.log.Info("traffic generator stopped")
				return
			}
		}
	}()
}

// Tick advances each dialog currently in the store by one message: a sender
// is picked uniformly from the dialog's two participants, the message is
// appended and then handed to the broadcaster.
func (g *Generator) Tick() {
	for _, d := range g.store.Dialogs() {
		sender := d.ParticipantIDs[g.synth.PickIndex(2)]
		msg := g.synth.Synthesize(d.ID, sender)

		if err := g.store.AppendMessage(msg); err != nil {
			// Only possible if the dialog vanished mid-tick; the store
			// never deletes, so log and move on.
			g.log.Warn("append failed", zap.String("dialog_id", d.ID), zap.Error(err))
			continue
		}
		observability.MessagesGeneratedTotal.WithLabelValues(string(msg.Type)).Inc()
		g.broadcaster.Broadcast(msg)
	}
}
