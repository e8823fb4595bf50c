package web

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gethiox/padshim/internal/pkg/logger"
	"github.com/gethiox/padshim/internal/pkg/signals"
	"go.uber.org/atomic"
)

const DefaultSyncInterval = 5 * time.Second

// Source provides the current signal values and announces their changes.
// Changes is expected to have a single consumer.
type Source interface {
	Snapshot() signals.Set
	Changes() <-chan struct{}
}

// Message is sent to websocket clients, it always carries every signal
type Message struct {
	Type      string      `json:"type"` // "full"
	Seq       int64       `json:"seq"`
	Timestamp int64       `json:"timestamp"` // unix milliseconds
	Data      signals.Set `json:"data"`
}

// Broadcaster pushes snapshots to the hub on every change and periodically
type Broadcaster struct {
	hub          *Hub
	source       Source
	syncInterval time.Duration
	seq          *atomic.Int64
	noLogs       bool
}

func NewBroadcaster(hub *Hub, source Source, syncInterval time.Duration, noLogs bool) *Broadcaster {
	if syncInterval <= 0 {
		syncInterval = DefaultSyncInterval
	}
	return &Broadcaster{
		hub:          hub,
		source:       source,
		syncInterval: syncInterval,
		seq:          atomic.NewInt64(0),
		noLogs:       noLogs,
	}
}

func (b *Broadcaster) message() ([]byte, error) {
	msg := Message{
		Type:      "full",
		Seq:       b.seq.Inc(),
		Timestamp: time.Now().UnixMilli(),
		Data:      b.source.Snapshot(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshaling message failed: %w", err)
	}
	return data, nil
}

func (b *Broadcaster) broadcast() {
	data, err := b.message()
	if err != nil {
		if !b.noLogs {
			log.Info(err.Error(), logger.Error)
		}
		return
	}
	b.hub.Broadcast(data)
}

// sendInitial sends current state to a freshly connected client
func (b *Broadcaster) sendInitial(c *client) {
	data, err := b.message()
	if err != nil {
		if !b.noLogs {
			log.Info(err.Error(), logger.Error)
		}
		return
	}
	b.hub.send(c, data)
}

// Run broadcasts until ctx is done
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.source.Changes():
			b.broadcast()
		case <-ticker.C:
			b.broadcast()
		}
	}
}
