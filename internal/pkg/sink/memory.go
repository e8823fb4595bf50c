package sink

import (
	"sync"

	"github.com/gethiox/padshim/internal/pkg/signals"
)

// Memory keeps the latest published values and is safe for concurrent use.
// Every change is announced on Changes, notifications are coalesced.
type Memory struct {
	mu      sync.RWMutex
	state   signals.Set
	changes chan struct{}
}

func NewMemory() *Memory {
	return &Memory{
		state:   signals.Defaults(),
		changes: make(chan struct{}, 1),
	}
}

func (m *Memory) notify() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

func (m *Memory) SetFloat(signal signals.Float, value float64) {
	m.mu.Lock()
	if m.state.Floats[signal] == value {
		m.mu.Unlock()
		return
	}
	m.state.Floats[signal] = value
	m.mu.Unlock()
	m.notify()
}

func (m *Memory) SetBool(signal signals.Bool, value bool) {
	m.mu.Lock()
	if m.state.Bools[signal] == value {
		m.mu.Unlock()
		return
	}
	m.state.Bools[signal] = value
	m.mu.Unlock()
	m.notify()
}

func (m *Memory) Snapshot() signals.Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Memory) Changes() <-chan struct{} {
	return m.changes
}
