package sink

import "github.com/gethiox/padshim/internal/pkg/signals"

// Multi fans out every write to all of its sinks, in order
type Multi []signals.Sink

func (m Multi) SetFloat(signal signals.Float, value float64) {
	for _, s := range m {
		s.SetFloat(signal, value)
	}
}

func (m Multi) SetBool(signal signals.Bool, value bool) {
	for _, s := range m {
		s.SetBool(signal, value)
	}
}
