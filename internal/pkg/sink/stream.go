package sink

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/gethiox/padshim/internal/pkg/logger"
	"github.com/gethiox/padshim/internal/pkg/signals"
)

// Stream writes values as "name value" lines, every signal is written on its first
// publication and then only when it changes. Writing stops after the first error.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	floats map[signals.Float]float64
	bools  map[signals.Bool]bool
	err    error
	noLogs bool
}

func NewStream(w io.Writer, noLogs bool) *Stream {
	return &Stream{
		w:      w,
		floats: make(map[signals.Float]float64),
		bools:  make(map[signals.Bool]bool),
		noLogs: noLogs,
	}
}

func (s *Stream) write(name, value string) {
	if s.err != nil {
		return
	}
	_, err := fmt.Fprintf(s.w, "%s %s\n", name, value)
	if err != nil {
		s.err = err
		if !s.noLogs {
			log.Info(fmt.Sprintf("stream output failed, no more values will be written: %v", err), logger.Warning)
		}
	}
}

func (s *Stream) SetFloat(signal signals.Float, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.floats[signal]
	if ok && last == value {
		return
	}
	s.floats[signal] = value
	s.write(signal.String(), strconv.FormatFloat(value, 'f', -1, 64))
}

func (s *Stream) SetBool(signal signals.Bool, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.bools[signal]
	if ok && last == value {
		return
	}
	s.bools[signal] = value
	s.write(signal.String(), strconv.FormatBool(value))
}

// Err returns the write error that stopped the stream
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
