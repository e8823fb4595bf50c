package sink

import (
	"github.com/gethiox/padshim/internal/pkg/logger"
	"github.com/gethiox/padshim/internal/pkg/signals"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Log produces a log entry for every changed value.
// It is meant to be written from a single goroutine.
type Log struct {
	last signals.Set
}

func NewLog() *Log {
	return &Log{last: signals.Defaults()}
}

func (l *Log) SetFloat(signal signals.Float, value float64) {
	if l.last.Floats[signal] == value {
		return
	}
	l.last.Floats[signal] = value
	log.Info("float", zap.String("signal", signal.String()), zap.Float64("value", value), logger.Signals)
}

func (l *Log) SetBool(signal signals.Bool, value bool) {
	if l.last.Bools[signal] == value {
		return
	}
	l.last.Bools[signal] = value

	if signal == signals.Connected {
		log.Info("connection status", zap.Bool("connected", value), logger.Info)
		return
	}
	log.Info("bool", zap.String("signal", signal.String()), zap.Bool("value", value), logger.Signals)
}
