package sink

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gethiox/padshim/internal/pkg/logger"
	"github.com/gethiox/padshim/internal/pkg/signals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	assert.True(t, m.Snapshot().IsDefault())

	m.SetFloat(signals.JogX, 0.1875)
	m.SetBool(signals.Connected, true)

	select {
	case <-m.Changes():
	default:
		t.Fatal("change not announced")
	}

	// notifications are coalesced
	select {
	case <-m.Changes():
		t.Fatal("unexpected second notification")
	default:
	}

	state := m.Snapshot()
	assert.Equal(t, 0.1875, state.Float(signals.JogX))
	assert.True(t, state.Bool(signals.Connected))

	m.SetFloat(signals.JogX, 0.1875)
	select {
	case <-m.Changes():
		t.Fatal("unchanged value announced")
	default:
	}
}

func TestMulti(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	multi := Multi{a, b}

	multi.SetFloat(signals.LT, 0.5)
	multi.SetBool(signals.Up, true)

	for _, m := range []*Memory{a, b} {
		state := m.Snapshot()
		assert.Equal(t, 0.5, state.Float(signals.LT))
		assert.True(t, state.Bool(signals.Up))
	}
}

func TestStream(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, true)

	defaults := signals.Defaults()
	defaults.Publish(s)
	s.SetFloat(signals.LX, 0)
	s.SetFloat(signals.JogX, 0.1875)
	s.SetFloat(signals.JogX, 0.1875)
	s.SetBool(signals.Connected, true)

	expected := "lx 0\nly 0\nrx 0\nry 0\nlt 0\nrt 0\njog-x 0\njog-y 0\njog-z 0\n" +
		"connected false\na false\nb false\nx false\ny false\nlb false\nrb false\nback false\nstart false\n" +
		"ls false\nrs false\nup false\ndown false\nleft false\nright false\n" +
		"jog-x 0.1875\nconnected true\n"
	assert.Equal(t, expected, buf.String())
	assert.NoError(t, s.Err())
}

type failingWriter struct {
	writes int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("broken pipe")
}

func TestStreamError(t *testing.T) {
	w := &failingWriter{}
	s := NewStream(w, true)

	s.SetFloat(signals.LX, 1)
	s.SetFloat(signals.LY, 1)
	assert.Error(t, s.Err())
	assert.Equal(t, 1, w.writes)
}

func readMessage(t *testing.T) map[string]interface{} {
	select {
	case msg := <-logger.Messages:
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &entry))
		return entry
	case <-time.After(time.Millisecond * 100):
		t.Fatal("no log entry")
	}
	return nil
}

func TestLog(t *testing.T) {
	l := NewLog()

	l.SetFloat(signals.LX, 0)
	select {
	case <-logger.Messages:
		t.Fatal("unchanged value logged")
	default:
	}

	l.SetFloat(signals.JogY, -0.5)
	entry := readMessage(t)
	assert.Equal(t, "jog-y", entry["signal"])
	assert.Equal(t, -0.5, entry["value"])
	assert.Equal(t, float64(logger.SignalsLvl), entry["level"])

	l.SetBool(signals.Connected, true)
	entry = readMessage(t)
	assert.Equal(t, true, entry["connected"])
	assert.Equal(t, float64(logger.InfoLvl), entry["level"])
}
