package shim

import (
	"github.com/gethiox/padshim/internal/pkg/signals"
)

// stickState keeps the latest calibrated values that jog outputs are computed from,
// Y axes are already inverted.
type stickState struct {
	lx, ly, ry float64
	rt         float64
}

// Session holds everything that lives as long as one device connection:
// the device itself, its axis ranges and the last known stick state.
// It also mirrors every published value.
type Session struct {
	config *Config
	sink   signals.Sink

	device Device
	ranges AxisRangeTable
	sticks stickState
	state  signals.Set
}

func newSession(config *Config, sink signals.Sink) *Session {
	return &Session{
		config: config,
		sink:   sink,
		ranges: AxisRangeTable{},
		state:  signals.Defaults(),
	}
}

// State returns a copy of every value published so far
func (s *Session) State() signals.Set {
	return s.state
}

func (s *Session) setFloat(signal signals.Float, value float64) {
	s.state.Floats[signal] = value
	s.sink.SetFloat(signal, value)
}

func (s *Session) setBool(signal signals.Bool, value bool) {
	s.state.Bools[signal] = value
	s.sink.SetBool(signal, value)
}

// attach binds opened device to the session and marks connection as established
func (s *Session) attach(device Device, ranges AxisRangeTable) {
	s.device = device
	s.ranges = ranges
	s.sticks = stickState{}
	s.setBool(signals.Connected, true)
}

// reset drops the device reference and asserts safe defaults on every signal
func (s *Session) reset() {
	s.device = nil
	s.ranges = AxisRangeTable{}
	s.sticks = stickState{}

	defaults := signals.Defaults()
	s.state = defaults
	defaults.Publish(s.sink)
}

// updateJog recomputes jog outputs with the current deadzone
func (s *Session) updateJog() {
	deadzone := s.config.Deadzone()
	jog := MixJog(
		ApplyDeadzone(s.sticks.lx, deadzone),
		ApplyDeadzone(s.sticks.ly, deadzone),
		ApplyDeadzone(s.sticks.ry, deadzone),
		s.sticks.rt,
	)
	s.setFloat(signals.JogX, jog.X)
	s.setFloat(signals.JogY, jog.Y)
	s.setFloat(signals.JogZ, jog.Z)
}
