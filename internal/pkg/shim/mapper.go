package shim

import (
	"github.com/gethiox/padshim/internal/pkg/signals"
	"github.com/holoplot/go-evdev"
)

// ButtonMap translates key codes into discrete signals, other keys are ignored
var ButtonMap = map[evdev.EvCode]signals.Bool{
	evdev.BTN_SOUTH:  signals.A,
	evdev.BTN_EAST:   signals.B,
	evdev.BTN_NORTH:  signals.X,
	evdev.BTN_WEST:   signals.Y,
	evdev.BTN_TL:     signals.LB,
	evdev.BTN_TR:     signals.RB,
	evdev.BTN_SELECT: signals.Back,
	evdev.BTN_START:  signals.Start,
	evdev.BTN_THUMBL: signals.LS,
	evdev.BTN_THUMBR: signals.RS,
}

// HatDirections is a pair of mutually exclusive signals driven by a single hat axis
type HatDirections struct {
	Negative, Positive signals.Bool
}

var HatMap = map[evdev.EvCode]HatDirections{
	evdev.ABS_HAT0X: {Negative: signals.Left, Positive: signals.Right},
	evdev.ABS_HAT0Y: {Negative: signals.Up, Positive: signals.Down},
}

func (s *Session) handleABSEvent(ev *evdev.InputEvent) {
	switch ev.Code {
	case evdev.ABS_X:
		value := s.ranges.ScaleAxis(ev.Code, ev.Value)
		s.sticks.lx = value
		s.setFloat(signals.LX, value)
	case evdev.ABS_Y:
		value := -s.ranges.ScaleAxis(ev.Code, ev.Value)
		s.sticks.ly = value
		s.setFloat(signals.LY, value)
	case evdev.ABS_RX:
		s.setFloat(signals.RX, s.ranges.ScaleAxis(ev.Code, ev.Value))
	case evdev.ABS_RY:
		value := -s.ranges.ScaleAxis(ev.Code, ev.Value)
		s.sticks.ry = value
		s.setFloat(signals.RY, value)
	case evdev.ABS_Z:
		s.setFloat(signals.LT, s.ranges.ScaleTrigger(ev.Code, ev.Value))
	case evdev.ABS_RZ:
		value := s.ranges.ScaleTrigger(ev.Code, ev.Value)
		s.sticks.rt = value
		s.setFloat(signals.RT, value)
	default:
		hat, ok := HatMap[ev.Code]
		if ok {
			// neutral clears both directions
			s.setBool(hat.Negative, ev.Value < 0)
			s.setBool(hat.Positive, ev.Value > 0)
		}
	}

	s.updateJog()
}

func (s *Session) handleKEYEvent(ev *evdev.InputEvent) {
	signal, ok := ButtonMap[ev.Code]
	if !ok {
		return
	}
	s.setBool(signal, ev.Value != 0)
}

// processEvent decodes a single device event into signal updates
func (s *Session) processEvent(ev *evdev.InputEvent) {
	switch ev.Type {
	case evdev.EV_ABS:
		s.handleABSEvent(ev)
	case evdev.EV_KEY:
		s.handleKEYEvent(ev)
	}
}
