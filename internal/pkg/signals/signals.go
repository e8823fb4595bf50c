package signals

import (
	"bytes"
	"fmt"
	"strconv"
)

// Float is a continuous output value.
type Float int

// Bool is a discrete output value.
type Bool int

const (
	LX Float = iota // left stick, -1.0 - 1.0
	LY
	RX
	RY
	LT // left trigger, 0.0 - 1.0
	RT
	JogX // stick * right trigger, -1.0 - 1.0
	JogY
	JogZ

	floatCount
)

const (
	Connected Bool = iota
	A
	B
	X
	Y
	LB
	RB
	Back
	Start
	LS // left stick click
	RS
	Up
	Down
	Left
	Right

	boolCount
)

var floatNames = [floatCount]string{
	LX:   "lx",
	LY:   "ly",
	RX:   "rx",
	RY:   "ry",
	LT:   "lt",
	RT:   "rt",
	JogX: "jog-x",
	JogY: "jog-y",
	JogZ: "jog-z",
}

var boolNames = [boolCount]string{
	Connected: "connected",
	A:         "a",
	B:         "b",
	X:         "x",
	Y:         "y",
	LB:        "lb",
	RB:        "rb",
	Back:      "back",
	Start:     "start",
	LS:        "ls",
	RS:        "rs",
	Up:        "up",
	Down:      "down",
	Left:      "left",
	Right:     "right",
}

// Floats lists every continuous signal in publishing order.
var Floats = []Float{LX, LY, RX, RY, LT, RT, JogX, JogY, JogZ}

// Bools lists every discrete signal in publishing order.
var Bools = []Bool{Connected, A, B, X, Y, LB, RB, Back, Start, LS, RS, Up, Down, Left, Right}

func (f Float) String() string {
	if f < 0 || f >= floatCount {
		return fmt.Sprintf("float(%d)", int(f))
	}
	return floatNames[f]
}

func (b Bool) String() string {
	if b < 0 || b >= boolCount {
		return fmt.Sprintf("bool(%d)", int(b))
	}
	return boolNames[b]
}

// Sink receives published values. Writes are fire-and-forget.
type Sink interface {
	SetFloat(signal Float, value float64)
	SetBool(signal Bool, value bool)
}

// Set is a snapshot of every signal. The zero value holds the safe defaults.
type Set struct {
	Floats [floatCount]float64
	Bools  [boolCount]bool
}

// Defaults returns the all-zero/false state asserted whenever no device is connected.
func Defaults() Set {
	return Set{}
}

func (s Set) Float(signal Float) float64 {
	return s.Floats[signal]
}

func (s Set) Bool(signal Bool) bool {
	return s.Bools[signal]
}

// IsDefault tells if every signal holds its safe default.
func (s Set) IsDefault() bool {
	return s == Defaults()
}

// Publish writes every signal of the set into the sink.
func (s Set) Publish(sink Sink) {
	for _, f := range Floats {
		sink.SetFloat(f, s.Floats[f])
	}
	for _, b := range Bools {
		sink.SetBool(b, s.Bools[b])
	}
}

// MarshalJSON encodes the set as a flat object keyed by signal names, in publishing order.
func (s Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range Floats {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(f.String()))
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(s.Floats[f], 'f', -1, 64))
	}
	for _, b := range Bools {
		buf.WriteByte(',')
		buf.WriteString(strconv.Quote(b.String()))
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatBool(s.Bools[b]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
