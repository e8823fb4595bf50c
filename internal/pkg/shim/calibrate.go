package shim

import (
	"math"

	"github.com/holoplot/go-evdev"
)

// AxisRange holds raw bounds declared by the device for one absolute axis
type AxisRange struct {
	Min, Max int32
}

// AxisRangeTable maps absolute axes to their declared bounds.
// It is rebuilt on every device acquisition.
type AxisRangeTable map[evdev.EvCode]AxisRange

func NewAxisRangeTable(infos map[evdev.EvCode]evdev.AbsInfo) AxisRangeTable {
	var table = make(AxisRangeTable, len(infos))
	for code, info := range infos {
		table[code] = AxisRange{Min: info.Minimum, Max: info.Maximum}
	}
	return table
}

func (t AxisRangeTable) lookup(code evdev.EvCode) (lo, hi float64, ok bool) {
	r, ok := t[code]
	if !ok || r.Min == r.Max {
		return 0, 0, false
	}
	return float64(r.Min), float64(r.Max), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ScaleAxis converts raw value into -1.0 - 1.0 range (bipolar stick axis).
// Readings outside declared bounds are clamped, unknown axis or degenerate range gives 0.
func (t AxisRangeTable) ScaleAxis(code evdev.EvCode, raw int32) float64 {
	lo, hi, ok := t.lookup(code)
	if !ok {
		return 0
	}
	return clamp(2.0*(float64(raw)-lo)/(hi-lo)-1.0, -1, 1)
}

// ScaleTrigger converts raw value into 0.0 - 1.0 range (unipolar trigger).
// Readings outside declared bounds are clamped, unknown axis or degenerate range gives 0.
func (t AxisRangeTable) ScaleTrigger(code evdev.EvCode, raw int32) float64 {
	lo, hi, ok := t.lookup(code)
	if !ok {
		return 0
	}
	return clamp((float64(raw)-lo)/(hi-lo), 0, 1)
}
