package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/gethiox/padshim/internal/pkg/signals"
)

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// fit pads or truncates s to exactly width characters
func fit(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// bar renders magnitude of value (0.0 - 1.0) as a horizontal meter of given width,
// last cell shows the remainder with a partial block
func bar(value float64, width int) string {
	if width <= 0 {
		return ""
	}
	value = math.Min(math.Abs(value), 1)

	cells := value * float64(width)
	full := int(cells)

	var sb strings.Builder
	sb.WriteString(strings.Repeat(string(blocks[7]), full))
	if full < width {
		remainder := cells - float64(full)
		if level := int(remainder * 8); level > 0 {
			sb.WriteRune(blocks[level-1])
			full++
		}
	}
	sb.WriteString(strings.Repeat(" ", width-full))
	return sb.String()
}

var jogAxes = []struct {
	label  string
	signal signals.Float
}{
	{"x", signals.JogX},
	{"y", signals.JogY},
	{"z", signals.JogZ},
}

// StatusLines renders connection state and jog outputs for a screen of given size
func StatusLines(state signals.Set, width, rows int) [4]string {
	var lines [4]string

	rt := state.Float(signals.RT)

	if rows < 4 {
		status := "no pad"
		if state.Bool(signals.Connected) {
			status = "ready"
		}
		lines[0] = fit(fmt.Sprintf("%-7s rt %4.2f", status, rt), width)
		lines[1] = fit(fmt.Sprintf("%+4.1f %+4.1f %+4.1f",
			state.Float(signals.JogX), state.Float(signals.JogY), state.Float(signals.JogZ),
		), width)
		return lines
	}

	status := "scanning"
	if state.Bool(signals.Connected) {
		status = "connected"
	}
	lines[0] = fit(fmt.Sprintf("%-10s rt %5.2f", status, rt), width)

	for i, axis := range jogAxes {
		value := state.Float(axis.signal)
		prefix := fmt.Sprintf("%s %+6.3f ", axis.label, value)
		lines[i+1] = prefix + bar(value, width-len(prefix))
	}
	return lines
}

// ExitLines returns configured exit message or a default one
func ExitLines(cfg ScreenConfig) [4]string {
	width, _ := cfg.Size()

	var lines [4]string
	if cfg.HaveExitMessage() {
		for i, msg := range cfg.ExitMessage {
			lines[i] = fit(msg, width)
		}
		return lines
	}

	for i := range lines {
		lines[i] = fit("", width)
	}
	msg := "padshim stopped"
	lines[0] = fit(fmt.Sprintf("%*s", (width+len(msg))/2, msg), width)
	return lines
}
