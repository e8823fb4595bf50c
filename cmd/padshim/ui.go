package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/awesome-gocui/gocui"
	"github.com/gethiox/padshim/internal/pkg/display"
	"github.com/gethiox/padshim/internal/pkg/logger"
	"github.com/gethiox/padshim/internal/pkg/signals"
	"github.com/gethiox/padshim/internal/pkg/sink"
	"github.com/logrusorgru/aurora"
)

const (
	ViewLogs    = "logs"
	ViewSignals = "signals"
	ViewLCD     = "lcd"
)

const (
	uiRefreshRate = time.Second / 10
	logBufferSize = 512
)

func GetCli() (*gocui.Gui, error) {
	g, err := gocui.NewGui(gocui.Output256, true)
	if err != nil {
		return nil, err
	}

	g.SetManagerFunc(Layout)

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return nil, err
	}

	return g, nil
}

func Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if v, err := g.SetView(ViewSignals, 0, 0, maxX-23, 9, 0); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[Signals]"
		v.Autoscroll = false
		v.Wrap = false
		v.Frame = true
	}

	if v, err := g.SetView(ViewLCD, maxX-22, 0, maxX-1, 5, 0); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[lcd]"
		v.Autoscroll = false
		v.Wrap = true
		v.Frame = true
	}

	if v, err := g.SetView(ViewLogs, 0, 9, maxX-1, maxY-1, gocui.TOP); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[Logs]"
		v.Autoscroll = false
		v.Wrap = false
		v.Frame = true
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

type Feeder struct {
	view     *gocui.View
	au       aurora.Aurora
	logLevel int
}

func NewFeeder(gui *gocui.Gui, viewName string, logLevel int, au aurora.Aurora) (Feeder, error) {
	v, err := gui.View(viewName)
	if err != nil {
		return Feeder{}, err
	}

	return Feeder{view: v, logLevel: logLevel, au: au}, nil
}

func (f *Feeder) Write(data []byte) {
	msg, err := unpack(data)
	if err != nil {
		f.view.Write(data)
		f.view.Write([]byte{'\n'})
		return
	}

	x, _ := f.view.Size()

	s := prepareString(msg, f.au, x, f.logLevel)
	if s != "" {
		f.view.Write([]byte(s))
		f.view.Write([]byte{'\n'})
	}
}

// formatSignals renders signal table rows, floats in the first column and buttons after them
func formatSignals(state signals.Set, au aurora.Aurora) []string {
	var rows []string

	connected := au.Red("scanning").String()
	if state.Bool(signals.Connected) {
		connected = au.Green("connected").String()
	}
	rows = append(rows, fmt.Sprintf("device: %s", connected))

	var floats []string
	for _, f := range signals.Floats {
		floats = append(floats, fmt.Sprintf("%5s %+.3f", f.String(), state.Float(f)))
	}
	for i := 0; i < len(floats); i += 3 {
		end := i + 3
		if end > len(floats) {
			end = len(floats)
		}
		rows = append(rows, strings.Join(floats[i:end], "   "))
	}

	var pressed []string
	for _, b := range signals.Bools {
		if b == signals.Connected {
			continue
		}
		if state.Bool(b) {
			pressed = append(pressed, colorForString(au, b.String()).String())
		} else {
			pressed = append(pressed, au.Gray(8, b.String()).String())
		}
	}
	rows = append(rows, strings.Join(pressed, " "))
	return rows
}

func signalsView(g *gocui.Gui, colors bool, memory *sink.Memory) {
	au := aurora.NewAurora(colors)

	for {
		rows := formatSignals(memory.Snapshot(), au)

		g.Update(func(g *gocui.Gui) error {
			view, err := g.View(ViewSignals)
			if err != nil {
				return nil // not laid out yet
			}

			x, y := view.Size()
			view.Rewind()
			for i := 0; i < y; i++ {
				var row string
				if i < len(rows) {
					row = rows[i]
				}
				freeSpace := x - rawStringLen(row)
				if freeSpace < 0 {
					freeSpace = 0
				}
				view.Write([]byte(row + strings.Repeat(" ", freeSpace)))
				view.Write([]byte{'\n'})
			}
			return nil
		})
		time.Sleep(uiRefreshRate)
	}
}

func logView(g *gocui.Gui, color bool, logLevel int) {
	feeder, err := NewFeeder(g, ViewLogs, logLevel, aurora.NewAurora(color))
	if err != nil {
		panic(err)
	}

	buf := newLogBuffer(logBufferSize)

	var newMessage = make(chan bool, 1)

	go func() {
		for msg := range logger.Messages {
			buf.WriteMessage(msg)
			select {
			case newMessage <- true:
			default:
			}
		}
		close(newMessage)
	}()

	ticker := time.NewTicker(uiRefreshRate)
	defer ticker.Stop()

	var lastX, lastY int
	var dirty bool
	for {
		select {
		case _, ok := <-newMessage:
			if !ok {
				return
			}
			dirty = true
			continue
		case <-ticker.C:
		}

		force := dirty
		dirty = false

		g.Update(func(g *gocui.Gui) error {
			x, y := feeder.view.Size()
			if x == lastX && y == lastY && !force {
				return nil
			}
			lastX, lastY = x, y

			feeder.view.Rewind()
			for _, msg := range buf.ReadLastMessages(y) {
				feeder.Write(msg)
			}
			return nil
		})
	}
}

func lcdView(g *gocui.Gui, dd <-chan display.DisplayData) {
	for data := range dd {
		lines := data.Lines
		g.Update(func(g *gocui.Gui) error {
			view, err := g.View(ViewLCD)
			if err != nil {
				return nil
			}

			view.Rewind()
			for _, s := range lines {
				view.Write([]byte(s))
				view.Write([]byte{'\n'})
			}
			return nil
		})
	}
}
