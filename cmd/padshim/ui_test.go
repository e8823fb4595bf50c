package main

import (
	"strings"
	"testing"
	"time"

	"github.com/awesome-gocui/gocui"
	"github.com/gethiox/padshim/internal/pkg/display"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// viewBuffer reads view content from within the gui loop
func viewBuffer(g *gocui.Gui, name string) string {
	out := make(chan string, 1)
	g.Update(func(g *gocui.Gui) error {
		v, err := g.View(name)
		if err != nil {
			out <- ""
			return nil
		}
		out <- v.Buffer()
		return nil
	})

	select {
	case s := <-out:
		return s
	case <-time.After(time.Second):
		return ""
	}
}

func TestLcdView(t *testing.T) {
	g, err := gocui.NewGui(gocui.OutputSimulator, true)
	require.NoError(t, err)
	g.SetManagerFunc(Layout)

	screen := g.GetTestingScreen()
	cleanup := screen.StartGui()
	defer cleanup()

	dd := make(chan display.DisplayData)
	done := make(chan struct{})
	go func() {
		lcdView(g, dd)
		close(done)
	}()

	dd <- display.DisplayData{Lines: [4]string{"connected", "jog-x 0.19", "", ""}}
	close(dd)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lcdView did not return after channel close")
	}

	require.Eventually(t, func() bool {
		return strings.Contains(viewBuffer(g, ViewLCD), "jog-x 0.19")
	}, time.Second, time.Millisecond*10)

	assert.Contains(t, viewBuffer(g, ViewLCD), "connected")
}
