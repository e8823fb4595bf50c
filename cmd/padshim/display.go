package main

import (
	"context"
	"sync"
	"time"

	"github.com/gethiox/padshim/internal/pkg/display"
	"github.com/gethiox/padshim/internal/pkg/sink"
)

// GenerateDisplayData renders current signal values at the screen update rate,
// an exit message is sent right before the channel is closed
func GenerateDisplayData(ctx context.Context, wg *sync.WaitGroup, cfg display.ScreenConfig, memory *sink.Memory) <-chan display.DisplayData {
	data := make(chan display.DisplayData)

	rate := cfg.UpdateRate
	if rate <= 0 {
		rate = 1
	}
	interval := time.Second / time.Duration(rate)
	width, rows := cfg.Size()

	go func() {
		defer wg.Done()
		defer close(data)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

	root:
		for {
			select {
			case data <- display.DisplayData{Lines: display.StatusLines(memory.Snapshot(), width, rows)}:
			case <-ctx.Done():
				break root
			}

			select {
			case <-ctx.Done():
				break root
			case <-ticker.C:
				break
			}
		}

		data <- display.DisplayData{
			Lines:   display.ExitLines(cfg),
			LastMsg: true,
		}
	}()

	return data
}

func FanOut[T any](input <-chan T) (<-chan T, <-chan T) {
	size := cap(input)
	if size == 0 {
		// at least size of 1 to prevent from output channels blocking by each other
		size = 1
	}
	var output1 = make(chan T, size)
	var output2 = make(chan T, size)

	go func() {
		for v := range input {
			output1 <- v
			output2 <- v
		}
		close(output1)
		close(output2)
	}()
	return output1, output2
}
