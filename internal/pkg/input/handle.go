package input

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/holoplot/go-evdev"
)

// eventReader is the part of *evdev.InputDevice that event reading goes through
type eventReader interface {
	ReadOne() (*evdev.InputEvent, error)
	Close() error
}

// Handle is an opened event device. Reading is done by a single goroutine started on first
// ReadBatch call, events are handed over through a buffered channel.
type Handle struct {
	dev    *evdev.InputDevice
	reader eventReader
	path   string
	name   string
	id     InputID

	grabbed bool

	startOnce  sync.Once
	closeMutex sync.Mutex
	closed     bool
	events     chan evdev.InputEvent
	done       chan struct{}
	err        error // valid once events is closed
}

// Open opens event handler of given device info
func Open(info DeviceInfo) (*Handle, error) {
	path := info.EventPath()
	if path == "" {
		return nil, fmt.Errorf("device %q has no event handler", info.Name)
	}

	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening handler failed: %w", err)
	}

	h := newHandle(dev, info)
	h.dev = dev

	name, err := dev.Name()
	if err == nil && name != "" {
		h.name = strings.Trim(name, "\x00")
	}

	id, err := dev.InputID()
	if err == nil {
		h.id = InputID{Bus: id.BusType, Vendor: id.Vendor, Product: id.Product, Version: id.Version}
	}

	return h, nil
}

func newHandle(reader eventReader, info DeviceInfo) *Handle {
	return &Handle{
		reader: reader,
		path:   info.EventPath(),
		name:   info.Name,
		id:     info.ID,
		events: make(chan evdev.InputEvent, 64),
		done:   make(chan struct{}),
	}
}

func (h *Handle) Name() string {
	return h.name
}

func (h *Handle) Path() string {
	return h.path
}

func (h *Handle) ID() InputID {
	return h.id
}

// AbsInfos returns declared absolute axes with their ranges
func (h *Handle) AbsInfos() (map[evdev.EvCode]evdev.AbsInfo, error) {
	for _, t := range h.dev.CapableTypes() {
		if t == evdev.EV_ABS {
			return h.dev.AbsInfos()
		}
	}
	return map[evdev.EvCode]evdev.AbsInfo{}, nil
}

// Grab takes the device for exclusive usage, it is released on Close
func (h *Handle) Grab() error {
	err := h.dev.Grab()
	if err != nil {
		return err
	}
	h.grabbed = true
	return nil
}

func (h *Handle) read() {
	for {
		event, err := h.reader.ReadOne()
		if err != nil {
			h.err = err
			close(h.events)
			return
		}

		select {
		case h.events <- *event:
		case <-h.done:
			h.err = fmt.Errorf("handle closed")
			close(h.events)
			return
		}
	}
}

// ReadBatch waits up to timeout for at least one event and returns everything that is already
// available. Empty batch with nil error means that timeout elapsed.
func (h *Handle) ReadBatch(timeout time.Duration) ([]evdev.InputEvent, error) {
	h.startOnce.Do(func() { go h.read() })

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var batch []evdev.InputEvent

	select {
	case ev, ok := <-h.events:
		if !ok {
			return nil, h.err
		}
		batch = append(batch, ev)
	case <-timer.C:
		return nil, nil
	}

	for {
		select {
		case ev, ok := <-h.events:
			if !ok {
				return batch, h.err
			}
			batch = append(batch, ev)
		default:
			return batch, nil
		}
	}
}

// Close releases the device, pending ReadBatch calls return with error afterwards
func (h *Handle) Close() error {
	h.closeMutex.Lock()
	defer h.closeMutex.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	close(h.done)

	if h.grabbed {
		_ = h.dev.Ungrab()
	}
	return h.reader.Close()
}
