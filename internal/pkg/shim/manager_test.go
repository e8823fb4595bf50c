package shim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gethiox/padshim/internal/pkg/input"
	"github.com/gethiox/padshim/internal/pkg/logger"
	"github.com/gethiox/padshim/internal/pkg/signals"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	state  signals.Set
	writeN int
}

func newRecorder() *recorder {
	return &recorder{state: signals.Defaults()}
}

func (r *recorder) SetFloat(signal signals.Float, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Floats[signal] = value
	r.writeN++
}

func (r *recorder) SetBool(signal signals.Bool, value bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Bools[signal] = value
	r.writeN++
}

func (r *recorder) snapshot() signals.Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *recorder) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writeN
}

func symmetricAxes() map[evdev.EvCode]evdev.AbsInfo {
	return map[evdev.EvCode]evdev.AbsInfo{
		evdev.ABS_X:     {Minimum: -100, Maximum: 100},
		evdev.ABS_Y:     {Minimum: -100, Maximum: 100},
		evdev.ABS_RX:    {Minimum: -100, Maximum: 100},
		evdev.ABS_RY:    {Minimum: -100, Maximum: 100},
		evdev.ABS_Z:     {Minimum: 0, Maximum: 100},
		evdev.ABS_RZ:    {Minimum: 0, Maximum: 100},
		evdev.ABS_HAT0X: {Minimum: -1, Maximum: 1},
		evdev.ABS_HAT0Y: {Minimum: -1, Maximum: 1},
	}
}

type fakeDevice struct {
	name string
	id   input.InputID
	abs  map[evdev.EvCode]evdev.AbsInfo

	batches chan []evdev.InputEvent
	fail    chan error

	mu      sync.Mutex
	closed  bool
	grabbed bool
}

func newFakeDevice(name string, vendor, product uint16) *fakeDevice {
	return &fakeDevice{
		name:    name,
		id:      input.InputID{Bus: input.BUS_USB, Vendor: vendor, Product: product},
		abs:     symmetricAxes(),
		batches: make(chan []evdev.InputEvent),
		fail:    make(chan error),
	}
}

func (d *fakeDevice) Name() string      { return d.name }
func (d *fakeDevice) ID() input.InputID { return d.id }
func (d *fakeDevice) Path() string      { return "/dev/input/by-id/" + d.name }

func (d *fakeDevice) AbsInfos() (map[evdev.EvCode]evdev.AbsInfo, error) {
	return d.abs, nil
}

func (d *fakeDevice) ReadBatch(timeout time.Duration) ([]evdev.InputEvent, error) {
	select {
	case batch := <-d.batches:
		return batch, nil
	case err := <-d.fail:
		return nil, err
	case <-time.After(timeout):
		return nil, nil
	}
}

func (d *fakeDevice) Grab() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.grabbed = true
	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDevice) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type fakeEnumerator struct {
	mu      sync.Mutex
	devices []*fakeDevice
	scans   int
	opened  int
	onScan  func()
	listErr error
}

func (e *fakeEnumerator) Devices() ([]input.DeviceInfo, error) {
	e.mu.Lock()
	e.scans++
	onScan := e.onScan
	devices := e.devices
	listErr := e.listErr
	e.mu.Unlock()

	if onScan != nil {
		onScan()
	}
	if listErr != nil {
		return nil, listErr
	}

	var infos []input.DeviceInfo
	for i, d := range devices {
		infos = append(infos, input.DeviceInfo{
			ID:       d.id,
			Name:     d.name,
			Handlers: []string{fmt.Sprintf("event%d", i)},
		})
	}
	return infos, nil
}

func (e *fakeEnumerator) Open(info input.DeviceInfo) (Device, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range e.devices {
		if d.name == info.Name {
			e.opened++
			return d, nil
		}
	}
	return nil, errors.New("no such device")
}

func (e *fakeEnumerator) setDevices(devices ...*fakeDevice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.devices = devices
}

func (e *fakeEnumerator) counters() (scans, opened int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scans, e.opened
}

var testOptions = Options{
	ReconnectInterval: time.Millisecond * 10,
	PollTimeout:       time.Millisecond * 5,
	NoLogs:            true,
}

func runManager(m *Manager) (cancel func()) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	return func() {
		cancelCtx()
		<-done
	}
}

func connected(rec *recorder) func() bool {
	return func() bool {
		return rec.snapshot().Bool(signals.Connected)
	}
}

func TestManagerLifecycle(t *testing.T) {
	dev := newFakeDevice("Dummy", 0x2dc8, 0x3106)
	enum := &fakeEnumerator{devices: []*fakeDevice{dev}}
	rec := newRecorder()

	m := NewManager(enum, NewConfig(), rec, testOptions)
	stop := runManager(m)
	defer stop()

	require.Eventually(t, connected(rec), time.Second, time.Millisecond)

	dev.batches <- []evdev.InputEvent{
		{Type: evdev.EV_ABS, Code: evdev.ABS_X, Value: 100},
		{Type: evdev.EV_ABS, Code: evdev.ABS_RZ, Value: 100},
		{Type: evdev.EV_KEY, Code: evdev.BTN_START, Value: 1},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT},
	}

	require.Eventually(t, func() bool {
		return rec.snapshot().Bool(signals.Start)
	}, time.Second, time.Millisecond)

	state := rec.snapshot()
	assert.InDelta(t, 1.0, state.Float(signals.LX), 1e-9)
	assert.InDelta(t, 1.0, state.Float(signals.RT), 1e-9)
	assert.InDelta(t, 1.0, state.Float(signals.JogX), 1e-9)

	// every scan after disconnection has to observe safe defaults
	var (
		scanMu    sync.Mutex
		scanState []signals.Set
	)
	enum.mu.Lock()
	enum.onScan = func() {
		scanMu.Lock()
		defer scanMu.Unlock()
		scanState = append(scanState, rec.snapshot())
	}
	enum.mu.Unlock()
	enum.setDevices()

	dev.fail <- errors.New("no such device")

	require.Eventually(t, func() bool {
		scanMu.Lock()
		defer scanMu.Unlock()
		return len(scanState) >= 2
	}, time.Second, time.Millisecond)

	assert.True(t, dev.isClosed())
	assert.True(t, rec.snapshot().IsDefault())

	scanMu.Lock()
	for i, state := range scanState {
		assert.True(t, state.IsDefault(), "scan %d", i)
	}
	scanMu.Unlock()
}

func TestManagerReconnect(t *testing.T) {
	first := newFakeDevice("First", 0x2dc8, 0x3106)
	enum := &fakeEnumerator{devices: []*fakeDevice{first}}
	rec := newRecorder()

	m := NewManager(enum, NewConfig(), rec, testOptions)
	stop := runManager(m)
	defer stop()

	require.Eventually(t, connected(rec), time.Second, time.Millisecond)

	second := newFakeDevice("Second", 0x2dc8, 0x3106)
	enum.setDevices(second)
	first.fail <- errors.New("read failed")

	second.batches <- []evdev.InputEvent{{Type: evdev.EV_KEY, Code: evdev.BTN_SOUTH, Value: 1}}

	require.Eventually(t, func() bool {
		return rec.snapshot().Bool(signals.A)
	}, time.Second, time.Millisecond)
	assert.True(t, rec.snapshot().Bool(signals.Connected))
	assert.True(t, first.isClosed())
}

func TestManagerFilterMismatch(t *testing.T) {
	dev := newFakeDevice("Dummy", 0x2dc8, 0x3106)
	enum := &fakeEnumerator{devices: []*fakeDevice{dev}}
	rec := newRecorder()

	config := NewConfig()
	config.SetFilter(input.Filter{Vendor: 0x045e})

	m := NewManager(enum, config, rec, testOptions)
	stop := runManager(m)

	require.Eventually(t, func() bool {
		scans, _ := enum.counters()
		return scans >= 3
	}, time.Second, time.Millisecond)
	stop()

	_, opened := enum.counters()
	assert.Equal(t, 0, opened)
	assert.False(t, rec.snapshot().Bool(signals.Connected))
	assert.True(t, rec.snapshot().IsDefault())
}

func TestManagerListingError(t *testing.T) {
	enum := &fakeEnumerator{listErr: errors.New("permission denied")}
	rec := newRecorder()

	m := NewManager(enum, NewConfig(), rec, testOptions)
	_, _, err := m.Discover()
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrDeviceNotFound))

	stop := runManager(m)
	require.Eventually(t, func() bool {
		scans, _ := enum.counters()
		return scans >= 3
	}, time.Second, time.Millisecond)
	stop()

	assert.False(t, rec.snapshot().Bool(signals.Connected))
}

func TestDiscover(t *testing.T) {
	noAxes := newFakeDevice("Keyboard", 0x046d, 0xc31c)
	noAxes.abs = map[evdev.EvCode]evdev.AbsInfo{}
	pad := newFakeDevice("Pad", 0x2dc8, 0x3106)
	other := newFakeDevice("Other pad", 0x045e, 0x028e)

	enum := &fakeEnumerator{devices: []*fakeDevice{noAxes, pad, other}}
	config := NewConfig()
	m := NewManager(enum, config, newRecorder(), testOptions)

	dev, ranges, err := m.Discover()
	require.NoError(t, err)
	assert.Equal(t, "Pad", dev.Name())
	assert.Equal(t, AxisRange{Min: 0, Max: 100}, ranges[evdev.ABS_RZ])
	assert.True(t, noAxes.isClosed())

	config.SetFilter(input.Filter{Vendor: 0x045e, Product: 0x028e})
	dev, _, err = m.Discover()
	require.NoError(t, err)
	assert.Equal(t, "Other pad", dev.Name())

	config.SetFilter(input.Filter{Vendor: 0x1234})
	_, _, err = m.Discover()
	assert.True(t, errors.Is(err, ErrDeviceNotFound))
}

func TestManagerGrab(t *testing.T) {
	dev := newFakeDevice("Dummy", 0x2dc8, 0x3106)
	enum := &fakeEnumerator{devices: []*fakeDevice{dev}}
	rec := newRecorder()

	opts := testOptions
	opts.Grab = true
	m := NewManager(enum, NewConfig(), rec, opts)
	stop := runManager(m)

	require.Eventually(t, connected(rec), time.Second, time.Millisecond)
	stop()

	dev.mu.Lock()
	defer dev.mu.Unlock()
	assert.True(t, dev.grabbed)
	assert.True(t, dev.closed)
}

func TestManagerDeadzoneChangeOnIdle(t *testing.T) {
	dev := newFakeDevice("Dummy", 0x2dc8, 0x3106)
	enum := &fakeEnumerator{devices: []*fakeDevice{dev}}
	rec := newRecorder()
	config := NewConfig()
	require.NoError(t, config.SetDeadzone(0.2))

	m := NewManager(enum, config, rec, testOptions)
	stop := runManager(m)
	defer stop()

	require.Eventually(t, connected(rec), time.Second, time.Millisecond)

	dev.batches <- []evdev.InputEvent{
		{Type: evdev.EV_ABS, Code: evdev.ABS_X, Value: 50},
		{Type: evdev.EV_ABS, Code: evdev.ABS_RZ, Value: 100},
	}
	require.Eventually(t, func() bool {
		return rec.snapshot().Float(signals.JogX) > 0.37
	}, time.Second, time.Millisecond)

	require.NoError(t, config.SetDeadzone(0.6))
	require.Eventually(t, func() bool {
		return rec.snapshot().Float(signals.JogX) == 0
	}, time.Second, time.Millisecond)
}

func TestConnectLogsDevicePath(t *testing.T) {
	dev := newFakeDevice("Dummy", 0x2dc8, 0x3106)
	enum := &fakeEnumerator{devices: []*fakeDevice{dev}}

	opts := testOptions
	opts.NoLogs = false
	m := NewManager(enum, NewConfig(), newRecorder(), opts)

	entries := make(chan map[string]interface{}, 1)
	stop := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			select {
			case msg := <-logger.Messages:
				var entry map[string]interface{}
				if json.Unmarshal(msg, &entry) != nil || entry["msg"] != "Device connected" {
					continue
				}
				select {
				case entries <- entry:
				default:
				}
			case <-stop:
				return
			}
		}
	}()

	cancel := runManager(m)

	var entry map[string]interface{}
	select {
	case entry = <-entries:
	case <-time.After(time.Second):
		t.Fatal("no connection entry logged")
	}
	cancel()
	close(stop)
	<-drained

	assert.Equal(t, "Dummy", entry["device_name"])
	assert.Equal(t, "/dev/input/by-id/Dummy", entry["path"])
	assert.Equal(t, float64(logger.InfoLvl), entry["level"])
}
