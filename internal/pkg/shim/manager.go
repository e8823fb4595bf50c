package shim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gethiox/padshim/internal/pkg/input"
	"github.com/gethiox/padshim/internal/pkg/logger"
	"github.com/gethiox/padshim/internal/pkg/signals"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

var (
	ErrDeviceNotFound = errors.New("no matching device found")
)

const (
	DefaultReconnectInterval = time.Second
	DefaultPollTimeout       = time.Millisecond * 100
)

// Device is an opened input device
type Device interface {
	Name() string
	ID() input.InputID
	AbsInfos() (map[evdev.EvCode]evdev.AbsInfo, error)
	// ReadBatch waits up to timeout for events, empty batch with nil error means timeout
	ReadBatch(timeout time.Duration) ([]evdev.InputEvent, error)
	Close() error
}

// Enumerator lists connectable devices and opens them
type Enumerator interface {
	Devices() ([]input.DeviceInfo, error)
	Open(info input.DeviceInfo) (Device, error)
}

type grabber interface {
	Grab() error
}

type pather interface {
	Path() string
}

type Options struct {
	ReconnectInterval time.Duration
	PollTimeout       time.Duration
	Grab              bool // exclusive usage of selected device
	NoLogs            bool // skips producing most of the log entries
}

// Manager owns device discovery and the connection lifecycle.
// It cycles between scanning and connected states until context is cancelled.
type Manager struct {
	enumerator Enumerator
	config     *Config
	session    *Session

	reconnectInterval time.Duration
	pollTimeout       time.Duration
	grab              bool
	noLogs            bool
}

func NewManager(enumerator Enumerator, config *Config, sink signals.Sink, opts Options) *Manager {
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = DefaultReconnectInterval
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}

	return &Manager{
		enumerator:        enumerator,
		config:            config,
		session:           newSession(config, sink),
		reconnectInterval: opts.ReconnectInterval,
		pollTimeout:       opts.PollTimeout,
		grab:              opts.Grab,
		noLogs:            opts.NoLogs,
	}
}

func (m *Manager) debug(msg string, fields ...zap.Field) {
	if m.noLogs {
		return
	}
	log.Info(msg, append(fields, logger.Debug)...)
}

// Discover returns the first device matching current filter that exposes absolute axes,
// together with its axis ranges.
func (m *Manager) Discover() (Device, AxisRangeTable, error) {
	infos, err := m.enumerator.Devices()
	if err != nil {
		return nil, nil, fmt.Errorf("listing devices failed: %w", err)
	}

	filter := m.config.Filter()

	for _, info := range infos {
		if !filter.Match(info.ID) {
			continue
		}
		if len(info.Bitmaps.EV) > 0 && !info.HasAbs() {
			continue
		}

		dev, err := m.enumerator.Open(info)
		if err != nil {
			m.debug(fmt.Sprintf("skipping device, open failed: %v", err), zap.String("device_name", info.Name))
			continue
		}

		if !filter.Match(dev.ID()) {
			_ = dev.Close()
			continue
		}

		absInfos, err := dev.AbsInfos()
		if err != nil || len(absInfos) == 0 {
			m.debug("skipping device, no absolute axes", zap.String("device_name", dev.Name()))
			_ = dev.Close()
			continue
		}

		return dev, NewAxisRangeTable(absInfos), nil
	}

	return nil, nil, ErrDeviceNotFound
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Run is the polling loop, it returns when context is done
func (m *Manager) Run(ctx context.Context) {
	m.debug("Run session manager", zap.String("filter", m.config.Filter().String()))
	m.session.reset()

	var scanningLogged bool

root:
	for {
		select {
		case <-ctx.Done():
			break root
		default:
			break
		}

		dev, ranges, err := m.Discover()
		if err != nil {
			if !errors.Is(err, ErrDeviceNotFound) && !m.noLogs {
				log.Info(fmt.Sprintf("device discovery failed: %v", err), logger.Warning)
			}
			if !scanningLogged {
				m.debug("Waiting for device...", zap.String("filter", m.config.Filter().String()))
				scanningLogged = true
			}
			if !sleep(ctx, m.reconnectInterval) {
				break root
			}
			continue
		}
		scanningLogged = false

		if m.grab {
			if g, ok := dev.(grabber); ok {
				err := g.Grab()
				if err != nil && !m.noLogs {
					log.Info(fmt.Sprintf("grabbing device failed: %v", err), zap.String("device_name", dev.Name()), logger.Warning)
				}
			}
		}

		m.session.attach(dev, ranges)
		if !m.noLogs {
			fields := []zap.Field{
				zap.String("device_name", dev.Name()),
				zap.String("device_id", dev.ID().String()),
				zap.Int("axes", len(ranges)),
				logger.Info,
			}
			if p, ok := dev.(pather); ok {
				fields = append(fields, zap.String("path", p.Path()))
			}
			log.Info("Device connected", fields...)
		}

		err = m.serve(ctx)

		closeErr := dev.Close()
		if closeErr != nil {
			m.debug(fmt.Sprintf("device close failed: %v", closeErr), zap.String("device_name", dev.Name()))
		}

		if err == nil { // context done
			break root
		}

		m.session.reset()
		if !m.noLogs {
			log.Info(fmt.Sprintf("Device disconnected: %v", err), zap.String("device_name", dev.Name()), logger.Info)
		}

		if !sleep(ctx, m.reconnectInterval) {
			break root
		}
	}

	m.debug("Exit session manager")
}

// serve processes events of attached device, returns read error or nil when context is done
func (m *Manager) serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			break
		}

		batch, err := m.session.device.ReadBatch(m.pollTimeout)
		for i := range batch {
			ev := &batch[i]
			if !m.noLogs && ev.Type != evdev.EV_SYN {
				log.Info(ev.String(), zap.String("device_name", m.session.device.Name()), logger.Device)
			}
			m.session.processEvent(ev)
		}
		if err != nil {
			return err
		}

		if len(batch) == 0 {
			// idle tick, deadzone may have been changed in the meantime
			m.session.updateJog()
		}
	}
}
