package shim

import (
	"fmt"

	"github.com/gethiox/padshim/internal/pkg/input"
	"go.uber.org/atomic"
)

const DefaultDeadzone = 0.15

// Config keeps parameters that may be changed by external writers at any time,
// the session reads them on every scaling operation (last write wins).
type Config struct {
	deadzone *atomic.Float64
	vendor   *atomic.Uint32
	product  *atomic.Uint32
}

func NewConfig() *Config {
	return &Config{
		deadzone: atomic.NewFloat64(DefaultDeadzone),
		vendor:   atomic.NewUint32(0),
		product:  atomic.NewUint32(0),
	}
}

func (c *Config) Deadzone() float64 {
	return c.deadzone.Load()
}

// SetDeadzone accepts fraction of full scale in 0.0 - 1.0 (exclusive) range,
// previous value stays intact otherwise.
func (c *Config) SetDeadzone(deadzone float64) error {
	if !(deadzone >= 0 && deadzone < 1) {
		return fmt.Errorf("deadzone out of range [0, 1): %v", deadzone)
	}
	c.deadzone.Store(deadzone)
	return nil
}

func (c *Config) Filter() input.Filter {
	return input.Filter{
		Vendor:  uint16(c.vendor.Load()),
		Product: uint16(c.product.Load()),
	}
}

func (c *Config) SetFilter(f input.Filter) {
	c.vendor.Store(uint32(f.Vendor))
	c.product.Store(uint32(f.Product))
}
