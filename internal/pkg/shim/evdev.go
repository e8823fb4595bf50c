package shim

import (
	"github.com/gethiox/padshim/internal/pkg/input"
)

// EvdevEnumerator discovers devices listed in /proc/bus/input/devices
// and opens their event handlers.
type EvdevEnumerator struct{}

func (EvdevEnumerator) Devices() ([]input.DeviceInfo, error) {
	return input.GetHandlers()
}

func (EvdevEnumerator) Open(info input.DeviceInfo) (Device, error) {
	h, err := input.Open(info)
	if err != nil {
		return nil, err
	}
	return h, nil
}
