package input

// Related things to separate handlers that comes from /proc/bus/input/devices

import (
	"fmt"
	"strings"

	"github.com/holoplot/go-evdev"
)

// DeviceInfo contains information of every reported event device
// it is supposed to be created by unmarshal function only
type DeviceInfo struct {
	ID       InputID  // ID of the device
	Name     string   // name of the device
	Phys     string   // physical path to the device in the system hierarchy
	Sysfs    string   // sysfs path
	Uniq     string   // unique identification code for the device (if device has it)
	Handlers []string // list of input handles associated with the device
	Bitmaps  Bitmaps
}

type InputID struct {
	Bus     uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

func (i InputID) String() string {
	return fmt.Sprintf("0x%04x 0x%04x 0x%04x 0x%04x", i.Bus, i.Vendor, i.Product, i.Version)
}

// Bitmap keeps capability bits in 64-bit words, least significant first,
// whatever the kernel's long size is.
type Bitmap []uint64

// Has tells if given bit is set
func (b Bitmap) Has(bit uint) bool {
	word, offset := bit/64, bit%64
	if word >= uint(len(b)) {
		return false
	}
	return b[word]&(1<<offset) != 0
}

type Bitmaps struct {
	EV  Bitmap // types of events supported by the device
	KEY Bitmap // keys/buttons this device has
	ABS Bitmap // absolute axes
}

// CapableTypes lists event types announced in the EV bitmap
func (d *DeviceInfo) CapableTypes() []evdev.EvType {
	var types []evdev.EvType
	for t := uint(0); t < uint(evdev.EV_CNT); t++ {
		if d.Bitmaps.EV.Has(t) {
			types = append(types, evdev.EvType(t))
		}
	}
	return types
}

// HasAbs tells if the device announces absolute axes
func (d *DeviceInfo) HasAbs() bool {
	return d.Bitmaps.EV.Has(uint(evdev.EV_ABS))
}

// Event returns event name, like "event0" for /dev/input/event0
func (d *DeviceInfo) Event() string {
	for _, handler := range d.Handlers {
		if strings.HasPrefix(handler, "event") {
			return handler
		}
	}
	return ""
}

// EventPath returns a /dev/input/event filepath for button presses
func (d *DeviceInfo) EventPath() string {
	event := d.Event()
	if event == "" {
		return ""
	}
	return fmt.Sprintf("/dev/input/%s", event)
}

func (d *DeviceInfo) String() string {
	return fmt.Sprintf(
		"\"%s\" [%s] (0x%04x, 0x%04x, 0x%04x, 0x%04x, \"%s\")",
		d.Name, d.Event(), d.ID.Bus, d.ID.Vendor, d.ID.Product, d.ID.Version, d.Uniq,
	)
}

// Filter narrows discovery down to given vendor/product, zero value of a field matches everything
type Filter struct {
	Vendor  uint16
	Product uint16
}

func (f Filter) Match(id InputID) bool {
	if f.Vendor != 0 && f.Vendor != id.Vendor {
		return false
	}
	if f.Product != 0 && f.Product != id.Product {
		return false
	}
	return true
}

func (f Filter) IsZero() bool {
	return f.Vendor == 0 && f.Product == 0
}

func (f Filter) String() string {
	if f.IsZero() {
		return "any"
	}
	return fmt.Sprintf("vendor: 0x%04x, product: 0x%04x", f.Vendor, f.Product)
}
