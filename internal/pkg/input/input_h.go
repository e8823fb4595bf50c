package input

import (
	"fmt"
	"sort"
	"sync"

	"github.com/holoplot/go-evdev"
)

// Bus types, linux/input.h
const (
	BUS_PCI       = 0x01
	BUS_ISAPNP    = 0x02
	BUS_USB       = 0x03
	BUS_HIL       = 0x04
	BUS_BLUETOOTH = 0x05
	BUS_VIRTUAL   = 0x06

	BUS_ISA         = 0x10
	BUS_I8042       = 0x11
	BUS_XTKBD       = 0x12
	BUS_RS232       = 0x13
	BUS_GAMEPORT    = 0x14
	BUS_PARPORT     = 0x15
	BUS_AMIGA       = 0x16
	BUS_ADB         = 0x17
	BUS_I2C         = 0x18
	BUS_HOST        = 0x19
	BUS_GSC         = 0x1A
	BUS_ATARI       = 0x1B
	BUS_SPI         = 0x1C
	BUS_RMI         = 0x1D
	BUS_CEC         = 0x1E
	BUS_INTEL_ISHTP = 0x1F
)

var busNames = map[uint16]string{
	BUS_PCI:         "pci",
	BUS_ISAPNP:      "isapnp",
	BUS_USB:         "usb",
	BUS_HIL:         "hil",
	BUS_BLUETOOTH:   "bluetooth",
	BUS_VIRTUAL:     "virtual",
	BUS_ISA:         "isa",
	BUS_I8042:       "i8042",
	BUS_XTKBD:       "xtkbd",
	BUS_RS232:       "rs232",
	BUS_GAMEPORT:    "gameport",
	BUS_PARPORT:     "parport",
	BUS_AMIGA:       "amiga",
	BUS_ADB:         "adb",
	BUS_I2C:         "i2c",
	BUS_HOST:        "host",
	BUS_GSC:         "gsc",
	BUS_ATARI:       "atari",
	BUS_SPI:         "spi",
	BUS_RMI:         "rmi",
	BUS_CEC:         "cec",
	BUS_INTEL_ISHTP: "intel-ishtp",
}

func BusName(bus uint16) string {
	name, ok := busNames[bus]
	if !ok {
		return fmt.Sprintf("0x%04x", bus)
	}
	return name
}

var (
	absNamesOnce sync.Once
	absNames     map[evdev.EvCode]string
)

// AbsName returns a symbolic name of an absolute axis, like ABS_X.
// Aliased codes resolve to alphabetically first name.
func AbsName(code evdev.EvCode) string {
	absNamesOnce.Do(func() {
		var names []string
		for name := range evdev.ABSFromString {
			names = append(names, name)
		}
		sort.Strings(names)

		absNames = make(map[evdev.EvCode]string, len(names))
		for _, name := range names {
			c := evdev.ABSFromString[name]
			if _, ok := absNames[c]; !ok {
				absNames[c] = name
			}
		}
	})

	name, ok := absNames[code]
	if !ok {
		return fmt.Sprintf("ABS_0x%02x", uint16(code))
	}
	return name
}

var typeNames = map[evdev.EvType]string{
	evdev.EV_SYN:       "EV_SYN",
	evdev.EV_KEY:       "EV_KEY",
	evdev.EV_REL:       "EV_REL",
	evdev.EV_ABS:       "EV_ABS",
	evdev.EV_MSC:       "EV_MSC",
	evdev.EV_SW:        "EV_SW",
	evdev.EV_LED:       "EV_LED",
	evdev.EV_SND:       "EV_SND",
	evdev.EV_REP:       "EV_REP",
	evdev.EV_FF:        "EV_FF",
	evdev.EV_PWR:       "EV_PWR",
	evdev.EV_FF_STATUS: "EV_FF_STATUS",
}

func TypeName(t evdev.EvType) string {
	name, ok := typeNames[t]
	if !ok {
		return fmt.Sprintf("EV_0x%02x", uint16(t))
	}
	return name
}
