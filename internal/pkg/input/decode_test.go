package input

import (
	"fmt"
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devicesFixture = `I: Bus=0019 Vendor=0000 Product=0001 Version=0000
N: Name="Power Button"
P: Phys=PNP0C0C/button/input0
S: Sysfs=/devices/LNXSYSTM:00/LNXSYBUS:00/PNP0C0C:00/input/input0
U: Uniq=
H: Handlers=kbd event0
B: PROP=0
B: EV=3
B: KEY=10000000000000 0

I: Bus=0003 Vendor=2dc8 Product=3106 Version=0111
N: Name="8BitDo Pro 2 Wired Controller"
P: Phys=usb-0000:00:14.0-2/input0
S: Sysfs=/devices/pci0000:00/0000:00:14.0/usb1/1-2/1-2:1.0/input/input21
U: Uniq=
H: Handlers=event17 js0
B: PROP=0
B: EV=20000b
B: KEY=7cdb000000000000 0 0 0 0
B: ABS=3003f
B: FF=107030000 0

`

func TestUnmarshal(t *testing.T) {
	devices, err := unmarshal([]byte(devicesFixture))
	require.NoError(t, err)
	require.Len(t, devices, 2)

	power := devices[0]
	assert.Equal(t, "Power Button", power.Name)
	assert.Equal(t, InputID{Bus: 0x19, Vendor: 0, Product: 1, Version: 0}, power.ID)
	assert.Equal(t, []string{"kbd", "event0"}, power.Handlers)
	assert.Equal(t, "/dev/input/event0", power.EventPath())
	assert.False(t, power.HasAbs())
	assert.Equal(t, []evdev.EvType{evdev.EV_SYN, evdev.EV_KEY}, power.CapableTypes())

	pad := devices[1]
	assert.Equal(t, "8BitDo Pro 2 Wired Controller", pad.Name)
	assert.Equal(t, InputID{Bus: BUS_USB, Vendor: 0x2dc8, Product: 0x3106, Version: 0x0111}, pad.ID)
	assert.Equal(t, "usb-0000:00:14.0-2/input0", pad.Phys)
	assert.Equal(t, "event17", pad.Event())
	assert.Equal(t, "/dev/input/event17", pad.EventPath())
	assert.True(t, pad.HasAbs())
	for _, code := range []evdev.EvCode{evdev.ABS_X, evdev.ABS_Y, evdev.ABS_Z, evdev.ABS_RX, evdev.ABS_RY, evdev.ABS_RZ, evdev.ABS_HAT0X, evdev.ABS_HAT0Y} {
		assert.True(t, pad.Bitmaps.ABS.Has(uint(code)), "abs code %d", code)
	}
	assert.False(t, pad.Bitmaps.ABS.Has(uint(evdev.ABS_THROTTLE)))
}

func TestUnmarshalWithoutTrailingEmptyLine(t *testing.T) {
	data := "I: Bus=0003 Vendor=045e Product=028e Version=0114\nN: Name=\"Microsoft X-Box 360 pad\"\nH: Handlers=event3 js0 "
	devices, err := unmarshal([]byte(data))
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, uint16(0x045e), devices[0].ID.Vendor)
	assert.Equal(t, "event3", devices[0].Event())
}

func TestUnmarshalMalformed(t *testing.T) {
	for i, data := range []string{
		"I: Bus=zz03 Vendor=045e Product=028e Version=0114\n",
		"I: Bus=03 Vendor=045e Product=028e Version=0114\n",
		"B: EV=xyz\n",
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			_, err := unmarshal([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalEmpty(t *testing.T) {
	devices, err := unmarshal(nil)
	assert.NoError(t, err)
	assert.Len(t, devices, 0)
}

func TestEventPathWithoutHandler(t *testing.T) {
	d := DeviceInfo{Handlers: []string{"js0"}}
	assert.Equal(t, "", d.EventPath())
}

func TestFilterMatch(t *testing.T) {
	id := InputID{Bus: BUS_USB, Vendor: 0x2dc8, Product: 0x3106}
	for i, tc := range []struct {
		filter   Filter
		expected bool
	}{
		{filter: Filter{}, expected: true},
		{filter: Filter{Vendor: 0x2dc8}, expected: true},
		{filter: Filter{Product: 0x3106}, expected: true},
		{filter: Filter{Vendor: 0x2dc8, Product: 0x3106}, expected: true},
		{filter: Filter{Vendor: 0x045e}, expected: false},
		{filter: Filter{Vendor: 0x2dc8, Product: 0x028e}, expected: false},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.filter.Match(id))
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, "usb", BusName(BUS_USB))
	assert.Equal(t, "0x00ff", BusName(0xff))
	assert.Equal(t, "ABS_X", AbsName(evdev.ABS_X))
	assert.Equal(t, "ABS_HAT0Y", AbsName(evdev.ABS_HAT0Y))
	assert.Equal(t, "EV_ABS", TypeName(evdev.EV_ABS))
	assert.Equal(t, "EV_0x1f", TypeName(0x1f))
	assert.Equal(t, "any", Filter{}.String())
	assert.Equal(t, "vendor: 0x2dc8, product: 0x0000", Filter{Vendor: 0x2dc8}.String())
}

func TestParseBitmapWordSize(t *testing.T) {
	// the same key bitmap of a gamepad as printed by 32-bit and 64-bit kernels
	for i, tc := range []struct {
		raw      string
		longBits uint
	}{
		{raw: "7cdb0000 0 0 0 0 0 0 0 0 0", longBits: 32},
		{raw: "7cdb000000000000 0 0 0 0", longBits: 64},
		// 64-bit words are recognized even if kernel long is believed to be 32-bit
		{raw: "7cdb000000000000 0 0 0 0", longBits: 32},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			bitmap, err := parseBitmap(tc.raw, tc.longBits)
			require.NoError(t, err)
			assert.True(t, bitmap.Has(uint(evdev.BTN_SOUTH)))
			assert.True(t, bitmap.Has(uint(evdev.BTN_EAST)))
			assert.False(t, bitmap.Has(uint(evdev.BTN_C)))
			assert.True(t, bitmap.Has(uint(evdev.BTN_THUMBR)))
			assert.False(t, bitmap.Has(uint(evdev.BTN_THUMBR)+1))
			assert.False(t, bitmap.Has(1000))
		})
	}
}

func TestParseBitmapShortWords(t *testing.T) {
	bitmap, err := parseBitmap("10000 0", 64)
	require.NoError(t, err)
	assert.True(t, bitmap.Has(80))
	assert.False(t, bitmap.Has(48))

	bitmap, err = parseBitmap("10000 0", 32)
	require.NoError(t, err)
	assert.True(t, bitmap.Has(48))
	assert.False(t, bitmap.Has(80))

	bitmap, err = parseBitmap("", 64)
	require.NoError(t, err)
	assert.False(t, bitmap.Has(0))
}

func TestMachineLongBits(t *testing.T) {
	for _, tc := range []struct {
		machine  string
		expected uint
	}{
		{machine: "x86_64", expected: 64},
		{machine: "aarch64", expected: 64},
		{machine: "armv8l", expected: 64},
		{machine: "riscv64", expected: 64},
		{machine: "s390x", expected: 64},
		{machine: "armv7l", expected: 32},
		{machine: "armv6l", expected: 32},
		{machine: "i686", expected: 32},
	} {
		t.Run(tc.machine, func(t *testing.T) {
			assert.Equal(t, tc.expected, machineLongBits(tc.machine))
		})
	}
}
