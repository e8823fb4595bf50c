package input

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

const procDevices = "/proc/bus/input/devices"

// GetHandlers returns a list of available input handlers in the system.
// Note: there is non-zero probability that returned list may be incomplete when devices
// are (dis)appearing at the time of reading, next discovery round will catch up.
func GetHandlers() ([]DeviceInfo, error) {
	data, err := os.ReadFile(procDevices)
	if err != nil {
		return nil, err
	}

	di, err := unmarshal(data)
	if err != nil {
		return nil, err
	}

	return di, nil
}

// unmarshal parses /proc/bus/input/devices file
func unmarshal(data []byte) ([]DeviceInfo, error) {
	var devices = make([]DeviceInfo, 0)

	if len(data) == 0 {
		return devices, nil
	}

	var device DeviceInfo
	var pending bool

	for _, line := range strings.Split(string(data), "\n") {
		if len(line) < 3 {
			if pending {
				devices = append(devices, device)
				device = DeviceInfo{}
				pending = false
			}
			continue
		}
		pending = true

		label := line[:1]
		info := line[3:]

		switch label {
		case "I":
			ps := reflect.ValueOf(&device.ID)
			s := ps.Elem()

			for _, param := range strings.Fields(info) {
				fields := strings.SplitN(param, "=", 2)
				if len(fields) != 2 {
					return devices, fmt.Errorf("malformed id parameter: %q", param)
				}
				l, v := fields[0], fields[1]
				f := s.FieldByName(l)
				if !f.IsValid() {
					continue
				}

				hv, err := hex.DecodeString(v)
				if err != nil {
					return devices, fmt.Errorf("hex decoding failed: %w", err)
				}
				if len(hv) != 2 {
					return devices, fmt.Errorf("unexpected %s length: %q", l, v)
				}
				f.SetUint(uint64(binary.BigEndian.Uint16(hv)))
			}
		case "N":
			device.Name = strings.TrimSuffix(strings.TrimPrefix(info, "Name=\""), "\"")
		case "P":
			device.Phys = strings.TrimPrefix(info, "Phys=")
		case "S":
			device.Sysfs = strings.TrimPrefix(info, "Sysfs=")
		case "U":
			device.Uniq = strings.TrimPrefix(info, "Uniq=")
		case "H":
			// If there is at least one handler, there is additional space at the end of the line
			handlersChain := strings.TrimPrefix(info, "Handlers=")
			device.Handlers = strings.Fields(handlersChain)
		case "B":
			fields := strings.SplitN(info, "=", 2)
			if len(fields) != 2 {
				return devices, fmt.Errorf("malformed bitmap line: %q", line)
			}
			words, err := parseBitmap(fields[1], kernelLongBits)
			if err != nil {
				return devices, fmt.Errorf("%s bitmap: %w", fields[0], err)
			}
			switch fields[0] {
			case "EV":
				device.Bitmaps.EV = words
			case "KEY":
				device.Bitmaps.KEY = words
			case "ABS":
				device.Bitmaps.ABS = words
			}
		}
	}

	if pending {
		devices = append(devices, device)
	}

	return devices, nil
}

// parseBitmap decodes space separated hex words, most significant word first.
// Words are longBits wide (kernel's long), a word longer than 8 hex digits proves 64-bit words.
// Result is repacked into 64-bit words.
func parseBitmap(s string, longBits uint) (Bitmap, error) {
	raw := strings.Fields(s)
	for _, v := range raw {
		if len(v) > 8 {
			longBits = 64
			break
		}
	}
	if longBits != 32 {
		longBits = 64
	}

	var bitmap = make(Bitmap, (uint(len(raw))*longBits+63)/64)
	for i, v := range raw {
		w, err := strconv.ParseUint(v, 16, int(longBits))
		if err != nil {
			return nil, fmt.Errorf("hex decoding failed: %w", err)
		}
		pos := uint(len(raw)-1-i) * longBits
		bitmap[pos/64] |= w << (pos % 64)
	}
	return bitmap, nil
}
