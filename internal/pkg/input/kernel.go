package input

import (
	"math/bits"
	"strings"

	"golang.org/x/sys/unix"
)

// kernelLongBits is the word size of bitmaps in /proc/bus/input/devices. It follows the running
// kernel, not this binary: 32-bit builds on 64-bit kernels still see 64-bit words.
var kernelLongBits = detectKernelLongBits()

func detectKernelLongBits() uint {
	var uts unix.Utsname
	err := unix.Uname(&uts)
	if err != nil {
		return bits.UintSize
	}
	return machineLongBits(unix.ByteSliceToString(uts.Machine[:]))
}

// machineLongBits maps uname machine to the kernel's long size
func machineLongBits(machine string) uint {
	switch {
	case machine == "":
		return bits.UintSize
	case strings.Contains(machine, "64"), machine == "s390x", machine == "armv8l":
		// armv8l is 32-bit personality on a 64-bit kernel
		return 64
	default:
		return 32
	}
}
