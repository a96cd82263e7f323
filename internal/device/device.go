// Package device describes a static, read-only model of a Coolrunner-II
// XC2C32/XC2C32A part: function-block/macrocell counts, fuse counts, the
// global-net pad tables, and the ZIA routing table. Nothing in this package
// mutates after construction; PAR and the bitstream codec both treat it as
// a pure lookup table.
package device

import (
	"fmt"
	"strings"
)

// Device identifies a CoolRunner-II part within the 32-macrocell family.
type Device int

const (
	XC2C32 Device = iota
	XC2C32A
)

func (d Device) String() string {
	switch d {
	case XC2C32:
		return "XC2C32"
	case XC2C32A:
		return "XC2C32A"
	default:
		return "invalid"
	}
}

// Spec names a concrete target: device variant, speed grade, and package.
type Spec struct {
	Device  Device
	Speed   string
	Package string
}

// String renders the canonical "<device>-<speed>-<package>" form, lowercased
// to match the textual form PAR configs and CLI args use.
func (s Spec) String() string {
	return fmt.Sprintf("%s-%s-%s", strings.ToLower(s.Device.String()), s.Speed, s.Package)
}

// ParseString parses a "<device>-<speed>-<package>" string, e.g.
// "xc2c32a-4-vq44". Matching is case-insensitive on the device name.
func ParseString(s string) (Spec, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Spec{}, fmt.Errorf("device: invalid device name %q", s)
	}

	var dev Device
	switch strings.ToLower(parts[0]) {
	case "xc2c32":
		dev = XC2C32
	case "xc2c32a":
		dev = XC2C32A
	default:
		return Spec{}, fmt.Errorf("device: invalid device name %q", s)
	}

	if parts[1] == "" || parts[2] == "" {
		return Spec{}, fmt.Errorf("device: invalid device name %q", s)
	}

	return Spec{Device: dev, Speed: parts[1], Package: parts[2]}, nil
}

// Fixed geometry of the 32-macrocell Coolrunner-II family. These are
// hardware constants, not configuration - they never vary across
// XC2C32/XC2C32A.
const (
	MCsPerFB         = 16
	AndTermsPerFB    = 56
	InputsPerAndTerm = 40

	NumBufgClk = 3
	NumBufgGts = 4
	NumBufgGsr = 1

	// NumRealFBs is the number of actual function blocks on a 32-macrocell
	// part. PAR additionally models a synthetic third FB slot (FB index 2)
	// that exists only to expose the dedicated input pin - see the par
	// package's fbIndexSynthetic.
	NumRealFBs = 2
)

// FuseCount returns the total number of fuses in the JEDEC map for dev.
func FuseCount(dev Device) int {
	switch dev {
	case XC2C32:
		return 12274
	case XC2C32A:
		return 12278
	default:
		panic(fmt.Sprintf("device: invalid device %v", dev))
	}
}

// NumFBs returns the number of real function blocks on dev. Both family
// members have exactly two.
func NumFBs(dev Device) int {
	return NumRealFBs
}

// Control and fast-path AND-term slot indices, constant across FB size.
const (
	CTC = 4
	CTR = 5
	CTS = 6
	CTE = 7
)

// GetPTA, GetPTB and GetPTC return the AND-term slot index of the
// set/OE/clock-or-CE "fast path" dedicated to macrocell mc within its FB.
func GetPTA(mc int) int { return 3*mc + 8 }
func GetPTB(mc int) int { return 3*mc + 9 }
func GetPTC(mc int) int { return 3*mc + 10 }

// FBMC is a function-block/macrocell coordinate.
type FBMC struct {
	FB uint32
	MC uint32
}

// gckPads, gtsPads and gsrPad are the dedicated pad coordinates for the
// global clock/tristate/set-reset nets. The upstream project's pad table
// (iob.rs) was not present in the retrieved reference pack; these values are
// a deterministic placeholder table occupying otherwise-ordinary macrocell
// sites low in FB 0 (GCK, GTS) and the first site of FB 1 (GSR), which is
// sufficient to exercise every LOC/pairing
// invariant this spec names without claiming to reproduce real silicon pad
// numbers. See SPEC_FULL.md SS12 for the equivalent ZIA-table caveat.
var (
	gckPads = [NumBufgClk]FBMC{{0, 0}, {0, 1}, {0, 2}}
	gtsPads = [NumBufgGts]FBMC{{0, 3}, {0, 4}, {0, 5}, {0, 6}}
	gsrPad  = FBMC{1, 0}
)

// GetGCK returns the pad location of global clock buffer i (0, 1 or 2).
func GetGCK(dev Device, i int) (FBMC, bool) {
	if i < 0 || i >= NumBufgClk {
		return FBMC{}, false
	}
	return gckPads[i], true
}

// GetGTS returns the pad location of global tristate buffer i (0..3).
func GetGTS(dev Device, i int) (FBMC, bool) {
	if i < 0 || i >= NumBufgGts {
		return FBMC{}, false
	}
	return gtsPads[i], true
}

// GetGSR returns the pad location of the single global set/reset buffer.
func GetGSR(dev Device) FBMC {
	return gsrPad
}

// FBMCToIOB returns the IOB index driven by the pad at (fb, mc), for the two
// real function blocks. The synthetic FB 2 used by PAR for the dedicated
// input pin has no IOB of its own.
func FBMCToIOB(dev Device, fb, mc uint32) (int, bool) {
	if fb >= NumRealFBs || mc >= MCsPerFB {
		return 0, false
	}
	return int(fb)*MCsPerFB + int(mc), true
}
