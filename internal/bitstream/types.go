// Package bitstream assembles a place-and-routed netlist into a JEDEC
// fuse map for the XC2C32/XC2C32A family, and parses one back. Layout is
// grounded byte-for-byte on the original project's bitstream.rs.
package bitstream

import "xc2cpld/internal/device"

// AndTermRow is one AND-array row's 40 (true,comp) input pairs.
type AndTermRow struct {
	True [device.InputsPerAndTerm]bool
	Comp [device.InputsPerAndTerm]bool
}

// OrTermRow is one OR-array row: which of the FB's 16 macrocells it feeds.
type OrTermRow struct {
	Input [device.MCsPerFB]bool
}

// BitstreamFB is one function block's full fuse image: the ZIA row
// selections, the AND/OR arrays, and the 16 macrocell records.
type BitstreamFB struct {
	ZIA      [device.InputsPerAndTerm]device.ZIAInput
	AndTerms [device.AndTermsPerFB]AndTermRow
	OrTerms  [device.AndTermsPerFB]OrTermRow
	MCs      [device.MCsPerFB]MCBits
}

func newBitstreamFB() BitstreamFB {
	var fb BitstreamFB
	for i := range fb.ZIA {
		fb.ZIA[i] = device.ZIAInput{Kind: device.ZIAOne}
	}
	for i := range fb.AndTerms {
		for j := range fb.AndTerms[i].True {
			fb.AndTerms[i].True[j] = false
			fb.AndTerms[i].Comp[j] = false
		}
	}
	for i := range fb.MCs {
		fb.MCs[i] = DefaultMCBits()
	}
	return fb
}

// ExtraIBuf is the dedicated input-only pad's configuration (the synthetic
// third FB slot PAR exposes at site [0].Pin).
type ExtraIBuf struct {
	SchmittTrigger     bool
	TerminationEnabled bool
}

// GlobalNets is the chip-wide configuration of the global low-skew nets,
// grounded on bitstream.rs's XC2GlobalNets.
type GlobalNets struct {
	GCKEnable  [device.NumBufgClk]bool
	GSREnable  bool
	GSRInvert  bool // false=active low, true=active high
	GTSEnable  [device.NumBufgGts]bool
	GTSInvert  [device.NumBufgGts]bool // false=used as T, true=used as !T
	GlobalPU   bool                    // false=bus keeper, true=pull-up
}

// DefaultGlobalNets matches bitstream.rs's Default impl: everything
// disabled, tristate nets inverted (so "disabled" reads as permanently
// tristated), global termination defaulting to pull-up.
func DefaultGlobalNets() GlobalNets {
	return GlobalNets{
		GTSInvert: [device.NumBufgGts]bool{true, true, true, true},
		GlobalPU:  true,
	}
}

// Bitstream is the full fuse image for one device instance, plus the
// speed/package strings carried only for the JEDEC header's N DEVICE line.
type Bitstream struct {
	Dev     device.Device
	Speed   string
	Package string

	FBs    [device.NumRealFBs]BitstreamFB
	InPin  ExtraIBuf
	Global GlobalNets

	// LegacyIVoltage/LegacyOVoltage back L012270/L012271 on both variants.
	// BankIVoltage/BankOVoltage additionally back L012274..L012277 on
	// XC2C32A only (one pair per I/O bank).
	LegacyIVoltage bool
	LegacyOVoltage bool
	BankIVoltage   [2]bool
	BankOVoltage   [2]bool
}

// Blank returns an all-default bitstream for dev: every AND/OR/ZIA bit
// disconnected, every macrocell at its power-on default, every global net
// disabled. This is what an unprogrammed (or freshly erased) part reads
// back as.
func Blank(dev device.Device, speed, pkg string) *Bitstream {
	bs := &Bitstream{
		Dev:     dev,
		Speed:   speed,
		Package: pkg,
		Global:  DefaultGlobalNets(),
	}
	for i := range bs.FBs {
		bs.FBs[i] = newBitstreamFB()
	}
	return bs
}
