package bitstream

import "xc2cpld/internal/netlist"

// FFClkSrc, FFResetSrc, FFSetSrc, FFMode, FeedbackMode and XorMode mirror
// the macrocell register's configuration enums and their 2-bit fuse
// encodings exactly as the original project's mc.rs/bitstream.rs derive
// them (read_32_ff_logical and XC2BitstreamBits::write_jed).
type FFClkSrc int

const (
	ClkGCK0 FFClkSrc = iota
	ClkGCK1
	ClkGCK2
	ClkPTC
	ClkCTC
)

type FFResetSrc int

const (
	ResetDisabled FFResetSrc = iota
	ResetPTA
	ResetGSR
	ResetCTR
)

type FFSetSrc int

const (
	SetDisabled FFSetSrc = iota
	SetPTA
	SetGSR
	SetCTS
)

type FFMode int

const (
	FFModeDFF FFMode = iota
	FFModeLatch
	FFModeTFF
	FFModeDFFCE
)

type FeedbackMode int

const (
	FeedbackDisabled FeedbackMode = iota
	FeedbackComb
	FeedbackReg
)

type XorMode int

const (
	XorZero XorMode = iota
	XorOne
	XorPTC
	XorPTCB
)

// IOBZIAMode is the "inz" field: whether this IOB's ZIA feedback samples the
// pad directly, the macrocell register, or is disabled.
type IOBZIAMode int

const (
	IOBZIAModePAD IOBZIAMode = iota
	IOBZIAModeReg
	IOBZIAModeDisabled
)

// MCBits is the full 27-bit per-macrocell fuse record, in spec.md SS6's
// field order: aclk, clkop, clk(2), clkfreq, r(2), p(2), regmod(2), inz(2),
// fb(2), inreg, st, xorin(2), regcom, oe(4), tm, slw, pu.
//
// The register-path fields (through XorMode) and ZIAMode/OutputRegistered
// are grounded directly on mc.rs and bitstream.rs's write_jed. OE's 4-bit
// codes are grounded on bitstream.rs's XC2IOBOBufMode table. TerminationEnabled
// and SlewFast configure per-IOB pin electrical properties that the upstream
// iob.rs table doesn't derive from netlist/PAR data either - they are carried
// here only so the fuse record round-trips; Assemble always sets them false/
// default. See DESIGN.md.
type MCBits struct {
	ClkSrc      FFClkSrc
	FallingEdge bool // clkop
	IsDDR       bool // clkfreq
	RSrc        FFResetSrc
	SSrc        FFSetSrc
	FBMode      FeedbackMode
	FFInIBuf    bool // !inreg
	XorMode     XorMode
	FFMode      FFMode
	InitState   bool // pu is encoded as !InitState

	ZIAMode          IOBZIAMode
	SchmittTrigger   bool // st
	OutputRegistered bool // regcom is encoded as !OutputRegistered
	OE               netlist.IOOEKind
	TerminationEnabled bool // tm
	SlewFast           bool // slw is encoded as !SlewFast
}

// DefaultMCBits matches mc.rs's Default impl: GCK0 clock, both R/S
// disabled, init state 1 (so bit 26 reads 0), DFF mode, comb feedback
// disabled, direct (non-ibuf) XOR input tied to ZERO, output disabled.
func DefaultMCBits() MCBits {
	return MCBits{
		ClkSrc:    ClkGCK0,
		RSrc:      ResetDisabled,
		SSrc:      SetDisabled,
		FBMode:    FeedbackDisabled,
		XorMode:   XorZero,
		FFMode:    FFModeDFF,
		InitState: true,
		ZIAMode:   IOBZIAModeDisabled,
		OE:        netlist.OEAlwaysDisabled,
		SlewFast:  true,
	}
}

func encodeClk(c FFClkSrc) (aclk, b0, b1 bool) {
	switch c {
	case ClkGCK0:
		return false, false, false
	case ClkGCK1:
		return false, false, true
	case ClkGCK2:
		return false, true, false
	case ClkPTC:
		return false, true, true
	case ClkCTC:
		return true, true, true
	default:
		return false, false, false
	}
}

func decodeClk(aclk, b0, b1 bool) FFClkSrc {
	switch {
	case !b0 && !b1:
		return ClkGCK0
	case !b0 && b1:
		return ClkGCK1
	case b0 && !b1:
		return ClkGCK2
	default:
		if aclk {
			return ClkCTC
		}
		return ClkPTC
	}
}

func encodeReset(r FFResetSrc) (b0, b1 bool) {
	switch r {
	case ResetPTA:
		return false, false
	case ResetGSR:
		return false, true
	case ResetCTR:
		return true, false
	default:
		return true, true
	}
}

func decodeReset(b0, b1 bool) FFResetSrc {
	switch {
	case !b0 && !b1:
		return ResetPTA
	case !b0 && b1:
		return ResetGSR
	case b0 && !b1:
		return ResetCTR
	default:
		return ResetDisabled
	}
}

func encodeSet(s FFSetSrc) (b0, b1 bool) {
	switch s {
	case SetPTA:
		return false, false
	case SetGSR:
		return false, true
	case SetCTS:
		return true, false
	default:
		return true, true
	}
}

func decodeSet(b0, b1 bool) FFSetSrc {
	switch {
	case !b0 && !b1:
		return SetPTA
	case !b0 && b1:
		return SetGSR
	case b0 && !b1:
		return SetCTS
	default:
		return SetDisabled
	}
}

func encodeFFMode(m FFMode) (b0, b1 bool) {
	switch m {
	case FFModeDFF:
		return false, false
	case FFModeLatch:
		return false, true
	case FFModeTFF:
		return true, false
	default:
		return true, true
	}
}

func decodeFFMode(b0, b1 bool) FFMode {
	switch {
	case !b0 && !b1:
		return FFModeDFF
	case !b0 && b1:
		return FFModeLatch
	case b0 && !b1:
		return FFModeTFF
	default:
		return FFModeDFFCE
	}
}

func encodeFeedback(m FeedbackMode) (b0, b1 bool) {
	switch m {
	case FeedbackComb:
		return false, false
	case FeedbackReg:
		return true, false
	default:
		return true, true
	}
}

func decodeFeedback(b0, b1 bool) FeedbackMode {
	switch {
	case !b0 && !b1:
		return FeedbackComb
	case b0 && !b1:
		return FeedbackReg
	default:
		return FeedbackDisabled
	}
}

func encodeXor(m XorMode) (b0, b1 bool) {
	switch m {
	case XorZero:
		return false, false
	case XorPTCB:
		return false, true
	case XorPTC:
		return true, false
	default:
		return true, true
	}
}

func decodeXor(b0, b1 bool) XorMode {
	switch {
	case !b0 && !b1:
		return XorZero
	case !b0 && b1:
		return XorPTCB
	case b0 && !b1:
		return XorPTC
	default:
		return XorOne
	}
}

func encodeZIAMode(m IOBZIAMode) (b0, b1 bool) {
	switch m {
	case IOBZIAModePAD:
		return false, false
	case IOBZIAModeReg:
		return true, false
	default:
		return true, true
	}
}

func decodeZIAMode(b0, b1 bool) IOBZIAMode {
	switch {
	case !b0 && !b1:
		return IOBZIAModePAD
	case b0 && !b1:
		return IOBZIAModeReg
	default:
		return IOBZIAModeDisabled
	}
}

// oeEncodeTable mirrors bitstream.rs's XC2IOBOBufMode write_jed match arms.
// Only the variants our netlist.IOOEKind can express are populated; the
// unused upstream variants (OpenDrain, TriStateCTE, CGND) have no netlist
// counterpart and are never produced by Assemble.
var oeEncodeTable = map[netlist.IOOEKind]uint8{
	netlist.OEAlwaysEnabled:  0x0, // PushPull
	netlist.OEPTerm:          0x4, // TriStatePTB
	netlist.OEGTS0:           0xC, // TriStateGTS0
	netlist.OEGTS1:           0x2, // TriStateGTS1
	netlist.OEGTS2:           0xA, // TriStateGTS2
	netlist.OEGTS3:           0x6, // TriStateGTS3
	netlist.OEAlwaysDisabled: 0xF, // Disabled
}

var oeDecodeTable = map[uint8]netlist.IOOEKind{
	0x0: netlist.OEAlwaysEnabled,
	0x4: netlist.OEPTerm,
	0xC: netlist.OEGTS0,
	0x2: netlist.OEGTS1,
	0xA: netlist.OEGTS2,
	0x6: netlist.OEGTS3,
	0xF: netlist.OEAlwaysDisabled,
}

// Encode packs bits into the 27-bit fuse layout in spec order: aclk, clkop,
// clk(2), clkfreq, r(2), p(2), regmod(2), inz(2), fb(2), inreg, st,
// xorin(2), regcom, oe(4), tm, slw, pu.
func (m MCBits) Encode() [27]bool {
	var b [27]bool

	aclk, c0, c1 := encodeClk(m.ClkSrc)
	b[0] = aclk
	b[1] = m.FallingEdge
	b[2], b[3] = c0, c1
	b[4] = m.IsDDR

	b[5], b[6] = encodeReset(m.RSrc)
	b[7], b[8] = encodeSet(m.SSrc)
	b[9], b[10] = encodeFFMode(m.FFMode)
	b[11], b[12] = encodeZIAMode(m.ZIAMode)

	b[13], b[14] = encodeFeedback(m.FBMode)
	b[15] = !m.FFInIBuf
	b[16] = m.SchmittTrigger

	b[17], b[18] = encodeXor(m.XorMode)
	b[19] = !m.OutputRegistered

	code := oeEncodeTable[m.OE]
	b[20] = code&0x8 != 0
	b[21] = code&0x4 != 0
	b[22] = code&0x2 != 0
	b[23] = code&0x1 != 0

	b[24] = m.TerminationEnabled
	b[25] = !m.SlewFast
	b[26] = !m.InitState

	return b
}

// Decode is the inverse of Encode.
func Decode(b [27]bool) MCBits {
	var m MCBits
	m.ClkSrc = decodeClk(b[0], b[2], b[3])
	m.FallingEdge = b[1]
	m.IsDDR = b[4]
	m.RSrc = decodeReset(b[5], b[6])
	m.SSrc = decodeSet(b[7], b[8])
	m.FFMode = decodeFFMode(b[9], b[10])
	m.ZIAMode = decodeZIAMode(b[11], b[12])

	m.FBMode = decodeFeedback(b[13], b[14])
	m.FFInIBuf = !b[15]
	m.SchmittTrigger = b[16]
	m.XorMode = decodeXor(b[17], b[18])
	m.OutputRegistered = !b[19]

	var code uint8
	if b[20] {
		code |= 0x8
	}
	if b[21] {
		code |= 0x4
	}
	if b[22] {
		code |= 0x2
	}
	if b[23] {
		code |= 0x1
	}
	m.OE = oeDecodeTable[code]

	m.TerminationEnabled = b[24]
	m.SlewFast = !b[25]
	m.InitState = !b[26]
	return m
}
