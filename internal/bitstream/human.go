package bitstream

import (
	"fmt"
	"io"

	"xc2cpld/internal/device"
	"xc2cpld/internal/netlist"
)

// DumpHumanReadable writes a plain-text explanation of the fuse image,
// grounded on bitstream.rs's XC2BitstreamBits::dump_human_readable and
// mc.rs's XC2MCFF::dump_human_readable. Per-IOB electrical fuses
// (schmitt trigger, slew, termination) are folded into the macrocell
// dump rather than a separate IOB pass, since this model keeps them on
// MCBits instead of a standalone IOB record.
func (bs *Bitstream) DumpHumanReadable(w io.Writer) error {
	switch bs.Dev {
	case device.XC2C32:
		if _, err := fmt.Fprintf(w, "device type: XC2C32\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "output voltage range: %s\n", highLow(bs.LegacyOVoltage)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "input voltage range: %s\n", highLow(bs.LegacyIVoltage)); err != nil {
			return err
		}
	case device.XC2C32A:
		if _, err := fmt.Fprintf(w, "device type: XC2C32A\n"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "legacy output voltage range: %s\n", highLow(bs.LegacyOVoltage)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "legacy input voltage range: %s\n", highLow(bs.LegacyIVoltage)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "bank 0 output voltage range: %s\n", highLow(bs.BankOVoltage[0])); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "bank 1 output voltage range: %s\n", highLow(bs.BankOVoltage[1])); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "bank 0 input voltage range: %s\n", highLow(bs.BankIVoltage[0])); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "bank 1 input voltage range: %s\n", highLow(bs.BankIVoltage[1])); err != nil {
			return err
		}
	}

	if err := bs.Global.DumpHumanReadable(w); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\ndedicated input pin: schmitt trigger %s, termination %s\n",
		enabledDisabled(bs.InPin.SchmittTrigger), enabledDisabled(bs.InPin.TerminationEnabled)); err != nil {
		return err
	}

	for fb := 0; fb < device.NumRealFBs; fb++ {
		if err := bs.FBs[fb].DumpHumanReadable(fb, w); err != nil {
			return err
		}
	}

	return nil
}

func highLow(high bool) string {
	if high {
		return "high"
	}
	return "low"
}

func enabledDisabled(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

// DumpHumanReadable explains the global net configuration, matching
// bitstream.rs's XC2GlobalNets::dump_human_readable line for line.
func (gn *GlobalNets) DumpHumanReadable(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}
	for i := 0; i < device.NumBufgClk; i++ {
		if _, err := fmt.Fprintf(w, "GCK%d %s\n", i, enabledDisabled(gn.GCKEnable[i])); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "GSR %s, active %s\n", enabledDisabled(gn.GSREnable), highLow(gn.GSRInvert)); err != nil {
		return err
	}
	for i := 0; i < device.NumBufgGts; i++ {
		polarity := "T"
		if gn.GTSInvert[i] {
			polarity = "!T"
		}
		if _, err := fmt.Fprintf(w, "GTS%d %s, acts as %s\n", i, enabledDisabled(gn.GTSEnable[i]), polarity); err != nil {
			return err
		}
	}
	bushold := "bus hold"
	if gn.GlobalPU {
		bushold = "pull-up"
	}
	_, err := fmt.Fprintf(w, "global termination is %s\n", bushold)
	return err
}

// DumpHumanReadable explains one function block's 16 macrocell records.
func (fb *BitstreamFB) DumpHumanReadable(fbIdx int, w io.Writer) error {
	for i := 0; i < device.MCsPerFB; i++ {
		if err := fb.MCs[i].DumpHumanReadable(fbIdx, i, w); err != nil {
			return err
		}
	}
	return nil
}

// DumpHumanReadable explains one macrocell's register, ZIA feedback and
// output-driver configuration.
func (m MCBits) DumpHumanReadable(fb, mc int, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\nFF configuration for FB%d_%d\n", fb+1, mc+1); err != nil {
		return err
	}

	ffModeStr := map[FFMode]string{
		FFModeDFF:   "D flip-flop",
		FFModeLatch: "transparent latch",
		FFModeTFF:   "T flip-flop",
		FFModeDFFCE: "D flip-flop with clock-enable",
	}[m.FFMode]
	if _, err := fmt.Fprintf(w, "FF mode: %s\n", ffModeStr); err != nil {
		return err
	}

	initState := 0
	if m.InitState {
		initState = 1
	}
	if _, err := fmt.Fprintf(w, "initial state: %d\n", initState); err != nil {
		return err
	}

	edge := "rising"
	if m.FallingEdge {
		edge = "falling"
	}
	if _, err := fmt.Fprintf(w, "%s-edge triggered\n", edge); err != nil {
		return err
	}

	ddr := "no"
	if m.IsDDR {
		ddr = "yes"
	}
	if _, err := fmt.Fprintf(w, "DDR: %s\n", ddr); err != nil {
		return err
	}

	clkStr := map[FFClkSrc]string{
		ClkGCK0: "GCK0",
		ClkGCK1: "GCK1",
		ClkGCK2: "GCK2",
		ClkPTC:  "PTC",
		ClkCTC:  "CTC",
	}[m.ClkSrc]
	if _, err := fmt.Fprintf(w, "clock source: %s\n", clkStr); err != nil {
		return err
	}

	setStr := map[FFSetSrc]string{
		SetDisabled: "disabled",
		SetPTA:      "PTA",
		SetGSR:      "GSR",
		SetCTS:      "CTS",
	}[m.SSrc]
	if _, err := fmt.Fprintf(w, "set source: %s\n", setStr); err != nil {
		return err
	}

	resetStr := map[FFResetSrc]string{
		ResetDisabled: "disabled",
		ResetPTA:      "PTA",
		ResetGSR:      "GSR",
		ResetCTR:      "CTR",
	}[m.RSrc]
	if _, err := fmt.Fprintf(w, "reset source: %s\n", resetStr); err != nil {
		return err
	}

	ibuf := "no"
	if m.FFInIBuf {
		ibuf = "yes"
	}
	if _, err := fmt.Fprintf(w, "using ibuf direct path: %s\n", ibuf); err != nil {
		return err
	}

	xorStr := map[XorMode]string{
		XorZero: "0",
		XorOne:  "1",
		XorPTC:  "PTC",
		XorPTCB: "~PTC",
	}[m.XorMode]
	if _, err := fmt.Fprintf(w, "XOR gate input: %s\n", xorStr); err != nil {
		return err
	}

	fbStr := map[FeedbackMode]string{
		FeedbackDisabled: "disabled",
		FeedbackComb:     "combinatorial",
		FeedbackReg:      "registered",
	}[m.FBMode]
	if _, err := fmt.Fprintf(w, "ZIA feedback: %s\n", fbStr); err != nil {
		return err
	}

	ziaStr := map[IOBZIAMode]string{
		IOBZIAModePAD:      "pad",
		IOBZIAModeReg:      "register",
		IOBZIAModeDisabled: "disabled",
	}[m.ZIAMode]
	if _, err := fmt.Fprintf(w, "IOB ZIA input: %s\n", ziaStr); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "output driver: %s\n", oeModeString(m.OE)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "schmitt trigger: %s, slew rate: %s, termination: %s\n",
		enabledDisabled(m.SchmittTrigger), slewString(m.SlewFast), enabledDisabled(m.TerminationEnabled)); err != nil {
		return err
	}

	return nil
}

func slewString(fast bool) string {
	if fast {
		return "fast"
	}
	return "slow"
}

func oeModeString(k netlist.IOOEKind) string {
	switch k {
	case netlist.OEAlwaysEnabled:
		return "always enabled"
	case netlist.OEAlwaysDisabled:
		return "always disabled (input only)"
	case netlist.OEPTerm:
		return "product-term controlled"
	case netlist.OEGTS0:
		return "GTS0 controlled"
	case netlist.OEGTS1:
		return "GTS1 controlled"
	case netlist.OEGTS2:
		return "GTS2 controlled"
	case netlist.OEGTS3:
		return "GTS3 controlled"
	default:
		return "unknown"
	}
}
