package bitstream

import (
	"xc2cpld/internal/device"
	"xc2cpld/internal/netlist"
	"xc2cpld/internal/par"
)

// Assemble turns a placed-and-routed netlist into a fuse image. ig and og
// must come from the same par.Do call; Assemble does no validation of its
// own beyond what PAR already guaranteed.
func Assemble(dev device.Spec, ig *netlist.InputGraph, og *par.OutputGraph, speed, pkg string) *Bitstream {
	bs := Blank(dev.Device, speed, pkg)

	for fb := 0; fb < device.NumRealFBs; fb++ {
		bs.FBs[fb].ZIA = og.ZIA[fb]
	}

	for ref, loc := range og.PTermSlot {
		rows := og.PTermZIA[ref]
		row := &bs.FBs[loc.FB].AndTerms[loc.I]
		for _, r := range rows.True {
			if r >= 0 {
				row.True[r] = true
			}
		}
		for _, r := range rows.Comp {
			if r >= 0 {
				row.Comp[r] = true
			}
		}
	}

	ig.MCs.Each(func(mcRef netlist.MacrocellRef, mc *netlist.Macrocell) {
		if mc.XorBits == nil {
			return
		}
		for _, orRef := range mc.XorBits.OrTermInputs {
			slotLoc, ok := og.PTermSlot[orRef]
			if !ok {
				continue
			}
			mcLoc, ok := og.MCLoc[mcRef]
			if !ok || mcLoc.FB != slotLoc.FB {
				continue
			}
			bs.FBs[slotLoc.FB].OrTerms[slotLoc.I].Input[mcLoc.I] = true
		}
	})

	for fb := 0; fb < device.NumRealFBs; fb++ {
		for i := 0; i < device.MCsPerFB; i++ {
			bs.FBs[fb].MCs[i] = assembleMCBits(ig, og, uint32(fb), uint32(i))
		}
	}

	bs.Global = assembleGlobalNets(ig, og, dev.Device)

	return bs
}

// assembleMCBits builds one macrocell site's fuse record from whichever
// logic-half and pin-half occupants PAR placed there. A site's single
// physical register is owned by whichever occupant carries RegBits - the
// pairing rules in par/pairing.go guarantee at most one of the two does.
func assembleMCBits(ig *netlist.InputGraph, og *par.OutputGraph, fb, i uint32) MCBits {
	m := DefaultMCBits()

	var logicMC, pinMC *netlist.Macrocell
	ig.MCs.Each(func(ref netlist.MacrocellRef, mc *netlist.Macrocell) {
		loc, ok := og.MCLoc[ref]
		if !ok || loc.FB != fb || loc.I != i {
			return
		}
		if mc.Type.IsPinInput() {
			pinMC = mc
		} else {
			logicMC = mc
		}
	})

	switch {
	case pinMC != nil && pinMC.Type == netlist.PinInputReg:
		m.ZIAMode = IOBZIAModeReg
	case pinMC != nil && pinMC.Type == netlist.PinInputUnreg:
		m.ZIAMode = IOBZIAModePAD
	default:
		m.ZIAMode = IOBZIAModeDisabled
	}

	regOwner, ffInIBuf := logicMC, false
	if pinMC != nil && pinMC.RegBits != nil {
		regOwner, ffInIBuf = pinMC, true
	}
	if regOwner != nil && regOwner.RegBits != nil {
		rb := regOwner.RegBits
		m.ClkSrc = clockSrcToFF(rb.ClkInput)
		m.FFInIBuf = ffInIBuf
		m.RSrc = resetSrcToFF(rb.ResetInput)
		m.SSrc = setSrcToFF(rb.SetInput)
		m.FFMode = FFModeDFF
		m.InitState = true
	}

	if logicMC == nil {
		return m
	}

	m.FBMode = feedbackModeOf(logicMC)
	m.OutputRegistered = logicMC.RegBits != nil

	if logicMC.XorBits != nil && logicMC.XorBits.AndTermInput != nil {
		m.XorMode = XorPTC
	}

	if logicMC.IOBits != nil && logicMC.IOBits.OE != nil {
		m.OE = logicMC.IOBits.OE.Kind
	}

	return m
}

func feedbackModeOf(mc *netlist.Macrocell) FeedbackMode {
	switch {
	case mc.RegFeedbackUsed:
		return FeedbackReg
	case mc.XorFeedbackUsed:
		return FeedbackComb
	default:
		return FeedbackDisabled
	}
}

func clockSrcToFF(c netlist.ClockSrc) FFClkSrc {
	switch c.Kind {
	case netlist.ClockGCK0:
		return ClkGCK0
	case netlist.ClockGCK1:
		return ClkGCK1
	case netlist.ClockGCK2:
		return ClkGCK2
	default:
		return ClkPTC
	}
}

func resetSrcToFF(r *netlist.RegRS) FFResetSrc {
	if r == nil {
		return ResetDisabled
	}
	switch r.Kind {
	case netlist.RSGSR:
		return ResetGSR
	case netlist.RSPTerm:
		return ResetCTR
	default:
		return ResetDisabled
	}
}

func setSrcToFF(s *netlist.RegRS) FFSetSrc {
	if s == nil {
		return SetDisabled
	}
	switch s.Kind {
	case netlist.RSGSR:
		return SetGSR
	case netlist.RSPTerm:
		return SetCTS
	default:
		return SetDisabled
	}
}

// assembleGlobalNets derives each global net's enable/invert fuses from
// where PAR actually placed its driving macrocell: a GCK/GTS net is
// "enabled" exactly when some buffer's input landed on that net's pad.
// Polarity (gsr_invert, gts_invert) has no netlist-level counterpart in
// this model, so it stays at DefaultGlobalNets' values, except that an
// enabled GTS net has its GTSInvert cleared. See DESIGN.md.
func assembleGlobalNets(ig *netlist.InputGraph, og *par.OutputGraph, dev device.Device) GlobalNets {
	gn := DefaultGlobalNets()

	for i := 0; i < device.NumBufgClk; i++ {
		pad, _ := device.GetGCK(dev, i)
		for _, h := range ig.BufgClks.Indices() {
			if loc, ok := og.MCLoc[ig.BufgClks.Get(h).Input]; ok && loc.FB == pad.FB && loc.I == pad.MC {
				gn.GCKEnable[i] = true
				break
			}
		}
	}

	for i := 0; i < device.NumBufgGts; i++ {
		pad, _ := device.GetGTS(dev, i)
		for _, h := range ig.BufgGts.Indices() {
			if loc, ok := og.MCLoc[ig.BufgGts.Get(h).Input]; ok && loc.FB == pad.FB && loc.I == pad.MC {
				gn.GTSEnable[i] = true
				gn.GTSInvert[i] = false
				break
			}
		}
	}

	gn.GSREnable = ig.BufgGsr.Len() > 0

	return gn
}
