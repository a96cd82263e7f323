package par

import (
	"xc2cpld/internal/device"
	"xc2cpld/internal/netlist"
)

// fbResult is one FB's fully-solved per-FB assignment plus its violation
// score (PtermExceeded+PtermLOCUnsatisfiable+TooManyInputs+Unroutable).
type fbResult struct {
	AndTerms AndTermAssignment
	ZIA      ZIAAssignment
	PerPTerm map[netlist.PTermRef]PTermZIARows
	Score    int
}

func assignFB(g *netlist.InputGraph, cp *chipPlacement, fb int, dev device.Device) fbResult {
	andAssign, ptermExceeded, ptermLOCUnsat := assignAndTerms(g, cp, fb)
	zia, perPTerm, tooManyInputs, unroutable := assignZIA(g, cp, fb, andAssign, dev)
	return fbResult{
		AndTerms: andAssign,
		ZIA:      zia,
		PerPTerm: perPTerm,
		Score:    ptermExceeded + ptermLOCUnsat + tooManyInputs + unroutable,
	}
}

// totalScore sums every real FB's violation score.
func totalScore(g *netlist.InputGraph, cp *chipPlacement, dev device.Device) int {
	total := 0
	for fb := 0; fb < device.NumRealFBs; fb++ {
		total += assignFB(g, cp, fb, dev).Score
	}
	return total
}

// violation attributes part of the chip's total score to a specific site
// half, for the repair loop's weighted random selection.
type violation struct {
	FB     uint32
	MC     uint32
	IsPin  bool
	Weight int
}

// findViolations re-scores the chip once per occupied, non-fully-LOC'd slot
// half with that half temporarily vacated, attributing the resulting score
// delta to it. A slot whose macrocell carries a concrete LOC is never
// reported, since moving it isn't a legal repair move.
func findViolations(g *netlist.InputGraph, cp *chipPlacement, dev device.Device) []violation {
	base := totalScore(g, cp, dev)
	var out []violation

	for fb := 0; fb < device.NumRealFBs; fb++ {
		for i := 0; i < device.MCsPerFB; i++ {
			for _, isPin := range []bool{false, true} {
				half := &cp.fbs[fb][i].Logic
				if isPin {
					half = &cp.fbs[fb][i].Pin
				}
				if half.State != SlotOccupied {
					continue
				}
				mc := g.MCs.Get(half.MC)
				if mc.RequestedLoc != nil && mc.RequestedLoc.I != nil {
					continue
				}

				saved := *half
				half.State = SlotEmpty
				scored := totalScore(g, cp, dev)
				*half = saved

				if delta := base - scored; delta > 0 {
					out = append(out, violation{FB: uint32(fb), MC: uint32(i), IsPin: isPin, Weight: delta})
				}
			}
		}
	}
	return out
}
