package par

import (
	"fmt"

	"xc2cpld/internal/device"
	"xc2cpld/internal/netlist"
)

// greedyPlace builds an initial placement: global buffers are resolved to
// concrete pad sites first (forcing their driving macrocell's LOC), then
// macrocells are placed in three passes - fully-LOC'd, FB-only LOC'd, then
// unconstrained in FB-major order - matching spec.md SS4.3 steps (a)-(g).
func greedyPlace(g *netlist.InputGraph, dev device.Device) (*chipPlacement, error) {
	if err := resolveBufgPads(g, "BUFGCLK", bufgClkInputs(g), clkPadCandidates(dev)); err != nil {
		return nil, err
	}
	if err := resolveBufgPads(g, "BUFGGTS", bufgGtsInputs(g), gtsPadCandidates(dev)); err != nil {
		return nil, err
	}
	if err := resolveBufgPads(g, "BUFGGSR", bufgGsrInputs(g), []device.FBMC{device.GetGSR(dev)}); err != nil {
		return nil, err
	}

	cp := newChipPlacement()

	var fullyLoc, fbOnlyLoc, unconstrained []netlist.MacrocellRef
	for _, h := range g.MCs.Indices() {
		mc := g.MCs.Get(h)
		switch {
		case mc.RequestedLoc != nil && mc.RequestedLoc.I != nil:
			fullyLoc = append(fullyLoc, h)
		case mc.RequestedLoc != nil:
			fbOnlyLoc = append(fbOnlyLoc, h)
		default:
			unconstrained = append(unconstrained, h)
		}
	}

	for _, h := range fullyLoc {
		mc := g.MCs.Get(h)
		fb, idx := mc.RequestedLoc.FB, *mc.RequestedLoc.I
		if !trySet(cp, g, int(fb), int(idx), mc.Type.IsPinInput(), h) {
			return nil, fmt.Errorf("par: cannot place macrocell %q at its requested location (%d,%d)", mc.Name, fb, idx)
		}
	}

	for _, h := range fbOnlyLoc {
		mc := g.MCs.Get(h)
		fb := int(mc.RequestedLoc.FB)
		placed := false
		for idx := 0; idx < device.MCsPerFB; idx++ {
			if trySet(cp, g, fb, idx, mc.Type.IsPinInput(), h) {
				placed = true
				break
			}
		}
		if !placed {
			return nil, fmt.Errorf("par: no compatible free site for macrocell %q in FB %d", mc.Name, fb)
		}
	}

	for _, h := range unconstrained {
		mc := g.MCs.Get(h)
		placed := false
		for fb := 0; fb < device.NumRealFBs && !placed; fb++ {
			for idx := 0; idx < device.MCsPerFB; idx++ {
				if trySet(cp, g, fb, idx, mc.Type.IsPinInput(), h) {
					placed = true
					break
				}
			}
		}
		if !placed {
			return nil, fmt.Errorf("par: no compatible free site for macrocell %q", mc.Name)
		}
	}

	return cp, nil
}

// trySet attempts to occupy (fb, idx)'s logic or pin half with mc, checking
// pairing compatibility against whatever already occupies the other half.
func trySet(cp *chipPlacement, g *netlist.InputGraph, fb, idx int, isPin bool, mcRef netlist.MacrocellRef) bool {
	site := &cp.fbs[fb][idx]
	half := &site.Logic
	other := &site.Pin
	if isPin {
		half, other = &site.Pin, &site.Logic
	}
	if half.State != SlotEmpty {
		return false
	}
	mc := g.MCs.Get(mcRef)
	if other.State == SlotOccupied {
		otherMC := g.MCs.Get(other.MC)
		var ok bool
		if isPin {
			ok = mcsCanBePaired(otherMC, mc)
		} else {
			ok = mcsCanBePaired(mc, otherMC)
		}
		if !ok {
			return false
		}
	}
	half.State = SlotOccupied
	half.MC = mcRef
	return true
}

func bufgClkInputs(g *netlist.InputGraph) []netlist.MacrocellRef {
	out := make([]netlist.MacrocellRef, g.BufgClks.Len())
	for _, h := range g.BufgClks.Indices() {
		out[h.Raw()] = g.BufgClks.Get(h).Input
	}
	return out
}

func bufgGtsInputs(g *netlist.InputGraph) []netlist.MacrocellRef {
	out := make([]netlist.MacrocellRef, g.BufgGts.Len())
	for _, h := range g.BufgGts.Indices() {
		out[h.Raw()] = g.BufgGts.Get(h).Input
	}
	return out
}

func bufgGsrInputs(g *netlist.InputGraph) []netlist.MacrocellRef {
	out := make([]netlist.MacrocellRef, g.BufgGsr.Len())
	for _, h := range g.BufgGsr.Indices() {
		out[h.Raw()] = g.BufgGsr.Get(h).Input
	}
	return out
}

func clkPadCandidates(dev device.Device) []device.FBMC {
	out := make([]device.FBMC, 0, device.NumBufgClk)
	for i := 0; i < device.NumBufgClk; i++ {
		pad, _ := device.GetGCK(dev, i)
		out = append(out, pad)
	}
	return out
}

func gtsPadCandidates(dev device.Device) []device.FBMC {
	out := make([]device.FBMC, 0, device.NumBufgGts)
	for i := 0; i < device.NumBufgGts; i++ {
		pad, _ := device.GetGTS(dev, i)
		out = append(out, pad)
	}
	return out
}

// resolveBufgPads assigns each buffer in refs to a distinct candidate pad:
// buffers whose driving macrocell already has a matching LOC claim that
// pad; the rest claim whatever candidates remain, forcing their driving
// macrocell's LOC in the process.
func resolveBufgPads(g *netlist.InputGraph, kind string, refs []netlist.MacrocellRef, candidates []device.FBMC) error {
	claimed := make([]bool, len(candidates))
	var unresolved []int

	for i, mcRef := range refs {
		mc := g.MCs.Get(mcRef)
		if mc.RequestedLoc == nil {
			unresolved = append(unresolved, i)
			continue
		}
		found := -1
		for ci, c := range candidates {
			if claimed[ci] {
				continue
			}
			if c.FB == mc.RequestedLoc.FB && mc.RequestedLoc.I != nil && *mc.RequestedLoc.I == c.MC {
				found = ci
				break
			}
		}
		if found == -1 {
			return fmt.Errorf("%w: %s buffer driven by %q has no matching free pad", ErrGlobalNetWrongLoc, kind, mc.Name)
		}
		claimed[found] = true
	}

	for _, i := range unresolved {
		mc := g.MCs.Get(refs[i])
		found := -1
		for ci := range candidates {
			if !claimed[ci] {
				found = ci
				break
			}
		}
		if found == -1 {
			return fmt.Errorf("par: no free %s pad for macrocell %q", kind, mc.Name)
		}
		claimed[found] = true
		mcIdx := candidates[found].MC
		mc.RequestedLoc = &netlist.RequestedLocation{FB: candidates[found].FB, I: &mcIdx}
	}

	return nil
}
