package par

import (
	"fmt"

	"xc2cpld/internal/device"
	"xc2cpld/internal/netlist"
)

// sanityCheck verifies hard capacity bounds and the PTC aliasing constraint
// before placement is attempted. It also propagates fully-resolved global
// buffer LOCs back into the graph (mutating RequestedLoc on the driving
// macrocell) the way spec.md SS4.2 describes.
func sanityCheck(g *netlist.InputGraph, dev device.Device) error {
	numFBs := device.NumFBs(dev)

	if g.MCs.Len() > 2*numFBs*device.MCsPerFB {
		return fmt.Errorf("%w: %d macrocells, capacity %d", ErrTooManyMCs, g.MCs.Len(), 2*numFBs*device.MCsPerFB)
	}
	if g.PTerms.Len() > numFBs*device.AndTermsPerFB {
		return fmt.Errorf("%w: %d unique product terms, capacity %d", ErrTooManyPTerms, g.PTerms.Len(), numFBs*device.AndTermsPerFB)
	}
	if g.BufgClks.Len() > device.NumBufgClk {
		return fmt.Errorf("%w: %d", ErrTooManyBufgClk, g.BufgClks.Len())
	}
	if g.BufgGts.Len() > device.NumBufgGts {
		return fmt.Errorf("%w: %d", ErrTooManyBufgGts, g.BufgGts.Len())
	}
	if g.BufgGsr.Len() > device.NumBufgGsr {
		return fmt.Errorf("%w: %d", ErrTooManyBufgGsr, g.BufgGsr.Len())
	}

	var ptcErr error
	g.MCs.Each(func(_ netlist.MacrocellRef, mc *netlist.Macrocell) {
		if ptcErr != nil || mc.RegBits == nil || mc.XorBits == nil {
			return
		}
		ce := mc.RegBits.CEInput
		xi := mc.XorBits.AndTermInput
		if ce == nil || xi == nil {
			return
		}
		if *ce != *xi {
			ptcErr = fmt.Errorf("%w: macrocell %q", ErrPTCNeverSatisfiable, mc.Name)
		}
	})
	if ptcErr != nil {
		return ptcErr
	}

	for _, h := range g.BufgClks.Indices() {
		b := g.BufgClks.Get(h)
		if err := checkBufgLoc(g, dev, b.Name, b.RequestedLoc, b.Input, func(i int) (device.FBMC, bool) {
			return device.GetGCK(dev, i)
		}); err != nil {
			return err
		}
	}
	for _, h := range g.BufgGts.Indices() {
		b := g.BufgGts.Get(h)
		if err := checkBufgLoc(g, dev, b.Name, b.RequestedLoc, b.Input, func(i int) (device.FBMC, bool) {
			return device.GetGTS(dev, i)
		}); err != nil {
			return err
		}
	}
	for _, h := range g.BufgGsr.Indices() {
		b := g.BufgGsr.Get(h)
		if err := checkBufgLoc(g, dev, b.Name, b.RequestedLoc, b.Input, func(i int) (device.FBMC, bool) {
			if i != 0 {
				return device.FBMC{}, false
			}
			return device.GetGSR(dev), true
		}); err != nil {
			return err
		}
	}

	return nil
}

// checkBufgLoc resolves a single global buffer's LOC when it names a pad
// index: if the driving macrocell carries a LOC, it must match the implied
// pad coordinate exactly; otherwise the macrocell's RequestedLoc is set to
// the fully-resolved pad site so later stages never need to re-derive it.
func checkBufgLoc(g *netlist.InputGraph, dev device.Device, name string, bufLoc *netlist.RequestedLocation, input netlist.MacrocellRef, pad func(int) (device.FBMC, bool)) error {
	if bufLoc == nil || bufLoc.I == nil {
		return nil
	}
	coord, ok := pad(int(*bufLoc.I))
	if !ok {
		return fmt.Errorf("%w: buffer %q has no pad at index %d", ErrGlobalNetWrongLoc, name, *bufLoc.I)
	}

	mc := g.MCs.Get(input)
	if mc.RequestedLoc != nil {
		if mc.RequestedLoc.FB != coord.FB || mc.RequestedLoc.I == nil || *mc.RequestedLoc.I != coord.MC {
			return fmt.Errorf("%w: buffer %q pad (%d,%d) conflicts with macrocell %q LOC", ErrGlobalNetWrongLoc, name, coord.FB, coord.MC, mc.Name)
		}
		return nil
	}

	mcIdx := coord.MC
	mc.RequestedLoc = &netlist.RequestedLocation{FB: coord.FB, I: &mcIdx}
	return nil
}
