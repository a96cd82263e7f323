package par

import (
	"github.com/sirupsen/logrus"

	"xc2cpld/internal/device"
	"xc2cpld/internal/netlist"
)

// destCoord is a candidate (or source) site coordinate for a repair-loop
// swap, scoped to one half (logic or pin) of the site.
type destCoord struct {
	FB uint32
	MC uint32
}

// Do runs the full place-and-route pipeline: pterm dedup, sanity check,
// greedy initial placement, then up to opts.MaxIter rounds of min-conflicts
// repair. log may be nil, in which case the standard logger is used -
// mirroring the original engine's per-decision trace logging at Debug level.
func Do(g *netlist.InputGraph, dev device.Device, opts Options, log *logrus.Entry) (*OutputGraph, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	// Structurally-equal pterms must collapse onto one AND-array row before
	// capacity is counted or slots are assigned - everything downstream
	// (sanityCheck's row count, the AND-term backtracker's handle equality)
	// assumes one pool entry per distinct row.
	before := g.PTerms.Len()
	g.DedupPTerms()
	if merged := before - g.PTerms.Len(); merged > 0 {
		log.WithField("merged", merged).Debug("par: deduplicated structurally-equal pterms")
	}

	if err := sanityCheck(g, dev); err != nil {
		log.WithError(err).Warn("par: sanity check failed")
		return nil, err
	}

	cp, err := greedyPlace(g, dev)
	if err != nil {
		log.WithError(err).Warn("par: greedy placement failed")
		return nil, err
	}

	rnd := newRNG(opts.RNGSeed)

	for iter := uint32(0); iter < opts.MaxIter; iter++ {
		violations := findViolations(g, cp, dev)
		if len(violations) == 0 {
			log.WithField("iterations", iter).Info("par: placement converged")
			return buildOutputGraph(g, cp, dev), nil
		}

		log.WithField("iter", iter).WithField("violations", len(violations)).Debug("par: repair iteration")

		weights := make([]int, len(violations))
		for i, v := range violations {
			weights[i] = v.Weight
		}
		chosen := violations[rnd.weighted(weights)]

		destinations := legalDestinations(g, cp, chosen.IsPin, destCoord{FB: chosen.FB, MC: chosen.MC})
		if len(destinations) == 0 {
			continue
		}

		baseScore := totalScore(g, cp, dev)
		bestDelta := 0
		bestIdx := -1
		for i, d := range destinations {
			swapSlots(cp, chosen.IsPin, chosen.FB, chosen.MC, d.FB, d.MC)
			scored := totalScore(g, cp, dev)
			swapSlots(cp, chosen.IsPin, chosen.FB, chosen.MC, d.FB, d.MC)
			if delta := baseScore - scored; delta > bestDelta {
				bestDelta = delta
				bestIdx = i
			}
		}

		if bestIdx >= 0 {
			d := destinations[bestIdx]
			swapSlots(cp, chosen.IsPin, chosen.FB, chosen.MC, d.FB, d.MC)
		} else {
			d := destinations[rnd.intn(len(destinations))]
			swapSlots(cp, chosen.IsPin, chosen.FB, chosen.MC, d.FB, d.MC)
		}
	}

	return nil, ErrIterationsExceeded
}

// legalDestinations lists every site half of the same kind (logic or pin)
// that chosen may legally swap with: not banned, and if occupied, not held
// by a macrocell with a concrete LOC (which could not legally move to
// chosen's old site in return).
func legalDestinations(g *netlist.InputGraph, cp *chipPlacement, isPin bool, exclude destCoord) []destCoord {
	var out []destCoord
	for fb := 0; fb < numFBSlots; fb++ {
		for mc := 0; mc < device.MCsPerFB; mc++ {
			if uint32(fb) == exclude.FB && uint32(mc) == exclude.MC {
				continue
			}
			half := &cp.fbs[fb][mc].Logic
			if isPin {
				half = &cp.fbs[fb][mc].Pin
			}
			if half.State == SlotBanned {
				continue
			}
			if half.State == SlotOccupied {
				if loc := g.MCs.Get(half.MC).RequestedLoc; loc != nil && loc.I != nil {
					continue
				}
			}
			out = append(out, destCoord{FB: uint32(fb), MC: uint32(mc)})
		}
	}
	return out
}

func swapSlots(cp *chipPlacement, isPin bool, aFB, aMC, bFB, bMC uint32) {
	get := func(fb, mc uint32) *Slot {
		if isPin {
			return &cp.fbs[fb][mc].Pin
		}
		return &cp.fbs[fb][mc].Logic
	}
	a, b := get(aFB, aMC), get(bFB, bMC)
	*a, *b = *b, *a
}

// buildOutputGraph resolves final MC/pterm locations and per-FB ZIA/AND-term
// assignments into an OutputGraph, once the repair loop has reached a
// zero-violation placement.
func buildOutputGraph(g *netlist.InputGraph, cp *chipPlacement, dev device.Device) *OutputGraph {
	og := newOutputGraph(g)

	for fb := 0; fb < numFBSlots; fb++ {
		for i := 0; i < device.MCsPerFB; i++ {
			site := cp.fbs[fb][i]
			if site.Logic.State == SlotOccupied {
				og.MCLoc[site.Logic.MC] = netlist.AssignedLocation{FB: uint32(fb), I: uint32(i)}
			}
			if site.Pin.State == SlotOccupied {
				og.MCLoc[site.Pin.MC] = netlist.AssignedLocation{FB: uint32(fb), I: uint32(i)}
			}
		}
	}

	for fb := 0; fb < device.NumRealFBs; fb++ {
		res := assignFB(g, cp, fb, dev)
		og.ZIA[fb] = res.ZIA
		for slot, ref := range res.AndTerms {
			if ref != nil {
				og.PTermSlot[*ref] = netlist.AssignedLocation{FB: uint32(fb), I: uint32(slot)}
			}
		}
		for ref, rows := range res.PerPTerm {
			og.PTermZIA[ref] = rows
		}
	}

	return og
}
