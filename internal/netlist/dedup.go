package netlist

import (
	"fmt"
	"sort"
	"strings"

	"xc2cpld/internal/objpool"
)

// DedupPTerms merges structurally-equal product terms (same set of true
// inputs, same set of complement inputs) into a single pool entry, and
// rewrites every reference to a merged-away handle to point at the survivor.
// Run once, right after the netlist is fully built and before it is handed
// to PAR - two AND-terms that sample the same signals drive the same wire
// and must share one AND-array row, or PAR will place (and account
// capacity for) duplicates that the hardware doesn't actually have.
func (g *InputGraph) DedupPTerms() map[PTermRef]PTermRef {
	n := g.PTerms.Len()
	mapping := make(map[PTermRef]PTermRef, n)
	seen := make(map[string]PTermRef, n)
	merged := objpool.New[PTerm]()

	for i := 0; i < n; i++ {
		h := PTermRef(i)
		pt := g.PTerms.Get(h)
		key := ptermKey(pt)
		if survivor, ok := seen[key]; ok {
			mapping[h] = survivor
			// Promote a RequestedLoc onto the survivor if only the
			// duplicate carries one. If both carry one, the survivor's
			// is kept and the duplicate's is dropped; a conflict
			// between the two is neither checked nor reported.
			s := merged.Get(survivor)
			if s.RequestedLoc == nil && pt.RequestedLoc != nil {
				s.RequestedLoc = pt.RequestedLoc
			}
			continue
		}
		nh := merged.Insert(*pt)
		seen[key] = nh
		mapping[h] = nh
	}

	g.PTerms = merged
	g.rewritePTermRefs(mapping)
	return mapping
}

func (g *InputGraph) rewritePTermRefs(mapping map[PTermRef]PTermRef) {
	remap := func(h PTermRef) PTermRef {
		if nh, ok := mapping[h]; ok {
			return nh
		}
		return h
	}

	g.MCs.Each(func(_ MacrocellRef, mc *Macrocell) {
		if mc.IOBits != nil && mc.IOBits.OE != nil && mc.IOBits.OE.Kind == OEPTerm {
			mc.IOBits.OE.PTerm = remap(mc.IOBits.OE.PTerm)
		}
		if mc.XorBits != nil {
			if mc.XorBits.AndTermInput != nil {
				r := remap(*mc.XorBits.AndTermInput)
				mc.XorBits.AndTermInput = &r
			}
			for i, r := range mc.XorBits.OrTermInputs {
				mc.XorBits.OrTermInputs[i] = remap(r)
			}
		}
		if mc.RegBits != nil {
			if mc.RegBits.CEInput != nil {
				r := remap(*mc.RegBits.CEInput)
				mc.RegBits.CEInput = &r
			}
			if mc.RegBits.ClkInput.Kind == ClockPTerm {
				mc.RegBits.ClkInput.PTerm = remap(mc.RegBits.ClkInput.PTerm)
			}
			if mc.RegBits.SetInput != nil && mc.RegBits.SetInput.Kind == RSPTerm {
				mc.RegBits.SetInput.PTerm = remap(mc.RegBits.SetInput.PTerm)
			}
			if mc.RegBits.ResetInput != nil && mc.RegBits.ResetInput.Kind == RSPTerm {
				mc.RegBits.ResetInput.PTerm = remap(mc.RegBits.ResetInput.PTerm)
			}
		}
	})
}

// ptermKey builds a canonical string identifying a product term's input set,
// order-independent within each of the true/complement sides.
func ptermKey(pt *PTerm) string {
	var b strings.Builder
	b.WriteString(sortedInputsKey(pt.InputsTrue))
	b.WriteByte('|')
	b.WriteString(sortedInputsKey(pt.InputsComp))
	return b.String()
}

func sortedInputsKey(inputs []PTermInput) string {
	parts := make([]string, len(inputs))
	for i, in := range inputs {
		parts[i] = fmt.Sprintf("%d:%d", in.Kind, in.MC.Raw())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
