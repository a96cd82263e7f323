package par

import (
	"sort"

	"xc2cpld/internal/device"
	"xc2cpld/internal/netlist"
)

type andTermNeed struct {
	ref        netlist.PTermRef
	candidates []int
}

// assignAndTerms places every product term referenced by FB fb's macrocells
// into an AND-term slot. "Fast path" needs (OE/XOR-input/CE/clock/set/reset)
// get a small, mostly-fixed candidate set; OR-term inputs may land anywhere.
// Returns the assignment plus the PtermExceeded and PtermLOCUnsatisfiable
// violation counts from spec.md SS4.4.
func assignAndTerms(g *netlist.InputGraph, cp *chipPlacement, fb int) (AndTermAssignment, int, int) {
	needs := map[netlist.PTermRef][]int{}
	addNeed := func(ref netlist.PTermRef, cands []int) {
		if existing, ok := needs[ref]; ok {
			needs[ref] = intersectSlots(existing, cands)
		} else {
			needs[ref] = cands
		}
	}

	var orTermRefs []netlist.PTermRef

	visit := func(i int, mc *netlist.Macrocell) {
		if mc.IOBits != nil && mc.IOBits.OE != nil && mc.IOBits.OE.Kind == netlist.OEPTerm {
			addNeed(mc.IOBits.OE.PTerm, []int{device.GetPTB(i), device.CTE})
		}
		if mc.XorBits != nil {
			if mc.XorBits.AndTermInput != nil {
				addNeed(*mc.XorBits.AndTermInput, []int{device.GetPTC(i)})
			}
			orTermRefs = append(orTermRefs, mc.XorBits.OrTermInputs...)
		}
		if mc.RegBits != nil {
			if mc.RegBits.CEInput != nil {
				addNeed(*mc.RegBits.CEInput, []int{device.GetPTC(i)})
			}
			if mc.RegBits.ClkInput.Kind == netlist.ClockPTerm {
				addNeed(mc.RegBits.ClkInput.PTerm, []int{device.GetPTC(i), device.CTC})
			}
			if mc.RegBits.SetInput != nil && mc.RegBits.SetInput.Kind == netlist.RSPTerm {
				addNeed(mc.RegBits.SetInput.PTerm, []int{device.GetPTA(i), device.CTS})
			}
			if mc.RegBits.ResetInput != nil && mc.RegBits.ResetInput.Kind == netlist.RSPTerm {
				addNeed(mc.RegBits.ResetInput.PTerm, []int{device.GetPTA(i), device.CTR})
			}
		}
	}

	for i := 0; i < device.MCsPerFB; i++ {
		site := cp.fbs[fb][i]
		if site.Logic.State == SlotOccupied {
			visit(i, g.MCs.Get(site.Logic.MC))
		}
		if site.Pin.State == SlotOccupied {
			visit(i, g.MCs.Get(site.Pin.MC))
		}
	}

	ptermLOCUnsatisfiable := 0
	var ordered []andTermNeed
	for ref, cands := range needs {
		pt := g.PTerms.Get(ref)
		if pt.RequestedLoc != nil && pt.RequestedLoc.I != nil {
			want := int(*pt.RequestedLoc.I)
			if !containsInt(cands, want) {
				ptermLOCUnsatisfiable++
				continue
			}
			cands = []int{want}
		}
		ordered = append(ordered, andTermNeed{ref: ref, candidates: cands})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ref.Raw() < ordered[j].ref.Raw() })

	var assignment AndTermAssignment
	if ok := backtrackAndTerms(&assignment, ordered, 0); !ok {
		assignment = AndTermAssignment{}
		greedyAssignAndTerms(&assignment, ordered)
	}

	ptermExceeded := 0
	for _, n := range ordered {
		if !slotHolds(&assignment, n.candidates, n.ref) {
			ptermExceeded++
		}
	}

	// Place OR-term inputs: reuse a slot already holding the same ref,
	// otherwise claim the first free slot.
	placedOrTerms := map[netlist.PTermRef]bool{}
	for _, ref := range orTermRefs {
		if placedOrTerms[ref] {
			continue
		}
		placedOrTerms[ref] = true
		if findSlot(&assignment, ref) >= 0 {
			continue
		}
		slot := -1
		for s := 0; s < device.AndTermsPerFB; s++ {
			if assignment[s] == nil {
				slot = s
				break
			}
		}
		if slot < 0 {
			ptermExceeded++
			continue
		}
		r := ref
		assignment[slot] = &r
	}

	return assignment, ptermExceeded, ptermLOCUnsatisfiable
}

func backtrackAndTerms(assignment *AndTermAssignment, ordered []andTermNeed, idx int) bool {
	if idx == len(ordered) {
		return true
	}
	n := ordered[idx]
	for _, slot := range n.candidates {
		prev := assignment[slot]
		if prev != nil && *prev != n.ref {
			continue
		}
		ref := n.ref
		assignment[slot] = &ref
		if backtrackAndTerms(assignment, ordered, idx+1) {
			return true
		}
		assignment[slot] = prev
	}
	return false
}

// greedyAssignAndTerms is the fallback used when no arrangement satisfies
// every need simultaneously: assign each need its first available slot in
// deterministic order, counting (via the caller) whichever needs find none
// free. It never backtracks, so the resulting exceeded count is an upper
// bound on the true minimum, not necessarily optimal.
func greedyAssignAndTerms(assignment *AndTermAssignment, ordered []andTermNeed) {
	for _, n := range ordered {
		for _, slot := range n.candidates {
			if assignment[slot] == nil {
				ref := n.ref
				assignment[slot] = &ref
				break
			}
			if *assignment[slot] == n.ref {
				break
			}
		}
	}
}

func slotHolds(assignment *AndTermAssignment, candidates []int, ref netlist.PTermRef) bool {
	for _, slot := range candidates {
		if assignment[slot] != nil && *assignment[slot] == ref {
			return true
		}
	}
	return false
}

func findSlot(assignment *AndTermAssignment, ref netlist.PTermRef) int {
	for s, r := range assignment {
		if r != nil && *r == ref {
			return s
		}
	}
	return -1
}

func intersectSlots(a, b []int) []int {
	set := make(map[int]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	var out []int
	for _, v := range b {
		if set[v] {
			out = append(out, v)
		}
	}
	return out
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
