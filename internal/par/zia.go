package par

import (
	"sort"

	"xc2cpld/internal/device"
	"xc2cpld/internal/netlist"
)

type ziaInputKey struct {
	Kind netlist.PTermInputKind
	MC   netlist.MacrocellRef
}

// assignZIA routes every (kind, source macrocell) signal referenced by any
// product term placed in FB fb to a free ZIA row. Returns the row
// assignment, the resolved true/complement row lists per pterm, and the
// TooManyInputs / Unroutable violation counts from spec.md SS4.4.
func assignZIA(g *netlist.InputGraph, cp *chipPlacement, fb int, assignment AndTermAssignment, dev device.Device) (ZIAAssignment, map[netlist.PTermRef]PTermZIARows, int, int) {
	zia := newZIAAssignment()

	refs := map[netlist.PTermRef]bool{}
	for _, r := range assignment {
		if r != nil {
			refs[*r] = true
		}
	}

	keySeen := map[ziaInputKey]bool{}
	var keys []ziaInputKey
	addKeys := func(inputs []netlist.PTermInput) {
		for _, in := range inputs {
			k := ziaInputKey{Kind: in.Kind, MC: in.MC}
			if !keySeen[k] {
				keySeen[k] = true
				keys = append(keys, k)
			}
		}
	}
	var ptermOrder []netlist.PTermRef
	for ref := range refs {
		ptermOrder = append(ptermOrder, ref)
	}
	sort.Slice(ptermOrder, func(i, j int) bool { return ptermOrder[i].Raw() < ptermOrder[j].Raw() })
	for _, ref := range ptermOrder {
		pt := g.PTerms.Get(ref)
		addKeys(pt.InputsTrue)
		addKeys(pt.InputsComp)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].MC.Raw() < keys[j].MC.Raw()
	})

	tooManyInputs := 0
	routable := keys
	if len(keys) > device.InputsPerAndTerm {
		tooManyInputs = len(keys) - device.InputsPerAndTerm
		routable = keys[:device.InputsPerAndTerm]
	}

	type ziaNeed struct {
		key        ziaInputKey
		desired    device.ZIAInput
		candidates []int
	}
	needs := make([]ziaNeed, len(routable))
	for i, k := range routable {
		desired := desiredZIAInput(g, cp, dev, k)
		var candidates []int
		for row := 0; row < device.InputsPerAndTerm; row++ {
			for _, c := range device.ZIARow(dev, row) {
				if c == desired {
					candidates = append(candidates, row)
					break
				}
			}
		}
		needs[i] = ziaNeed{key: k, desired: desired, candidates: candidates}
	}

	rowOf := map[ziaInputKey]int{}
	unroutable := 0

	var backtrack func(idx int) bool
	backtrack = func(idx int) bool {
		if idx == len(needs) {
			return true
		}
		n := needs[idx]
		for _, row := range n.candidates {
			if zia[row].Kind != device.ZIAOne {
				continue
			}
			zia[row] = n.desired
			rowOf[n.key] = row
			if backtrack(idx + 1) {
				return true
			}
			zia[row] = device.ZIAInput{Kind: device.ZIAOne}
			delete(rowOf, n.key)
		}
		return false
	}

	if !backtrack(0) {
		// No joint assignment routes every input; fall back to a
		// deterministic first-fit pass and count whatever it can't place.
		zia = newZIAAssignment()
		rowOf = map[ziaInputKey]int{}
		for _, n := range needs {
			placed := false
			for _, row := range n.candidates {
				if zia[row].Kind != device.ZIAOne {
					continue
				}
				zia[row] = n.desired
				rowOf[n.key] = row
				placed = true
				break
			}
			if !placed {
				unroutable++
			}
		}
	}

	perPTerm := make(map[netlist.PTermRef]PTermZIARows, len(ptermOrder))
	for _, ref := range ptermOrder {
		pt := g.PTerms.Get(ref)
		rows := PTermZIARows{}
		for _, in := range pt.InputsTrue {
			row, ok := rowOf[ziaInputKey{Kind: in.Kind, MC: in.MC}]
			if !ok {
				row = -1
			}
			rows.True = append(rows.True, row)
		}
		for _, in := range pt.InputsComp {
			row, ok := rowOf[ziaInputKey{Kind: in.Kind, MC: in.MC}]
			if !ok {
				row = -1
			}
			rows.Comp = append(rows.Comp, row)
		}
		perPTerm[ref] = rows
	}

	return zia, perPTerm, tooManyInputs, unroutable
}

func desiredZIAInput(g *netlist.InputGraph, cp *chipPlacement, dev device.Device, k ziaInputKey) device.ZIAInput {
	loc := cp.find(k.MC)

	switch k.Kind {
	case netlist.InputPin:
		if loc.Found && loc.FB == uint32(fbIndexSynthetic) && loc.MC == 0 {
			return device.ZIAInput{Kind: device.ZIADedicatedInput}
		}
		iob, _ := device.FBMCToIOB(dev, loc.FB, loc.MC)
		return device.ZIAInput{Kind: device.ZIAIBuf, IOB: uint16(iob)}
	case netlist.InputXor:
		return device.ZIAInput{Kind: device.ZIAMacrocell, FB: uint8(loc.FB), MC: uint8(loc.MC)}
	case netlist.InputReg:
		mc := g.MCs.Get(k.MC)
		if mc.Type == netlist.PinInputReg || mc.XorFeedbackUsed {
			iob, _ := device.FBMCToIOB(dev, loc.FB, loc.MC)
			return device.ZIAInput{Kind: device.ZIAIBuf, IOB: uint16(iob)}
		}
		return device.ZIAInput{Kind: device.ZIAMacrocell, FB: uint8(loc.FB), MC: uint8(loc.MC)}
	default:
		return device.ZIAInput{Kind: device.ZIAOne}
	}
}
