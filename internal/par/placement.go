// Package par implements the place-and-route engine: greedy initial
// placement, min-conflicts iterative repair, and per-FB AND-term/ZIA
// backtracking assignment.
package par

import (
	"xc2cpld/internal/device"
	"xc2cpld/internal/netlist"
)

// SlotState is what occupies one half of a macrocell site.
type SlotState int

const (
	SlotEmpty SlotState = iota
	SlotBanned
	SlotOccupied
)

// Slot is one half (logic or pin-input) of a macrocell site.
type Slot struct {
	State SlotState
	MC    netlist.MacrocellRef // valid when State == SlotOccupied
}

// FBSlot is one full macrocell site: a logic half and a pin-input half.
type FBSlot struct {
	Logic Slot
	Pin   Slot
}

// fbIndexSynthetic is the synthetic third FB (index 2) that exists only to
// expose the dedicated input pin at site [0].Pin.
const fbIndexSynthetic = device.NumRealFBs

// numFBSlots is the number of FB-shaped slot arrays PAR tracks: the real
// FBs plus the synthetic one.
const numFBSlots = device.NumRealFBs + 1

// chipPlacement is the full mutable placement state: one FBSlot array per
// FB (including the synthetic FB), each device.MCsPerFB long.
type chipPlacement struct {
	fbs [numFBSlots][device.MCsPerFB]FBSlot
}

func newChipPlacement() *chipPlacement {
	var cp chipPlacement
	for mc := 0; mc < device.MCsPerFB; mc++ {
		if mc != 0 {
			cp.fbs[fbIndexSynthetic][mc].Logic.State = SlotBanned
			cp.fbs[fbIndexSynthetic][mc].Pin.State = SlotBanned
		} else {
			cp.fbs[fbIndexSynthetic][mc].Logic.State = SlotBanned
			// [0].Pin stays SlotEmpty: the one usable synthetic slot.
		}
	}
	return &cp
}

func (cp *chipPlacement) clone() *chipPlacement {
	out := *cp
	return &out
}

// mcLoc locates the slot (if any) occupied by mc, distinguishing which half.
type mcLoc struct {
	FB     uint32
	MC     uint32
	IsPin  bool
	Found  bool
}

func (cp *chipPlacement) find(mc netlist.MacrocellRef) mcLoc {
	for fb := 0; fb < numFBSlots; fb++ {
		for i := 0; i < device.MCsPerFB; i++ {
			s := cp.fbs[fb][i]
			if s.Logic.State == SlotOccupied && s.Logic.MC == mc {
				return mcLoc{FB: uint32(fb), MC: uint32(i), IsPin: false, Found: true}
			}
			if s.Pin.State == SlotOccupied && s.Pin.MC == mc {
				return mcLoc{FB: uint32(fb), MC: uint32(i), IsPin: true, Found: true}
			}
		}
	}
	return mcLoc{}
}

// AndTermAssignment maps each of a FB's 56 AND-term slots to its occupant.
// Product terms are deduplicated by structural equality before PAR
// (netlist.InputGraph.DedupPTerms), so two placements that would otherwise
// be "structurally equal" collapse to identical handles; a slot therefore
// holds at most one distinct occupant.
type AndTermAssignment [device.AndTermsPerFB]*netlist.PTermRef

// ZIAAssignment maps each of a FB's 40 ZIA rows to its resolved input. The
// zero value (device.ZIAOne) is the "row is free" sentinel.
type ZIAAssignment [device.InputsPerAndTerm]device.ZIAInput

func newZIAAssignment() ZIAAssignment {
	var z ZIAAssignment
	for i := range z {
		z[i] = device.ZIAInput{Kind: device.ZIAOne}
	}
	return z
}

// PTermZIARows records the ZIA rows a pterm's true/complement inputs
// resolved to, in the same order as the pterm's InputsTrue/InputsComp.
type PTermZIARows struct {
	True []int
	Comp []int
}

// OutputGraph parallels InputGraph with resolved placement information. It
// is built empty and mutated only by the placement and assignment code,
// never by callers.
type OutputGraph struct {
	Graph *netlist.InputGraph

	MCLoc     map[netlist.MacrocellRef]netlist.AssignedLocation
	PTermSlot map[netlist.PTermRef]netlist.AssignedLocation // FB, AND-term slot index
	ZIA       [device.NumRealFBs]ZIAAssignment
	PTermZIA  map[netlist.PTermRef]PTermZIARows
}

func newOutputGraph(g *netlist.InputGraph) *OutputGraph {
	return &OutputGraph{
		Graph:     g,
		MCLoc:     make(map[netlist.MacrocellRef]netlist.AssignedLocation),
		PTermSlot: make(map[netlist.PTermRef]netlist.AssignedLocation),
		ZIA:       [device.NumRealFBs]ZIAAssignment{newZIAAssignment(), newZIAAssignment()},
		PTermZIA:  make(map[netlist.PTermRef]PTermZIARows),
	}
}
