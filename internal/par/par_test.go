package par

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xc2cpld/internal/device"
	"xc2cpld/internal/netlist"
)

func TestMcsCanBePaired(t *testing.T) {
	cases := []struct {
		logic, pin netlist.MacrocellType
		want       bool
	}{
		{netlist.BuriedComb, netlist.PinInputUnreg, true},
		{netlist.BuriedComb, netlist.PinInputReg, true},
		{netlist.BuriedReg, netlist.PinInputUnreg, true},
		{netlist.BuriedReg, netlist.PinInputReg, false},
		{netlist.PinOutput, netlist.PinInputUnreg, false},
		{netlist.BuriedComb, netlist.BuriedComb, false},
	}
	for _, c := range cases {
		logic := netlist.Macrocell{Type: c.logic}
		pin := netlist.Macrocell{Type: c.pin}
		assert.Equal(t, c.want, mcsCanBePaired(&logic, &pin))
	}
}

func TestMcsCanBePairedRespectsXorFeedback(t *testing.T) {
	logic := netlist.Macrocell{Type: netlist.BuriedReg, XorFeedbackUsed: true}
	pin := netlist.Macrocell{Type: netlist.PinInputUnreg}
	assert.False(t, mcsCanBePaired(&logic, &pin))
}

func TestSanityCheckTooManyMCs(t *testing.T) {
	g := netlist.New()
	for i := 0; i < 2*device.NumRealFBs*device.MCsPerFB+1; i++ {
		g.MCs.Insert(netlist.Macrocell{Name: "m", Type: netlist.BuriedComb})
	}
	err := sanityCheck(g, device.XC2C32A)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyMCs))
}

func TestSanityCheckExactCapacitySucceeds(t *testing.T) {
	g := netlist.New()
	for i := 0; i < 2*device.NumRealFBs*device.MCsPerFB; i++ {
		g.MCs.Insert(netlist.Macrocell{Name: "m", Type: netlist.BuriedComb})
	}
	assert.NoError(t, sanityCheck(g, device.XC2C32A))
}

func TestSanityCheckPTCNeverSatisfiable(t *testing.T) {
	g := netlist.New()
	p0 := g.PTerms.Insert(netlist.PTerm{Name: "p0"})
	p1 := g.PTerms.Insert(netlist.PTerm{Name: "p1"})
	g.MCs.Insert(netlist.Macrocell{
		Name:    "m",
		Type:    netlist.BuriedReg,
		XorBits: &netlist.XorBits{AndTermInput: &p0},
		RegBits: &netlist.RegBits{CEInput: &p1, ClkInput: netlist.ClockSrc{Kind: netlist.ClockGCK0}},
	})
	err := sanityCheck(g, device.XC2C32A)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPTCNeverSatisfiable))
}

func TestSanityCheckPTCSharedSameTermSucceeds(t *testing.T) {
	g := netlist.New()
	p0 := g.PTerms.Insert(netlist.PTerm{Name: "p0"})
	g.MCs.Insert(netlist.Macrocell{
		Name:    "m",
		Type:    netlist.BuriedReg,
		XorBits: &netlist.XorBits{AndTermInput: &p0},
		RegBits: &netlist.RegBits{CEInput: &p0, ClkInput: netlist.ClockSrc{Kind: netlist.ClockGCK0}},
	})
	assert.NoError(t, sanityCheck(g, device.XC2C32A))
}

func TestRNGDeterministic(t *testing.T) {
	seed := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	a := newRNG(seed)
	b := newRNG(seed)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.next(), b.next())
	}
}

func TestDoSingleBuriedCombConverges(t *testing.T) {
	g := netlist.New()
	g.MCs.Insert(netlist.Macrocell{Name: "only", Type: netlist.BuriedComb})

	og, err := Do(g, device.XC2C32A, DefaultOptions(), nil)
	require.NoError(t, err)
	require.NotNil(t, og)
	assert.Len(t, og.MCLoc, 1)
}

func TestDoSimpleInverterRoutesOneZIARow(t *testing.T) {
	g := netlist.New()
	src := g.MCs.Insert(netlist.Macrocell{Name: "in", Type: netlist.PinOutput})
	g.MCs.Insert(netlist.Macrocell{
		Name:    "out",
		Type:    netlist.PinOutput,
		XorBits: &netlist.XorBits{},
	})
	p0 := g.PTerms.Insert(netlist.PTerm{Name: "p0", InputsComp: []netlist.PTermInput{{Kind: netlist.InputXor, MC: src}}})
	outMC := netlist.MacrocellRef(1)
	g.MCs.Get(outMC).XorBits.OrTermInputs = []netlist.PTermRef{p0}

	og, err := Do(g, device.XC2C32A, DefaultOptions(), nil)
	require.NoError(t, err)

	usedRows := 0
	for fb := 0; fb < device.NumRealFBs; fb++ {
		for _, zi := range og.ZIA[fb] {
			if zi.Kind != device.ZIAOne {
				usedRows++
			}
		}
	}
	assert.Equal(t, 1, usedRows)
}

func TestDoTooManyMacrocellsFailsSanity(t *testing.T) {
	g := netlist.New()
	for i := 0; i < 2*device.NumRealFBs*device.MCsPerFB+1; i++ {
		g.MCs.Insert(netlist.Macrocell{Name: "m", Type: netlist.BuriedComb})
	}
	_, err := Do(g, device.XC2C32A, DefaultOptions(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooManyMCs))
}

func TestDoMergesStructurallyEqualPTermsOntoOneSlot(t *testing.T) {
	g := netlist.New()
	src := g.MCs.Insert(netlist.Macrocell{Name: "in", Type: netlist.PinOutput})
	out0 := g.MCs.Insert(netlist.Macrocell{Name: "out0", Type: netlist.PinOutput, XorBits: &netlist.XorBits{}})
	out1 := g.MCs.Insert(netlist.Macrocell{Name: "out1", Type: netlist.PinOutput, XorBits: &netlist.XorBits{}})

	// Two distinct pool entries, but structurally identical: both sample
	// the same (complement) input from src.
	p0 := g.PTerms.Insert(netlist.PTerm{Name: "p0", InputsComp: []netlist.PTermInput{{Kind: netlist.InputXor, MC: src}}})
	p1 := g.PTerms.Insert(netlist.PTerm{Name: "p1", InputsComp: []netlist.PTermInput{{Kind: netlist.InputXor, MC: src}}})
	g.MCs.Get(out0).XorBits.OrTermInputs = []netlist.PTermRef{p0}
	g.MCs.Get(out1).XorBits.OrTermInputs = []netlist.PTermRef{p1}

	og, err := Do(g, device.XC2C32A, DefaultOptions(), nil)
	require.NoError(t, err)

	// DedupPTerms rewrote both refs onto the same surviving handle before
	// PAR ran, so the AND-term backtracker only ever sees one need and
	// both macrocells' OR-term inputs resolve to the same slot.
	usedSlots := map[netlist.AssignedLocation]bool{}
	for _, loc := range og.PTermSlot {
		usedSlots[loc] = true
	}
	assert.Len(t, usedSlots, 1)
}

func TestDoZeroMaxIterFailsWithIterationsExceeded(t *testing.T) {
	g := netlist.New()
	g.MCs.Insert(netlist.Macrocell{Name: "only", Type: netlist.BuriedComb})
	opts := Options{MaxIter: 0, RNGSeed: DefaultOptions().RNGSeed}
	_, err := Do(g, device.XC2C32A, opts, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIterationsExceeded))
}
