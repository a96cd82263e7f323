package netlist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsUnfedBuriedReg(t *testing.T) {
	g := New()
	g.MCs.Insert(Macrocell{Name: "m1", Type: BuriedReg, RegFeedbackUsed: false})
	require.Error(t, g.Validate())

	g2 := New()
	g2.MCs.Insert(Macrocell{Name: "m1", Type: BuriedReg, RegFeedbackUsed: true})
	require.NoError(t, g2.Validate())
}

func TestMacrocellTypeIsPinInput(t *testing.T) {
	assert.True(t, PinInputReg.IsPinInput())
	assert.True(t, PinInputUnreg.IsPinInput())
	assert.False(t, BuriedComb.IsPinInput())
	assert.False(t, BuriedReg.IsPinInput())
	assert.False(t, PinOutput.IsPinInput())
}

func TestDedupPTermsMergesStructuralDuplicates(t *testing.T) {
	g := New()
	m0 := g.MCs.Insert(Macrocell{Name: "a"})
	m1 := g.MCs.Insert(Macrocell{Name: "b"})

	p0 := g.PTerms.Insert(PTerm{
		Name:       "p0",
		InputsTrue: []PTermInput{{Kind: InputPin, MC: m0}, {Kind: InputPin, MC: m1}},
	})
	p1 := g.PTerms.Insert(PTerm{
		Name:       "p1",
		InputsTrue: []PTermInput{{Kind: InputPin, MC: m1}, {Kind: InputPin, MC: m0}}, // same set, different order
	})
	p2 := g.PTerms.Insert(PTerm{
		Name:       "p2",
		InputsTrue: []PTermInput{{Kind: InputPin, MC: m0}},
	})

	// Wire a macrocell's XOR OR-term inputs to all three, so we can check
	// the rewrite after dedup.
	xorMC := g.MCs.Insert(Macrocell{
		Name:    "x",
		Type:    BuriedComb,
		XorBits: &XorBits{OrTermInputs: []PTermRef{p0, p1, p2}},
	})

	mapping := g.DedupPTerms()
	assert.Equal(t, 2, g.PTerms.Len(), "p0 and p1 should merge, p2 stays distinct")
	assert.Equal(t, mapping[p0], mapping[p1])
	assert.NotEqual(t, mapping[p0], mapping[p2])

	xor := g.MCs.Get(xorMC)
	require.Len(t, xor.XorBits.OrTermInputs, 3)
	assert.Equal(t, xor.XorBits.OrTermInputs[0], xor.XorBits.OrTermInputs[1])
	assert.NotEqual(t, xor.XorBits.OrTermInputs[0], xor.XorBits.OrTermInputs[2])
}

func TestDedupPTermsDistinguishesTrueFromComplement(t *testing.T) {
	g := New()
	m0 := g.MCs.Insert(Macrocell{Name: "a"})

	p0 := g.PTerms.Insert(PTerm{Name: "p0", InputsTrue: []PTermInput{{Kind: InputPin, MC: m0}}})
	g.PTerms.Insert(PTerm{Name: "p1", InputsComp: []PTermInput{{Kind: InputPin, MC: m0}}})

	mapping := g.DedupPTerms()
	assert.Equal(t, 2, g.PTerms.Len())
	assert.Equal(t, 0, mapping[p0].Raw())
}

func TestJSONRoundTrip(t *testing.T) {
	g := New()
	m0 := g.MCs.Insert(Macrocell{Name: "in", Type: PinInputUnreg})
	p0 := g.PTerms.Insert(PTerm{Name: "p0", InputsTrue: []PTermInput{{Kind: InputPin, MC: m0}}})
	oe := &IOOE{Kind: OEPTerm, PTerm: p0}
	reg := &RegBits{ClkInput: ClockSrc{Kind: ClockGCK0}, SetInput: &RegRS{Kind: RSGSR}}
	g.MCs.Insert(Macrocell{
		Name:            "out",
		Type:            PinOutput,
		IOBits:          &IOBits{OE: oe},
		XorBits:         &XorBits{OrTermInputs: []PTermRef{p0}},
		RegBits:         reg,
		RegFeedbackUsed: true,
	})
	loc := uint32(3)
	g.BufgClks.Insert(BufgClk{Name: "clk0", Input: m0, RequestedLoc: &RequestedLocation{FB: 0, I: &loc}})

	data, err := json.Marshal(g)
	require.NoError(t, err)

	g2 := New()
	require.NoError(t, json.Unmarshal(data, g2))

	assert.Equal(t, g.MCs.Len(), g2.MCs.Len())
	assert.Equal(t, g.PTerms.Len(), g2.PTerms.Len())
	assert.Equal(t, g.BufgClks.Len(), g2.BufgClks.Len())

	out2 := g2.MCs.Get(1)
	assert.Equal(t, "out", out2.Name)
	assert.Equal(t, PinOutput, out2.Type)
	require.NotNil(t, out2.IOBits)
	require.NotNil(t, out2.IOBits.OE)
	assert.Equal(t, OEPTerm, out2.IOBits.OE.Kind)
	assert.Equal(t, p0, out2.IOBits.OE.PTerm)
	require.NotNil(t, out2.RegBits)
	assert.Equal(t, ClockGCK0, out2.RegBits.ClkInput.Kind)
	require.NotNil(t, out2.RegBits.SetInput)
	assert.Equal(t, RSGSR, out2.RegBits.SetInput.Kind)

	clk := g2.BufgClks.Get(0)
	require.NotNil(t, clk.RequestedLoc)
	require.NotNil(t, clk.RequestedLoc.I)
	assert.Equal(t, uint32(3), *clk.RequestedLoc.I)
}
