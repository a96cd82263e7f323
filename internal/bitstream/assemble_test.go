package bitstream

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xc2cpld/internal/device"
	"xc2cpld/internal/netlist"
	"xc2cpld/internal/par"
)

func simpleGraph() (*netlist.InputGraph, netlist.MacrocellRef, netlist.PTermRef) {
	g := netlist.New()
	p0 := g.PTerms.Insert(netlist.PTerm{Name: "p0"})
	mc := g.MCs.Insert(netlist.Macrocell{
		Name: "out",
		Type: netlist.PinOutput,
		IOBits: &netlist.IOBits{OE: &netlist.IOOE{Kind: netlist.OEAlwaysEnabled}},
		XorBits: &netlist.XorBits{OrTermInputs: []netlist.PTermRef{p0}},
	})
	return g, mc, p0
}

func TestAssembleProducesValidJED(t *testing.T) {
	g, _, _ := simpleGraph()
	og, err := par.Do(g, device.XC2C32A, par.DefaultOptions(), nil)
	require.NoError(t, err)

	bs := Assemble(device.Spec{Device: device.XC2C32A, Speed: "4", Package: "vq44"}, g, og, "4", "vq44")

	var buf bytes.Buffer
	require.NoError(t, bs.WriteJED(&buf))

	out := buf.String()
	assert.Contains(t, out, "QF12278*")
	assert.Contains(t, out, "N DEVICE XC2C32A-4-vq44*")
	assert.Contains(t, out, "\x02")
	assert.Contains(t, out, "\x030000\n")
}

func TestJEDRoundTrip(t *testing.T) {
	g, _, _ := simpleGraph()
	og, err := par.Do(g, device.XC2C32A, par.DefaultOptions(), nil)
	require.NoError(t, err)

	bs := Assemble(device.Spec{Device: device.XC2C32A, Speed: "4", Package: "vq44"}, g, og, "4", "vq44")

	var buf bytes.Buffer
	require.NoError(t, bs.WriteJED(&buf))

	parsed, err := Parse(buf.Bytes(), "xc2c32a-4-vq44")
	require.NoError(t, err)

	var reencoded bytes.Buffer
	require.NoError(t, parsed.WriteJED(&reencoded))

	assert.Equal(t, buf.String(), reencoded.String())
}

func TestBlankBitstreamRoundTrip(t *testing.T) {
	bs := Blank(device.XC2C32, "6", "qfg32")

	var buf bytes.Buffer
	require.NoError(t, bs.WriteJED(&buf))

	parsed, err := Parse(buf.Bytes(), "xc2c32-6-qfg32")
	require.NoError(t, err)

	var reencoded bytes.Buffer
	require.NoError(t, parsed.WriteJED(&reencoded))
	assert.Equal(t, buf.String(), reencoded.String())
}

func TestDumpHumanReadableDoesNotError(t *testing.T) {
	bs := Blank(device.XC2C32A, "4", "vq44")
	var buf bytes.Buffer
	require.NoError(t, bs.DumpHumanReadable(&buf))
	assert.Contains(t, buf.String(), "device type: XC2C32A")
	assert.Contains(t, buf.String(), "FF configuration for FB1_1")
}

func TestGlobalNetEnableFollowsPlacement(t *testing.T) {
	g := netlist.New()
	clkMC := g.MCs.Insert(netlist.Macrocell{Name: "clkbuf", Type: netlist.BuriedComb})
	g.BufgClks.Insert(netlist.BufgClk{Name: "sysclk", Input: clkMC,
		RequestedLoc: &netlist.RequestedLocation{FB: 0, I: uint32Ptr(0)}})

	og, err := par.Do(g, device.XC2C32A, par.DefaultOptions(), nil)
	require.NoError(t, err)

	bs := Assemble(device.Spec{Device: device.XC2C32A, Speed: "4", Package: "vq44"}, g, og, "4", "vq44")
	assert.True(t, bs.Global.GCKEnable[0])
}

func uint32Ptr(v uint32) *uint32 { return &v }
