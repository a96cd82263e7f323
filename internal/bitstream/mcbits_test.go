package bitstream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"xc2cpld/internal/netlist"
)

func TestMCBitsEncodeDecodeRoundTrip(t *testing.T) {
	cases := []MCBits{
		DefaultMCBits(),
		{
			ClkSrc: ClkGCK2, FallingEdge: true, IsDDR: true,
			RSrc: ResetCTR, SSrc: SetGSR, FBMode: FeedbackReg,
			FFInIBuf: true, XorMode: XorPTCB, FFMode: FFModeDFFCE,
			InitState: false, ZIAMode: IOBZIAModeReg, SchmittTrigger: true,
			OutputRegistered: true, OE: netlist.OEGTS2,
			TerminationEnabled: true, SlewFast: false,
		},
		{
			ClkSrc: ClkCTC, RSrc: ResetPTA, SSrc: SetPTA,
			FBMode: FeedbackComb, XorMode: XorOne, FFMode: FFModeLatch,
			InitState: true, ZIAMode: IOBZIAModePAD, OE: netlist.OEAlwaysEnabled,
			SlewFast: true,
		},
	}

	for _, c := range cases {
		got := Decode(c.Encode())
		assert.Equal(t, c, got)
	}
}

func TestDefaultMCBitsEncodesPUBitAsZero(t *testing.T) {
	b := DefaultMCBits().Encode()
	// pu bit reads 0 when init_state is 1 (power-on default).
	assert.False(t, b[26])
}
