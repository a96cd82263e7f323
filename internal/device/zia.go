package device

import "fmt"

// ZIAInputKind discriminates the tagged union of things a ZIA row can carry.
type ZIAInputKind uint8

const (
	// ZIAOne is the "no input selected" sentinel. It is also, confusingly,
	// the same code the hardware uses for a constant-one input - this is
	// load-bearing: the PAR ZIA backtracker treats a row holding ZIAOne as
	// free to claim, and restores ZIAOne on backtrack.
	ZIAOne ZIAInputKind = iota
	ZIADedicatedInput
	ZIAIBuf
	ZIAMacrocell
)

// ZIAInput is one candidate value a ZIA row can be configured to select.
// Comparable, so it can be used directly as a map key and with ==.
type ZIAInput struct {
	Kind ZIAInputKind
	IOB  uint16 // valid when Kind == ZIAIBuf
	FB   uint8  // valid when Kind == ZIAMacrocell
	MC   uint8  // valid when Kind == ZIAMacrocell
}

func (z ZIAInput) String() string {
	switch z.Kind {
	case ZIAOne:
		return "1"
	case ZIADedicatedInput:
		return "dedicated-input"
	case ZIAIBuf:
		return fmt.Sprintf("ibuf(%d)", z.IOB)
	case ZIAMacrocell:
		return fmt.Sprintf("mc(fb=%d,mc=%d)", z.FB, z.MC)
	default:
		return "invalid"
	}
}

// ZIARow returns the ordered candidate list for ZIA row idx (0..39) on dev.
// Candidate 0 is always ZIAOne, so an all-zero fuse encoding always decodes
// back to "no input" regardless of which row it is in.
//
// The real per-device candidate table (upstream's zia.rs) was not present
// in the reference pack this was built from; see SPEC_FULL.md SS12. The
// table below is synthesized to guarantee:
//   - every row can hold "no input" (candidate 0);
//   - the dedicated input pad is routable from every row;
//   - every IBuf and every Macrocell source is reachable from every row, so
//     up to InputsPerAndTerm (40) distinct sources can be routed
//     simultaneously into one FB.
func ZIARow(dev Device, idx int) []ZIAInput {
	if idx < 0 || idx >= InputsPerAndTerm {
		panic(fmt.Sprintf("device: ZIA row index %d out of range", idx))
	}

	row := make([]ZIAInput, 0, 1+4+8+8)
	row = append(row, ZIAInput{Kind: ZIAOne})
	row = append(row, ZIAInput{Kind: ZIADedicatedInput})

	// Each IBuf (32 IOBs total, fb in {0,1}, mc in 0..15) and each Macrocell
	// source is listed once in every row: stepping by 7 (IBuf) or 11
	// (Macrocell) modulo 40, both coprime to 40, visits all 40 rows, so any
	// 40 of the 64 possible {IBuf,Macrocell} sources routed into a single FB
	// can always find a free row.
	const spread = InputsPerAndTerm
	for fb := 0; fb < NumRealFBs; fb++ {
		for mc := 0; mc < MCsPerFB; mc++ {
			iob, _ := FBMCToIOB(dev, uint32(fb), uint32(mc))
			home := iob % InputsPerAndTerm
			for k := 0; k < spread; k++ {
				if (home+k*7)%InputsPerAndTerm == idx {
					row = append(row, ZIAInput{Kind: ZIAIBuf, IOB: uint16(iob)})
				}
			}

			mcHome := (fb*MCsPerFB + mc + 3) % InputsPerAndTerm
			for k := 0; k < spread; k++ {
				if (mcHome+k*11)%InputsPerAndTerm == idx {
					row = append(row, ZIAInput{Kind: ZIAMacrocell, FB: uint8(fb), MC: uint8(mc)})
				}
			}
		}
	}

	return row
}

// EncodeZIAChoice finds choice within row idx's candidate list and returns
// its index as 8 bits, bits[i] == bit i of the index (bits[7] is the MSB,
// printed first in the JEDEC record per spec.md SS6).
func EncodeZIAChoice(dev Device, idx int, choice ZIAInput) ([8]bool, error) {
	candidates := ZIARow(dev, idx)
	for i, c := range candidates {
		if c == choice {
			var bits [8]bool
			for b := 0; b < 8; b++ {
				bits[b] = (i>>b)&1 != 0
			}
			return bits, nil
		}
	}
	return [8]bool{}, fmt.Errorf("device: %v is not a valid ZIA choice for row %d", choice, idx)
}

// DecodeZIAChoice is the inverse of EncodeZIAChoice.
func DecodeZIAChoice(dev Device, idx int, bits [8]bool) (ZIAInput, error) {
	v := 0
	for b := 0; b < 8; b++ {
		if bits[b] {
			v |= 1 << b
		}
	}
	candidates := ZIARow(dev, idx)
	if v >= len(candidates) {
		return ZIAInput{}, fmt.Errorf("device: fuse value %d is not a valid ZIA choice for row %d", v, idx)
	}
	return candidates[v], nil
}
