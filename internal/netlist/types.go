// Package netlist holds the canonical in-memory representation of a
// technology-mapped netlist targeting a Coolrunner-II part: macrocells,
// product terms and global-buffer nodes, each optionally carrying a user
// location (LOC) constraint. It is built once by an external front end
// (Yosys-JSON ingestion and logic canonicalization are out of scope for this
// module - see spec.md SS1). PAR then mutates it in place: it deduplicates
// the product terms and writes resolved global-buffer LOCs onto the driving
// macrocells.
package netlist

import (
	"fmt"

	"xc2cpld/internal/objpool"
)

// MacrocellType is the functional role of a macrocell site half.
type MacrocellType int

const (
	BuriedComb MacrocellType = iota
	BuriedReg
	PinInputUnreg
	PinInputReg
	PinOutput
)

func (t MacrocellType) String() string {
	switch t {
	case BuriedComb:
		return "BuriedComb"
	case BuriedReg:
		return "BuriedReg"
	case PinInputUnreg:
		return "PinInputUnreg"
	case PinInputReg:
		return "PinInputReg"
	case PinOutput:
		return "PinOutput"
	default:
		return "invalid"
	}
}

// IsPinInput reports whether this type occupies the "pin-input" half of a
// macrocell site (as opposed to the "logic" half that BuriedComb, BuriedReg
// and PinOutput occupy). Pairing rules in the placer are asymmetric in this
// half.
func (t MacrocellType) IsPinInput() bool {
	return t == PinInputUnreg || t == PinInputReg
}

// RequestedLocation is a user LOC constraint: an FB, optionally pinned all
// the way down to a specific site index within it.
type RequestedLocation struct {
	FB uint32
	I  *uint32 // nil => FB-only constraint
}

// AssignedLocation is a fully resolved site coordinate, as recorded by PAR.
type AssignedLocation struct {
	FB uint32
	I  uint32
}

// MacrocellRef is a stable reference to a pool-resident Macrocell.
type MacrocellRef = objpool.Handle[Macrocell]

// PTermRef is a stable reference to a pool-resident PTerm.
type PTermRef = objpool.Handle[PTerm]

// IOOEKind is how a macrocell's output buffer enable is driven.
type IOOEKind int

const (
	OEAlwaysEnabled IOOEKind = iota
	OEAlwaysDisabled
	OEPTerm
	OEGTS0
	OEGTS1
	OEGTS2
	OEGTS3
)

// IOOE describes a macrocell's output-enable source.
type IOOE struct {
	Kind  IOOEKind
	PTerm PTermRef // valid when Kind == OEPTerm
}

// IOBits is present on macrocells that drive an IOB.
type IOBits struct {
	OE *IOOE
}

// XorBits is present on macrocells with a XOR/PLA logic gate.
type XorBits struct {
	AndTermInput  *PTermRef  // PTC fast-path input to the XOR gate, if used
	OrTermInputs  []PTermRef // OR-term inputs (any free AND-term slot)
}

// ClockSrcKind is the source driving a register's clock input.
type ClockSrcKind int

const (
	ClockGCK0 ClockSrcKind = iota
	ClockGCK1
	ClockGCK2
	ClockPTerm
)

// ClockSrc describes a register's clock source.
type ClockSrc struct {
	Kind  ClockSrcKind
	PTerm PTermRef // valid when Kind == ClockPTerm
}

// RegRSKind is the source driving a register's set or reset input.
type RegRSKind int

const (
	RSDisabled RegRSKind = iota
	RSGSR
	RSPTerm
)

// RegRS describes a register's set or reset source.
type RegRS struct {
	Kind  RegRSKind
	PTerm PTermRef // valid when Kind == RSPTerm
}

// RegBits is present on macrocells with a register.
type RegBits struct {
	CEInput  *PTermRef // PTC fast-path clock-enable input, if used
	ClkInput ClockSrc
	SetInput *RegRS // nil => disabled
	ResetInput *RegRS // nil => disabled
}

// Macrocell is one logic cell: optional IOB, XOR gate, and register.
type Macrocell struct {
	Name  string
	Type  MacrocellType
	IOBits *IOBits
	XorBits *XorBits
	RegBits *RegBits

	// RegFeedbackUsed is true when this macrocell's registered output feeds
	// back into the ZIA. A BuriedReg macrocell must have this set - if the
	// registered output isn't used anywhere, the macrocell wouldn't be
	// "buried" (its output would have to go to an IOB instead).
	RegFeedbackUsed bool
	// XorFeedbackUsed is true when this macrocell's combinational (XOR)
	// output feeds back into the ZIA.
	XorFeedbackUsed bool

	RequestedLoc *RequestedLocation
}

// PTermInputKind is which macrocell signal a product-term input samples.
type PTermInputKind int

const (
	InputPin PTermInputKind = iota
	InputXor
	InputReg
)

// PTermInput is one (true or complement) input to a product term.
type PTermInput struct {
	Kind PTermInputKind
	MC   MacrocellRef
}

// PTerm is one product term (AND-array row) before placement: the set of
// true and complement inputs it samples, each a (kind, macrocell) pair.
type PTerm struct {
	Name        string
	InputsTrue  []PTermInput
	InputsComp  []PTermInput
	RequestedLoc *RequestedLocation
}

// BufgClk, BufgGts and BufgGsr are global-buffer nodes: a dedicated,
// low-skew net driven by a single macrocell's output.
type BufgClk struct {
	Name         string
	Input        MacrocellRef
	RequestedLoc *RequestedLocation
}

type BufgGts struct {
	Name         string
	Input        MacrocellRef
	RequestedLoc *RequestedLocation
}

type BufgGsr struct {
	Name         string
	Input        MacrocellRef
	RequestedLoc *RequestedLocation
}

// InputGraph is the five append-only pools that make up a netlist.
type InputGraph struct {
	MCs      *objpool.Pool[Macrocell]
	PTerms   *objpool.Pool[PTerm]
	BufgClks *objpool.Pool[BufgClk]
	BufgGts  *objpool.Pool[BufgGts]
	BufgGsr  *objpool.Pool[BufgGsr]
}

// New returns an empty InputGraph ready to be populated by the front end.
func New() *InputGraph {
	return &InputGraph{
		MCs:      objpool.New[Macrocell](),
		PTerms:   objpool.New[PTerm](),
		BufgClks: objpool.New[BufgClk](),
		BufgGts:  objpool.New[BufgGts](),
		BufgGsr:  objpool.New[BufgGsr](),
	}
}

// Validate runs cheap structural consistency checks that have nothing to do
// with device capacity (those are PAR's sanity pass): every BuriedReg
// macrocell must have RegFeedbackUsed set, since an unused registered
// output would mean the macrocell isn't actually buried.
func (g *InputGraph) Validate() error {
	var err error
	g.MCs.Each(func(h MacrocellRef, mc *Macrocell) {
		if mc.Type == BuriedReg && !mc.RegFeedbackUsed {
			err = fmt.Errorf("netlist: macrocell %q is BuriedReg but RegFeedbackUsed is false", mc.Name)
		}
	})
	return err
}
