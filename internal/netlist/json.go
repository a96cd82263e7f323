package netlist

import (
	"encoding/json"
	"fmt"
)

// The wire format mirrors the pool structure directly: each pool becomes a
// JSON array, and cross-references are plain integer indices into the
// referenced pool's array. This is the same shape the upstream PAR binary's
// JSON front end consumes (see original_source's inputgraph-json-par.rs),
// so golden netlist fixtures can be authored directly against it.

type jsonRequestedLoc struct {
	FB uint32  `json:"fb"`
	I  *uint32 `json:"i,omitempty"`
}

type jsonIOOE struct {
	Kind  string `json:"kind"`
	PTerm int    `json:"pterm,omitempty"`
}

type jsonIOBits struct {
	OE *jsonIOOE `json:"oe,omitempty"`
}

type jsonXorBits struct {
	AndTermInput *int  `json:"and_term_input,omitempty"`
	OrTermInputs []int `json:"or_term_inputs,omitempty"`
}

type jsonClockSrc struct {
	Kind  string `json:"kind"`
	PTerm int    `json:"pterm,omitempty"`
}

type jsonRegRS struct {
	Kind  string `json:"kind"`
	PTerm int    `json:"pterm,omitempty"`
}

type jsonRegBits struct {
	CEInput    *int          `json:"ce_input,omitempty"`
	ClkInput   jsonClockSrc  `json:"clk_input"`
	SetInput   *jsonRegRS    `json:"set_input,omitempty"`
	ResetInput *jsonRegRS    `json:"reset_input,omitempty"`
}

type jsonMacrocell struct {
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	IOBits          *jsonIOBits       `json:"io_bits,omitempty"`
	XorBits         *jsonXorBits      `json:"xor_bits,omitempty"`
	RegBits         *jsonRegBits      `json:"reg_bits,omitempty"`
	RegFeedbackUsed bool              `json:"reg_feedback_used"`
	XorFeedbackUsed bool              `json:"xor_feedback_used"`
	RequestedLoc    *jsonRequestedLoc `json:"requested_loc,omitempty"`
}

type jsonPTermInput struct {
	Kind string `json:"kind"`
	MC   int    `json:"mc"`
}

type jsonPTerm struct {
	Name         string            `json:"name"`
	InputsTrue   []jsonPTermInput  `json:"inputs_true"`
	InputsComp   []jsonPTermInput  `json:"inputs_comp"`
	RequestedLoc *jsonRequestedLoc `json:"requested_loc,omitempty"`
}

type jsonBufg struct {
	Name         string            `json:"name"`
	Input        int               `json:"input"`
	RequestedLoc *jsonRequestedLoc `json:"requested_loc,omitempty"`
}

type jsonInputGraph struct {
	Macrocells []jsonMacrocell `json:"macrocells"`
	PTerms     []jsonPTerm     `json:"pterms"`
	BufgClks   []jsonBufg      `json:"bufg_clks"`
	BufgGts    []jsonBufg      `json:"bufg_gts"`
	BufgGsr    []jsonBufg      `json:"bufg_gsr"`
}

var mcTypeNames = map[MacrocellType]string{
	BuriedComb:    "buried_comb",
	BuriedReg:     "buried_reg",
	PinInputUnreg: "pin_input_unreg",
	PinInputReg:   "pin_input_reg",
	PinOutput:     "pin_output",
}

var mcTypeValues = reverseStringMap(mcTypeNames)

func reverseStringMap[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func locToJSON(l *RequestedLocation) *jsonRequestedLoc {
	if l == nil {
		return nil
	}
	return &jsonRequestedLoc{FB: l.FB, I: l.I}
}

func locFromJSON(l *jsonRequestedLoc) *RequestedLocation {
	if l == nil {
		return nil
	}
	return &RequestedLocation{FB: l.FB, I: l.I}
}

var ioOEKindNames = map[IOOEKind]string{
	OEAlwaysEnabled:  "always_enabled",
	OEAlwaysDisabled: "always_disabled",
	OEPTerm:          "pterm",
	OEGTS0:           "gts0",
	OEGTS1:           "gts1",
	OEGTS2:           "gts2",
	OEGTS3:           "gts3",
}
var ioOEKindValues = reverseStringMap(ioOEKindNames)

var clockSrcKindNames = map[ClockSrcKind]string{
	ClockGCK0:  "gck0",
	ClockGCK1:  "gck1",
	ClockGCK2:  "gck2",
	ClockPTerm: "pterm",
}
var clockSrcKindValues = reverseStringMap(clockSrcKindNames)

var regRSKindNames = map[RegRSKind]string{
	RSDisabled: "disabled",
	RSGSR:      "gsr",
	RSPTerm:    "pterm",
}
var regRSKindValues = reverseStringMap(regRSKindNames)

var pTermInputKindNames = map[PTermInputKind]string{
	InputPin: "pin",
	InputXor: "xor",
	InputReg: "reg",
}
var pTermInputKindValues = reverseStringMap(pTermInputKindNames)

// MarshalJSON renders the graph in the index-referenced wire format.
func (g *InputGraph) MarshalJSON() ([]byte, error) {
	out := jsonInputGraph{}

	for _, h := range g.MCs.Indices() {
		mc := g.MCs.Get(h)
		jm := jsonMacrocell{
			Name:            mc.Name,
			Type:            mcTypeNames[mc.Type],
			RegFeedbackUsed: mc.RegFeedbackUsed,
			XorFeedbackUsed: mc.XorFeedbackUsed,
			RequestedLoc:    locToJSON(mc.RequestedLoc),
		}
		if mc.IOBits != nil {
			jm.IOBits = &jsonIOBits{}
			if mc.IOBits.OE != nil {
				jm.IOBits.OE = &jsonIOOE{Kind: ioOEKindNames[mc.IOBits.OE.Kind]}
				if mc.IOBits.OE.Kind == OEPTerm {
					jm.IOBits.OE.PTerm = mc.IOBits.OE.PTerm.Raw()
				}
			}
		}
		if mc.XorBits != nil {
			jm.XorBits = &jsonXorBits{}
			if mc.XorBits.AndTermInput != nil {
				v := mc.XorBits.AndTermInput.Raw()
				jm.XorBits.AndTermInput = &v
			}
			for _, r := range mc.XorBits.OrTermInputs {
				jm.XorBits.OrTermInputs = append(jm.XorBits.OrTermInputs, r.Raw())
			}
		}
		if mc.RegBits != nil {
			jm.RegBits = &jsonRegBits{
				ClkInput: jsonClockSrc{Kind: clockSrcKindNames[mc.RegBits.ClkInput.Kind]},
			}
			if mc.RegBits.ClkInput.Kind == ClockPTerm {
				jm.RegBits.ClkInput.PTerm = mc.RegBits.ClkInput.PTerm.Raw()
			}
			if mc.RegBits.CEInput != nil {
				v := mc.RegBits.CEInput.Raw()
				jm.RegBits.CEInput = &v
			}
			if mc.RegBits.SetInput != nil {
				jr := &jsonRegRS{Kind: regRSKindNames[mc.RegBits.SetInput.Kind]}
				if mc.RegBits.SetInput.Kind == RSPTerm {
					jr.PTerm = mc.RegBits.SetInput.PTerm.Raw()
				}
				jm.RegBits.SetInput = jr
			}
			if mc.RegBits.ResetInput != nil {
				jr := &jsonRegRS{Kind: regRSKindNames[mc.RegBits.ResetInput.Kind]}
				if mc.RegBits.ResetInput.Kind == RSPTerm {
					jr.PTerm = mc.RegBits.ResetInput.PTerm.Raw()
				}
				jm.RegBits.ResetInput = jr
			}
		}
		out.Macrocells = append(out.Macrocells, jm)
	}

	for _, h := range g.PTerms.Indices() {
		pt := g.PTerms.Get(h)
		jp := jsonPTerm{Name: pt.Name, RequestedLoc: locToJSON(pt.RequestedLoc)}
		for _, in := range pt.InputsTrue {
			jp.InputsTrue = append(jp.InputsTrue, jsonPTermInput{Kind: pTermInputKindNames[in.Kind], MC: in.MC.Raw()})
		}
		for _, in := range pt.InputsComp {
			jp.InputsComp = append(jp.InputsComp, jsonPTermInput{Kind: pTermInputKindNames[in.Kind], MC: in.MC.Raw()})
		}
		out.PTerms = append(out.PTerms, jp)
	}

	for _, h := range g.BufgClks.Indices() {
		b := g.BufgClks.Get(h)
		out.BufgClks = append(out.BufgClks, jsonBufg{Name: b.Name, Input: b.Input.Raw(), RequestedLoc: locToJSON(b.RequestedLoc)})
	}
	for _, h := range g.BufgGts.Indices() {
		b := g.BufgGts.Get(h)
		out.BufgGts = append(out.BufgGts, jsonBufg{Name: b.Name, Input: b.Input.Raw(), RequestedLoc: locToJSON(b.RequestedLoc)})
	}
	for _, h := range g.BufgGsr.Indices() {
		b := g.BufgGsr.Get(h)
		out.BufgGsr = append(out.BufgGsr, jsonBufg{Name: b.Name, Input: b.Input.Raw(), RequestedLoc: locToJSON(b.RequestedLoc)})
	}

	return json.Marshal(out)
}

// UnmarshalJSON parses the index-referenced wire format, rebuilding fresh
// pools. The receiver must be a non-nil *InputGraph; any existing pool
// contents are discarded.
func (g *InputGraph) UnmarshalJSON(data []byte) error {
	var in jsonInputGraph
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("netlist: decode: %w", err)
	}

	fresh := New()

	for _, jm := range in.Macrocells {
		typ, ok := mcTypeValues[jm.Type]
		if !ok {
			return fmt.Errorf("netlist: macrocell %q: invalid type %q", jm.Name, jm.Type)
		}
		mc := Macrocell{
			Name:            jm.Name,
			Type:            typ,
			RegFeedbackUsed: jm.RegFeedbackUsed,
			XorFeedbackUsed: jm.XorFeedbackUsed,
			RequestedLoc:    locFromJSON(jm.RequestedLoc),
		}
		if jm.IOBits != nil {
			mc.IOBits = &IOBits{}
			if jm.IOBits.OE != nil {
				kind, ok := ioOEKindValues[jm.IOBits.OE.Kind]
				if !ok {
					return fmt.Errorf("netlist: macrocell %q: invalid oe kind %q", jm.Name, jm.IOBits.OE.Kind)
				}
				mc.IOBits.OE = &IOOE{Kind: kind, PTerm: PTermRef(jm.IOBits.OE.PTerm)}
			}
		}
		if jm.XorBits != nil {
			xb := &XorBits{}
			if jm.XorBits.AndTermInput != nil {
				r := PTermRef(*jm.XorBits.AndTermInput)
				xb.AndTermInput = &r
			}
			for _, v := range jm.XorBits.OrTermInputs {
				xb.OrTermInputs = append(xb.OrTermInputs, PTermRef(v))
			}
			mc.XorBits = xb
		}
		if jm.RegBits != nil {
			ckind, ok := clockSrcKindValues[jm.RegBits.ClkInput.Kind]
			if !ok {
				return fmt.Errorf("netlist: macrocell %q: invalid clock kind %q", jm.Name, jm.RegBits.ClkInput.Kind)
			}
			rb := &RegBits{ClkInput: ClockSrc{Kind: ckind, PTerm: PTermRef(jm.RegBits.ClkInput.PTerm)}}
			if jm.RegBits.CEInput != nil {
				r := PTermRef(*jm.RegBits.CEInput)
				rb.CEInput = &r
			}
			if jm.RegBits.SetInput != nil {
				kind, ok := regRSKindValues[jm.RegBits.SetInput.Kind]
				if !ok {
					return fmt.Errorf("netlist: macrocell %q: invalid set kind %q", jm.Name, jm.RegBits.SetInput.Kind)
				}
				rb.SetInput = &RegRS{Kind: kind, PTerm: PTermRef(jm.RegBits.SetInput.PTerm)}
			}
			if jm.RegBits.ResetInput != nil {
				kind, ok := regRSKindValues[jm.RegBits.ResetInput.Kind]
				if !ok {
					return fmt.Errorf("netlist: macrocell %q: invalid reset kind %q", jm.Name, jm.RegBits.ResetInput.Kind)
				}
				rb.ResetInput = &RegRS{Kind: kind, PTerm: PTermRef(jm.RegBits.ResetInput.PTerm)}
			}
			mc.RegBits = rb
		}
		fresh.MCs.Insert(mc)
	}

	for _, jp := range in.PTerms {
		pt := PTerm{Name: jp.Name, RequestedLoc: locFromJSON(jp.RequestedLoc)}
		for _, ji := range jp.InputsTrue {
			kind, ok := pTermInputKindValues[ji.Kind]
			if !ok {
				return fmt.Errorf("netlist: pterm %q: invalid input kind %q", jp.Name, ji.Kind)
			}
			pt.InputsTrue = append(pt.InputsTrue, PTermInput{Kind: kind, MC: MacrocellRef(ji.MC)})
		}
		for _, ji := range jp.InputsComp {
			kind, ok := pTermInputKindValues[ji.Kind]
			if !ok {
				return fmt.Errorf("netlist: pterm %q: invalid input kind %q", jp.Name, ji.Kind)
			}
			pt.InputsComp = append(pt.InputsComp, PTermInput{Kind: kind, MC: MacrocellRef(ji.MC)})
		}
		fresh.PTerms.Insert(pt)
	}

	for _, jb := range in.BufgClks {
		fresh.BufgClks.Insert(BufgClk{Name: jb.Name, Input: MacrocellRef(jb.Input), RequestedLoc: locFromJSON(jb.RequestedLoc)})
	}
	for _, jb := range in.BufgGts {
		fresh.BufgGts.Insert(BufgGts{Name: jb.Name, Input: MacrocellRef(jb.Input), RequestedLoc: locFromJSON(jb.RequestedLoc)})
	}
	for _, jb := range in.BufgGsr {
		fresh.BufgGsr.Insert(BufgGsr{Name: jb.Name, Input: MacrocellRef(jb.Input), RequestedLoc: locFromJSON(jb.RequestedLoc)})
	}

	*g = *fresh
	return nil
}
