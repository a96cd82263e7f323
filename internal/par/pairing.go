package par

import "xc2cpld/internal/netlist"

// mcsCanBePaired decides whether logicType (occupying a site's logic half)
// and pinType (occupying its pin-input half) may share a site. The rule is
// intentionally asymmetric - do not collapse the two halves into one slot
// model.
func mcsCanBePaired(logic *netlist.Macrocell, pin *netlist.Macrocell) bool {
	if pin.Type != netlist.PinInputUnreg && pin.Type != netlist.PinInputReg {
		return false
	}
	switch logic.Type {
	case netlist.BuriedComb:
		return true
	case netlist.BuriedReg:
		return pin.Type == netlist.PinInputUnreg && !logic.XorFeedbackUsed
	default:
		return false
	}
}
