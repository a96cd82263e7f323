package bitstream

import (
	"fmt"
	"io"

	"xc2cpld/internal/device"
)

// fbFuseBase is the starting fuse address of FB fb's block.
func fbFuseBase(fb int) int {
	if fb == 0 {
		return 0
	}
	return 6128
}

func bitChar(b bool) byte {
	if b {
		return '1'
	}
	return '0'
}

// WriteJED renders bs as a .jed fuse map, byte-exact with spec.md SS6.
func (bs *Bitstream) WriteJED(w io.Writer) error {
	if _, err := io.WriteString(w, ".JED fuse map written by xc2bit\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "https://github.com/azonenberg/openfpga\n\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\x02"); err != nil {
		return err
	}

	switch bs.Dev {
	case device.XC2C32:
		if _, err := fmt.Fprintf(w, "QF12274*\nN DEVICE XC2C32-%s-%s*\n\n", bs.Speed, bs.Package); err != nil {
			return err
		}
	case device.XC2C32A:
		if _, err := fmt.Fprintf(w, "QF12278*\nN DEVICE XC2C32A-%s-%s*\n\n", bs.Speed, bs.Package); err != nil {
			return err
		}
	default:
		return fmt.Errorf("bitstream: invalid device %v", bs.Dev)
	}

	for fb := 0; fb < device.NumRealFBs; fb++ {
		if err := writeFB(w, &bs.FBs[fb], fb, bs.Dev); err != nil {
			return err
		}
	}

	if err := writeGlobalConfig(w, bs); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\x030000\n")
	return err
}

func writeFB(w io.Writer, fb *BitstreamFB, fbIdx int, dev device.Device) error {
	base := fbFuseBase(fbIdx)

	for i := 0; i < device.InputsPerAndTerm; i++ {
		bits, err := device.EncodeZIAChoice(dev, i, fb.ZIA[i])
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "L%06d ", base+i*8); err != nil {
			return err
		}
		buf := make([]byte, 8)
		for b := 0; b < 8; b++ {
			buf[b] = bitChar(bits[7-b])
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "*\n"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	andBase := base + 8*device.InputsPerAndTerm
	for i := 0; i < device.AndTermsPerFB; i++ {
		if _, err := fmt.Fprintf(w, "L%06d ", andBase+i*device.InputsPerAndTerm*2); err != nil {
			return err
		}
		buf := make([]byte, 0, device.InputsPerAndTerm*2)
		row := &fb.AndTerms[i]
		for j := 0; j < device.InputsPerAndTerm; j++ {
			buf = append(buf, bitChar(!row.True[j]), bitChar(!row.Comp[j]))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "*\n"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	orBase := andBase + device.AndTermsPerFB*device.InputsPerAndTerm*2
	for i := 0; i < device.AndTermsPerFB; i++ {
		if _, err := fmt.Fprintf(w, "L%06d ", orBase+i*device.MCsPerFB); err != nil {
			return err
		}
		buf := make([]byte, device.MCsPerFB)
		row := &fb.OrTerms[i]
		for j := 0; j < device.MCsPerFB; j++ {
			buf[j] = bitChar(!row.Input[j])
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "*\n"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	mcBase := orBase + device.AndTermsPerFB*device.MCsPerFB
	for i := 0; i < device.MCsPerFB; i++ {
		if _, err := fmt.Fprintf(w, "L%06d ", mcBase+i*27); err != nil {
			return err
		}
		bits := fb.MCs[i].Encode()
		buf := make([]byte, 27)
		for b := 0; b < 27; b++ {
			buf[b] = bitChar(bits[b])
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "*\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeGlobalConfig(w io.Writer, bs *Bitstream) error {
	gn := &bs.Global

	if _, err := fmt.Fprintf(w, "L012256 %c%c%c*\n", bitChar(gn.GCKEnable[0]), bitChar(gn.GCKEnable[1]), bitChar(gn.GCKEnable[2])); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "L012259 %c%c*\n", bitChar(gn.GSRInvert), bitChar(gn.GSREnable)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "L012261 %c%c%c%c%c%c%c%c*\n",
		bitChar(gn.GTSInvert[0]), bitChar(!gn.GTSEnable[0]),
		bitChar(gn.GTSInvert[1]), bitChar(!gn.GTSEnable[1]),
		bitChar(gn.GTSInvert[2]), bitChar(!gn.GTSEnable[2]),
		bitChar(gn.GTSInvert[3]), bitChar(!gn.GTSEnable[3]),
	); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "L012269 %c*\n", bitChar(gn.GlobalPU)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "L012270 %c*\n", bitChar(!bs.LegacyOVoltage)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "L012271 %c*\n", bitChar(!bs.LegacyIVoltage)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "L012272 %c%c*\n", bitChar(bs.InPin.SchmittTrigger), bitChar(bs.InPin.TerminationEnabled)); err != nil {
		return err
	}

	if bs.Dev == device.XC2C32A {
		if _, err := fmt.Fprintf(w, "L012274 %c*\n", bitChar(!bs.BankIVoltage[0])); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "L012275 %c*\n", bitChar(!bs.BankOVoltage[0])); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "L012276 %c*\n", bitChar(!bs.BankIVoltage[1])); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "L012277 %c*\n", bitChar(!bs.BankOVoltage[1])); err != nil {
			return err
		}
	}

	return nil
}
