package bitstream

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"xc2cpld/internal/device"
)

// Parse reads a .jed fuse map for deviceName (e.g. "xc2c32a-4-vq44") back
// into a Bitstream. It is the inverse of WriteJED: every record this
// package writes, Parse reads back byte-for-byte.
func Parse(data []byte, deviceName string) (*Bitstream, error) {
	spec, err := device.ParseString(deviceName)
	if err != nil {
		return nil, err
	}

	records, err := parseRecords(data)
	if err != nil {
		return nil, err
	}

	bs := Blank(spec.Device, spec.Speed, spec.Package)

	for fb := 0; fb < device.NumRealFBs; fb++ {
		if err := parseFB(&bs.FBs[fb], fb, spec.Device, records); err != nil {
			return nil, err
		}
	}

	if err := parseGlobalConfig(bs, records); err != nil {
		return nil, err
	}

	return bs, nil
}

// parseRecords scans for "L<addr> <bits>*" lines and returns addr -> bits.
func parseRecords(data []byte) (map[int]string, error) {
	out := make(map[int]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 256), 1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "\x02")
		if !strings.HasPrefix(line, "L") {
			continue
		}
		line = strings.TrimSuffix(line, "*")
		parts := strings.Fields(line[1:])
		if len(parts) != 2 {
			continue
		}
		addr, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		out[addr] = parts[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bitstream: scanning jed records: %w", err)
	}
	return out, nil
}

func bitsOf(s string) []bool {
	out := make([]bool, len(s))
	for i, c := range s {
		out[i] = c == '1'
	}
	return out
}

func parseFB(fb *BitstreamFB, fbIdx int, dev device.Device, records map[int]string) error {
	base := fbFuseBase(fbIdx)

	for i := 0; i < device.InputsPerAndTerm; i++ {
		rec, ok := records[base+i*8]
		if !ok || len(rec) != 8 {
			return fmt.Errorf("bitstream: missing/malformed ZIA record at L%06d", base+i*8)
		}
		chars := bitsOf(rec)
		var raw [8]bool
		for b := 0; b < 8; b++ {
			raw[7-b] = chars[b]
		}
		choice, err := device.DecodeZIAChoice(dev, i, raw)
		if err != nil {
			return err
		}
		fb.ZIA[i] = choice
	}

	andBase := base + 8*device.InputsPerAndTerm
	for i := 0; i < device.AndTermsPerFB; i++ {
		addr := andBase + i*device.InputsPerAndTerm*2
		rec, ok := records[addr]
		if !ok || len(rec) != device.InputsPerAndTerm*2 {
			return fmt.Errorf("bitstream: missing/malformed AND-term record at L%06d", addr)
		}
		chars := bitsOf(rec)
		for j := 0; j < device.InputsPerAndTerm; j++ {
			fb.AndTerms[i].True[j] = !chars[2*j]
			fb.AndTerms[i].Comp[j] = !chars[2*j+1]
		}
	}

	orBase := andBase + device.AndTermsPerFB*device.InputsPerAndTerm*2
	for i := 0; i < device.AndTermsPerFB; i++ {
		addr := orBase + i*device.MCsPerFB
		rec, ok := records[addr]
		if !ok || len(rec) != device.MCsPerFB {
			return fmt.Errorf("bitstream: missing/malformed OR-term record at L%06d", addr)
		}
		chars := bitsOf(rec)
		for j := 0; j < device.MCsPerFB; j++ {
			fb.OrTerms[i].Input[j] = !chars[j]
		}
	}

	mcBase := orBase + device.AndTermsPerFB*device.MCsPerFB
	for i := 0; i < device.MCsPerFB; i++ {
		addr := mcBase + i*27
		rec, ok := records[addr]
		if !ok || len(rec) != 27 {
			return fmt.Errorf("bitstream: missing/malformed macrocell record at L%06d", addr)
		}
		chars := bitsOf(rec)
		var bits [27]bool
		copy(bits[:], chars)
		fb.MCs[i] = Decode(bits)
	}

	return nil
}

func parseGlobalConfig(bs *Bitstream, records map[int]string) error {
	gn := &bs.Global

	if rec, ok := records[12256]; ok && len(rec) == 3 {
		gn.GCKEnable[0] = rec[0] == '1'
		gn.GCKEnable[1] = rec[1] == '1'
		gn.GCKEnable[2] = rec[2] == '1'
	}
	if rec, ok := records[12259]; ok && len(rec) == 2 {
		gn.GSRInvert = rec[0] == '1'
		gn.GSREnable = rec[1] == '1'
	}
	if rec, ok := records[12261]; ok && len(rec) == 8 {
		gn.GTSInvert[0] = rec[0] == '1'
		gn.GTSEnable[0] = rec[1] == '0'
		gn.GTSInvert[1] = rec[2] == '1'
		gn.GTSEnable[1] = rec[3] == '0'
		gn.GTSInvert[2] = rec[4] == '1'
		gn.GTSEnable[2] = rec[5] == '0'
		gn.GTSInvert[3] = rec[6] == '1'
		gn.GTSEnable[3] = rec[7] == '0'
	}
	if rec, ok := records[12269]; ok && len(rec) == 1 {
		gn.GlobalPU = rec[0] == '1'
	}
	if rec, ok := records[12270]; ok && len(rec) == 1 {
		bs.LegacyOVoltage = rec[0] == '0'
	}
	if rec, ok := records[12271]; ok && len(rec) == 1 {
		bs.LegacyIVoltage = rec[0] == '0'
	}
	if rec, ok := records[12272]; ok && len(rec) == 2 {
		bs.InPin.SchmittTrigger = rec[0] == '1'
		bs.InPin.TerminationEnabled = rec[1] == '1'
	}

	if bs.Dev == device.XC2C32A {
		if rec, ok := records[12274]; ok && len(rec) == 1 {
			bs.BankIVoltage[0] = rec[0] == '0'
		}
		if rec, ok := records[12275]; ok && len(rec) == 1 {
			bs.BankOVoltage[0] = rec[0] == '0'
		}
		if rec, ok := records[12276]; ok && len(rec) == 1 {
			bs.BankIVoltage[1] = rec[0] == '0'
		}
		if rec, ok := records[12277]; ok && len(rec) == 1 {
			bs.BankOVoltage[1] = rec[0] == '0'
		}
	}

	return nil
}
