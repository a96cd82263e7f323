// Command xc2par reads a netlist (JSON, in internal/netlist's wire format)
// and writes the placed-and-routed JEDEC fuse map to stdout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"xc2cpld/internal/bitstream"
	"xc2cpld/internal/device"
	"xc2cpld/internal/netlist"
	"xc2cpld/internal/par"
)

func main() {
	deviceName := flag.String("device", "", "target device, e.g. xc2c32a-4-vq44")
	maxIter := flag.Uint("max-iter", uint(par.DefaultOptions().MaxIter), "repair loop iteration budget")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	entry := logrus.NewEntry(log)

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s -device=<dev> <netlist.json>\n", os.Args[0])
		os.Exit(1)
	}
	if *deviceName == "" {
		fmt.Fprintln(os.Stderr, "xc2par: -device is required")
		os.Exit(1)
	}

	spec, err := device.ParseString(*deviceName)
	if err != nil {
		entry.WithError(err).Error("xc2par: invalid device")
		os.Exit(1)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		entry.WithError(err).Error("xc2par: opening netlist")
		os.Exit(1)
	}
	defer f.Close()

	g := netlist.New()
	if err := json.NewDecoder(f).Decode(g); err != nil {
		entry.WithError(err).Error("xc2par: decoding netlist")
		os.Exit(1)
	}

	if err := g.Validate(); err != nil {
		entry.WithError(err).Error("xc2par: netlist validation failed")
		os.Exit(1)
	}

	opts := par.DefaultOptions()
	opts.MaxIter = uint32(*maxIter)

	og, err := par.Do(g, spec.Device, opts, entry)
	if err != nil {
		entry.WithError(err).Error("xc2par: place and route failed")
		os.Exit(1)
	}

	bs := bitstream.Assemble(spec, g, og, spec.Speed, spec.Package)
	if err := bs.WriteJED(os.Stdout); err != nil {
		entry.WithError(err).Error("xc2par: writing jed output")
		os.Exit(1)
	}
}
