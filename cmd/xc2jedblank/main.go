// Command xc2jedblank prints a blank (fully-erased) JEDEC fuse map for a
// given device target, useful as a baseline fixture or a sanity check on
// the fuse-count/layout tables.
package main

import (
	"flag"
	"fmt"
	"os"

	"xc2cpld/internal/bitstream"
	"xc2cpld/internal/device"
)

func main() {
	deviceName := flag.String("device", "", "target device, e.g. xc2c32a-4-vq44")
	human := flag.Bool("human", false, "dump a human-readable explanation instead of .jed")
	flag.Parse()

	if *deviceName == "" {
		fmt.Fprintln(os.Stderr, "xc2jedblank: -device is required")
		os.Exit(1)
	}

	spec, err := device.ParseString(*deviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xc2jedblank: %v\n", err)
		os.Exit(1)
	}

	bs := bitstream.Blank(spec.Device, spec.Speed, spec.Package)

	if *human {
		if err := bs.DumpHumanReadable(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "xc2jedblank: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := bs.WriteJED(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "xc2jedblank: %v\n", err)
		os.Exit(1)
	}
}
