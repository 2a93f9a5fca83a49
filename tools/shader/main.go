package shader

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/clktmr/rdpcc/drivers/gpu"
)

var (
	flags = flag.NewFlagSet("shader", flag.ExitOnError)

	output = flags.String("o", "combiner.spv", "output file")
	wgsl   = flags.Bool("wgsl", false, "write the WGSL source instead of compiling it")
)

const usageString = `Compiles the color combiner shader to SPIR-V.

Usage: %s [flags]

`

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "shader")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 0 {
		flags.Usage()
		os.Exit(1)
	}

	if *wgsl {
		err := os.WriteFile(*output, []byte(gpu.CombinerSource()), 0644)
		if err != nil {
			log.Fatalln(err)
		}
		return
	}

	spirv, err := gpu.CompileCombiner()
	if err != nil {
		log.Fatalln(err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalln(err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err = binary.Write(w, binary.LittleEndian, spirv); err != nil {
		log.Fatalln(err)
	}
	if err = w.Flush(); err != nil {
		log.Fatalln(err)
	}
	log.Printf("wrote %d words to %s", len(spirv), *output)
}
