package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/clktmr/rdpcc/tools/render"
	"github.com/clktmr/rdpcc/tools/shader"
	"github.com/clktmr/rdpcc/tools/texture"
)

const usageString = `rdpcc is a tool for inspecting the RDP color combiner.

Usage:

	%s <command> [arguments]

The commands are:

	texture  convert images to textures
	render   render a textured quad through the combiner
	shader   compile the combiner shader to SPIR-V
`

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	log.Default().SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "texture":
		texture.Main(flag.Args())
	case "render":
		render.Main(flag.Args())
	case "shader":
		shader.Main(flag.Args())
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}
