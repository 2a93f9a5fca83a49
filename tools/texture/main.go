package texture

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/clktmr/rdpcc/rcp/texture"
	"github.com/ericpauley/go-quantize/quantize"
)

var (
	flags = flag.NewFlagSet("texture", flag.ExitOnError)

	format   = flags.String("format", "RGBA32", "image format and bit depth")
	straight = flags.Bool("straight", false, "store RGBA32 with straight alpha")
	dither   = flags.Bool("dither", false, "enable Floyd-Steinberg error diffusion")
	palette  = flags.Int("palette", 256, "number of colors in CI8 format")
	output   = flags.String("o", "", "output file, defaults to the image name with the format as extension")

	imagefile string
)

const usageString = `Image to texture converter.

Usage: %s [flags] <image>

`

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "texture")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() == 1 {
		imagefile = flags.Arg(0)
	} else {
		flags.Usage()
		os.Exit(1)
	}

	r, err := os.Open(imagefile)
	if err != nil {
		log.Fatalln(err)
	}
	defer r.Close()

	src, _, err := image.Decode(r)
	if err != nil {
		log.Fatalln(err)
	}

	f, err := texture.ParseFormat(*format)
	if err != nil {
		log.Fatalln(err)
	}
	dst, err := convert(src, f)
	if err != nil {
		log.Fatalln(err)
	}

	outfile := *output
	if outfile == "" {
		outfile = strings.TrimSuffix(imagefile, filepath.Ext(imagefile))
		outfile += "." + f.String()
	}
	w, err := os.Create(outfile)
	if err != nil {
		log.Fatalln(err)
	}
	defer w.Close()

	err = texture.Store(w, dst)
	if err != nil {
		log.Fatalln(err)
	}
}

// convert draws src into a new texture of format f.
func convert(src image.Image, f texture.Format) (texture.Texture, error) {
	var dst texture.Texture

	switch f {
	case texture.FormatRGBA32:
		if *straight {
			dst = texture.NewNRGBA32(src.Bounds())
		} else {
			dst = texture.NewRGBA32(src.Bounds())
		}
	case texture.FormatRGBA16:
		dst = texture.NewRGBA16(src.Bounds())
	case texture.FormatI8:
		dst = texture.NewI8(src.Bounds())
	case texture.FormatCI8:
		if *palette < 1 || *palette > 256 {
			return nil, fmt.Errorf("palette size out of range: %d", *palette)
		}
		q := quantize.MedianCutQuantizer{}
		p := q.Quantize(make([]color.Color, 0, *palette), src)
		dst = texture.NewCI8(src.Bounds(), p)
	default:
		return nil, fmt.Errorf("unsupported format: %v", f)
	}

	var d draw.Drawer = draw.Src
	if *dither {
		d = draw.FloydSteinberg
	}
	d.Draw(dst.Image(), dst.Bounds(), src, src.Bounds().Min)
	return dst, nil
}
