package render

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/clktmr/rdpcc/drivers/raster"
	"github.com/clktmr/rdpcc/framebuffer"
	"github.com/clktmr/rdpcc/rcp/rdp"
	"github.com/clktmr/rdpcc/rcp/texture"
	"github.com/embeddedgo/display/pix"
	"golang.org/x/image/colornames"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/fixed"
)

var (
	flags = flag.NewFlagSet("render", flag.ExitOnError)

	combine  = flags.String("combine", "modulate", "combine mode, a preset name or four hex words color1,alpha1,color2,alpha2")
	twoCycle = flags.Bool("two-cycle", false, "evaluate both combiner cycles")
	prim     = flags.String("prim", "white", "primitive color")
	env      = flags.String("env", "black", "environment color")
	bg       = flags.String("clear", "midnightblue", "clear color")
	filter   = flags.String("filter", "linear", "texture filter, linear or nearest")
	wrap     = flags.String("wrap", "wrap", "texture wrap mode, wrap, clamp or mirror")
	repeat   = flags.Float64("repeat", 1, "number of texture repetitions across the quad")
	angle    = flags.Float64("angle", 0, "rotation of the quad around the vertical axis in degrees")
	bpp      = flags.Int("bpp", 32, "color depth of the framebuffer, 16 or 32")
	scale    = flags.Int("scale", 1, "upscale the output image")
	label    = flags.Bool("label", false, "print the combine mode into the image")
	output   = flags.String("o", "out.png", "output png file")
	rdram    = flags.String("rdram", "", "also write the framebuffer in RDRAM layout to this file")
	commands = flags.String("commands", "", "also write the RDP commands configuring the combiner to this file")

	texturefile string
)

const usageString = `Renders a textured quad through the color combiner.

Usage: %s [flags] [texture]

The texture is either a file written by the texture command or an image. The
quad is rendered with its vertex colors only if no texture is given.

Presets for -combine:

	%s

`

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "render", strings.Join(presetNames(), ", "))
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	switch flags.NArg() {
	case 0:
	case 1:
		texturefile = flags.Arg(0)
	default:
		flags.Usage()
		os.Exit(1)
	}

	state, err := parseCombine(*combine)
	if err != nil {
		log.Fatalln(err)
	}
	primColor, err := parseColor(*prim)
	if err != nil {
		log.Fatalln(err)
	}
	envColor, err := parseColor(*env)
	if err != nil {
		log.Fatalln(err)
	}
	clearColor, err := parseColor(*bg)
	if err != nil {
		log.Fatalln(err)
	}
	state.Primitive, state.Environment = rdp.Vec4(primColor), rdp.Vec4(envColor)

	var depth framebuffer.ColorDepth
	switch *bpp {
	case 16:
		depth = framebuffer.BPP16
	case 32:
		depth = framebuffer.BPP32
	default:
		log.Fatalln("unsupported color depth:", *bpp)
	}

	modes := rdp.CycleTypeOne
	if *twoCycle {
		modes = rdp.CycleTypeTwo
	}
	if *commands != "" {
		if err = writeCommands(*commands, state, modes); err != nil {
			log.Fatalln(err)
		}
	}

	dc := raster.DrawCall{
		Vertices: quad(float32(*repeat)),
		Indices:  []uint16{0, 1, 2, 0, 2, 3},
		Matrix:   camera(float32(*angle)),
		State:    state,
		Modes:    modes,
	}
	if texturefile != "" {
		dc.Texture, err = loadTexture(texturefile)
		if err != nil {
			log.Fatalln(err)
		}
		vflags := rdp.TextureEnable
		switch *filter {
		case "linear":
			vflags |= rdp.LinearFilter
		case "nearest":
		default:
			log.Fatalln("unsupported filter:", *filter)
		}
		for i := range dc.Vertices {
			dc.Vertices[i].Flags = vflags
		}
	}
	dc.Sampler.WrapS, err = parseWrap(*wrap)
	if err != nil {
		log.Fatalln(err)
	}
	dc.Sampler.WrapT = dc.Sampler.WrapS

	fb := framebuffer.NewFramebuffer(image.Rectangle{}, depth)
	fb.Clear(clearColor)
	target := raster.Target{Color: fb, Depth: framebuffer.NewDepth(fb.Bounds())}
	dc.Modes |= rdp.ZCompare | rdp.ZUpdate

	err = raster.New(raster.Options{}).DrawTriangles(context.Background(), target, dc)
	if err != nil {
		log.Fatalln(err)
	}
	if *label {
		drawLabel(fb, describe(state.Mode(), *twoCycle))
	}
	front := fb.Swap()

	if *rdram != "" {
		b, err := framebuffer.EncodeRDRAM(front)
		if err != nil {
			log.Fatalln(err)
		}
		if err = os.WriteFile(*rdram, b, 0644); err != nil {
			log.Fatalln(err)
		}
	}

	var out image.Image = front
	if *scale > 1 {
		b := front.Bounds()
		up := image.NewNRGBA(image.Rect(0, 0, b.Dx()**scale, b.Dy()**scale))
		xdraw.NearestNeighbor.Scale(up, up.Bounds(), front, b, xdraw.Src, nil)
		out = up
	}

	w, err := os.Create(*output)
	if err != nil {
		log.Fatalln(err)
	}
	defer w.Close()
	if err = png.Encode(w, out); err != nil {
		log.Fatalln(err)
	}
}

// writeCommands stores the display list configuring state and modes, so it can
// be replayed on the console.
func writeCommands(name string, state rdp.CombinerState, modes rdp.ModeFlags) error {
	var dl rdp.DisplayList
	dl.SetOtherModes(modes)
	dl.SetCombineMode(state.Mode())
	dl.SetPrimitiveColor(rdp.NRGBA(state.Primitive))
	dl.SetEnvironmentColor(rdp.NRGBA(state.Environment))

	got, _ := dl.State()
	if got != state {
		return fmt.Errorf("combine mode doesn't fit into the RDP command: %v", describe(state.Mode(), true))
	}
	return os.WriteFile(name, dl.Bytes(), 0644)
}

// quad returns a unit square with a different vertex color in each corner.
func quad(repeat float32) []raster.Vertex {
	return []raster.Vertex{
		{Position: f32.Vec4{-1, -1, 0, 1}, TexCoord: f32.Vec2{0, repeat}, Color: f32.Vec4{1, 0, 0, 1}},
		{Position: f32.Vec4{1, -1, 0, 1}, TexCoord: f32.Vec2{repeat, repeat}, Color: f32.Vec4{0, 1, 0, 1}},
		{Position: f32.Vec4{1, 1, 0, 1}, TexCoord: f32.Vec2{repeat, 0}, Color: f32.Vec4{0, 0, 1, 1}},
		{Position: f32.Vec4{-1, 1, 0, 1}, TexCoord: f32.Vec2{0, 0}, Color: f32.Vec4{1, 1, 1, 0.5}},
	}
}

// camera rotates the quad around the y axis and views it from a distance of 2.5
// units, so that the unrotated quad fills the screen height.
func camera(degrees float32) f32.Mat4 {
	rad := float64(degrees) * math.Pi / 180
	sin, cos := float32(math.Sin(rad)), float32(math.Cos(rad))
	const dist, near, far = 2.5, 0.1, 10

	// view = translate(0, 0, -dist) * rotateY
	view := f32.Mat4{
		cos, 0, sin, 0,
		0, 1, 0, 0,
		-sin, 0, cos, -dist,
		0, 0, 0, 1,
	}
	// maps z from [-near, -far] to [0, 1]
	proj := f32.Mat4{
		dist * 3 / 4, 0, 0, 0,
		0, dist, 0, 0,
		0, 0, far / (near - far), near * far / (near - far),
		0, 0, -1, 0,
	}
	return mul(&proj, &view)
}

func mul(a, b *f32.Mat4) (m f32.Mat4) {
	for r := range 4 {
		for c := range 4 {
			for k := range 4 {
				m[4*r+c] += a[4*r+k] * b[4*k+c]
			}
		}
	}
	return
}

// loadTexture decodes name as an image if the extension names an image
// format and as texture file otherwise.
func loadTexture(name string) (image.Image, error) {
	r, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		img, _, err := image.Decode(r)
		return img, err
	}
	tex, err := texture.Load(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return tex, nil
}

var presets = map[string]rdp.CombineMode{
	"shade": {One: rdp.CombinePass{
		RGB:   rdp.CombineParams{A: rdp.CombineAColorZero, B: rdp.CombineBColorZero, C: rdp.CombineCColorZero, D: rdp.CombineShade},
		Alpha: rdp.CombineParams{A: rdp.CombineAAlphaZero, B: rdp.CombineBAlphaZero, C: rdp.CombineCAlphaZero, D: rdp.CombineShade},
	}},
	"texture": {One: rdp.CombinePass{
		RGB:   rdp.CombineParams{A: rdp.CombineAColorZero, B: rdp.CombineBColorZero, C: rdp.CombineCColorZero, D: rdp.CombineTex0},
		Alpha: rdp.CombineParams{A: rdp.CombineAAlphaZero, B: rdp.CombineBAlphaZero, C: rdp.CombineCAlphaZero, D: rdp.CombineTex0},
	}},
	"modulate": {One: rdp.CombinePass{
		RGB:   rdp.CombineParams{A: rdp.CombineTex0, B: rdp.CombineBColorZero, C: rdp.CombinePrimitive, D: rdp.CombineDColorZero},
		Alpha: rdp.CombineParams{A: rdp.CombineTex0, B: rdp.CombineBAlphaZero, C: rdp.CombinePrimitive, D: rdp.CombineDAlphaZero},
	}},
	"decal": {One: rdp.CombinePass{
		RGB:   rdp.CombineParams{A: rdp.CombineTex0, B: rdp.CombineEnvironment, C: rdp.CombineCColorTex0Alpha, D: rdp.CombineEnvironment},
		Alpha: rdp.CombineParams{A: rdp.CombineAAlphaZero, B: rdp.CombineBAlphaZero, C: rdp.CombineCAlphaZero, D: rdp.CombineDAlphaOne},
	}},
	"fade": {
		One: rdp.CombinePass{
			RGB:   rdp.CombineParams{A: rdp.CombineTex0, B: rdp.CombineBColorZero, C: rdp.CombinePrimitive, D: rdp.CombineDColorZero},
			Alpha: rdp.CombineParams{A: rdp.CombineTex0, B: rdp.CombineBAlphaZero, C: rdp.CombinePrimitive, D: rdp.CombineDAlphaZero},
		},
		Two: rdp.CombinePass{
			RGB:   rdp.CombineParams{A: rdp.CombineCombined, B: rdp.CombineEnvironment, C: rdp.CombineCColorEnvironmentAlpha, D: rdp.CombineEnvironment},
			Alpha: rdp.CombineParams{A: rdp.CombineAAlphaZero, B: rdp.CombineBAlphaZero, C: rdp.CombineCAlphaZero, D: rdp.CombineCombined},
		},
	},
}

func presetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func describe(m rdp.CombineMode, twoCycle bool) string {
	s := fmt.Sprintf("rgb %v alpha %v", m.One.RGB, m.One.Alpha)
	if twoCycle {
		s += fmt.Sprintf(" | rgb %v alpha %v", m.Two.RGB, m.Two.Alpha)
	}
	return s
}

// parseCombine accepts a preset name or four comma separated selector words.
func parseCombine(s string) (rdp.CombinerState, error) {
	if mode, ok := presets[s]; ok {
		return mode.State(nil, nil), nil
	}

	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return rdp.CombinerState{}, fmt.Errorf("invalid combine mode: %s", s)
	}
	var words [4]uint32
	for i, f := range fields {
		w, err := strconv.ParseUint(strings.TrimSpace(f), 0, 32)
		if err != nil {
			return rdp.CombinerState{}, fmt.Errorf("invalid combine mode: %w", err)
		}
		words[i] = uint32(w)
	}
	return rdp.CombinerState{
		Color1: words[0], Alpha1: words[1],
		Color2: words[2], Alpha2: words[3],
	}, nil
}

// parseColor accepts an SVG color name or a hex triplet with optional alpha,
// e.g. #ff8000 or #ff800080.
func parseColor(s string) (color.Color, error) {
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return nil, fmt.Errorf("invalid color: %s", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color: %w", err)
	}
	return color.NRGBA{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

func parseWrap(s string) (texture.WrapMode, error) {
	for m := range texture.Mirror + 1 {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid wrap mode: %s", s)
}

// drawLabel prints text in the upper left corner of the framebuffer, on a
// black background.
func drawLabel(fb *framebuffer.Framebuffer, text string) {
	face := basicfont.Face7x13
	d := font.Drawer{Face: face}
	width := d.MeasureString(text).Ceil()
	height := face.Metrics().Height.Ceil()

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	d.Dst = mask
	d.Src = image.Opaque
	d.Dot = fixed.P(0, face.Metrics().Ascent.Ceil())
	d.DrawString(text)

	disp := pix.NewDisplay(fb)
	r := image.Rect(2, 2, 2+width, 2+height).Intersect(disp.Bounds())
	a := disp.NewArea(r)
	a.SetColor(colornames.Black)
	a.Fill(r)
	a.Draw(r, image.NewUniform(colornames.White), image.Point{}, mask, image.Point{}, draw.Over)
	a.Flush()
}
