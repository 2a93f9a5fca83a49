package rdp

import "golang.org/x/image/math/f32"

// Inputs holds everything an operand multiplexer can route to a slot.
type Inputs struct {
	Raster      f32.Vec4 // see RasterColor
	Shade       f32.Vec4 // interpolated vertex color
	Primitive   f32.Vec4
	Environment f32.Vec4

	// Output of the previous cycle.  Only valid if HasCombined is set, which
	// is the case for the second cycle of a two-cycle combine.
	Combined    f32.Vec4
	HasCombined bool
}

type input uint8

const (
	inputLiteral input = iota
	inputRaster
	inputShade
	inputPrimitive
	inputEnvironment
	inputCombined
)

// Placeholder colors of selector codes without an implementation.  They are
// meant to be spotted on screen.
var (
	placeholderCenter   = f32.Vec3{1, 0, 0} // center, scale
	placeholderNoise    = f32.Vec3{0, 1, 0} // noise, K4, combined alpha
	placeholderUnmapped = f32.Vec3{1, 0, 1}

	placeholderLODFraction float32 = 0.5
)

type colorOperand struct {
	src input
	lit f32.Vec3
}

type alphaOperand struct {
	src input
	lit float32
}

// Operand lookup tables indexed by slot and selector code.  Every entry is
// defined, codes without a mapping hold the fallback literal.
var (
	colorOperands [numSlots][256]colorOperand
	alphaOperands [numSlots][256]alphaOperand
)

func init() {
	shared := [...]input{
		CombineCombined:    inputCombined,
		CombineTex0:        inputRaster,
		CombineTex1:        inputRaster, // TODO sample the second tile once tile descriptors are emulated
		CombinePrimitive:   inputPrimitive,
		CombineShade:       inputShade,
		CombineEnvironment: inputEnvironment,
	}

	for s := range numSlots {
		for code := range colorOperands[s] {
			colorOperands[s][code] = colorOperand{lit: placeholderUnmapped}
			alphaOperands[s][code] = alphaOperand{lit: 1}
		}
		for code, src := range shared {
			colorOperands[s][code].src = src
			alphaOperands[s][code].src = src
		}
		colorOperands[s][15] = colorOperand{lit: f32.Vec3{}}
		colorOperands[s][31] = colorOperand{lit: f32.Vec3{}}
		alphaOperands[s][7] = alphaOperand{lit: 0}
	}

	one := f32.Vec3{1, 1, 1}
	colorOperands[SlotA][CombineAColorOne].lit = one
	colorOperands[SlotB][CombineBColorCenter].lit = placeholderCenter
	colorOperands[SlotC][CombineCColorCenter].lit = placeholderCenter
	colorOperands[SlotD][CombineDColorOne].lit = one

	colorOperands[SlotA][CombineAColorNoise].lit = placeholderNoise
	colorOperands[SlotB][CombineBColorK4].lit = placeholderNoise
	colorOperands[SlotC][CombineCColorCombinedAlpha].lit = placeholderNoise
	colorOperands[SlotD][CombineDColorZero].lit = f32.Vec3{}

	alphaOperands[SlotA][CombineAAlphaOne].lit = 1
	alphaOperands[SlotB][CombineBAlphaOne].lit = 1
	alphaOperands[SlotC][CombineCAlphaPrimitiveLODFraction].lit = placeholderLODFraction
	alphaOperands[SlotD][CombineDAlphaOne].lit = 1
}

// ColorSource returns the RGB value routed to slot s by selector code.
func ColorSource(s Slot, code CombineSource, in *Inputs) f32.Vec3 {
	op := colorOperands[s&3][code]
	switch op.src {
	case inputRaster:
		return rgb(in.Raster)
	case inputShade:
		return rgb(in.Shade)
	case inputPrimitive:
		return rgb(in.Primitive)
	case inputEnvironment:
		return rgb(in.Environment)
	case inputCombined:
		if in.HasCombined {
			return rgb(in.Combined)
		}
	}
	return op.lit
}

// AlphaSource returns the alpha value routed to slot s by selector code.
func AlphaSource(s Slot, code CombineSource, in *Inputs) float32 {
	op := alphaOperands[s&3][code]
	switch op.src {
	case inputRaster:
		return in.Raster[3]
	case inputShade:
		return in.Shade[3]
	case inputPrimitive:
		return in.Primitive[3]
	case inputEnvironment:
		return in.Environment[3]
	case inputCombined:
		if in.HasCombined {
			return in.Combined[3]
		}
	}
	return op.lit
}

func rgb(v f32.Vec4) f32.Vec3 { return f32.Vec3{v[0], v[1], v[2]} }
