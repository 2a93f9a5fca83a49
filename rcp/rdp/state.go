package rdp

import (
	"image/color"

	"golang.org/x/exp/constraints"
	"golang.org/x/image/math/f32"
)

// CombinerState is the combiner configuration of a single draw call.  It's
// read-only while the draw call executes.
//
// Each of the four selector fields packs the codes of operands A, B, C and D
// into one word, see Decode.  Color2 and Alpha2 configure the second cycle
// and are only evaluated with Options.TwoCycle.
type CombinerState struct {
	Color1, Alpha1 uint32
	Color2, Alpha2 uint32

	Primitive   f32.Vec4
	Environment f32.Vec4
}

// State packs the combine mode together with the primitive and environment
// colors.
func (m CombineMode) State(prim, env color.Color) CombinerState {
	return CombinerState{
		Color1:      Encode(m.One.RGB),
		Alpha1:      Encode(m.One.Alpha),
		Color2:      Encode(m.Two.RGB),
		Alpha2:      Encode(m.Two.Alpha),
		Primitive:   Vec4(prim),
		Environment: Vec4(env),
	}
}

// Mode unpacks the selector fields.
func (s CombinerState) Mode() CombineMode {
	return CombineMode{
		One: CombinePass{RGB: Decode(s.Color1), Alpha: Decode(s.Alpha1)},
		Two: CombinePass{RGB: Decode(s.Color2), Alpha: Decode(s.Alpha2)},
	}
}

// Vec4 converts c to non-premultiplied RGBA in the range [0,1]. A nil color
// is transparent black.
func Vec4(c color.Color) f32.Vec4 {
	if c == nil {
		return f32.Vec4{}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return f32.Vec4{
		float32(n.R) / 0xff,
		float32(n.G) / 0xff,
		float32(n.B) / 0xff,
		float32(n.A) / 0xff,
	}
}

// NRGBA converts a combiner output to 8 bit per channel.  Values outside
// [0,1] are clamped, since the combiner itself never clamps.
func NRGBA(v f32.Vec4) color.NRGBA {
	return color.NRGBA{
		R: unorm8(v[0]),
		G: unorm8(v[1]),
		B: unorm8(v[2]),
		A: unorm8(v[3]),
	}
}

func unorm8(f float32) uint8 {
	return uint8(Clamp(f, 0, 1)*0xff + 0.5)
}

// Clamp limits v to [lo,hi].  NaN is mapped to lo.
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v >= hi {
		return hi
	}
	if v >= lo {
		return v
	}
	return lo
}
