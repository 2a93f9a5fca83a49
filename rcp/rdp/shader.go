package rdp

import "golang.org/x/image/math/f32"

// VertexFlags are set per vertex and select the rasterizer color.
type VertexFlags uint32

const (
	TextureEnable VertexFlags = 1 << iota
	LinearFilter
)

// Fragment holds the interpolated vertex attributes of a single pixel.
type Fragment struct {
	Position f32.Vec4 // clip space, not used by the combiner
	TexCoord f32.Vec2
	Color    f32.Vec4
	Flags    VertexFlags
}

// Texels are the texture samples of a fragment, already filtered.
type Texels struct {
	Linear, Nearest f32.Vec4
}

// RasterColor selects the base color of a fragment.  Without TextureEnable
// it's the vertex color, otherwise the texel of the filter chosen by
// LinearFilter.  Unknown flags are ignored.
func RasterColor(flags VertexFlags, t Texels, vertex f32.Vec4) f32.Vec4 {
	if flags&TextureEnable == 0 {
		return vertex
	}
	if flags&LinearFilter != 0 {
		return t.Linear
	}
	return t.Nearest
}

// Combine computes (a-b)*c + d for each color component.  The result is not
// clamped.
func Combine(a, b, c, d f32.Vec3) (v f32.Vec3) {
	for i := range v {
		v[i] = CombineAlpha(a[i], b[i], c[i], d[i])
	}
	return v
}

// CombineAlpha computes (a-b)*c + d.
func CombineAlpha(a, b, c, d float32) float32 {
	// explicit conversion forbids a fused multiply-add
	return float32((a-b)*c) + d
}

// Eval runs a single combiner cycle.
func (p CombinePass) Eval(in *Inputs) f32.Vec4 {
	rgb := Combine(
		ColorSource(SlotA, p.RGB.A, in),
		ColorSource(SlotB, p.RGB.B, in),
		ColorSource(SlotC, p.RGB.C, in),
		ColorSource(SlotD, p.RGB.D, in),
	)
	alpha := CombineAlpha(
		AlphaSource(SlotA, p.Alpha.A, in),
		AlphaSource(SlotB, p.Alpha.B, in),
		AlphaSource(SlotC, p.Alpha.C, in),
		AlphaSource(SlotD, p.Alpha.D, in),
	)
	return f32.Vec4{rgb[0], rgb[1], rgb[2], alpha}
}

// Options change how a CombinerState is evaluated.  The zero value evaluates
// the first cycle only.
type Options struct {
	// Feed the output of the first cycle into the second cycle, where it's
	// available as CombineCombined.  The second cycle's result is returned.
	TwoCycle bool
}

// ShadeFunc computes the color of a single fragment.  It must not keep state
// between calls, so it can be called from any number of goroutines.
type ShadeFunc func(Fragment, Texels) f32.Vec4

// NewShader returns the combiner for state s.  The state is copied, later
// modifications of s don't affect the returned function.
func NewShader(s CombinerState, opts Options) ShadeFunc {
	one := CombinePass{RGB: Decode(s.Color1), Alpha: Decode(s.Alpha1)}
	if !opts.TwoCycle {
		return func(f Fragment, t Texels) f32.Vec4 {
			in := Inputs{
				Raster:      RasterColor(f.Flags, t, f.Color),
				Shade:       f.Color,
				Primitive:   s.Primitive,
				Environment: s.Environment,
			}
			return one.Eval(&in)
		}
	}

	two := CombinePass{RGB: Decode(s.Color2), Alpha: Decode(s.Alpha2)}
	return func(f Fragment, t Texels) f32.Vec4 {
		in := Inputs{
			Raster:      RasterColor(f.Flags, t, f.Color),
			Shade:       f.Color,
			Primitive:   s.Primitive,
			Environment: s.Environment,
		}
		in.Combined, in.HasCombined = one.Eval(&in), true
		return two.Eval(&in)
	}
}

// Shade computes the color of a single fragment.  Prefer NewShader when
// shading many fragments with the same state.
func Shade(s CombinerState, opts Options, f Fragment, t Texels) f32.Vec4 {
	return NewShader(s, opts)(f, t)
}
