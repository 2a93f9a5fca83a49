package texture

import (
	"image"
	"math"

	"github.com/clktmr/rdpcc/rcp/rdp"
	"golang.org/x/image/math/f32"
)

// WrapMode selects how texel coordinates outside of the texture are mapped
// back into it.
type WrapMode uint8

const (
	Wrap WrapMode = iota
	Clamp
	Mirror
)

func (m WrapMode) String() string {
	switch m {
	case Wrap:
		return "wrap"
	case Clamp:
		return "clamp"
	case Mirror:
		return "mirror"
	}
	return "unknown"
}

// index maps texel index i into [0, n).
func (m WrapMode) index(i, n int) int {
	switch m {
	case Clamp:
		return max(0, min(i, n-1))
	case Mirror:
		i = mod(i, 2*n)
		if i >= n {
			i = 2*n - 1 - i
		}
		return i
	}
	return mod(i, n)
}

func mod(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Sampler reads texels from an image at normalized texture coordinates, where
// (0,0) is the top left and (1,1) the bottom right corner of the image.
//
// Texel values are returned as stored, i.e. premultiplied textures yield
// premultiplied colors.
type Sampler struct {
	WrapS, WrapT WrapMode
}

// Texels samples img at uv with both filters, as the combiner expects them.
func (s Sampler) Texels(img image.Image, uv f32.Vec2) rdp.Texels {
	return rdp.Texels{
		Linear:  s.Linear(img, uv),
		Nearest: s.Nearest(img, uv),
	}
}

func (s Sampler) Nearest(img image.Image, uv f32.Vec2) f32.Vec4 {
	img = unwrap(img)
	b := img.Bounds()
	if b.Empty() {
		return f32.Vec4{}
	}
	x := int(math.Floor(float64(uv[0]) * float64(b.Dx())))
	y := int(math.Floor(float64(uv[1]) * float64(b.Dy())))
	return s.texel(img, b, x, y)
}

// Linear samples img with bilinear filtering between the four texels
// surrounding uv.
func (s Sampler) Linear(img image.Image, uv f32.Vec2) f32.Vec4 {
	img = unwrap(img)
	b := img.Bounds()
	if b.Empty() {
		return f32.Vec4{}
	}
	fx := float64(uv[0])*float64(b.Dx()) - 0.5
	fy := float64(uv[1])*float64(b.Dy()) - 0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	wx, wy := float32(fx-x0), float32(fy-y0)
	x, y := int(x0), int(y0)

	t00 := s.texel(img, b, x, y)
	t10 := s.texel(img, b, x+1, y)
	t01 := s.texel(img, b, x, y+1)
	t11 := s.texel(img, b, x+1, y+1)

	var c f32.Vec4
	for i := range c {
		top := t00[i] + (t10[i]-t00[i])*wx
		bottom := t01[i] + (t11[i]-t01[i])*wx
		c[i] = top + (bottom-top)*wy
	}
	return c
}

// texel returns the texel at x, y relative to the bounds' origin after
// applying the wrap modes.
func (s Sampler) texel(img image.Image, b image.Rectangle, x, y int) f32.Vec4 {
	x = b.Min.X + s.WrapS.index(x, b.Dx())
	y = b.Min.Y + s.WrapT.index(y, b.Dy())

	const scale = 1.0 / 0xff
	switch p := img.(type) {
	case *image.NRGBA:
		i := p.PixOffset(x, y)
		px := p.Pix[i : i+4 : i+4]
		return f32.Vec4{float32(px[0]) * scale, float32(px[1]) * scale, float32(px[2]) * scale, float32(px[3]) * scale}
	case *image.RGBA:
		i := p.PixOffset(x, y)
		px := p.Pix[i : i+4 : i+4]
		return f32.Vec4{float32(px[0]) * scale, float32(px[1]) * scale, float32(px[2]) * scale, float32(px[3]) * scale}
	}

	r, g, b16, a := img.At(x, y).RGBA()
	const scale16 = 1.0 / 0xffff
	return f32.Vec4{float32(r) * scale16, float32(g) * scale16, float32(b16) * scale16, float32(a) * scale16}
}

func unwrap(img image.Image) image.Image {
	if tex, ok := img.(Texture); ok {
		return tex.Image()
	}
	return img
}
