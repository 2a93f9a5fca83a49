package texture

import (
	"image"
	"image/color"
	"image/draw"
)

// Stores pixels in RGBA with 32bit (8:8:8:8)
type RGBA32 struct{ image.RGBA }

func NewRGBA32(r image.Rectangle) *RGBA32 {
	return &RGBA32{*image.NewRGBA(r)}
}

func (p *RGBA32) Image() draw.Image { return &p.RGBA }
func (p *RGBA32) Format() Format    { return FormatRGBA32 }
func (p *RGBA32) Premult() bool     { return true }

func (p *RGBA32) SubImage(r image.Rectangle) *RGBA32 {
	subImg, _ := p.RGBA.SubImage(r).(*image.RGBA)
	return &RGBA32{*subImg}
}

// Stores pixels in RGBA with 32bit (8:8:8:8)
//
// Same as RGBA32, but not premultiplied-alpha.
type NRGBA32 struct{ image.NRGBA }

func NewNRGBA32(r image.Rectangle) *NRGBA32 {
	return &NRGBA32{*image.NewNRGBA(r)}
}

func (p *NRGBA32) Image() draw.Image { return &p.NRGBA }
func (p *NRGBA32) Format() Format    { return FormatRGBA32 }
func (p *NRGBA32) Premult() bool     { return false }

func (p *NRGBA32) SubImage(r image.Rectangle) *NRGBA32 {
	subImg, _ := p.NRGBA.SubImage(r).(*image.NRGBA)
	return &NRGBA32{*subImg}
}

// Stores pixels in RGBA with 16bit (5:5:5:1)
type RGBA16 struct{ imageRGBA16 }

func NewRGBA16(r image.Rectangle) *RGBA16 {
	return &RGBA16{imageRGBA16{
		Pix:    make([]byte, r.Dx()*r.Dy()*2),
		Stride: 2 * r.Dx(),
		Rect:   r,
	}}
}

func (p *RGBA16) Image() draw.Image { return &p.imageRGBA16 }
func (p *RGBA16) Format() Format    { return FormatRGBA16 }
func (p *RGBA16) Premult() bool     { return true }

// Stores pixels intensity with 8bit.  The intensity is replicated to all
// four channels when sampled.
type I8 struct{ image.Alpha }

func NewI8(r image.Rectangle) *I8 {
	return &I8{*image.NewAlpha(r)}
}

func (p *I8) Image() draw.Image { return &p.Alpha }
func (p *I8) Format() Format    { return FormatI8 }
func (p *I8) Premult() bool     { return false }

func (p *I8) SubImage(r image.Rectangle) *I8 {
	subImg, _ := p.Alpha.SubImage(r).(*image.Alpha)
	return &I8{*subImg}
}

// Stores 8bit indices into a palette of up to 256 RGBA16 colors, which is
// loaded into the upper half of TMEM on the console.
type CI8 struct{ image.Paletted }

// NewCI8 returns a texture using palette p.  Colors in p are converted to
// RGBA16.
func NewCI8(r image.Rectangle, p color.Palette) *CI8 {
	tlut := make(color.Palette, len(p))
	for i, c := range p {
		tlut[i] = RGBA16Model.Convert(c)
	}
	return &CI8{*image.NewPaletted(r, tlut)}
}

func (p *CI8) Image() draw.Image { return &p.Paletted }
func (p *CI8) Format() Format    { return FormatCI8 }
func (p *CI8) Premult() bool     { return true }
