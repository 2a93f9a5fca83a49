package texture

import (
	"image"
	"image/color"
	"image/draw"
)

type imageRGBA16 struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

func (p *imageRGBA16) ColorModel() color.Model { return RGBA16Model }

func (p *imageRGBA16) Bounds() image.Rectangle {
	return p.Rect
}

func (p *imageRGBA16) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	offset := p.PixOffset(x, y)
	return ColorRGBA16(uint16(p.Pix[offset])<<8 | uint16(p.Pix[offset+1]))
}

func (p *imageRGBA16) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	offset := p.PixOffset(x, y)
	col := rgba16Model(c).(ColorRGBA16)
	p.Pix[offset] = uint8(col >> 8)
	p.Pix[offset+1] = uint8(col & 0xff)
}

func (p *imageRGBA16) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

func (p *imageRGBA16) SubImage(r image.Rectangle) draw.Image {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return &imageRGBA16{}
	}
	i := p.PixOffset(r.Min.X, r.Min.Y)
	return &imageRGBA16{Pix: p.Pix[i:], Stride: p.Stride, Rect: r}
}

// ColorRGBA16 is a 5:5:5:1 color as stored in RGBA16 images and the TLUT.
type ColorRGBA16 uint16

func (c ColorRGBA16) RGBA() (r, g, b, a uint32) {
	r, g, b = uint32(c>>11)&0x1f, uint32(c>>6)&0x1f, uint32(c>>1)&0x1f
	r, g, b = expand5(r), expand5(g), expand5(b)
	return r, g, b, uint32(c&1) * 0xffff
}

// expand5 scales a 5 bit channel to 16 bit, so that 0x1f maps to 0xffff.
func expand5(v uint32) uint32 {
	v = v<<3 | v>>2
	return v<<8 | v
}

var RGBA16Model color.Model = color.ModelFunc(rgba16Model)

func rgba16Model(c color.Color) color.Color {
	if _, ok := c.(ColorRGBA16); ok {
		return c
	}
	r, g, b, a := c.RGBA()
	return ColorRGBA16((r & 0xf800) | (g&0xf800)>>5 | (b&0xf800)>>10 | a>>15)
}
