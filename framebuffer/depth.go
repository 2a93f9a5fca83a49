package framebuffer

import (
	"image"
	"image/color"
)

// Depth is a depth buffer storing one float32 per pixel.  Smaller values are
// closer to the camera.
type Depth struct {
	Pix    []float32
	Stride int
	Rect   image.Rectangle
}

func NewDepth(r image.Rectangle) *Depth {
	d := &Depth{
		Pix:    make([]float32, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
	d.Clear(1)
	return d
}

func (d *Depth) Bounds() image.Rectangle { return d.Rect }

func (d *Depth) PixOffset(x, y int) int {
	return (y-d.Rect.Min.Y)*d.Stride + (x - d.Rect.Min.X)
}

// At returns the depth at x, y or 1 outside of the buffer.
func (d *Depth) At(x, y int) float32 {
	if !(image.Point{x, y}.In(d.Rect)) {
		return 1
	}
	return d.Pix[d.PixOffset(x, y)]
}

func (d *Depth) Set(x, y int, z float32) {
	if !(image.Point{x, y}.In(d.Rect)) {
		return
	}
	d.Pix[d.PixOffset(x, y)] = z
}

// Clear sets the whole buffer to z.
func (d *Depth) Clear(z float32) {
	for y := d.Rect.Min.Y; y < d.Rect.Max.Y; y++ {
		row := d.Pix[d.PixOffset(d.Rect.Min.X, y):][:d.Rect.Dx()]
		for i := range row {
			row[i] = z
		}
	}
}

// Gray returns a copy of the buffer for display, mapping depth 0 to black and
// 1 to white.
func (d *Depth) Gray() *image.Gray16 {
	img := image.NewGray16(d.Rect)
	for y := d.Rect.Min.Y; y < d.Rect.Max.Y; y++ {
		for x := d.Rect.Min.X; x < d.Rect.Max.X; x++ {
			z := max(0, min(d.At(x, y), 1))
			img.SetGray16(x, y, color.Gray16{uint16(z*0xffff + 0.5)})
		}
	}
	return img
}
