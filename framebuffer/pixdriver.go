package framebuffer

import (
	"image"
	"image/color"
	"image/draw"
)

// The methods below implement pix.Driver, so a Framebuffer can be used with
// pix.NewDisplay for overlays.

func (fb *Framebuffer) Draw(r image.Rectangle, src image.Image, sp image.Point,
	mask image.Image, mp image.Point, op draw.Op) {
	draw.DrawMask(fb.write.Image(), r, src, sp, mask, mp, op)
}

func (fb *Framebuffer) Fill(rect image.Rectangle) {
	fb.Draw(rect, &fb.fill, image.Point{}, nil, image.Point{}, draw.Over)
}

func (fb *Framebuffer) SetColor(c color.Color) {
	fb.fill.C = c
}

func (fb *Framebuffer) SetDir(dir int) image.Rectangle {
	return fb.write.Bounds()
}

// Flush is a no-op, pixels are written to the buffer immediately.
func (fb *Framebuffer) Flush() {}

func (fb *Framebuffer) Err(clear bool) error {
	return nil
}
