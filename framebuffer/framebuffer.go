// Package framebuffer provides the render targets the rasterizer draws into.
package framebuffer

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/clktmr/rdpcc/rcp/texture"
)

// ColorDepth is the size of a pixel in RDRAM.
type ColorDepth uint8

const (
	BPP16 ColorDepth = 2
	BPP32 ColorDepth = 4
)

const (
	WIDTH  = 320
	HEIGHT = 240
)

// Represents a double buffered image the rasterizer renders to while the
// other buffer is being displayed. Implements draw.Image on the write
// buffer, so all the drawing tools from the standard library can be used.
// Moreover draw.DrawMask will chose optimized implementations based on type
// assertions, that's why the buffers are images of types that the draw
// package knows wherever possible.
type Framebuffer struct {
	bufs        [2]texture.Texture
	read, write texture.Texture
	fill        image.Uniform
}

// NewFramebuffer returns a framebuffer of size r.  A zero r selects the
// default resolution of WIDTH x HEIGHT.
func NewFramebuffer(r image.Rectangle, bpp ColorDepth) *Framebuffer {
	if r.Empty() {
		r = image.Rect(0, 0, WIDTH, HEIGHT)
	}
	fb := &Framebuffer{}
	for i := range fb.bufs {
		if bpp == BPP16 {
			fb.bufs[i] = texture.NewRGBA16(r)
		} else {
			fb.bufs[i] = texture.NewNRGBA32(r)
		}
	}

	fb.write = fb.bufs[0]
	fb.read = fb.bufs[1]
	return fb
}

// Swap exchanges read and write buffer and returns the buffer that is ready
// to be displayed.
func (fb *Framebuffer) Swap() texture.Texture {
	fb.read, fb.write = fb.write, fb.read
	return fb.read
}

// Write returns the buffer currently rendered to.
func (fb *Framebuffer) Write() texture.Texture { return fb.write }

// Read returns the buffer currently displayed.
func (fb *Framebuffer) Read() texture.Texture { return fb.read }

func (fb *Framebuffer) ColorDepth() ColorDepth {
	if fb.write.Format() == texture.FormatRGBA16 {
		return BPP16
	}
	return BPP32
}

func (fb *Framebuffer) ColorModel() color.Model    { return fb.write.ColorModel() }
func (fb *Framebuffer) Bounds() image.Rectangle    { return fb.write.Bounds() }
func (fb *Framebuffer) At(x, y int) color.Color    { return fb.write.At(x, y) }
func (fb *Framebuffer) Set(x, y int, c color.Color) { fb.write.Set(x, y, c) }

// Clear fills the write buffer with c.
func (fb *Framebuffer) Clear(c color.Color) {
	draw.Draw(fb.write.Image(), fb.write.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}
