package framebuffer

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/clktmr/rdpcc/rcp/texture"
)

var ErrShortBuffer = errors.New("framebuffer: short buffer")

// DecodeRDRAM returns the image stored in RDRAM as the video interface would
// display it.  Pixels are stored big-endian, either as 5:5:5:1 or 8:8:8:8.
// The alpha channel isn't displayed, so all pixels of the returned image are
// opaque.
func DecodeRDRAM(b []byte, width, height int, bpp ColorDepth) (texture.Texture, error) {
	r := image.Rect(0, 0, width, height)
	size := width * height * int(bpp)
	if len(b) < size {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrShortBuffer, size, len(b))
	}

	switch bpp {
	case BPP16:
		tex := texture.NewRGBA16(r)
		copy(tex.Pix, b[:size])
		for i := 1; i < len(tex.Pix); i += 2 {
			tex.Pix[i] |= 1
		}
		return tex, nil
	case BPP32:
		tex := texture.NewNRGBA32(r)
		copy(tex.Pix, b[:size])
		for i := 3; i < len(tex.Pix); i += 4 {
			tex.Pix[i] = 0xff
		}
		return tex, nil
	}
	return nil, fmt.Errorf("%w: %d bytes per pixel", texture.ErrFormat, bpp)
}

// EncodeRDRAM returns the pixels of tex as stored in RDRAM.
func EncodeRDRAM(tex texture.Texture) ([]byte, error) {
	b := tex.Bounds()
	switch tex.Format() {
	case texture.FormatRGBA16:
		out := make([]byte, 0, b.Dx()*b.Dy()*2)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := texture.RGBA16Model.Convert(tex.At(x, y)).(texture.ColorRGBA16)
				out = append(out, byte(c>>8), byte(c))
			}
		}
		return out, nil
	case texture.FormatRGBA32:
		out := make([]byte, 0, b.Dx()*b.Dy()*4)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(tex.At(x, y)).(color.NRGBA)
				out = append(out, c.R, c.G, c.B, c.A)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %v", texture.ErrFormat, tex.Format())
}
