package texture

import (
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

var (
	ErrFormat    = errors.New("texture: unsupported format")
	ErrSubImage  = errors.New("texture: is subimage")
	ErrDimension = errors.New("texture: invalid dimensions")
)

type header struct {
	Format        Format
	Premult       bool
	Width, Height uint16
	PaletteSize   uint16
}

// Load reads a texture previously written by Store.
func Load(r io.Reader) (tex Texture, err error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var hdr header
	err = binary.Read(zr, binary.BigEndian, &hdr)
	if err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, int(hdr.Width), int(hdr.Height))
	switch hdr.Format {
	case FormatRGBA32:
		if hdr.Premult {
			tex = NewRGBA32(rect)
		} else {
			tex = NewNRGBA32(rect)
		}
	case FormatRGBA16:
		tex = NewRGBA16(rect)
	case FormatI8:
		tex = NewI8(rect)
	case FormatCI8:
		if hdr.PaletteSize == 0 || hdr.PaletteSize > 256 {
			return nil, fmt.Errorf("%w: palette size %d", ErrDimension, hdr.PaletteSize)
		}
		tlut := make([]byte, 2*int(hdr.PaletteSize))
		_, err = io.ReadFull(zr, tlut)
		if err != nil {
			return nil, err
		}
		palette := make(color.Palette, hdr.PaletteSize)
		for i := range palette {
			palette[i] = ColorRGBA16(binary.BigEndian.Uint16(tlut[2*i:]))
		}
		tex = NewCI8(rect, palette)
	default:
		return nil, fmt.Errorf("%w: %v", ErrFormat, hdr.Format)
	}

	pix, _ := pixels(tex)
	_, err = io.ReadFull(zr, pix)
	if err != nil {
		return nil, err
	}

	return tex, nil
}

// Store writes the texture compressed with zlib.  Subimages can't be stored.
func Store(w io.Writer, tex Texture) error {
	pix, stride := pixels(tex)
	if pix == nil {
		return fmt.Errorf("%w: %T", ErrFormat, tex.Image())
	}
	bounds := tex.Bounds()
	if stride != PixelsToBytes(bounds.Dx(), tex.Format()) || len(pix) < stride*bounds.Dy() {
		return ErrSubImage
	}
	pix = pix[:stride*bounds.Dy()]
	if bounds.Dx() > 0xffff || bounds.Dy() > 0xffff {
		return ErrDimension
	}

	var hdr = header{
		Format:  tex.Format(),
		Premult: tex.Premult(),
		Width:   uint16(bounds.Dx()),
		Height:  uint16(bounds.Dy()),
	}

	var tlut []byte
	if p, ok := tex.Image().(*image.Paletted); ok {
		if len(p.Palette) == 0 || len(p.Palette) > 256 {
			return fmt.Errorf("%w: palette size %d", ErrDimension, len(p.Palette))
		}
		hdr.PaletteSize = uint16(len(p.Palette))
		tlut = make([]byte, 0, 2*len(p.Palette))
		for _, c := range p.Palette {
			tlut = binary.BigEndian.AppendUint16(tlut, uint16(rgba16Model(c).(ColorRGBA16)))
		}
	}

	zw := zlib.NewWriter(w)
	err := binary.Write(zw, binary.BigEndian, hdr)
	if err != nil {
		return err
	}

	if tlut != nil {
		_, err = zw.Write(tlut)
		if err != nil {
			return err
		}
	}

	_, err = zw.Write(pix)
	if err != nil {
		return err
	}

	return zw.Close()
}

// pixels returns the raw pixel memory of tex starting at its first pixel.
func pixels(tex Texture) (pix []byte, stride int) {
	switch img := tex.Image().(type) {
	case *image.RGBA:
		return img.Pix, img.Stride
	case *image.NRGBA:
		return img.Pix, img.Stride
	case *image.Alpha:
		return img.Pix, img.Stride
	case *image.Paletted:
		return img.Pix, img.Stride
	case *imageRGBA16:
		return img.Pix, img.Stride
	}
	return nil, 0
}
