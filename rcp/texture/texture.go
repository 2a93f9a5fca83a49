// Package texture provides a common datastructure for images used by the rcp,
// e.g. textures and framebuffers, and samples them like the texture unit does.
package texture

import (
	"fmt"
	"image/draw"
)

// Format combines the image format and bit depth of a texture as understood
// by the RDP.
type Format uint8

const (
	FormatRGBA32 Format = iota + 1
	FormatRGBA16
	FormatI8
	FormatCI8
)

var formatNames = map[Format]string{
	FormatRGBA32: "RGBA32",
	FormatRGBA16: "RGBA16",
	FormatI8:     "I8",
	FormatCI8:    "CI8",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// ParseFormat is the inverse of Format.String.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrFormat, s)
}

// BPP returns the bits per pixel.
func (f Format) BPP() int {
	switch f {
	case FormatRGBA32:
		return 32
	case FormatRGBA16:
		return 16
	}
	return 8
}

// For a number of pixels returns their size in bytes.
func PixelsToBytes(pixels int, f Format) int {
	return pixels * f.BPP() >> 3
}

type Texture interface {
	draw.Image
	Format() Format
	Premult() bool

	// Image returns the underlying image, which is one of the types known
	// to the draw and image packages where possible.
	Image() draw.Image
}
