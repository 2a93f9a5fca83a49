// Package video models the video interface, which scans a framebuffer out of
// RDRAM and outputs it to screen as either NTSC, PAL or M-PAL.
//
// Only the registers needed to locate and decode the framebuffer are kept.
// They are written by the emulated CPU and read by the renderer, possibly
// from different goroutines.
package video

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/clktmr/rdpcc/debug"
	"github.com/clktmr/rdpcc/framebuffer"
)

var (
	ErrRegister = errors.New("video: unknown register")
	ErrSize     = errors.New("video: unsupported framebuffer size")
	ErrBlank    = errors.New("video: output disabled")
)

// Register offsets relative to the interface's base address 0x0440_0000.
const (
	RegControl = 0x00
	RegOrigin  = 0x04
	RegWidth   = 0x08
	RegXScale  = 0x30
	RegYScale  = 0x34
)

type ColorDepth uint32

const (
	Blank ColorDepth = 0
	BPP16 ColorDepth = 2
	BPP32 ColorDepth = 3

	controlTypeMask = 0x3
	controlAAMode   = 3 << 8
)

// Framebuffer returns the matching framebuffer color depth.
func (d ColorDepth) Framebuffer() (framebuffer.ColorDepth, error) {
	switch d {
	case BPP16:
		return framebuffer.BPP16, nil
	case BPP32:
		return framebuffer.BPP32, nil
	case Blank:
		return 0, ErrBlank
	}
	return 0, fmt.Errorf("video: reserved color depth %d", uint32(d))
}

// Registers is a snapshot of the video interface.
type Registers struct {
	Control uint32
	Origin  uint32
	Width   uint32
	XScale  uint32
	YScale  uint32
}

func (r *Registers) ColorDepth() ColorDepth {
	return ColorDepth(r.Control & controlTypeMask)
}

// Resolution returns the size of the framebuffer the video interface reads.
// Only the widths of 320 and 640 pixels are known.
func (r *Registers) Resolution() (width, height int, err error) {
	switch r.Width {
	case 320:
		return 320, 240, nil
	case 640:
		return 640, 480, nil
	}
	return 0, 0, fmt.Errorf("%w: width %d", ErrSize, r.Width)
}

// Interface holds the registers shared between the emulated CPU and the
// renderer.  It is safe for concurrent use.
type Interface struct {
	control atomic.Uint32
	origin  atomic.Uint32
	width   atomic.Uint32
	xScale  atomic.Uint32
	yScale  atomic.Uint32
}

func (vi *Interface) reg(offset uint32) *atomic.Uint32 {
	switch offset {
	case RegControl:
		return &vi.control
	case RegOrigin:
		return &vi.origin
	case RegWidth:
		return &vi.width
	case RegXScale:
		return &vi.xScale
	case RegYScale:
		return &vi.yScale
	}
	return nil
}

// Store writes the register at offset.
func (vi *Interface) Store(offset, value uint32) error {
	reg := vi.reg(offset)
	if reg == nil {
		return fmt.Errorf("%w: $%02X", ErrRegister, offset)
	}
	if offset == RegOrigin {
		value &= 0x00ff_ffff
	}
	reg.Store(value)
	return nil
}

// Load reads the register at offset.
func (vi *Interface) Load(offset uint32) (uint32, error) {
	reg := vi.reg(offset)
	if reg == nil {
		return 0, fmt.Errorf("%w: $%02X", ErrRegister, offset)
	}
	return reg.Load(), nil
}

// Registers returns a snapshot of all registers.  Registers written while the
// snapshot is taken may or may not be included.
func (vi *Interface) Registers() Registers {
	return Registers{
		Control: vi.control.Load(),
		Origin:  vi.origin.Load(),
		Width:   vi.width.Load(),
		XScale:  vi.xScale.Load(),
		YScale:  vi.yScale.Load(),
	}
}

// Setup configures the interface to scan out a framebuffer of the given
// width and height at origin, scaled to the 640x480 output.
func (vi *Interface) Setup(origin uint32, width, height int, bpp framebuffer.ColorDepth) {
	// Avoid glitches by disabling output while changing registers
	vi.control.Store(0)

	w, h := uint32(width), uint32(height)
	vi.origin.Store(origin & 0x00ff_ffff)
	vi.width.Store(w)
	vi.xScale.Store((1024*w + 320) / 640)
	vi.yScale.Store((1024*h + 120) / 240)

	vi.control.Store(uint32(colorDepth(bpp)) | controlAAMode)
}

// SetOrigin points the interface to another framebuffer, e.g. after swapping.
func (vi *Interface) SetOrigin(origin uint32) {
	vi.origin.Store(origin & 0x00ff_ffff)
}

func colorDepth(bpp framebuffer.ColorDepth) ColorDepth {
	switch bpp {
	case framebuffer.BPP16:
		return BPP16
	case framebuffer.BPP32:
		return BPP32
	default:
		debug.Assert(false, "video: unsupported framebuffer format")
	}
	return Blank
}
