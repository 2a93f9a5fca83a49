// This file gives access to the RDP commands that configure the color
// combiner.  A DisplayList records them in the same 64-bit format the
// hardware reads from RDRAM and can replay a command stream into the
// CombinerState of the next draw call.  Further documentation can be found in
// the official docs.

package rdp

import (
	"encoding/binary"
	"errors"
	"image/color"

	"golang.org/x/image/math/f32"
)

// Each RDP command is a 64-bit dword, but needs to be stored as two words to
// get endianess right.
type Command struct{ UW, LW uint32 }

// ID returns the 6-bit command identifier.
func (c Command) ID() uint8 { return uint8(c.UW>>24) & 0x3f }

func (c Command) dword() uint64 { return uint64(c.UW)<<32 | uint64(c.LW) }

func makeCommand(dw uint64) Command {
	return Command{UW: uint32(dw >> 32), LW: uint32(dw)}
}

const (
	cmdSyncPipe            = 0x27
	cmdSetOtherModes       = 0x2f
	cmdSetPrimitiveColor   = 0x3a
	cmdSetEnvironmentColor = 0x3b
	cmdSetCombineMode      = 0x3c
)

var ErrCommandLength = errors.New("rdp: command stream not a multiple of 8 bytes")

// ParseCommands splits a big-endian command stream, as found in RDRAM, into
// commands.
func ParseCommands(b []byte) ([]Command, error) {
	if len(b)%8 != 0 {
		return nil, ErrCommandLength
	}
	cmds := make([]Command, 0, len(b)/8)
	for ; len(b) > 0; b = b[8:] {
		cmds = append(cmds, makeCommand(binary.BigEndian.Uint64(b)))
	}
	return cmds, nil
}

// Mode flags for the SetOtherModes() command.
// TODO Blend modewords (bits 16-31)
type ModeFlags uint64

const (
	AlphaCompare ModeFlags = 1 << iota
	DitherAlpha
	ZSource
	AntiAlias
	ZCompare
	ZUpdate
	ImageRead
	ColorOnCoverage
)

const (
	CycleTypeOne ModeFlags = iota << 52
	CycleTypeTwo
	CycleTypeCopy
	CycleTypeFill

	cycleTypeMask = CycleTypeFill
)

// CycleType returns one of the CycleType* flags.
func (m ModeFlags) CycleType() ModeFlags { return m & cycleTypeMask }

// Options returns the combiner options implied by the cycle type.
func (m ModeFlags) Options() Options {
	return Options{TwoCycle: m.CycleType() == CycleTypeTwo}
}

type combineField struct{ shift, width uint }

// Bit positions of the selector codes in the SetCombineMode command, indexed
// by cycle and slot.
var combineLayout = [2]struct{ rgb, alpha [numSlots]combineField }{
	{
		rgb:   [numSlots]combineField{{52, 4}, {28, 4}, {47, 5}, {15, 3}},
		alpha: [numSlots]combineField{{44, 3}, {12, 3}, {41, 3}, {9, 3}},
	},
	{
		rgb:   [numSlots]combineField{{37, 4}, {24, 4}, {32, 5}, {6, 3}},
		alpha: [numSlots]combineField{{21, 3}, {3, 3}, {18, 3}, {0, 3}},
	},
}

func (f combineField) put(dw uint64, code CombineSource) uint64 {
	mask := uint64(1)<<f.width - 1
	return dw | (uint64(code)&mask)<<f.shift
}

func (f combineField) get(dw uint64) CombineSource {
	mask := uint64(1)<<f.width - 1
	return CombineSource(dw >> f.shift & mask)
}

func encodeCombineMode(m CombineMode) uint64 {
	dw := uint64(cmdSetCombineMode) << 56
	for cycle, pass := range [2]CombinePass{m.One, m.Two} {
		for s := range numSlots {
			dw = combineLayout[cycle].rgb[s].put(dw, pass.RGB.At(s))
			dw = combineLayout[cycle].alpha[s].put(dw, pass.Alpha.At(s))
		}
	}
	return dw
}

func decodeCombineMode(dw uint64) (m CombineMode) {
	for cycle, pass := range [2]*CombinePass{&m.One, &m.Two} {
		var rgb, alpha [numSlots]CombineSource
		for s := range numSlots {
			rgb[s] = combineLayout[cycle].rgb[s].get(dw)
			alpha[s] = combineLayout[cycle].alpha[s].get(dw)
		}
		pass.RGB = CombineParams{rgb[0], rgb[1], rgb[2], rgb[3]}
		pass.Alpha = CombineParams{alpha[0], alpha[1], alpha[2], alpha[3]}
	}
	return
}

func packColor(c color.Color) uint32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return uint32(n.R)<<24 | uint32(n.G)<<16 | uint32(n.B)<<8 | uint32(n.A)
}

func unpackColor(w uint32) f32.Vec4 {
	return Vec4(color.NRGBA{uint8(w >> 24), uint8(w >> 16), uint8(w >> 8), uint8(w)})
}

// DisplayList records RDP commands.  The zero value is an empty list.
type DisplayList struct {
	cmds []Command

	lastOtherModes ModeFlags
	otherModesSet  bool
}

// NewDisplayList returns a list holding a copy of cmds.
func NewDisplayList(cmds ...Command) *DisplayList {
	return &DisplayList{cmds: append([]Command(nil), cmds...)}
}

// Commands returns the recorded commands.
func (dl *DisplayList) Commands() []Command { return dl.cmds }

// Bytes returns the commands in the big-endian format read by the RDP.
func (dl *DisplayList) Bytes() []byte {
	b := make([]byte, 0, 8*len(dl.cmds))
	for _, c := range dl.cmds {
		b = binary.BigEndian.AppendUint64(b, c.dword())
	}
	return b
}

func (dl *DisplayList) push(dw uint64) {
	dl.cmds = append(dl.cmds, makeCommand(dw))
}

// Waits until the pipeline finished reading the current mode before it's
// changed.
func (dl *DisplayList) syncPipe() {
	dl.push(cmdSyncPipe << 56)
}

// SetCombineMode configures the selector codes of both combiner cycles.
// Codes wider than the command's bit field are truncated.
func (dl *DisplayList) SetCombineMode(m CombineMode) {
	dl.push(encodeCombineMode(m))
}

// Sets the color used by CombinePrimitive.
func (dl *DisplayList) SetPrimitiveColor(c color.Color) {
	dl.push(uint64(cmdSetPrimitiveColor)<<56 | uint64(packColor(c)))
}

// Sets the color used by CombineEnvironment.
func (dl *DisplayList) SetEnvironmentColor(c color.Color) {
	dl.push(uint64(cmdSetEnvironmentColor)<<56 | uint64(packColor(c)))
}

func (dl *DisplayList) SetOtherModes(m ModeFlags) {
	if dl.otherModesSet && m == dl.lastOtherModes {
		return // avoid costly pipeline sync
	}
	dl.lastOtherModes, dl.otherModesSet = m, true

	dl.syncPipe()
	dl.push(uint64(cmdSetOtherModes)<<56 | uint64(m)&(1<<56-1))
}

// State replays the recorded commands and returns the combiner state and
// other modes in effect after the last command.  Commands which don't affect
// the combiner are skipped.
func (dl *DisplayList) State() (s CombinerState, m ModeFlags) {
	for _, c := range dl.cmds {
		switch c.ID() {
		case cmdSetCombineMode:
			mode := decodeCombineMode(c.dword())
			s.Color1, s.Alpha1 = Encode(mode.One.RGB), Encode(mode.One.Alpha)
			s.Color2, s.Alpha2 = Encode(mode.Two.RGB), Encode(mode.Two.Alpha)
		case cmdSetPrimitiveColor:
			s.Primitive = unpackColor(c.LW)
		case cmdSetEnvironmentColor:
			s.Environment = unpackColor(c.LW)
		case cmdSetOtherModes:
			m = ModeFlags(c.dword() & (1<<56 - 1))
		}
	}
	return
}
