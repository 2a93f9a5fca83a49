// Package gpu provides the color combiner as a WGSL shader, for renderers
// that rasterize on the GPU instead of the CPU.
//
// The vertex layout matches raster.Vertex.  Bind group 0 holds the camera
// matrix, group 1 the texture with a linear and a nearest sampler and group 2
// the combiner state as encoded by CombinerUniform.
package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/clktmr/rdpcc/rcp/rdp"
	"github.com/gogpu/naga"
	"golang.org/x/image/math/f32"
)

//go:embed combiner.wgsl
var combinerWGSL string

const spirvMagic = 0x07230203

// CombinerUniformSize is the size of the combiner uniform buffer in bytes.
const CombinerUniformSize = 64

// CameraUniformSize is the size of the camera uniform buffer in bytes.
const CameraUniformSize = 64

// CombinerSource returns the WGSL source of the combiner shader.
func CombinerSource() string {
	return combinerWGSL
}

// CompileCombiner compiles the combiner shader to SPIR-V words.
func CompileCombiner() ([]uint32, error) {
	spirvBytes, err := naga.Compile(combinerWGSL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile combiner: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("failed to compile combiner: truncated SPIR-V of %d bytes", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = binary.LittleEndian.Uint32(spirvBytes[4*i:])
	}
	if len(spirv) == 0 || spirv[0] != spirvMagic {
		return nil, fmt.Errorf("failed to compile combiner: invalid SPIR-V header")
	}
	return spirv, nil
}

// CombinerUniform encodes s in the layout of the shader's Combiner struct.
func CombinerUniform(s rdp.CombinerState, opts rdp.Options) []byte {
	b := make([]byte, 0, CombinerUniformSize)
	b = binary.LittleEndian.AppendUint32(b, s.Color1)
	b = binary.LittleEndian.AppendUint32(b, s.Alpha1)
	b = binary.LittleEndian.AppendUint32(b, s.Color2)
	b = binary.LittleEndian.AppendUint32(b, s.Alpha2)
	b = appendVec4(b, s.Primitive)
	b = appendVec4(b, s.Environment)
	var twoCycle uint32
	if opts.TwoCycle {
		twoCycle = 1
	}
	b = binary.LittleEndian.AppendUint32(b, twoCycle)
	return b[:CombinerUniformSize]
}

// CameraUniform encodes the row major m as the shader's column major mat4x4.
func CameraUniform(m f32.Mat4) []byte {
	b := make([]byte, 0, CameraUniformSize)
	for col := range 4 {
		b = appendVec4(b, f32.Vec4{m[col], m[4+col], m[8+col], m[12+col]})
	}
	return b
}

func appendVec4(b []byte, v f32.Vec4) []byte {
	for _, f := range v {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	return b
}
