// Package hle executes the high level command stream produced by an emulated
// graphics microcode.
//
// Instead of interpreting RDP triangle commands, the microcode hands over
// whole vertex, index and matrix buffers together with render passes that
// reference them. The Renderer rasterizes those passes into render targets,
// which are identified by their address in RDRAM.
package hle

import (
	"fmt"
	"image"
	"image/color"

	"github.com/clktmr/rdpcc/drivers/raster"
	"github.com/clktmr/rdpcc/rcp/rdp"
	"github.com/clktmr/rdpcc/rcp/texture"
	"golang.org/x/image/math/f32"
)

// NoImage is used as address in a RenderPass without color or depth image.
const NoImage = 0xffff_ffff

// Command is a single entry of the command stream.
type Command interface {
	Name() string
}

// DefineColorImage creates a color render target at Address, if it doesn't
// exist already.
type DefineColorImage struct {
	Address uint32
}

// DefineDepthImage creates a depth render target at Address, if it doesn't
// exist already.
type DefineDepthImage struct {
	Address uint32
}

// Viewport sets the viewport of all following render passes until the next
// Sync.
type Viewport raster.Viewport

// VertexData replaces the vertex buffer.
type VertexData []raster.Vertex

// IndexData replaces the index buffer.
type IndexData []uint16

// MatrixData replaces the matrix buffer.  Each matrix transforms a vertex to
// clip space.
type MatrixData []f32.Mat4

// RenderPass draws a list of triangle ranges into its render targets.
type RenderPass struct {
	ColorImage uint32
	DepthImage uint32

	// ClearColor is used to clear the color image before drawing, unless
	// it's nil.
	ClearColor color.Color

	// ClearDepth resets the depth image to the far plane before drawing.
	ClearDepth bool

	DrawList []Draw
}

// Draw renders NumIndices indices starting at StartIndex of the index buffer,
// transformed by the matrix at MatrixIndex.
type Draw struct {
	MatrixIndex uint32
	StartIndex  uint32
	NumIndices  uint32

	State rdp.CombinerState
	Modes rdp.ModeFlags

	Texture image.Image
	Sampler texture.Sampler
}

// Sync marks the end of a frame.
type Sync struct{}

// Noop does nothing.
type Noop struct{}

func (DefineColorImage) Name() string { return "DefineColorImage" }
func (DefineDepthImage) Name() string { return "DefineDepthImage" }
func (Viewport) Name() string         { return "Viewport" }
func (VertexData) Name() string       { return "VertexData" }
func (IndexData) Name() string        { return "IndexData" }
func (MatrixData) Name() string       { return "MatrixData" }
func (RenderPass) Name() string       { return "RenderPass" }
func (Sync) Name() string             { return "Sync" }
func (Noop) Name() string             { return "Noop" }

func (c DefineColorImage) String() string { return fmt.Sprintf("%s $%08X", c.Name(), c.Address) }
func (c DefineDepthImage) String() string { return fmt.Sprintf("%s $%08X", c.Name(), c.Address) }
