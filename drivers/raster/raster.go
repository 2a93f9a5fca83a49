// Package raster implements a software rasterizer that feeds every covered
// pixel of a triangle list through the color combiner.
//
// Triangles are transformed by the draw call's matrix, mapped to the viewport
// and scan converted with edge functions. Each fragment gets its texels
// sampled with both filters and is shaded by the combiner before the output
// stage clamps the color and performs the depth test.
//
// A draw call is split into horizontal bands which are rendered in parallel.
// Bands write disjoint rows of the target, so the result doesn't depend on the
// number of workers.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"runtime"

	"github.com/clktmr/rdpcc/debug"
	"github.com/clktmr/rdpcc/framebuffer"
	"github.com/clktmr/rdpcc/rcp/fixed"
	"github.com/clktmr/rdpcc/rcp/rdp"
	"github.com/clktmr/rdpcc/rcp/texture"
	"golang.org/x/image/math/f32"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoTarget   = errors.New("raster: no color target")
	ErrIndexCount = errors.New("raster: index count not a multiple of three")
	ErrIndexRange = errors.New("raster: index out of range")
)

type Vertex struct {
	Position f32.Vec4
	TexCoord f32.Vec2
	Color    f32.Vec4
	Flags    rdp.VertexFlags
}

// Viewport maps normalized device coordinates to pixels.  A zero Viewport
// covers the whole target.
type Viewport struct {
	X, Y, Width, Height float32
}

// Target is the destination of a draw call.  Depth is optional.
type Target struct {
	Color draw.Image
	Depth *framebuffer.Depth
}

// DrawCall describes an indexed triangle list and the combiner configuration
// it is drawn with.
type DrawCall struct {
	Vertices []Vertex
	Indices  []uint16

	// Matrix transforms vertex positions to clip space.  A zero Matrix is
	// treated as identity.
	Matrix f32.Mat4

	State rdp.CombinerState
	Modes rdp.ModeFlags

	// Texture is sampled for vertices with rdp.TextureEnable set.  Sampling
	// a nil Texture yields zero texels.
	Texture image.Image
	Sampler texture.Sampler

	Viewport Viewport
}

// Options configure a Rasterizer.  The zero value uses one worker per CPU and
// four bands per worker.
type Options struct {
	Workers int
	Bands   int
}

type Rasterizer struct {
	workers, bands int
}

func New(opts Options) *Rasterizer {
	r := &Rasterizer{workers: opts.Workers, bands: opts.Bands}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	if r.bands <= 0 {
		r.bands = 4 * r.workers
	}
	return r
}

var identity = f32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// DrawTriangles renders dc into target.  If ctx is cancelled before all bands
// are done, the draw call is aborted and ctx.Err() is returned.
func (r *Rasterizer) DrawTriangles(ctx context.Context, target Target, dc DrawCall) error {
	if target.Color == nil {
		return ErrNoTarget
	}
	if len(dc.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d", ErrIndexCount, len(dc.Indices))
	}
	for _, idx := range dc.Indices {
		if int(idx) >= len(dc.Vertices) {
			return fmt.Errorf("%w: %d >= %d", ErrIndexRange, idx, len(dc.Vertices))
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	vp := dc.Viewport
	if vp == (Viewport{}) {
		b := target.Color.Bounds()
		vp = Viewport{float32(b.Min.X), float32(b.Min.Y), float32(b.Dx()), float32(b.Dy())}
	}
	clip := scissor(vp).Intersect(target.Color.Bounds())
	if target.Depth != nil {
		clip = clip.Intersect(target.Depth.Bounds())
	}
	if clip.Empty() {
		return nil
	}

	mat := dc.Matrix
	if mat == (f32.Mat4{}) {
		mat = identity
	}
	tris := setup(dc, mat, vp, clip)
	if len(tris) == 0 {
		return nil
	}
	if debug.Enabled {
		for i := range tris {
			debug.Assert(tris[i].bounds.In(clip), "raster: triangle exceeds scissor")
		}
	}

	p := &pipeline{
		shade:   rdp.NewShader(dc.State, dc.Modes.Options()),
		texture: dc.Texture,
		sampler: dc.Sampler,
		target:  target,
		zcmp:    target.Depth != nil && dc.Modes&rdp.ZCompare != 0,
		zupd:    target.Depth != nil && dc.Modes&rdp.ZUpdate != 0,
	}
	if dc.Texture != nil {
		p.texSize = dc.Texture.Bounds().Size()
	}
	if img, ok := target.Color.(nrgbaSetter); ok {
		p.nrgba = img
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, band := range bands(clip, r.bands) {
		g.Go(func() error {
			return p.drawBand(ctx, band, tris)
		})
	}
	return g.Wait()
}

// scissor returns the pixels touched by the viewport.
func scissor(vp Viewport) image.Rectangle {
	const hi = 1<<14 - 0.25
	x0, y0 := fixed.UInt14_2F(rdp.Clamp(vp.X, 0, hi)), fixed.UInt14_2F(rdp.Clamp(vp.Y, 0, hi))
	x1, y1 := fixed.UInt14_2F(rdp.Clamp(vp.X+vp.Width, 0, hi)), fixed.UInt14_2F(rdp.Clamp(vp.Y+vp.Height, 0, hi))
	return image.Rect(x0.Floor(), y0.Floor(), x1.Ceil(), y1.Ceil())
}

// bands splits r into at most n horizontal bands of equal height.
func bands(r image.Rectangle, n int) []image.Rectangle {
	rows := r.Dy()
	n = max(1, min(n, rows))
	height := (rows + n - 1) / n
	out := make([]image.Rectangle, 0, n)
	for y := r.Min.Y; y < r.Max.Y; y += height {
		out = append(out, image.Rect(r.Min.X, y, r.Max.X, min(y+height, r.Max.Y)))
	}
	return out
}
