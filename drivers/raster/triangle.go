package raster

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/clktmr/rdpcc/rcp/fixed"
	"github.com/clktmr/rdpcc/rcp/rdp"
	"github.com/clktmr/rdpcc/rcp/texture"
	"golang.org/x/image/math/f32"
)

// screenVertex is a vertex after viewport mapping.  Attributes are divided by
// w for perspective correct interpolation.
type screenVertex struct {
	x, y, z float32
	invW    float32
	uv      f32.Vec2
	color   f32.Vec4
}

type triangle struct {
	v       [3]screenVertex
	invArea float32
	flags   rdp.VertexFlags
	topLeft [3]bool // per edge, opposite to the vertex of the same index
	bounds  image.Rectangle
}

func transform(m *f32.Mat4, p f32.Vec4) (clip f32.Vec4) {
	for r := range 4 {
		clip[r] = m[4*r]*p[0] + m[4*r+1]*p[1] + m[4*r+2]*p[2] + m[4*r+3]*p[3]
	}
	return
}

// setup transforms and maps all triangles of dc, dropping those that are
// degenerate, outside of clip or cross the w=0 plane.
func setup(dc DrawCall, mat f32.Mat4, vp Viewport, clip image.Rectangle) []triangle {
	tris := make([]triangle, 0, len(dc.Indices)/3)
outer:
	for i := 0; i+2 < len(dc.Indices); i += 3 {
		var t triangle
		t.flags = dc.Vertices[dc.Indices[i]].Flags
		for k := range t.v {
			in := &dc.Vertices[dc.Indices[i+k]]
			c := transform(&mat, in.Position)
			if c[3] <= 0 {
				continue outer
			}
			invW := 1 / c[3]
			sx := vp.X + (c[0]*invW+1)*0.5*vp.Width
			sy := vp.Y + (1-c[1]*invW)*0.5*vp.Height
			t.v[k] = screenVertex{
				x:    snapScreen(sx),
				y:    snapScreen(sy),
				z:    c[2] * invW,
				invW: invW,
				uv:   f32.Vec2{in.TexCoord[0] * invW, in.TexCoord[1] * invW},
				color: f32.Vec4{in.Color[0] * invW, in.Color[1] * invW,
					in.Color[2] * invW, in.Color[3] * invW},
			}
		}

		v0, v1, v2 := &t.v[0], &t.v[1], &t.v[2]
		area := edgeFunction(v0.x, v0.y, v1.x, v1.y, v2.x, v2.y)
		if area == 0 {
			continue
		}
		if area < 0 {
			t.v[0], t.v[2] = t.v[2], t.v[0]
			area = -area
		}
		t.invArea = 1 / area
		for k := range t.topLeft {
			a, b := &t.v[(k+1)%3], &t.v[(k+2)%3]
			t.topLeft[k] = isTopLeft(b.x-a.x, b.y-a.y)
		}

		// clamp before converting, far vertices don't fit into an int
		minX := clampBound(math.Floor(float64(min(v0.x, v1.x, v2.x))), clip.Min.X, clip.Max.X)
		maxX := clampBound(math.Ceil(float64(max(v0.x, v1.x, v2.x))), clip.Min.X, clip.Max.X)
		minY := clampBound(math.Floor(float64(min(v0.y, v1.y, v2.y))), clip.Min.Y, clip.Max.Y)
		maxY := clampBound(math.Ceil(float64(max(v0.y, v1.y, v2.y))), clip.Min.Y, clip.Max.Y)
		t.bounds = image.Rect(minX, minY, maxX, maxY).Intersect(clip)
		if t.bounds.Empty() {
			continue
		}
		tris = append(tris, t)
	}
	return tris
}

// Vertices within the 14.2 range are snapped to the subpixel grid.  Vertices
// outside of it can't be covered by the scissor anyway and keep their float
// position, so the edges of a clipped triangle stay in place.
const (
	snapMin = -1 << 13
	snapMax = 1<<13 - 0.25
)

func snapScreen(v float32) float32 {
	if v >= snapMin && v <= snapMax {
		return fixed.Int14_2F(v).Float()
	}
	return v
}

func clampBound(v float64, lo, hi int) int {
	return int(rdp.Clamp(v, float64(lo), float64(hi)))
}

// isTopLeft reports whether the edge with direction (dx, dy) is a left edge or
// a horizontal top edge of a triangle with positive area.  Pixels centered
// exactly on such edges are covered.
func isTopLeft(dx, dy float32) bool {
	return dy > 0 || (dy == 0 && dx < 0)
}

// edgeFunction computes the signed area of a parallelogram
func edgeFunction(ax, ay, bx, by, cx, cy float32) float32 {
	return (cx-ax)*(by-ay) - (cy-ay)*(bx-ax)
}

type nrgbaSetter interface {
	SetNRGBA(x, y int, c color.NRGBA)
}

// pipeline holds everything that is constant during a draw call.  It is
// shared read-only by all bands.
type pipeline struct {
	shade   rdp.ShadeFunc
	texture image.Image
	texSize image.Point
	sampler texture.Sampler
	target  Target
	nrgba   nrgbaSetter

	zcmp, zupd bool
}

func (p *pipeline) drawBand(ctx context.Context, band image.Rectangle, tris []triangle) error {
	for y := band.Min.Y; y < band.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		py := float32(y) + 0.5
		for i := range tris {
			t := &tris[i]
			if y < t.bounds.Min.Y || y >= t.bounds.Max.Y {
				continue
			}
			v0, v1, v2 := &t.v[0], &t.v[1], &t.v[2]
			for x := t.bounds.Min.X; x < t.bounds.Max.X; x++ {
				px := float32(x) + 0.5
				w0 := edgeFunction(v1.x, v1.y, v2.x, v2.y, px, py)
				w1 := edgeFunction(v2.x, v2.y, v0.x, v0.y, px, py)
				w2 := edgeFunction(v0.x, v0.y, v1.x, v1.y, px, py)
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
				// pixels on a shared edge belong to one triangle only
				if (w0 == 0 && !t.topLeft[0]) || (w1 == 0 && !t.topLeft[1]) || (w2 == 0 && !t.topLeft[2]) {
					continue
				}
				p.fragment(x, y, t, w0*t.invArea, w1*t.invArea, w2*t.invArea)
			}
		}
	}
	return nil
}

func (p *pipeline) fragment(x, y int, t *triangle, w0, w1, w2 float32) {
	v0, v1, v2 := &t.v[0], &t.v[1], &t.v[2]

	z := w0*v0.z + w1*v1.z + w2*v2.z
	if p.zcmp && !(z < p.target.Depth.At(x, y)) {
		return
	}

	w := 1 / (w0*v0.invW + w1*v1.invW + w2*v2.invW)
	frag := rdp.Fragment{
		Position: f32.Vec4{float32(x) + 0.5, float32(y) + 0.5, z, w},
		Flags:    t.flags,
	}
	for i := range frag.TexCoord {
		frag.TexCoord[i] = (w0*v0.uv[i] + w1*v1.uv[i] + w2*v2.uv[i]) * w
	}
	for i := range frag.Color {
		frag.Color[i] = (w0*v0.color[i] + w1*v1.color[i] + w2*v2.color[i]) * w
	}

	var texels rdp.Texels
	if t.flags&rdp.TextureEnable != 0 && p.texture != nil {
		texels = p.sampler.Texels(p.texture, p.snap(frag.TexCoord))
	}

	c := rdp.NRGBA(p.shade(frag, texels))
	if p.nrgba != nil {
		p.nrgba.SetNRGBA(x, y, c)
	} else {
		p.target.Color.Set(x, y, c)
	}

	if p.zupd {
		p.target.Depth.Set(x, y, z)
	}
}

// snap rounds texture coordinates to the 10.5 texel grid.
func (p *pipeline) snap(uv f32.Vec2) f32.Vec2 {
	const lo, hi = -1 << 10, 1<<10 - 1.0/(1<<5)
	w, h := float32(p.texSize.X), float32(p.texSize.Y)
	if w == 0 || h == 0 {
		return uv
	}
	s := fixed.Int11_5F(rdp.Clamp(uv[0]*w, lo, hi))
	t := fixed.Int11_5F(rdp.Clamp(uv[1]*h, lo, hi))
	return f32.Vec2{s.Float() / w, t.Float() / h}
}
