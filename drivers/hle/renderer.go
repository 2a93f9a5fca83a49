package hle

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"maps"
	"slices"
	"time"

	"github.com/clktmr/rdpcc/debug"
	"github.com/clktmr/rdpcc/drivers/raster"
	"github.com/clktmr/rdpcc/framebuffer"
	"github.com/clktmr/rdpcc/rcp/rdp"
	"github.com/clktmr/rdpcc/rcp/texture"
	"github.com/clktmr/rdpcc/rcp/video"
	"golang.org/x/image/math/f32"
)

var (
	ErrUnknownCommand = errors.New("hle: unknown command")
	ErrQueueClosed    = errors.New("hle: command queue closed")
	ErrIndexRange     = errors.New("hle: index range exceeds index buffer")
	ErrMatrixIndex    = errors.New("hle: matrix index out of range")
)

// Some games set the video interface to the framebuffer address plus one
// scanline of 320 16-bit pixels.
const scanlineOffset = 640

const fpsInterval = 10

type Options struct {
	// Size of all render targets.  Defaults to 320x240.
	Size image.Point

	// ColorDepth of color render targets.  Defaults to framebuffer.BPP32.
	ColorDepth framebuffer.ColorDepth

	Raster raster.Options

	// OnSync is called after a frame was completed, e.g. to raise an
	// interrupt.
	OnSync func(frame int)
}

// Renderer owns the render targets and executes commands.  It isn't safe for
// concurrent use.
type Renderer struct {
	opts Options
	rast *raster.Rasterizer

	colorImages map[uint32]texture.Texture
	depthImages map[uint32]*framebuffer.Depth

	viewport raster.Viewport
	vertices []raster.Vertex
	indices  []uint16
	matrices []f32.Mat4

	frames                    int
	vertexWrites, indexWrites int
	fps                       float32
	fpsStart                  time.Time
}

func NewRenderer(opts Options) *Renderer {
	if opts.Size == (image.Point{}) {
		opts.Size = image.Pt(framebuffer.WIDTH, framebuffer.HEIGHT)
	}
	if opts.ColorDepth == 0 {
		opts.ColorDepth = framebuffer.BPP32
	}
	return &Renderer{
		opts:        opts,
		rast:        raster.New(opts.Raster),
		colorImages: make(map[uint32]texture.Texture),
		depthImages: make(map[uint32]*framebuffer.Depth),
		fpsStart:    time.Now(),
	}
}

// Run executes commands from queue until a Sync was executed.
func (r *Renderer) Run(ctx context.Context, queue <-chan Command) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-queue:
			if !ok {
				return ErrQueueClosed
			}
			if err := r.Execute(ctx, cmd); err != nil {
				return err
			}
			if _, ok := cmd.(Sync); ok {
				return nil
			}
		}
	}
}

// Execute executes a single command.
func (r *Renderer) Execute(ctx context.Context, cmd Command) error {
	switch cmd := cmd.(type) {
	case DefineColorImage:
		r.defineColorImage(cmd.Address)
	case DefineDepthImage:
		r.defineDepthImage(cmd.Address)
	case Viewport:
		r.viewport = raster.Viewport(cmd)
	case VertexData:
		r.vertices = append(r.vertices[:0], cmd...)
		r.vertexWrites += len(cmd)
	case IndexData:
		r.indices = append(r.indices[:0], cmd...)
		r.indexWrites += len(cmd)
	case MatrixData:
		r.matrices = append(r.matrices[:0], cmd...)
	case RenderPass:
		return r.renderPass(ctx, &cmd)
	case Sync:
		r.sync()
	case Noop:
	default:
		if cmd == nil {
			return fmt.Errorf("%w: nil", ErrUnknownCommand)
		}
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name())
	}
	return nil
}

func (r *Renderer) defineColorImage(addr uint32) {
	if _, ok := r.colorImages[addr]; ok {
		return
	}
	bounds := image.Rectangle{Max: r.opts.Size}
	if r.opts.ColorDepth == framebuffer.BPP16 {
		r.colorImages[addr] = texture.NewRGBA16(bounds)
	} else {
		r.colorImages[addr] = texture.NewNRGBA32(bounds)
	}
	debug.Logger().Info("created color render target", "addr", fmt.Sprintf("$%08X", addr), "width", bounds.Dx())
}

func (r *Renderer) defineDepthImage(addr uint32) {
	if _, ok := r.depthImages[addr]; ok {
		return
	}
	r.depthImages[addr] = framebuffer.NewDepth(image.Rectangle{Max: r.opts.Size})
	debug.Logger().Info("created depth render target", "addr", fmt.Sprintf("$%08X", addr), "width", r.opts.Size.X)
}

func (r *Renderer) renderPass(ctx context.Context, rp *RenderPass) error {
	colorImage, ok := r.colorImages[rp.ColorImage]
	if !ok {
		debug.Logger().Warn("render pass without a color target", "addr", fmt.Sprintf("$%08X", rp.ColorImage))
		return nil
	}
	target := raster.Target{Color: colorImage}
	if depth, ok := r.depthImages[rp.DepthImage]; ok {
		target.Depth = depth
		if rp.ClearDepth {
			depth.Clear(1)
		}
	}
	if rp.ClearColor != nil {
		draw.Draw(colorImage.Image(), colorImage.Bounds(), image.NewUniform(rp.ClearColor), image.Point{}, draw.Src)
	}

	for i := range rp.DrawList {
		dl := &rp.DrawList[i]
		last := uint64(dl.StartIndex) + uint64(dl.NumIndices)
		if last > uint64(len(r.indices)) {
			return fmt.Errorf("%w: draw %d ends at %d of %d", ErrIndexRange, i, last, len(r.indices))
		}
		var mat f32.Mat4
		if len(r.matrices) > 0 {
			if int(dl.MatrixIndex) >= len(r.matrices) {
				return fmt.Errorf("%w: draw %d uses %d of %d", ErrMatrixIndex, i, dl.MatrixIndex, len(r.matrices))
			}
			mat = r.matrices[dl.MatrixIndex]
		}

		modes := dl.Modes
		if target.Depth != nil {
			modes |= rdp.ZCompare | rdp.ZUpdate
		}
		err := r.rast.DrawTriangles(ctx, target, raster.DrawCall{
			Vertices: r.vertices,
			Indices:  r.indices[dl.StartIndex:last],
			Matrix:   mat,
			State:    dl.State,
			Modes:    modes,
			Texture:  dl.Texture,
			Sampler:  dl.Sampler,
			Viewport: r.viewport,
		})
		if err != nil {
			return fmt.Errorf("render pass $%08X: %w", rp.ColorImage, err)
		}
	}
	return nil
}

func (r *Renderer) sync() {
	r.frames++
	if r.frames%fpsInterval == 0 {
		r.fps = fpsInterval / float32(time.Since(r.fpsStart).Seconds())
		r.fpsStart = time.Now()
	}

	r.viewport = raster.Viewport{}

	debug.Logger().Debug("frame synced", "frame", r.frames,
		"vertexWrites", r.vertexWrites, "indexWrites", r.indexWrites)
	r.vertexWrites, r.indexWrites = 0, 0

	if r.opts.OnSync != nil {
		r.opts.OnSync(r.frames)
	}
}

// Frames returns the number of completed frames.
func (r *Renderer) Frames() int { return r.frames }

// FPS returns the frame rate, averaged over the last ten frames.
func (r *Renderer) FPS() float32 { return r.fps }

func (r *Renderer) ColorImage(addr uint32) (texture.Texture, bool) {
	img, ok := r.colorImages[addr]
	return img, ok
}

func (r *Renderer) DepthImage(addr uint32) (*framebuffer.Depth, bool) {
	img, ok := r.depthImages[addr]
	return img, ok
}

// ColorImages returns the addresses of all color render targets in ascending
// order.
func (r *Renderer) ColorImages() []uint32 {
	return slices.Sorted(maps.Keys(r.colorImages))
}

// DepthImages returns the addresses of all depth render targets in ascending
// order.
func (r *Renderer) DepthImages() []uint32 {
	return slices.Sorted(maps.Keys(r.depthImages))
}

// NumViews returns the number of images View can show.
func (r *Renderer) NumViews() int {
	return 1 + len(r.colorImages) + len(r.depthImages)
}

// View returns one of the images a debugger can cycle through together with
// a short description.  View 0 is what the video interface displays, followed
// by all color and then all depth render targets.  n wraps around.
func (r *Renderer) View(n int, vi video.Registers, rdram []byte) (image.Image, string, error) {
	n %= r.NumViews()
	if n < 0 {
		n += r.NumViews()
	}
	if n == 0 {
		img, err := r.Display(vi, rdram)
		return img, fmt.Sprintf("display $%08X", vi.Origin), err
	}
	n--
	colors := r.ColorImages()
	if n < len(colors) {
		return r.colorImages[colors[n]], fmt.Sprintf("color $%08X", colors[n]), nil
	}
	addr := r.DepthImages()[n-len(colors)]
	return r.depthImages[addr].Gray(), fmt.Sprintf("depth $%08X", addr), nil
}

// Display returns the image the video interface shows.  If no color render
// target exists at the origin, the framebuffer is decoded from rdram instead.
func (r *Renderer) Display(vi video.Registers, rdram []byte) (image.Image, error) {
	addr := vi.Origin
	if addr == 0 {
		return nil, video.ErrBlank
	}
	if img, ok := r.colorImages[addr]; ok {
		return img, nil
	}
	if img, ok := r.colorImages[addr-scanlineOffset]; ok && addr >= scanlineOffset {
		return img, nil
	}

	width, height, err := vi.Resolution()
	if err != nil {
		return nil, err
	}
	bpp, err := vi.ColorDepth().Framebuffer()
	if err != nil {
		return nil, err
	}
	if int(addr) > len(rdram) {
		return nil, fmt.Errorf("%w: address $%08X", framebuffer.ErrShortBuffer, addr)
	}
	return framebuffer.DecodeRDRAM(rdram[addr:], width, height, bpp)
}
