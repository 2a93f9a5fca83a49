package hle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"testing"

	"github.com/clktmr/rdpcc/debug"
	"github.com/clktmr/rdpcc/drivers/raster"
	"github.com/clktmr/rdpcc/framebuffer"
	"github.com/clktmr/rdpcc/rcp/rdp"
	"github.com/clktmr/rdpcc/rcp/texture"
	"github.com/clktmr/rdpcc/rcp/video"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
	"golang.org/x/image/colornames"
	"golang.org/x/image/math/f32"
)

const (
	colorAddr = 0x0010_0000
	depthAddr = 0x0020_0000
)

var identity = f32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// shade passes the vertex color through the combiner.
var shade = rdp.CombinerState{Color1: 0x0f0f1f04, Alpha1: 0x07070704}

func quad(z float32, c f32.Vec4) VertexData {
	return VertexData{
		{Position: f32.Vec4{-1, -1, z, 1}, Color: c},
		{Position: f32.Vec4{1, -1, z, 1}, Color: c},
		{Position: f32.Vec4{1, 1, z, 1}, Color: c},
		{Position: f32.Vec4{-1, 1, z, 1}, Color: c},
	}
}

func frame(pass RenderPass) []Command {
	return []Command{
		DefineColorImage{colorAddr},
		DefineDepthImage{depthAddr},
		quad(0.5, f32.Vec4{1, 0, 0, 1}),
		IndexData{0, 1, 2, 0, 2, 3},
		MatrixData{identity},
		pass,
		Sync{},
	}
}

func queue(cmds ...Command) chan Command {
	q := make(chan Command, len(cmds))
	for _, cmd := range cmds {
		q <- cmd
	}
	return q
}

func newRenderer(opts Options) *Renderer {
	opts.Size = image.Pt(8, 8)
	return NewRenderer(opts)
}

func TestRenderPass(t *testing.T) {
	synced := 0
	r := newRenderer(Options{OnSync: func(frame int) { synced = frame }})
	pass := RenderPass{
		ColorImage: colorAddr,
		DepthImage: depthAddr,
		ClearColor: colornames.Black,
		ClearDepth: true,
		DrawList:   []Draw{{StartIndex: 0, NumIndices: 6, State: shade}},
	}
	if err := r.Run(context.Background(), queue(frame(pass)...)); err != nil {
		t.Fatal(err)
	}

	img, ok := r.ColorImage(colorAddr)
	if !ok {
		t.Fatal("color image not defined")
	}
	if got := img.At(4, 4); got != (color.NRGBA{0xff, 0, 0, 0xff}) {
		t.Fatalf("expected red, got %v", got)
	}
	depth, ok := r.DepthImage(depthAddr)
	if !ok {
		t.Fatal("depth image not defined")
	}
	if z := depth.At(4, 4); z < 0.49 || z > 0.51 {
		t.Fatalf("expected depth 0.5, got %v", z)
	}
	if r.Frames() != 1 || synced != 1 {
		t.Fatalf("expected one frame, got %d (synced %d)", r.Frames(), synced)
	}

	// a farther quad in the next frame is hidden by the depth buffer
	pass.ClearColor, pass.ClearDepth = nil, false
	cmds := frame(pass)
	cmds[2] = quad(0.8, f32.Vec4{0, 1, 0, 1})
	if err := r.Run(context.Background(), queue(cmds...)); err != nil {
		t.Fatal(err)
	}
	if got := img.At(4, 4); got != (color.NRGBA{0xff, 0, 0, 0xff}) {
		t.Fatalf("expected red, got %v", got)
	}
	if r.Frames() != 2 || synced != 2 {
		t.Fatalf("expected two frames, got %d (synced %d)", r.Frames(), synced)
	}
}

func TestRenderPassNoDepth(t *testing.T) {
	r := newRenderer(Options{ColorDepth: framebuffer.BPP16})
	cmds := frame(RenderPass{
		ColorImage: colorAddr,
		DepthImage: NoImage,
		DrawList:   []Draw{{NumIndices: 6, State: shade}},
	})
	if err := r.Run(context.Background(), queue(cmds...)); err != nil {
		t.Fatal(err)
	}
	img, _ := r.ColorImage(colorAddr)
	if img.Format() != texture.FormatRGBA16 {
		t.Fatalf("expected RGBA16 target, got %v", img.Format())
	}
	if got := img.At(0, 7); got != texture.ColorRGBA16(0xf801) {
		t.Fatalf("expected red, got %v", got)
	}
}

func TestMissingTarget(t *testing.T) {
	var buf bytes.Buffer
	debug.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { debug.SetLogger(nil) })

	r := newRenderer(Options{})
	cmds := frame(RenderPass{
		ColorImage: NoImage,
		DrawList:   []Draw{{NumIndices: 6, State: shade}},
	})
	if err := r.Run(context.Background(), queue(cmds...)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "render pass without a color target") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "created color render target") {
		t.Fatalf("expected info, got %q", buf.String())
	}
	img, _ := r.ColorImage(colorAddr)
	for i, b := range img.Image().(*image.NRGBA).Pix {
		if b != 0 {
			t.Fatalf("byte %d: render target was modified", i)
		}
	}
	if r.Frames() != 1 {
		t.Fatalf("expected one frame, got %d", r.Frames())
	}
}

type bogus struct{}

func (bogus) Name() string { return "bogus" }

func TestErrors(t *testing.T) {
	tests := map[string]struct {
		cmds []Command
		want error
	}{
		"unknown":    {[]Command{bogus{}}, ErrUnknownCommand},
		"nil":        {[]Command{nil}, ErrUnknownCommand},
		"closed":     {[]Command{Noop{}}, ErrQueueClosed},
		"indexRange": {frame(RenderPass{ColorImage: colorAddr, DrawList: []Draw{{StartIndex: 4, NumIndices: 6}}}), ErrIndexRange},
		"matrix":     {frame(RenderPass{ColorImage: colorAddr, DrawList: []Draw{{MatrixIndex: 1, NumIndices: 6}}}), ErrMatrixIndex},
		"drawCall":   {frame(RenderPass{ColorImage: colorAddr, DrawList: []Draw{{NumIndices: 5}}}), raster.ErrIndexCount},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			q := queue(tc.cmds...)
			close(q)
			err := newRenderer(Options{}).Run(context.Background(), q)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v\ncommands: %s", tc.want, err, spew.Sdump(tc.cmds))
			}
		})
	}
}

func TestRunStopsAtSync(t *testing.T) {
	q := queue(Noop{}, Viewport{0, 0, 4, 4}, Sync{}, Noop{})
	r := newRenderer(Options{})
	if err := r.Run(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if len(q) != 1 {
		t.Fatalf("expected one command left, got %d", len(q))
	}
	if r.viewport != (raster.Viewport{}) {
		t.Fatalf("viewport not reset by sync: %+v", r.viewport)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx, make(chan Command)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected %v, got %v", context.Canceled, err)
	}
}

func TestDisplay(t *testing.T) {
	r := newRenderer(Options{})
	if err := r.Execute(context.Background(), DefineColorImage{colorAddr}); err != nil {
		t.Fatal(err)
	}
	target, _ := r.ColorImage(colorAddr)

	var vi video.Interface
	for _, addr := range []uint32{colorAddr, colorAddr + scanlineOffset} {
		vi.Setup(addr, 320, 240, framebuffer.BPP16)
		img, err := r.Display(vi.Registers(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if img != target {
			t.Fatalf("$%08X: expected render target", addr)
		}
	}

	const rawAddr = 0x100
	rdram := make([]byte, rawAddr+320*240*2)
	rdram[rawAddr], rdram[rawAddr+1] = 0xf8, 0x00
	vi.Setup(rawAddr, 320, 240, framebuffer.BPP16)
	img, err := r.Display(vi.Registers(), rdram)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 320, 240) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if got := img.At(0, 0); got != texture.ColorRGBA16(0xf801) {
		t.Fatalf("expected opaque red, got %v", got)
	}

	tests := map[string]struct {
		vi   video.Registers
		want error
	}{
		"blank":  {video.Registers{}, video.ErrBlank},
		"width":  {video.Registers{Origin: rawAddr, Width: 512, Control: uint32(video.BPP16)}, video.ErrSize},
		"off":    {video.Registers{Origin: rawAddr, Width: 320}, video.ErrBlank},
		"short":  {video.Registers{Origin: rawAddr, Width: 640, Control: uint32(video.BPP32)}, framebuffer.ErrShortBuffer},
		"beyond": {video.Registers{Origin: 0x80_0000, Width: 320, Control: uint32(video.BPP16)}, framebuffer.ErrShortBuffer},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := r.Display(tc.vi, rdram); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestViews(t *testing.T) {
	r := newRenderer(Options{})
	for _, cmd := range []Command{
		DefineColorImage{0x0030_0000},
		DefineDepthImage{depthAddr},
		DefineColorImage{colorAddr},
		DefineColorImage{0x0030_0000},
	} {
		if err := r.Execute(context.Background(), cmd); err != nil {
			t.Fatal(err)
		}
	}
	if diff := deep.Equal(r.ColorImages(), []uint32{colorAddr, 0x0030_0000}); diff != nil {
		t.Fatal(diff)
	}
	if diff := deep.Equal(r.DepthImages(), []uint32{depthAddr}); diff != nil {
		t.Fatal(diff)
	}
	if r.NumViews() != 4 {
		t.Fatalf("expected 4 views, got %d", r.NumViews())
	}

	depth, _ := r.DepthImage(depthAddr)
	depth.Set(2, 3, 0)

	var vi video.Interface
	vi.Setup(colorAddr, 320, 240, framebuffer.BPP32)
	tests := map[int]string{
		0:  "display $00100000",
		1:  "color $00100000",
		2:  "color $00300000",
		3:  "depth $00200000",
		4:  "display $00100000",
		-1: "depth $00200000",
	}
	for n, want := range tests {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			img, desc, err := r.View(n, vi.Registers(), nil)
			if err != nil {
				t.Fatal(err)
			}
			if desc != want {
				t.Fatalf("expected %q, got %q", want, desc)
			}
			if img.Bounds() != image.Rect(0, 0, 8, 8) {
				t.Fatalf("unexpected bounds %v", img.Bounds())
			}
			if strings.HasPrefix(desc, "depth") {
				if got := img.At(2, 3); got != (color.Gray16{0}) {
					t.Fatalf("expected black, got %v", got)
				}
				if got := img.At(0, 0); got != (color.Gray16{0xffff}) {
					t.Fatalf("expected white, got %v", got)
				}
			}
		})
	}
}
