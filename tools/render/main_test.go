package render

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/clktmr/rdpcc/framebuffer"
	"github.com/clktmr/rdpcc/rcp/rdp"
	"github.com/clktmr/rdpcc/rcp/texture"
	"github.com/go-test/deep"
	"golang.org/x/image/colornames"
	"golang.org/x/image/math/f32"
)

func TestParseCombine(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    rdp.CombinerState
		wantErr bool
	}{
		"preset": {in: "shade", want: presets["shade"].State(nil, nil)},
		"words": {in: "0x0f0f1f04, 0x07070704,0,0", want: rdp.CombinerState{
			Color1: 0x0f0f1f04, Alpha1: 0x07070704,
		}},
		"count":   {in: "0x0f0f1f04", wantErr: true},
		"garbage": {in: "a,b,c,d", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseCombine(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := deep.Equal(got, tc.want); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := map[string]struct {
		in   string
		want color.Color
	}{
		"name":    {"Red", colornames.Red},
		"hex":     {"#ff8000", color.NRGBA{0xff, 0x80, 0x00, 0xff}},
		"hexA":    {"#ff800040", color.NRGBA{0xff, 0x80, 0x00, 0x40}},
		"invalid": {"#ff80", nil},
		"unknown": {"notacolor", nil},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseColor(tc.in)
			if tc.want == nil {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestParseWrap(t *testing.T) {
	for _, m := range []texture.WrapMode{texture.Wrap, texture.Clamp, texture.Mirror} {
		got, err := parseWrap(m.String())
		if err != nil || got != m {
			t.Errorf("%v: got %v, %v", m, got, err)
		}
	}
	if _, err := parseWrap("repeat"); err == nil {
		t.Error("expected error")
	}
}

func TestCamera(t *testing.T) {
	m := camera(0)
	var clip f32.Vec4
	p := f32.Vec4{1, 1, 0, 1}
	for r := range 4 {
		for c := range 4 {
			clip[r] += m[4*r+c] * p[c]
		}
	}
	ndc := f32.Vec2{clip[0] / clip[3], clip[1] / clip[3]}
	if diff := deep.Equal(ndc, f32.Vec2{0.75, 1}); diff != nil {
		t.Error(diff)
	}
	if z := clip[2] / clip[3]; z <= 0 || z >= 1 {
		t.Errorf("depth %v outside of [0, 1]", z)
	}
}

func TestDrawLabel(t *testing.T) {
	fb := framebuffer.NewFramebuffer(image.Rect(0, 0, 64, 32), framebuffer.BPP32)
	fb.Clear(colornames.Red)
	drawLabel(fb, "AB")

	var white, black int
	for y := 2; y < 15; y++ {
		for x := 2; x < 16; x++ {
			switch fb.At(x, y) {
			case color.NRGBA{0xff, 0xff, 0xff, 0xff}:
				white++
			case color.NRGBA{0, 0, 0, 0xff}:
				black++
			}
		}
	}
	if white == 0 || black == 0 {
		t.Errorf("expected white text on black, got %d white and %d black pixels", white, black)
	}
	if got := fb.At(40, 20); got != (color.NRGBA{0xff, 0, 0, 0xff}) {
		t.Errorf("pixel outside of label changed to %v", got)
	}
}

func TestWriteCommands(t *testing.T) {
	name := filepath.Join(t.TempDir(), "combiner.rdp")
	state := presets["fade"].State(colornames.Orange, colornames.Navy)
	if err := writeCommands(name, state, rdp.CycleTypeTwo); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	cmds, err := rdp.ParseCommands(b)
	if err != nil {
		t.Fatal(err)
	}
	got, modes := rdp.NewDisplayList(cmds...).State()
	if diff := deep.Equal(got, state); diff != nil {
		t.Error(diff)
	}
	if !modes.Options().TwoCycle {
		t.Error("expected two cycle mode")
	}

	state.Color1 = 0xff000000
	if err := writeCommands(name, state, rdp.CycleTypeOne); err == nil {
		t.Error("expected error for truncated selector code")
	}
}
