package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/go-test/deep"
	"golang.org/x/image/colornames"
	"golang.org/x/image/math/f32"
)

func fill(tex Texture) Texture {
	b := tex.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			tex.Set(x, y, color.NRGBA{uint8(x * 40), uint8(y * 60), uint8(x + y), 0xff})
		}
	}
	return tex
}

func TestStoreLoad(t *testing.T) {
	r := image.Rect(0, 0, 5, 3)
	palette := color.Palette{colornames.Red, colornames.Lime, colornames.Blue, color.Transparent}
	tests := map[string]Texture{
		"RGBA32":  NewRGBA32(r),
		"NRGBA32": NewNRGBA32(r),
		"RGBA16":  NewRGBA16(r),
		"I8":      NewI8(r),
		"CI8":     NewCI8(r, palette),
		"empty":   NewRGBA16(image.Rectangle{}),
	}
	for name, tex := range tests {
		t.Run(name, func(t *testing.T) {
			fill(tex)
			var buf bytes.Buffer
			if err := Store(&buf, tex); err != nil {
				t.Fatal(err)
			}
			got, err := Load(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if got.Format() != tex.Format() || got.Premult() != tex.Premult() {
				t.Fatalf("expected %v/%v, got %v/%v", tex.Format(), tex.Premult(), got.Format(), got.Premult())
			}
			if diff := deep.Equal(got.Bounds(), tex.Bounds()); diff != nil {
				t.Fatal(diff)
			}
			gotPix, _ := pixels(got)
			wantPix, _ := pixels(tex)
			if !bytes.Equal(gotPix, wantPix) {
				t.Fatalf("pixels differ:\n%x\n%x", gotPix, wantPix)
			}
			if p, ok := tex.Image().(*image.Paletted); ok {
				if diff := deep.Equal(got.Image().(*image.Paletted).Palette, p.Palette); diff != nil {
					t.Fatal(diff)
				}
			}
		})
	}
}

func TestStoreSubImage(t *testing.T) {
	tex := NewRGBA32(image.Rect(0, 0, 4, 4)).SubImage(image.Rect(1, 1, 3, 3))
	if err := Store(&bytes.Buffer{}, tex); !errors.Is(err, ErrSubImage) {
		t.Fatalf("expected %v, got %v", ErrSubImage, err)
	}

	// full rows are contiguous and can be stored
	rows := NewRGBA32(image.Rect(0, 0, 4, 4)).SubImage(image.Rect(0, 1, 4, 3))
	if err := Store(&bytes.Buffer{}, rows); err != nil {
		t.Fatal(err)
	}
}

func TestLoadCorrupt(t *testing.T) {
	var buf bytes.Buffer
	if err := Store(&buf, fill(NewRGBA16(image.Rect(0, 0, 8, 8)))); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bytes.NewReader(buf.Bytes()[:buf.Len()/2])); err == nil {
		t.Fatal("expected error on truncated input")
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range []Format{FormatRGBA32, FormatRGBA16, FormatI8, FormatCI8} {
		got, err := ParseFormat(f.String())
		if err != nil || got != f {
			t.Errorf("expected %v, got %v (%v)", f, got, err)
		}
	}
	if _, err := ParseFormat("YUV16"); !errors.Is(err, ErrFormat) {
		t.Errorf("expected %v, got %v", ErrFormat, err)
	}
}

func TestRGBA16Model(t *testing.T) {
	tests := map[string]struct {
		in   color.Color
		want ColorRGBA16
	}{
		"white":       {color.White, 0xffff},
		"transparent": {color.Transparent, 0x0000},
		"red":         {color.NRGBA{0xff, 0, 0, 0xff}, 0xf801},
		"blue":        {color.NRGBA{0, 0, 0xff, 0xff}, 0x003f},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := RGBA16Model.Convert(tc.in).(ColorRGBA16)
			if got != tc.want {
				t.Fatalf("expected %#04x, got %#04x", tc.want, got)
			}
			r, g, b, a := got.RGBA()
			wr, wg, wb, wa := tc.in.RGBA()
			if r != wr || g != wg || b != wb || a != wa {
				t.Fatalf("expected %v, got %v", []uint32{wr, wg, wb, wa}, []uint32{r, g, b, a})
			}
		})
	}
}

func approxEqual(a, b f32.Vec4) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-6 {
			return false
		}
	}
	return true
}

func TestWrapMode(t *testing.T) {
	tests := []struct {
		i                   int
		wrap, clamp, mirror int
	}{
		{0, 0, 0, 0},
		{3, 3, 3, 3},
		{-1, 3, 0, 0},
		{5, 1, 3, 2},
		{9, 1, 3, 1},
		{-6, 2, 0, 2},
	}
	for _, tc := range tests {
		got := []int{Wrap.index(tc.i, 4), Clamp.index(tc.i, 4), Mirror.index(tc.i, 4)}
		if diff := deep.Equal(got, []int{tc.wrap, tc.clamp, tc.mirror}); diff != nil {
			t.Errorf("index %d: %v", tc.i, diff)
		}
	}
}

func checker() *NRGBA32 {
	tex := NewNRGBA32(image.Rect(0, 0, 2, 2))
	tex.Set(0, 0, color.NRGBA{0xff, 0, 0, 0xff})
	tex.Set(1, 0, color.NRGBA{0, 0xff, 0, 0xff})
	tex.Set(0, 1, color.NRGBA{0, 0, 0xff, 0xff})
	tex.Set(1, 1, color.NRGBA{0xff, 0xff, 0xff, 0xff})
	return tex
}

func TestSampler(t *testing.T) {
	red, green := f32.Vec4{1, 0, 0, 1}, f32.Vec4{0, 1, 0, 1}
	tests := map[string]struct {
		sampler Sampler
		uv      f32.Vec2
		linear  bool
		want    f32.Vec4
	}{
		"nearest":        {Sampler{}, f32.Vec2{0.25, 0.25}, false, red},
		"nearestRight":   {Sampler{}, f32.Vec2{0.75, 0.25}, false, green},
		"nearestWrap":    {Sampler{}, f32.Vec2{1.25, 0.25}, false, red},
		"nearestClamp":   {Sampler{WrapS: Clamp}, f32.Vec2{1.25, 0.25}, false, green},
		"nearestMirror":  {Sampler{WrapS: Mirror}, f32.Vec2{-0.25, 0.25}, false, red},
		"linearCenter":   {Sampler{}, f32.Vec2{0.5, 0.5}, true, f32.Vec4{0.5, 0.5, 0.5, 1}},
		"linearTexel":    {Sampler{}, f32.Vec2{0.25, 0.25}, true, red},
		"linearClamp":    {Sampler{WrapS: Clamp, WrapT: Clamp}, f32.Vec2{0, 0}, true, red},
		"linearHalfEdge": {Sampler{WrapT: Clamp}, f32.Vec2{0.5, 0.25}, true, f32.Vec4{0.5, 0.5, 0, 1}},
	}
	tex := checker()
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var got f32.Vec4
			if tc.linear {
				got = tc.sampler.Linear(tex, tc.uv)
			} else {
				got = tc.sampler.Nearest(tex, tc.uv)
			}
			if !approxEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestSamplerFormats(t *testing.T) {
	r := image.Rect(0, 0, 1, 1)
	i8 := NewI8(r)
	i8.Set(0, 0, color.Alpha{0x80})
	ci8 := NewCI8(r, color.Palette{color.NRGBA{0xff, 0, 0xff, 0xff}})
	rgba16 := NewRGBA16(r)
	rgba16.Set(0, 0, color.NRGBA{0, 0xff, 0, 0xff})

	intensity := float32(0x80) / 0xff
	tests := map[string]struct {
		tex  Texture
		want f32.Vec4
	}{
		"I8":     {i8, f32.Vec4{intensity, intensity, intensity, intensity}},
		"CI8":    {ci8, f32.Vec4{1, 0, 1, 1}},
		"RGBA16": {rgba16, f32.Vec4{0, 1, 0, 1}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			texels := Sampler{}.Texels(tc.tex, f32.Vec2{0.5, 0.5})
			if !approxEqual(texels.Nearest, tc.want) || !approxEqual(texels.Linear, tc.want) {
				t.Fatalf("expected %v, got %+v", tc.want, texels)
			}
		})
	}
}

func TestSamplerEmpty(t *testing.T) {
	tex := NewRGBA32(image.Rectangle{})
	if got := (Sampler{}).Nearest(tex, f32.Vec2{0.5, 0.5}); got != (f32.Vec4{}) {
		t.Fatalf("expected zero, got %v", got)
	}
}
