package color

import (
	"errors"
	"image"
	stdcolor "image/color"
	"math"
	"slices"
	"testing"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

func solid(w, h int, c stdcolor.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func halves(w, h int, left, right stdcolor.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if x < w/2 {
				img.SetRGBA(x, y, left)
			} else {
				img.SetRGBA(x, y, right)
			}
		}
	}
	return img
}

func TestDefaultDim(t *testing.T) {
	if got := DefaultConfig().Dim(); got != 548 {
		t.Fatalf("Dim() = %d, want 548", got)
	}
}

func TestExtract_SolidColor(t *testing.T) {
	e := NewExtractor(Config{})
	f, err := e.Extract(solid(40, 30, stdcolor.RGBA{R: 250, G: 5, B: 5, A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Vector) != e.Dim() {
		t.Fatalf("len(Vector) = %d, want %d", len(f.Vector), e.Dim())
	}
	if f.Names[0] != "red" {
		t.Errorf("Names[0] = %s, want red", f.Names[0])
	}
	if !slices.Equal(f.Palette(), []string{"red"}) {
		t.Errorf("Palette() = %v", f.Palette())
	}

	var sum float64
	for _, v := range f.Vector[36:] {
		sum += float64(v)
	}
	if math.Abs(sum-1) > 1e-4 {
		t.Errorf("histogram sums to %v, want 1", sum)
	}
}

func TestExtract_TwoColors(t *testing.T) {
	e := NewExtractor(Config{Colors: 2})
	f, err := e.Extract(halves(60, 60,
		stdcolor.RGBA{R: 10, G: 10, B: 240, A: 255},
		stdcolor.RGBA{R: 245, G: 245, B: 220, A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	got := f.Palette()
	slices.Sort(got)
	if !slices.Equal(got, []string{"beige", "blue"}) {
		t.Errorf("Palette() = %v, want beige and blue", got)
	}
}

func TestExtract_DarkImageFallsBackToAllPixels(t *testing.T) {
	e := NewExtractor(Config{})
	f, err := e.Extract(solid(10, 10, stdcolor.RGBA{A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	if f.Names[0] != "black" {
		t.Errorf("Names[0] = %s, want black", f.Names[0])
	}
}

func TestExtract_Deterministic(t *testing.T) {
	img := halves(80, 50,
		stdcolor.RGBA{R: 120, G: 60, B: 20, A: 255},
		stdcolor.RGBA{R: 30, G: 160, B: 90, A: 255})
	a, err := NewExtractor(Config{}).Extract(img)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewExtractor(Config{}).Extract(img)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.Vector, b.Vector) {
		t.Error("same image and seed produced different vectors")
	}
}

func TestExtract_Empty(t *testing.T) {
	_, err := NewExtractor(Config{}).Extract(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("err = %v, want ErrInvalidImage", err)
	}
}

func TestToHSV(t *testing.T) {
	h := toHSV(RGB{0, 0, 255})
	if math.Abs(h[0]-2.0/3) > 1e-9 || h[1] != 1 || h[2] != 1 {
		t.Errorf("toHSV(blue) = %v", h)
	}
	if g := toHSV(RGB{128, 128, 128}); g[0] != 0 || g[1] != 0 {
		t.Errorf("toHSV(gray) = %v", g)
	}
}

func TestNearest(t *testing.T) {
	if Nearest(RGB{10, 10, 200}) != "blue" {
		t.Error("dark blue should name blue")
	}
	if Nearest(RGB{130, 125, 128}) != "gray" {
		t.Error("mid gray should name gray")
	}
}
