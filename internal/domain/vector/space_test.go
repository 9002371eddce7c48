package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

func smallDims() Dims {
	return Dims{Text: 3, Image: 3, Graph: 2, Color: 4}
}

func TestNewRecord_ZeroFillsMissingSpaces(t *testing.T) {
	rec, err := NewRecord(smallDims(), map[Space][]float32{
		Text: {0.1, 0.2, 0.3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, sp := range All {
		if got, want := len(rec.Vector(sp)), smallDims()[sp]; got != want {
			t.Errorf("space %s: len %d, want %d", sp, got, want)
		}
	}
	if rec.IsZero(Text) {
		t.Error("text must not be zero")
	}
	if !rec.IsZero(Graph) || !rec.IsZero(Image) || !rec.IsZero(Color) {
		t.Error("missing spaces must be zero vectors")
	}
}

func TestNewRecord_DimensionMismatch(t *testing.T) {
	_, err := NewRecord(smallDims(), map[Space][]float32{Graph: {1, 2, 3}})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestDims_Validate(t *testing.T) {
	if err := DefaultDims().Validate(); err != nil {
		t.Fatalf("default dims invalid: %v", err)
	}
	d := DefaultDims()
	d[Color] = 0
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}

func TestParseSpace(t *testing.T) {
	sp, err := ParseSpace("graph")
	if err != nil || sp != Graph {
		t.Fatalf("got %q, %v", sp, err)
	}
	if _, err := ParseSpace("audio"); err == nil {
		t.Fatal("expected error")
	}
	if Graph.Field() != "vec_graph" {
		t.Errorf("unexpected field %q", Graph.Field())
	}
}

func TestCosine(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical: got %f", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal: got %f", got)
	}
	if got := Cosine([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("zero vector: got %f", got)
	}
	if got := Cosine([]float32{1}, []float32{1, 1}); got != 0 {
		t.Errorf("length mismatch: got %f", got)
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("unexpected normalized vector %v", v)
	}
	z := []float32{0, 0}
	Normalize(z)
	if !IsZero(z) {
		t.Error("zero vector must stay zero")
	}
}

func TestEncodeDecode(t *testing.T) {
	in := []float32{0.5, -1.25, 3}
	out, err := Decode(Encode(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("index %d: got %f, want %f", i, out[i], in[i])
		}
	}
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated blob")
	}
}
