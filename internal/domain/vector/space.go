// Package vector defines the named vector spaces of a product and the record written per item.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

// Space names one independently searchable vector space.
type Space string

const (
	// Text is the semantic space of the weighted product description.
	Text Space = "text"
	// Image is the visual space of the primary product photo.
	Image Space = "image"
	// Graph is the relational "co-styled with" space.
	Graph Space = "graph"
	// Color is the dominant-color palette descriptor.
	Color Space = "color"
)

// All lists every space in index order.
var All = []Space{Text, Image, Graph, Color}

// ParseSpace validates a space name.
func ParseSpace(s string) (Space, error) {
	for _, sp := range All {
		if string(sp) == s {
			return sp, nil
		}
	}
	return "", fmt.Errorf("unknown vector space %q", s)
}

// Field is the hash field holding the space's vector.
func (s Space) Field() string { return "vec_" + string(s) }

// Dims holds the per-deployment dimensionality of every space.
type Dims map[Space]int

// DefaultDims mirrors a 512-d CLIP encoder, 256-d graph embedding and 548-d color descriptor.
func DefaultDims() Dims {
	return Dims{Text: 512, Image: 512, Graph: 256, Color: 548}
}

// Validate checks that every space has a positive dimension.
func (d Dims) Validate() error {
	for _, sp := range All {
		if d[sp] <= 0 {
			return fmt.Errorf("dimension for space %q must be positive", sp)
		}
	}
	return nil
}

// Record maps every space to a vector of the configured dimension.
// Missing vectors are explicit zero vectors so index writes stay uniform.
type Record struct {
	vectors map[Space][]float32
}

// NewRecord builds a Record, zero-filling absent spaces and rejecting wrong lengths.
func NewRecord(dims Dims, vectors map[Space][]float32) (Record, error) {
	out := make(map[Space][]float32, len(All))
	for _, sp := range All {
		dim := dims[sp]
		v, ok := vectors[sp]
		if !ok || len(v) == 0 {
			out[sp] = make([]float32, dim)
			continue
		}
		if len(v) != dim {
			return Record{}, fmt.Errorf("space %s: got %d, want %d: %w", sp, len(v), dim, domain.ErrDimensionMismatch)
		}
		out[sp] = v
	}
	return Record{vectors: out}, nil
}

// Vector returns the vector for a space.
func (r Record) Vector(s Space) []float32 { return r.vectors[s] }

// IsZero reports whether the space holds the zero placeholder.
func (r Record) IsZero(s Space) bool { return IsZero(r.vectors[s]) }

// IsZero reports whether every component is zero (or the vector is empty).
func IsZero(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// Cosine returns the cosine similarity of a and b, 0 when either is zero or lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Normalize scales v to unit length in place. Zero vectors are left unchanged.
func Normalize(v []float32) {
	var n float64
	for _, f := range v {
		n += float64(f) * float64(f)
	}
	if n == 0 {
		return
	}
	inv := 1 / math.Sqrt(n)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

// Encode serializes v as little-endian float32 bytes (the FT VECTOR blob format).
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode parses little-endian float32 bytes.
func Decode(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid vector blob: len=%d (not multiple of 4)", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
