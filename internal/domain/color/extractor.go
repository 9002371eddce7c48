// Package color turns a product photo into a fixed-length color descriptor and a short palette.
package color

import (
	"cmp"
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"slices"

	"golang.org/x/image/draw"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

// Config tunes extraction. Zero fields take the defaults.
type Config struct {
	Colors     int   // dominant colors (k)
	Size       int   // square resize edge in pixels
	Bins       int   // histogram bins per channel
	Iterations int   // k-means iterations
	Seed       int64 // k-means++ seed
}

// DefaultConfig yields the 548-dimensional descriptor.
func DefaultConfig() Config {
	return Config{Colors: 5, Size: 150, Bins: 8, Iterations: 20, Seed: 42}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Colors <= 0 {
		c.Colors = d.Colors
	}
	if c.Size <= 0 {
		c.Size = d.Size
	}
	if c.Bins <= 0 {
		c.Bins = d.Bins
	}
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	return c
}

// Dim is the descriptor length: k RGB + k HSV + mean RGB + mean HSV + bins^3 histogram.
func (c Config) Dim() int {
	c = c.withDefaults()
	return c.Colors*6 + 6 + c.Bins*c.Bins*c.Bins
}

// darkThreshold drops near-black pixels (likely background) from clustering.
const darkThreshold = 30

// RGB is an 8-bit color.
type RGB [3]uint8

// HSV components are in [0,1].
type HSV [3]float64

// Features is the extraction result.
type Features struct {
	Dominant    []RGB
	DominantHSV []HSV
	Names       []string
	Vector      []float32
}

// Palette returns distinct color names in dominance order.
func (f Features) Palette() []string {
	var out []string
	for _, n := range f.Names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// Extractor computes color features deterministically for a given config.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an Extractor.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg.withDefaults()}
}

// Dim returns the descriptor length.
func (e *Extractor) Dim() int { return e.cfg.Dim() }

// Extract computes the descriptor for img.
func (e *Extractor) Extract(img image.Image) (Features, error) {
	if img == nil || img.Bounds().Empty() {
		return Features{}, fmt.Errorf("empty image: %w", domain.ErrInvalidImage)
	}

	small := image.NewRGBA(image.Rect(0, 0, e.cfg.Size, e.cfg.Size))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, img.Bounds(), draw.Src, nil)

	all := make([][3]float64, 0, e.cfg.Size*e.cfg.Size)
	bright := make([][3]float64, 0, e.cfg.Size*e.cfg.Size)
	for i := 0; i+3 < len(small.Pix); i += 4 {
		p := [3]float64{float64(small.Pix[i]), float64(small.Pix[i+1]), float64(small.Pix[i+2])}
		all = append(all, p)
		if int(small.Pix[i])+int(small.Pix[i+1])+int(small.Pix[i+2]) > darkThreshold {
			bright = append(bright, p)
		}
	}
	pixels := bright
	if len(pixels) == 0 {
		pixels = all
	}

	centers := kmeans(pixels, e.cfg.Colors, e.cfg.Iterations, e.cfg.Seed)

	f := Features{
		Dominant:    make([]RGB, len(centers)),
		DominantHSV: make([]HSV, len(centers)),
		Names:       make([]string, len(centers)),
	}
	vec := make([]float32, 0, e.Dim())
	var avgRGB [3]float64
	var avgHSV HSV
	for i, c := range centers {
		rgb := RGB{clamp8(c[0]), clamp8(c[1]), clamp8(c[2])}
		hsv := toHSV(rgb)
		f.Dominant[i], f.DominantHSV[i], f.Names[i] = rgb, hsv, Nearest(rgb)
		for j := range 3 {
			avgRGB[j] += float64(rgb[j]) / float64(len(centers))
			avgHSV[j] += hsv[j] / float64(len(centers))
		}
	}
	for _, rgb := range f.Dominant {
		vec = append(vec, float32(rgb[0])/255, float32(rgb[1])/255, float32(rgb[2])/255)
	}
	for _, hsv := range f.DominantHSV {
		vec = append(vec, float32(hsv[0]), float32(hsv[1]), float32(hsv[2]))
	}
	vec = append(vec, float32(avgRGB[0]/255), float32(avgRGB[1]/255), float32(avgRGB[2]/255))
	vec = append(vec, float32(avgHSV[0]), float32(avgHSV[1]), float32(avgHSV[2]))
	vec = append(vec, histogram(all, e.cfg.Bins)...)
	f.Vector = vec
	return f, nil
}

// histogram is a normalized joint RGB histogram over every pixel.
func histogram(pixels [][3]float64, bins int) []float32 {
	h := make([]float32, bins*bins*bins)
	width := 256.0 / float64(bins)
	for _, p := range pixels {
		r := int(p[0] / width)
		g := int(p[1] / width)
		b := int(p[2] / width)
		h[(r*bins+g)*bins+b]++
	}
	total := float32(len(pixels))
	if total == 0 {
		return h
	}
	for i := range h {
		h[i] /= total
	}
	return h
}

// kmeans clusters pixels with k-means++ seeding and returns centers ordered by cluster size.
// Fewer than k pixels still yields k centers (duplicates allowed).
func kmeans(pixels [][3]float64, k, iterations int, seed int64) [][3]float64 {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	centers := make([][3]float64, 0, k)
	centers = append(centers, pixels[rng.IntN(len(pixels))])

	dist := make([]float64, len(pixels))
	for len(centers) < k {
		var total float64
		for i, p := range pixels {
			d := math.Inf(1)
			for _, c := range centers {
				d = math.Min(d, sqDist(p, c))
			}
			dist[i] = d
			total += d
		}
		if total == 0 {
			centers = append(centers, centers[0])
			continue
		}
		target := rng.Float64() * total
		idx := len(pixels) - 1
		for i, d := range dist {
			target -= d
			if target <= 0 {
				idx = i
				break
			}
		}
		centers = append(centers, pixels[idx])
	}

	assign := make([]int, len(pixels))
	counts := make([]int, k)
	for range iterations {
		changed := false
		for i, p := range pixels {
			best, bestD := 0, math.Inf(1)
			for j, c := range centers {
				if d := sqDist(p, c); d < bestD {
					best, bestD = j, d
				}
			}
			if assign[i] != best {
				changed = true
			}
			assign[i] = best
		}
		sums := make([][3]float64, k)
		clear(counts)
		for i, p := range pixels {
			j := assign[i]
			counts[j]++
			for c := range 3 {
				sums[j][c] += p[c]
			}
		}
		for j := range centers {
			if counts[j] == 0 {
				continue
			}
			for c := range 3 {
				centers[j][c] = sums[j][c] / float64(counts[j])
			}
		}
		if !changed {
			break
		}
	}

	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(counts[b], counts[a]) })
	out := make([][3]float64, k)
	for i, j := range order {
		out[i] = centers[j]
	}
	return out
}

func sqDist(a, b [3]float64) float64 {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dr*dr + dg*dg + db*db
}

func clamp8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

// toHSV converts with hue in [0,1).
func toHSV(c RGB) HSV {
	r, g, b := float64(c[0])/255, float64(c[1])/255, float64(c[2])/255
	maxc := math.Max(r, math.Max(g, b))
	minc := math.Min(r, math.Min(g, b))
	v := maxc
	if maxc == minc {
		return HSV{0, 0, v}
	}
	s := (maxc - minc) / maxc
	rc := (maxc - r) / (maxc - minc)
	gc := (maxc - g) / (maxc - minc)
	bc := (maxc - b) / (maxc - minc)
	var h float64
	switch maxc {
	case r:
		h = bc - gc
	case g:
		h = 2 + rc - bc
	default:
		h = 4 + gc - rc
	}
	h = math.Mod(h/6, 1)
	if h < 0 {
		h++
	}
	return HSV{h, s, v}
}
