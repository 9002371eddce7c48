// Package preference turns a free-text query and its embedding into structured constraints.
package preference

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/domain/preference"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// Config holds the acceptance thresholds.
type Config struct {
	// Floor is the similarity a material, style or comfort prompt must exceed.
	Floor float64
	// VariantMargin is how far a material variant must beat its base to replace it.
	VariantMargin float64
}

// DefaultConfig returns floor 0.3 and margin 0.1.
func DefaultConfig() Config {
	return Config{Floor: 0.3, VariantMargin: 0.1}
}

type anchor struct {
	name string
	base string
	vec  []float32
}

// Extractor resolves constraints against canonical attribute embeddings computed once at startup.
// It is safe for concurrent use after construction.
type Extractor struct {
	cfg       Config
	materials []anchor
	variants  []anchor
	styles    []anchor
	comfort   anchor
}

// New embeds every vocabulary prompt. Any embedding failure aborts startup.
func New(ctx context.Context, emb Embedder, cfg Config, logger *zap.Logger) (*Extractor, error) {
	embedAll := func(prompts []preference.Prompt) ([]anchor, error) {
		out := make([]anchor, 0, len(prompts))
		for _, p := range prompts {
			res, err := emb.Embed(ctx, p.Text)
			if err != nil {
				return nil, fmt.Errorf("embed prompt %q: %w", p.Name, err)
			}
			out = append(out, anchor{name: p.Name, vec: res.Embedding})
		}
		return out, nil
	}

	x := &Extractor{cfg: cfg}
	var err error
	if x.materials, err = embedAll(preference.MaterialPrompts); err != nil {
		return nil, err
	}
	if x.styles, err = embedAll(preference.StylePrompts); err != nil {
		return nil, err
	}

	variantPrompts := make([]preference.Prompt, len(preference.MaterialVariants))
	for i, v := range preference.MaterialVariants {
		variantPrompts[i] = v.Prompt
	}
	if x.variants, err = embedAll(variantPrompts); err != nil {
		return nil, err
	}
	for i, v := range preference.MaterialVariants {
		x.variants[i].base = v.Base
	}

	comfort, err := embedAll([]preference.Prompt{preference.ComfortPrompt})
	if err != nil {
		return nil, err
	}
	x.comfort = comfort[0]

	logger.Info("Preference anchors ready",
		zap.Int("materials", len(x.materials)),
		zap.Int("variants", len(x.variants)),
		zap.Int("styles", len(x.styles)),
	)
	return x, nil
}

// Extract derives constraints deterministically. Absent signals stay nil or empty.
func (x *Extractor) Extract(text string, queryVec []float32) preference.Constraints {
	c := preference.Constraints{
		Budget:     preference.ParseBudget(text),
		Colors:     preference.ExtractColors(text),
		Sizes:      preference.ExtractSizes(text),
		Features:   preference.ExtractFeatures(text),
		Confidence: map[string]float64{},
	}

	if len(queryVec) > 0 {
		x.resolveMaterial(&c, queryVec)
		if name, sim := best(x.styles, queryVec); sim > x.cfg.Floor {
			c.Style = name
			c.Confidence[preference.AttrStyle] = sim
		}
		if sim := vector.Cosine(queryVec, x.comfort.vec); sim > x.cfg.Floor {
			c.Comfort = true
			c.Confidence[preference.AttrComfort] = sim
		}
	}

	if len(c.Confidence) == 0 {
		c.Confidence = nil
	}
	return c
}

func (x *Extractor) resolveMaterial(c *preference.Constraints, q []float32) {
	name, sim := best(x.materials, q)
	if sim <= x.cfg.Floor {
		return
	}
	c.Material = name
	c.Confidence[preference.AttrMaterial] = sim

	var family []anchor
	for _, v := range x.variants {
		if v.base == name {
			family = append(family, v)
		}
	}
	vName, vSim := best(family, q)
	if vName != "" && vSim > sim+x.cfg.VariantMargin {
		c.Material = vName
		c.BaseMaterial = name
		c.Confidence[preference.AttrMaterial] = vSim
	}
}

// best returns the highest-scoring anchor; ties keep vocabulary order.
func best(anchors []anchor, q []float32) (string, float64) {
	name, top := "", -2.0
	for _, a := range anchors {
		if s := vector.Cosine(q, a.vec); s > top {
			name, top = a.name, s
		}
	}
	return name, top
}
