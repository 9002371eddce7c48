package preference

// Tradeoff is what a substitute material gives up and gains relative to the requested one.
type Tradeoff struct {
	Loses []string
	Gains []string
}

// MaterialFamily groups a base material with its variants and acceptable alternatives.
type MaterialFamily struct {
	Variants     []string
	Alternatives []string
	Tradeoffs    map[string]Tradeoff
}

// StyleFamily groups a style with related variants and styles that contradict it.
type StyleFamily struct {
	Variants  []string
	Opposites []string
}

// MaterialHierarchy is keyed by base material.
var MaterialHierarchy = map[string]MaterialFamily{
	"leather": {
		Variants:     []string{"genuine leather", "real leather", "full grain"},
		Alternatives: []string{"pu leather", "faux leather", "bonded leather", "vegan leather"},
		Tradeoffs: map[string]Tradeoff{
			"pu leather":   {Loses: []string{"not genuine leather"}, Gains: []string{"more affordable", "easier to clean", "cruelty-free"}},
			"faux leather": {Loses: []string{"not genuine leather"}, Gains: []string{"more affordable", "cruelty-free"}},
			"fabric":       {Loses: []string{"not leather"}, Gains: []string{"softer texture", "breathable"}},
			"velvet":       {Loses: []string{"not leather"}, Gains: []string{"plush feel", "softer"}},
		},
	},
	"velvet": {
		Variants:     []string{"crushed velvet", "plush velvet"},
		Alternatives: []string{"fabric", "corduroy", "chenille"},
		Tradeoffs: map[string]Tradeoff{
			"fabric": {Loses: []string{"not velvet texture"}, Gains: []string{"more durable", "easier to clean"}},
		},
	},
	"fabric": {
		Variants:     []string{"cotton", "linen", "polyester", "blend"},
		Alternatives: []string{"velvet", "leather", "microfiber"},
	},
	"wood": {
		Variants:     []string{"solid wood", "hardwood", "softwood", "oak", "walnut", "pine"},
		Alternatives: []string{"metal", "glass", "particle board", "mdf"},
		Tradeoffs: map[string]Tradeoff{
			"metal": {Loses: []string{"not wood"}, Gains: []string{"more durable", "modern appearance"}},
		},
	},
	"metal": {
		Variants:     []string{"steel", "iron", "aluminum", "brass", "chrome"},
		Alternatives: []string{"wood", "glass", "plastic"},
	},
}

// StyleHierarchy is keyed by canonical style.
var StyleHierarchy = map[string]StyleFamily{
	"modern": {
		Variants:  []string{"contemporary", "mid-century modern", "minimalist", "sleek"},
		Opposites: []string{"traditional", "vintage", "rustic", "ornate"},
	},
	"traditional": {
		Variants:  []string{"classic", "vintage", "antique-style"},
		Opposites: []string{"modern", "minimalist", "sleek"},
	},
	"industrial": {
		Variants: []string{"urban", "loft-style"},
	},
	"minimalist": {
		Variants: []string{"simple", "clean lines"},
	},
	"scandinavian": {
		Variants: []string{"nordic", "danish modern"},
	},
}

// ComfortIndicators are product words that satisfy a comfort request.
var ComfortIndicators = []string{
	"plush", "cushioned", "padded", "soft", "comfy", "comfortable",
	"cozy", "memory foam", "upholstered", "thick cushion",
}

// PremiumSignals are unrequested quality words that earn a small bonus.
var PremiumSignals = []string{
	"genuine leather", "full grain", "solid wood", "hardwood", "memory foam",
	"handcrafted", "kiln-dried",
}

// MaterialPriceFloor is the typical entry price for a material; a budget below it is unrealistic.
var MaterialPriceFloor = map[string]float64{
	"leather":         1000,
	"genuine leather": 1200,
	"velvet":          400,
	"fabric":          200,
	"wood":            300,
}

// ShadesOf returns the shade words for a canonical color, or nil.
func ShadesOf(color string) []string {
	for _, c := range ColorShades {
		if c.Name == color {
			return c.Shades
		}
	}
	return nil
}
