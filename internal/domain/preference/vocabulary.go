package preference

// Prompt pairs a canonical attribute name with the text that is embedded for it.
type Prompt struct {
	Name string
	Text string
}

// MaterialPrompts are the base materials resolved by similarity.
var MaterialPrompts = []Prompt{
	{"leather", "genuine leather material"},
	{"velvet", "velvet fabric plush material"},
	{"fabric", "fabric cloth material"},
	{"wood", "solid wood natural material"},
	{"metal", "metal steel material"},
}

// Variant is a material that may override its base when it scores clearly higher.
type Variant struct {
	Prompt
	Base string
}

// MaterialVariants are scored only after their base wins.
var MaterialVariants = []Variant{
	{Prompt{"genuine leather", "genuine real full grain leather"}, "leather"},
	{Prompt{"pu leather", "faux leather synthetic material"}, "leather"},
	{Prompt{"faux leather", "faux vegan leatherette material"}, "leather"},
	{Prompt{"solid wood", "solid hardwood oak walnut"}, "wood"},
}

// StylePrompts are the styles resolved by similarity.
var StylePrompts = []Prompt{
	{"modern", "modern contemporary sleek style"},
	{"traditional", "traditional classic vintage style"},
	{"industrial", "industrial urban metal style"},
	{"minimalist", "minimalist simple clean style"},
	{"scandinavian", "scandinavian nordic light wood style"},
}

// ComfortPrompt is compared against the query to set the comfort flag.
var ComfortPrompt = Prompt{"comfy", "comfortable plush soft cushioned"}

// ColorShades maps canonical color names to the shade words that imply them.
// Order is stable for deterministic extraction.
var ColorShades = []struct {
	Name   string
	Shades []string
}{
	{"red", []string{"red", "crimson", "burgundy", "maroon", "cherry", "ruby"}},
	{"blue", []string{"blue", "navy", "azure", "teal", "cobalt", "royal blue"}},
	{"green", []string{"green", "olive", "emerald", "sage", "forest", "mint"}},
	{"gray", []string{"gray", "grey", "charcoal", "slate"}},
	{"beige", []string{"beige", "cream", "taupe", "tan", "ivory"}},
	{"white", []string{"white", "off-white"}},
	{"black", []string{"black", "ebony"}},
	{"brown", []string{"brown", "chocolate", "espresso", "walnut brown"}},
	{"yellow", []string{"yellow", "mustard", "gold"}},
	{"orange", []string{"orange", "rust", "terracotta"}},
	{"pink", []string{"pink", "blush", "rose"}},
	{"purple", []string{"purple", "violet", "lavender", "plum"}},
}

// SizeKeywords are matched as whole words in the query.
var SizeKeywords = []string{
	"small", "compact", "large", "oversized", "sectional", "loveseat",
	"king", "queen", "twin", "full", "apartment", "2-seater", "3-seater",
}

// FeatureKeywords are matched as whole words or phrases in the query.
var FeatureKeywords = []string{
	"storage", "reclining", "recliner", "sleeper", "pull-out", "convertible",
	"adjustable", "foldable", "swivel", "ergonomic", "outdoor", "waterproof",
	"pet-friendly", "removable covers", "usb", "drawers", "extendable", "armrest",
}
