package preference

import (
	"regexp"
	"strconv"
	"strings"
)

const amount = `\$?\s*(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`

// budgetPatterns are tried in order; the first match wins.
var budgetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`under\s+` + amount),
	regexp.MustCompile(`budget\s+(?:of\s+|is\s+)?` + amount),
	regexp.MustCompile(`cheap(?:est)?\s+(?:under\s+)?` + amount),
	regexp.MustCompile(`max(?:imum)?\s+(?:price|cost)\s+(?:of\s+)?` + amount),
	regexp.MustCompile(`less\s+than\s+` + amount),
	regexp.MustCompile(`below\s+` + amount),
}

// ParseBudget returns the budget ceiling stated in text, or nil.
func ParseBudget(text string) *float64 {
	lower := strings.ToLower(text)
	for _, re := range budgetPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		return &v
	}
	return nil
}

// ExtractColors returns canonical colors mentioned in text, in vocabulary order.
func ExtractColors(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, c := range ColorShades {
		for _, shade := range c.Shades {
			if ContainsTerm(lower, shade) {
				out = append(out, c.Name)
				break
			}
		}
	}
	return out
}

// ExtractSizes returns size keywords present in text.
func ExtractSizes(text string) []string {
	return matchAll(strings.ToLower(text), SizeKeywords)
}

// ExtractFeatures returns feature keywords present in text.
func ExtractFeatures(text string) []string {
	return matchAll(strings.ToLower(text), FeatureKeywords)
}

func matchAll(lower string, vocab []string) []string {
	var out []string
	for _, w := range vocab {
		if ContainsTerm(lower, w) {
			out = append(out, w)
		}
	}
	return out
}

// ContainsTerm reports whether term occurs in lower as a whole word or phrase.
// Both arguments must already be lowercase.
func ContainsTerm(lower, term string) bool {
	if term == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(lower[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		if boundary(lower, i-1) && boundary(lower, end) {
			return true
		}
		start = i + 1
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return (c < 'a' || c > 'z') && (c < '0' || c > '9')
}
