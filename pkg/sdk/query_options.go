package furnidex

import domrec "github.com/kailas-cloud/furnidex/internal/domain/recommend"

// QueryOption narrows a Recommend, Similar or SearchImage call.
type QueryOption interface {
	applyQuery(*queryConfig)
}

// queryOptionFunc adapts a function to the QueryOption interface.
type queryOptionFunc func(*queryConfig)

func (f queryOptionFunc) applyQuery(c *queryConfig) { f(c) }

type queryConfig struct {
	category string
	limit    int
	policy   domrec.Policy
	space    Space
}

func newQueryConfig(defaultSpace Space, opts []QueryOption) queryConfig {
	cfg := queryConfig{policy: domrec.PolicyStrict, space: defaultSpace}
	for _, o := range opts {
		o.applyQuery(&cfg)
	}
	return cfg
}

// InCategory restricts results to one category, matched case-insensitively.
func InCategory(category string) QueryOption {
	return queryOptionFunc(func(c *queryConfig) {
		c.category = category
	})
}

// Limit caps the results (per tier for Recommend). Default 10, max 50.
func Limit(n int) QueryOption {
	return queryOptionFunc(func(c *queryConfig) {
		c.limit = n
	})
}

// Loose applies the lower similarity floor to the primary search of Recommend.
func Loose() QueryOption {
	return queryOptionFunc(func(c *queryConfig) {
		c.policy = domrec.PolicyLoose
	})
}

// InSpace picks the vector space searched by Similar and SearchImage.
// Similar defaults to text, SearchImage to image.
func InSpace(space Space) QueryOption {
	return queryOptionFunc(func(c *queryConfig) {
		c.space = space
	})
}
