// Package catalog reads the product catalog file consumed by the indexer and graph builder.
package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
)

// rawItem accepts both the scraper's camelCase export and snake_case.
type rawItem struct {
	ID               any      `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Price            float64  `json:"price"`
	Rating           float64  `json:"rating"`
	ReviewCount      *int     `json:"review_count"`
	ReviewCountCamel *int     `json:"reviewCount"`
	Description      string   `json:"description"`
	Styles           []string `json:"styles"`
	Colors           []string `json:"colors"`
	Features         []string `json:"features"`
	Tags             []string `json:"tags"`
	Image            string   `json:"image"`
	PrimaryImage     string   `json:"primary_image"`
	InStock          *bool    `json:"in_stock"`
	InStockCamel     *bool    `json:"inStock"`
}

func (r rawItem) item() catalog.Item {
	it := catalog.Item{
		ID:          formatID(r.ID),
		Name:        strings.TrimSpace(r.Name),
		Category:    strings.TrimSpace(r.Category),
		Price:       r.Price,
		Rating:      r.Rating,
		Description: r.Description,
		Styles:      r.Styles,
		Colors:      r.Colors,
		Features:    r.Features,
		Tags:        r.Tags,
		Image:       r.PrimaryImage,
		InStock:     true,
	}
	if it.Image == "" {
		it.Image = r.Image
	}
	switch {
	case r.ReviewCount != nil:
		it.ReviewCount = *r.ReviewCount
	case r.ReviewCountCamel != nil:
		it.ReviewCount = *r.ReviewCountCamel
	}
	switch {
	case r.InStock != nil:
		it.InStock = *r.InStock
	case r.InStockCamel != nil:
		it.InStock = *r.InStockCamel
	}
	return it
}

func formatID(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

// Report summarizes a load.
type Report struct {
	Loaded     int
	Skipped    int
	Duplicates int
}

// Loader reads catalog JSON.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadFile reads the catalog at path.
func (l *Loader) LoadFile(path string) ([]catalog.Item, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()
	return l.Load(f)
}

// Load decodes either a JSON array of products or an object with a "products" array.
// Invalid items and repeated IDs are skipped and logged. Output is sorted by ID.
func (l *Loader) Load(r io.Reader) ([]catalog.Item, Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Report{}, fmt.Errorf("read catalog: %w", err)
	}

	var raws []rawItem
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Products []rawItem `json:"products"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, Report{}, fmt.Errorf("decode catalog: %w", err)
		}
		raws = wrapped.Products
	} else if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, Report{}, fmt.Errorf("decode catalog: %w", err)
	}

	var rep Report
	seen := make(map[string]struct{}, len(raws))
	items := make([]catalog.Item, 0, len(raws))
	for i, raw := range raws {
		it := raw.item()
		if err := it.Validate(); err != nil {
			rep.Skipped++
			l.logger.Warn("Skipping invalid catalog item", zap.Int("position", i), zap.Error(err))
			continue
		}
		if _, dup := seen[it.ID]; dup {
			rep.Duplicates++
			l.logger.Warn("Skipping duplicate catalog item", zap.String("id", it.ID))
			continue
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
	}

	sort.Slice(items, func(a, b int) bool { return items[a].ID < items[b].ID })
	rep.Loaded = len(items)
	return items, rep, nil
}
