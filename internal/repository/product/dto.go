package product

import (
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// Hash field names.
const (
	fieldID          = "id"
	fieldName        = "name"
	fieldCategory    = "category"
	fieldPrice       = "price"
	fieldRating      = "rating"
	fieldReviewCount = "review_count"
	fieldDescription = "description"
	fieldStyles      = "styles"
	fieldColors      = "colors"
	fieldFeatures    = "features"
	fieldTags        = "tags"
	fieldImage       = "image"
	fieldInStock     = "in_stock"
	fieldPalette     = "palette"
	fieldIndexedAt   = "indexed_at"
)

// tagSep joins TAG list values; listSep joins free-text lists.
const (
	tagSep  = ","
	listSep = "|"
)

// payloadFields are returned by searches; vectors are never shipped back.
var payloadFields = []string{
	fieldID, fieldName, fieldCategory, fieldPrice, fieldRating, fieldReviewCount,
	fieldDescription, fieldStyles, fieldColors, fieldFeatures, fieldTags,
	fieldImage, fieldInStock, fieldPalette,
}

func toHash(rec catalog.Indexed) map[string]string {
	it := rec.Item
	m := map[string]string{
		fieldID:          it.ID,
		fieldName:        it.Name,
		fieldCategory:    strings.ToLower(strings.TrimSpace(it.Category)),
		fieldPrice:       strconv.FormatFloat(it.Price, 'f', -1, 64),
		fieldRating:      strconv.FormatFloat(it.Rating, 'f', -1, 64),
		fieldReviewCount: strconv.Itoa(it.ReviewCount),
		fieldDescription: it.TruncatedDescription(),
		fieldStyles:      joinTags(it.Styles),
		fieldColors:      joinTags(it.Colors),
		fieldFeatures:    strings.Join(it.Features, listSep),
		fieldTags:        strings.Join(it.Tags, listSep),
		fieldImage:       it.Image,
		fieldInStock:     strconv.FormatBool(it.InStock),
		fieldPalette:     strings.Join(rec.Palette, tagSep),
		fieldIndexedAt:   rec.IndexedAt.UTC().Format(time.RFC3339),
	}
	for _, s := range vector.All {
		m[s.Field()] = string(vector.Encode(rec.Vectors.Vector(s)))
	}
	return m
}

// joinTags lowercases and strips separators so values round-trip through a TAG field.
func joinTags(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(v, tagSep, " ")))
		if v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, tagSep)
}

func fromHash(fields map[string]string) catalog.Item {
	price, _ := strconv.ParseFloat(fields[fieldPrice], 64)
	rating, _ := strconv.ParseFloat(fields[fieldRating], 64)
	reviews, _ := strconv.Atoi(fields[fieldReviewCount])
	inStock, _ := strconv.ParseBool(fields[fieldInStock])
	return catalog.Item{
		ID:          fields[fieldID],
		Name:        fields[fieldName],
		Category:    fields[fieldCategory],
		Price:       price,
		Rating:      rating,
		ReviewCount: reviews,
		Description: fields[fieldDescription],
		Styles:      split(fields[fieldStyles], tagSep),
		Colors:      split(fields[fieldColors], tagSep),
		Features:    split(fields[fieldFeatures], listSep),
		Tags:        split(fields[fieldTags], listSep),
		Image:       fields[fieldImage],
		InStock:     inStock,
	}
}

func split(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}
