package catalog

import (
	"time"

	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// Indexed is the persisted form of an item: its payload plus one vector per space.
type Indexed struct {
	Item      Item
	Vectors   vector.Record
	Palette   []string
	IndexedAt time.Time
}
