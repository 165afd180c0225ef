package catalog

import (
	"strings"

	"github.com/dukerupert/calorie-tracker/internal/model"
)

type Match struct {
	Name string
	Info model.FoodInfo
}

// Search returns foods matching the query, case-insensitively: the exact
// match first, then every other name containing the query in catalog order.
// At most MaxSearchResults matches are returned.
func (c *Catalog) Search(query string) []Match {
	q := normalize(query)
	var results []Match

	// Phase 1: exact match
	if i, ok := c.index[q]; ok {
		results = append(results, Match{Name: q, Info: c.entries[i].Info})
	}

	// Phase 2: substring match
	c.Each(func(e Entry) bool {
		if len(results) >= MaxSearchResults {
			return false
		}
		if e.Name != q && strings.Contains(e.Name, q) {
			results = append(results, Match{Name: e.Name, Info: e.Info})
		}
		return true
	})

	return results
}
