package catalog

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/calorie-tracker/internal/model"
)

//go:embed foods.yaml
var bundledFoods []byte

// MaxSearchResults caps the number of matches returned by Search.
const MaxSearchResults = 10

// Entry is one named food in the catalog.
type Entry struct {
	Name     string
	Category string
	Info     model.FoodInfo
}

// Catalog is an ordered, read-only food table keyed by lowercase name.
// Iteration order is the order foods first appear in the source data.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

type dataset struct {
	Categories []struct {
		Name  string `yaml:"name"`
		Foods []struct {
			Name           string `yaml:"name"`
			model.FoodInfo `yaml:",inline"`
		} `yaml:"foods"`
	} `yaml:"categories"`
}

// Load builds the catalog from the bundled food dataset.
func Load() (*Catalog, error) {
	return Parse(bundledFoods)
}

// Parse builds a catalog from YAML food data.
func Parse(data []byte) (*Catalog, error) {
	var ds dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse food data: %w", err)
	}

	var entries []Entry
	for _, cat := range ds.Categories {
		for _, f := range cat.Foods {
			if strings.TrimSpace(f.Name) == "" {
				return nil, fmt.Errorf("food in category %q has no name", cat.Name)
			}
			if !(f.Calories >= 0) || math.IsInf(f.Calories, 0) {
				return nil, fmt.Errorf("food %q has invalid calories %v", f.Name, f.Calories)
			}
			entries = append(entries, Entry{Name: f.Name, Category: cat.Name, Info: f.FoodInfo})
		}
	}
	return New(entries), nil
}

// New builds a catalog from explicit entries. Names are lowercased and blank
// names are skipped. A repeated
// name keeps the position of its first occurrence and the info of its last.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		e.Name = normalize(e.Name)
		if e.Name == "" {
			continue
		}
		if i, ok := c.index[e.Name]; ok {
			c.entries[i].Info = e.Info
			c.entries[i].Category = e.Category
			continue
		}
		c.index[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup returns the info for a food name, case-insensitively.
func (c *Catalog) Lookup(name string) (model.FoodInfo, bool) {
	i, ok := c.index[normalize(name)]
	if !ok {
		return model.FoodInfo{}, false
	}
	return c.entries[i].Info, true
}

// Entries returns a copy of the catalog in iteration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Each calls fn for every entry in iteration order until fn returns false.
func (c *Catalog) Each(fn func(Entry) bool) {
	for _, e := range c.entries {
		if !fn(e) {
			return
		}
	}
}
