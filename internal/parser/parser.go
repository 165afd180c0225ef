package parser

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dukerupert/calorie-tracker/internal/catalog"
	"github.com/dukerupert/calorie-tracker/internal/model"
)

// MatchMode selects how catalog names are located in a description.
type MatchMode string

const (
	// MatchCatalogOrder reports the first occurrence of every catalog name
	// found anywhere in the text, in catalog order.
	MatchCatalogOrder MatchMode = "catalog"
	// MatchLeftmostLongest reports whole-word occurrences in text order,
	// dropping matches that overlap an earlier or longer one.
	MatchLeftmostLongest MatchMode = "leftmost"
)

// ParseMatchMode maps a config value to a MatchMode. Empty means catalog order.
func ParseMatchMode(s string) (MatchMode, bool) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchCatalogOrder:
		return MatchCatalogOrder, true
	case MatchLeftmostLongest:
		return MatchLeftmostLongest, true
	}
	return "", false
}

type Option func(*Parser)

func WithMatchMode(mode MatchMode) Option {
	return func(p *Parser) {
		p.mode = mode
	}
}

// Parser turns free-text meal descriptions into food items using a catalog.
type Parser struct {
	catalog *catalog.Catalog
	mode    MatchMode
}

func New(c *catalog.Catalog, opts ...Option) *Parser {
	p := &Parser{catalog: c, mode: MatchCatalogOrder}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Mode() MatchMode {
	return p.mode
}

// Parse returns the foods recognized in text. It never fails; an empty
// result means nothing was recognized.
func (p *Parser) Parse(text string) []model.FoodItem {
	normalized := strings.ToLower(text)

	var items []model.FoodItem
	if p.mode == MatchLeftmostLongest {
		items = p.matchLeftmost(normalized)
	} else {
		items = p.matchCatalogOrder(normalized)
	}
	if len(items) > 0 {
		return items
	}
	return p.matchTokens(normalized)
}

func (p *Parser) matchCatalogOrder(text string) []model.FoodItem {
	var items []model.FoodItem
	p.catalog.Each(func(e catalog.Entry) bool {
		idx := strings.Index(text, e.Name)
		if idx < 0 {
			return true
		}
		items = append(items, newItem(e, resolveQuantity(strings.Fields(text[:idx]))))
		return true
	})
	return items
}

type span struct {
	start, end int
	order      int
	entry      catalog.Entry
}

func (p *Parser) matchLeftmost(text string) []model.FoodItem {
	var spans []span
	order := 0
	p.catalog.Each(func(e catalog.Entry) bool {
		for from := 0; from < len(text); {
			idx := strings.Index(text[from:], e.Name)
			if idx < 0 {
				break
			}
			start := from + idx
			if end, ok := wordBounds(text, start, start+len(e.Name)); ok {
				spans = append(spans, span{start: start, end: end, order: order, entry: e})
			}
			from = start + 1
		}
		order++
		return true
	})

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		if li, lj := spans[i].end-spans[i].start, spans[j].end-spans[j].start; li != lj {
			return li > lj
		}
		return spans[i].order < spans[j].order
	})

	var items []model.FoodItem
	lastEnd := 0
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		items = append(items, newItem(s.entry, resolveQuantity(strings.Fields(text[:s.start]))))
		lastEnd = s.end
	}
	return items
}

// wordBounds reports whether text[start:end] is a whole word, allowing a
// plural "s" or "es" suffix, and returns the end of the matched word.
func wordBounds(text string, start, end int) (int, bool) {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return 0, false
		}
	}
	for _, suffix := range []string{"", "s", "es"} {
		e := end + len(suffix)
		if !strings.HasPrefix(text[end:], suffix) {
			continue
		}
		if e == len(text) {
			return e, true
		}
		r, _ := utf8.DecodeRuneInString(text[e:])
		if !isWordRune(r) {
			return e, true
		}
	}
	return 0, false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// matchTokens is the fallback: each token maps to the first catalog name that
// contains it or is contained in it.
func (p *Parser) matchTokens(text string) []model.FoodItem {
	var items []model.FoodItem
	for _, token := range strings.Fields(text) {
		p.catalog.Each(func(e catalog.Entry) bool {
			if strings.Contains(e.Name, token) || strings.Contains(token, e.Name) {
				items = append(items, newItem(e, 1))
				return false
			}
			return true
		})
	}
	return items
}

func newItem(e catalog.Entry, quantity float64) model.FoodItem {
	return model.FoodItem{
		Name:     e.Name,
		Calories: roundCalories(e.Info.Calories * quantity),
		Quantity: quantity,
	}
}

// roundCalories converts to int, saturating instead of overflowing.
func roundCalories(c float64) int {
	c = math.Round(c)
	switch {
	case math.IsNaN(c) || c <= 0:
		return 0
	case c >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(c)
}
