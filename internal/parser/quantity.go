package parser

import (
	"math"
	"strconv"
	"strings"
)

// maxQuantity bounds both a single numeral and the resolved quantity.
// Larger numerals are not treated as modifiers.
const maxQuantity = 1000

// countWords are spelled-out counts. A count, spelled or numeric, is taken
// at most once per food.
var countWords = map[string]float64{
	"a":     1,
	"an":    1,
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
}

// scaleWords multiply the count ("half a", "double").
var scaleWords = map[string]float64{
	"half":    0.5,
	"quarter": 0.25,
	"double":  2,
	"triple":  3,
}

var unitWords = map[string]float64{
	"cup":      1,
	"cups":     1,
	"glass":    1,
	"glasses":  1,
	"slice":    1,
	"slices":   1,
	"piece":    1,
	"pieces":   1,
	"serving":  1,
	"servings": 1,
	"bowl":     1.5,
	"bowls":    1.5,
	"large":    1.5,
	"small":    0.75,
	"medium":   1,
}

// fillerWords may sit between a modifier and the food without ending the run.
var fillerWords = map[string]bool{
	"of": true,
}

const wordPunct = ",.;:!?()\"'"

// resolveQuantity walks backwards over the words preceding a food name and
// returns count * scale words * the nearest unit factor, capped at
// maxQuantity. The walk stops at a second count or at the first word that is
// not a count, scale word, unit word, or filler.
func resolveQuantity(preceding []string) float64 {
	qty := 1.0
	unit := 1.0
	haveCount := false
	haveUnit := false

	for i := len(preceding) - 1; i >= 0; i-- {
		w := strings.Trim(preceding[i], wordPunct)
		if w == "" || fillerWords[w] {
			continue
		}
		n, isCount := parseNumber(w)
		if !isCount {
			n, isCount = countWords[w]
		}
		if isCount {
			if haveCount {
				break
			}
			qty *= n
			haveCount = true
			continue
		}
		if q, ok := scaleWords[w]; ok {
			qty *= q
			continue
		}
		if u, ok := unitWords[w]; ok {
			if !haveUnit {
				unit = u
				haveUnit = true
			}
			continue
		}
		break
	}
	return math.Min(qty*unit, maxQuantity)
}

// parseNumber accepts positive decimals up to maxQuantity ("2", "1.5") and
// simple fractions ("1/2").
func parseNumber(w string) (float64, bool) {
	if num, den, ok := strings.Cut(w, "/"); ok {
		n, ok1 := parseNumber(num)
		d, ok2 := parseNumber(den)
		if !ok1 || !ok2 {
			return 0, false
		}
		return n / d, true
	}
	n, err := strconv.ParseFloat(w, 64)
	if err != nil || !(n > 0 && n <= maxQuantity) {
		return 0, false
	}
	return n, true
}
