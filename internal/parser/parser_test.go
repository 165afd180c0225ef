package parser

import (
	"math"
	"strings"
	"testing"

	"github.com/dukerupert/calorie-tracker/internal/catalog"
	"github.com/dukerupert/calorie-tracker/internal/model"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Entry{
		{Name: "rice", Info: model.FoodInfo{Calories: 206, Unit: "cup"}},
		{Name: "oatmeal", Info: model.FoodInfo{Calories: 158, Unit: "cup"}},
		{Name: "milk", Info: model.FoodInfo{Calories: 103, Unit: "cup"}},
		{Name: "almond milk", Info: model.FoodInfo{Calories: 39, Unit: "cup"}},
		{Name: "egg", Info: model.FoodInfo{Calories: 78, Unit: "large egg"}},
		{Name: "banana", Info: model.FoodInfo{Calories: 105, Unit: "medium"}},
		{Name: "pineapple", Info: model.FoodInfo{Calories: 82, Unit: "cup"}},
		{Name: "apple", Info: model.FoodInfo{Calories: 95, Unit: "medium"}},
	})
}

func assertItems(t *testing.T, input string, got, want []model.FoodItem) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Parse(%q) returned %d items %+v, want %d %+v", input, len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Parse(%q)[%d] = %+v, want %+v", input, i, got[i], want[i])
		}
	}
}

func TestParseQuantities(t *testing.T) {
	p := New(testCatalog())

	tests := []struct {
		input string
		want  []model.FoodItem
	}{
		{"two cups of rice", []model.FoodItem{{Name: "rice", Calories: 412, Quantity: 2}}},
		{"half a bowl of oatmeal", []model.FoodItem{{Name: "oatmeal", Calories: 119, Quantity: 0.75}}},
		{"a glass of milk", []model.FoodItem{{Name: "milk", Calories: 103, Quantity: 1}}},
		{"3 eggs", []model.FoodItem{{Name: "egg", Calories: 234, Quantity: 3}}},
		{"1/2 banana", []model.FoodItem{{Name: "banana", Calories: 53, Quantity: 0.5}}},
		{"1.5 cups of rice", []model.FoodItem{{Name: "rice", Calories: 309, Quantity: 1.5}}},
		{"a large banana", []model.FoodItem{{Name: "banana", Calories: 158, Quantity: 1.5}}},
		{"a small banana", []model.FoodItem{{Name: "banana", Calories: 79, Quantity: 0.75}}},
		{"two large bowls of oatmeal", []model.FoodItem{{Name: "oatmeal", Calories: 474, Quantity: 3}}},
		{"double rice", []model.FoodItem{{Name: "rice", Calories: 412, Quantity: 2}}},
		{"quarter cup of oatmeal", []model.FoodItem{{Name: "oatmeal", Calories: 40, Quantity: 0.25}}},
		{"2 3 rice", []model.FoodItem{{Name: "rice", Calories: 618, Quantity: 3}}},
		{"five four three two rice", []model.FoodItem{{Name: "rice", Calories: 412, Quantity: 2}}},
		{"half 2 rice", []model.FoodItem{{Name: "rice", Calories: 206, Quantity: 1}}},
		{"1000 rice", []model.FoodItem{{Name: "rice", Calories: 206000, Quantity: 1000}}},
		{"Two Cups Of RICE.", []model.FoodItem{{Name: "rice", Calories: 412, Quantity: 2}}},
	}
	for _, tt := range tests {
		assertItems(t, tt.input, p.Parse(tt.input), tt.want)
	}
}

func TestParseModifierRunStopsAtOtherWords(t *testing.T) {
	p := New(testCatalog())

	input := "rice and two eggs"
	want := []model.FoodItem{
		{Name: "rice", Calories: 206, Quantity: 1},
		{Name: "egg", Calories: 156, Quantity: 2},
	}
	assertItems(t, input, p.Parse(input), want)

	input = "zero 0 banana"
	assertItems(t, input, p.Parse(input), []model.FoodItem{{Name: "banana", Calories: 105, Quantity: 1}})
}

func TestParseQuantityBounds(t *testing.T) {
	p := New(testCatalog())

	for _, input := range []string{"1e17 rice", "99999999999999999999 rice", "1e300 rice", "1001 rice", "nan rice", "inf rice"} {
		assertItems(t, input, p.Parse(input), []model.FoodItem{{Name: "rice", Calories: 206, Quantity: 1}})
	}

	input := strings.Repeat("double ", 40) + "rice"
	assertItems(t, input, p.Parse(input), []model.FoodItem{{Name: "rice", Calories: 206000, Quantity: maxQuantity}})

	input = "1000/0.001 rice"
	assertItems(t, input, p.Parse(input), []model.FoodItem{{Name: "rice", Calories: 206000, Quantity: maxQuantity}})
}

func TestRoundCaloriesSaturates(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{205.5, 206},
		{-3, 0},
		{math.NaN(), 0},
		{1e300, math.MaxInt32},
		{math.Inf(1), math.MaxInt32},
	}
	for _, tt := range tests {
		if got := roundCalories(tt.in); got != tt.want {
			t.Errorf("roundCalories(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseCatalogOrder(t *testing.T) {
	p := New(testCatalog())

	// Results follow catalog order, not the order foods appear in the text.
	input := "banana then rice"
	want := []model.FoodItem{
		{Name: "rice", Calories: 206, Quantity: 1},
		{Name: "banana", Calories: 105, Quantity: 1},
	}
	assertItems(t, input, p.Parse(input), want)
}

func TestParseCatalogOrderOverlapping(t *testing.T) {
	p := New(testCatalog())

	input := "almond milk"
	want := []model.FoodItem{
		{Name: "milk", Calories: 103, Quantity: 1},
		{Name: "almond milk", Calories: 39, Quantity: 1},
	}
	assertItems(t, input, p.Parse(input), want)

	input = "pineapple"
	want = []model.FoodItem{
		{Name: "pineapple", Calories: 82, Quantity: 1},
		{Name: "apple", Calories: 95, Quantity: 1},
	}
	assertItems(t, input, p.Parse(input), want)
}

func TestParseLeftmostLongest(t *testing.T) {
	p := New(testCatalog(), WithMatchMode(MatchLeftmostLongest))

	tests := []struct {
		input string
		want  []model.FoodItem
	}{
		{"almond milk", []model.FoodItem{{Name: "almond milk", Calories: 39, Quantity: 1}}},
		{"pineapple", []model.FoodItem{{Name: "pineapple", Calories: 82, Quantity: 1}}},
		{"banana then rice", []model.FoodItem{
			{Name: "banana", Calories: 105, Quantity: 1},
			{Name: "rice", Calories: 206, Quantity: 1},
		}},
		{"two apples and a banana", []model.FoodItem{
			{Name: "apple", Calories: 190, Quantity: 2},
			{Name: "banana", Calories: 105, Quantity: 1},
		}},
		{"rice and more rice", []model.FoodItem{
			{Name: "rice", Calories: 206, Quantity: 1},
			{Name: "rice", Calories: 206, Quantity: 1},
		}},
		{"half a bowl of oatmeal", []model.FoodItem{{Name: "oatmeal", Calories: 119, Quantity: 0.75}}},
	}
	for _, tt := range tests {
		assertItems(t, tt.input, p.Parse(tt.input), tt.want)
	}
}

func TestParseFallbackPartialTokens(t *testing.T) {
	for _, mode := range []MatchMode{MatchCatalogOrder, MatchLeftmostLongest} {
		p := New(testCatalog(), WithMatchMode(mode))

		input := "some oat"
		assertItems(t, input, p.Parse(input), []model.FoodItem{{Name: "oatmeal", Calories: 158, Quantity: 1}})

		input = "oat oat"
		want := []model.FoodItem{
			{Name: "oatmeal", Calories: 158, Quantity: 1},
			{Name: "oatmeal", Calories: 158, Quantity: 1},
		}
		assertItems(t, input, p.Parse(input), want)
	}
}

func TestParseNothingRecognized(t *testing.T) {
	p := New(testCatalog())

	for _, input := range []string{"", "   ", "xyz", "zzz qqq"} {
		if got := p.Parse(input); len(got) != 0 {
			t.Errorf("Parse(%q) = %+v, want empty", input, got)
		}
	}
}

func TestParseCaloriesMatchCatalog(t *testing.T) {
	c, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	inputs := []string{
		"two cups of rice",
		"half a bowl of oatmeal",
		"chicken salad and a glass of milk",
		"3 slices of pizza and a soda",
		"a large latte, two eggs, 2 slices of toast with butter",
		"quarter of a watermelon",
		"steak",
		"!!! ??? ...",
	}
	for _, mode := range []MatchMode{MatchCatalogOrder, MatchLeftmostLongest} {
		p := New(c, WithMatchMode(mode))
		for _, input := range inputs {
			for _, item := range p.Parse(input) {
				info, ok := c.Lookup(item.Name)
				if !ok {
					t.Errorf("Parse(%q) returned unknown food %q", input, item.Name)
					continue
				}
				if item.Quantity <= 0 {
					t.Errorf("Parse(%q) %q quantity = %v, want > 0", input, item.Name, item.Quantity)
				}
				if want := int(math.Round(info.Calories * item.Quantity)); item.Calories != want {
					t.Errorf("Parse(%q) %q calories = %d, want %d", input, item.Name, item.Calories, want)
				}
			}
		}
	}
}

func TestParseBundledCatalog(t *testing.T) {
	c, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	p := New(c)

	input := "two cups of rice"
	assertItems(t, input, p.Parse(input), []model.FoodItem{{Name: "rice", Calories: 412, Quantity: 2}})

	input = "half a bowl of oatmeal"
	assertItems(t, input, p.Parse(input), []model.FoodItem{{Name: "oatmeal", Calories: 119, Quantity: 0.75}})
}

func TestParseMatchMode(t *testing.T) {
	tests := []struct {
		input string
		want  MatchMode
		ok    bool
	}{
		{"", MatchCatalogOrder, true},
		{"catalog", MatchCatalogOrder, true},
		{" Leftmost ", MatchLeftmostLongest, true},
		{"fuzzy", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseMatchMode(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMatchMode(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParserMode(t *testing.T) {
	if got := New(testCatalog()).Mode(); got != MatchCatalogOrder {
		t.Errorf("default Mode() = %q, want %q", got, MatchCatalogOrder)
	}
	p := New(testCatalog(), WithMatchMode(MatchLeftmostLongest))
	if got := p.Mode(); got != MatchLeftmostLongest {
		t.Errorf("Mode() = %q, want %q", got, MatchLeftmostLongest)
	}
}
