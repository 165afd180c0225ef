package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for meal dates and range queries.
const DateLayout = "2006-01-02"

// TimestampLayout is fixed-width so that lexical order matches chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// MealTypes lists the meal categories in reporting order.
var MealTypes = []MealType{MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack}

// ParseMealType validates a meal type, case-insensitively.
func ParseMealType(s string) (MealType, error) {
	mt := MealType(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range MealTypes {
		if mt == valid {
			return mt, nil
		}
	}
	return "", fmt.Errorf("meal type must be breakfast, lunch, dinner, or snack; got %q", s)
}

// Title returns the meal type with its first letter upper-cased.
func (t MealType) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// FoodItem is one recognized food within a meal description.
type FoodItem struct {
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Quantity float64 `json:"quantity"`
}

type Meal struct {
	ID            string     `json:"id"`
	Date          string     `json:"date"`
	MealType      MealType   `json:"mealType"`
	FoodItems     []FoodItem `json:"foodItems"`
	TotalCalories int        `json:"totalCalories"`
	Timestamp     string     `json:"timestamp"`
}

// NewMeal builds a meal logged at now (converted to UTC for the timestamp)
// on the calendar day of now in its own location.
func NewMeal(id string, mealType MealType, items []FoodItem, now time.Time) Meal {
	return Meal{
		ID:            id,
		Date:          now.Format(DateLayout),
		MealType:      mealType,
		FoodItems:     items,
		TotalCalories: SumCalories(items),
		Timestamp:     now.UTC().Format(TimestampLayout),
	}
}

func SumCalories(items []FoodItem) int {
	total := 0
	for _, item := range items {
		total += item.Calories
	}
	return total
}

// ParseDate validates a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format; got %q", s)
	}
	return d, nil
}
