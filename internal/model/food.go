package model

// FoodInfo holds the calories for one reference unit of a food.
type FoodInfo struct {
	Calories float64 `json:"calories" yaml:"calories"`
	Unit     string  `json:"unit" yaml:"unit"`
}
