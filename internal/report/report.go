// Package report derives daily and weekly calorie summaries from stored meals.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/dukerupert/calorie-tracker/internal/model"
)

// DefaultWeekDays is how far back a weekly report starts when no start date is given.
const DefaultWeekDays = 7

type DailySummary struct {
	Date          string
	Meals         []model.Meal
	TotalCalories int
}

// Daily sums the calories of one day's meals.
func Daily(date string, meals []model.Meal) DailySummary {
	total := 0
	for _, m := range meals {
		total += m.TotalCalories
	}
	return DailySummary{Date: date, Meals: meals, TotalCalories: total}
}

type DayTotal struct {
	Date     string
	Calories int
}

type WeeklyReport struct {
	Start string
	End   string
	// Days holds one entry per date with at least one meal, in date order.
	Days                 []DayTotal
	MealTypeCounts       map[model.MealType]int
	TotalCalories        int
	AverageDailyCalories int
	DaysTracked          int
	Highest              *DayTotal
	Lowest               *DayTotal
}

// Weekly aggregates meals in [start, end]. Meals are expected in (date,
// timestamp) order, as returned by a range query.
func Weekly(start, end string, meals []model.Meal) WeeklyReport {
	r := WeeklyReport{
		Start:          start,
		End:            end,
		MealTypeCounts: make(map[model.MealType]int, len(model.MealTypes)),
	}
	for _, mt := range model.MealTypes {
		r.MealTypeCounts[mt] = 0
	}

	index := make(map[string]int)
	for _, m := range meals {
		i, ok := index[m.Date]
		if !ok {
			i = len(r.Days)
			index[m.Date] = i
			r.Days = append(r.Days, DayTotal{Date: m.Date})
		}
		r.Days[i].Calories += m.TotalCalories
		r.TotalCalories += m.TotalCalories
		if _, known := r.MealTypeCounts[m.MealType]; known {
			r.MealTypeCounts[m.MealType]++
		}
	}
	sort.SliceStable(r.Days, func(i, j int) bool { return r.Days[i].Date < r.Days[j].Date })

	r.DaysTracked = len(r.Days)
	if r.DaysTracked == 0 {
		return r
	}
	r.AverageDailyCalories = int(math.Round(float64(r.TotalCalories) / float64(r.DaysTracked)))

	// Stable sorts over date order: ties go to the earliest date.
	byCalories := make([]DayTotal, len(r.Days))
	copy(byCalories, r.Days)
	sort.SliceStable(byCalories, func(i, j int) bool { return byCalories[i].Calories > byCalories[j].Calories })
	highest := byCalories[0]
	r.Highest = &highest

	copy(byCalories, r.Days)
	sort.SliceStable(byCalories, func(i, j int) bool { return byCalories[i].Calories < byCalories[j].Calories })
	lowest := byCalories[0]
	r.Lowest = &lowest

	return r
}

// DefaultWeekStart returns the date DefaultWeekDays before now.
func DefaultWeekStart(now time.Time) string {
	return now.AddDate(0, 0, -DefaultWeekDays).Format(model.DateLayout)
}
