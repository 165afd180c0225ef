package tools

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dukerupert/calorie-tracker/internal/catalog"
	"github.com/dukerupert/calorie-tracker/internal/model"
	"github.com/dukerupert/calorie-tracker/internal/report"
)

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func formatItemLines(items []model.FoodItem) string {
	if len(items) == 0 {
		return "  No recognized foods found. Try using more specific food names."
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("  - %s: %d calories (x%s)", item.Name, item.Calories, formatQuantity(item.Quantity))
	}
	return strings.Join(lines, "\n")
}

func formatMealLogged(m model.Meal) string {
	return fmt.Sprintf("Meal logged successfully!\n\nMeal ID: %s\nMeal Type: %s\nFood Items:\n%s\n\nTotal Calories: %d",
		m.ID, m.MealType, formatItemLines(m.FoodItems), m.TotalCalories)
}

func formatMealUpdated(m model.Meal) string {
	return fmt.Sprintf("Meal %s updated.\n\nMeal Type: %s\nFood Items:\n%s\n\nTotal Calories: %d",
		m.ID, m.MealType, formatItemLines(m.FoodItems), m.TotalCalories)
}

func formatMealDeleted(m model.Meal) string {
	return fmt.Sprintf("Deleted %s meal %s from %s (%d cal).", m.MealType, m.ID, m.Date, m.TotalCalories)
}

func formatMealNotFound(id string) string {
	return fmt.Sprintf("No meal found with ID %q.", id)
}

func formatDailySummary(s report.DailySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily Summary for %s:\n\nTotal Meals: %d\nTotal Calories: %d\n\nMeals:\n",
		s.Date, len(s.Meals), s.TotalCalories)

	if len(s.Meals) == 0 {
		b.WriteString("  No meals logged for this date")
		return b.String()
	}

	blocks := make([]string, len(s.Meals))
	for i, m := range s.Meals {
		var mb strings.Builder
		fmt.Fprintf(&mb, "  %s (%d cal) [ID: %s]:", m.MealType.Title(), m.TotalCalories, m.ID)
		if len(m.FoodItems) == 0 {
			mb.WriteString("\n    - (no recognized foods)")
		}
		for _, item := range m.FoodItems {
			fmt.Fprintf(&mb, "\n    - %s: %d cal", item.Name, item.Calories)
		}
		blocks[i] = mb.String()
	}
	b.WriteString(strings.Join(blocks, "\n\n"))
	return b.String()
}

func formatDay(d *report.DayTotal) string {
	if d == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s (%d cal)", d.Date, d.Calories)
}

func formatWeeklyReport(r report.WeeklyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly Report (%s to %s):\n\n", r.Start, r.End)
	fmt.Fprintf(&b, "Total Calories: %d\n", r.TotalCalories)
	fmt.Fprintf(&b, "Average Daily Calories: %d\n", r.AverageDailyCalories)
	fmt.Fprintf(&b, "Days Tracked: %d\n\n", r.DaysTracked)
	fmt.Fprintf(&b, "Highest Day: %s\n", formatDay(r.Highest))
	fmt.Fprintf(&b, "Lowest Day: %s\n\n", formatDay(r.Lowest))

	b.WriteString("Meal Distribution:\n")
	fmt.Fprintf(&b, "  Breakfast: %d\n", r.MealTypeCounts[model.MealTypeBreakfast])
	fmt.Fprintf(&b, "  Lunch: %d\n", r.MealTypeCounts[model.MealTypeLunch])
	fmt.Fprintf(&b, "  Dinner: %d\n", r.MealTypeCounts[model.MealTypeDinner])
	fmt.Fprintf(&b, "  Snacks: %d\n\n", r.MealTypeCounts[model.MealTypeSnack])

	b.WriteString("Daily Breakdown:\n")
	if len(r.Days) == 0 {
		b.WriteString("  No meals logged this week")
		return b.String()
	}
	lines := make([]string, len(r.Days))
	for i, d := range r.Days {
		lines[i] = fmt.Sprintf("  %s: %d calories", d.Date, d.Calories)
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func formatSearchResults(query string, matches []catalog.Match) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No foods found matching %q. Try a different search term.", query)
	}
	lines := make([]string, len(matches))
	for i, m := range matches {
		lines[i] = fmt.Sprintf("  - %s: %s calories per %s",
			m.Name, strconv.FormatFloat(m.Info.Calories, 'f', -1, 64), m.Info.Unit)
	}
	return fmt.Sprintf("Food search results for %q:\n\n%s", query, strings.Join(lines, "\n"))
}
