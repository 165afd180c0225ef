package tools

import (
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dukerupert/calorie-tracker/internal/model"
)

type addMealArgs struct {
	Description string
	MealType    model.MealType
}

type dailySummaryArgs struct {
	Date string // empty means today
}

type weeklyReportArgs struct {
	StartDate string // empty means seven days ago
}

type searchFoodArgs struct {
	FoodName string
}

type updateMealArgs struct {
	ID          string
	Description string
}

type deleteMealArgs struct {
	ID string
}

func bindAddMeal(req mcp.CallToolRequest) (addMealArgs, error) {
	description, err := req.RequireString("description")
	if err != nil {
		return addMealArgs{}, err
	}
	rawType, err := req.RequireString("mealType")
	if err != nil {
		return addMealArgs{}, err
	}
	mealType, err := model.ParseMealType(rawType)
	if err != nil {
		return addMealArgs{}, err
	}
	return addMealArgs{Description: description, MealType: mealType}, nil
}

func bindDailySummary(req mcp.CallToolRequest) (dailySummaryArgs, error) {
	date, err := optionalDate(req, "date")
	if err != nil {
		return dailySummaryArgs{}, err
	}
	return dailySummaryArgs{Date: date}, nil
}

func bindWeeklyReport(req mcp.CallToolRequest) (weeklyReportArgs, error) {
	start, err := optionalDate(req, "startDate")
	if err != nil {
		return weeklyReportArgs{}, err
	}
	return weeklyReportArgs{StartDate: start}, nil
}

func bindSearchFood(req mcp.CallToolRequest) (searchFoodArgs, error) {
	name, err := req.RequireString("foodName")
	if err != nil {
		return searchFoodArgs{}, err
	}
	if strings.TrimSpace(name) == "" {
		return searchFoodArgs{}, errors.New("foodName must not be empty")
	}
	return searchFoodArgs{FoodName: name}, nil
}

func bindUpdateMeal(req mcp.CallToolRequest) (updateMealArgs, error) {
	id, err := requireID(req)
	if err != nil {
		return updateMealArgs{}, err
	}
	description, err := req.RequireString("description")
	if err != nil {
		return updateMealArgs{}, err
	}
	return updateMealArgs{ID: id, Description: description}, nil
}

func bindDeleteMeal(req mcp.CallToolRequest) (deleteMealArgs, error) {
	id, err := requireID(req)
	if err != nil {
		return deleteMealArgs{}, err
	}
	return deleteMealArgs{ID: id}, nil
}

func requireID(req mcp.CallToolRequest) (string, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return "", err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("id must not be empty")
	}
	return id, nil
}

// optionalDate returns "" when key is absent or blank, and validates it otherwise.
func optionalDate(req mcp.CallToolRequest, key string) (string, error) {
	raw := strings.TrimSpace(req.GetString(key, ""))
	if raw == "" {
		return "", nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return "", err
	}
	return d.Format(model.DateLayout), nil
}
