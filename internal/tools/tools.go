package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dukerupert/calorie-tracker/internal/catalog"
	"github.com/dukerupert/calorie-tracker/internal/model"
	"github.com/dukerupert/calorie-tracker/internal/parser"
	"github.com/dukerupert/calorie-tracker/internal/report"
	"github.com/dukerupert/calorie-tracker/internal/store"
)

const (
	ToolAddMeal         = "add_meal"
	ToolGetDailySummary = "get_daily_summary"
	ToolGetWeeklyReport = "get_weekly_report"
	ToolSearchFood      = "search_food"
	ToolUpdateMeal      = "update_meal"
	ToolDeleteMeal      = "delete_meal"
)

var ErrUnknownTool = errors.New("unknown tool")

// Handler serves the calorie tracker tools. Requests are handled one at a
// time by the stdio transport.
type Handler struct {
	meals   *store.MealStore
	parser  *parser.Parser
	catalog *catalog.Catalog
	logger  *slog.Logger

	loc   *time.Location
	now   func() time.Time
	newID func() string
}

type Option func(*Handler)

// WithLocation sets the time zone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(h *Handler) {
		h.loc = loc
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(h *Handler) {
		h.newID = newID
	}
}

func NewHandler(meals *store.MealStore, p *parser.Parser, c *catalog.Catalog, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		meals:   meals,
		parser:  p,
		catalog: c,
		logger:  logger,
		loc:     time.UTC,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Tools returns the tool definitions advertised to clients.
func (h *Handler) Tools() []mcp.Tool {
	mealTypes := make([]string, len(model.MealTypes))
	for i, mt := range model.MealTypes {
		mealTypes[i] = string(mt)
	}

	return []mcp.Tool{
		mcp.NewTool(ToolAddMeal,
			mcp.WithDescription("Log a meal with food items and calories"),
			mcp.WithString("description",
				mcp.Required(),
				mcp.Description("Natural language description of the meal (e.g., 'chicken salad and a glass of milk')"),
			),
			mcp.WithString("mealType",
				mcp.Required(),
				mcp.Enum(mealTypes...),
				mcp.Description("Type of meal"),
			),
		),
		mcp.NewTool(ToolGetDailySummary,
			mcp.WithDescription("Get today's calorie intake summary"),
			mcp.WithString("date", mcp.Description("Date in YYYY-MM-DD format (defaults to today)")),
		),
		mcp.NewTool(ToolGetWeeklyReport,
			mcp.WithDescription("Get weekly calorie consumption report"),
			mcp.WithString("startDate", mcp.Description("Start date in YYYY-MM-DD format (defaults to 7 days ago)")),
		),
		mcp.NewTool(ToolSearchFood,
			mcp.WithDescription("Search for calorie information of a specific food"),
			mcp.WithString("foodName", mcp.Required(), mcp.Description("Name of the food to search")),
		),
		mcp.NewTool(ToolUpdateMeal,
			mcp.WithDescription("Replace the food items of a logged meal by re-parsing a new description"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Meal ID as shown in the daily summary")),
			mcp.WithString("description", mcp.Required(), mcp.Description("New natural language description of the meal")),
		),
		mcp.NewTool(ToolDeleteMeal,
			mcp.WithDescription("Delete a logged meal"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Meal ID as shown in the daily summary")),
		),
	}
}

// Register adds every tool to s, all served by Handle.
func (h *Handler) Register(s *server.MCPServer) {
	for _, tool := range h.Tools() {
		s.AddTool(tool, h.Handle)
	}
}

// Handle dispatches a tool call by name.
func (h *Handler) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.Params.Name
	h.logger.Debug("tool call", "tool", name)

	switch name {
	case ToolAddMeal:
		return h.addMeal(ctx, req)
	case ToolGetDailySummary:
		return h.dailySummary(ctx, req)
	case ToolGetWeeklyReport:
		return h.weeklyReport(ctx, req)
	case ToolSearchFood:
		return h.searchFood(ctx, req)
	case ToolUpdateMeal:
		return h.updateMeal(ctx, req)
	case ToolDeleteMeal:
		return h.deleteMeal(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

func (h *Handler) today() time.Time {
	return h.now().In(h.loc)
}

func (h *Handler) addMeal(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindAddMeal(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items := h.parser.Parse(args.Description)
	meal := model.NewMeal(h.newID(), args.MealType, items, h.today())

	if err := h.meals.Add(meal); err != nil {
		h.logger.Error("failed to add meal", "error", err, "meal_id", meal.ID)
		return nil, fmt.Errorf("add meal: %w", err)
	}

	h.logger.Info("meal logged",
		"meal_id", meal.ID,
		"meal_type", meal.MealType,
		"items", len(meal.FoodItems),
		"total_calories", meal.TotalCalories,
	)
	return mcp.NewToolResultText(formatMealLogged(meal)), nil
}

func (h *Handler) dailySummary(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindDailySummary(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date := args.Date
	if date == "" {
		date = h.today().Format(model.DateLayout)
	}

	meals, err := h.meals.GetByDate(date)
	if err != nil {
		h.logger.Error("failed to list meals", "error", err, "date", date)
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	return mcp.NewToolResultText(formatDailySummary(report.Daily(date, meals))), nil
}

func (h *Handler) weeklyReport(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindWeeklyReport(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	now := h.today()
	start := args.StartDate
	if start == "" {
		start = report.DefaultWeekStart(now)
	}
	end := now.Format(model.DateLayout)

	meals, err := h.meals.GetByDateRange(start, end)
	if err != nil {
		h.logger.Error("failed to list meals", "error", err, "start", start, "end", end)
		return nil, fmt.Errorf("weekly report: %w", err)
	}
	return mcp.NewToolResultText(formatWeeklyReport(report.Weekly(start, end, meals))), nil
}

func (h *Handler) searchFood(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindSearchFood(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSearchResults(args.FoodName, h.catalog.Search(args.FoodName))), nil
}

func (h *Handler) updateMeal(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindUpdateMeal(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	existing, err := h.meals.GetByID(args.ID)
	if err != nil {
		h.logger.Error("failed to get meal", "error", err, "meal_id", args.ID)
		return nil, fmt.Errorf("update meal: %w", err)
	}
	if existing == nil {
		return mcp.NewToolResultText(formatMealNotFound(args.ID)), nil
	}

	items := h.parser.Parse(args.Description)
	total := model.SumCalories(items)
	if err := h.meals.Update(args.ID, store.MealUpdate{FoodItems: &items, TotalCalories: &total}); err != nil {
		h.logger.Error("failed to update meal", "error", err, "meal_id", args.ID)
		return nil, fmt.Errorf("update meal: %w", err)
	}

	existing.FoodItems = items
	existing.TotalCalories = total
	h.logger.Info("meal updated", "meal_id", args.ID, "total_calories", total)
	return mcp.NewToolResultText(formatMealUpdated(*existing)), nil
}

func (h *Handler) deleteMeal(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := bindDeleteMeal(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	existing, err := h.meals.GetByID(args.ID)
	if err != nil {
		h.logger.Error("failed to get meal", "error", err, "meal_id", args.ID)
		return nil, fmt.Errorf("delete meal: %w", err)
	}
	if existing == nil {
		return mcp.NewToolResultText(formatMealNotFound(args.ID)), nil
	}

	if err := h.meals.Delete(args.ID); err != nil {
		h.logger.Error("failed to delete meal", "error", err, "meal_id", args.ID)
		return nil, fmt.Errorf("delete meal: %w", err)
	}

	h.logger.Info("meal deleted", "meal_id", args.ID)
	return mcp.NewToolResultText(formatMealDeleted(*existing)), nil
}
