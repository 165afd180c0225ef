package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dukerupert/calorie-tracker/internal/model"
)

// ErrConstraintViolation is returned when an insert collides with an existing key.
var ErrConstraintViolation = errors.New("constraint violation")

type MealStore struct {
	db *sql.DB
}

func NewMealStore(db *sql.DB) *MealStore {
	return &MealStore{db: db}
}

// MealUpdate lists the fields to change; nil fields are left untouched.
type MealUpdate struct {
	FoodItems     *[]model.FoodItem
	TotalCalories *int
}

func scanMeal(scanner interface{ Scan(...any) error }) (*model.Meal, error) {
	var m model.Meal
	var mealType, foodItems string

	err := scanner.Scan(&m.ID, &m.Date, &mealType, &foodItems, &m.TotalCalories, &m.Timestamp)
	if err != nil {
		return nil, err
	}

	m.MealType = model.MealType(mealType)
	if err := json.Unmarshal([]byte(foodItems), &m.FoodItems); err != nil {
		return nil, fmt.Errorf("decode food items for meal %s: %w", m.ID, err)
	}
	return &m, nil
}

const mealCols = `id, date, meal_type, food_items, total_calories, timestamp`

func encodeFoodItems(items []model.FoodItem) (string, error) {
	if items == nil {
		items = []model.FoodItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode food items: %w", err)
	}
	return string(b), nil
}

// Add inserts a new meal. A duplicate id fails with ErrConstraintViolation.
func (s *MealStore) Add(m model.Meal) error {
	items, err := encodeFoodItems(m.FoodItems)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO meals (`+mealCols+`) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Date, string(m.MealType), items, m.TotalCalories, m.Timestamp,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert meal %s: %w", m.ID, ErrConstraintViolation)
	}
	if err != nil {
		return fmt.Errorf("insert meal: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		msg := se.Error()
		return strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "PRIMARY KEY")
	}
	return false
}

// GetByID returns the meal with the given id, or nil if it does not exist.
func (s *MealStore) GetByID(id string) (*model.Meal, error) {
	row := s.db.QueryRow(`SELECT `+mealCols+` FROM meals WHERE id = ?`, id)
	m, err := scanMeal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal: %w", err)
	}
	return m, nil
}

// GetByDate returns the meals logged on date, oldest first.
func (s *MealStore) GetByDate(date string) ([]model.Meal, error) {
	rows, err := s.db.Query(
		`SELECT `+mealCols+` FROM meals WHERE date = ? ORDER BY timestamp`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("list meals by date: %w", err)
	}
	return collectMeals(rows)
}

// GetByDateRange returns the meals with start <= date <= end, ordered by date then timestamp.
func (s *MealStore) GetByDateRange(start, end string) ([]model.Meal, error) {
	rows, err := s.db.Query(
		`SELECT `+mealCols+` FROM meals WHERE date >= ? AND date <= ? ORDER BY date, timestamp`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list meals by date range: %w", err)
	}
	return collectMeals(rows)
}

func collectMeals(rows *sql.Rows) ([]model.Meal, error) {
	defer rows.Close()

	var meals []model.Meal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		meals = append(meals, *m)
	}
	return meals, rows.Err()
}

// Update writes the non-nil fields of u. An empty update or an unknown id is a no-op.
func (s *MealStore) Update(id string, u MealUpdate) error {
	var sets []string
	var args []any

	if u.FoodItems != nil {
		items, err := encodeFoodItems(*u.FoodItems)
		if err != nil {
			return err
		}
		sets = append(sets, "food_items = ?")
		args = append(args, items)
	}
	if u.TotalCalories != nil {
		sets = append(sets, "total_calories = ?")
		args = append(args, *u.TotalCalories)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	_, err := s.db.Exec(`UPDATE meals SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update meal: %w", err)
	}
	return nil
}

func (s *MealStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return nil
}

func (s *MealStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM meals`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count meals: %w", err)
	}
	return count, nil
}
