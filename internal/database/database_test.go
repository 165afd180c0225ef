package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".daily-calorie-tracker")
	dbPath := filepath.Join(dir, "calories.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat data dir: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected data dir to be a directory")
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"meals", "backups"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenPersistsAcrossRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "calories.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(
		`INSERT INTO meals (id, date, meal_type, food_items, total_calories, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		"m1", "2024-03-01", "lunch", "[]", 0, "2024-03-01T12:00:00.000Z",
	)
	if err != nil {
		t.Fatalf("insert meal: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM meals`).Scan(&count); err != nil {
		t.Fatalf("count meals: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestMealTypeConstraint(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(
		`INSERT INTO meals (id, date, meal_type, food_items, total_calories, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		"m1", "2024-03-01", "brunch", "[]", 0, "2024-03-01T12:00:00.000Z",
	)
	if err == nil {
		t.Error("expected check constraint failure for unknown meal type")
	}
}
