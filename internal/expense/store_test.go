package expense

import (
	"context"
	"testing"
	"time"

	"schoolfees-backend/internal/database"
	"schoolfees-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(db)
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func input(amount int64, mode models.ExpenseMode, subject string, on time.Time) Input {
	return Input{
		Amount:  dec(amount),
		Mode:    mode,
		Date:    on,
		Subject: subject,
	}
}

func TestAddAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, input(5000, models.ExpenseModeCash, models.SubjectStaffSalary, date(2025, time.January, 31))); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := s.Add(ctx, Input{
		Amount:      dec(2000),
		Mode:        models.ExpenseModeUPI,
		Date:        date(2025, time.February, 1),
		Subject:     "  Land Rent  ",
		Description: "february rent",
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	rows, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(rows))
	}
	if rows[1].Subject != models.SubjectLandRent {
		t.Errorf("subject not trimmed: %q", rows[1].Subject)
	}
	if rows[1].Description != "february rent" {
		t.Errorf("description = %q", rows[1].Description)
	}
}

func TestAddValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	on := date(2025, time.March, 1)

	cases := []struct {
		name string
		in   Input
	}{
		{"zero amount", input(0, models.ExpenseModeCash, models.SubjectCarLoan, on)},
		{"negative amount", input(-10, models.ExpenseModeCash, models.SubjectCarLoan, on)},
		{"card not allowed for expenses", input(100, models.ExpenseMode("Card"), models.SubjectCarLoan, on)},
		{"missing date", input(100, models.ExpenseModeCash, models.SubjectCarLoan, time.Time{})},
		{"blank subject", input(100, models.ExpenseModeCash, "   ", on)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Add(ctx, tc.in); !models.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	rows, _ := s.List(ctx, Filter{})
	if len(rows) != 0 {
		t.Fatalf("rejected input must not mutate the store, found %d rows", len(rows))
	}
}

func TestUpdateReplacesEveryField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Add(ctx, input(1000, models.ExpenseModeCash, models.SubjectHouseExpense, date(2025, time.April, 10)))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	updated, err := s.Update(ctx, created.ID, Input{
		Amount:      dec(1500),
		Mode:        models.ExpenseModeUPI,
		Date:        date(2025, time.April, 12),
		Subject:     models.SubjectSchoolMaintenance,
		Description: "roof repair",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Amount.Equal(dec(1500)) || updated.Mode != models.ExpenseModeUPI ||
		updated.Subject != models.SubjectSchoolMaintenance || updated.Description != "roof repair" {
		t.Errorf("update not applied in full: %+v", updated)
	}
	if !updated.Date.Equal(date(2025, time.April, 12)) {
		t.Errorf("Date = %v", updated.Date)
	}

	if _, err := s.Update(ctx, 999, input(1, models.ExpenseModeCash, "x", date(2025, time.April, 1))); !models.IsNotFound(err) {
		t.Errorf("unknown id: expected NotFoundError, got %v", err)
	}
	if _, err := s.Update(ctx, created.ID, input(-1, models.ExpenseModeCash, "x", date(2025, time.April, 1))); !models.IsValidation(err) {
		t.Errorf("bad input: expected ValidationError, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Add(ctx, input(300, models.ExpenseModeUPI, models.SubjectHouseLoan, date(2025, time.May, 5)))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, created.ID); !models.IsNotFound(err) {
		t.Errorf("deleting twice: expected NotFoundError, got %v", err)
	}

	rows, _ := s.List(ctx, Filter{})
	if len(rows) != 0 {
		t.Fatalf("expected empty store, got %d rows", len(rows))
	}
}

func TestListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []Input{
		input(100, models.ExpenseModeCash, models.SubjectStaffSalary, date(2025, time.January, 5)),
		input(200, models.ExpenseModeUPI, models.SubjectLandRent, date(2025, time.February, 5)),
		input(300, models.ExpenseModeCash, models.SubjectStaffSalary, date(2025, time.March, 5)),
	}
	for _, in := range seed {
		if _, err := s.Add(ctx, in); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	t.Run("date range", func(t *testing.T) {
		rows, err := s.List(ctx, Filter{From: date(2025, time.February, 1), To: date(2025, time.February, 28)})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(rows) != 1 || !rows[0].Amount.Equal(dec(200)) {
			t.Fatalf("rows = %+v", rows)
		}
	})

	t.Run("subject", func(t *testing.T) {
		rows, err := s.List(ctx, Filter{Subject: models.SubjectStaffSalary})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 salary rows, got %d", len(rows))
		}
	})

	t.Run("ordered by date", func(t *testing.T) {
		rows, err := s.List(ctx, Filter{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if !rows[0].Amount.Equal(dec(100)) || !rows[2].Amount.Equal(dec(300)) {
			t.Fatalf("rows out of date order: %+v", rows)
		}
	})
}

func TestExpensesSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, input(700, models.ExpenseModeCash, models.SubjectCarLoan, date(2025, time.June, 1))); err != nil {
		t.Fatalf("Add: %v", err)
	}

	rows, err := s.Expenses(ctx)
	if err != nil {
		t.Fatalf("Expenses: %v", err)
	}
	if len(rows) != 1 || !rows[0].Amount.Equal(dec(700)) {
		t.Fatalf("snapshot = %+v", rows)
	}
}
