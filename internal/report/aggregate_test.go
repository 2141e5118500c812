package report

import (
	"reflect"
	"testing"
	"time"

	"schoolfees-backend/internal/models"

	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func tx(amount int64, mode models.PaymentMode, y int, m time.Month, d int) models.FeeTransaction {
	return models.FeeTransaction{
		Amount: dec(amount),
		Mode:   mode,
		PaidOn: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

func exp(amount int64, mode models.ExpenseMode, subject string, y int, m time.Month, d int) models.Expense {
	return models.Expense{
		Amount:  dec(amount),
		Mode:    mode,
		Subject: subject,
		Date:    time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

func assertDecimals(t *testing.T, name string, got []decimal.Decimal, want ...int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d values, want %d", name, len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(dec(want[i])) {
			t.Errorf("%s[%d] = %s, want %d", name, i, got[i], want[i])
		}
	}
}

func TestMonthlyOverviewUnionAndZeroFill(t *testing.T) {
	txs := []models.FeeTransaction{
		tx(3000, models.PaymentModeCash, 2025, time.January, 10),
		tx(2000, models.PaymentModeUPI, 2025, time.January, 25),
		tx(4000, models.PaymentModeCard, 2025, time.March, 5),
	}
	exps := []models.Expense{
		exp(1000, models.ExpenseModeCash, models.SubjectStaffSalary, 2025, time.January, 31),
		exp(500, models.ExpenseModeUPI, models.SubjectLandRent, 2025, time.February, 1),
	}

	got := MonthlyOverview(txs, exps)

	wantLabels := []string{"2025-01", "2025-02", "2025-03"}
	if !reflect.DeepEqual(got.Labels, wantLabels) {
		t.Fatalf("Labels = %v, want %v", got.Labels, wantLabels)
	}
	assertDecimals(t, "Fees", got.Fees, 5000, 0, 4000)
	assertDecimals(t, "Expenses", got.Expenses, 1000, 500, 0)
	assertDecimals(t, "NetIncome", got.NetIncome, 4000, -500, 4000)
}

func TestMonthlyOverviewEmptyInputs(t *testing.T) {
	got := MonthlyOverview(nil, nil)
	if len(got.Labels) != 0 || len(got.Fees) != 0 || len(got.Expenses) != 0 || len(got.NetIncome) != 0 {
		t.Fatalf("empty input must yield empty series, got %+v", got)
	}
}

func TestMonthlyOverviewIdempotent(t *testing.T) {
	txs := []models.FeeTransaction{
		tx(100, models.PaymentModeCash, 2024, time.December, 1),
		tx(200, models.PaymentModeUPI, 2025, time.January, 1),
	}
	exps := []models.Expense{
		exp(50, models.ExpenseModeCash, models.SubjectHouseExpense, 2024, time.December, 15),
	}

	first := MonthlyOverview(txs, exps)
	second := MonthlyOverview(txs, exps)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same snapshot produced different series:\n%+v\n%+v", first, second)
	}
}

func TestFilterMonths(t *testing.T) {
	series := MonthlyOverview([]models.FeeTransaction{
		tx(1, models.PaymentModeCash, 2025, time.January, 1),
		tx(2, models.PaymentModeCash, 2025, time.February, 1),
		tx(3, models.PaymentModeCash, 2025, time.March, 1),
		tx(4, models.PaymentModeCash, 2025, time.April, 1),
	}, nil)

	cases := []struct {
		name string
		from string
		to   string
		want []string
	}{
		{"inclusive range", "2025-02", "2025-03", []string{"2025-02", "2025-03"}},
		{"open lower bound", "", "2025-02", []string{"2025-01", "2025-02"}},
		{"open upper bound", "2025-03", "", []string{"2025-03", "2025-04"}},
		{"no bounds", "", "", []string{"2025-01", "2025-02", "2025-03", "2025-04"}},
		{"single month", "2025-02", "2025-02", []string{"2025-02"}},
		{"range outside data", "2026-01", "2026-12", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterMonths(series, tc.from, tc.to)
			if !reflect.DeepEqual(got.Labels, tc.want) {
				t.Fatalf("Labels = %v, want %v", got.Labels, tc.want)
			}
			if len(got.Fees) != len(got.Labels) || len(got.Expenses) != len(got.Labels) || len(got.NetIncome) != len(got.Labels) {
				t.Fatalf("series lengths out of step with labels: %+v", got)
			}
		})
	}
}

func TestYearlyOverview(t *testing.T) {
	txs := []models.FeeTransaction{
		tx(10000, models.PaymentModeCash, 2024, time.June, 1),
		tx(5000, models.PaymentModeUPI, 2025, time.January, 1),
	}
	exps := []models.Expense{
		exp(4000, models.ExpenseModeCash, models.SubjectStaffSalary, 2024, time.July, 1),
		exp(1000, models.ExpenseModeUPI, models.SubjectCarLoan, 2025, time.February, 1),
	}

	got := YearlyOverview(txs, exps)

	if !reflect.DeepEqual(got.Years, []string{"2024", "2025"}) {
		t.Fatalf("Years = %v", got.Years)
	}
	assertDecimals(t, "Fees", got.Fees, 10000, 5000)
	assertDecimals(t, "Expenses", got.Expenses, 4000, 1000)
	assertDecimals(t, "NetIncome", got.NetIncome, 6000, 4000)
}

func TestClassPerformance(t *testing.T) {
	students := []models.Student{
		{FullName: "A", Class: models.Class3rd, ExpectedFee: dec(10000), TotalFeePaid: dec(6000)},
		{FullName: "B", Class: models.Class3rd, ExpectedFee: dec(10000), TotalFeePaid: dec(10000)},
		{FullName: "C", Class: models.ClassNursery, ExpectedFee: dec(5000), TotalFeePaid: dec(0)},
	}

	rows := ClassPerformance(students)

	if len(rows) != 2 {
		t.Fatalf("classes without students must be omitted, got %d rows", len(rows))
	}
	// canonical order: Nursery before 3rd
	if rows[0].Class != models.ClassNursery || rows[1].Class != models.Class3rd {
		t.Fatalf("rows out of canonical class order: %v, %v", rows[0].Class, rows[1].Class)
	}
	if !rows[0].Pending.Equal(dec(5000)) {
		t.Errorf("Nursery pending = %s, want 5000", rows[0].Pending)
	}
	third := rows[1]
	if !third.TotalExpected.Equal(dec(20000)) || !third.TotalCollected.Equal(dec(16000)) || !third.Pending.Equal(dec(4000)) {
		t.Errorf("3rd sums = %s/%s/%s, want 20000/16000/4000",
			third.TotalExpected, third.TotalCollected, third.Pending)
	}
}

func TestClassPerformanceEmpty(t *testing.T) {
	if rows := ClassPerformance(nil); len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestFeePaymentModes(t *testing.T) {
	txs := []models.FeeTransaction{
		tx(100, models.PaymentModeUPI, 2025, time.January, 1),
		tx(200, models.PaymentModeCash, 2025, time.January, 2),
		tx(300, models.PaymentModeCash, 2025, time.January, 3),
	}

	rows := FeePaymentModes(txs)

	if len(rows) != 2 {
		t.Fatalf("modes without transactions must be omitted, got %d rows", len(rows))
	}
	if rows[0].Mode != string(models.PaymentModeCash) || rows[0].Count != 2 || !rows[0].TotalAmount.Equal(dec(500)) {
		t.Errorf("Cash row = %+v", rows[0])
	}
	if rows[1].Mode != string(models.PaymentModeUPI) || rows[1].Count != 1 || !rows[1].TotalAmount.Equal(dec(100)) {
		t.Errorf("UPI row = %+v", rows[1])
	}
}

func TestExpensePaymentModes(t *testing.T) {
	exps := []models.Expense{
		exp(700, models.ExpenseModeUPI, models.SubjectLandRent, 2025, time.January, 1),
		exp(300, models.ExpenseModeUPI, models.SubjectHouseLoan, 2025, time.January, 2),
	}

	rows := ExpensePaymentModes(exps)

	if len(rows) != 1 {
		t.Fatalf("expected only the UPI row, got %d rows", len(rows))
	}
	if rows[0].Mode != string(models.ExpenseModeUPI) || rows[0].Count != 2 || !rows[0].TotalAmount.Equal(dec(1000)) {
		t.Errorf("UPI row = %+v", rows[0])
	}
}

func TestExpenseCategories(t *testing.T) {
	exps := []models.Expense{
		exp(5000, models.ExpenseModeCash, models.SubjectStaffSalary, 2025, time.January, 1),
		exp(2000, models.ExpenseModeUPI, models.SubjectLandRent, 2025, time.January, 5),
		exp(3000, models.ExpenseModeCash, models.SubjectStaffSalary, 2025, time.February, 1),
	}

	rows := ExpenseCategories(exps)

	if len(rows) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(rows))
	}
	if rows[0].Category != models.SubjectStaffSalary || !rows[0].TotalExpense.Equal(dec(8000)) {
		t.Errorf("first category = %+v, want Staff Salary 8000", rows[0])
	}
	if rows[1].Category != models.SubjectLandRent || !rows[1].TotalExpense.Equal(dec(2000)) {
		t.Errorf("second category = %+v, want Land Rent 2000", rows[1])
	}
}

func TestExpenseCategoriesFreeTextSubjects(t *testing.T) {
	exps := []models.Expense{
		exp(100, models.ExpenseModeCash, "Sports Day", 2025, time.March, 1),
		exp(50, models.ExpenseModeCash, "Sports Day", 2025, time.March, 2),
	}

	rows := ExpenseCategories(exps)
	if len(rows) != 1 || rows[0].Category != "Sports Day" || !rows[0].TotalExpense.Equal(dec(150)) {
		t.Fatalf("free-text subject not totalled: %+v", rows)
	}
}
