// Package report turns ledger and expense snapshots into the financial
// views the school office works from: monthly overview, class performance,
// payment-mode breakdowns, expense categories and year-over-year totals.
//
// The aggregation functions in this file are pure: they take snapshot
// slices, never touch storage, and are defined for empty input. Running one
// twice on the same snapshot yields identical output.
package report

import (
	"sort"

	"schoolfees-backend/internal/models"

	"github.com/shopspring/decimal"
)

const (
	monthKeyLayout = "2006-01"
	yearKeyLayout  = "2006"
)

// MonthlySeries is the monthly financial overview. Labels holds the sorted
// union of YYYY-MM keys seen in either source; the three series are aligned
// to it, with zero filled in for months a source has no records in.
type MonthlySeries struct {
	Labels    []string          `json:"labels"`
	Fees      []decimal.Decimal `json:"fees"`
	Expenses  []decimal.Decimal `json:"expenses"`
	NetIncome []decimal.Decimal `json:"net_income"`
}

// YearlySeries is the same aggregation bucketed by calendar year.
type YearlySeries struct {
	Years     []string          `json:"years"`
	Fees      []decimal.Decimal `json:"fees"`
	Expenses  []decimal.Decimal `json:"expenses"`
	NetIncome []decimal.Decimal `json:"net_income"`
}

type ClassPerformanceRow struct {
	Class          models.ClassLevel `json:"class"`
	TotalExpected  decimal.Decimal   `json:"total_expected"`
	TotalCollected decimal.Decimal   `json:"total_collected"`
	Pending        decimal.Decimal   `json:"pending"`
}

type ModeBreakdownRow struct {
	Mode        string          `json:"mode"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type CategoryTotal struct {
	Category     string          `json:"category"`
	TotalExpense decimal.Decimal `json:"total_expense"`
}

// bucketize sums both sources into period buckets keyed by the given time
// layout and aligns them over the sorted union of keys.
func bucketize(txs []models.FeeTransaction, exps []models.Expense, layout string) ([]string, []decimal.Decimal, []decimal.Decimal, []decimal.Decimal) {
	feeSums := make(map[string]decimal.Decimal)
	for _, t := range txs {
		key := t.PaidOn.Format(layout)
		feeSums[key] = feeSums[key].Add(t.Amount)
	}

	expSums := make(map[string]decimal.Decimal)
	for _, e := range exps {
		key := e.Date.Format(layout)
		expSums[key] = expSums[key].Add(e.Amount)
	}

	seen := make(map[string]bool, len(feeSums)+len(expSums))
	labels := make([]string, 0, len(feeSums)+len(expSums))
	for key := range feeSums {
		if !seen[key] {
			seen[key] = true
			labels = append(labels, key)
		}
	}
	for key := range expSums {
		if !seen[key] {
			seen[key] = true
			labels = append(labels, key)
		}
	}
	// zero-padded keys sort chronologically
	sort.Strings(labels)

	fees := make([]decimal.Decimal, len(labels))
	expenses := make([]decimal.Decimal, len(labels))
	net := make([]decimal.Decimal, len(labels))
	for i, key := range labels {
		fees[i] = feeSums[key]
		expenses[i] = expSums[key]
		net[i] = fees[i].Sub(expenses[i])
	}
	return labels, fees, expenses, net
}

// MonthlyOverview buckets fee transactions and expenses by YYYY-MM. A month
// present in only one source still gets a label, with 0 in the other series.
func MonthlyOverview(txs []models.FeeTransaction, exps []models.Expense) MonthlySeries {
	labels, fees, expenses, net := bucketize(txs, exps, monthKeyLayout)
	return MonthlySeries{Labels: labels, Fees: fees, Expenses: expenses, NetIncome: net}
}

// YearlyOverview buckets the same way by YYYY.
func YearlyOverview(txs []models.FeeTransaction, exps []models.Expense) YearlySeries {
	labels, fees, expenses, net := bucketize(txs, exps, yearKeyLayout)
	return YearlySeries{Years: labels, Fees: fees, Expenses: expenses, NetIncome: net}
}

// FilterMonths restricts a monthly series to the inclusive [from, to] month
// range. Bounds are YYYY-MM strings compared lexicographically; an empty
// bound leaves that side open.
func FilterMonths(s MonthlySeries, from, to string) MonthlySeries {
	out := MonthlySeries{
		Labels:    make([]string, 0, len(s.Labels)),
		Fees:      make([]decimal.Decimal, 0, len(s.Labels)),
		Expenses:  make([]decimal.Decimal, 0, len(s.Labels)),
		NetIncome: make([]decimal.Decimal, 0, len(s.Labels)),
	}
	for i, month := range s.Labels {
		if from != "" && month < from {
			continue
		}
		if to != "" && month > to {
			continue
		}
		out.Labels = append(out.Labels, month)
		out.Fees = append(out.Fees, s.Fees[i])
		out.Expenses = append(out.Expenses, s.Expenses[i])
		out.NetIncome = append(out.NetIncome, s.NetIncome[i])
	}
	return out
}

// ClassPerformance groups students by class. Rows follow the canonical
// Nursery-to-8th order; classes with no students are omitted, not
// zero-filled.
func ClassPerformance(students []models.Student) []ClassPerformanceRow {
	type sums struct {
		expected  decimal.Decimal
		collected decimal.Decimal
	}
	byClass := make(map[models.ClassLevel]*sums)
	for i := range students {
		st := &students[i]
		s, ok := byClass[st.Class]
		if !ok {
			s = &sums{}
			byClass[st.Class] = s
		}
		s.expected = s.expected.Add(st.ExpectedFee)
		s.collected = s.collected.Add(st.TotalFeePaid)
	}

	rows := make([]ClassPerformanceRow, 0, len(byClass))
	for _, cl := range models.ClassLevels {
		s, ok := byClass[cl]
		if !ok {
			continue
		}
		rows = append(rows, ClassPerformanceRow{
			Class:          cl,
			TotalExpected:  s.expected,
			TotalCollected: s.collected,
			Pending:        s.expected.Sub(s.collected),
		})
	}
	return rows
}

// FeePaymentModes groups fee transactions by payment mode. Modes with no
// transactions contribute no row.
func FeePaymentModes(txs []models.FeeTransaction) []ModeBreakdownRow {
	counts := make(map[models.PaymentMode]int)
	totals := make(map[models.PaymentMode]decimal.Decimal)
	for _, t := range txs {
		counts[t.Mode]++
		totals[t.Mode] = totals[t.Mode].Add(t.Amount)
	}

	order := []models.PaymentMode{models.PaymentModeCash, models.PaymentModeUPI, models.PaymentModeCard}
	rows := make([]ModeBreakdownRow, 0, len(counts))
	for _, m := range order {
		if counts[m] == 0 {
			continue
		}
		rows = append(rows, ModeBreakdownRow{Mode: string(m), Count: counts[m], TotalAmount: totals[m]})
	}
	return rows
}

// ExpensePaymentModes is the expense-side grouping; expenses only know Cash
// and UPI.
func ExpensePaymentModes(exps []models.Expense) []ModeBreakdownRow {
	counts := make(map[models.ExpenseMode]int)
	totals := make(map[models.ExpenseMode]decimal.Decimal)
	for _, e := range exps {
		counts[e.Mode]++
		totals[e.Mode] = totals[e.Mode].Add(e.Amount)
	}

	order := []models.ExpenseMode{models.ExpenseModeCash, models.ExpenseModeUPI}
	rows := make([]ModeBreakdownRow, 0, len(counts))
	for _, m := range order {
		if counts[m] == 0 {
			continue
		}
		rows = append(rows, ModeBreakdownRow{Mode: string(m), Count: counts[m], TotalAmount: totals[m]})
	}
	return rows
}

// ExpenseCategories totals expenses per subject, in order of first
// appearance in the snapshot. Categories without expenses are omitted.
func ExpenseCategories(exps []models.Expense) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	for _, e := range exps {
		if _, ok := totals[e.Subject]; !ok {
			order = append(order, e.Subject)
		}
		totals[e.Subject] = totals[e.Subject].Add(e.Amount)
	}

	rows := make([]CategoryTotal, 0, len(order))
	for _, subject := range order {
		rows = append(rows, CategoryTotal{Category: subject, TotalExpense: totals[subject]})
	}
	return rows
}
