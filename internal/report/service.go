package report

import (
	"context"
	"time"

	"schoolfees-backend/internal/config"
	"schoolfees-backend/internal/models"
)

// LedgerSource is the snapshot view of the ledger store.
type LedgerSource interface {
	Students(ctx context.Context) ([]models.Student, error)
	Transactions(ctx context.Context) ([]models.FeeTransaction, error)
}

// ExpenseSource is the snapshot view of the expense store.
type ExpenseSource interface {
	Expenses(ctx context.Context) ([]models.Expense, error)
}

// Service is the reporting facade. It loads the snapshots a report needs
// and hands them to the pure aggregation functions.
//
// Reports drawing on both stores degrade instead of failing when one store
// is unreachable: the surviving source is aggregated and the failed one is
// named in Degraded. Only when every needed source is down does a report
// return UnavailableError. An empty store is not an error; it produces an
// empty result.
type Service struct {
	ledger   LedgerSource
	expenses ExpenseSource
}

func NewService(ledger LedgerSource, expenses ExpenseSource) *Service {
	return &Service{ledger: ledger, expenses: expenses}
}

type MonthlyReport struct {
	MonthlySeries
	Degraded []string `json:"degraded,omitempty"`
}

type YearlyReport struct {
	YearlySeries
	Degraded []string `json:"degraded,omitempty"`
}

type ClassPerformanceReport struct {
	Rows []ClassPerformanceRow `json:"class_performance"`
}

type PaymentModeReport struct {
	FeeModes     []ModeBreakdownRow `json:"fee_payment_modes"`
	ExpenseModes []ModeBreakdownRow `json:"expense_payment_modes"`
	Degraded     []string           `json:"degraded,omitempty"`
}

type ExpenseCategoryReport struct {
	Categories []CategoryTotal `json:"expense_categories"`
}

// bothSources loads the transaction and expense snapshots, tolerating the
// loss of one of them.
func (s *Service) bothSources(ctx context.Context) ([]models.FeeTransaction, []models.Expense, []string, error) {
	txs, errT := s.ledger.Transactions(ctx)
	exps, errE := s.expenses.Expenses(ctx)

	if errT != nil && errE != nil {
		return nil, nil, nil, errT
	}

	var degraded []string
	if errT != nil {
		config.Logger().WithError(errT).Warn("ledger snapshot unavailable, report degraded")
		degraded = append(degraded, "ledger")
		txs = nil
	}
	if errE != nil {
		config.Logger().WithError(errE).Warn("expense snapshot unavailable, report degraded")
		degraded = append(degraded, "expenses")
		exps = nil
	}
	return txs, exps, degraded, nil
}

// MonthlyFinancial builds the monthly overview, optionally restricted to an
// inclusive [from, to] month range ("2025-02" style bounds).
func (s *Service) MonthlyFinancial(ctx context.Context, from, to string) (*MonthlyReport, error) {
	if err := validateMonthBound(from, "from"); err != nil {
		return nil, err
	}
	if err := validateMonthBound(to, "to"); err != nil {
		return nil, err
	}

	txs, exps, degraded, err := s.bothSources(ctx)
	if err != nil {
		return nil, err
	}

	series := FilterMonths(MonthlyOverview(txs, exps), from, to)
	return &MonthlyReport{MonthlySeries: series, Degraded: degraded}, nil
}

// Yearly builds the year-over-year comparison.
func (s *Service) Yearly(ctx context.Context) (*YearlyReport, error) {
	txs, exps, degraded, err := s.bothSources(ctx)
	if err != nil {
		return nil, err
	}
	return &YearlyReport{YearlySeries: YearlyOverview(txs, exps), Degraded: degraded}, nil
}

// ClassPerformanceReport needs only the student snapshot; there is nothing
// to degrade to when the ledger is down.
func (s *Service) ClassPerformance(ctx context.Context) (*ClassPerformanceReport, error) {
	students, err := s.ledger.Students(ctx)
	if err != nil {
		return nil, err
	}
	return &ClassPerformanceReport{Rows: ClassPerformance(students)}, nil
}

// PaymentModes builds both mode breakdowns, degrading per side.
func (s *Service) PaymentModes(ctx context.Context) (*PaymentModeReport, error) {
	txs, exps, degraded, err := s.bothSources(ctx)
	if err != nil {
		return nil, err
	}
	return &PaymentModeReport{
		FeeModes:     FeePaymentModes(txs),
		ExpenseModes: ExpensePaymentModes(exps),
		Degraded:     degraded,
	}, nil
}

// ExpenseCategoryTotals needs only the expense snapshot.
func (s *Service) ExpenseCategoryTotals(ctx context.Context) (*ExpenseCategoryReport, error) {
	exps, err := s.expenses.Expenses(ctx)
	if err != nil {
		return nil, err
	}
	return &ExpenseCategoryReport{Categories: ExpenseCategories(exps)}, nil
}

func validateMonthBound(bound, name string) error {
	if bound == "" {
		return nil
	}
	if _, err := time.Parse(monthKeyLayout, bound); err != nil {
		return models.NewValidationError("%s must be in 'YYYY-MM' format", name)
	}
	return nil
}
