package expense

import (
	"context"
	"errors"
	"strings"
	"time"

	"schoolfees-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store holds operating expenses. Expenses carry no derived state, so this
// is plain CRUD with the validation rules applied up front.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Input carries every replaceable field of an expense.
type Input struct {
	Amount      decimal.Decimal
	Mode        models.ExpenseMode
	Date        time.Time
	Description string
	Subject     string
}

func (in *Input) validate() error {
	if !in.Amount.IsPositive() {
		return models.NewValidationError("amount must be greater than zero")
	}
	if !in.Mode.Valid() {
		return models.NewValidationError("unknown expense mode %q", in.Mode)
	}
	if in.Date.IsZero() {
		return models.NewValidationError("date is required")
	}
	if strings.TrimSpace(in.Subject) == "" {
		return models.NewValidationError("subject is required")
	}
	return nil
}

func (s *Store) Add(ctx context.Context, in Input) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	exp := models.Expense{
		Amount:      in.Amount,
		Mode:        in.Mode,
		Date:        dateOnly(in.Date),
		Description: in.Description,
		Subject:     strings.TrimSpace(in.Subject),
	}
	if err := s.db.WithContext(ctx).Create(&exp).Error; err != nil {
		return nil, &models.UnavailableError{Source: "expenses", Err: err}
	}
	return &exp, nil
}

// Update replaces every field of the expense.
func (s *Store) Update(ctx context.Context, id uint, in Input) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var exp models.Expense
	if err := s.db.WithContext(ctx).First(&exp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Entity: "expense", ID: id}
		}
		return nil, &models.UnavailableError{Source: "expenses", Err: err}
	}

	exp.Amount = in.Amount
	exp.Mode = in.Mode
	exp.Date = dateOnly(in.Date)
	exp.Description = in.Description
	exp.Subject = strings.TrimSpace(in.Subject)

	if err := s.db.WithContext(ctx).Save(&exp).Error; err != nil {
		return nil, &models.UnavailableError{Source: "expenses", Err: err}
	}
	return &exp, nil
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Expense{}, "id = ?", id)
	if res.Error != nil {
		return &models.UnavailableError{Source: "expenses", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Entity: "expense", ID: id}
	}
	return nil
}

// Filter narrows List. Zero values mean "no constraint".
type Filter struct {
	From    time.Time
	To      time.Time
	Subject string
}

func (s *Store) List(ctx context.Context, f Filter) ([]models.Expense, error) {
	q := s.db.WithContext(ctx).Model(&models.Expense{}).Order("date asc, id asc")
	if !f.From.IsZero() {
		q = q.Where("date >= ?", dateOnly(f.From))
	}
	if !f.To.IsZero() {
		q = q.Where("date <= ?", dateOnly(f.To))
	}
	if f.Subject != "" {
		q = q.Where("subject = ?", f.Subject)
	}

	var rows []models.Expense
	if err := q.Find(&rows).Error; err != nil {
		return nil, &models.UnavailableError{Source: "expenses", Err: err}
	}
	return rows, nil
}

// Expenses is the snapshot getter the reporting facade reads from.
func (s *Store) Expenses(ctx context.Context) ([]models.Expense, error) {
	var rows []models.Expense
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, &models.UnavailableError{Source: "expenses", Err: err}
	}
	return rows, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
