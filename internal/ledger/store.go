package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"schoolfees-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the single source of truth for students and fee transactions.
//
// Every mutation holds the per-student lock for the whole write, so two
// mutations touching the same student are serialized while different
// students proceed concurrently. The student update and its transaction
// row always commit in one database transaction.
type Store struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, locks: make(map[uint]*sync.Mutex)}
}

func (s *Store) studentLock(id uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// dateOnly strips the wall-clock part; the ledger keys payments by calendar
// date, not time of day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddStudent enrolls a student with nothing paid yet.
func (s *Store) AddStudent(ctx context.Context, fullName string, class models.ClassLevel, expectedFee decimal.Decimal) (*models.Student, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, models.NewValidationError("full_name is required")
	}
	if !class.Valid() {
		return nil, models.NewValidationError("unknown class %q", class)
	}
	if expectedFee.IsNegative() {
		return nil, models.NewValidationError("expected_fee must not be negative")
	}

	st := models.Student{
		FullName:     fullName,
		Class:        class,
		ExpectedFee:  expectedFee,
		TotalFeePaid: decimal.Zero,
	}
	if err := s.db.WithContext(ctx).Create(&st).Error; err != nil {
		return nil, &models.UnavailableError{Source: "ledger", Err: err}
	}
	return &st, nil
}

// RecordPayment books one fee payment: it creates the transaction,
// increments the student's running total and stamps the transaction's
// FeeRemaining with the balance right after the payment.
func (s *Store) RecordPayment(ctx context.Context, studentID uint, amount decimal.Decimal, mode models.PaymentMode, paidOn time.Time) (*models.FeeTransaction, error) {
	if !amount.IsPositive() {
		return nil, models.NewValidationError("amount must be greater than zero")
	}
	if !mode.Valid() {
		return nil, models.NewValidationError("unknown payment mode %q", mode)
	}
	if paidOn.IsZero() {
		return nil, models.NewValidationError("payment date is required")
	}

	l := s.studentLock(studentID)
	l.Lock()
	defer l.Unlock()

	var txn models.FeeTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st models.Student
		if err := tx.First(&st, "id = ?", studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &models.NotFoundError{Entity: "student", ID: studentID}
			}
			return &models.UnavailableError{Source: "ledger", Err: err}
		}

		st.TotalFeePaid = st.TotalFeePaid.Add(amount)
		txn = models.FeeTransaction{
			StudentID:    st.ID,
			ReceiptNo:    uuid.NewString(),
			Amount:       amount,
			Mode:         mode,
			PaidOn:       dateOnly(paidOn),
			FeeRemaining: st.FeeBalance(),
		}

		if err := tx.Save(&st).Error; err != nil {
			return &models.UnavailableError{Source: "ledger", Err: err}
		}
		if err := tx.Create(&txn).Error; err != nil {
			return &models.UnavailableError{Source: "ledger", Err: err}
		}
		return verifyBalance(tx, &st)
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// FinancialRevision is a direct edit of a student's aggregate fee figures.
type FinancialRevision struct {
	ExpectedFee  decimal.Decimal
	TotalFeePaid decimal.Decimal
	Mode         models.PaymentMode
	Date         time.Time
}

// ReviseStudentFinancials overwrites ExpectedFee and TotalFeePaid and appends
// a synthetic audit transaction for the difference in TotalFeePaid, so the
// transaction log still sums to the student's totals.
//
// The synthetic transaction approximates payment history rather than
// replaying it: one correction row stands in for whatever real payments the
// operator is reconciling, and its amount may be negative. When TotalFeePaid
// is unchanged no transaction is appended.
func (s *Store) ReviseStudentFinancials(ctx context.Context, studentID uint, rev FinancialRevision) (*models.Student, error) {
	if rev.ExpectedFee.IsNegative() {
		return nil, models.NewValidationError("expected_fee must not be negative")
	}
	if rev.TotalFeePaid.IsNegative() {
		return nil, models.NewValidationError("total_fee_paid must not be negative")
	}
	if !rev.Mode.Valid() {
		return nil, models.NewValidationError("unknown payment mode %q", rev.Mode)
	}
	if rev.Date.IsZero() {
		return nil, models.NewValidationError("transaction date is required")
	}

	l := s.studentLock(studentID)
	l.Lock()
	defer l.Unlock()

	var st models.Student
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&st, "id = ?", studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &models.NotFoundError{Entity: "student", ID: studentID}
			}
			return &models.UnavailableError{Source: "ledger", Err: err}
		}

		delta := rev.TotalFeePaid.Sub(st.TotalFeePaid)
		st.ExpectedFee = rev.ExpectedFee
		st.TotalFeePaid = rev.TotalFeePaid

		if err := tx.Save(&st).Error; err != nil {
			return &models.UnavailableError{Source: "ledger", Err: err}
		}

		if !delta.IsZero() {
			txn := models.FeeTransaction{
				StudentID:    st.ID,
				ReceiptNo:    uuid.NewString(),
				Amount:       delta,
				Mode:         rev.Mode,
				PaidOn:       dateOnly(rev.Date),
				FeeRemaining: st.FeeBalance(),
				Synthetic:    true,
			}
			if err := tx.Create(&txn).Error; err != nil {
				return &models.UnavailableError{Source: "ledger", Err: err}
			}
		}
		return verifyBalance(tx, &st)
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// DeleteTransaction removes one payment and takes its amount back out of the
// owning student's running total. FeeRemaining snapshots on other
// transactions are left untouched.
func (s *Store) DeleteTransaction(ctx context.Context, txID uint) error {
	var probe models.FeeTransaction
	if err := s.db.WithContext(ctx).First(&probe, "id = ?", txID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.NotFoundError{Entity: "transaction", ID: txID}
		}
		return &models.UnavailableError{Source: "ledger", Err: err}
	}

	l := s.studentLock(probe.StudentID)
	l.Lock()
	defer l.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn models.FeeTransaction
		if err := tx.First(&txn, "id = ?", txID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &models.NotFoundError{Entity: "transaction", ID: txID}
			}
			return &models.UnavailableError{Source: "ledger", Err: err}
		}

		var st models.Student
		if err := tx.First(&st, "id = ?", txn.StudentID).Error; err != nil {
			return &models.UnavailableError{Source: "ledger", Err: err}
		}

		if err := tx.Delete(&models.FeeTransaction{}, "id = ?", txn.ID).Error; err != nil {
			return &models.UnavailableError{Source: "ledger", Err: err}
		}

		st.TotalFeePaid = st.TotalFeePaid.Sub(txn.Amount)
		if err := tx.Save(&st).Error; err != nil {
			return &models.UnavailableError{Source: "ledger", Err: err}
		}
		return verifyBalance(tx, &st)
	})
}

// DeleteStudent removes the student and every transaction it owns.
func (s *Store) DeleteStudent(ctx context.Context, studentID uint) error {
	l := s.studentLock(studentID)
	l.Lock()
	defer l.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st models.Student
		if err := tx.First(&st, "id = ?", studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &models.NotFoundError{Entity: "student", ID: studentID}
			}
			return &models.UnavailableError{Source: "ledger", Err: err}
		}

		if err := tx.Delete(&models.FeeTransaction{}, "student_id = ?", st.ID).Error; err != nil {
			return &models.UnavailableError{Source: "ledger", Err: err}
		}
		if err := tx.Delete(&models.Student{}, "id = ?", st.ID).Error; err != nil {
			return &models.UnavailableError{Source: "ledger", Err: err}
		}
		return nil
	})
}

// ListStudents returns students whose name contains the term, case
// insensitively. An empty term returns everyone, in insertion order.
func (s *Store) ListStudents(ctx context.Context, search string) ([]models.Student, error) {
	q := s.db.WithContext(ctx).Model(&models.Student{}).Order("id asc")
	if term := strings.TrimSpace(search); term != "" {
		q = q.Where("LOWER(full_name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}

	var students []models.Student
	if err := q.Find(&students).Error; err != nil {
		return nil, &models.UnavailableError{Source: "ledger", Err: err}
	}
	return students, nil
}

// History returns a student's transactions ordered by payment date, ties
// broken by insertion order.
func (s *Store) History(ctx context.Context, studentID uint) ([]models.FeeTransaction, error) {
	var st models.Student
	if err := s.db.WithContext(ctx).First(&st, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Entity: "student", ID: studentID}
		}
		return nil, &models.UnavailableError{Source: "ledger", Err: err}
	}

	var txns []models.FeeTransaction
	if err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("paid_on asc, id asc").
		Find(&txns).Error; err != nil {
		return nil, &models.UnavailableError{Source: "ledger", Err: err}
	}
	return txns, nil
}

// Students is the snapshot getter the reporting facade reads from.
func (s *Store) Students(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := s.db.WithContext(ctx).Order("id asc").Find(&students).Error; err != nil {
		return nil, &models.UnavailableError{Source: "ledger", Err: err}
	}
	return students, nil
}

// Transactions is the snapshot getter the reporting facade reads from.
func (s *Store) Transactions(ctx context.Context) ([]models.FeeTransaction, error) {
	var txns []models.FeeTransaction
	if err := s.db.WithContext(ctx).Order("id asc").Find(&txns).Error; err != nil {
		return nil, &models.UnavailableError{Source: "ledger", Err: err}
	}
	return txns, nil
}

// verifyBalance re-sums the student's live transactions inside the write
// transaction and compares against TotalFeePaid. A mismatch rolls the whole
// write back.
func verifyBalance(tx *gorm.DB, st *models.Student) error {
	var sum decimal.Decimal
	row := tx.Model(&models.FeeTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("student_id = ?", st.ID).
		Row()
	if err := row.Scan(&sum); err != nil {
		return &models.UnavailableError{Source: "ledger", Err: err}
	}
	if !sum.Equal(st.TotalFeePaid) {
		return models.NewConsistencyError(
			"student %d: total_fee_paid %s does not match transaction sum %s",
			st.ID, st.TotalFeePaid, sum)
	}
	return nil
}
