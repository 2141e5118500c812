package ledger

import (
	"fmt"
	"time"

	"schoolfees-backend/internal/audit"
	"schoolfees-backend/internal/config"
	"schoolfees-backend/internal/models"
	"schoolfees-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateStudentRequest struct {
	FullName    string          `json:"full_name" validate:"required"`
	Class       string          `json:"class" validate:"required"`
	ExpectedFee decimal.Decimal `json:"expected_fee"`
}

type UpdateStudentRequest struct {
	ExpectedFee  decimal.Decimal `json:"expected_fee"`
	TotalFeePaid decimal.Decimal `json:"total_fee_paid"`
	Mode         string          `json:"mode" validate:"required"`
	Timestamp    string          `json:"timestamp" validate:"required"` // "2025-03-01"
}

type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Mode      string          `json:"mode" validate:"required"`
	Timestamp string          `json:"timestamp" validate:"required"`
}

type StudentResponse struct {
	ID           uint              `json:"id"`
	FullName     string            `json:"full_name"`
	Class        models.ClassLevel `json:"class"`
	ExpectedFee  decimal.Decimal   `json:"expected_fee"`
	TotalFeePaid decimal.Decimal   `json:"total_fee_paid"`
	FeeBalance   decimal.Decimal   `json:"fee_balance"`
}

type TransactionResponse struct {
	ID           uint               `json:"id"`
	StudentID    uint               `json:"student_id"`
	ReceiptNo    string             `json:"receipt_no"`
	Amount       decimal.Decimal    `json:"amount"`
	Mode         models.PaymentMode `json:"mode"`
	Timestamp    string             `json:"timestamp"`
	FeeRemaining decimal.Decimal    `json:"fee_remaining"`
	Synthetic    bool               `json:"synthetic"`
}

func newStudentResponse(st *models.Student) StudentResponse {
	return StudentResponse{
		ID:           st.ID,
		FullName:     st.FullName,
		Class:        st.Class,
		ExpectedFee:  st.ExpectedFee,
		TotalFeePaid: st.TotalFeePaid,
		FeeBalance:   st.FeeBalance(),
	}
}

func newTransactionResponse(t *models.FeeTransaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID,
		StudentID:    t.StudentID,
		ReceiptNo:    t.ReceiptNo,
		Amount:       t.Amount,
		Mode:         t.Mode,
		Timestamp:    t.PaidOn.Format("2006-01-02"),
		FeeRemaining: t.FeeRemaining,
		Synthetic:    t.Synthetic,
	}
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params(name), &id); err != nil || id == 0 {
		return 0, models.NewValidationError("invalid %s", name)
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, models.NewValidationError("date must be in 'YYYY-MM-DD' format")
	}
	return d, nil
}

// POST /api/students/
func CreateStudentHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateStudentRequest
		if err := c.BodyParser(&body); err != nil {
			return models.NewValidationError("invalid request body")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		st, err := store.AddStudent(c.Context(), body.FullName, models.ClassLevel(body.Class), body.ExpectedFee)
		if err != nil {
			return err
		}

		audit.Record(c, models.AuditActionCreate, "student", st.ID,
			fmt.Sprintf("Student enrolled: %s (%s)", st.FullName, st.Class), nil, st)

		return c.Status(fiber.StatusCreated).JSON(newStudentResponse(st))
	}
}

// GET /api/students/?search=
func ListStudentsHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		students, err := store.ListStudents(c.Context(), c.Query("search"))
		if err != nil {
			return err
		}

		res := make([]StudentResponse, 0, len(students))
		for i := range students {
			res = append(res, newStudentResponse(&students[i]))
		}
		return c.JSON(fiber.Map{"students": res})
	}
}

// PUT /api/students/:id
//
// Direct edit of the aggregate fee figures; the store appends a synthetic
// audit transaction so the ledger keeps reconciling.
func UpdateStudentHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateStudentRequest
		if err := c.BodyParser(&body); err != nil {
			return models.NewValidationError("invalid request body")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		date, err := parseDate(body.Timestamp)
		if err != nil {
			return err
		}

		st, err := store.ReviseStudentFinancials(c.Context(), id, FinancialRevision{
			ExpectedFee:  body.ExpectedFee,
			TotalFeePaid: body.TotalFeePaid,
			Mode:         models.PaymentMode(body.Mode),
			Date:         date,
		})
		if err != nil {
			return err
		}

		audit.Record(c, models.AuditActionUpdate, "student", st.ID,
			fmt.Sprintf("Student financials revised: %s", st.FullName), nil, st)

		return c.JSON(newStudentResponse(st))
	}
}

// DELETE /api/students/:id
func DeleteStudentHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}

		if err := store.DeleteStudent(c.Context(), id); err != nil {
			return err
		}

		audit.Record(c, models.AuditActionDelete, "student", id,
			fmt.Sprintf("Student %d deleted with transaction history", id), nil, nil)

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/students/:id/payments
func RecordPaymentHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}

		var body RecordPaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return models.NewValidationError("invalid request body")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		date, err := parseDate(body.Timestamp)
		if err != nil {
			return err
		}

		txn, err := store.RecordPayment(c.Context(), id, body.Amount, models.PaymentMode(body.Mode), date)
		if err != nil {
			return err
		}

		audit.Record(c, models.AuditActionCreate, "fee_transaction", txn.ID,
			fmt.Sprintf("Payment of %s recorded for student %d", txn.Amount, txn.StudentID), nil, txn)

		return c.Status(fiber.StatusCreated).JSON(newTransactionResponse(txn))
	}
}

// GET /api/students/history/:id
func HistoryHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}

		txns, err := store.History(c.Context(), id)
		if err != nil {
			return err
		}

		res := make([]TransactionResponse, 0, len(txns))
		for i := range txns {
			res = append(res, newTransactionResponse(&txns[i]))
		}
		return c.JSON(fiber.Map{"history": res})
	}
}

// DELETE /api/students/transactions/:id
func DeleteTransactionHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}

		if err := store.DeleteTransaction(c.Context(), id); err != nil {
			return err
		}

		config.Logger().WithField("transaction_id", id).Info("fee transaction deleted")
		audit.Record(c, models.AuditActionDelete, "fee_transaction", id,
			fmt.Sprintf("Transaction %d deleted, student balance recomputed", id), nil, nil)

		return c.SendStatus(fiber.StatusNoContent)
	}
}
