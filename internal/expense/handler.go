package expense

import (
	"fmt"
	"time"

	"schoolfees-backend/internal/audit"
	"schoolfees-backend/internal/models"
	"schoolfees-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Mode        string          `json:"mode" validate:"required"`
	Date        string          `json:"date" validate:"required"` // "2025-12-09"
	Description string          `json:"description"`
	Subject     string          `json:"subject" validate:"required"`
}

type ExpenseResponse struct {
	ID          uint               `json:"id"`
	Amount      decimal.Decimal    `json:"amount"`
	Mode        models.ExpenseMode `json:"mode"`
	Date        string             `json:"date"`
	Description string             `json:"description"`
	Subject     string             `json:"subject"`
}

func newExpenseResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Mode:        e.Mode,
		Date:        e.Date.Format("2006-01-02"),
		Description: e.Description,
		Subject:     e.Subject,
	}
}

func (r *ExpenseRequest) toInput() (Input, error) {
	d, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return Input{}, models.NewValidationError("date must be in 'YYYY-MM-DD' format")
	}
	return Input{
		Amount:      r.Amount,
		Mode:        models.ExpenseMode(r.Mode),
		Date:        d,
		Description: r.Description,
		Subject:     r.Subject,
	}, nil
}

// POST /api/expenses/
func CreateExpenseHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return models.NewValidationError("invalid request body")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		in, err := body.toInput()
		if err != nil {
			return err
		}

		exp, err := store.Add(c.Context(), in)
		if err != nil {
			return err
		}

		audit.Record(c, models.AuditActionCreate, "expense", exp.ID,
			fmt.Sprintf("Expense added: %s - %s", exp.Subject, exp.Amount), nil, exp)

		return c.Status(fiber.StatusCreated).JSON(newExpenseResponse(exp))
	}
}

// GET /api/expenses/?from=&to=&subject=
func ListExpensesHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f Filter

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return models.NewValidationError("from must be in 'YYYY-MM-DD' format")
			}
			f.From = from
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return models.NewValidationError("to must be in 'YYYY-MM-DD' format")
			}
			f.To = to
		}
		f.Subject = c.Query("subject")

		rows, err := store.List(c.Context(), f)
		if err != nil {
			return err
		}

		res := make([]ExpenseResponse, 0, len(rows))
		for i := range rows {
			res = append(res, newExpenseResponse(&rows[i]))
		}
		return c.JSON(fiber.Map{"expenses": res})
	}
}

// PUT /api/expenses/:id
func UpdateExpenseHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return models.NewValidationError("invalid id")
		}

		var body ExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return models.NewValidationError("invalid request body")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		in, err := body.toInput()
		if err != nil {
			return err
		}

		exp, err := store.Update(c.Context(), id, in)
		if err != nil {
			return err
		}

		audit.Record(c, models.AuditActionUpdate, "expense", exp.ID,
			fmt.Sprintf("Expense updated: %s - %s", exp.Subject, exp.Amount), nil, exp)

		return c.JSON(newExpenseResponse(exp))
	}
}

// DELETE /api/expenses/:id
func DeleteExpenseHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return models.NewValidationError("invalid id")
		}

		if err := store.Delete(c.Context(), id); err != nil {
			return err
		}

		audit.Record(c, models.AuditActionDelete, "expense", id,
			fmt.Sprintf("Expense %d deleted", id), nil, nil)

		return c.SendStatus(fiber.StatusNoContent)
	}
}
