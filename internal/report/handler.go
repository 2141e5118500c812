package report

import (
	"github.com/gofiber/fiber/v2"
)

// GET /api/reports/monthly-financial?from=2025-02&to=2025-03
func MonthlyFinancialHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := svc.MonthlyFinancial(c.Context(), c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}
		return c.JSON(rep)
	}
}

// GET /api/reports/class-performance
func ClassPerformanceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := svc.ClassPerformance(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(rep)
	}
}

// GET /api/reports/payment-mode
func PaymentModeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := svc.PaymentModes(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(rep)
	}
}

// GET /api/reports/expense-categories
func ExpenseCategoriesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := svc.ExpenseCategoryTotals(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(rep)
	}
}

// GET /api/reports/yearly
func YearlyHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := svc.Yearly(c.Context())
		if err != nil {
			return err
		}
		return c.JSON(rep)
	}
}
