package main

import (
	"errors"
	"strings"

	"schoolfees-backend/internal/audit"
	"schoolfees-backend/internal/auth"
	"schoolfees-backend/internal/config"
	"schoolfees-backend/internal/database"
	"schoolfees-backend/internal/expense"
	"schoolfees-backend/internal/importer"
	"schoolfees-backend/internal/ledger"
	"schoolfees-backend/internal/models"
	"schoolfees-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/shopspring/decimal"
)

// errorHandler maps the domain error taxonomy onto HTTP statuses in one
// place, so handlers just return errors.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	var status int
	switch {
	case models.IsValidation(err):
		status = fiber.StatusBadRequest
	case models.IsNotFound(err):
		status = fiber.StatusNotFound
	case models.IsUnavailable(err):
		status = fiber.StatusServiceUnavailable
	default:
		// ConsistencyError and everything unexpected
		config.Logger().WithError(err).Error("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unexpected server error",
		})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func main() {
	// amounts must serialize as JSON numbers, the way the frontend reads them
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()
	database.Init(cfg)

	ledgerStore := ledger.NewStore(database.DB)
	expenseStore := expense.NewStore(database.DB)
	reportSvc := report.NewService(ledgerStore, expenseStore)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Students & fee ledger
	protected.Post("/students/", ledger.CreateStudentHandler(ledgerStore))
	protected.Get("/students/", ledger.ListStudentsHandler(ledgerStore))
	protected.Put("/students/:id", ledger.UpdateStudentHandler(ledgerStore))
	protected.Delete("/students/:id", ledger.DeleteStudentHandler(ledgerStore))
	protected.Post("/students/:id/payments", ledger.RecordPaymentHandler(ledgerStore))
	protected.Get("/students/history/:id", ledger.HistoryHandler(ledgerStore))
	protected.Delete("/students/transactions/:id", ledger.DeleteTransactionHandler(ledgerStore))

	// Bulk enrollment upload
	protected.Post("/bulk-upload/", importer.BulkUploadHandler(ledgerStore))

	// Expenses
	protected.Post("/expenses/", expense.CreateExpenseHandler(expenseStore))
	protected.Get("/expenses/", expense.ListExpensesHandler(expenseStore))
	protected.Put("/expenses/:id", expense.UpdateExpenseHandler(expenseStore))
	protected.Delete("/expenses/:id", expense.DeleteExpenseHandler(expenseStore))

	// Reports
	protected.Get("/reports/monthly-financial", report.MonthlyFinancialHandler(reportSvc))
	protected.Get("/reports/class-performance", report.ClassPerformanceHandler(reportSvc))
	protected.Get("/reports/payment-mode", report.PaymentModeHandler(reportSvc))
	protected.Get("/reports/expense-categories", report.ExpenseCategoriesHandler(reportSvc))
	protected.Get("/reports/yearly", report.YearlyHandler(reportSvc))

	// Audit trail
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	config.Logger().WithField("port", cfg.HTTPPort).Info("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		config.Logger().WithError(err).Fatal("server stopped")
	}
}
