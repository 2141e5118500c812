package importer

import (
	"fmt"
	"strings"

	"schoolfees-backend/internal/config"
	"schoolfees-backend/internal/ledger"
	"schoolfees-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type BulkUploadResponse struct {
	Message  string   `json:"message"`
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// POST /api/bulk-upload/  (multipart form, field "file", .xlsx only)
func BulkUploadHandler(store *ledger.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return models.NewValidationError("file field is required")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return models.NewValidationError("only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return models.NewValidationError("could not open uploaded file")
		}
		defer file.Close()

		imported, rowErrs, err := ImportStudents(c.Context(), file, store)
		if err != nil {
			return err
		}

		config.Logger().WithFields(logrus.Fields{
			"imported": imported,
			"errors":   len(rowErrs),
		}).Info("bulk student upload finished")

		if rowErrs == nil {
			rowErrs = []string{}
		}
		return c.JSON(BulkUploadResponse{
			Message:  fmt.Sprintf("Imported %d students", imported),
			Imported: imported,
			Errors:   rowErrs,
		})
	}
}
