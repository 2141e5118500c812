// Package validation wraps a single validator instance shared by all
// request handlers.
package validation

import (
	"strings"

	"schoolfees-backend/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Struct validates the tagged fields of a request payload and converts
// failures into the domain ValidationError.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return models.NewValidationError("invalid request payload")
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return models.NewValidationError("invalid or missing fields: %s", strings.Join(fields, ", "))
}
