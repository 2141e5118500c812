package audit

import (
	"encoding/json"
	"fmt"

	"schoolfees-backend/internal/auth"
	"schoolfees-backend/internal/config"
	"schoolfees-backend/internal/database"
	"schoolfees-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// jsonb columns want the JSON literal null, not an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log write failed: %w", err)
	}
	return nil
}

// Record writes an audit entry for the request's authenticated user.
// Audit failures are logged and swallowed; they never fail the mutation
// that already committed.
func Record(c *fiber.Ctx, action models.AuditAction, entityType string, entityID uint, description string, before, after any) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)

	var userName string
	if userID != 0 {
		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
			userName = user.Name
		}
	}

	if err := WriteLog(LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
		Before:      before,
		After:       after,
	}); err != nil {
		config.Logger().WithError(err).
			WithField("entity_type", entityType).
			Warn("could not write audit log")
	}
}
