package audit

import (
	"encoding/json"
	"fmt"

	"cokhi-backend/internal/database"
	"cokhi-backend/internal/models"
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
	// Cột jsonb của PostgreSQL cần chuỗi "null" thay vì chuỗi rỗng
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

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("không ghi được audit log: %w", err)
	}

	return nil
}
