package audit

import (
	"fmt"
	"time"

	"cokhi-backend/internal/database"
	"cokhi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uint               `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
}

// GET /api/audit-logs?entity_type=order&entity_id=1&user_id=1
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityType := c.Query("entity_type")
		entityIDStr := c.Query("entity_id")
		userIDStr := c.Query("user_id")

		dbq := database.DB.Model(&models.AuditLog{})

		if userIDStr != "" {
			var uid uint
			if _, err := fmt.Sscan(userIDStr, &uid); err == nil && uid > 0 {
				dbq = dbq.Where("user_id = ?", uid)
			}
		}

		if entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}

		if entityIDStr != "" {
			var eid uint
			if _, err := fmt.Sscan(entityIDStr, &eid); err == nil && eid > 0 {
				dbq = dbq.Where("entity_id = ?", eid)
			}
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC").Limit(500).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tải được nhật ký thao tác")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format(time.RFC3339),
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
			})
		}

		return c.JSON(resp)
	}
}
