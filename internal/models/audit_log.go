package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   uint   `json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"` // Tên người thao tác (denormalize)

	// Entity nào? (vd: "order", "payment", "debt_adjustment", "material")
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	Action AuditAction `gorm:"size:20" json:"action"`

	// Tóm tắt ngắn cho người đọc
	Description string `gorm:"size:255" json:"description"`

	// Trạng thái trước và sau (JSON)
	BeforeData string `gorm:"type:jsonb" json:"before_data"`
	AfterData  string `gorm:"type:jsonb" json:"after_data"`
}
