package models

import "time"

// Customer - Khách hàng. Doanh thu / lợi nhuận / công nợ không lưu ở đây,
// luôn tính lại từ đơn hàng và thanh toán khi đọc.
type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Phone     string `gorm:"size:50"`
	Address   string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Orders []Order `gorm:"foreignKey:CustomerID"`
}

// DebtAdjustmentReason - Lý do điều chỉnh công nợ thủ công
type DebtAdjustmentReason string

const (
	DebtReasonCorrection     DebtAdjustmentReason = "correction"      // Sửa sai sót
	DebtReasonWriteOff       DebtAdjustmentReason = "write_off"       // Xóa nợ
	DebtReasonNegotiated     DebtAdjustmentReason = "negotiated"      // Thỏa thuận với khách
	DebtReasonOpeningBalance DebtAdjustmentReason = "opening_balance" // Nợ đầu kỳ
	DebtReasonOther          DebtAdjustmentReason = "other"
)

// DebtAdjustment - Ghi đè công nợ thủ công, chỉ thêm không sửa.
// Ghi lại cả số nợ trước đó để đối soát.
type DebtAdjustment struct {
	ID           uint                 `gorm:"primaryKey"`
	CustomerID   uint                 `gorm:"index;not null"`
	PreviousDebt float64              `gorm:"not null"`
	NewDebt      float64              `gorm:"not null"` // >= 0
	Reason       DebtAdjustmentReason `gorm:"type:varchar(30);not null"`
	Notes        string               `gorm:"size:500"`
	CreatedAt    time.Time            `gorm:"index"`
}
