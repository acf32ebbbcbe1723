package models

import "time"

// Payment - Thanh toán cho đơn hàng, chỉ thêm không sửa.
// Tổng Amount của một đơn không được vượt TotalAmount (reconciler kiểm soát).
type Payment struct {
	ID          uint      `gorm:"primaryKey"`
	OrderID     uint      `gorm:"index;not null"`
	Amount      float64   `gorm:"not null"` // > 0
	PaymentDate time.Time `gorm:"index;not null"`
	Method      string    `gorm:"size:50"` // tiền mặt, chuyển khoản...
	Notes       string    `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
