package models

import "time"

// OrderStatus - Trạng thái đơn hàng
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "pending"      // Chưa thanh toán
	OrderStatusPartialPaid OrderStatus = "partial_paid" // Thanh toán một phần
	OrderStatusCompleted   OrderStatus = "completed"    // Đã thanh toán đủ
	OrderStatusCancelled   OrderStatus = "cancelled"    // Đã hủy (chỉ đặt thủ công, không bao giờ suy ra)
)

// OrderItemType - Loại dòng hàng: sản phẩm hoặc vật liệu bán lẻ
type OrderItemType string

const (
	OrderItemTypeProduct  OrderItemType = "product"
	OrderItemTypeMaterial OrderItemType = "material"
)

type Order struct {
	ID          uint      `gorm:"primaryKey"`
	CustomerID  uint      `gorm:"index;not null"`
	Customer    Customer  `gorm:"foreignKey:CustomerID"`
	OrderDate   time.Time `gorm:"index;not null"`
	TotalAmount float64   `gorm:"not null"` // = tổng total_price các dòng
	TotalCost   float64   `gorm:"not null"` // = tổng total_cost các dòng
	Profit      float64   `gorm:"not null"` // = TotalAmount - TotalCost
	PaidAmount  float64   `gorm:"not null;default:0"`
	DebtAmount  float64   `gorm:"not null;default:0"` // = TotalAmount - PaidAmount
	Status      OrderStatus `gorm:"type:varchar(20);not null;index"`
	Note        string      `gorm:"size:500"`

	// Optimistic lock: mọi update đơn hàng phải kèm WHERE version = ?
	Version uint `gorm:"not null;default:1"`

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments []Payment   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID         uint          `gorm:"primaryKey"`
	OrderID    uint          `gorm:"index;not null"`
	ItemType   OrderItemType `gorm:"type:varchar(10);not null"`
	ProductID  *uint         `gorm:"index"` // đúng một trong ProductID/MaterialID được đặt
	Product    *Product      `gorm:"foreignKey:ProductID"`
	MaterialID *uint         `gorm:"index"`
	Material   *Material     `gorm:"foreignKey:MaterialID"`
	Quantity   float64       `gorm:"not null"` // > 0
	UnitPrice  float64       `gorm:"not null"` // >= 0
	UnitCost   float64       `gorm:"not null"` // >= 0
	Discount   float64       `gorm:"not null;default:0"`
	TotalPrice float64       `gorm:"not null"` // = Quantity*UnitPrice - Discount
	TotalCost  float64       `gorm:"not null"` // = Quantity*UnitCost
	Profit     float64       `gorm:"not null"` // = TotalPrice - TotalCost, có thể âm
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
