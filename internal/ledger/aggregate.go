package ledger

import "cokhi-backend/internal/models"

// OrderTotals - tổng tiền của cả đơn hàng
type OrderTotals struct {
	TotalAmount float64
	TotalCost   float64
	Profit      float64
}

// AggregateItems cộng dồn các dòng hàng thành tổng đơn.
// Đơn không có dòng nào trả về 0 (đơn nháp), không phải lỗi.
func AggregateItems(items []models.OrderItem) OrderTotals {
	var totals OrderTotals
	for _, item := range items {
		totals.TotalAmount += item.TotalPrice
		totals.TotalCost += item.TotalCost
	}
	totals.Profit = totals.TotalAmount - totals.TotalCost
	return totals
}

// DeriveStatus suy ra trạng thái đơn từ số đã thu so với tổng tiền.
// Cancelled không bao giờ được suy ra ở đây, chỉ đặt thủ công qua Cancel.
func DeriveStatus(paidAmount, totalAmount float64) models.OrderStatus {
	switch {
	case paidAmount <= 0:
		return models.OrderStatusPending
	case paidAmount < totalAmount:
		return models.OrderStatusPartialPaid
	default:
		return models.OrderStatusCompleted
	}
}
