package ledger

import (
	"fmt"

	"cokhi-backend/internal/models"
)

// CustomerDebtDetail - tổng hợp công nợ của một khách hàng.
// Là materialized view: tính lại từ snapshot mỗi lần đọc, không phải nguồn sự thật.
type CustomerDebtDetail struct {
	TotalRevenue    float64 `json:"total_revenue"`
	TotalProfit     float64 `json:"total_profit"`
	OutstandingDebt float64 `json:"outstanding_debt"`
	TotalOrders     int     `json:"total_orders"`
	UnpaidOrders    int     `json:"unpaid_orders"`

	// DebtOverridden = true khi OutstandingDebt lấy từ điều chỉnh thủ công
	// thay vì cộng từ đơn hàng
	DebtOverridden bool `json:"debt_overridden"`
}

// SummarizeCustomer cộng toàn bộ đơn của khách thành số tổng hợp.
// Doanh thu / lợi nhuận / công nợ chỉ tính đơn chưa hủy. Nếu điều chỉnh công nợ
// thủ công gần nhất mới hơn mọi thay đổi đơn hàng thì nó là số nợ có hiệu lực;
// ngược lại (có thanh toán hay sửa đơn sau đó) override bị bỏ, tính lại từ đơn.
func SummarizeCustomer(orders []models.Order, latestAdjustment *models.DebtAdjustment) CustomerDebtDetail {
	var detail CustomerDebtDetail

	overrideActive := latestAdjustment != nil
	for _, order := range orders {
		detail.TotalOrders++
		if order.Status == models.OrderStatusCancelled {
			continue
		}
		detail.TotalRevenue += order.TotalAmount
		detail.TotalProfit += order.Profit
		detail.OutstandingDebt += order.DebtAmount
		if order.Status == models.OrderStatusPending || order.Status == models.OrderStatusPartialPaid {
			detail.UnpaidOrders++
		}
		if overrideActive && !latestAdjustment.CreatedAt.After(order.UpdatedAt) {
			overrideActive = false
		}
	}

	if overrideActive {
		detail.OutstandingDebt = latestAdjustment.NewDebt
		detail.DebtOverridden = true
	}

	return detail
}

// CanDeleteCustomer quyết định có được xóa khách hàng hay không: chỉ khi mọi
// đơn của khách đã hủy. Đơn đã hủy còn lại bị xóa kèm theo khách (cùng dòng
// hàng và thanh toán của chúng), nên caller phải dọn chúng trong cùng transaction.
func CanDeleteCustomer(orders []models.Order) error {
	active := 0
	for _, order := range orders {
		if order.Status != models.OrderStatusCancelled {
			active++
		}
	}
	if active > 0 {
		return &ValidationError{
			Field:   "orders",
			Message: fmt.Sprintf("khách hàng còn %d đơn chưa hủy, không thể xóa", active),
		}
	}
	return nil
}
