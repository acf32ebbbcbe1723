package ledger

import "cokhi-backend/internal/models"

// ApplyPayment áp một khoản thanh toán vào đơn và trả về bản sao đã cập nhật.
// Chính sách: chặn cứng vượt thu - nếu paid + amount > total thì từ chối,
// không tự cắt bớt; caller muốn thu đúng phần còn lại thì tự điều chỉnh trước.
func ApplyPayment(order models.Order, amount float64) (models.Order, error) {
	if order.Status == models.OrderStatusCancelled {
		return order, ErrOrderCancelled
	}
	if amount <= 0 {
		return order, &ValidationError{Field: "amount", Message: "số tiền thanh toán phải lớn hơn 0"}
	}
	if order.PaidAmount+amount > order.TotalAmount {
		return order, &OverpaymentError{
			Attempted:  amount,
			MaxAllowed: order.TotalAmount - order.PaidAmount,
		}
	}

	order.PaidAmount += amount
	order.DebtAmount = order.TotalAmount - order.PaidAmount
	order.Status = DeriveStatus(order.PaidAmount, order.TotalAmount)
	return order, nil
}

// RecalcFromPayments tính lại paid/debt/status từ danh sách thanh toán còn lại
// (dùng sau khi xóa một khoản thanh toán). Đơn đã hủy giữ nguyên trạng thái.
func RecalcFromPayments(order models.Order, payments []models.Payment) models.Order {
	paid := 0.0
	for _, p := range payments {
		paid += p.Amount
	}
	order.PaidAmount = paid
	order.DebtAmount = order.TotalAmount - paid
	if order.Status != models.OrderStatusCancelled {
		order.Status = DeriveStatus(order.PaidAmount, order.TotalAmount)
	}
	return order
}

// ApplyTotals thay tổng tiền của đơn (khi sửa các dòng hàng) và giữ bất biến
// paid <= total: tổng mới thấp hơn số đã thu thì từ chối.
func ApplyTotals(order models.Order, totals OrderTotals) (models.Order, error) {
	if order.Status == models.OrderStatusCancelled {
		return order, ErrOrderCancelled
	}
	if totals.TotalAmount < order.PaidAmount {
		return order, &ValidationError{
			Field:   "items",
			Message: "tổng tiền mới thấp hơn số đã thanh toán, xóa bớt thanh toán trước",
		}
	}

	order.TotalAmount = totals.TotalAmount
	order.TotalCost = totals.TotalCost
	order.Profit = totals.Profit
	order.DebtAmount = order.TotalAmount - order.PaidAmount
	order.Status = DeriveStatus(order.PaidAmount, order.TotalAmount)
	return order, nil
}

// Cancel hủy đơn. Hủy được từ mọi trạng thái kể cả completed; đã hủy thì thôi.
func Cancel(order models.Order) (models.Order, error) {
	if order.Status == models.OrderStatusCancelled {
		return order, ErrOrderCancelled
	}
	order.Status = models.OrderStatusCancelled
	return order, nil
}

var validDebtReasons = map[models.DebtAdjustmentReason]bool{
	models.DebtReasonCorrection:     true,
	models.DebtReasonWriteOff:       true,
	models.DebtReasonNegotiated:     true,
	models.DebtReasonOpeningBalance: true,
	models.DebtReasonOther:          true,
}

// ApplyDebtAdjustment tạo sự kiện ghi đè công nợ thủ công cho khách.
// Đây là override: không phân bổ ngược vào từng đơn, chỉ đặt thẳng số nợ
// và lưu lại kèm lý do để đối soát.
func ApplyDebtAdjustment(customerID uint, currentDebt, newDebt float64, reason models.DebtAdjustmentReason, notes string) (models.DebtAdjustment, error) {
	if newDebt < 0 {
		return models.DebtAdjustment{}, &ValidationError{Field: "new_debt", Message: "công nợ mới không được âm"}
	}
	if reason == "" {
		return models.DebtAdjustment{}, &ValidationError{Field: "reason", Message: "phải chọn lý do điều chỉnh"}
	}
	if !validDebtReasons[reason] {
		return models.DebtAdjustment{}, &ValidationError{Field: "reason", Message: "lý do điều chỉnh không hợp lệ"}
	}

	return models.DebtAdjustment{
		CustomerID:   customerID,
		PreviousDebt: currentDebt,
		NewDebt:      newDebt,
		Reason:       reason,
		Notes:        notes,
	}, nil
}
