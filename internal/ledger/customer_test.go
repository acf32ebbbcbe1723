package ledger

import (
	"testing"
	"time"

	"cokhi-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeCustomer(t *testing.T) {
	orders := []models.Order{
		{TotalAmount: 1000000, Profit: 400000, PaidAmount: 1000000, DebtAmount: 0, Status: models.OrderStatusCompleted},
		{TotalAmount: 500000, Profit: 150000, PaidAmount: 200000, DebtAmount: 300000, Status: models.OrderStatusPartialPaid},
		{TotalAmount: 300000, Profit: 100000, PaidAmount: 0, DebtAmount: 300000, Status: models.OrderStatusPending},
	}

	detail := SummarizeCustomer(orders, nil)
	assert.Equal(t, 1800000.0, detail.TotalRevenue)
	assert.Equal(t, 650000.0, detail.TotalProfit)
	assert.Equal(t, 600000.0, detail.OutstandingDebt)
	assert.Equal(t, 3, detail.TotalOrders)
	assert.Equal(t, 2, detail.UnpaidOrders)
	assert.False(t, detail.DebtOverridden)
}

// Đơn đã hủy không tính vào doanh thu / lợi nhuận / công nợ
func TestSummarizeCustomer_CancelledExcluded(t *testing.T) {
	orders := []models.Order{
		{TotalAmount: 1000000, Profit: 400000, DebtAmount: 1000000, Status: models.OrderStatusCancelled},
		{TotalAmount: 200000, Profit: 50000, DebtAmount: 200000, Status: models.OrderStatusPending},
	}

	detail := SummarizeCustomer(orders, nil)
	assert.Equal(t, 200000.0, detail.TotalRevenue)
	assert.Equal(t, 50000.0, detail.TotalProfit)
	assert.Equal(t, 200000.0, detail.OutstandingDebt)
	assert.Equal(t, 2, detail.TotalOrders)
	assert.Equal(t, 1, detail.UnpaidOrders)
}

// Điều chỉnh thủ công mới hơn mọi thay đổi đơn hàng: số nợ lấy từ override
func TestSummarizeCustomer_OverrideWins(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{TotalAmount: 500000, Profit: 100000, DebtAmount: 500000, Status: models.OrderStatusPending, UpdatedAt: base},
		{TotalAmount: 400000, Profit: 80000, DebtAmount: 100000, Status: models.OrderStatusPartialPaid, UpdatedAt: base.Add(24 * time.Hour)},
	}
	adj := &models.DebtAdjustment{NewDebt: 450000, CreatedAt: base.Add(48 * time.Hour)}

	detail := SummarizeCustomer(orders, adj)
	assert.Equal(t, 450000.0, detail.OutstandingDebt)
	assert.True(t, detail.DebtOverridden)
	// Doanh thu / lợi nhuận vẫn tính từ đơn, override chỉ thay số nợ
	assert.Equal(t, 900000.0, detail.TotalRevenue)
}

// Có thanh toán (đơn được cập nhật) sau override: bỏ override, tính lại từ đơn
func TestSummarizeCustomer_OrderActivityDiscardsOverride(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{TotalAmount: 500000, Profit: 100000, DebtAmount: 300000, Status: models.OrderStatusPartialPaid, UpdatedAt: base.Add(72 * time.Hour)},
	}
	adj := &models.DebtAdjustment{NewDebt: 0, CreatedAt: base}

	detail := SummarizeCustomer(orders, adj)
	assert.Equal(t, 300000.0, detail.OutstandingDebt)
	assert.False(t, detail.DebtOverridden)
}

// Khách chưa có đơn nào nhưng có nợ đầu kỳ ghi bằng điều chỉnh thủ công
func TestSummarizeCustomer_OverrideWithoutOrders(t *testing.T) {
	adj := &models.DebtAdjustment{NewDebt: 1500000, CreatedAt: time.Now()}
	detail := SummarizeCustomer(nil, adj)
	assert.Equal(t, 1500000.0, detail.OutstandingDebt)
	assert.True(t, detail.DebtOverridden)
	assert.Equal(t, 0, detail.TotalOrders)
}

// Chỉ xóa được khách khi mọi đơn đã hủy; một đơn đã hủy sót lại không chặn,
// nhưng nó phải được dọn kèm (FK từ orders trỏ về customers)
func TestCanDeleteCustomer(t *testing.T) {
	// Toàn đơn đã hủy: cho xóa
	cancelledOnly := []models.Order{
		{ID: 1, Status: models.OrderStatusCancelled},
		{ID: 2, Status: models.OrderStatusCancelled},
	}
	assert.NoError(t, CanDeleteCustomer(cancelledOnly))

	// Chưa có đơn nào: cho xóa
	assert.NoError(t, CanDeleteCustomer(nil))

	// Còn đơn chưa hủy ở bất kỳ trạng thái nào: từ chối
	for _, status := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusPartialPaid,
		models.OrderStatusCompleted,
	} {
		mixed := []models.Order{
			{ID: 1, Status: models.OrderStatusCancelled},
			{ID: 2, Status: status},
		}
		err := CanDeleteCustomer(mixed)
		require.Error(t, err, string(status))

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "orders", vErr.Field)
	}
}

// Gọi hai lần trên cùng snapshot phải ra cùng kết quả, không mutate đầu vào
func TestSummarizeCustomer_Idempotent(t *testing.T) {
	orders := []models.Order{
		{TotalAmount: 500000, Profit: 100000, DebtAmount: 500000, Status: models.OrderStatusPending},
		{TotalAmount: 400000, Profit: 80000, DebtAmount: 0, Status: models.OrderStatusCompleted},
	}

	first := SummarizeCustomer(orders, nil)
	second := SummarizeCustomer(orders, nil)
	require.Equal(t, first, second)
}
