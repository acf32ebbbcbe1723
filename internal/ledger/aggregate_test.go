package ledger

import (
	"testing"

	"cokhi-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tổng đơn phải đúng bằng tổng số học của các dòng
func TestAggregateItems_SumDecomposition(t *testing.T) {
	items := []models.OrderItem{
		{TotalPrice: 1000000, TotalCost: 600000},
		{TotalPrice: 250000, TotalCost: 180000},
		{TotalPrice: 0, TotalCost: 45000}, // dòng giảm giá hết, vẫn tính giá vốn
	}

	totals := AggregateItems(items)
	assert.Equal(t, 1250000.0, totals.TotalAmount)
	assert.Equal(t, 825000.0, totals.TotalCost)
	assert.Equal(t, 425000.0, totals.Profit)
}

// Đơn nháp không có dòng nào: tổng 0, không phải lỗi
func TestAggregateItems_Empty(t *testing.T) {
	totals := AggregateItems(nil)
	assert.Equal(t, OrderTotals{}, totals)
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name   string
		paid   float64
		total  float64
		status models.OrderStatus
	}{
		{"chưa thu đồng nào", 0, 1000000, models.OrderStatusPending},
		{"paid âm vẫn là pending", -1, 1000000, models.OrderStatusPending},
		{"thu một phần", 400000, 1000000, models.OrderStatusPartialPaid},
		{"thu đủ", 1000000, 1000000, models.OrderStatusCompleted},
		{"đơn nháp tổng 0 chưa thu", 0, 0, models.OrderStatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.status, DeriveStatus(tc.paid, tc.total))
		})
	}
}
