package ledger

import (
	"testing"

	"cokhi-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(total, cost float64) models.Order {
	return models.Order{
		TotalAmount: total,
		TotalCost:   cost,
		Profit:      total - cost,
		DebtAmount:  total,
		Status:      models.OrderStatusPending,
	}
}

// Kịch bản xuyên suốt: đơn 1.000.000 (vốn 600.000), thu 400.000 rồi 600.000,
// thu thêm 1 đồng nữa phải bị chặn
func TestApplyPayment_FullScenario(t *testing.T) {
	order := newOrder(1000000, 600000)
	assert.Equal(t, 400000.0, order.Profit)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	order, err := ApplyPayment(order, 400000)
	require.NoError(t, err)
	assert.Equal(t, 400000.0, order.PaidAmount)
	assert.Equal(t, 600000.0, order.DebtAmount)
	assert.Equal(t, models.OrderStatusPartialPaid, order.Status)

	order, err = ApplyPayment(order, 600000)
	require.NoError(t, err)
	assert.Equal(t, 1000000.0, order.PaidAmount)
	assert.Equal(t, 0.0, order.DebtAmount)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)

	_, err = ApplyPayment(order, 1)
	var overErr *OverpaymentError
	require.ErrorAs(t, err, &overErr)
	assert.Equal(t, 0.0, overErr.MaxAllowed)
}

// Thanh toán bị từ chối thì đơn giữ nguyên, không bị sửa nửa chừng
func TestApplyPayment_RejectedLeavesOrderUnchanged(t *testing.T) {
	order := newOrder(500000, 300000)
	order, err := ApplyPayment(order, 200000)
	require.NoError(t, err)

	before := order
	result, err := ApplyPayment(order, 400000)
	var overErr *OverpaymentError
	require.ErrorAs(t, err, &overErr)
	assert.Equal(t, 300000.0, overErr.MaxAllowed)
	assert.Equal(t, 400000.0, overErr.Attempted)
	assert.Equal(t, before, result)
}

func TestApplyPayment_InvalidAmount(t *testing.T) {
	order := newOrder(100000, 50000)

	for _, amount := range []float64{0, -5000} {
		_, err := ApplyPayment(order, amount)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "amount", vErr.Field)
	}
}

func TestApplyPayment_CancelledOrder(t *testing.T) {
	order := newOrder(100000, 50000)
	order.Status = models.OrderStatusCancelled

	_, err := ApplyPayment(order, 10000)
	require.ErrorIs(t, err, ErrOrderCancelled)
}

// Trạng thái chỉ tiến theo tỷ lệ đã thu, không lùi qua các lần thanh toán
func TestApplyPayment_StatusMonotonic(t *testing.T) {
	order := newOrder(300000, 100000)
	rank := map[models.OrderStatus]int{
		models.OrderStatusPending:     0,
		models.OrderStatusPartialPaid: 1,
		models.OrderStatusCompleted:   2,
	}

	prev := rank[order.Status]
	for _, amount := range []float64{50000, 100000, 150000} {
		var err error
		order, err = ApplyPayment(order, amount)
		require.NoError(t, err)
		require.GreaterOrEqual(t, rank[order.Status], prev)
		prev = rank[order.Status]
	}
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
}

func TestRecalcFromPayments(t *testing.T) {
	order := newOrder(1000000, 600000)
	order.PaidAmount = 700000
	order.DebtAmount = 300000
	order.Status = models.OrderStatusPartialPaid

	// Xóa một khoản 300.000, còn lại 400.000
	order = RecalcFromPayments(order, []models.Payment{{Amount: 400000}})
	assert.Equal(t, 400000.0, order.PaidAmount)
	assert.Equal(t, 600000.0, order.DebtAmount)
	assert.Equal(t, models.OrderStatusPartialPaid, order.Status)

	// Xóa nốt: quay về pending
	order = RecalcFromPayments(order, nil)
	assert.Equal(t, 0.0, order.PaidAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestRecalcFromPayments_KeepsCancelled(t *testing.T) {
	order := newOrder(100000, 50000)
	order.Status = models.OrderStatusCancelled

	order = RecalcFromPayments(order, []models.Payment{{Amount: 100000}})
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
}

func TestApplyTotals(t *testing.T) {
	order := newOrder(1000000, 600000)
	order, err := ApplyPayment(order, 400000)
	require.NoError(t, err)

	// Sửa đơn: tổng mới 800.000, vẫn >= 400.000 đã thu
	order, err = ApplyTotals(order, OrderTotals{TotalAmount: 800000, TotalCost: 500000, Profit: 300000})
	require.NoError(t, err)
	assert.Equal(t, 400000.0, order.DebtAmount)
	assert.Equal(t, models.OrderStatusPartialPaid, order.Status)

	// Thu đủ rồi hạ tổng xuống bằng số đã thu: completed
	order, err = ApplyTotals(order, OrderTotals{TotalAmount: 400000, TotalCost: 200000, Profit: 200000})
	require.NoError(t, err)
	assert.Equal(t, 0.0, order.DebtAmount)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
}

func TestApplyTotals_BelowPaidRejected(t *testing.T) {
	order := newOrder(1000000, 600000)
	order, err := ApplyPayment(order, 500000)
	require.NoError(t, err)

	_, err = ApplyTotals(order, OrderTotals{TotalAmount: 300000, TotalCost: 200000, Profit: 100000})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "items", vErr.Field)
}

func TestCancel(t *testing.T) {
	order := newOrder(1000000, 600000)
	order, err := ApplyPayment(order, 1000000)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)

	// completed vẫn hủy được (trường hợp duy nhất rời completed)
	order, err = Cancel(order)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	// cancelled là trạng thái cuối
	_, err = Cancel(order)
	require.ErrorIs(t, err, ErrOrderCancelled)
}

func TestApplyDebtAdjustment(t *testing.T) {
	adj, err := ApplyDebtAdjustment(7, 2500000, 2000000, models.DebtReasonNegotiated, "khách trả thiếu, chốt lại")
	require.NoError(t, err)
	assert.Equal(t, uint(7), adj.CustomerID)
	assert.Equal(t, 2500000.0, adj.PreviousDebt)
	assert.Equal(t, 2000000.0, adj.NewDebt)
	assert.Equal(t, models.DebtReasonNegotiated, adj.Reason)
}

func TestApplyDebtAdjustment_Validation(t *testing.T) {
	_, err := ApplyDebtAdjustment(1, 100000, -1, models.DebtReasonCorrection, "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "new_debt", vErr.Field)

	_, err = ApplyDebtAdjustment(1, 100000, 50000, "", "")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "reason", vErr.Field)

	_, err = ApplyDebtAdjustment(1, 100000, 50000, "khac", "")
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "reason", vErr.Field)
}
