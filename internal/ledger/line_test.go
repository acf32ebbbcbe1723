package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLine(t *testing.T) {
	totals, err := ComputeLine(2, 500000, 300000, 0)
	require.NoError(t, err)
	assert.Equal(t, 1000000.0, totals.TotalPrice)
	assert.Equal(t, 600000.0, totals.TotalCost)
	assert.Equal(t, 400000.0, totals.Profit)
}

func TestComputeLine_Discount(t *testing.T) {
	totals, err := ComputeLine(3, 100000, 60000, 50000)
	require.NoError(t, err)
	assert.Equal(t, 250000.0, totals.TotalPrice)
	assert.Equal(t, 180000.0, totals.TotalCost)
	assert.Equal(t, 70000.0, totals.Profit)
}

// Dòng lỗ (giá vốn cao hơn giá bán) không phải lỗi, profit âm
func TestComputeLine_LossLine(t *testing.T) {
	totals, err := ComputeLine(1, 80000, 100000, 0)
	require.NoError(t, err)
	assert.Equal(t, -20000.0, totals.Profit)
}

func TestComputeLine_Validation(t *testing.T) {
	cases := []struct {
		name     string
		quantity float64
		price    float64
		cost     float64
		discount float64
		field    string
	}{
		{"số lượng bằng 0", 0, 100, 50, 0, "quantity"},
		{"số lượng âm", -1, 100, 50, 0, "quantity"},
		{"đơn giá âm", 1, -100, 50, 0, "unit_price"},
		{"giá vốn âm", 1, 100, -50, 0, "unit_cost"},
		{"giảm giá âm", 1, 100, 50, -10, "discount"},
		{"giảm giá vượt thành tiền", 2, 100, 50, 201, "discount"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeLine(tc.quantity, tc.price, tc.cost, tc.discount)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

// Giảm giá đúng bằng thành tiền thì hợp lệ, total_price về 0
func TestComputeLine_FullDiscount(t *testing.T) {
	totals, err := ComputeLine(2, 100, 50, 200)
	require.NoError(t, err)
	assert.Equal(t, 0.0, totals.TotalPrice)
	assert.Equal(t, -100.0, totals.Profit)
}
