package ledger

import (
	"testing"

	"cokhi-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Kịch bản: Thép tồn 40, hai sản phẩm cần 25 và 30 => thiếu 15
func TestCheckShortages(t *testing.T) {
	materials := []models.Material{
		{ID: 1, Name: "Thép", Unit: "kg", CurrentStock: 40},
		{ID: 2, Name: "Sơn", Unit: "lít", CurrentStock: 10},
	}
	products := []models.Product{
		{ID: 1, Name: "Cửa sắt"},
		{ID: 2, Name: "Khung mái"},
	}
	entries := []models.ProductMaterial{
		{ProductID: 1, MaterialID: 1, Quantity: 25},
		{ProductID: 2, MaterialID: 1, Quantity: 30},
		{ProductID: 1, MaterialID: 2, Quantity: 2},
	}

	shortages := CheckShortages(materials, products, entries)
	require.Len(t, shortages, 1)

	s := shortages[0]
	assert.Equal(t, "Thép", s.MaterialName)
	assert.Equal(t, 55.0, s.Required)
	assert.Equal(t, 40.0, s.CurrentStock)
	assert.Equal(t, 15.0, s.Shortage)
	assert.Equal(t, []string{"Cửa sắt", "Khung mái"}, s.Products)
}

// Danh sách sản phẩm bị ảnh hưởng phải ổn định dù entries đến theo thứ tự nào
func TestCheckShortages_ProductOrderStable(t *testing.T) {
	materials := []models.Material{
		{ID: 1, Name: "Thép", Unit: "kg", CurrentStock: 10},
	}
	products := []models.Product{
		{ID: 1, Name: "Cửa sắt"},
		{ID: 2, Name: "Khung mái"},
		{ID: 3, Name: "Bàn inox"},
	}
	forward := []models.ProductMaterial{
		{ProductID: 1, MaterialID: 1, Quantity: 10},
		{ProductID: 2, MaterialID: 1, Quantity: 10},
		{ProductID: 3, MaterialID: 1, Quantity: 10},
	}
	reversed := []models.ProductMaterial{
		{ProductID: 3, MaterialID: 1, Quantity: 10},
		{ProductID: 1, MaterialID: 1, Quantity: 10},
		{ProductID: 2, MaterialID: 1, Quantity: 10},
	}

	first := CheckShortages(materials, products, forward)
	second := CheckShortages(materials, products, reversed)
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	assert.Equal(t, []string{"Bàn inox", "Cửa sắt", "Khung mái"}, first[0].Products)
	assert.Equal(t, first[0].Products, second[0].Products)
}

// Chỉ báo khi required > tồn kho; đủ hàng hoặc vừa khít thì không báo
func TestCheckShortages_OnlyDeficits(t *testing.T) {
	materials := []models.Material{
		{ID: 1, Name: "Thép", Unit: "kg", CurrentStock: 55},
	}
	products := []models.Product{{ID: 1, Name: "Cửa sắt"}}
	entries := []models.ProductMaterial{
		{ProductID: 1, MaterialID: 1, Quantity: 55},
	}

	shortages := CheckShortages(materials, products, entries)
	assert.Empty(t, shortages)
}

// Vật liệu không nằm trong BOM nào thì bỏ qua dù tồn kho bằng 0
func TestCheckShortages_UnreferencedIgnored(t *testing.T) {
	materials := []models.Material{
		{ID: 9, Name: "Ốc vít", Unit: "hộp", CurrentStock: 0},
	}

	shortages := CheckShortages(materials, nil, nil)
	assert.Empty(t, shortages)
}

// Hàm thuần: không được sửa snapshot tồn kho truyền vào
func TestCheckShortages_DoesNotMutate(t *testing.T) {
	materials := []models.Material{
		{ID: 1, Name: "Thép", Unit: "kg", CurrentStock: 10},
	}
	products := []models.Product{{ID: 1, Name: "Cửa sắt"}}
	entries := []models.ProductMaterial{
		{ProductID: 1, MaterialID: 1, Quantity: 25},
	}

	_ = CheckShortages(materials, products, entries)
	assert.Equal(t, 10.0, materials[0].CurrentStock)
}
