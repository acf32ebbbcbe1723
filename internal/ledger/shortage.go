package ledger

import (
	"sort"

	"cokhi-backend/internal/models"
)

// Shortage - một vật liệu không đủ tồn kho cho nhu cầu sản xuất
type Shortage struct {
	MaterialID   uint     `json:"material_id"`
	MaterialName string   `json:"material_name"`
	Unit         string   `json:"unit"`
	Required     float64  `json:"required"`
	CurrentStock float64  `json:"current_stock"`
	Shortage     float64  `json:"shortage"` // = Required - CurrentStock, luôn > 0
	Products     []string `json:"products"` // tên các sản phẩm dùng vật liệu này
}

// CheckShortages so tồn kho với nhu cầu vật liệu và trả về các vật liệu thiếu.
// Mô hình nhu cầu: đủ để làm ít nhất 1 đơn vị của mỗi sản phẩm dùng vật liệu
// (ước lượng thận trọng, không gắn với số lượng đơn đang chờ).
// Hàm thuần trên snapshot, không thay đổi tồn kho.
func CheckShortages(materials []models.Material, products []models.Product, entries []models.ProductMaterial) []Shortage {
	productNames := make(map[uint]string, len(products))
	for _, p := range products {
		productNames[p.ID] = p.Name
	}

	required := make(map[uint]float64)
	usedBy := make(map[uint][]string)
	for _, entry := range entries {
		required[entry.MaterialID] += entry.Quantity
		if name, ok := productNames[entry.ProductID]; ok {
			usedBy[entry.MaterialID] = append(usedBy[entry.MaterialID], name)
		}
	}

	// Duyệt theo thứ tự materials truyền vào để kết quả ổn định
	shortages := make([]Shortage, 0)
	for _, m := range materials {
		req, referenced := required[m.ID]
		if !referenced {
			continue
		}
		deficit := req - m.CurrentStock
		if deficit <= 0 {
			continue
		}
		// Tên sản phẩm sắp theo bảng chữ cái, không phụ thuộc thứ tự entries
		sort.Strings(usedBy[m.ID])
		shortages = append(shortages, Shortage{
			MaterialID:   m.ID,
			MaterialName: m.Name,
			Unit:         m.Unit,
			Required:     req,
			CurrentStock: m.CurrentStock,
			Shortage:     deficit,
			Products:     usedBy[m.ID],
		})
	}
	return shortages
}
