package inventory

import (
	"fmt"
	"log"
	"strings"

	"cokhi-backend/internal/audit"
	"cokhi-backend/internal/auth"
	"cokhi-backend/internal/database"
	"cokhi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// -------------------------
// Request/Response Types
// -------------------------

type MaterialResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	CurrentStock float64 `json:"current_stock"`
}

type CreateMaterialRequest struct {
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	CurrentStock float64 `json:"current_stock"` // tồn đầu, >= 0
}

type UpdateMaterialRequest struct {
	Name *string `json:"name"`
	Unit *string `json:"unit"`
}

type StockAdjustmentRequest struct {
	QuantityChange float64 `json:"quantity_change"` // dương = nhập, âm = xuất
	Note           string  `json:"note"`
}

// -------------------------
// Trợ giúp: lấy thông tin người thao tác
// -------------------------
func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Không đọc được thông tin người dùng")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Không tìm thấy người dùng")
	}

	return userID, user.Name, nil
}

// -------------------------
// Material CRUD
// -------------------------

// GET /api/materials
func ListMaterialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var materials []models.Material
		if err := database.DB.Order("name asc").Find(&materials).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tải được danh sách vật liệu")
		}

		res := make([]MaterialResponse, 0, len(materials))
		for _, m := range materials {
			res = append(res, MaterialResponse{
				ID:           m.ID,
				Name:         m.Name,
				Unit:         m.Unit,
				CurrentStock: m.CurrentStock,
			})
		}
		return c.JSON(res)
	}
}

// POST /api/materials
func CreateMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Unit = strings.TrimSpace(body.Unit)

		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Tên và đơn vị tính là bắt buộc")
		}
		if body.CurrentStock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Tồn kho không được âm")
		}

		var existing models.Material
		if err := database.DB.Where("name = ?", body.Name).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tên vật liệu đã tồn tại")
		}

		m := models.Material{
			Name:         body.Name,
			Unit:         body.Unit,
			CurrentStock: body.CurrentStock,
		}
		if err := database.DB.Create(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tạo được vật liệu")
		}

		return c.Status(fiber.StatusCreated).JSON(MaterialResponse{
			ID:           m.ID,
			Name:         m.Name,
			Unit:         m.Unit,
			CurrentStock: m.CurrentStock,
		})
	}
}

// PUT /api/materials/:id
// Chỉ sửa tên / đơn vị; tồn kho đi qua đường stock-adjustments duy nhất
func UpdateMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var m models.Material
		if err := database.DB.First(&m, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy vật liệu")
		}

		var body UpdateMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Tên không được để trống")
			}
			m.Name = name
		}

		if body.Unit != nil {
			unit := strings.TrimSpace(*body.Unit)
			if unit == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Đơn vị tính không được để trống")
			}
			m.Unit = unit
		}

		if err := database.DB.Save(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không cập nhật được vật liệu")
		}

		return c.JSON(MaterialResponse{
			ID:           m.ID,
			Name:         m.Name,
			Unit:         m.Unit,
			CurrentStock: m.CurrentStock,
		})
	}
}

// DELETE /api/materials/:id
func DeleteMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var m models.Material
		if err := database.DB.First(&m, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy vật liệu")
		}

		// Còn nằm trong định mức sản phẩm hoặc dòng hàng thì không xóa
		var bomCount int64
		database.DB.Model(&models.ProductMaterial{}).Where("material_id = ?", m.ID).Count(&bomCount)
		if bomCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Vật liệu đang nằm trong định mức sản phẩm, không thể xóa")
		}
		var itemCount int64
		database.DB.Model(&models.OrderItem{}).Where("material_id = ?", m.ID).Count(&itemCount)
		if itemCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Vật liệu đã có trong đơn hàng, không thể xóa")
		}

		if err := database.DB.Delete(&m).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không xóa được vật liệu")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/materials/:id/stock-adjustments
// Đường ghi tồn kho duy nhất: mọi thay đổi tồn kho đều đi qua đây và được audit
func AdjustStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var m models.Material
		if err := database.DB.First(&m, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy vật liệu")
		}

		var body StockAdjustmentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		if body.QuantityChange == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity_change phải khác 0")
		}

		newStock := m.CurrentStock + body.QuantityChange
		if newStock < 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Tồn kho không được âm (hiện còn %.2f %s)", m.CurrentStock, m.Unit))
		}

		beforeStock := m.CurrentStock

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			// WHERE kèm tồn kho cũ: hai điều chỉnh chạy song song không giẫm nhau
			result := tx.Model(&models.Material{}).
				Where("id = ? AND current_stock = ?", m.ID, beforeStock).
				Update("current_stock", newStock)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusConflict, "Tồn kho vừa bị thay đổi bởi thao tác khác, vui lòng tải lại")
			}
			return nil
		})
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Không cập nhật được tồn kho")
		}

		m.CurrentStock = newStock

		// Ghi audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:     userID,
				UserName:   userName,
				EntityType: "material",
				EntityID:   m.ID,
				Action:     models.AuditActionUpdate,
				Description: fmt.Sprintf("Điều chỉnh tồn kho %s: %+.2f %s - %s",
					m.Name, body.QuantityChange, m.Unit, strings.TrimSpace(body.Note)),
				Before: map[string]interface{}{"current_stock": beforeStock},
				After:  map[string]interface{}{"current_stock": newStock},
			}); logErr != nil {
				log.Printf("Không ghi được audit log: %v", logErr)
			}
		}

		return c.JSON(MaterialResponse{
			ID:           m.ID,
			Name:         m.Name,
			Unit:         m.Unit,
			CurrentStock: m.CurrentStock,
		})
	}
}
