package inventory

import (
	"cokhi-backend/internal/database"
	"cokhi-backend/internal/ledger"
	"cokhi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/materials/shortages
// So tồn kho với định mức vật liệu của toàn bộ sản phẩm, trả về các vật liệu
// thiếu kèm danh sách sản phẩm bị ảnh hưởng để người vận hành xử lý
func ListShortagesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var materials []models.Material
		if err := database.DB.Order("name asc").Find(&materials).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tải được danh sách vật liệu")
		}

		var products []models.Product
		if err := database.DB.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tải được danh sách sản phẩm")
		}

		var entries []models.ProductMaterial
		if err := database.DB.Order("product_id asc, material_id asc").Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tải được định mức vật liệu")
		}

		shortages := ledger.CheckShortages(materials, products, entries)
		return c.JSON(shortages)
	}
}
