package catalog

import (
	"strings"

	"cokhi-backend/internal/database"
	"cokhi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type CreateProductRequest struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type UpdateProductRequest struct {
	Name *string `json:"name"`
	Unit *string `json:"unit"`
}

type BOMEntryRequest struct {
	MaterialID uint    `json:"material_id"`
	Quantity   float64 `json:"quantity"` // cho 1 đơn vị sản phẩm
}

type BOMEntryResponse struct {
	MaterialID   uint    `json:"material_id"`
	MaterialName string  `json:"material_name"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
}

// GET /api/products
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := database.DB.Order("name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tải được danh sách sản phẩm")
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, ProductResponse{ID: p.ID, Name: p.Name, Unit: p.Unit})
		}
		return c.JSON(res)
	}
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Unit = strings.TrimSpace(body.Unit)

		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Tên và đơn vị tính là bắt buộc")
		}

		var existing models.Product
		if err := database.DB.Where("name = ?", body.Name).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tên sản phẩm đã tồn tại")
		}

		p := models.Product{Name: body.Name, Unit: body.Unit}
		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tạo được sản phẩm")
		}

		return c.Status(fiber.StatusCreated).JSON(ProductResponse{ID: p.ID, Name: p.Name, Unit: p.Unit})
	}
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy sản phẩm")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Tên không được để trống")
			}
			p.Name = name
		}

		if body.Unit != nil {
			unit := strings.TrimSpace(*body.Unit)
			if unit == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Đơn vị tính không được để trống")
			}
			p.Unit = unit
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không cập nhật được sản phẩm")
		}

		return c.JSON(ProductResponse{ID: p.ID, Name: p.Name, Unit: p.Unit})
	}
}

// DELETE /api/products/:id
// Định mức vật liệu của sản phẩm bị xóa theo (CASCADE)
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy sản phẩm")
		}

		// Đang nằm trong dòng hàng của đơn thì không xóa được
		var itemCount int64
		database.DB.Model(&models.OrderItem{}).Where("product_id = ?", p.ID).Count(&itemCount)
		if itemCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Sản phẩm đã có trong đơn hàng, không thể xóa")
		}

		if err := database.DB.Select("Materials").Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không xóa được sản phẩm")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/products/:id/materials
// Định mức vật liệu (BOM) của sản phẩm
func GetProductMaterialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy sản phẩm")
		}

		var entries []models.ProductMaterial
		if err := database.DB.Preload("Material").
			Where("product_id = ?", p.ID).
			Order("id asc").
			Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tải được định mức vật liệu")
		}

		res := make([]BOMEntryResponse, 0, len(entries))
		for _, e := range entries {
			res = append(res, BOMEntryResponse{
				MaterialID:   e.MaterialID,
				MaterialName: e.Material.Name,
				Unit:         e.Material.Unit,
				Quantity:     e.Quantity,
			})
		}
		return c.JSON(res)
	}
}

// PUT /api/products/:id/materials
// Thay toàn bộ định mức vật liệu của sản phẩm trong một transaction
func SetProductMaterialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy sản phẩm")
		}

		var body []BOMEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		seen := make(map[uint]bool, len(body))
		entries := make([]models.ProductMaterial, 0, len(body))
		for _, e := range body {
			if e.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Định mức vật liệu phải lớn hơn 0")
			}
			if seen[e.MaterialID] {
				return fiber.NewError(fiber.StatusBadRequest, "Vật liệu bị lặp trong định mức")
			}
			seen[e.MaterialID] = true

			var m models.Material
			if err := database.DB.First(&m, "id = ?", e.MaterialID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Vật liệu trong định mức không tồn tại")
			}

			entries = append(entries, models.ProductMaterial{
				ProductID:  p.ID,
				MaterialID: e.MaterialID,
				Quantity:   e.Quantity,
			})
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductMaterial{}).Error; err != nil {
				return err
			}
			if len(entries) > 0 {
				if err := tx.Create(&entries).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không lưu được định mức vật liệu")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
