package orders

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cokhi-backend/internal/audit"
	"cokhi-backend/internal/auth"
	"cokhi-backend/internal/database"
	"cokhi-backend/internal/ledger"
	"cokhi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// -------------------------
// Request/Response Types
// -------------------------

type OrderItemRequest struct {
	ItemType   string  `json:"item_type"` // "product" hoặc "material"
	ProductID  *uint   `json:"product_id"`
	MaterialID *uint   `json:"material_id"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	UnitCost   float64 `json:"unit_cost"`
	Discount   float64 `json:"discount"`
}

type CreateOrderRequest struct {
	CustomerID uint               `json:"customer_id"`
	OrderDate  string             `json:"order_date"` // "2026-08-20"
	Note       string             `json:"note"`
	Items      []OrderItemRequest `json:"items"`
}

type UpdateOrderRequest struct {
	OrderDate *string             `json:"order_date"`
	Note      *string             `json:"note"`
	Items     *[]OrderItemRequest `json:"items"` // nil = giữ nguyên, [] = xóa hết dòng
}

type OrderItemResponse struct {
	ID         uint    `json:"id"`
	ItemType   string  `json:"item_type"`
	ProductID  *uint   `json:"product_id"`
	MaterialID *uint   `json:"material_id"`
	ItemName   string  `json:"item_name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	UnitCost   float64 `json:"unit_cost"`
	Discount   float64 `json:"discount"`
	TotalPrice float64 `json:"total_price"`
	TotalCost  float64 `json:"total_cost"`
	Profit     float64 `json:"profit"`
}

type OrderResponse struct {
	ID           uint                `json:"id"`
	CustomerID   uint                `json:"customer_id"`
	CustomerName string              `json:"customer_name,omitempty"`
	OrderDate    string              `json:"order_date"`
	TotalAmount  float64             `json:"total_amount"`
	TotalCost    float64             `json:"total_cost"`
	Profit       float64             `json:"profit"`
	PaidAmount   float64             `json:"paid_amount"`
	DebtAmount   float64             `json:"debt_amount"`
	Status       string              `json:"status"`
	Note         string              `json:"note"`
	Items        []OrderItemResponse `json:"items,omitempty"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
}

// -------------------------
// Trợ giúp
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

// mapLedgerError chuyển lỗi có kiểu của tầng ledger thành fiber.Error cho client
func mapLedgerError(err error) error {
	var vErr *ledger.ValidationError
	var oErr *ledger.OverpaymentError

	switch {
	case errors.As(err, &vErr):
		return fiber.NewError(fiber.StatusBadRequest, vErr.Message)
	case errors.As(err, &oErr):
		return fiber.NewError(fiber.StatusBadRequest, oErr.Error())
	case errors.Is(err, ledger.ErrOrderCancelled):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrConcurrencyConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Lỗi hệ thống")
}

// buildOrderItems kiểm tra và tính tiền từng dòng hàng của request
func buildOrderItems(reqItems []OrderItemRequest) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(reqItems))
	for i, reqItem := range reqItems {
		itemType := models.OrderItemType(reqItem.ItemType)
		if itemType != models.OrderItemTypeProduct && itemType != models.OrderItemTypeMaterial {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Dòng %d: item_type phải là 'product' hoặc 'material'", i+1))
		}

		// Đúng một trong product_id/material_id, khớp với item_type
		switch itemType {
		case models.OrderItemTypeProduct:
			if reqItem.ProductID == nil || reqItem.MaterialID != nil {
				return nil, fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("Dòng %d: dòng sản phẩm chỉ được đặt product_id", i+1))
			}
			var p models.Product
			if err := database.DB.First(&p, "id = ?", *reqItem.ProductID).Error; err != nil {
				return nil, fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("Dòng %d: sản phẩm không tồn tại", i+1))
			}
		case models.OrderItemTypeMaterial:
			if reqItem.MaterialID == nil || reqItem.ProductID != nil {
				return nil, fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("Dòng %d: dòng vật liệu chỉ được đặt material_id", i+1))
			}
			var m models.Material
			if err := database.DB.First(&m, "id = ?", *reqItem.MaterialID).Error; err != nil {
				return nil, fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("Dòng %d: vật liệu không tồn tại", i+1))
			}
		}

		totals, err := ledger.ComputeLine(reqItem.Quantity, reqItem.UnitPrice, reqItem.UnitCost, reqItem.Discount)
		if err != nil {
			var vErr *ledger.ValidationError
			if errors.As(err, &vErr) {
				return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Dòng %d: %s", i+1, vErr.Message))
			}
			return nil, mapLedgerError(err)
		}

		items = append(items, models.OrderItem{
			ItemType:   itemType,
			ProductID:  reqItem.ProductID,
			MaterialID: reqItem.MaterialID,
			Quantity:   reqItem.Quantity,
			UnitPrice:  reqItem.UnitPrice,
			UnitCost:   reqItem.UnitCost,
			Discount:   reqItem.Discount,
			TotalPrice: totals.TotalPrice,
			TotalCost:  totals.TotalCost,
			Profit:     totals.Profit,
		})
	}
	return items, nil
}

func itemName(item models.OrderItem) string {
	if item.Product != nil {
		return item.Product.Name
	}
	if item.Material != nil {
		return item.Material.Name
	}
	return ""
}

func toOrderResponse(order models.Order, withItems bool) OrderResponse {
	resp := OrderResponse{
		ID:           order.ID,
		CustomerID:   order.CustomerID,
		CustomerName: order.Customer.Name,
		OrderDate:    order.OrderDate.Format("2006-01-02"),
		TotalAmount:  order.TotalAmount,
		TotalCost:    order.TotalCost,
		Profit:       order.Profit,
		PaidAmount:   order.PaidAmount,
		DebtAmount:   order.DebtAmount,
		Status:       string(order.Status),
		Note:         order.Note,
		CreatedAt:    order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    order.UpdatedAt.Format(time.RFC3339),
	}

	if withItems {
		resp.Items = make([]OrderItemResponse, 0, len(order.Items))
		for _, item := range order.Items {
			resp.Items = append(resp.Items, OrderItemResponse{
				ID:         item.ID,
				ItemType:   string(item.ItemType),
				ProductID:  item.ProductID,
				MaterialID: item.MaterialID,
				ItemName:   itemName(item),
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
				UnitCost:   item.UnitCost,
				Discount:   item.Discount,
				TotalPrice: item.TotalPrice,
				TotalCost:  item.TotalCost,
				Profit:     item.Profit,
			})
		}
	}

	return resp
}

func orderAuditData(order models.Order) map[string]interface{} {
	return map[string]interface{}{
		"id":           order.ID,
		"customer_id":  order.CustomerID,
		"order_date":   order.OrderDate.Format("2006-01-02"),
		"total_amount": order.TotalAmount,
		"total_cost":   order.TotalCost,
		"profit":       order.Profit,
		"paid_amount":  order.PaidAmount,
		"debt_amount":  order.DebtAmount,
		"status":       string(order.Status),
	}
}

// -------------------------
// Order CRUD
// -------------------------

// POST /api/orders
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", body.CustomerID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Khách hàng không tồn tại")
		}

		orderDate, err := time.Parse("2006-01-02", body.OrderDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Ngày đặt phải theo dạng 'YYYY-MM-DD'")
		}

		items, err := buildOrderItems(body.Items)
		if err != nil {
			return err
		}

		totals := ledger.AggregateItems(items)
		order := models.Order{
			CustomerID:  body.CustomerID,
			OrderDate:   orderDate,
			TotalAmount: totals.TotalAmount,
			TotalCost:   totals.TotalCost,
			Profit:      totals.Profit,
			PaidAmount:  0,
			DebtAmount:  totals.TotalAmount,
			Status:      ledger.DeriveStatus(0, totals.TotalAmount),
			Note:        strings.TrimSpace(body.Note),
			Version:     1,
			Items:       items,
		}

		if err := database.DB.Create(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tạo được đơn hàng")
		}

		// Ghi audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:     userID,
				UserName:   userName,
				EntityType: "order",
				EntityID:   order.ID,
				Action:     models.AuditActionCreate,
				Description: fmt.Sprintf("Tạo đơn hàng #%d cho %s: %.0f đ (%d dòng)",
					order.ID, customer.Name, order.TotalAmount, len(order.Items)),
				After: orderAuditData(order),
			}); logErr != nil {
				log.Printf("Không ghi được audit log: %v", logErr)
			}
		}

		order.Customer = customer
		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order, true))
	}
}

// GET /api/orders?customer_id=...&status=...
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Order{}).Preload("Customer")

		if cidStr := c.Query("customer_id"); cidStr != "" {
			var cid uint
			if _, err := fmt.Sscan(cidStr, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "customer_id không hợp lệ")
			}
			dbq = dbq.Where("customer_id = ?", cid)
		}

		if statusFilter := c.Query("status"); statusFilter != "" {
			status := models.OrderStatus(statusFilter)
			switch status {
			case models.OrderStatusPending, models.OrderStatusPartialPaid,
				models.OrderStatusCompleted, models.OrderStatusCancelled:
				dbq = dbq.Where("status = ?", status)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "status không hợp lệ")
			}
		}

		var ordersList []models.Order
		if err := dbq.Order("order_date desc, id desc").Find(&ordersList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tải được danh sách đơn hàng")
		}

		resp := make([]OrderResponse, 0, len(ordersList))
		for _, order := range ordersList {
			resp = append(resp, toOrderResponse(order, false))
		}
		return c.JSON(resp)
	}
}

// GET /api/orders/:id
func GetOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var order models.Order
		if err := database.DB.
			Preload("Customer").
			Preload("Items").
			Preload("Items.Product").
			Preload("Items.Material").
			First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy đơn hàng")
		}

		return c.JSON(toOrderResponse(order, true))
	}
}

// PUT /api/orders/:id
// Thay toàn bộ dòng hàng trong một transaction, giữ bất biến paid <= total
func UpdateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var order models.Order
		if err := database.DB.Preload("Customer").First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy đơn hàng")
		}

		var body UpdateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		beforeData := orderAuditData(order)
		currentVersion := order.Version

		if body.OrderDate != nil {
			d, err := time.Parse("2006-01-02", *body.OrderDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Ngày đặt phải theo dạng 'YYYY-MM-DD'")
			}
			order.OrderDate = d
		}
		if body.Note != nil {
			order.Note = strings.TrimSpace(*body.Note)
		}

		var newItems []models.OrderItem
		if body.Items != nil {
			var err error
			newItems, err = buildOrderItems(*body.Items)
			if err != nil {
				return err
			}

			totals := ledger.AggregateItems(newItems)
			order, err = ledger.ApplyTotals(order, totals)
			if err != nil {
				return mapLedgerError(err)
			}
		} else if order.Status == models.OrderStatusCancelled {
			return mapLedgerError(ledger.ErrOrderCancelled)
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.Order{}).
				Where("id = ? AND version = ?", order.ID, currentVersion).
				Updates(map[string]interface{}{
					"order_date":   order.OrderDate,
					"note":         order.Note,
					"total_amount": order.TotalAmount,
					"total_cost":   order.TotalCost,
					"profit":       order.Profit,
					"debt_amount":  order.DebtAmount,
					"status":       order.Status,
					"version":      currentVersion + 1,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ledger.ErrConcurrencyConflict
			}

			if body.Items != nil {
				if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
					return err
				}
				if len(newItems) > 0 {
					for i := range newItems {
						newItems[i].OrderID = order.ID
					}
					if err := tx.Create(&newItems).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, ledger.ErrConcurrencyConflict) {
				return mapLedgerError(err)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Không cập nhật được đơn hàng")
		}
		order.Version = currentVersion + 1

		// Ghi audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "order",
				EntityID:    order.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Cập nhật đơn hàng #%d", order.ID),
				Before:      beforeData,
				After:       orderAuditData(order),
			}); logErr != nil {
				log.Printf("Không ghi được audit log: %v", logErr)
			}
		}

		order.Items = newItems
		return c.JSON(toOrderResponse(order, body.Items != nil))
	}
}

// POST /api/orders/:id/cancel
// Hủy là trạng thái cuối; hủy được cả đơn đã thanh toán đủ
func CancelOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var order models.Order
		if err := database.DB.Preload("Customer").First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy đơn hàng")
		}

		beforeData := orderAuditData(order)
		currentVersion := order.Version

		updated, err := ledger.Cancel(order)
		if err != nil {
			return mapLedgerError(err)
		}

		result := database.DB.Model(&models.Order{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":  updated.Status,
				"version": currentVersion + 1,
			})
		if result.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không hủy được đơn hàng")
		}
		if result.RowsAffected == 0 {
			return mapLedgerError(ledger.ErrConcurrencyConflict)
		}
		updated.Version = currentVersion + 1

		// Ghi audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "order",
				EntityID:    updated.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Hủy đơn hàng #%d (%.0f đ)", updated.ID, updated.TotalAmount),
				Before:      beforeData,
				After:       orderAuditData(updated),
			}); logErr != nil {
				log.Printf("Không ghi được audit log: %v", logErr)
			}
		}

		return c.JSON(toOrderResponse(updated, false))
	}
}

// DELETE /api/orders/:id
// Xóa đơn kèm toàn bộ dòng hàng và thanh toán trong một transaction (chỉ admin)
func DeleteOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var order models.Order
		if err := database.DB.First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy đơn hàng")
		}

		beforeData := orderAuditData(order)

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.Payment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&order).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không xóa được đơn hàng")
		}

		// Ghi audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "order",
				EntityID:    order.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Xóa đơn hàng #%d (%.0f đ)", order.ID, order.TotalAmount),
				Before:      beforeData,
			}); logErr != nil {
				log.Printf("Không ghi được audit log: %v", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
