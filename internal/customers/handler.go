package customers

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

type CustomerResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type DebtSummaryResponse struct {
	Customer CustomerResponse          `json:"customer"`
	Summary  ledger.CustomerDebtDetail `json:"summary"`
}

type CreateDebtAdjustmentRequest struct {
	NewDebt float64 `json:"new_debt"`
	Reason  string  `json:"reason"`
	Notes   string  `json:"notes"`
}

type DebtAdjustmentResponse struct {
	ID           uint    `json:"id"`
	CustomerID   uint    `json:"customer_id"`
	PreviousDebt float64 `json:"previous_debt"`
	NewDebt      float64 `json:"new_debt"`
	Reason       string  `json:"reason"`
	Notes        string  `json:"notes"`
	CreatedAt    string  `json:"created_at"`
}

func toCustomerResponse(c models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func toAdjustmentResponse(adj models.DebtAdjustment) DebtAdjustmentResponse {
	return DebtAdjustmentResponse{
		ID:           adj.ID,
		CustomerID:   adj.CustomerID,
		PreviousDebt: adj.PreviousDebt,
		NewDebt:      adj.NewDebt,
		Reason:       string(adj.Reason),
		Notes:        adj.Notes,
		CreatedAt:    adj.CreatedAt.Format(time.RFC3339),
	}
}

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

// summarize tải đơn hàng và điều chỉnh công nợ mới nhất rồi tính số tổng hợp
func summarize(customerID uint) (ledger.CustomerDebtDetail, error) {
	var orders []models.Order
	if err := database.DB.Where("customer_id = ?", customerID).Find(&orders).Error; err != nil {
		return ledger.CustomerDebtDetail{}, err
	}

	var latest *models.DebtAdjustment
	var adj models.DebtAdjustment
	err := database.DB.
		Where("customer_id = ?", customerID).
		Order("created_at desc, id desc").
		First(&adj).Error
	if err == nil {
		latest = &adj
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ledger.CustomerDebtDetail{}, err
	}

	return ledger.SummarizeCustomer(orders, latest), nil
}

// -------------------------
// Customer CRUD
// -------------------------

// GET /api/customers?search=...
func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Customer{})

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + search + "%"
			dbq = dbq.Where("name ILIKE ? OR phone ILIKE ?", like, like)
		}

		var customerList []models.Customer
		if err := dbq.Order("name asc").Find(&customerList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tải được danh sách khách hàng")
		}

		resp := make([]CustomerResponse, 0, len(customerList))
		for _, cust := range customerList {
			resp = append(resp, toCustomerResponse(cust))
		}
		return c.JSON(resp)
	}
}

// POST /api/customers
func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Tên khách hàng là bắt buộc")
		}

		customer := models.Customer{
			Name:    body.Name,
			Phone:   strings.TrimSpace(body.Phone),
			Address: strings.TrimSpace(body.Address),
		}
		if err := database.DB.Create(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tạo được khách hàng")
		}

		return c.Status(fiber.StatusCreated).JSON(toCustomerResponse(customer))
	}
}

// GET /api/customers/:id
func GetCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy khách hàng")
		}

		return c.JSON(toCustomerResponse(customer))
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy khách hàng")
		}

		var body UpdateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Tên không được để trống")
			}
			customer.Name = name
		}
		if body.Phone != nil {
			customer.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Address != nil {
			customer.Address = strings.TrimSpace(*body.Address)
		}

		if err := database.DB.Save(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không cập nhật được khách hàng")
		}

		return c.JSON(toCustomerResponse(customer))
	}
}

// DELETE /api/customers/:id
// Chỉ xóa được khi khách không còn đơn chưa hủy (chỉ admin)
func DeleteCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy khách hàng")
		}

		var orderList []models.Order
		if err := database.DB.Where("customer_id = ?", customer.ID).Find(&orderList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tải được đơn hàng của khách")
		}

		if err := ledger.CanDeleteCustomer(orderList); err != nil {
			var vErr *ledger.ValidationError
			if errors.As(err, &vErr) {
				return fiber.NewError(fiber.StatusBadRequest, vErr.Message)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Không xóa được khách hàng")
		}

		// Đơn đã hủy còn trỏ tới khách qua FK, phải dọn kèm trong cùng transaction
		orderIDs := make([]uint, 0, len(orderList))
		for _, order := range orderList {
			orderIDs = append(orderIDs, order.ID)
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if len(orderIDs) > 0 {
				if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.Payment{}).Error; err != nil {
					return err
				}
				if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", orderIDs).Delete(&models.Order{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("customer_id = ?", customer.ID).Delete(&models.DebtAdjustment{}).Error; err != nil {
				return err
			}
			return tx.Delete(&customer).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không xóa được khách hàng")
		}

		// Ghi audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "customer",
				EntityID:    customer.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Xóa khách hàng %s (kèm %d đơn đã hủy)", customer.Name, len(orderIDs)),
				Before:      map[string]interface{}{"name": customer.Name, "phone": customer.Phone},
			}); logErr != nil {
				log.Printf("Không ghi được audit log: %v", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Công nợ
// -------------------------

// GET /api/customers/:id/debt-summary
func GetDebtSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy khách hàng")
		}

		summary, err := summarize(customer.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tính được công nợ")
		}

		return c.JSON(DebtSummaryResponse{
			Customer: toCustomerResponse(customer),
			Summary:  summary,
		})
	}
}

// POST /api/customers/:id/debt-adjustments
// Ghi đè công nợ thủ công: lưu số nợ trước đó, số mới và lý do (chỉ admin)
func CreateDebtAdjustmentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy khách hàng")
		}

		var body CreateDebtAdjustmentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		summary, err := summarize(customer.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tính được công nợ hiện tại")
		}

		adjustment, err := ledger.ApplyDebtAdjustment(
			customer.ID,
			summary.OutstandingDebt,
			body.NewDebt,
			models.DebtAdjustmentReason(body.Reason),
			strings.TrimSpace(body.Notes),
		)
		if err != nil {
			var vErr *ledger.ValidationError
			if errors.As(err, &vErr) {
				return fiber.NewError(fiber.StatusBadRequest, vErr.Message)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Không điều chỉnh được công nợ")
		}

		if err := database.DB.Create(&adjustment).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không lưu được điều chỉnh công nợ")
		}

		// Ghi audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:     userID,
				UserName:   userName,
				EntityType: "debt_adjustment",
				EntityID:   adjustment.ID,
				Action:     models.AuditActionCreate,
				Description: fmt.Sprintf("Điều chỉnh công nợ %s: %.0f đ -> %.0f đ (%s)",
					customer.Name, adjustment.PreviousDebt, adjustment.NewDebt, adjustment.Reason),
				Before: map[string]interface{}{"outstanding_debt": adjustment.PreviousDebt},
				After:  map[string]interface{}{"outstanding_debt": adjustment.NewDebt},
			}); logErr != nil {
				log.Printf("Không ghi được audit log: %v", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(toAdjustmentResponse(adjustment))
	}
}

// GET /api/customers/:id/debt-adjustments
func ListDebtAdjustmentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy khách hàng")
		}

		var adjustments []models.DebtAdjustment
		if err := database.DB.
			Where("customer_id = ?", customer.ID).
			Order("created_at desc, id desc").
			Find(&adjustments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tải được lịch sử điều chỉnh")
		}

		resp := make([]DebtAdjustmentResponse, 0, len(adjustments))
		for _, adj := range adjustments {
			resp = append(resp, toAdjustmentResponse(adj))
		}
		return c.JSON(resp)
	}
}
