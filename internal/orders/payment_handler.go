package orders

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cokhi-backend/internal/audit"
	"cokhi-backend/internal/database"
	"cokhi-backend/internal/ledger"
	"cokhi-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreatePaymentRequest struct {
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"` // "2026-08-20", trống = hôm nay
	Method      string  `json:"method"`       // "cash", "bank_transfer"...
	Notes       string  `json:"notes"`
}

type PaymentResponse struct {
	ID          uint    `json:"id"`
	OrderID     uint    `json:"order_id"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
	Method      string  `json:"method"`
	Notes       string  `json:"notes"`
	CreatedAt   string  `json:"created_at"`
}

type PaymentWithOrderResponse struct {
	Payment PaymentResponse `json:"payment"`
	Order   OrderResponse   `json:"order"`
}

func toPaymentResponse(p models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		OrderID:     p.OrderID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate.Format("2006-01-02"),
		Method:      p.Method,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

// POST /api/orders/:id/payments
// Ghi nhận thanh toán: chặn vượt quá nợ còn lại, cập nhật đơn và tạo bản ghi
// thanh toán trong cùng một transaction
func CreatePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var order models.Order
		if err := database.DB.Preload("Customer").First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy đơn hàng")
		}

		var body CreatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu không hợp lệ")
		}

		paymentDate := time.Now()
		if strings.TrimSpace(body.PaymentDate) != "" {
			d, err := time.Parse("2006-01-02", body.PaymentDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Ngày thanh toán phải theo dạng 'YYYY-MM-DD'")
			}
			paymentDate = d
		}

		beforeData := orderAuditData(order)
		currentVersion := order.Version

		updated, err := ledger.ApplyPayment(order, body.Amount)
		if err != nil {
			return mapLedgerError(err)
		}

		payment := models.Payment{
			OrderID:     order.ID,
			Amount:      body.Amount,
			PaymentDate: paymentDate,
			Method:      strings.TrimSpace(body.Method),
			Notes:       strings.TrimSpace(body.Notes),
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.Order{}).
				Where("id = ? AND version = ?", order.ID, currentVersion).
				Updates(map[string]interface{}{
					"paid_amount": updated.PaidAmount,
					"debt_amount": updated.DebtAmount,
					"status":      updated.Status,
					"version":     currentVersion + 1,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ledger.ErrConcurrencyConflict
			}
			return tx.Create(&payment).Error
		})
		if err != nil {
			if errors.Is(err, ledger.ErrConcurrencyConflict) {
				return mapLedgerError(err)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Không ghi nhận được thanh toán")
		}
		updated.Version = currentVersion + 1

		// Ghi audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:     userID,
				UserName:   userName,
				EntityType: "payment",
				EntityID:   payment.ID,
				Action:     models.AuditActionCreate,
				Description: fmt.Sprintf("Thanh toán %.0f đ cho đơn hàng #%d (còn nợ %.0f đ)",
					payment.Amount, order.ID, updated.DebtAmount),
				Before: beforeData,
				After:  orderAuditData(updated),
			}); logErr != nil {
				log.Printf("Không ghi được audit log: %v", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(PaymentWithOrderResponse{
			Payment: toPaymentResponse(payment),
			Order:   toOrderResponse(updated, false),
		})
	}
}

// GET /api/orders/:id/payments
func ListPaymentsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var order models.Order
		if err := database.DB.First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy đơn hàng")
		}

		var payments []models.Payment
		if err := database.DB.
			Where("order_id = ?", order.ID).
			Order("payment_date asc, id asc").
			Find(&payments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Không tải được danh sách thanh toán")
		}

		resp := make([]PaymentResponse, 0, len(payments))
		for _, p := range payments {
			resp = append(resp, toPaymentResponse(p))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/orders/:id/payments/:paymentId
// Xóa một thanh toán ghi nhầm và tính lại đơn từ các thanh toán còn lại (chỉ admin)
func DeletePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		paymentID := c.Params("paymentId")

		var order models.Order
		if err := database.DB.Preload("Customer").First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy đơn hàng")
		}

		if order.Status == models.OrderStatusCancelled {
			return fiber.NewError(fiber.StatusBadRequest, "Đơn hàng đã hủy, không sửa được thanh toán")
		}

		var payment models.Payment
		if err := database.DB.
			Where("id = ? AND order_id = ?", paymentID, order.ID).
			First(&payment).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy thanh toán")
		}

		beforeData := orderAuditData(order)
		currentVersion := order.Version

		var updated models.Order
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&payment).Error; err != nil {
				return err
			}

			var remaining []models.Payment
			if err := tx.Where("order_id = ?", order.ID).Find(&remaining).Error; err != nil {
				return err
			}

			updated = ledger.RecalcFromPayments(order, remaining)

			result := tx.Model(&models.Order{}).
				Where("id = ? AND version = ?", order.ID, currentVersion).
				Updates(map[string]interface{}{
					"paid_amount": updated.PaidAmount,
					"debt_amount": updated.DebtAmount,
					"status":      updated.Status,
					"version":     currentVersion + 1,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ledger.ErrConcurrencyConflict
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, ledger.ErrConcurrencyConflict) {
				return mapLedgerError(err)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Không xóa được thanh toán")
		}
		updated.Version = currentVersion + 1

		// Ghi audit log
		userID, userName, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				UserID:     userID,
				UserName:   userName,
				EntityType: "payment",
				EntityID:   payment.ID,
				Action:     models.AuditActionDelete,
				Description: fmt.Sprintf("Xóa thanh toán %.0f đ của đơn hàng #%d, tính lại còn nợ %.0f đ",
					payment.Amount, order.ID, updated.DebtAmount),
				Before: beforeData,
				After:  orderAuditData(updated),
			}); logErr != nil {
				log.Printf("Không ghi được audit log: %v", logErr)
			}
		}

		return c.JSON(toOrderResponse(updated, false))
	}
}
