package main

import (
	"log"
	"strings"

	"cokhi-backend/internal/audit"
	"cokhi-backend/internal/auth"
	"cokhi-backend/internal/catalog"
	"cokhi-backend/internal/config"
	"cokhi-backend/internal/customers"
	"cokhi-backend/internal/database"
	"cokhi-backend/internal/inventory"
	"cokhi-backend/internal/models"
	"cokhi-backend/internal/orders"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Lỗi máy chủ không xác định",
			})
		},
	})

	// CORS: danh sách origin phân tách bằng dấu phẩy trong env
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Quản lý tài khoản
	adminRoutes.Post("/users", auth.CreateUserHandler())

	// Khách hàng
	protected.Get("/customers", customers.ListCustomersHandler())
	protected.Post("/customers", customers.CreateCustomerHandler())
	protected.Get("/customers/:id", customers.GetCustomerHandler())
	protected.Put("/customers/:id", customers.UpdateCustomerHandler())
	protected.Delete("/customers/:id", auth.RequireRole(models.RoleAdmin), customers.DeleteCustomerHandler())

	// Công nợ
	protected.Get("/customers/:id/debt-summary", customers.GetDebtSummaryHandler())
	protected.Get("/customers/:id/debt-adjustments", customers.ListDebtAdjustmentsHandler())
	protected.Post("/customers/:id/debt-adjustments", auth.RequireRole(models.RoleAdmin), customers.CreateDebtAdjustmentHandler())

	// Sản phẩm & định mức vật liệu
	protected.Get("/products", catalog.ListProductsHandler())
	protected.Post("/products", catalog.CreateProductHandler())
	protected.Put("/products/:id", catalog.UpdateProductHandler())
	protected.Delete("/products/:id", auth.RequireRole(models.RoleAdmin), catalog.DeleteProductHandler())
	protected.Get("/products/:id/materials", catalog.GetProductMaterialsHandler())
	protected.Put("/products/:id/materials", catalog.SetProductMaterialsHandler())

	// Vật liệu & tồn kho
	protected.Get("/materials", inventory.ListMaterialsHandler())
	protected.Post("/materials", inventory.CreateMaterialHandler())
	protected.Get("/materials/shortages", inventory.ListShortagesHandler())
	protected.Post("/materials/import", inventory.ImportMaterialsHandler())
	protected.Put("/materials/:id", inventory.UpdateMaterialHandler())
	protected.Delete("/materials/:id", auth.RequireRole(models.RoleAdmin), inventory.DeleteMaterialHandler())
	protected.Post("/materials/:id/stock-adjustments", inventory.AdjustStockHandler())

	// Đơn hàng
	protected.Post("/orders", orders.CreateOrderHandler())
	protected.Get("/orders", orders.ListOrdersHandler())
	protected.Get("/orders/:id", orders.GetOrderHandler())
	protected.Put("/orders/:id", orders.UpdateOrderHandler())
	protected.Post("/orders/:id/cancel", orders.CancelOrderHandler())
	protected.Delete("/orders/:id", auth.RequireRole(models.RoleAdmin), orders.DeleteOrderHandler())

	// Thanh toán
	protected.Post("/orders/:id/payments", orders.CreatePaymentHandler())
	protected.Get("/orders/:id/payments", orders.ListPaymentsHandler())
	protected.Delete("/orders/:id/payments/:paymentId", auth.RequireRole(models.RoleAdmin), orders.DeletePaymentHandler())

	// Audit logs
	protected.Get("/audit-logs", auth.RequireRole(models.RoleAdmin), audit.ListAuditLogsHandler())

	log.Println("Server đang chạy port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
