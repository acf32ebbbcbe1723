package database

import (
	"log"

	"cokhi-backend/internal/config"
	"cokhi-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Không kết nối được database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Material{},
		&models.Product{},
		&models.ProductMaterial{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.DebtAdjustment{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("Lỗi AutoMigrate: %v", err)
	}

	// Migration thủ công: bản ghi Order cũ có thể còn version NULL
	// (AutoMigrate chỉ đặt default cho bản ghi mới)
	if DB.Migrator().HasTable(&models.Order{}) {
		var nullCount int64
		DB.Raw("SELECT COUNT(*) FROM orders WHERE version IS NULL").Scan(&nullCount)
		if nullCount > 0 {
			log.Printf("Tìm thấy %d đơn hàng chưa có version, đang cập nhật...", nullCount)
			DB.Exec("UPDATE orders SET version = 1 WHERE version IS NULL")
		}
	}

	// Tồn kho không được âm, chặn luôn ở tầng database
	if !DB.Migrator().HasConstraint(&models.Material{}, "chk_materials_stock_non_negative") {
		if err := DB.Exec("ALTER TABLE materials ADD CONSTRAINT chk_materials_stock_non_negative CHECK (current_stock >= 0)").Error; err != nil {
			log.Printf("Không thêm được constraint tồn kho (có thể đã tồn tại): %v", err)
		}
	}

	log.Println("Kết nối database thành công. Migration hoàn tất.")
}
