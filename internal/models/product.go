package models

import "time"

type Product struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	Unit      string `gorm:"size:20;not null"` // cái, bộ, m2...
	CreatedAt time.Time
	UpdatedAt time.Time

	Materials []ProductMaterial `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// ProductMaterial: Định mức vật liệu cho 1 đơn vị sản phẩm (BOM)
type ProductMaterial struct {
	ID         uint     `gorm:"primaryKey"`
	ProductID  uint     `gorm:"index;not null;uniqueIndex:idx_product_material"`
	MaterialID uint     `gorm:"index;not null;uniqueIndex:idx_product_material"`
	Material   Material `gorm:"foreignKey:MaterialID"`
	Quantity   float64  `gorm:"not null"` // số lượng cần cho 1 sản phẩm, > 0
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
