package models

import "time"

// Material: Nguyên vật liệu trong kho (thép, sơn, ốc vít...)
type Material struct {
	ID           uint    `gorm:"primaryKey"`
	Name         string  `gorm:"size:100;not null;unique"`
	Unit         string  `gorm:"size:20;not null"` // kg, m, cái...
	CurrentStock float64 `gorm:"not null;default:0"` // tồn kho hiện tại, không âm
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
