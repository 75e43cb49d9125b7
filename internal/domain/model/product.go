package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	MerchantID  int64  `gorm:"not null;index" json:"merchant_id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	Price       int64  `gorm:"not null" json:"price"`
	// 在庫は条件付きUPDATEでしか増減しない（read-modify-write禁止）
	Stock int64 `gorm:"not null" json:"stock"`
	// 0なら料金計算時に既定重量（500g）を使う
	WeightGrams int64          `gorm:"not null;default:0" json:"weight_grams"`
	IsActive    bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
