package model

import "time"

// Merchant は出店者（warung/UMKM）の店舗。
// OriginDistrictID は配送料見積もりの発送元になる。
type Merchant struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	OriginDistrictID int64     `gorm:"not null" json:"origin_district_id"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
