package model

import "time"

// 配送先住所。行政区分はID+名称の両方を持つ（料金APIはIDを使い、表示は名称を使う）。
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//宛名
	RecipientName string `gorm:"type:varchar(255);not null" json:"recipient_name"`
	//電話番号
	Phone string `gorm:"type:varchar(30);not null" json:"phone"`

	ProvinceID   int64  `gorm:"not null" json:"province_id"`
	ProvinceName string `gorm:"type:varchar(100);not null" json:"province_name"`
	CityID       int64  `gorm:"not null" json:"city_id"`
	CityName     string `gorm:"type:varchar(100);not null" json:"city_name"`
	DistrictID   int64  `gorm:"not null" json:"district_id"`
	DistrictName string `gorm:"type:varchar(100);not null" json:"district_name"`
	VillageID    int64  `gorm:"not null" json:"village_id"`
	VillageName  string `gorm:"type:varchar(100);not null" json:"village_name"`

	PostalCode    string `gorm:"type:varchar(10);not null" json:"postal_code"`
	StreetAddress string `gorm:"type:text;not null" json:"street_address"`
	Notes         string `gorm:"type:text" json:"notes,omitempty"`

	// 1ユーザーにつきprimaryは最大1つ（SetPrimaryが同一Tx内で他を落とす）
	IsPrimary bool `gorm:"not null;default:false" json:"is_primary"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
