package model

import "time"

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusSettlement TransactionStatus = "settlement"
	TransactionStatusExpire     TransactionStatus = "expire"
	TransactionStatusCancel     TransactionStatus = "cancel"
	TransactionStatusDeny       TransactionStatus = "deny"
)

// Transaction は決済ゲートウェイ向けのレコード。statusはWebhookだけが動かす
//（店舗側の画面からは一切触らない）。
type Transaction struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	// ゲートウェイに渡すorder_id（全体で一意）
	ExternalID  string            `gorm:"type:varchar(64);not null;uniqueIndex" json:"external_id"`
	UserID      int64             `gorm:"not null;index" json:"user_id"`
	MerchantID  int64             `gorm:"not null;index" json:"merchant_id"`
	TotalPrice  int64             `gorm:"not null" json:"total_price"`
	Status      TransactionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentType string            `gorm:"type:varchar(50)" json:"payment_type,omitempty"`
	// ブラウザが決済UIを開くためのトークン
	SnapToken string    `gorm:"type:varchar(255)" json:"snap_token,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
