package model

import "time"

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusDone    OutboxStatus = "DONE"
)

// ステータス変更と同じTxで積まれ、ディスパッチャが後から送る。
// 送信失敗は次のsweepで再試行（本体の遷移は巻き戻さない）。
type NotificationOutbox struct {
	ID             int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        int64        `gorm:"not null;index" json:"order_id"`
	OrderNumber    string       `gorm:"type:varchar(40);not null" json:"order_number"`
	UserID         int64        `gorm:"not null;index" json:"user_id"`
	RecipientEmail string       `gorm:"type:varchar(255)" json:"recipient_email"`
	OldStatus      OrderStatus  `gorm:"type:varchar(20);not null" json:"old_status"`
	NewStatus      OrderStatus  `gorm:"type:varchar(20);not null" json:"new_status"`
	Status         OutboxStatus `gorm:"type:varchar(10);not null;index" json:"status"`
	Attempts       int          `gorm:"not null;default:0" json:"attempts"`
	CreatedAt      time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
