package model

import "time"

// 注文明細は購入時点のスナップショット。後から商品が編集されても変わらない。
type OrderItem struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID              int64     `gorm:"not null;index" json:"order_id"`
	ProductID            int64     `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot  string    `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	ProductImageSnapshot string    `gorm:"type:varchar(500)" json:"product_image_snapshot,omitempty"`
	Quantity             int64     `gorm:"not null" json:"quantity"`
	PriceAtTime          int64     `gorm:"not null" json:"price_at_time"`
	// Subtotal = Quantity × PriceAtTime
	Subtotal  int64     `gorm:"not null" json:"subtotal"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
