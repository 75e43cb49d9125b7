package model

import "time"

type PaymentMethod string

const (
	PaymentMethodOnline      PaymentMethod = "online"
	PaymentMethodCOD         PaymentMethod = "cod"
	PaymentMethodCashAtStore PaymentMethod = "cash_at_store"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodOnline, PaymentMethodCOD, PaymentMethodCashAtStore:
		return true
	}
	return false
}

type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "delivery"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

func (m DeliveryMethod) Valid() bool {
	switch m {
	case DeliveryMethodDelivery, DeliveryMethodPickup:
		return true
	}
	return false
}

// Order は1店舗に対する1回の購入。行削除はしない（キャンセルもstatusで表す）。
type Order struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string `gorm:"type:varchar(40);not null;uniqueIndex" json:"order_number"`
	UserID      int64 `gorm:"not null;index" json:"user_id"`
	MerchantID  int64 `gorm:"not null;index" json:"merchant_id"`

	Status         OrderStatus    `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod  PaymentMethod  `gorm:"type:varchar(20);not null" json:"payment_method"`
	DeliveryMethod DeliveryMethod `gorm:"type:varchar(20);not null" json:"delivery_method"`

	// TotalPrice = Subtotal + ShippingCost（作成時に確定、以後再計算しない）
	Subtotal     int64 `gorm:"not null" json:"subtotal"`
	ShippingCost int64 `gorm:"not null" json:"shipping_cost"`
	TotalPrice   int64 `gorm:"not null" json:"total_price"`

	// delivery のときだけ必須
	AddressID     *int64 `gorm:"index" json:"address_id,omitempty"`
	TransactionID *int64 `gorm:"uniqueIndex" json:"transaction_id,omitempty"`

	ShippingCourier string `gorm:"type:varchar(50)" json:"shipping_courier,omitempty"`
	ShippingService string `gorm:"type:varchar(50)" json:"shipping_service,omitempty"`
	ShippingETD     string `gorm:"type:varchar(30);column:shipping_etd" json:"shipping_etd,omitempty"`
	TrackingNumber  string `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`

	// 通知用スナップショット（会員情報は外部IDプロバイダ側にあるため）
	CustomerName  string `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	CustomerEmail string `gorm:"type:varchar(255)" json:"customer_email,omitempty"`

	CustomerNotes string `gorm:"type:text" json:"customer_notes,omitempty"`
	MerchantNotes string `gorm:"type:text" json:"merchant_notes,omitempty"`

	IdempotencyKey string `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
