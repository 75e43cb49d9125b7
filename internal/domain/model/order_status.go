package model

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusReadyToShip    OrderStatus = "ready_to_ship"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusFailed         OrderStatus = "failed"
)

// OrderStatusMeta は状態ごとのメタ情報。
// 遷移表はここが唯一の定義で、サーバ側の検証も /order-statuses のレスポンスも
// この表を読む。
type OrderStatusMeta struct {
	Label string `json:"label"`
	// 遷移できる先
	Next []OrderStatus `json:"next"`
	// 顧客自身がキャンセルできる状態か
	CustomerCancellable bool `json:"customer_cancellable"`
	// この状態からのキャンセルで在庫を戻すか（pending_paymentはまだ在庫確保前）
	RestockOnCancel bool `json:"restock_on_cancel"`
}

var orderStatusTable = map[OrderStatus]OrderStatusMeta{
	OrderStatusPendingPayment: {
		Label:               "Menunggu Pembayaran",
		Next:                []OrderStatus{OrderStatusPaid, OrderStatusCancelled, OrderStatusFailed},
		CustomerCancellable: true,
		RestockOnCancel:     false,
	},
	OrderStatusPaid: {
		Label:               "Dibayar",
		Next:                []OrderStatus{OrderStatusProcessing, OrderStatusCancelled},
		CustomerCancellable: true,
		RestockOnCancel:     true,
	},
	OrderStatusProcessing: {
		Label:               "Diproses",
		Next:                []OrderStatus{OrderStatusReadyToShip, OrderStatusCancelled},
		CustomerCancellable: true,
		RestockOnCancel:     true,
	},
	OrderStatusReadyToShip: {
		// delivered への直行は pickup 注文のみ（配送なしで受け渡し）
		Label:               "Siap Dikirim",
		Next:                []OrderStatus{OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
		CustomerCancellable: false,
		RestockOnCancel:     true,
	},
	OrderStatusShipped: {
		Label:               "Dikirim",
		Next:                []OrderStatus{OrderStatusDelivered, OrderStatusCancelled},
		CustomerCancellable: false,
		RestockOnCancel:     true,
	},
	OrderStatusDelivered: {
		Label:               "Diterima",
		Next:                []OrderStatus{OrderStatusCompleted},
		CustomerCancellable: false,
		RestockOnCancel:     false,
	},
	OrderStatusCompleted: {
		Label: "Selesai",
	},
	OrderStatusCancelled: {
		Label: "Dibatalkan",
	},
	OrderStatusFailed: {
		Label: "Gagal",
	},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusTable[s]
	return ok
}

func (s OrderStatus) Meta() OrderStatusMeta {
	return orderStatusTable[s]
}

func (s OrderStatus) Terminal() bool {
	return len(orderStatusTable[s].Next) == 0
}

// CanTransition は遷移表に載っているエッジだけを許可する。
func CanTransition(from OrderStatus, to OrderStatus) bool {
	meta, ok := orderStatusTable[from]
	if !ok {
		return false
	}
	for _, n := range meta.Next {
		if n == to {
			return true
		}
	}
	return false
}

// InitialStatus はCODだけ支払い確認を飛ばしてprocessingから始まる
//（代金は受け渡し時に回収するため）。
func InitialStatus(pm PaymentMethod) OrderStatus {
	if pm == PaymentMethodCOD {
		return OrderStatusProcessing
	}
	return OrderStatusPendingPayment
}

// OrderStatuses はメタ表のコピーを返す（/order-statuses用）。
func OrderStatuses() map[OrderStatus]OrderStatusMeta {
	out := make(map[OrderStatus]OrderStatusMeta, len(orderStatusTable))
	for k, v := range orderStatusTable {
		out[k] = v
	}
	return out
}
