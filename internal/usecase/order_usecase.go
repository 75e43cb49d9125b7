package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"geraiku/internal/domain/model"
	repo "geraiku/internal/repository"
)

// OrderUsecase は注文の読み取り側（顧客・店舗）。
// 書き込みはCheckoutUsecaseとOrderStatusUsecaseだけが行う。
type OrderUsecase struct {
	tx        repo.TransactionManager
	merchants repo.MerchantRepository
}

func NewOrderUsecase(tx repo.TransactionManager, merchants repo.MerchantRepository) *OrderUsecase {
	return &OrderUsecase{tx: tx, merchants: merchants}
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	OrderNumber     string            `json:"order_number"`
	UserID          int64             `json:"user_id"`
	MerchantID      int64             `json:"merchant_id"`
	Status          string            `json:"status"`
	StatusLabel     string            `json:"status_label"`
	PaymentMethod   string            `json:"payment_method"`
	DeliveryMethod  string            `json:"delivery_method"`
	Subtotal        int64             `json:"subtotal"`
	ShippingCost    int64             `json:"shipping_cost"`
	TotalPrice      int64             `json:"total_price"`
	ShippingCourier string            `json:"shipping_courier,omitempty"`
	ShippingService string            `json:"shipping_service,omitempty"`
	ShippingETD     string            `json:"shipping_etd,omitempty"`
	TrackingNumber  string            `json:"tracking_number,omitempty"`
	CustomerNotes   string            `json:"customer_notes,omitempty"`
	MerchantNotes   string            `json:"merchant_notes,omitempty"`
	PaidAt          *time.Time        `json:"paid_at,omitempty"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ListMerchantOrders は呼び出したユーザーが持つ店舗の注文一覧。
func (u *OrderUsecase) ListMerchantOrders(ctx context.Context, merchantUserID int64, f repo.MerchantOrderListFilter) ([]OrderOutput, error) {
	if merchantUserID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if f.Page < 1 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !model.OrderStatus(f.Status).Valid() {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	m, err := u.merchants.FindByUserID(ctx, merchantUserID)
	if errors.Is(err, repo.ErrNotFound) {
		return []OrderOutput{}, NewHTTPError(http.StatusForbidden, "merchant only")
	}
	if err != nil {
		return []OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var outs []OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByMerchantID(ctx, m.ID, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Image:     it.ProductImageSnapshot,
			Price:     it.PriceAtTime,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		MerchantID:      o.MerchantID,
		Status:          string(o.Status),
		StatusLabel:     o.Status.Meta().Label,
		PaymentMethod:   string(o.PaymentMethod),
		DeliveryMethod:  string(o.DeliveryMethod),
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		TotalPrice:      o.TotalPrice,
		ShippingCourier: o.ShippingCourier,
		ShippingService: o.ShippingService,
		ShippingETD:     o.ShippingETD,
		TrackingNumber:  o.TrackingNumber,
		CustomerNotes:   o.CustomerNotes,
		MerchantNotes:   o.MerchantNotes,
		PaidAt:          o.PaidAt,
		CompletedAt:     o.CompletedAt,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
