package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"geraiku/internal/domain/model"
	"geraiku/internal/gateway/payment"
	"geraiku/internal/pricing"
	repo "geraiku/internal/repository"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// PaymentGateway はチェックアウトが使うゲートウェイ操作の約束。
type PaymentGateway interface {
	CreateChargeIntent(externalID string, grossAmount int64, lines []payment.ItemLine, cust payment.Customer) (string, error)
}

// CheckoutUsecase がOrder Aggregate Builder。
// カートを価格確定済みのOrder+OrderItem（+オンライン決済ならTransaction）に変える。
type CheckoutUsecase struct {
	tx           repo.TransactionManager
	orders       repo.OrderRepository
	transactions repo.TransactionRepository
	addresses    repo.AddressRepository
	products     repo.ProductRepository
	gateway      PaymentGateway
	log          *zap.Logger
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	transactions repo.TransactionRepository,
	addresses repo.AddressRepository,
	products repo.ProductRepository,
	gateway PaymentGateway,
	log *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:           tx,
		orders:       orders,
		transactions: transactions,
		addresses:    addresses,
		products:     products,
		gateway:      gateway,
		log:          log,
	}
}

type CheckoutItemInput struct {
	ProductID int64
	Quantity  int64
}

type CheckoutInput struct {
	Items          []CheckoutItemInput
	PaymentMethod  string
	DeliveryMethod string
	AddressID      int64

	ShippingCourier string
	ShippingService string
	ShippingCost    int64
	ShippingETD     string

	CustomerNotes  string
	IdempotencyKey string

	// JWTのクレームから（通知用スナップショット）
	CustomerName  string
	CustomerEmail string
}

type CheckoutOutput struct {
	OrderID         int64  `json:"order_id"`
	OrderNumber     string `json:"order_number"`
	Status          string `json:"status"`
	Subtotal        int64  `json:"subtotal"`
	ShippingCost    int64  `json:"shipping_cost"`
	TotalPrice      int64  `json:"total_price"`
	SnapToken       string `json:"snap_token,omitempty"`
	RequiresPayment bool   `json:"requires_payment"`
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	if len(in.Items) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "items required")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity < 1 {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
	}

	paymentMethod := model.PaymentMethod(in.PaymentMethod)
	if !paymentMethod.Valid() {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment_method")
	}
	deliveryMethod := model.DeliveryMethod(in.DeliveryMethod)
	if !deliveryMethod.Valid() {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid delivery_method")
	}

	if deliveryMethod == model.DeliveryMethodDelivery {
		if in.AddressID <= 0 {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "address is required for delivery")
		}
		if strings.TrimSpace(in.ShippingCourier) == "" || strings.TrimSpace(in.ShippingService) == "" {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "shipping courier and service are required")
		}
		if in.ShippingCost < 0 {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_cost")
		}
	} else {
		// pickupは配送なし
		in.AddressID = 0
		in.ShippingCost = 0
	}

	// 住所の存在＋所有チェック
	if deliveryMethod == model.DeliveryMethodDelivery {
		addr, err := u.addresses.FindByID(ctx, in.AddressID)
		if errors.Is(err, repo.ErrNotFound) {
			return CheckoutOutput{}, NewHTTPError(http.StatusNotFound, "address not found")
		}
		if err != nil {
			return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if addr.UserID != userID {
			return CheckoutOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}

	// 同じキーの再送は元の結果を返す（ゲートウェイを二重に叩く前に判定する）
	if existing, found, err := u.orders.FindByIdempotencyKey(ctx, userID, key); err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	} else if found {
		return u.replayOutput(ctx, existing), nil
	}

	// 商品を確定してマーチャントを推定（複数店舗カートは非対応）
	type pricedItem struct {
		product model.Product
		qty     int64
	}
	pricedItems := make([]pricedItem, 0, len(in.Items))
	lines := make([]pricing.Line, 0, len(in.Items))

	var merchantID int64
	for i, it := range in.Items {
		p, err := u.products.FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "product not available")
		}
		if err != nil {
			return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if i == 0 {
			merchantID = p.MerchantID
		} else if p.MerchantID != merchantID {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "all items must belong to the same merchant")
		}

		pricedItems = append(pricedItems, pricedItem{product: p, qty: it.Quantity})
		lines = append(lines, pricing.Line{
			ProductID:   p.ID,
			Quantity:    it.Quantity,
			Price:       p.Price,
			WeightGrams: p.WeightGrams,
		})
	}

	subtotal := pricing.Subtotal(lines)
	totalPrice := subtotal + in.ShippingCost
	// cash_at_storeはゲートウェイを通らないのでTransaction行を作らない。
	// 入金は店舗の手動paid遷移で記録する
	requiresPayment := paymentMethod == model.PaymentMethodOnline

	// ゲートウェイ呼び出しはDBトランザクションの外で先に済ませる。
	// Txが失敗してもDBにはTransaction行が残らず、ゲートウェイ側のintentは失効するだけ。
	var externalID string
	var snapToken string
	if requiresPayment {
		externalID = uuid.NewString()

		gatewayLines := make([]payment.ItemLine, 0, len(pricedItems)+1)
		for _, pi := range pricedItems {
			gatewayLines = append(gatewayLines, payment.ItemLine{
				ID:       productRef(pi.product.ID),
				Name:     pi.product.Name,
				Price:    pi.product.Price,
				Quantity: pi.qty,
			})
		}
		if in.ShippingCost > 0 {
			// 明細合計 = gross を満たすための送料行
			gatewayLines = append(gatewayLines, payment.ItemLine{
				ID:       "shipping-fee",
				Name:     "Ongkos Kirim",
				Price:    in.ShippingCost,
				Quantity: 1,
			})
		}

		token, err := u.gateway.CreateChargeIntent(externalID, totalPrice, gatewayLines, payment.Customer{
			Name:  in.CustomerName,
			Email: in.CustomerEmail,
		})
		if err != nil {
			u.log.Warn("charge intent creation failed",
				zap.String("external_id", externalID), zap.Error(err))
			return CheckoutOutput{}, NewHTTPError(http.StatusServiceUnavailable, "payment service unavailable")
		}
		snapToken = token
	}

	orderNumber := "GK-" + ulid.Make().String()
	initialStatus := model.InitialStatus(paymentMethod)

	var out CheckoutOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var transactionID *int64
		if requiresPayment {
			id, err := r.Transactions().Create(ctx, model.Transaction{
				ExternalID: externalID,
				UserID:     userID,
				MerchantID: merchantID,
				TotalPrice: totalPrice,
				Status:     model.TransactionStatusPending,
				SnapToken:  snapToken,
			})
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			transactionID = &id
		}

		// CODだけは受注時点で在庫を確定する（processingで生まれるため）。
		// それ以外は入金確定時（webhook / 手動paid）に引く。
		if initialStatus == model.OrderStatusProcessing {
			for _, pi := range pricedItems {
				ok, err := r.Inventory().DecrementIfEnough(ctx, pi.product.ID, pi.qty)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if !ok {
					return NewHTTPError(http.StatusBadRequest, "out of stock")
				}
			}
		}

		var addressID *int64
		if in.AddressID > 0 {
			addressID = &in.AddressID
		}

		order := model.Order{
			OrderNumber:     orderNumber,
			UserID:          userID,
			MerchantID:      merchantID,
			Status:          initialStatus,
			PaymentMethod:   paymentMethod,
			DeliveryMethod:  deliveryMethod,
			Subtotal:        subtotal,
			ShippingCost:    in.ShippingCost,
			TotalPrice:      totalPrice,
			AddressID:       addressID,
			TransactionID:   transactionID,
			ShippingCourier: in.ShippingCourier,
			ShippingService: in.ShippingService,
			ShippingETD:     in.ShippingETD,
			CustomerName:    in.CustomerName,
			CustomerEmail:   in.CustomerEmail,
			CustomerNotes:   in.CustomerNotes,
			IdempotencyKey:  key,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			// 同時に同じキーが入った場合はもう一回検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err2 == nil && found2 {
				out = u.replayOutput(ctx, ex2)
				return nil
			}
			return NewHTTPError(http.StatusBadRequest, "idempotency conflict")
		}

		orderItems := make([]model.OrderItem, 0, len(pricedItems))
		for _, pi := range pricedItems {
			orderItems = append(orderItems, model.OrderItem{
				ProductID:            pi.product.ID,
				ProductNameSnapshot:  pi.product.Name,
				ProductImageSnapshot: pi.product.ImageURL,
				Quantity:             pi.qty,
				PriceAtTime:          pi.product.Price,
				Subtotal:             pi.qty * pi.product.Price,
			})
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// ACTIVEカートがあれば空にする（再注文防止、無ければ何もしない）
		if cart, err := r.Carts().FindActiveByUserID(ctx, userID); err == nil {
			if err := r.Carts().Clear(ctx, cart.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else if !errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = CheckoutOutput{
			OrderID:         orderID,
			OrderNumber:     orderNumber,
			Status:          string(initialStatus),
			Subtotal:        subtotal,
			ShippingCost:    in.ShippingCost,
			TotalPrice:      totalPrice,
			SnapToken:       snapToken,
			RequiresPayment: requiresPayment,
		}
		return nil
	})

	if err != nil {
		if requiresPayment {
			// intentは発行済みなので突き合わせ用に必ず残す
			u.log.Error("order persistence failed after charge intent was created",
				zap.String("external_id", externalID),
				zap.String("order_number", orderNumber),
				zap.Int64("user_id", userID),
				zap.Error(err))
		}
		return CheckoutOutput{}, err
	}
	return out, nil
}

// 再送には元の注文と同じレスポンスを返す。未払いのオンライン注文なら
// 保存済みのSnapトークンも付け直して決済UIを開き直せるようにする。
func (u *CheckoutUsecase) replayOutput(ctx context.Context, o model.Order) CheckoutOutput {
	out := CheckoutOutput{
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          string(o.Status),
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		TotalPrice:      o.TotalPrice,
		RequiresPayment: o.PaymentMethod == model.PaymentMethodOnline && o.Status == model.OrderStatusPendingPayment,
	}

	if out.RequiresPayment && o.TransactionID != nil {
		if t, err := u.transactions.FindByID(ctx, *o.TransactionID); err == nil {
			out.SnapToken = t.SnapToken
		}
	}
	return out
}

func productRef(productID int64) string {
	return "p-" + strconv.FormatInt(productID, 10)
}
