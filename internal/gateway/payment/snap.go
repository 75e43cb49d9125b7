package payment

import (
	"fmt"
	"net/http"
	"time"

	"geraiku/internal/domain/model"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

type ItemLine struct {
	ID       string
	Name     string
	Price    int64
	Quantity int64
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

// SnapGateway はMidtrans Snapのラッパー。
// チャージ作成とWebhook署名検証だけを外に見せる。
type SnapGateway struct {
	client    snap.Client
	serverKey string
}

func NewSnapGateway(serverKey string, clientKey string, production bool, timeout time.Duration) *SnapGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	// ゲートウェイ呼び出しはチェックアウトを塞がないよう必ず打ち切る
	midtrans.DefaultGoHttpClient = &http.Client{Timeout: timeout}

	var c snap.Client
	c.New(serverKey, env)

	return &SnapGateway{client: c, serverKey: serverKey}
}

// CreateChargeIntent はSnapトークンを発行する。
// 明細の合計がgrossAmountと一致しないとゲートウェイ側で弾かれるので、
// 呼び出し側（Aggregate Builder）が送料行を足して揃える。
func (g *SnapGateway) CreateChargeIntent(externalID string, grossAmount int64, lines []ItemLine, cust Customer) (string, error) {
	items := make([]midtrans.ItemDetails, 0, len(lines))
	var sum int64
	for _, l := range lines {
		items = append(items, midtrans.ItemDetails{
			ID:    l.ID,
			Name:  l.Name,
			Price: l.Price,
			Qty:   int32(l.Quantity),
		})
		sum += l.Price * l.Quantity
	}
	if sum != grossAmount {
		return "", fmt.Errorf("item lines sum %d does not match gross amount %d", sum, grossAmount)
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  externalID,
			GrossAmt: grossAmount,
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: cust.Name,
			Email: cust.Email,
			Phone: cust.Phone,
		},
	}

	resp, err := g.client.CreateTransaction(req)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (g *SnapGateway) VerifyWebhookSignature(externalID string, statusCode string, grossAmount string, signatureKey string) bool {
	return VerifySignature(externalID, statusCode, grossAmount, g.serverKey, signatureKey)
}

// MapTransactionStatus はゲートウェイのtransaction_statusを内部statusへ写す。
func MapTransactionStatus(gatewayStatus string, fraudStatus string) (model.TransactionStatus, bool) {
	switch gatewayStatus {
	case "capture":
		// カード決済はフラグ付きだと保留扱い
		if fraudStatus != "" && fraudStatus != "accept" {
			return model.TransactionStatusPending, true
		}
		return model.TransactionStatusSettlement, true
	case "settlement":
		return model.TransactionStatusSettlement, true
	case "pending":
		return model.TransactionStatusPending, true
	case "deny":
		return model.TransactionStatusDeny, true
	case "cancel":
		return model.TransactionStatusCancel, true
	case "expire":
		return model.TransactionStatusExpire, true
	}
	return "", false
}
