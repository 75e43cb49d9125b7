package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// NotificationPayload は決済WebhookのPOSTボディ。
type NotificationPayload struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
}

// VerifySignature は sha512(order_id + status_code + gross_amount + serverKey) を
// 再計算して照合する。偽の入金通知を弾く唯一の防壁なので、不一致は必ず拒否。
func VerifySignature(externalID string, statusCode string, grossAmount string, serverKey string, signatureKey string) bool {
	h := sha512.Sum512([]byte(externalID + statusCode + grossAmount + serverKey))
	expected := hex.EncodeToString(h[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signatureKey)) == 1
}
