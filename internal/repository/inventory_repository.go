package repository

import "context"

// 在庫台帳。どちらも単発のアトミックUPDATEで実装すること
//（同時チェックアウトで最後の1個を二重に売らないため）。
type InventoryRepository interface {
	// 在庫が足りるときだけ減らす（足りなければ false）
	DecrementIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)
	// 在庫戻し（キャンセル時）
	Increment(ctx context.Context, productID int64, qty int64) error
}
