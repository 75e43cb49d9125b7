package pricing

const (
	// 重量未設定の商品に使う既定値
	DefaultItemWeightGrams int64 = 500
	// 料金プロバイダに渡す荷物重量の下限
	MinChargeableWeightGrams int64 = 1000
)

type Line struct {
	ProductID   int64
	Quantity    int64
	Price       int64
	WeightGrams int64
}

// Subtotal = Σ price × quantity
func Subtotal(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.Price * l.Quantity
	}
	return total
}

// TotalWeightGrams は配送重量。重量0の行は500g扱い、合計には1000gの下限を適用する。
func TotalWeightGrams(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		w := l.WeightGrams
		if w <= 0 {
			w = DefaultItemWeightGrams
		}
		total += w * l.Quantity
	}
	if total < MinChargeableWeightGrams {
		return MinChargeableWeightGrams
	}
	return total
}
