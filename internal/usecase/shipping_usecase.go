package usecase

import (
	"context"
	"errors"
	"net/http"

	"geraiku/internal/domain/model"
	"geraiku/internal/gateway/shipping"
	"geraiku/internal/pricing"
	repo "geraiku/internal/repository"
)

type ShippingUsecase struct {
	client    *shipping.Client
	products  repo.ProductRepository
	merchants repo.MerchantRepository
	// 発送元が決められないときの既定地区（プラットフォーム倉庫）
	defaultOriginID   int64
	defaultCourierSet []string
}

func NewShippingUsecase(client *shipping.Client, products repo.ProductRepository, merchants repo.MerchantRepository, defaultOriginID int64) *ShippingUsecase {
	return &ShippingUsecase{
		client:            client,
		products:          products,
		merchants:         merchants,
		defaultOriginID:   defaultOriginID,
		defaultCourierSet: []string{"jne", "sicepat", "jnt"},
	}
}

func (u *ShippingUsecase) Provinces(ctx context.Context) ([]shipping.Location, error) {
	return u.wrap(u.client.Provinces(ctx))
}

func (u *ShippingUsecase) Cities(ctx context.Context, provinceID int64) ([]shipping.Location, error) {
	if provinceID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid province id")
	}
	return u.wrap(u.client.Cities(ctx, provinceID))
}

func (u *ShippingUsecase) Districts(ctx context.Context, cityID int64) ([]shipping.Location, error) {
	if cityID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid city id")
	}
	return u.wrap(u.client.Districts(ctx, cityID))
}

func (u *ShippingUsecase) Villages(ctx context.Context, districtID int64) ([]shipping.Location, error) {
	if districtID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid district id")
	}
	return u.wrap(u.client.Villages(ctx, districtID))
}

type QuoteItemInput struct {
	ProductID int64
	Quantity  int64
}

type QuoteInput struct {
	DestinationDistrictID int64
	Items                 []QuoteItemInput
	Couriers              []string
}

type QuoteOutput struct {
	WeightGrams int64           `json:"weight_grams"`
	Rates       []shipping.Rate `json:"rates"`
}

// Quote はカート内容から重量を出して配送料候補を安い順に返す。
// 候補ゼロは「配送不可ルート」でエラーではない（呼び出し側が別表示にする）。
func (u *ShippingUsecase) Quote(ctx context.Context, in QuoteInput) (QuoteOutput, error) {
	if in.DestinationDistrictID <= 0 {
		return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "invalid destination district")
	}
	if len(in.Items) == 0 {
		return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "items required")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity < 1 {
			return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
	}

	couriers := in.Couriers
	if len(couriers) == 0 {
		couriers = u.defaultCourierSet
	}

	// 発地は商品のマーチャントの地区。単一マーチャント前提なので先頭で決まる
	lines := make([]pricing.Line, 0, len(in.Items))
	var merchant model.Merchant
	for i, it := range in.Items {
		p, err := u.products.FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "product not available")
		}
		if err != nil {
			return QuoteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if i == 0 {
			m, err := u.merchants.FindByID(ctx, p.MerchantID)
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return QuoteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			merchant = m
		}
		lines = append(lines, pricing.Line{
			ProductID:   p.ID,
			Quantity:    it.Quantity,
			WeightGrams: p.WeightGrams,
		})
	}

	origin := merchant.OriginDistrictID
	if origin <= 0 {
		origin = u.defaultOriginID
	}

	weight := pricing.TotalWeightGrams(lines)

	rates, err := u.client.Quote(ctx, origin, in.DestinationDistrictID, weight, couriers)
	if err != nil {
		return QuoteOutput{}, NewHTTPError(http.StatusServiceUnavailable, "shipping calculation failed")
	}

	return QuoteOutput{WeightGrams: weight, Rates: rates}, nil
}

func (u *ShippingUsecase) wrap(locs []shipping.Location, err error) ([]shipping.Location, error) {
	if err != nil {
		return nil, NewHTTPError(http.StatusServiceUnavailable, "shipping calculation failed")
	}
	return locs, nil
}
