package usecase

import (
	"context"
	"errors"
	"net/http"

	"geraiku/internal/domain/model"
	repo "geraiku/internal/repository"
)

// CartUsecase はサーバ側を正とするカート。
// クライアントのローカルキャッシュはMergeで取り込むだけで、以後はサーバ状態を描画する。
type CartUsecase struct {
	tx        repo.TransactionManager
	carts     repo.CartRepository
	cartItems repo.CartItemRepository
	products  repo.ProductRepository
}

func NewCartUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	cartItems repo.CartItemRepository,
	products repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		tx:        tx,
		carts:     carts,
		cartItems: cartItems,
		products:  products,
	}
}

type CartItemResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// MergeLine はセッション開始時にクライアントが送るローカルキャッシュの1行。
type MergeLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// GetCart はカート取得（無ければACTIVEを作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.carts.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// AddToCart はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	p, err := u.products.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "product not available")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.carts.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	existing, found, err := u.cartItems.FindByCartAndProduct(ctx, cart.ID, in.ProductID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if found {
		if err := u.cartItems.UpdateQuantity(ctx, existing.ID, existing.Quantity+in.Quantity); err != nil {
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	} else {
		_, err := u.cartItems.Create(ctx, model.CartItem{
			CartID:            cart.ID,
			ProductID:         in.ProductID,
			Quantity:          in.Quantity,
			UnitPriceSnapshot: p.Price,
		})
		if err != nil {
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	return u.buildCartResponse(ctx, cart.ID)
}

func (u *CartUsecase) UpdateItem(ctx context.Context, userID int64, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, item, err := u.ownedItem(ctx, userID, cartItemID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItems.UpdateQuantity(ctx, item.ID, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, cartItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, item, err := u.ownedItem(ctx, userID, cartItemID)
	if err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItems.Delete(ctx, item.ID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// Merge はクライアントキャッシュとの和解。行は加算で取り込み、在庫を超える分は
// 在庫数まで丸める。結果のサーバ状態が以後の正。
func (u *CartUsecase) Merge(ctx context.Context, userID int64, lines []MergeLine) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var cartID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().GetOrCreateActiveByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		cartID = cart.ID

		for _, line := range lines {
			if line.ProductID <= 0 || line.Quantity < 1 {
				continue
			}

			p, err := r.Products().FindByID(ctx, line.ProductID)
			if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
				// 消えた商品・停止中の商品は黙って落とす
				continue
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			existing, found, err := r.CartItems().FindByCartAndProduct(ctx, cart.ID, line.ProductID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			qty := line.Quantity
			if found {
				qty += existing.Quantity
			}
			if qty > p.Stock {
				qty = p.Stock
			}
			if qty < 1 {
				continue
			}

			if found {
				if err := r.CartItems().UpdateQuantity(ctx, existing.ID, qty); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			} else {
				_, err := r.CartItems().Create(ctx, model.CartItem{
					CartID:            cart.ID,
					ProductID:         line.ProductID,
					Quantity:          qty,
					UnitPriceSnapshot: p.Price,
				})
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}
		return nil
	})

	if err != nil {
		return CartResponse{}, err
	}
	return u.buildCartResponse(ctx, cartID)
}

func (u *CartUsecase) ownedItem(ctx context.Context, userID int64, cartItemID int64) (model.Cart, model.CartItem, error) {
	if cartItemID <= 0 {
		return model.Cart{}, model.CartItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	cart, err := u.carts.FindActiveByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, model.CartItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Cart{}, model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item, err := u.cartItems.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, model.CartItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Cart{}, model.CartItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if item.CartID != cart.ID {
		return model.Cart{}, model.CartItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	return cart, item, nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItems.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := CartResponse{Items: make([]CartItemResponse, 0, len(items))}
	for _, it := range items {
		name := ""
		image := ""
		if p, err := u.products.FindByID(ctx, it.ProductID); err == nil {
			name = p.Name
			image = p.ImageURL
		}

		out.Items = append(out.Items, CartItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      name,
			Image:     image,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
		out.Total += it.UnitPriceSnapshot * it.Quantity
	}
	return out, nil
}
