package usecase

import (
	"context"
	"net/http"

	repo "app/internal/repository"
	"app/internal/session"
)

// CartUsecase はセッション内カートの業務ロジック。
// カートはDBに持たず、セッション（productID→数量）だけで管理する。
type CartUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewCartUsecase(productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{productRepo: productRepo}
}

type CartItemResponse struct {
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int64  `json:"quantity"`
}

type CartResponse struct {
	Items      []CartItemResponse `json:"items"`
	TotalCents int64              `json:"total_cents"`
}

// Add はカートに1個追加（同一商品は数量加算）。
// 商品が存在しなければ404。
func (u *CartUsecase) Add(ctx context.Context, sess *session.Session, productID int64) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	_, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	sess.Cart[productID] = sess.Cart[productID] + 1
	return nil
}

// Remove はカートから商品を取り除く。無ければ何もしない（エラーにしない）。
func (u *CartUsecase) Remove(sess *session.Session, productID int64) {
	delete(sess.Cart, productID)
}

// List はカートをカタログに解決して返す。
// 商品が消えているエントリは黙って落とす（カート表示を壊さない）。
func (u *CartUsecase) List(ctx context.Context, sess *session.Session) (CartResponse, error) {
	if len(sess.Cart) == 0 {
		return CartResponse{Items: []CartItemResponse{}}, nil
	}

	ids := make([]int64, 0, len(sess.Cart))
	for id := range sess.Cart {
		ids = append(ids, id)
	}

	products, err := u.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(products))
	var total int64 = 0

	for _, p := range products {
		qty := sess.Cart[p.ID]
		if qty <= 0 {
			continue
		}

		respItems = append(respItems, CartItemResponse{
			ProductID:  p.ID,
			Name:       p.Name,
			PriceCents: p.PriceCents,
			Quantity:   qty,
		})

		total += p.PriceCents * qty
	}

	return CartResponse{Items: respItems, TotalCents: total}, nil
}

// Clear はカートを空にする（checkout成功後に呼ぶ）。
func (u *CartUsecase) Clear(sess *session.Session) {
	sess.Cart = make(map[int64]int64)
}
