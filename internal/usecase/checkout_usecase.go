package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/gateway"
	repo "app/internal/repository"
	"app/internal/session"
)

// CheckoutUsecase はカートを注文に変換し、ゲートウェイへ決済intentを作る。
type CheckoutUsecase struct {
	tx      repo.TransactionManager
	gateway gateway.PaymentGateway
	baseURL string
	logger  *slog.Logger
}

// DI
func NewCheckoutUsecase(
	tx repo.TransactionManager,
	gw gateway.PaymentGateway,
	baseURL string,
	logger *slog.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:      tx,
		gateway: gw,
		baseURL: baseURL,
		logger:  logger,
	}
}

type CheckoutOutput struct {
	OrderID    int64  `json:"order_id"`
	RedirectTo string `json:"redirect_to"`
}

// Checkout は注文（PENDING）＋明細を1トランザクションで作成し、
// ゲートウェイのホスト型チェックアウトURLを返す。
//
// コミット境界：注文作成はゲートウェイ呼び出しの前にコミットする。
// そのためゲートウェイ側が失敗すると明細付きPENDING注文が残る
// （ユーザーからは再操作できない孤児。対帳スイープか運用ツールの領分）。
func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64, sess *session.Session) (CheckoutOutput, error) {
	if userID <= 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(sess.Cart) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	ids := make([]int64, 0, len(sess.Cart))
	for id := range sess.Cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var orderID int64
	var totalCents int64
	var externalRef string

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// カートをカタログに解決する。消えた商品はカート表示と同じく黙って除外。
		products, err := r.Products().FindByIDs(ctx, ids)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		byID := make(map[int64]model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		orderItems := make([]model.OrderItem, 0, len(ids))
		totalCents = 0

		for _, id := range ids {
			p, ok := byID[id]
			if !ok {
				continue
			}
			qty := sess.Cart[id]
			if qty <= 0 {
				continue
			}

			//購入時点の価格スナップショット
			orderItems = append(orderItems, model.OrderItem{
				ProductID:      p.ID,
				Quantity:       qty,
				UnitPriceCents: p.PriceCents,
			})
			totalCents += p.PriceCents * qty
		}

		// 全商品が消えていたら注文は作らない（明細ゼロのPENDINGを残さない）
		if len(orderItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		now := time.Now()
		orderID, err = r.Orders().Create(ctx, model.Order{
			UserID:     userID,
			Status:     model.OrderStatusPending,
			TotalCents: totalCents,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 相関トークン。先頭フィールドが注文ID、残りは作成時刻。
		externalRef = fmt.Sprintf("%d-%d", orderID, now.Unix())
		if err := r.Orders().SetExternalReference(ctx, orderID, externalRef); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
	if err != nil {
		return CheckoutOutput{}, err
	}

	pref, err := u.gateway.CreatePreference(ctx, gateway.PreferenceRequest{
		Items: []gateway.PreferenceItem{
			{
				Title:      "Compra na Loja",
				Quantity:   1,
				CurrencyID: "BRL",
				UnitPrice:  float64(totalCents) / 100,
			},
		},
		BackURLs: gateway.BackURLs{
			Success: u.baseURL + "/success",
			Failure: u.baseURL + "/failure",
			Pending: u.baseURL + "/pending",
		},
		AutoReturn:        "approved",
		NotificationURL:   u.baseURL + "/receber_notificacao_webhook",
		ExternalReference: externalRef,
	})
	if err != nil {
		// 注文は既にコミット済みなのでPENDINGのまま残る。
		// カートは消さない（ユーザーがリトライできるように）。
		u.logger.Error("payment intent creation failed, order left pending",
			"order_id", orderID, "error", err)
		return CheckoutOutput{}, NewHTTPError(http.StatusBadGateway, "checkout failed, please retry")
	}

	sess.Cart = make(map[int64]int64)

	return CheckoutOutput{
		OrderID:    orderID,
		RedirectTo: pref.InitPoint,
	}, nil
}
