package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品の取得だけを約束（コア側からの書き込みは無い）。
type ProductRepository interface {
	ListAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	//ID集合をまとめて引く（カート解決用）。存在しないIDは結果に含まれない。
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	//起動時シード用
	Count(ctx context.Context) (int64, error)
	CreateBulk(ctx context.Context, items []model.Product) error
}
