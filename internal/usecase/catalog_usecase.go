package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CatalogUsecase はトップページの商品一覧。読み取り専用。
type CatalogUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewCatalogUsecase(productRepo repo.ProductRepository) *CatalogUsecase {
	return &CatalogUsecase{productRepo: productRepo}
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
}

func (u *CatalogUsecase) ListProducts(ctx context.Context) (ProductListOutput, error) {
	items, err := u.productRepo.ListAll(ctx)
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ProductListOutput{Items: items}, nil
}
