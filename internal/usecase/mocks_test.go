package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/gateway"
	repo "app/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ProductRepoMock) CreateBulk(ctx context.Context, items []model.Product) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) SetExternalReference(ctx context.Context, orderID int64, ref string) error {
	args := m.Called(ctx, orderID, ref)
	return args.Error(0)
}

func (m *OrderRepoMock) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	args := m.Called(ctx, cutoff, limit)
	items, _ := args.Get(0).([]model.Order)
	return items, args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreatePreference(ctx context.Context, req gateway.PreferenceRequest) (gateway.Preference, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(gateway.Preference)
	return p, args.Error(1)
}

func (m *GatewayMock) GetPayment(ctx context.Context, paymentID int64) (gateway.Payment, error) {
	args := m.Called(ctx, paymentID)
	p, _ := args.Get(0).(gateway.Payment)
	return p, args.Error(1)
}

func (m *GatewayMock) SearchPaymentsByReference(ctx context.Context, externalReference string) ([]gateway.Payment, error) {
	args := m.Called(ctx, externalReference)
	items, _ := args.Get(0).([]gateway.Payment)
	return items, args.Error(1)
}

// fakeTxManager はmockリポジトリをそのまま渡すTransactionManager。
// fnのerrorが全体のロールバックに相当する（本物のtxは張らない）。
type fakeTxRepos struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	products   repo.ProductRepository
}

func (r *fakeTxRepos) Orders() repo.OrderRepository         { return r.orders }
func (r *fakeTxRepos) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *fakeTxRepos) Products() repo.ProductRepository     { return r.products }

type fakeTxManager struct {
	repos fakeTxRepos
}

func (tm *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(&tm.repos)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
