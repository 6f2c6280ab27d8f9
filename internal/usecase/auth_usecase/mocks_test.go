package auth_test

import (
	"context"
	"time"

	"app/internal/domain/model"

	"github.com/stretchr/testify/mock"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type HasherMock struct {
	mock.Mock
}

func (m *HasherMock) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

type VerifierMock struct {
	mock.Mock
}

func (m *VerifierMock) Verify(plain string, hashed string) bool {
	args := m.Called(plain, hashed)
	return args.Bool(0)
}

type IssuerMock struct {
	mock.Mock
}

func (m *IssuerMock) Issue(userID int64, isAdmin bool, now time.Time) (string, time.Time, error) {
	args := m.Called(userID, isAdmin, now)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// テストで時刻を固定する
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }
