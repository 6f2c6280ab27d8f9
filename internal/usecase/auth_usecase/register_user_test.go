package auth_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	auth "app/internal/usecase/auth_usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newRegisterUsecase(repoMock *UserRepoMock, hasher *HasherMock) *auth.RegisterUserUsecase {
	return auth.NewRegisterUserUsecase(repoMock, hasher, fixedClock{now: testNow})
}

func TestRegisterUser_Success(t *testing.T) {
	repoMock := new(UserRepoMock)
	hasher := new(HasherMock)

	repoMock.On("FindByEmail", mock.Anything, "taro@example.com").Return(nil, repository.ErrUserNotFound)
	hasher.On("Hash", "password123").Return("hashed-pw", nil)
	repoMock.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Username == "taro" &&
			u.Email == "taro@example.com" &&
			u.PasswordHash == "hashed-pw" &&
			!u.IsAdmin
	})).Return(nil)

	uc := newRegisterUsecase(repoMock, hasher)
	out, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Username: "taro",
		Password: "password123",
		Email:    "taro@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, "taro", out.User.Username)
	assert.Equal(t, testNow, out.User.CreatedAt)
	repoMock.AssertExpectations(t)
	hasher.AssertExpectations(t)
}

func TestRegisterUser_UsernameRequired(t *testing.T) {
	uc := newRegisterUsecase(new(UserRepoMock), new(HasherMock))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Username: "   ",
		Password: "password123",
		Email:    "taro@example.com",
	})

	assert.ErrorIs(t, err, auth.ErrUsernameRequired)
}

func TestRegisterUser_InvalidEmail(t *testing.T) {
	uc := newRegisterUsecase(new(UserRepoMock), new(HasherMock))

	for _, email := range []string{"", "not-an-email", "a@"} {
		_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
			Username: "taro",
			Password: "password123",
			Email:    email,
		})
		assert.ErrorIs(t, err, auth.ErrInvalidEmailFormat, "email=%q", email)
	}
}

func TestRegisterUser_PasswordTooShort(t *testing.T) {
	uc := newRegisterUsecase(new(UserRepoMock), new(HasherMock))

	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Username: "taro",
		Password: "short",
		Email:    "taro@example.com",
	})

	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestRegisterUser_EmailAlreadyExists(t *testing.T) {
	repoMock := new(UserRepoMock)
	hasher := new(HasherMock)

	repoMock.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(&model.User{ID: 1, Email: "taro@example.com"}, nil)

	uc := newRegisterUsecase(repoMock, hasher)
	_, err := uc.Execute(context.Background(), auth.RegisterUserInput{
		Username: "taro",
		Password: "password123",
		Email:    "taro@example.com",
	})

	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
	repoMock.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBcryptHasherAndVerifier_RoundTrip(t *testing.T) {
	hasher := auth.NewBcryptPasswordHasher(4) // テストなので最小コスト
	verifier := auth.NewBcryptPasswordVerifier()

	hashed, err := hasher.Hash("password123")
	assert.NoError(t, err)
	assert.NotEqual(t, "password123", hashed)

	assert.True(t, verifier.Verify("password123", hashed))
	assert.False(t, verifier.Verify("wrong-password", hashed))
}
