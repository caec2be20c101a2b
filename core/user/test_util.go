package user

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// SetNowFunc replaces the clock used by token generators. Call the returned func to restore it.
func SetNowFunc(f func() time.Time) (reset func()) {
	nowFunc = f
	return func() { nowFunc = time.Now }
}

// RepositoryMock is a Repository whose behaviour is set up per test.
type RepositoryMock struct {
	mock.Mock
}

var _ Repository = (*RepositoryMock)(nil)

func (m *RepositoryMock) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error {
	args := m.Called(ctx, username, email, excludedUsers)
	return args.Error(0)
}

func (m *RepositoryMock) CreateUser(ctx context.Context, usr User) (User, error) {
	args := m.Called(ctx, usr)
	return args.Get(0).(User), args.Error(1)
}

func (m *RepositoryMock) GetUser(ctx context.Context, filter GetFilter) (User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(User), args.Error(1)
}

func (m *RepositoryMock) QueryUsers(ctx context.Context, filter QueryFilter) ([]User, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]User)
	return users, args.Error(1)
}

func (m *RepositoryMock) UpdateUser(ctx context.Context, usr User) (User, error) {
	args := m.Called(ctx, usr)
	return args.Get(0).(User), args.Error(1)
}
