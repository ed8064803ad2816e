package mediaservice

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upload(ctx context.Context, r io.Reader, folder string) (*Asset, error) {
	args := m.Called(ctx, r, folder)
	asset, _ := args.Get(0).(*Asset)
	return asset, args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, assetID string) error {
	args := m.Called(ctx, assetID)
	return args.Error(0)
}

type MockLogger struct {
	mock.Mock
}

func (l *MockLogger) Error(msg string, args ...any) {
	l.Called(msg, args)
}

func (l *MockLogger) Info(msg string, args ...any) {
	l.Called(msg, args)
}
