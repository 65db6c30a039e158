package mocks

import (
	"context"

	"mediaapi/internal/model"
	"mediaapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) CreateReel(ctx context.Context, r *model.Reel) (*model.Reel, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reel), args.Error(1)
}

func (m *MockCatalogRepository) CreateStory(ctx context.Context, s *model.Story) (*model.Story, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Story), args.Error(1)
}

func (m *MockCatalogRepository) ListReels(ctx context.Context, q repository.ListQuery) ([]model.Reel, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reel), args.Error(1)
}

func (m *MockCatalogRepository) ListStories(ctx context.Context, q repository.ListQuery) ([]model.Story, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Story), args.Error(1)
}

func (m *MockCatalogRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
