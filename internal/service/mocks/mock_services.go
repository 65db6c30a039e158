package mocks

import (
	"context"

	"mediaapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockLinkService struct {
	mock.Mock
}

func (m *MockLinkService) Issue(ctx context.Context, req model.LinkRequest) (*model.SignedLink, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SignedLink), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListReels(ctx context.Context, category string) ([]model.Reel, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reel), args.Error(1)
}

func (m *MockCatalogService) ListStories(ctx context.Context, category string) ([]model.Story, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Story), args.Error(1)
}

func (m *MockCatalogService) CreateReel(ctx context.Context, req model.CreateReelRequest) (*model.Reel, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reel), args.Error(1)
}

func (m *MockCatalogService) CreateStory(ctx context.Context, req model.CreateStoryRequest) (*model.Story, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Story), args.Error(1)
}
