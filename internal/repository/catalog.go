package repository

import (
	"context"

	"mediaapi/internal/model"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (mongo, postgres) inside this directory.

// ListLimit caps every catalog listing.
const ListLimit = 100

// ListQuery filters a catalog listing. An empty Category matches every record.
// A non-positive Limit means ListLimit.
type ListQuery struct {
	Category string
	Limit    int
}

// EffectiveLimit returns the limit clamped to (0, ListLimit].
func (q ListQuery) EffectiveLimit() int {
	if q.Limit <= 0 || q.Limit > ListLimit {
		return ListLimit
	}
	return q.Limit
}

// CatalogRepository persists reels and stories. No business logic here:
// callers validate records and assign timestamps before Create.
// Listings are ordered by CreatedAt descending, ties broken by ID descending.
type CatalogRepository interface {
	// CreateReel inserts a reel and returns it with its assigned ID.
	CreateReel(ctx context.Context, r *model.Reel) (*model.Reel, error)
	// CreateStory inserts a story and returns it with its assigned ID.
	CreateStory(ctx context.Context, s *model.Story) (*model.Story, error)
	// ListReels returns reels matching q.
	ListReels(ctx context.Context, q ListQuery) ([]model.Reel, error)
	// ListStories returns stories matching q.
	ListStories(ctx context.Context, q ListQuery) ([]model.Story, error)
	// Ping checks that the backing store is reachable, connecting if needed.
	Ping(ctx context.Context) error
}
