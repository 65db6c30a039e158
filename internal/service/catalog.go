package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mediaapi/internal/model"
	"mediaapi/internal/repository"
)

// CatalogService defines the use cases for reels and stories.
type CatalogService interface {
	// ListReels returns up to repository.ListLimit reels, newest first.
	// A blank category matches every reel.
	ListReels(ctx context.Context, category string) ([]model.Reel, error)
	// ListStories returns up to repository.ListLimit stories, newest first.
	ListStories(ctx context.Context, category string) ([]model.Story, error)
	// CreateReel validates and stores a reel. Title, thumbnail and video are required.
	CreateReel(ctx context.Context, req model.CreateReelRequest) (*model.Reel, error)
	// CreateStory validates and stores a story. Only the title is required.
	CreateStory(ctx context.Context, req model.CreateStoryRequest) (*model.Story, error)
}

type catalogService struct {
	repo repository.CatalogRepository
	now  func() time.Time
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *catalogService) ListReels(ctx context.Context, category string) ([]model.Reel, error) {
	items, err := s.repo.ListReels(ctx, listQuery(category))
	if err != nil {
		return nil, fmt.Errorf("list reels: %w", err)
	}
	return items, nil
}

func (s *catalogService) ListStories(ctx context.Context, category string) ([]model.Story, error) {
	items, err := s.repo.ListStories(ctx, listQuery(category))
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return items, nil
}

func (s *catalogService) CreateReel(ctx context.Context, req model.CreateReelRequest) (*model.Reel, error) {
	reel := &model.Reel{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Categories:  normalizeCategories(req.Categories),
		Thumbnail:   strings.TrimSpace(req.Thumbnail),
		Video:       strings.TrimSpace(req.Video),
	}
	switch {
	case reel.Title == "":
		return nil, invalid("Title is required")
	case reel.Thumbnail == "":
		return nil, invalid("Thumbnail is required")
	case reel.Video == "":
		return nil, invalid("Video is required")
	}

	now := s.now()
	reel.CreatedAt, reel.UpdatedAt = now, now
	stored, err := s.repo.CreateReel(ctx, reel)
	if err != nil {
		return nil, fmt.Errorf("create reel: %w", err)
	}
	return stored, nil
}

func (s *catalogService) CreateStory(ctx context.Context, req model.CreateStoryRequest) (*model.Story, error) {
	story := &model.Story{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Categories:  normalizeCategories(req.Categories),
		Thumbnail:   strings.TrimSpace(req.Thumbnail),
		Video:       strings.TrimSpace(req.Video),
		Icon:        strings.TrimSpace(req.Icon),
		Story:       normalizePayload(req.Story),
	}
	if story.Title == "" {
		return nil, invalid("Title is required")
	}

	now := s.now()
	story.CreatedAt, story.UpdatedAt = now, now
	stored, err := s.repo.CreateStory(ctx, story)
	if err != nil {
		return nil, fmt.Errorf("create story: %w", err)
	}
	return stored, nil
}

func listQuery(category string) repository.ListQuery {
	return repository.ListQuery{Category: strings.TrimSpace(category), Limit: repository.ListLimit}
}

// normalizeCategories trims tags and drops blanks and repeats, keeping first-seen order.
func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func normalizePayload(raw json.RawMessage) json.RawMessage {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	return json.RawMessage(trimmed)
}
