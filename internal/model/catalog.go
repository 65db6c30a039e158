package model

import (
	"encoding/json"
	"time"
)

// Kind names a catalog collection.
type Kind string

const (
	KindReels   Kind = "reels"
	KindStories Kind = "stories"
)

// ParseKind maps a path segment onto a catalog kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindReels, KindStories:
		return Kind(s), true
	}
	return "", false
}

// Singular returns the name of one record of the kind ("reel", "story").
func (k Kind) Singular() string {
	if k == KindStories {
		return "story"
	}
	return "reel"
}

// Reel is a short-form video entry. Thumbnail and Video are always set.
type Reel struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Categories  []string  `json:"categories"`
	Thumbnail   string    `json:"thumbnail"`
	Video       string    `json:"video"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Story is a catalog entry whose media references are optional. Story holds
// an arbitrary JSON payload supplied by the client.
type Story struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Categories  []string        `json:"categories"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Video       string          `json:"video,omitempty"`
	Icon        string          `json:"icon,omitempty"`
	Story       json.RawMessage `json:"story,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CreateReelRequest is the body accepted when creating a reel.
type CreateReelRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Thumbnail   string   `json:"thumbnail"`
	Video       string   `json:"video"`
}

// CreateStoryRequest is the body accepted when creating a story.
type CreateStoryRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Categories  []string        `json:"categories"`
	Thumbnail   string          `json:"thumbnail"`
	Video       string          `json:"video"`
	Icon        string          `json:"icon"`
	Story       json.RawMessage `json:"story"`
}
