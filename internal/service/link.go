package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"mediaapi/internal/model"
	"mediaapi/internal/storage"
)

// TTL bounds for signed links, in seconds.
const (
	DefaultTTL = 3600
	MinTTL     = 1
	MaxTTL     = 86400
)

// LinkService issues time-limited download links for stored media.
type LinkService interface {
	// Issue validates the request, resolves the key against the bucket and
	// signs a GET URL for the key that exists.
	Issue(ctx context.Context, req model.LinkRequest) (*model.SignedLink, error)
}

type linkService struct {
	store    storage.ObjectStore
	resolver *KeyResolver
}

// NewLinkService constructs a LinkService backed by store.
func NewLinkService(store storage.ObjectStore, observer ProbeObserver) LinkService {
	return &linkService{
		store:    store,
		resolver: NewKeyResolver(store, observer),
	}
}

// ParseTTL converts the ttl query value into whole seconds.
func ParseTTL(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTTL, nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0, invalid("Invalid 'ttl' parameter")
	}
	n = math.Floor(n)
	switch {
	case n < MinTTL:
		return MinTTL, nil
	case n > MaxTTL:
		return MaxTTL, nil
	}
	return int(n), nil
}

func (s *linkService) Issue(ctx context.Context, req model.LinkRequest) (*model.SignedLink, error) {
	if strings.TrimSpace(req.Key) == "" {
		return nil, invalid("Missing 'key' query parameter")
	}
	ttl, err := ParseTTL(req.TTL)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(ctx, req.Key)
	if err != nil {
		return nil, err
	}

	url, err := s.store.PresignGet(ctx, resolved, time.Duration(ttl)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("presign %q: %w", resolved, err)
	}
	return &model.SignedLink{URL: url, ExpiresIn: ttl, Key: resolved}, nil
}

// unavailableLinkService answers every request with the configuration
// problem found at startup.
type unavailableLinkService struct {
	err error
}

// NewUnavailableLinkService returns a LinkService that always fails with a
// ConfigurationError wrapping cause. Input is still validated first.
func NewUnavailableLinkService(cause error) LinkService {
	return &unavailableLinkService{err: &ConfigurationError{Err: cause}}
}

func (s *unavailableLinkService) Issue(_ context.Context, req model.LinkRequest) (*model.SignedLink, error) {
	if strings.TrimSpace(req.Key) == "" {
		return nil, invalid("Missing 'key' query parameter")
	}
	if _, err := ParseTTL(req.TTL); err != nil {
		return nil, err
	}
	return nil, s.err
}
