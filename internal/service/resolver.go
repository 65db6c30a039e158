package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mediaapi/internal/storage"
)

// Probe outcomes reported to a ProbeObserver.
const (
	ProbeFound   = "found"
	ProbeMissing = "missing"
	ProbeError   = "error"
)

// ProbeObserver is notified once per existence probe.
type ProbeObserver interface {
	ObserveProbe(outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveProbe(string) {}

// Candidates returns the keys to probe for key, in order: the key verbatim,
// then either the key with a leading "<bucket>/" stripped or the key with
// "<bucket>/" prepended. A key equal to "<bucket>/" yields an empty second
// candidate, which never exists.
func Candidates(key, bucket string) []string {
	prefix := bucket + "/"
	alt := prefix + key
	if strings.HasPrefix(key, prefix) {
		alt = strings.TrimPrefix(key, prefix)
	}
	return []string{key, alt}
}

// KeyResolver finds which candidate form of a key exists in the bucket.
type KeyResolver struct {
	store    storage.ObjectStore
	observer ProbeObserver
}

// NewKeyResolver returns a resolver over store. observer may be nil.
func NewKeyResolver(store storage.ObjectStore, observer ProbeObserver) *KeyResolver {
	if observer == nil {
		observer = nopObserver{}
	}
	return &KeyResolver{store: store, observer: observer}
}

// Resolve probes the candidates one at a time and returns the first that
// exists. Store failures other than not-found stop the search.
func (r *KeyResolver) Resolve(ctx context.Context, key string) (string, error) {
	tried := Candidates(key, r.store.Bucket())
	for _, candidate := range tried {
		if candidate == "" {
			r.observer.ObserveProbe(ProbeMissing)
			continue
		}
		_, err := r.store.Stat(ctx, candidate)
		switch {
		case err == nil:
			r.observer.ObserveProbe(ProbeFound)
			return candidate, nil
		case errors.Is(err, storage.ErrObjectNotFound):
			r.observer.ObserveProbe(ProbeMissing)
		default:
			r.observer.ObserveProbe(ProbeError)
			return "", fmt.Errorf("probe %q: %w", candidate, err)
		}
	}
	return "", &NoSuchKeyError{Key: key, Tried: tried}
}
