// Package cache keeps downloaded poster images so repeated refreshes do not
// fetch them again.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"
)

const DefaultPosterTTL = 24 * time.Hour

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type AssetFetcher interface {
	GetImage(ctx context.Context, src string) ([]byte, error)
}

// PosterCache is a read-through cache in front of an AssetFetcher. Cache
// failures are logged and fall through to the fetcher.
type PosterCache struct {
	fetcher AssetFetcher
	store   Store
	ttl     time.Duration
}

func NewPosterCache(fetcher AssetFetcher, store Store, ttl time.Duration) *PosterCache {
	if ttl <= 0 {
		ttl = DefaultPosterTTL
	}
	return &PosterCache{fetcher: fetcher, store: store, ttl: ttl}
}

// PosterKey maps a poster source to a short stable key.
func PosterKey(src string) string {
	hash := sha256.Sum256([]byte(src))
	return fmt.Sprintf("poster:%x", hash[:8])
}

func (p *PosterCache) GetImage(ctx context.Context, src string) ([]byte, error) {
	key := PosterKey(src)

	cached, ok, err := p.store.Get(ctx, key)
	if err != nil {
		slog.Warn("Poster cache read failed", "key", key, "error", err)
	} else if ok && len(cached) > 0 {
		return cached, nil
	} else if ok {
		// An empty entry is never a valid image.
		if err := p.store.Delete(ctx, key); err != nil {
			slog.Warn("Poster cache delete failed", "key", key, "error", err)
		}
	}

	image, err := p.fetcher.GetImage(ctx, src)
	if err != nil {
		return nil, err
	}

	if err := p.store.Set(ctx, key, image, p.ttl); err != nil {
		slog.Warn("Poster cache write failed", "key", key, "error", err)
	}

	return image, nil
}
