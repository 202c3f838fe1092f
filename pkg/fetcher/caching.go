package fetcher

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

const cacheKeyPrefix = "playextract:doc:"

// Cache stores raw values by key. Get reports a miss with ok == false.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachingFetcher serves documents from a cache and fills it from the wrapped fetcher.
// Cache failures never fail a fetch.
type CachingFetcher struct {
	next   Fetcher
	cache  Cache
	logger *zap.Logger
}

// NewCachingFetcher wraps next with cache
func NewCachingFetcher(next Fetcher, cache Cache, logger *zap.Logger) *CachingFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingFetcher{next: next, cache: cache, logger: logger}
}

// Fetch returns the cached document for source or fetches and stores it
func (f *CachingFetcher) Fetch(ctx context.Context, source string) (*Document, error) {
	key := cacheKeyPrefix + source

	raw, ok, err := f.cache.Get(ctx, key)
	switch {
	case err != nil:
		f.logger.Warn("cache lookup failed", zap.String("source", source), zap.Error(err))
	case ok:
		var doc Document
		if err := json.Unmarshal(raw, &doc); err == nil {
			f.logger.Debug("cache hit", zap.String("source", source))
			return &doc, nil
		}
		f.logger.Warn("discarding unreadable cache entry", zap.String("source", source))
	}

	doc, err := f.next.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		f.logger.Warn("failed to encode document for cache", zap.String("source", source), zap.Error(err))
		return doc, nil
	}
	if err := f.cache.Set(ctx, key, encoded); err != nil {
		f.logger.Warn("cache store failed", zap.String("source", source), zap.Error(err))
	}
	return doc, nil
}
