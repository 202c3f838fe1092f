package playdownloadservice

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"play-extract/pkg/sources"
)

// ResolveSources builds the ordered source list for a run.
//
// Positional locators replace the configured URLs; the URL file, the feed and
// the sitemap are appended after them. Duplicates are dropped, then (with skip_existing)
// every source already recorded in a database sink, then the list is capped
// at sources.max.
func (s *Service) ResolveSources(ctx context.Context, locations []string) ([]sources.Source, error) {
	if len(locations) == 0 {
		locations = s.cfg.Sources.URLs
	}
	srcs := sources.FromLocations(locations)

	if s.cfg.Sources.File != "" {
		listed, err := s.files.List(ctx, s.cfg.Sources.File)
		if err != nil {
			return nil, fmt.Errorf("read source file: %w", err)
		}
		srcs = append(srcs, listed...)
	}

	if s.cfg.Sources.Feed != "" {
		listed, err := s.feed.List(ctx, s.cfg.Sources.Feed)
		if err != nil {
			return nil, fmt.Errorf("read source feed: %w", err)
		}
		srcs = append(srcs, listed...)
	}

	if s.cfg.Sources.Sitemap != "" {
		listed, err := s.sitemap.List(ctx, s.cfg.Sources.Sitemap)
		if err != nil {
			return nil, fmt.Errorf("read source sitemap: %w", err)
		}
		srcs = append(srcs, listed...)
	}

	filters := []sources.Filter{sources.NewDuplicateFilter()}
	if s.cfg.Sources.SkipExisting {
		existing, err := s.existingSources(ctx)
		if err != nil {
			return nil, err
		}
		filters = append(filters, sources.NewAlreadyFetchedFilter(existing))
	}

	before := len(srcs)
	srcs, err := sources.Apply(ctx, srcs, filters...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter sources: %w", err)
	}
	srcs = sources.Limit(srcs, s.cfg.Sources.Max)

	s.logger.Info("resolved sources",
		zap.Int("listed", before),
		zap.Int("selected", len(srcs)),
	)
	if len(srcs) == 0 {
		return nil, sources.ErrNoSources
	}
	return srcs, nil
}

// existingSources unions the source URLs already recorded in every database sink
func (s *Service) existingSources(ctx context.Context) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(s.sinks.records) == 0 {
		s.logger.Warn("skip_existing is set but no database sink is enabled")
		return existing, nil
	}
	for _, rs := range s.sinks.records {
		urls, err := rs.GetAllSourceURLs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get fetched sources: %w", err)
		}
		for u := range urls {
			existing[u] = true
		}
	}
	return existing, nil
}
