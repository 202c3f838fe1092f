package sources

import (
	"context"
	"fmt"
)

// Filter decides whether a locator is processed
type Filter interface {
	ShouldKeep(ctx context.Context, location string) (bool, error)
}

// DuplicateFilter keeps the first occurrence of each locator
type DuplicateFilter struct {
	seen map[string]bool
}

// NewDuplicateFilter creates a new duplicate filter
func NewDuplicateFilter() *DuplicateFilter {
	return &DuplicateFilter{seen: make(map[string]bool)}
}

// ShouldKeep returns false for a locator seen before
func (f *DuplicateFilter) ShouldKeep(_ context.Context, location string) (bool, error) {
	if f.seen[location] {
		return false, nil
	}
	f.seen[location] = true
	return true, nil
}

// AlreadyFetchedFilter filters out locators that already exist in the provided set
type AlreadyFetchedFilter struct {
	fetched map[string]bool
}

// NewAlreadyFetchedFilter creates a new already-fetched filter
func NewAlreadyFetchedFilter(fetched map[string]bool) *AlreadyFetchedFilter {
	return &AlreadyFetchedFilter{fetched: fetched}
}

// ShouldKeep returns false if the locator is already in the fetched set
func (f *AlreadyFetchedFilter) ShouldKeep(_ context.Context, location string) (bool, error) {
	return !f.fetched[location], nil
}

// Apply keeps the sources every filter accepts, in order
func Apply(ctx context.Context, srcs []Source, filters ...Filter) ([]Source, error) {
	if len(filters) == 0 {
		return srcs, nil
	}

	out := make([]Source, 0, len(srcs))
	for _, s := range srcs {
		keep, err := shouldKeep(ctx, s.Location, filters)
		if err != nil {
			return nil, fmt.Errorf("filter error: %w", err)
		}
		if keep {
			out = append(out, s)
		}
	}
	return out, nil
}

func shouldKeep(ctx context.Context, location string, filters []Filter) (bool, error) {
	for _, filter := range filters {
		keep, err := filter.ShouldKeep(ctx, location)
		if err != nil {
			return false, err
		}
		if !keep {
			return false, nil
		}
	}
	return true, nil
}

// Limit truncates srcs to at most max entries; max <= 0 means no limit
func Limit(srcs []Source, max int) []Source {
	if max <= 0 || len(srcs) <= max {
		return srcs
	}
	return srcs[:max]
}
