// Package sources resolves the list of play locators to process.
package sources

import "context"

// Source is one play locator
type Source struct {
	Location string // URL or local path of the play text
	Title    string // Title from the listing (optional)
}

// Lister expands a listing location (file, feed) into sources
type Lister interface {
	List(ctx context.Context, location string) ([]Source, error)
}

// FromLocations wraps plain locators as sources
func FromLocations(locations []string) []Source {
	out := make([]Source, 0, len(locations))
	for _, loc := range locations {
		if loc == "" {
			continue
		}
		out = append(out, Source{Location: loc})
	}
	return out
}

// Locations returns the locator of each source
func Locations(srcs []Source) []string {
	out := make([]string, 0, len(srcs))
	for _, s := range srcs {
		out = append(out, s.Location)
	}
	return out
}
