package speaker

import (
	"strings"

	"play-extract/pkg/domain"
)

// DefaultStructuralPrefixes are headings the cue patterns mistake for speakers
func DefaultStructuralPrefixes() []string {
	return []string{"ACT I", "Act I", "Act V", "Scene"}
}

// DropStructural removes speaker keys that are act or scene headings.
// Comparison is a case-insensitive prefix match. It returns the removed keys.
func DropStructural(t *domain.Transcript, prefixes []string) []string {
	if t == nil || len(prefixes) == 0 {
		return nil
	}

	lowered := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}

	var removed []string
	for _, name := range t.Speakers() {
		key := strings.ToLower(name)
		for _, p := range lowered {
			if strings.HasPrefix(key, p) {
				t.Delete(name)
				removed = append(removed, name)
				break
			}
		}
	}
	return removed
}
