// Package trim bounds a play's lines to its dramatic content using literal
// marker strings for front matter and back matter.
package trim

import "strings"

// Markers holds the substring sets searched by the trimmer. Matching is
// case-sensitive containment.
type Markers struct {
	Primary   []string // cast list headers, start-of-ebook banner
	Secondary []string // first act or prologue
	Tertiary  []string // first scene
	End       []string // end-of-ebook banner, editorial notes
}

// DefaultMarkers returns the marker sets used for Gutenberg plays
func DefaultMarkers() Markers {
	return Markers{
		Primary: []string{
			"DRAMATIS PERSONAE",
			"DRAMATIS PERSONÆ",
			"Dramatis Personæ",
			"Dramatis Personae",
			"*** START OF THE PROJECT GUTENBERG",
		},
		Secondary: []string{"ACT I.", "ACT 1.", "ACT 1", "ACT I", "FIRST ACT", "First Act", "PROLOGUE", "Prologue"},
		Tertiary:  []string{"SCENE", "Scene"},
		End:       []string{"*** END OF THE PROJECT GUTENBERG EBOOK", "NOTES:"},
	}
}

// WithDefaults fills every empty marker set from DefaultMarkers
func (m Markers) WithDefaults() Markers {
	def := DefaultMarkers()
	if len(m.Primary) == 0 {
		m.Primary = def.Primary
	}
	if len(m.Secondary) == 0 {
		m.Secondary = def.Secondary
	}
	if len(m.Tertiary) == 0 {
		m.Tertiary = def.Tertiary
	}
	if len(m.End) == 0 {
		m.End = def.End
	}
	return m
}

// Range is a half-open interval [Start, End) over document lines.
type Range struct {
	Start int
	End   int
}

// Empty reports whether the range selects no lines
func (r Range) Empty() bool {
	return r.Start >= r.End
}

// Trimmer locates the dramatic content of a line sequence.
type Trimmer struct {
	markers Markers
}

// NewTrimmer creates a trimmer for the given markers
func NewTrimmer(markers Markers) *Trimmer {
	return &Trimmer{markers: markers}
}

// Bounds runs the marker passes and returns the content range.
//
// The three start passes only ever advance the start; a pass that finds nothing
// keeps the previous start. The end pass scans the full sequence on its own.
func (t *Trimmer) Bounds(lines []string) Range {
	start := 0
	for _, set := range [][]string{t.markers.Primary, t.markers.Secondary, t.markers.Tertiary} {
		if idx := indexOfMarker(lines, start, set); idx >= 0 {
			start = idx
		}
	}

	end := len(lines)
	if idx := indexOfMarker(lines, 0, t.markers.End); idx >= 0 {
		end = idx
	}

	return Range{Start: start, End: end}
}

// Trim returns the lines inside Bounds, or an empty slice when the start
// boundary is at or past the end boundary.
func (t *Trimmer) Trim(lines []string) []string {
	r := t.Bounds(lines)
	if r.Empty() {
		return []string{}
	}
	return lines[r.Start:r.End]
}

// indexOfMarker returns the first index >= from whose line contains any marker, or -1
func indexOfMarker(lines []string, from int, markers []string) int {
	for i := from; i < len(lines); i++ {
		for _, marker := range markers {
			if strings.Contains(lines[i], marker) {
				return i
			}
		}
	}
	return -1
}
