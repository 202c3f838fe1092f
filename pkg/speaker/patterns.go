package speaker

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultInlinePattern matches a cue sharing its line with dialogue ("HAMLET: To be").
	// Unicode space separators such as U+00A0 count as whitespace.
	DefaultInlinePattern = `^([A-Z][A-Z\-\.]+)\b(?:[\s\p{Zs}]|:)(.*)`
	// DefaultBlockPattern matches a line that is only a cue ("LADY MACBETH.").
	DefaultBlockPattern = `^([A-Z][A-Z\s\p{Zs}\-\.]+?)(?:[\.:])?$`
)

// Patterns holds the compiled speaker-cue expressions. The zero value is not
// usable; build one with DefaultPatterns or NewPatterns.
type Patterns struct {
	inline *regexp.Regexp
	block  *regexp.Regexp
}

// DefaultPatterns returns the built-in cue patterns
func DefaultPatterns() Patterns {
	return Patterns{
		inline: regexp.MustCompile(DefaultInlinePattern),
		block:  regexp.MustCompile(DefaultBlockPattern),
	}
}

// NewPatterns compiles custom cue patterns. The inline pattern must have two
// capture groups (speaker, dialogue) and the block pattern at least one.
func NewPatterns(inline, block string) (Patterns, error) {
	in, err := regexp.Compile(inline)
	if err != nil {
		return Patterns{}, fmt.Errorf("failed to compile inline pattern: %w", err)
	}
	if in.NumSubexp() < 2 {
		return Patterns{}, fmt.Errorf("inline pattern %q needs 2 capture groups, has %d", inline, in.NumSubexp())
	}

	bl, err := regexp.Compile(block)
	if err != nil {
		return Patterns{}, fmt.Errorf("failed to compile block pattern: %w", err)
	}
	if bl.NumSubexp() < 1 {
		return Patterns{}, fmt.Errorf("block pattern %q needs a capture group", block)
	}

	return Patterns{inline: in, block: bl}, nil
}

// MatchInline reports whether line opens with an inline cue and returns the
// trimmed speaker and dialogue.
func (p Patterns) MatchInline(line string) (speaker, dialogue string, ok bool) {
	m := p.inline.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// MatchBlock reports whether line is a standalone cue and returns the trimmed header.
func (p Patterns) MatchBlock(line string) (speaker string, ok bool) {
	m := p.block.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
