// Package speaker recognises speaker cues in play text and groups dialogue by speaker.
package speaker

import (
	"fmt"
	"strings"

	"play-extract/pkg/domain"
)

// Parser turns trimmed play lines into a transcript.
type Parser interface {
	Parse(lines []string) *domain.Transcript
}

// InlineParser handles plays whose cues share a line with dialogue.
type InlineParser struct {
	patterns Patterns
}

// NewInlineParser creates an inline parser
func NewInlineParser(patterns Patterns) *InlineParser {
	return &InlineParser{patterns: patterns}
}

// Parse attributes each line to the most recent cue. Lines before the first
// cue are dropped; a cue with no trailing text only switches the speaker.
func (p *InlineParser) Parse(lines []string) *domain.Transcript {
	t := domain.NewTranscript()
	current := ""

	for _, line := range lines {
		if speaker, dialogue, ok := p.patterns.MatchInline(line); ok {
			current = speaker
			if dialogue != "" {
				t.Append(current, dialogue)
			}
			continue
		}
		if current != "" {
			t.Append(current, strings.TrimSpace(line))
		}
	}
	return t
}

// BlockParser handles plays whose cues stand alone on their own line.
type BlockParser struct {
	patterns Patterns
}

// NewBlockParser creates a block parser
func NewBlockParser(patterns Patterns) *BlockParser {
	return &BlockParser{patterns: patterns}
}

// Parse appends every non-cue line to the most recent header.
func (p *BlockParser) Parse(lines []string) *domain.Transcript {
	t := domain.NewTranscript()
	current := ""

	for _, line := range lines {
		if header, ok := p.patterns.MatchBlock(line); ok {
			current = header
			continue
		}
		if current != "" {
			t.Append(current, strings.TrimSpace(line))
		}
	}
	return t
}

// ParserFor returns the parser for a classified strategy
func ParserFor(strategy domain.Strategy, patterns Patterns) (Parser, error) {
	switch strategy {
	case domain.StrategyInline:
		return NewInlineParser(patterns), nil
	case domain.StrategyBlock:
		return NewBlockParser(patterns), nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", strategy)
	}
}
