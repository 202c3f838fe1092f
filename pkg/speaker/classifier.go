package speaker

import "play-extract/pkg/domain"

// Votes counts the lines matching each cue pattern.
type Votes struct {
	Inline int
	Block  int
}

// Strategy picks the parser layout. Inline wins ties, including 0-0.
func (v Votes) Strategy() domain.Strategy {
	if v.Inline >= v.Block {
		return domain.StrategyInline
	}
	return domain.StrategyBlock
}

// Classifier decides, once per document, which cue layout a play uses.
type Classifier struct {
	patterns Patterns
}

// NewClassifier creates a classifier over the given patterns
func NewClassifier(patterns Patterns) *Classifier {
	return &Classifier{patterns: patterns}
}

// Count tests every line against both patterns independently
func (c *Classifier) Count(lines []string) Votes {
	var v Votes
	for _, line := range lines {
		if _, _, ok := c.patterns.MatchInline(line); ok {
			v.Inline++
		}
		if _, ok := c.patterns.MatchBlock(line); ok {
			v.Block++
		}
	}
	return v
}

// Classify returns the strategy selected by majority vote
func (c *Classifier) Classify(lines []string) domain.Strategy {
	return c.Count(lines).Strategy()
}
