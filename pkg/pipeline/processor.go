package pipeline

import (
	"errors"
	"fmt"
	"time"

	"play-extract/pkg/document"
	"play-extract/pkg/domain"
	"play-extract/pkg/fetcher"
	"play-extract/pkg/speaker"
	"play-extract/pkg/trim"
)

// ProcessorConfig configures how a fetched document becomes a PlayRecord
type ProcessorConfig struct {
	// TitlePrefix is stripped from the first line to derive the record name.
	// Empty uses document.DefaultTitlePrefix.
	TitlePrefix string

	// Markers bound the dramatic content. Empty sets use the defaults.
	Markers trim.Markers

	// Patterns are the speaker cue patterns; nil uses speaker.DefaultPatterns.
	Patterns *speaker.Patterns

	// DropStructural removes act and scene headings parsed as speakers.
	DropStructural     bool
	StructuralPrefixes []string

	RunID string
	Now   func() time.Time
}

// PlayProcessor turns a fetched document into a parsed PlayRecord:
// lines → name → trim → classify → parse → structural drop.
type PlayProcessor struct {
	titlePrefix        string
	trimmer            *trim.Trimmer
	patterns           speaker.Patterns
	classifier         *speaker.Classifier
	dropStructural     bool
	structuralPrefixes []string
	runID              string
	now                func() time.Time
}

// NewPlayProcessor creates a processor
func NewPlayProcessor(cfg ProcessorConfig) *PlayProcessor {
	patterns := speaker.DefaultPatterns()
	if cfg.Patterns != nil {
		patterns = *cfg.Patterns
	}

	prefix := cfg.TitlePrefix
	if prefix == "" {
		prefix = document.DefaultTitlePrefix
	}

	prefixes := cfg.StructuralPrefixes
	if len(prefixes) == 0 {
		prefixes = speaker.DefaultStructuralPrefixes()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &PlayProcessor{
		titlePrefix:        prefix,
		trimmer:            trim.NewTrimmer(cfg.Markers.WithDefaults()),
		patterns:           patterns,
		classifier:         speaker.NewClassifier(patterns),
		dropStructural:     cfg.DropStructural,
		structuralPrefixes: prefixes,
		runID:              cfg.RunID,
		now:                now,
	}
}

// Process parses doc into a record. The transcript may be empty; that is not
// an error.
func (p *PlayProcessor) Process(doc *fetcher.Document) (*domain.PlayRecord, error) {
	if doc == nil {
		return nil, errors.New("document is nil")
	}

	lines := document.Lines(doc.Text)
	name := document.DeriveName(lines, p.titlePrefix, doc.Source)

	bounds := p.trimmer.Bounds(lines)
	body := []string{}
	if !bounds.Empty() {
		body = lines[bounds.Start:bounds.End]
	}

	votes := p.classifier.Count(body)
	strategy := votes.Strategy()
	parser, err := speaker.ParserFor(strategy, p.patterns)
	if err != nil {
		return nil, fmt.Errorf("select parser: %w", err)
	}

	transcript := parser.Parse(body)
	if p.dropStructural {
		speaker.DropStructural(transcript, p.structuralPrefixes)
	}

	return &domain.PlayRecord{
		Name:        name,
		SourceURL:   doc.Source,
		Strategy:    strategy,
		InlineVotes: votes.Inline,
		BlockVotes:  votes.Block,
		TrimStart:   bounds.Start,
		TrimEnd:     bounds.End,
		Transcript:  transcript,
		RunID:       p.runID,
		ExtractedAt: p.now().UTC(),
	}, nil
}
