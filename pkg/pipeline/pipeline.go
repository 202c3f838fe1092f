package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"play-extract/pkg/domain"
	"play-extract/pkg/fetcher"
	"play-extract/pkg/sources"
)

// Fetcher retrieves the raw document for a source locator
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*fetcher.Document, error)
}

// RecordSaver persists a record to every configured sink and returns the
// locations written
type RecordSaver interface {
	SaveAll(ctx context.Context, record *domain.PlayRecord) ([]string, error)
}

// Status is the outcome of one source
type Status string

const (
	StatusSaved   Status = "saved"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result describes what happened to one source.
type Result struct {
	Source    string
	Status    Status
	Name      string
	Strategy  domain.Strategy
	Speakers  int
	Lines     int
	Locations []string
	Err       error
}

// Summary collects the results of a run, in source order.
type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Results  []Result
}

// Count returns how many results have status s
func (s *Summary) Count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// AllFailed reports whether there was at least one source and none was saved
func (s *Summary) AllFailed() bool {
	return len(s.Results) > 0 && s.Count(StatusSaved) == 0
}

// Pipeline runs fetch → process → save for each source, one at a time.
type Pipeline struct {
	fetcher   Fetcher
	processor *PlayProcessor
	saver     RecordSaver
	logger    *zap.Logger
	runID     string
	now       func() time.Time
}

// NewPipeline creates a pipeline. A nil logger disables logging.
func NewPipeline(f Fetcher, processor *PlayProcessor, saver RecordSaver, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		fetcher:   f,
		processor: processor,
		saver:     saver,
		logger:    logger,
		runID:     processor.runID,
		now:       processor.now,
	}
}

// Run processes sources in order. A failing source never stops the batch;
// only context cancellation ends the run early.
func (p *Pipeline) Run(ctx context.Context, srcs []sources.Source) *Summary {
	summary := &Summary{RunID: p.runID, Started: p.now()}
	p.logger.Info("starting run", zap.Int("sources", len(srcs)))

	for i, src := range srcs {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("run cancelled", zap.Int("remaining", len(srcs)-i), zap.Error(err))
			break
		}
		summary.Results = append(summary.Results, p.RunOne(ctx, src))
	}

	summary.Finished = p.now()
	p.logger.Info("run finished",
		zap.Int("saved", summary.Count(StatusSaved)),
		zap.Int("skipped", summary.Count(StatusSkipped)),
		zap.Int("failed", summary.Count(StatusFailed)),
		zap.Duration("elapsed", summary.Finished.Sub(summary.Started)),
	)
	return summary
}

// RunOne processes a single source
func (p *Pipeline) RunOne(ctx context.Context, src sources.Source) Result {
	log := p.logger.With(zap.String("source", src.Location))
	result := Result{Source: src.Location}

	doc, err := p.fetcher.Fetch(ctx, src.Location)
	if err != nil {
		log.Warn("skipping source", zap.Error(err))
		result.Status = StatusSkipped
		result.Err = err
		return result
	}

	record, err := p.processor.Process(doc)
	if err != nil {
		log.Error("failed to parse document", zap.Error(err))
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	result.Name = record.Name
	result.Strategy = record.Strategy
	result.Speakers = record.SpeakerCount()
	result.Lines = record.LineCount()
	log.Debug("parsed document",
		zap.String("name", record.Name),
		zap.String("strategy", string(record.Strategy)),
		zap.Int("inline_votes", record.InlineVotes),
		zap.Int("block_votes", record.BlockVotes),
		zap.Int("trim_start", record.TrimStart),
		zap.Int("trim_end", record.TrimEnd),
	)
	if result.Speakers == 0 {
		log.Warn("no speakers found", zap.String("name", record.Name))
	}

	locations, err := p.saver.SaveAll(ctx, record)
	result.Locations = locations
	if err != nil {
		log.Error("failed to save record", zap.String("name", record.Name), zap.Error(err))
		result.Status = StatusFailed
		result.Err = fmt.Errorf("save %s: %w", record.Name, err)
		return result
	}

	for _, loc := range locations {
		log.Info("saved record", zap.String("name", record.Name), zap.String("location", loc))
	}
	result.Status = StatusSaved
	return result
}

// Err returns the joined per-source errors, or nil
func (s *Summary) Err() error {
	var errs []error
	for _, r := range s.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Source, r.Err))
		}
	}
	return errors.Join(errs...)
}
