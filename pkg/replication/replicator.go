package replication

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"play-extract/pkg/domain"
)

// RecordSource lists and loads records already written to the output directory
type RecordSource interface {
	List() ([]string, error)
	Load(name string) (*domain.Transcript, error)
	Path(name string) (string, error)
}

// RecordSaver writes a record to the target sinks
type RecordSaver interface {
	SaveAll(ctx context.Context, record *domain.PlayRecord) ([]string, error)
}

// Config wires the replication dependencies.
type Config struct {
	Source  RecordSource
	Target  RecordSaver
	Workers int
	Logger  *zap.Logger
	RunID   string
	Now     func() time.Time
}

// Report summarizes a replication run
type Report struct {
	Processed  int
	Replicated int
	Failed     map[string]error
}

// FailedNames returns the names that could not be replicated, sorted
func (r *Report) FailedNames() []string {
	names := make([]string, 0, len(r.Failed))
	for name := range r.Failed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Replicator copies JSON records from the output directory into database and
// object sinks.
//
// This is a one-shot "copy everything" flow; records are upserted by name, so
// reruns are safe.
type Replicator struct {
	source  RecordSource
	target  RecordSaver
	workers int
	logger  *zap.Logger
	runID   string
	now     func() time.Time
}

// NewReplicator checks cfg and fills defaults; Workers defaults to 4
func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("record source is required")
	}
	if cfg.Target == nil {
		return nil, fmt.Errorf("replication target is required")
	}
	r := &Replicator{
		source:  cfg.Source,
		target:  cfg.Target,
		workers: cfg.Workers,
		logger:  cfg.Logger,
		runID:   cfg.RunID,
		now:     cfg.Now,
	}
	if r.workers <= 0 {
		r.workers = 4
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

type result struct {
	name string
	err  error
}

// Replicate pushes every stored record to the target. Per-record failures are
// collected in the report; only a failure to list the source or a cancelled
// context is returned as an error.
func (r *Replicator) Replicate(ctx context.Context) (*Report, error) {
	names, err := r.source.List()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	r.logger.Info("replicating records", zap.Int("records", len(names)), zap.Int("workers", r.workers))

	jobs := make(chan string)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				results <- result{name: name, err: r.replicateOne(ctx, name)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, name := range names {
			select {
			case jobs <- name:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	report := &Report{Failed: make(map[string]error)}
	for res := range results {
		report.Processed++
		if res.err != nil {
			report.Failed[res.name] = res.err
			r.logger.Error("failed to replicate record", zap.String("name", res.name), zap.Error(res.err))
			continue
		}
		report.Replicated++
	}

	r.logger.Info("replication complete",
		zap.Int("processed", report.Processed),
		zap.Int("replicated", report.Replicated),
		zap.Int("failed", len(report.Failed)),
	)

	if err := ctx.Err(); err != nil && report.Processed < len(names) {
		return report, fmt.Errorf("replication interrupted: %w", err)
	}
	return report, nil
}

func (r *Replicator) replicateOne(ctx context.Context, name string) error {
	transcript, err := r.source.Load(name)
	if err != nil {
		return err
	}
	path, err := r.source.Path(name)
	if err != nil {
		return err
	}

	record := &domain.PlayRecord{
		Name:        name,
		SourceURL:   path,
		Transcript:  transcript,
		RunID:       r.runID,
		ExtractedAt: r.now().UTC(),
	}
	if _, err := r.target.SaveAll(ctx, record); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
