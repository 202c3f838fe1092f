package playdownloadservice

import (
	"context"
	"errors"

	"play-extract/pkg/replication"
	"play-extract/pkg/store"
)

// ErrNoReplicationTarget is returned when no database or object sink is enabled
var ErrNoReplicationTarget = errors.New("no database or object sink enabled")

// Replicate copies the JSON records in the output directory into every
// enabled database and object sink
func Replicate(ctx context.Context, cfg Config, workers int) (*replication.Report, error) {
	if cfg.App == nil {
		return nil, errors.New("configuration is required")
	}
	if !cfg.App.DatabaseSinksEnabled() {
		return nil, ErrNoReplicationTarget
	}

	svc, err := NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer svc.Close()

	// the file sink is the source here, not a target
	var targets []store.Sink
	for _, sink := range svc.sinks.sinks {
		if sink.Name != "file" {
			targets = append(targets, sink)
		}
	}

	r, err := replication.NewReplicator(replication.Config{
		Source:  svc.FileStore(),
		Target:  store.NewMultiSaver(targets...),
		Workers: workers,
		Logger:  svc.logger,
		RunID:   cfg.RunID,
		Now:     cfg.Now,
	})
	if err != nil {
		return nil, err
	}
	return r.Replicate(ctx)
}
