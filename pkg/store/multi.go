package store

import (
	"context"
	"errors"
	"fmt"

	"play-extract/pkg/domain"
)

// Saver persists one record and reports where it went
type Saver interface {
	SaveRecord(ctx context.Context, record *domain.PlayRecord) (string, error)
}

// Sink is a named Saver
type Sink struct {
	Name  string
	Saver Saver
}

// MultiSaver writes a record to every sink.
type MultiSaver struct {
	sinks []Sink
}

// NewMultiSaver creates a saver over sinks, in order
func NewMultiSaver(sinks ...Sink) *MultiSaver {
	return &MultiSaver{sinks: sinks}
}

// Sinks returns the configured sinks
func (m *MultiSaver) Sinks() []Sink {
	return m.sinks
}

// SaveAll tries every sink and returns the locations that succeeded. Failures
// are joined; one failing sink does not stop the others.
func (m *MultiSaver) SaveAll(ctx context.Context, record *domain.PlayRecord) ([]string, error) {
	var (
		locations []string
		errs      []error
	)
	for _, sink := range m.sinks {
		loc, err := sink.Saver.SaveRecord(ctx, record)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name, err))
			continue
		}
		locations = append(locations, loc)
	}
	return locations, errors.Join(errs...)
}
