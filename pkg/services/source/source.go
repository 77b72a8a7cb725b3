package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

// ErrNoRecords is returned when a source yields an empty sequence.
// The pipeline requires non-empty input; emptiness fails at this boundary.
var ErrNoRecords = errors.New("source yielded no records")

// Source supplies the ordered record sequence the pipeline consumes.
type Source interface {
	Records(ctx context.Context) ([]domain.Record, error)
}

// Config carries the per-kind source settings.
type Config struct {
	// Path is the input file for file-backed sources.
	Path string
	// DSN and Query configure SQL-backed sources.
	DSN   string
	Query string
}

type Factory func(ctx context.Context, cfg Config) (Source, error)

// Registry maps source kinds to factories.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry(factories map[string]Factory) *Registry {
	return &Registry{factories: factories}
}

func (r *Registry) Create(ctx context.Context, kind string, cfg Config) (Source, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported source kind %q", kind)
	}
	return factory(ctx, cfg)
}

func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	return kinds
}
