package source

import (
	"context"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

// StaticSource serves records already held in memory, e.g. decoded from
// an API request body.
type StaticSource struct {
	records []domain.Record
}

func NewStaticSource(records []domain.Record) *StaticSource {
	return &StaticSource{records: records}
}

func (s *StaticSource) Records(_ context.Context) ([]domain.Record, error) {
	if len(s.records) == 0 {
		return nil, ErrNoRecords
	}
	return s.records, nil
}
