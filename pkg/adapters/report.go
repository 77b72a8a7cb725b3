package adapters

import (
	"maps"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

func MapAPIRecordsToDomain(records []map[string]string) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.Record(maps.Clone(rec)))
	}
	return out
}
