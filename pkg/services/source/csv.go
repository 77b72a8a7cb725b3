package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

// CSVSource reads records from a header-prefixed CSV file.
type CSVSource struct {
	path string
}

func CSVFactory(_ context.Context, cfg Config) (Source, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("csv source requires an input path")
	}
	return &CSVSource{path: cfg.Path}, nil
}

func (s *CSVSource) Records(_ context.Context) ([]domain.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", s.path, err)
	}

	var records []domain.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
		}
		rec := make(domain.Record, len(header))
		for i, field := range header {
			if i < len(row) {
				rec[field] = row[i]
			}
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, s.path)
	}
	return records, nil
}
