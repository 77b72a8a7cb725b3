package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

const defaultQuery = "SELECT date, product, category, amount FROM sales ORDER BY date"

// SQLSource reads records from a database/sql connection. The driver is
// registered by the binary (sqlite3 in the shipped CLI).
type SQLSource struct {
	db    *sql.DB
	query string
}

func NewSQLSource(db *sql.DB, query string) *SQLSource {
	if query == "" {
		query = defaultQuery
	}
	return &SQLSource{db: db, query: query}
}

func SQLiteFactory(_ context.Context, cfg Config) (Source, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = cfg.Path
	}
	if dsn == "" {
		return nil, fmt.Errorf("sqlite source requires a database path")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", dsn, err)
	}
	return NewSQLSource(db, cfg.Query), nil
}

func (s *SQLSource) Records(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var records []domain.Record
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		scan := make([]any, len(columns))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec := make(domain.Record, len(columns))
		for i, col := range columns {
			if values[i].Valid {
				rec[col] = values[i].String
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}
