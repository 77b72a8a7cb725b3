package stats

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

// ErrNoRecords is returned when the aggregator receives an empty input.
// Empty input is an upstream failure, not a report the pipeline can build.
var ErrNoRecords = errors.New("no records to aggregate")

// Fields names the record fields the aggregator derives its view from.
type Fields struct {
	Amount   string
	Date     string
	Category string
	Entity   string
}

func DefaultFields() Fields {
	return Fields{Amount: "amount", Date: "date", Category: "category", Entity: "product"}
}

// Aggregate reduces the record sequence into the labeled summary bundle
// the report assembler consumes. Amounts are parsed from the designated
// numeric field; missing or unparseable values coerce to zero and
// negatives are clamped to zero.
func Aggregate(records []domain.Record, fields Fields) (domain.AggregateView, error) {
	if len(records) == 0 {
		return domain.AggregateView{}, ErrNoRecords
	}

	view := domain.AggregateView{
		Label:       "sales",
		RecordCount: len(records),
		Categories:  make(map[string]float64),
	}

	byDate := make(map[string]float64)
	byEntity := make(map[string]float64)

	for _, rec := range records {
		amount := parseAmount(rec.Field(fields.Amount))
		view.Total += amount

		if view.Max == nil || amount > view.Max.Amount {
			view.Max = &domain.RecordAmount{Record: rec, Amount: amount}
		}
		if view.Min == nil || amount < view.Min.Amount {
			view.Min = &domain.RecordAmount{Record: rec, Amount: amount}
		}

		if cat := rec.Field(fields.Category); cat != "" {
			view.Categories[cat] += amount
		}
		if date := rec.Field(fields.Date); date != "" {
			byDate[date] += amount
		}
		if entity := rec.Field(fields.Entity); entity != "" {
			byEntity[entity] += amount
		}
	}

	view.Average = view.Total / float64(len(records))

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates) // ISO dates sort chronologically
	view.Trend = make([]domain.DatePoint, 0, len(dates))
	for _, d := range dates {
		view.Trend = append(view.Trend, domain.DatePoint{Date: d, Amount: byDate[d]})
	}

	for name, amount := range byEntity {
		if amount > view.Top.Amount || (amount == view.Top.Amount && (view.Top.Name == "" || name < view.Top.Name)) {
			view.Top = domain.TopEntity{Name: name, Amount: amount}
		}
	}

	return view, nil
}

func parseAmount(raw string) float64 {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
