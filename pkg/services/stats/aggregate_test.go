package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

func TestAggregate_Empty(t *testing.T) {
	_, err := Aggregate(nil, DefaultFields())
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestAggregate_Summary(t *testing.T) {
	records := []domain.Record{
		{"date": "2024-01-15", "product": "Laptop", "category": "Electronics", "amount": "50,000"},
		{"date": "2024-01-16", "product": "Coffee", "category": "Food", "amount": "3000"},
	}

	view, err := Aggregate(records, DefaultFields())
	require.NoError(t, err)

	assert.Equal(t, 2, view.RecordCount)
	assert.InDelta(t, 53000, view.Total, 0.001)
	assert.InDelta(t, 26500, view.Average, 0.001)

	require.NotNil(t, view.Max)
	assert.Equal(t, "Laptop", view.Max.Record.Field("product"))
	assert.InDelta(t, 50000, view.Max.Amount, 0.001)

	require.NotNil(t, view.Min)
	assert.Equal(t, "Coffee", view.Min.Record.Field("product"))
	assert.InDelta(t, 3000, view.Min.Amount, 0.001)

	assert.InDelta(t, 50000, view.Categories["Electronics"], 0.001)
	assert.InDelta(t, 3000, view.Categories["Food"], 0.001)

	assert.Equal(t, "Laptop", view.Top.Name)
	assert.InDelta(t, 50000, view.Top.Amount, 0.001)
}

func TestAggregate_TrendIsChronological(t *testing.T) {
	records := []domain.Record{
		{"date": "2024-03-02", "amount": "10"},
		{"date": "2024-01-05", "amount": "20"},
		{"date": "2024-03-02", "amount": "5"},
		{"date": "2024-02-11", "amount": "7"},
	}

	view, err := Aggregate(records, DefaultFields())
	require.NoError(t, err)

	require.Len(t, view.Trend, 3)
	assert.Equal(t, domain.DatePoint{Date: "2024-01-05", Amount: 20}, view.Trend[0])
	assert.Equal(t, domain.DatePoint{Date: "2024-02-11", Amount: 7}, view.Trend[1])
	assert.Equal(t, domain.DatePoint{Date: "2024-03-02", Amount: 15}, view.Trend[2])
}

func TestAggregate_AmountCoercion(t *testing.T) {
	records := []domain.Record{
		{"product": "A", "amount": "not-a-number"},
		{"product": "B", "amount": "-100"},
		{"product": "C", "amount": " 1,234.50 "},
		{"product": "D"},
	}

	view, err := Aggregate(records, DefaultFields())
	require.NoError(t, err)

	assert.InDelta(t, 1234.50, view.Total, 0.001)
	assert.InDelta(t, 1234.50/4, view.Average, 0.001)
	require.NotNil(t, view.Min)
	assert.InDelta(t, 0, view.Min.Amount, 0.001)
}

func TestAggregate_TopEntityTieBreaksLexicographically(t *testing.T) {
	records := []domain.Record{
		{"product": "Zeta", "amount": "100"},
		{"product": "Alpha", "amount": "100"},
	}

	view, err := Aggregate(records, DefaultFields())
	require.NoError(t, err)

	assert.Equal(t, "Alpha", view.Top.Name)
}
