package domain

// RecordAmount pairs a record with the amount derived from it.
type RecordAmount struct {
	Record Record
	Amount float64
}

// TopEntity is the highest-grossing entity (e.g. product) in the input.
type TopEntity struct {
	Name   string
	Amount float64
}

// DatePoint is one entry of a chronologically ordered time series.
type DatePoint struct {
	Date   string
	Amount float64
}

// AggregateView is the output contract of the statistics aggregator.
// All amounts are non-negative; missing or unparseable values coerce to zero.
type AggregateView struct {
	Label       string
	RecordCount int
	Total       float64
	Average     float64
	Max         *RecordAmount
	Min         *RecordAmount
	Categories  map[string]float64
	Trend       []DatePoint
	Top         TopEntity
}
