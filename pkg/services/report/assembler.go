package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/services/chart"
	"github.com/de-tools/report-forge/pkg/services/runlog"
)

// ErrIncompleteAggregate is returned before any page is drawn when the
// aggregate view lacks required derived fields.
var ErrIncompleteAggregate = errors.New("aggregate view is missing required fields")

var (
	headerFill = [3]int{30, 58, 95}
	altRowFill = [3]int{241, 245, 249}
	mutedText  = [3]int{127, 140, 141}
	darkText   = [3]int{44, 62, 80}
)

// ChartRenderer is the rasterization capability the assembler drives.
type ChartRenderer interface {
	Render(ctx context.Context, spec domain.ChartSpec) chart.Result
}

type Settings struct {
	Title            string
	MaxDataRows      int
	MaxBarCategories int
	MaxPieCategories int
	ChartWidth       int
	ChartHeight      int
}

func (s Settings) withDefaults() Settings {
	if s.Title == "" {
		s.Title = "Sales Report"
	}
	if s.MaxDataRows <= 0 {
		s.MaxDataRows = 50
	}
	if s.MaxBarCategories <= 0 {
		s.MaxBarCategories = 20
	}
	if s.MaxPieCategories <= 0 {
		s.MaxPieCategories = 10
	}
	if s.ChartWidth <= 0 {
		s.ChartWidth = 600
	}
	if s.ChartHeight <= 0 {
		s.ChartHeight = 300
	}
	return s
}

// Assembler builds the report document: summary, category, trend, top
// entity and pie breakdown pages, in that order.
type Assembler struct {
	charts ChartRenderer
	runLog *runlog.Log
	cfg    Settings
}

func New(charts ChartRenderer, runLog *runlog.Log, cfg Settings) *Assembler {
	return &Assembler{charts: charts, runLog: runLog, cfg: cfg.withDefaults()}
}

// Generate renders the aggregate view into a single document byte stream.
func (a *Assembler) Generate(ctx context.Context, view domain.AggregateView) ([]byte, error) {
	if missing := missingFields(view); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncompleteAggregate, strings.Join(missing, ", "))
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)

	a.writeSummaryPage(pdf, view)
	a.writeCategoryPage(ctx, pdf, view)
	a.writeTrendPage(ctx, pdf, view)
	a.writeTopEntityPage(pdf, view)
	a.writePieBreakdownPage(ctx, pdf, view)

	if pdf.Err() {
		return nil, fmt.Errorf("failed to build document: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	a.runLog.Appendf("document assembled (%d bytes)", buf.Len())
	return buf.Bytes(), nil
}

func missingFields(view domain.AggregateView) []string {
	var missing []string
	if view.RecordCount == 0 {
		missing = append(missing, "record count")
	}
	if view.Max == nil {
		missing = append(missing, "max record")
	}
	if view.Min == nil {
		missing = append(missing, "min record")
	}
	if view.Categories == nil {
		missing = append(missing, "category totals")
	}
	if view.Trend == nil {
		missing = append(missing, "trend series")
	}
	return missing
}

func (a *Assembler) writeSummaryPage(pdf *fpdf.Fpdf, view domain.AggregateView) {
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(darkText[0], darkText[1], darkText[2])
	pdf.CellFormat(0, 14, a.cfg.Title, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(mutedText[0], mutedText[1], mutedText[2])
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	rows := [][2]string{
		{"Records", fmt.Sprintf("%d", view.RecordCount)},
		{"Total", formatAmount(view.Total)},
		{"Average", formatAmount(view.Average)},
		{"Highest", formatAmount(view.Max.Amount)},
		{"Lowest", formatAmount(view.Min.Amount)},
		{"Top Seller", fmt.Sprintf("%s (%s)", view.Top.Name, formatAmount(view.Top.Amount))},
	}
	a.writeTable(pdf, "Summary", [2]string{"Metric", "Value"}, rows)
}

func (a *Assembler) writeCategoryPage(ctx context.Context, pdf *fpdf.Fpdf, view domain.AggregateView) {
	pdf.AddPage()

	points := sortedCategoryPoints(view.Categories)
	rows := make([][2]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, [2]string{p.Label, formatAmount(p.Value)})
	}
	a.writeTable(pdf, "Sales by Category", [2]string{"Category", "Amount"}, rows)

	pdf.Ln(6)
	a.embedChart(ctx, pdf, domain.ChartSpec{
		Kind:        domain.ChartBar,
		Title:       "Sales by Category",
		Data:        points,
		Width:       a.cfg.ChartWidth,
		Height:      a.cfg.ChartHeight,
		CategoryCap: a.cfg.MaxBarCategories,
	})
}

func (a *Assembler) writeTrendPage(ctx context.Context, pdf *fpdf.Fpdf, view domain.AggregateView) {
	pdf.AddPage()

	shown, omitted := truncateTrend(view.Trend, a.cfg.MaxDataRows)
	rows := make([][2]string, 0, len(shown)+1)
	points := make([]domain.ChartPoint, 0, len(view.Trend))
	for _, p := range shown {
		rows = append(rows, [2]string{p.Date, formatAmount(p.Amount)})
	}
	if omitted > 0 {
		rows = append(rows, [2]string{fmt.Sprintf("... %d rows omitted", omitted), ""})
	}
	for _, p := range view.Trend {
		points = append(points, domain.ChartPoint{Label: p.Date, Value: p.Amount})
	}
	a.writeTable(pdf, "Daily Trend", [2]string{"Date", "Amount"}, rows)

	pdf.Ln(6)
	a.embedChart(ctx, pdf, domain.ChartSpec{
		Kind:        domain.ChartLine,
		Title:       "Daily Trend",
		Data:        points,
		Width:       a.cfg.ChartWidth,
		Height:      a.cfg.ChartHeight,
		CategoryCap: a.cfg.MaxDataRows,
	})
}

func (a *Assembler) writeTopEntityPage(pdf *fpdf.Fpdf, view domain.AggregateView) {
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(darkText[0], darkText[1], darkText[2])
	pdf.CellFormat(0, 10, "Top Product", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, view.Top.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 14)
	pdf.SetTextColor(mutedText[0], mutedText[1], mutedText[2])
	pdf.CellFormat(0, 10, formatAmount(view.Top.Amount), "", 1, "C", false, 0, "")

	if view.Total > 0 {
		share := view.Top.Amount / view.Total * 100
		pdf.CellFormat(0, 8, fmt.Sprintf("%.1f%% of total sales", share), "", 1, "C", false, 0, "")
	}
}

func (a *Assembler) writePieBreakdownPage(ctx context.Context, pdf *fpdf.Fpdf, view domain.AggregateView) {
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(darkText[0], darkText[1], darkText[2])
	pdf.CellFormat(0, 10, "Category Breakdown", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	a.embedChart(ctx, pdf, domain.ChartSpec{
		Kind:        domain.ChartPie,
		Title:       "Category Share",
		Data:        sortedCategoryPoints(view.Categories),
		Width:       a.cfg.ChartWidth,
		Height:      a.cfg.ChartHeight,
		CategoryCap: a.cfg.MaxPieCategories,
	})
}

// embedChart renders and embeds one chart. A skip or embed failure only
// logs; the page proceeds without the image.
func (a *Assembler) embedChart(ctx context.Context, pdf *fpdf.Fpdf, spec domain.ChartSpec) {
	logger := zerolog.Ctx(ctx)

	res := a.charts.Render(ctx, spec)
	if res.Skipped {
		a.runLog.Appendf("chart %q skipped: %s", spec.Title, res.Reason)
		logger.Info().Str("chart", spec.Title).Str("reason", string(res.Reason)).Msg("chart skipped")
		return
	}

	pdf.ImageOptions(res.Artifact.Path, 20, pdf.GetY(), 170, 0, true,
		fpdf.ImageOptions{ImageType: strings.ToUpper(res.Artifact.Format)}, 0, "")
	if pdf.Err() {
		a.runLog.Appendf("chart %q embed failed: %v", spec.Title, pdf.Error())
		logger.Warn().Err(pdf.Error()).Str("chart", spec.Title).Msg("failed to embed chart")
		pdf.ClearError()
	}
}

func (a *Assembler) writeTable(pdf *fpdf.Fpdf, title string, header [2]string, rows [][2]string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(darkText[0], darkText[1], darkText[2])
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	const col1, col2, rowH = 100.0, 70.0, 7.0

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(col1, rowH, header[0], "", 0, "L", true, 0, "")
	pdf.CellFormat(col2, rowH, header[1], "", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(darkText[0], darkText[1], darkText[2])
	for i, row := range rows {
		fill := i%2 == 1
		if fill {
			pdf.SetFillColor(altRowFill[0], altRowFill[1], altRowFill[2])
		}
		pdf.CellFormat(col1, rowH, row[0], "", 0, "L", fill, 0, "")
		pdf.CellFormat(col2, rowH, row[1], "", 1, "R", fill, 0, "")
	}
}

// truncateTrend caps the displayed rows, reporting how many were cut.
// Data is never dropped silently; callers render an omission marker.
func truncateTrend(points []domain.DatePoint, max int) ([]domain.DatePoint, int) {
	if max <= 0 || len(points) <= max {
		return points, 0
	}
	return points[:max], len(points) - max
}

func sortedCategoryPoints(categories map[string]float64) []domain.ChartPoint {
	points := make([]domain.ChartPoint, 0, len(categories))
	for name, amount := range categories {
		points = append(points, domain.ChartPoint{Label: name, Value: amount})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Label < points[j].Label
	})
	return points
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
