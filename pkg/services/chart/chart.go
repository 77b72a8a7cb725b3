package chart

import (
	"context"
	"image"
	"image/png"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

// SkipReason tags a non-error render outcome. Skips are intentional
// omissions the caller must tolerate, never failures.
type SkipReason string

const (
	SkipNoData       SkipReason = "no data"
	SkipNoBackend    SkipReason = "raster backend disabled"
	SkipRenderFailed SkipReason = "render failed"
)

// Result is the outcome of rendering one chart: either an artifact on
// disk or a skip with a reason.
type Result struct {
	Artifact domain.RasterArtifact
	Skipped  bool
	Reason   SkipReason
}

func skip(reason SkipReason) Result {
	return Result{Skipped: true, Reason: reason}
}

// PathIssuer hands out unique temp paths. The rasterizer never manages
// file identity itself.
type PathIssuer interface {
	Issue(prefix, suffix string) (string, error)
}

type Options struct {
	// Enabled turns rasterization off entirely when false; every render
	// then returns a backend skip and the report assembles without images.
	Enabled bool
	// FontsDir is searched for a scalable font. When none is found the
	// built-in bitmap font is used instead.
	FontsDir string
}

// Rasterizer renders chart specs into standalone PNG images.
type Rasterizer struct {
	issuer  PathIssuer
	enabled bool
	face    *faces
	logger  zerolog.Logger
}

func New(logger zerolog.Logger, issuer PathIssuer, opts Options) *Rasterizer {
	return &Rasterizer{
		issuer:  issuer,
		enabled: opts.Enabled,
		face:    loadFaces(logger, opts.FontsDir),
		logger:  logger,
	}
}

// Render rasterizes the spec to a PNG issued by the path issuer. Any
// rasterization failure is logged and reported as a skip; chart failures
// are non-fatal to the report.
func (r *Rasterizer) Render(ctx context.Context, spec domain.ChartSpec) Result {
	logger := zerolog.Ctx(ctx).With().Str("chart", spec.Title).Logger()

	if !r.enabled {
		return skip(SkipNoBackend)
	}

	data := capDataset(spec)
	if len(data) == 0 {
		return skip(SkipNoData)
	}

	width, height := spec.Width, spec.Height
	if width <= 0 {
		width = 600
	}
	if height <= 0 {
		height = 300
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fillRect(img, img.Bounds(), colorBackground)

	var ok bool
	switch spec.Kind {
	case domain.ChartBar:
		ok = r.drawBarChart(img, spec.Title, data)
	case domain.ChartLine:
		ok = r.drawLineChart(img, spec.Title, data)
	case domain.ChartPie:
		ok = r.drawPieChart(img, spec.Title, data)
	default:
		logger.Warn().Str("kind", string(spec.Kind)).Msg("unknown chart kind")
		return skip(SkipRenderFailed)
	}
	if !ok {
		// zero-sum pie and similar degenerate datasets
		return skip(SkipNoData)
	}

	path, err := r.issuer.Issue("chart_", ".png")
	if err != nil {
		logger.Error().Err(err).Str("title", spec.Title).Msg("failed to issue chart path")
		return skip(SkipRenderFailed)
	}
	if err := writePNG(path, img); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to encode chart")
		return skip(SkipRenderFailed)
	}

	return Result{Artifact: domain.RasterArtifact{Path: path, Format: "png"}}
}

// capDataset applies the category cap: bar and pie keep the top-N by
// value, line charts keep the first N in chronological order.
func capDataset(spec domain.ChartSpec) []domain.ChartPoint {
	data := spec.Data
	limit := spec.CategoryCap
	if limit <= 0 || len(data) <= limit {
		out := make([]domain.ChartPoint, len(data))
		copy(out, data)
		return out
	}

	if spec.Kind == domain.ChartLine {
		out := make([]domain.ChartPoint, limit)
		copy(out, data[:limit])
		return out
	}

	out := make([]domain.ChartPoint, len(data))
	copy(out, data)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out[:limit]
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
