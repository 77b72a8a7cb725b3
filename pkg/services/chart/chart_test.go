package chart

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

type dirIssuer struct {
	dir string
	n   int
}

func (d *dirIssuer) Issue(prefix, suffix string) (string, error) {
	d.n++
	return filepath.Join(d.dir, fmt.Sprintf("%s%d%s", prefix, d.n, suffix)), nil
}

func newRasterizer(t *testing.T, enabled bool) (*Rasterizer, *dirIssuer) {
	t.Helper()
	issuer := &dirIssuer{dir: t.TempDir()}
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return New(logger, issuer, Options{Enabled: enabled}), issuer
}

func samplePoints() []domain.ChartPoint {
	return []domain.ChartPoint{
		{Label: "Electronics", Value: 50000},
		{Label: "Food", Value: 3000},
		{Label: "Books", Value: 1200},
	}
}

func TestRender_DisabledBackendSkips(t *testing.T) {
	r, issuer := newRasterizer(t, false)

	res := r.Render(context.Background(), domain.ChartSpec{
		Kind: domain.ChartBar, Title: "By Category", Data: samplePoints(),
	})

	assert.True(t, res.Skipped)
	assert.Equal(t, SkipNoBackend, res.Reason)
	assert.Zero(t, issuer.n, "no path should be issued for a skipped chart")
}

func TestRender_EmptyDataSkips(t *testing.T) {
	r, _ := newRasterizer(t, true)

	res := r.Render(context.Background(), domain.ChartSpec{Kind: domain.ChartBar, Title: "Empty"})

	assert.True(t, res.Skipped)
	assert.Equal(t, SkipNoData, res.Reason)
}

func TestRender_ZeroSumPieSkips(t *testing.T) {
	r, _ := newRasterizer(t, true)

	res := r.Render(context.Background(), domain.ChartSpec{
		Kind:  domain.ChartPie,
		Title: "All Zero",
		Data:  []domain.ChartPoint{{Label: "a", Value: 0}, {Label: "b", Value: 0}},
	})

	assert.True(t, res.Skipped)
	assert.Equal(t, SkipNoData, res.Reason)
}

func TestRender_ProducesDecodablePNG(t *testing.T) {
	r, _ := newRasterizer(t, true)

	for _, kind := range []domain.ChartKind{domain.ChartBar, domain.ChartLine, domain.ChartPie} {
		res := r.Render(context.Background(), domain.ChartSpec{
			Kind: kind, Title: "Sales", Data: samplePoints(), Width: 400, Height: 200,
		})

		require.False(t, res.Skipped, string(kind))
		assert.Equal(t, "png", res.Artifact.Format)

		f, err := os.Open(res.Artifact.Path)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err, string(kind))
		assert.Equal(t, 400, img.Bounds().Dx())
		assert.Equal(t, 200, img.Bounds().Dy())
	}
}

func TestCapDataset(t *testing.T) {
	points := []domain.ChartPoint{
		{Label: "2024-01-01", Value: 10},
		{Label: "2024-01-02", Value: 40},
		{Label: "2024-01-03", Value: 20},
		{Label: "2024-01-04", Value: 30},
	}

	bar := capDataset(domain.ChartSpec{Kind: domain.ChartBar, Data: points, CategoryCap: 2})
	require.Len(t, bar, 2)
	assert.Equal(t, "2024-01-02", bar[0].Label)
	assert.Equal(t, "2024-01-04", bar[1].Label)

	line := capDataset(domain.ChartSpec{Kind: domain.ChartLine, Data: points, CategoryCap: 2})
	require.Len(t, line, 2)
	assert.Equal(t, "2024-01-01", line[0].Label)
	assert.Equal(t, "2024-01-02", line[1].Label)

	// cap larger than the dataset leaves it untouched
	all := capDataset(domain.ChartSpec{Kind: domain.ChartPie, Data: points, CategoryCap: 10})
	assert.Len(t, all, 4)
	assert.Equal(t, points, all)
}
