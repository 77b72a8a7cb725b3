package domain

type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
	ChartPie  ChartKind = "pie"
)

// ChartPoint is one labeled value of a chart dataset. Order matters:
// the rasterizer renders points in the order they appear.
type ChartPoint struct {
	Label string
	Value float64
}

// ChartSpec describes a single chart to rasterize. It is produced per
// report section and consumed exactly once.
type ChartSpec struct {
	Kind        ChartKind
	Title       string
	Data        []ChartPoint
	Width       int
	Height      int
	CategoryCap int
}

// RasterArtifact is a rendered chart image on disk. The path is owned
// by the temp arena that issued it; holders keep only a transient
// reference while embedding.
type RasterArtifact struct {
	Path   string
	Format string
}
