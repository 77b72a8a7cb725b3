package chart

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

var (
	colorBackground = color.RGBA{255, 255, 255, 255}
	colorAxis       = color.RGBA{60, 60, 60, 255}
	colorGrid       = color.RGBA{220, 220, 220, 255}
	colorText       = color.RGBA{40, 40, 40, 255}

	// Fixed palette; slices and bars cycle through it by index so the
	// same input order always yields the same colors.
	palette = []color.RGBA{
		{52, 152, 219, 255},  // blue
		{231, 76, 60, 255},   // red
		{46, 204, 113, 255},  // green
		{241, 196, 15, 255},  // yellow
		{155, 89, 182, 255},  // purple
		{230, 126, 34, 255},  // orange
		{26, 188, 156, 255},  // teal
		{149, 165, 166, 255}, // gray
		{52, 73, 94, 255},    // navy
		{217, 136, 128, 255}, // rose
	}
)

func paletteColor(i int) color.RGBA {
	return palette[i%len(palette)]
}

type plotArea struct {
	left, right, top, bottom int
}

func (p plotArea) width() int  { return p.right - p.left }
func (p plotArea) height() int { return p.bottom - p.top }

func (r *Rasterizer) drawBarChart(img *image.RGBA, title string, data []domain.ChartPoint) bool {
	b := img.Bounds()
	area := plotArea{left: 55, right: b.Dx() - 15, top: 30, bottom: b.Dy() - 35}

	r.drawTitle(img, title)

	maxVal := maxValue(data)
	if maxVal <= 0 {
		maxVal = 1
	}
	r.drawAxes(img, area, maxVal)

	slot := float64(area.width()) / float64(len(data))
	barW := int(slot * 0.7)
	if barW < 1 {
		barW = 1
	}

	for i, p := range data {
		h := int(float64(area.height()) * (p.Value / maxVal))
		x0 := area.left + int(float64(i)*slot+(slot-float64(barW))/2)
		fillRect(img, image.Rect(x0, area.bottom-h, x0+barW, area.bottom), paletteColor(i))

		label := truncateToWidth(r.face.label, p.Label, int(slot)-2)
		lw := textWidth(r.face.label, label)
		r.drawText(img, area.left+int(float64(i)*slot+slot/2)-lw/2, area.bottom+14, label, colorText)
	}
	return true
}

func (r *Rasterizer) drawLineChart(img *image.RGBA, title string, data []domain.ChartPoint) bool {
	b := img.Bounds()
	area := plotArea{left: 55, right: b.Dx() - 15, top: 30, bottom: b.Dy() - 35}

	r.drawTitle(img, title)

	maxVal := maxValue(data)
	if maxVal <= 0 {
		maxVal = 1
	}
	r.drawAxes(img, area, maxVal)

	n := len(data)
	pointX := func(i int) int {
		if n == 1 {
			return area.left + area.width()/2
		}
		return area.left + int(float64(area.width())*float64(i)/float64(n-1))
	}
	pointY := func(v float64) int {
		return area.bottom - int(float64(area.height())*(v/maxVal))
	}

	lineColor := paletteColor(0)
	for i := 0; i < n; i++ {
		x, y := pointX(i), pointY(data[i].Value)
		fillRect(img, image.Rect(x-2, y-2, x+2, y+2), lineColor)
		if i > 0 {
			drawSegment(img, pointX(i-1), pointY(data[i-1].Value), x, y, lineColor)
		}
	}

	// first and last x labels are enough; dense date axes are unreadable
	first := truncateToWidth(r.face.label, data[0].Label, area.width()/2)
	r.drawText(img, area.left, area.bottom+14, first, colorText)
	if n > 1 {
		last := truncateToWidth(r.face.label, data[n-1].Label, area.width()/2)
		r.drawText(img, area.right-textWidth(r.face.label, last), area.bottom+14, last, colorText)
	}
	return true
}

func (r *Rasterizer) drawPieChart(img *image.RGBA, title string, data []domain.ChartPoint) bool {
	var sum float64
	for _, p := range data {
		if p.Value > 0 {
			sum += p.Value
		}
	}
	if sum <= 0 {
		return false
	}

	b := img.Bounds()
	r.drawTitle(img, title)

	cx := b.Dx() / 3
	cy := (b.Dy()-30)/2 + 30
	radius := minInt(cx-20, (b.Dy()-60)/2)
	if radius < 5 {
		radius = 5
	}

	// cumulative slice boundaries in radians, clockwise from 12 o'clock
	bounds := make([]float64, len(data))
	var cum float64
	for i, p := range data {
		v := p.Value
		if v < 0 {
			v = 0
		}
		cum += v
		bounds[i] = cum / sum * 2 * math.Pi
	}

	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := float64(x-cx), float64(y-cy)
			if dx*dx+dy*dy > float64(radius*radius) {
				continue
			}
			theta := math.Atan2(dx, -dy)
			if theta < 0 {
				theta += 2 * math.Pi
			}
			for i := range bounds {
				if theta <= bounds[i] {
					img.SetRGBA(x, y, paletteColor(i))
					break
				}
			}
		}
	}

	// legend on the right: color swatch, label, share
	lx := cx + radius + 20
	ly := 45
	for i, p := range data {
		if ly > b.Dy()-10 {
			break
		}
		fillRect(img, image.Rect(lx, ly-8, lx+10, ly+2), paletteColor(i))
		share := p.Value / sum * 100
		text := fmt.Sprintf("%s (%.1f%%)", p.Label, share)
		text = truncateToWidth(r.face.label, text, b.Dx()-lx-14)
		r.drawText(img, lx+14, ly, text, colorText)
		ly += 16
	}
	return true
}

func (r *Rasterizer) drawTitle(img *image.RGBA, title string) {
	w := img.Bounds().Dx()
	title = truncateToWidth(r.face.title, title, w-20)
	r.drawTextFace(img, r.face.title, (w-textWidth(r.face.title, title))/2, 18, title, colorText)
}

func (r *Rasterizer) drawAxes(img *image.RGBA, area plotArea, maxVal float64) {
	// horizontal gridlines with value labels at 0%, 25%, 50%, 75%, 100%
	for i := 0; i <= 4; i++ {
		y := area.bottom - area.height()*i/4
		if i > 0 {
			drawSegment(img, area.left, y, area.right, y, colorGrid)
		}
		label := formatAxisValue(maxVal * float64(i) / 4)
		r.drawText(img, area.left-textWidth(r.face.label, label)-4, y+4, label, colorText)
	}
	drawSegment(img, area.left, area.top, area.left, area.bottom, colorAxis)
	drawSegment(img, area.left, area.bottom, area.right, area.bottom, colorAxis)
}

func (r *Rasterizer) drawText(img *image.RGBA, x, y int, s string, col color.Color) {
	r.drawTextFace(img, r.face.label, x, y, s, col)
}

func (r *Rasterizer) drawTextFace(img *image.RGBA, face font.Face, x, y int, s string, col color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func fillRect(img *image.RGBA, rect image.Rectangle, col color.Color) {
	draw.Draw(img, rect.Intersect(img.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)
}

// drawSegment plots a 1px line with a simple DDA walk.
func drawSegment(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx, dy := x1-x0, y1-y0
	steps := maxInt(absInt(dx), absInt(dy))
	if steps == 0 {
		img.SetRGBA(x0, y0, col)
		return
	}
	for i := 0; i <= steps; i++ {
		x := x0 + dx*i/steps
		y := y0 + dy*i/steps
		img.SetRGBA(x, y, col)
	}
}

func maxValue(data []domain.ChartPoint) float64 {
	var m float64
	for _, p := range data {
		if p.Value > m {
			m = p.Value
		}
	}
	return m
}

func formatAxisValue(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

func truncateToWidth(face font.Face, s string, width int) string {
	if textWidth(face, s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 1 {
		runes = runes[:len(runes)-1]
		if textWidth(face, string(runes)+"…") <= width {
			return string(runes) + "…"
		}
	}
	return string(runes)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
