package render

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"chartsync/internal/capping"
	"chartsync/internal/charts"
	"chartsync/internal/logger"
	"chartsync/internal/values"
)

var (
	dimmedColor = drawing.ColorFromHex("cccccc")
	brushColor  = drawing.Color{R: 51, G: 102, B: 204, A: 60}
	lineColor   = drawing.Color{R: 51, G: 102, B: 204, A: 255}
)

// PNGRenderer draws views as PNG images
type PNGRenderer struct {
	*Store
	outputDir string
	log       *logger.Logger
}

// NewPNGRenderer creates a PNG renderer. With a non-empty outputDir every image is also
// written to <outputDir>/<anchor>.png.
func NewPNGRenderer(outputDir string) *PNGRenderer {
	return &PNGRenderer{
		Store:     newStore(),
		outputDir: outputDir,
		log:       logger.GetGlobalLogger().WithComponent("render"),
	}
}

// Render draws v and stores the image under its anchor
func (p *PNGRenderer) Render(v charts.View) error {
	var buf bytes.Buffer
	var err error

	switch v.Kind {
	case "pie", "sunburst":
		err = p.renderPie(v, &buf)
	case "row", "select":
		err = p.renderBars(v, &buf)
	case "bar", "line":
		err = p.renderGrid(v, &buf)
	case "heatmap":
		err = p.renderHeatMap(v, &buf)
	default:
		return fmt.Errorf("chart %s: no PNG renderer for kind %q", v.Anchor, v.Kind)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s chart %s: %w", v.Kind, v.Anchor, err)
	}

	p.put(v.Anchor, buf.Bytes())

	if p.outputDir != "" {
		filename := filepath.Join(p.outputDir, v.Anchor+".png")
		if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write chart file %s: %w", filename, err)
		}
		p.log.Debug("chart written", logger.Fields{"file": filename, "bytes": buf.Len()})
	}
	return nil
}

func rowColor(v charts.View, i int, row capping.Row) drawing.Color {
	if !v.Selected(row) {
		return dimmedColor
	}
	return chart.GetDefaultColor(i)
}

func (p *PNGRenderer) renderPie(v charts.View, buf *bytes.Buffer) error {
	var slices []chart.Value
	for i, row := range v.Rows {
		if row.Value <= 0 {
			continue
		}
		c := rowColor(v, i, row)
		slices = append(slices, chart.Value{
			Value: row.Value,
			Label: Label(row.Key),
			Style: chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
		})
	}
	if len(slices) == 0 {
		return renderEmpty(v, buf)
	}

	pie := chart.PieChart{
		Title:      title(v),
		TitleStyle: chart.Style{FontSize: 14, FontColor: drawing.ColorBlack},
		Width:      v.Width,
		Height:     v.Height,
		Values:     slices,
	}
	return pie.Render(chart.PNG, buf)
}

func (p *PNGRenderer) renderBars(v charts.View, buf *bytes.Buffer) error {
	if len(v.Rows) == 0 {
		return renderEmpty(v, buf)
	}

	lo, hi := 0.0, 1.0
	bars := make([]chart.Value, len(v.Rows))
	for i, row := range v.Rows {
		lo = math.Min(lo, row.Value)
		hi = math.Max(hi, row.Value)
		c := rowColor(v, 0, row)
		bars[i] = chart.Value{
			Value: row.Value,
			Label: Label(row.Key),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		}
	}

	plot := float64(v.Width - 80)
	barWidth := int(math.Max(4, plot/float64(len(bars))/1.5))
	graph := chart.BarChart{
		Title:      title(v),
		TitleStyle: chart.Style{FontSize: 14, FontColor: drawing.ColorBlack},
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Width:      v.Width,
		Height:     v.Height,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, buf)
}

// renderGrid draws bar and line charts on continuous axes, shading the brushed range
func (p *PNGRenderer) renderGrid(v charts.View, buf *bytes.Buffer) error {
	xr, ok := continuous(v.XDomain)
	if !ok {
		return renderEmpty(v, buf)
	}
	yr, ok := continuous(v.YDomain)
	if !ok {
		yr = &chart.ContinuousRange{Min: 0, Max: 1}
	}

	var xs, ys []float64
	var selected []bool
	for _, row := range v.Rows {
		x, ok := values.ToFloat(row.Key)
		if !ok {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, row.Value)
		selected = append(selected, v.Selected(row))
	}

	var series []chart.Series
	if v.Brush != nil {
		lo, ok1 := values.ToFloat(v.Brush.Low)
		hi, ok2 := values.ToFloat(v.Brush.High)
		if ok1 && ok2 {
			series = append(series, chart.ContinuousSeries{
				Name:    "brush",
				Style:   chart.Style{FillColor: brushColor, StrokeColor: brushColor},
				XValues: []float64{lo, hi},
				YValues: []float64{yr.Max, yr.Max},
			})
		}
	}

	if v.Kind == "bar" {
		series = append(series, barSeries{name: v.Anchor, xs: xs, ys: ys, selected: selected})
	} else if len(xs) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    v.Anchor,
			Style:   chart.Style{StrokeColor: lineColor, StrokeWidth: 2, DotColor: lineColor, DotWidth: 3},
			XValues: xs,
			YValues: ys,
		})
	}
	if len(series) == 0 {
		return renderEmpty(v, buf)
	}

	xAxis := chart.XAxis{Range: xr, Style: chart.Style{FontSize: 9}}
	if _, isTime := v.XDomain.Min.(time.Time); isTime {
		xAxis.ValueFormatter = func(val interface{}) string {
			if f, ok := val.(float64); ok {
				return time.UnixMilli(int64(f)).UTC().Format("01-02")
			}
			return ""
		}
	}

	graph := chart.Chart{
		Title:      title(v),
		TitleStyle: chart.Style{FontSize: 14, FontColor: drawing.ColorBlack},
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Width:      v.Width,
		Height:     v.Height,
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Range: yr, Style: chart.Style{FontSize: 9}},
		Series:     series,
	}
	return graph.Render(chart.PNG, buf)
}

func continuous(d *charts.Domain) (*chart.ContinuousRange, bool) {
	if d == nil {
		return nil, false
	}
	lo, ok1 := values.ToFloat(d.Min)
	hi, ok2 := values.ToFloat(d.Max)
	if !ok1 || !ok2 || hi <= lo {
		return nil, false
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}, true
}

// barSeries draws one rectangle per point, dimming points outside the active filters
type barSeries struct {
	name     string
	xs, ys   []float64
	selected []bool
}

func (bs barSeries) GetName() string           { return bs.name }
func (bs barSeries) GetStyle() chart.Style     { return chart.Style{} }
func (bs barSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (bs barSeries) Validate() error           { return nil }
func (bs barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	width := canvasBox.Width() / (len(bs.xs) + 1)
	if width < 2 {
		width = 2
	}
	for i, x := range bs.xs {
		cx := canvasBox.Left + xrange.Translate(x)
		y0 := canvasBox.Bottom - yrange.Translate(0)
		y1 := canvasBox.Bottom - yrange.Translate(bs.ys[i])
		color := lineColor
		if !bs.selected[i] {
			color = dimmedColor
		}
		r.SetFillColor(color)
		r.MoveTo(cx-width/2, y0)
		r.LineTo(cx+width/2, y0)
		r.LineTo(cx+width/2, y1)
		r.LineTo(cx-width/2, y1)
		r.Close()
		r.Fill()
	}
}

// heatmapCell is one matrix cell
type heatmapCell struct {
	x, y  float64
	color drawing.Color
}

// heatmapSeries renders a grid of filled cells
type heatmapSeries struct {
	Cells []heatmapCell
}

func (hs heatmapSeries) GetName() string           { return "heatmap" }
func (hs heatmapSeries) GetStyle() chart.Style     { return chart.Style{} }
func (hs heatmapSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (hs heatmapSeries) Validate() error           { return nil }
func (hs heatmapSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	for _, c := range hs.Cells {
		x0 := canvasBox.Left + xrange.Translate(c.x-0.5)
		x1 := canvasBox.Left + xrange.Translate(c.x+0.5)
		y0 := canvasBox.Bottom - yrange.Translate(c.y-0.5)
		y1 := canvasBox.Bottom - yrange.Translate(c.y+0.5)
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		// small gutters so cells don't touch
		if x1-x0 > 4 {
			x0, x1 = x0+1, x1-1
		}
		if y1-y0 > 4 {
			y0, y1 = y0+1, y1-1
		}
		r.SetFillColor(c.color)
		r.MoveTo(x0, y0)
		r.LineTo(x1, y0)
		r.LineTo(x1, y1)
		r.LineTo(x0, y1)
		r.Close()
		r.Fill()
	}
}

// heatColor shades from pale to saturated blue by t in [0, 1]
func heatColor(t float64) drawing.Color {
	t = math.Max(0, math.Min(1, t))
	return drawing.Color{
		R: uint8(224 - 180*t),
		G: uint8(236 - 150*t),
		B: uint8(244 - 60*t),
		A: 255,
	}
}

func (p *PNGRenderer) renderHeatMap(v charts.View, buf *bytes.Buffer) error {
	xIndex, yIndex := map[string]int{}, map[string]int{}
	var xTicks, yTicks []chart.Tick
	maxValue := 0.0

	type point struct {
		x, y int
		row  capping.Row
	}
	var points []point
	for _, row := range v.Rows {
		x, y, ok := values.Pair(row.Key)
		if !ok {
			continue
		}
		xl, yl := Label(x), Label(y)
		if _, ok := xIndex[xl]; !ok {
			xIndex[xl] = len(xTicks)
			xTicks = append(xTicks, chart.Tick{Value: float64(len(xTicks)), Label: xl})
		}
		if _, ok := yIndex[yl]; !ok {
			yIndex[yl] = len(yTicks)
			yTicks = append(yTicks, chart.Tick{Value: float64(len(yTicks)), Label: yl})
		}
		maxValue = math.Max(maxValue, row.Value)
		points = append(points, point{x: xIndex[xl], y: yIndex[yl], row: row})
	}
	if len(points) == 0 {
		return renderEmpty(v, buf)
	}

	cells := make([]heatmapCell, len(points))
	for i, pt := range points {
		color := dimmedColor
		if v.Selected(pt.row) {
			t := 0.0
			if maxValue > 0 {
				t = pt.row.Value / maxValue
			}
			color = heatColor(t)
		}
		cells[i] = heatmapCell{x: float64(pt.x), y: float64(pt.y), color: color}
	}

	graph := chart.Chart{
		Title:      title(v),
		TitleStyle: chart.Style{FontSize: 14, FontColor: drawing.ColorBlack},
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Width:      v.Width,
		Height:     v.Height,
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(xTicks)) - 0.5},
			Ticks: xTicks,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(yTicks)) - 0.5},
			Ticks: yTicks,
		},
		Series: []chart.Series{heatmapSeries{Cells: cells}},
	}
	return graph.Render(chart.PNG, buf)
}

// renderEmpty draws an empty frame for views without drawable rows
func renderEmpty(v charts.View, buf *bytes.Buffer) error {
	graph := chart.Chart{
		Title:      title(v) + " (no data)",
		TitleStyle: chart.Style{FontSize: 14, FontColor: drawing.ColorBlack},
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Width:      v.Width,
		Height:     v.Height,
		XAxis:      chart.XAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Series: []chart.Series{chart.ContinuousSeries{
			Style:   chart.Style{StrokeColor: dimmedColor, StrokeWidth: 1},
			XValues: []float64{0, 1},
			YValues: []float64{0, 0},
		}},
	}
	return graph.Render(chart.PNG, buf)
}
