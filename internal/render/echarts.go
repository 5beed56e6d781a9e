package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	chartviews "chartsync/internal/charts"
	"chartsync/internal/filters"
	"chartsync/internal/values"
)

const dimmedHex = "#cccccc"

// EChartsRenderer draws views as self-contained interactive HTML pages
type EChartsRenderer struct {
	*Store
	theme string
}

// NewEChartsRenderer creates an HTML renderer using the westeros theme
func NewEChartsRenderer() *EChartsRenderer {
	return &EChartsRenderer{Store: newStore(), theme: types.ThemeWesteros}
}

// Render draws v and stores the HTML under its anchor
func (e *EChartsRenderer) Render(v chartviews.View) error {
	var buf bytes.Buffer
	var err error

	switch v.Kind {
	case "pie", "sunburst":
		err = e.pie(v).Render(&buf)
	case "row", "select", "bar":
		err = e.bar(v).Render(&buf)
	case "line":
		err = e.line(v).Render(&buf)
	case "heatmap":
		err = e.heatmap(v).Render(&buf)
	default:
		return fmt.Errorf("chart %s: no HTML renderer for kind %q", v.Anchor, v.Kind)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s chart %s: %w", v.Kind, v.Anchor, err)
	}

	e.put(v.Anchor, buf.Bytes())
	return nil
}

func (e *EChartsRenderer) globalOptions(v chartviews.View) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Theme:   e.theme,
			Width:   fmt.Sprintf("%dpx", v.Width),
			Height:  fmt.Sprintf("%dpx", v.Height),
			ChartID: v.Anchor,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title(v),
			Subtitle: FilterSummary(v.Filters),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	}
}

func (e *EChartsRenderer) pie(v chartviews.View) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(append(e.globalOptions(v), charts.WithLegendOpts(opts.Legend{Show: true}))...)

	data := make([]opts.PieData, 0, len(v.Rows))
	for _, row := range v.Rows {
		d := opts.PieData{Name: Label(row.Key), Value: row.Value}
		if !v.Selected(row) {
			d.ItemStyle = &opts.ItemStyle{Color: dimmedHex}
		}
		data = append(data, d)
	}
	pie.AddSeries(v.Anchor, data)
	return pie
}

func (e *EChartsRenderer) bar(v chartviews.View) *charts.Bar {
	bar := charts.NewBar()
	global := e.globalOptions(v)
	if v.YDomain != nil {
		global = append(global, charts.WithYAxisOpts(opts.YAxis{Min: v.YDomain.Min, Max: v.YDomain.Max}))
	}
	bar.SetGlobalOptions(global...)

	labels := make([]string, len(v.Rows))
	data := make([]opts.BarData, len(v.Rows))
	for i, row := range v.Rows {
		labels[i] = Label(row.Key)
		data[i] = opts.BarData{Value: row.Value}
		if !v.Selected(row) {
			data[i].ItemStyle = &opts.ItemStyle{Color: dimmedHex}
		}
	}
	bar.SetXAxis(labels).AddSeries(v.Anchor, data)
	if v.Kind == "row" {
		bar.XYReversal()
	}
	return bar
}

func (e *EChartsRenderer) line(v chartviews.View) *charts.Line {
	line := charts.NewLine()
	global := e.globalOptions(v)
	if v.YDomain != nil {
		global = append(global, charts.WithYAxisOpts(opts.YAxis{Min: v.YDomain.Min, Max: v.YDomain.Max}))
	}
	line.SetGlobalOptions(global...)

	labels := make([]string, len(v.Rows))
	data := make([]opts.LineData, len(v.Rows))
	for i, row := range v.Rows {
		labels[i] = Label(row.Key)
		data[i] = opts.LineData{Value: row.Value}
	}
	line.SetXAxis(labels).
		AddSeries(v.Anchor, data).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: true}))
	return line
}

func (e *EChartsRenderer) heatmap(v chartviews.View) *charts.HeatMap {
	var xs, ys []string
	xIndex, yIndex := map[string]int{}, map[string]int{}
	var data []opts.HeatMapData
	maxValue := 0.0

	for _, row := range v.Rows {
		x, y, ok := values.Pair(row.Key)
		if !ok {
			continue
		}
		xl, yl := Label(x), Label(y)
		if _, ok := xIndex[xl]; !ok {
			xIndex[xl] = len(xs)
			xs = append(xs, xl)
		}
		if _, ok := yIndex[yl]; !ok {
			yIndex[yl] = len(ys)
			ys = append(ys, yl)
		}
		if row.Value > maxValue {
			maxValue = row.Value
		}
		data = append(data, opts.HeatMapData{Value: [3]interface{}{xIndex[xl], yIndex[yl], row.Value}})
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(append(e.globalOptions(v),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xs}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        0,
			Max:        float32(maxValue),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#e0f3f8", "#abd9e9", "#74add1", "#4575b4", "#313695"},
			},
		}),
	)...)
	hm.AddSeries(v.Anchor, data)
	return hm
}

// FilterSummary describes active filters for subtitles and captions
func FilterSummary(fs []filters.Filter) string {
	if len(fs) == 0 {
		return ""
	}
	parts := make([]string, len(fs))
	for i, f := range fs {
		switch p := f.(type) {
		case filters.Exact:
			parts[i] = Label(p.Value)
		case filters.Ranged:
			parts[i] = fmt.Sprintf("[%s, %s)", Label(p.Low), Label(p.High))
		case filters.TwoDimensional:
			parts[i] = fmt.Sprintf("(%s, %s)", Label(p.X), Label(p.Y))
		case filters.Hierarchy:
			parts[i] = Label(p.Path)
		default:
			parts[i] = f.Kind().String()
		}
	}
	return "Filtered: " + strings.Join(parts, ", ")
}
