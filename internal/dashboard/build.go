package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"chartsync/internal/charts"
	"chartsync/internal/crossfilter"
	"chartsync/internal/crossfilter/remote"
	"chartsync/internal/filters"
	"chartsync/internal/models"
	"chartsync/internal/values"
)

// builder turns chart specs into charts wired to the engine
type builder struct {
	d        *Dashboard
	remote   *remote.Engine
	renderer charts.Renderer
	grids    map[string]*charts.CoordinateGridChart
}

func (b *builder) build() error {
	b.grids = make(map[string]*charts.CoordinateGridChart)
	for _, spec := range b.d.layout.Charts {
		c, err := b.chart(spec)
		if err != nil {
			return fmt.Errorf("chart %s: %w", spec.Anchor, err)
		}
		b.d.charts[spec.Anchor] = c
		b.d.order = append(b.d.order, spec.Anchor)
	}

	for _, spec := range b.d.layout.Charts {
		if spec.RangeChartFor == "" {
			continue
		}
		focus, ok := b.grids[spec.RangeChartFor]
		if !ok {
			return fmt.Errorf("chart %s: range chart target %s is not a grid chart", spec.Anchor, spec.RangeChartFor)
		}
		focus.SetRangeChart(b.grids[spec.Anchor])
	}
	return nil
}

func (b *builder) chart(spec models.ChartSpec) (Chart, error) {
	dim, group, err := b.source(spec)
	if err != nil {
		return nil, err
	}
	opts := charts.Options{
		Anchor:     spec.Anchor,
		ChartGroup: spec.Group,
		Title:      spec.Title,
		Width:      spec.Width,
		Height:     spec.Height,
		Dimension:  dim,
		Group:      group,
		Registry:   b.d.registry,
		Events:     b.d.events,
		EventDelay: b.d.delay,
		Renderer:   b.renderer,
	}

	switch spec.Kind {
	case models.KindPie:
		c := charts.NewPieChart(opts)
		b.capped(c.CapChart, spec)
		return c, nil
	case models.KindRow:
		c := charts.NewRowChart(opts)
		b.capped(c.CapChart, spec)
		return c, nil
	case models.KindSunburst:
		c := charts.NewSunburstChart(opts)
		b.capped(c.CapChart, spec)
		return c, nil
	case models.KindBar:
		c := charts.NewBarChart(opts)
		b.grid(c.CoordinateGridChart, spec)
		return c, nil
	case models.KindLine:
		c := charts.NewLineChart(opts)
		b.grid(c.CoordinateGridChart, spec)
		return c, nil
	case models.KindHeatMap:
		return charts.NewHeatMap(opts), nil
	case models.KindSelect:
		c := charts.NewSelectMenu(opts)
		c.Multiple = spec.Multiple
		return c, nil
	}
	return nil, fmt.Errorf("unknown kind %q", spec.Kind)
}

// source creates the dimension and group a chart reads from
func (b *builder) source(spec models.ChartSpec) (filters.Dimension, crossfilter.Group, error) {
	fields := spec.KeyFields()
	if b.remote != nil {
		name := strings.Join(fields, ",")
		return b.remote.Dimension(name), b.remote.Group(name, spec.Anchor), nil
	}

	dim := b.d.cf.Dimension(keyFunc(fields))
	group := dim.Group()
	if spec.Bin > 0 {
		group = dim.GroupBy(binFunc(spec.Bin))
	}
	switch spec.Reduce {
	case models.ReduceSum:
		group.ReduceSumField(spec.ValueField)
	default:
		group.ReduceCount()
	}
	return dim, group, nil
}

func (b *builder) capped(c *charts.CapChart, spec models.ChartSpec) {
	if spec.Cap > 0 {
		c.SetCap(spec.Cap)
	}
	if spec.OthersLabel != "" {
		c.SetOthersLabel(spec.OthersLabel)
	}
}

func (b *builder) grid(c *charts.CoordinateGridChart, spec models.ChartSpec) {
	if spec.XMin != nil && spec.XMax != nil {
		c.SetX(*spec.XMin, *spec.XMax)
	}
	// without a fixed domain the x axis follows the data
	c.ElasticX = spec.ElasticX || spec.XMin == nil || spec.XMax == nil
	c.ElasticY = spec.ElasticY
	if spec.Round > 0 {
		c.Round = charts.RoundTo(spec.Round)
	}
	c.CenterBar = spec.CenterBar
	c.AlwaysUseRounding = spec.AlwaysUseRounding
	b.grids[spec.Anchor] = c
}

// keyFunc projects a record onto one field, or onto a path of several fields
func keyFunc(fields []string) func(crossfilter.Record) any {
	if len(fields) == 1 {
		field := fields[0]
		return func(r crossfilter.Record) any { return r[field] }
	}
	return func(r crossfilter.Record) any {
		key := make([]any, len(fields))
		for i, f := range fields {
			key[i] = r[f]
		}
		return key
	}
}

// binFunc floors numeric keys to multiples of width. Time keys are truncated to width
// seconds.
func binFunc(width float64) func(any) any {
	return func(k any) any {
		if t, ok := k.(time.Time); ok {
			return t.Truncate(time.Duration(width * float64(time.Second)))
		}
		if f, ok := values.ToFloat(k); ok {
			return math.Floor(f/width) * width
		}
		return k
	}
}
