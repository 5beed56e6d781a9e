// Command render-dashboard draws every chart of a layout over a CSV file into PNG images,
// optionally with filters applied first.
//
//	render-dashboard -layout layout.json -csv payments.csv -out charts \
//	    -filter 'type={"type":"exact","value":"tab"}' \
//	    -filter 'total=[{"type":"ranged","low":100,"high":200}]'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"chartsync/internal/dashboard"
	"chartsync/internal/datasource"
	"chartsync/internal/filters"
	"chartsync/internal/logger"
	"chartsync/internal/models"
	"chartsync/internal/render"
)

// filterFlag collects repeated -filter anchor=json values
type filterFlag map[string][]filters.Filter

func (f filterFlag) String() string {
	parts := make([]string, 0, len(f))
	for anchor, fs := range f {
		parts = append(parts, fmt.Sprintf("%s=%d", anchor, len(fs)))
	}
	return strings.Join(parts, ",")
}

// Set parses anchor=json where json is one filter or an array of them
func (f filterFlag) Set(value string) error {
	anchor, raw, ok := strings.Cut(value, "=")
	if !ok || anchor == "" {
		return fmt.Errorf("expected anchor=json, got %q", value)
	}

	var wires []filters.Wire
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &wires); err != nil {
			return fmt.Errorf("filter for %s: %w", anchor, err)
		}
	} else {
		var w filters.Wire
		if err := json.Unmarshal([]byte(raw), &w); err != nil {
			return fmt.Errorf("filter for %s: %w", anchor, err)
		}
		wires = []filters.Wire{w}
	}

	fs, err := filters.FromWires(wires)
	if err != nil {
		return fmt.Errorf("filter for %s: %w", anchor, err)
	}
	f[anchor] = append(f[anchor], fs...)
	return nil
}

func run(ctx context.Context, layoutPath, csvPath, outDir string, fs filterFlag) error {
	layout, err := models.LoadLayout(layoutPath)
	if err != nil {
		return err
	}
	records, err := datasource.CSVSource{Path: csvPath}.Load(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	images := render.NewPNGRenderer(outDir)
	d, err := dashboard.New(dashboard.Options{Layout: layout, Records: records, Renderer: images})
	if err != nil {
		return err
	}
	defer d.Close()

	for anchor, chartFilters := range fs {
		if err := d.Filter(anchor, dashboard.FilterReplace, chartFilters...); err != nil {
			return err
		}
	}
	if err := d.Render(); err != nil {
		return err
	}

	logger.Info("Charts rendered", logger.Fields{
		"charts":  len(images.Anchors()),
		"records": d.Size(),
		"out":     outDir,
	})
	return nil
}

func main() {
	fs := filterFlag{}
	layoutPath := flag.String("layout", "layout.json", "dashboard layout JSON")
	csvPath := flag.String("csv", "", "CSV file with a header row")
	outDir := flag.String("out", "charts", "directory the PNG images are written to")
	flag.Var(fs, "filter", "anchor=json filter applied before drawing (repeatable)")
	flag.Parse()

	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "render-dashboard: -csv is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), *layoutPath, *csvPath, *outDir, fs); err != nil {
		logger.Fatal("Failed to render dashboard", err)
	}
}
