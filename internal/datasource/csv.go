// Package datasource loads dashboard records from CSV files and RSS/Atom feeds.
package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"chartsync/internal/crossfilter"
)

// Source produces the records a dashboard is built over
type Source interface {
	Load(ctx context.Context) ([]crossfilter.Record, error)
}

// timeLayouts are tried in order when a CSV cell is not numeric
var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02"}

// CSVSource reads records from a CSV file with a header row
type CSVSource struct {
	Path  string
	Comma rune
}

// Load opens the file and parses it
func (s CSVSource) Load(ctx context.Context) ([]crossfilter.Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	records, err := ReadCSV(f, s.Comma)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return records, nil
}

// ReadCSV parses CSV with a header row. Numeric cells become float64, date cells become
// time.Time and everything else stays a trimmed string. comma 0 means ','.
func ReadCSV(r io.Reader, comma rune) ([]crossfilter.Record, error) {
	reader := csv.NewReader(r)
	if comma != 0 {
		reader.Comma = comma
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []crossfilter.Record
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(records)+2, err)
		}
		rec := make(crossfilter.Record, len(header))
		for i, name := range header {
			if i < len(fields) {
				rec[name] = ParseCell(fields[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseCell converts one cell to the most specific comparable value
func ParseCell(cell string) any {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return ""
	}
	// NaN and Inf stay strings; as numbers they would not order or match sensibly
	if f, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t
		}
	}
	return cell
}
