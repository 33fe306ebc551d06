// Package tsio loads univariate time series from CSV files. Adapted from
// ../io.go's LoadCSVToTimeSeries: same header-plus-rows convention and
// error-wrapping style, retargeted from a multivariate VAR matrix onto a
// single series.TimeSeries.
package tsio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"tsforecast/series"
)

// LoadCSV reads a CSV file whose first row is a header and whose
// valueColumn names the column to load as the series values. If
// valueColumn is empty, the second column is used (the first is assumed to
// be a date/index column, skipped), or the only column when the header has
// just one. Timestamps are always the row numbers 0,1,2,...; no column is
// parsed as a timestamp.
func LoadCSV(path string, valueColumn string) (*series.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("empty header in %s", path)
	}

	valueIdx := 1
	if len(header) == 1 {
		valueIdx = 0
	}
	if valueColumn != "" {
		found := false
		for i, name := range header {
			if name == valueColumn {
				valueIdx = i
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("column %q not found in %s header %v", valueColumn, path, header)
		}
	}

	builder := series.NewBuilder(true)
	row := 0
	for {
		record, readErr := r.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read row %d: %w", row+2, readErr)
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		if valueIdx >= len(record) {
			return nil, fmt.Errorf("row %d: expected at least %d columns, got %d", row+2, valueIdx+1, len(record))
		}

		v, parseErr := strconv.ParseFloat(record[valueIdx], 64)
		if parseErr != nil {
			return nil, fmt.Errorf("parse float at row %d col %d (%q): %w", row+2, valueIdx+1, record[valueIdx], parseErr)
		}

		builder.Append(float64(row), v)
		row++
	}

	if row == 0 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	ts, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build time series from %s: %w", path, err)
	}
	return ts, nil
}
