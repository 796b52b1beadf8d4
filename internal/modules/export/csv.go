// Package export serializes simulation runs for download and pushes them to
// an S3-compatible object store.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVHeader is the single column written by WriteCSV
const CSVHeader = "Annual Loss"

// WriteCSV writes series as a one-column table headed "Annual Loss" with one
// row per simulated year in simulation order. No index column is written.
func WriteCSV(w io.Writer, series []float64) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{CSVHeader}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	row := make([]string, 1)
	for _, v := range series {
		row[0] = strconv.FormatFloat(v, 'f', -1, 64)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// ReadCSV parses a table produced by WriteCSV back into a series
func ReadCSV(r io.Reader) ([]float64, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 || len(records[0]) != 1 || records[0][0] != CSVHeader {
		return nil, fmt.Errorf("unexpected csv header, want %q", CSVHeader)
	}

	series := make([]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		v, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		series = append(series, v)
	}
	return series, nil
}
