package app

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	maxCSVBytes  = 2 << 20
	maxCSVSample = 200
)

type csvTable struct {
	header    []string
	rows      int
	sample    string
	truncated bool
}

// parseCSV checks the data is rectangular with a non-empty header and at
// least one data row, and keeps a leading sample to send to the model.
func parseCSV(text string) (*csvTable, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidCSV)
	}
	if len(text) > maxCSVBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidCSV, maxCSVBytes)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if header[i] == "" {
			return nil, fmt.Errorf("%w: empty header in column %d", ErrInvalidCSV, i+1)
		}
	}

	var sample strings.Builder
	sw := csv.NewWriter(&sample)
	_ = sw.Write(header)

	table := &csvTable{header: header}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		table.rows++
		if table.rows <= maxCSVSample {
			_ = sw.Write(record)
		} else {
			table.truncated = true
		}
	}
	if table.rows == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrInvalidCSV)
	}
	sw.Flush()
	table.sample = strings.TrimRight(sample.String(), "\n")
	return table, nil
}
