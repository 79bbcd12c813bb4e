/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package mortalityreader reads mortality.Datasets from CSV.
package mortalityreader

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ilhamster/overdoseviz/overdoseviz/analysis/mortality"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/ilhamster/overdoseviz/overdoseviz/analysis/mortality_reader"

// Column names read from the CSV header.  Other columns are ignored.
const (
	PanelColumn     = "PANEL"
	StubLabelColumn = "STUB_LABEL"
	AgeColumn       = "AGE"
	YearColumn      = "YEAR"
	EstimateColumn  = "ESTIMATE"
)

var requiredColumns = []string{PanelColumn, StubLabelColumn, AgeColumn, YearColumn, EstimateColumn}

// ReaderCloser couples a buffered reader with the Closer, if any, that owns
// its underlying stream.
type ReaderCloser struct {
	*bufio.Reader
	io.Closer
}

// Close closes the receiver's Closer, if it has one.
func (r *ReaderCloser) Close() error {
	if r.Closer != nil {
		return r.Closer.Close()
	}
	return nil
}

// DatasetReader converts a CSV stream into a mortality.Dataset.
type DatasetReader struct {
	name   string
	reader ReaderCloser
}

// New returns a new DatasetReader reading the named dataset from the provided
// reader.
func New(name string, reader ReaderCloser) *DatasetReader {
	return &DatasetReader{
		name:   name,
		reader: reader,
	}
}

// ReadDataset consumes the receiver's reader and returns the Dataset it
// holds.  Rows may be ragged; missing cells read as empty.  A missing
// required column is logged, and its values read as "" (or NaN for numeric
// columns).  Malformed CSV is an error.  The underlying reader is closed
// before ReadDataset returns, so ReadDataset may only be called once.
func (dr *DatasetReader) ReadDataset() (*mortality.Dataset, error) {
	defer dr.reader.Close()
	cr := csv.NewReader(dr.reader.Reader)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err == io.EOF {
		return mortality.New(dr.name, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of '%s': %w", dr.name, err)
	}
	columns := make([]string, len(header))
	colIdx := map[string]int{}
	for idx, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		columns[idx] = col
		if _, ok := colIdx[col]; !ok {
			colIdx[col] = idx
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		log.Printf("Dataset '%s' lacks columns [%s]", dr.name, strings.Join(missing, ", "))
	}
	// field returns the named cell of row, with present == false if the
	// column is absent from the header or the row.
	field := func(row []string, col string) (value string, present bool) {
		idx, ok := colIdx[col]
		if !ok || idx >= len(row) {
			return "", false
		}
		return row[idx], true
	}
	number := func(row []string, col string) float64 {
		value, ok := field(row, col)
		if !ok {
			return math.NaN()
		}
		return Coerce(value)
	}
	records := []*mortality.Record{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read '%s': %w", dr.name, err)
		}
		panel, _ := field(row, PanelColumn)
		stubLabel, _ := field(row, StubLabelColumn)
		age, _ := field(row, AgeColumn)
		records = append(records, &mortality.Record{
			Panel:     panel,
			StubLabel: stubLabel,
			Age:       age,
			Year:      number(row, YearColumn),
			Estimate:  number(row, EstimateColumn),
		})
	}
	return mortality.New(dr.name, columns, records...), nil
}

// Coerce converts numeric text as a browser's unary plus would: surrounding
// whitespace is ignored, empty text is 0, decimal, exponent, and 0x/0o/0b
// prefixed forms and "Infinity" are accepted, and anything else is NaN.
func Coerce(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			v, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil || strings.Contains(s, "_") {
				return math.NaN()
			}
			return float64(v)
		}
	}
	// ParseFloat is more permissive than unary plus in a few spellings.
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") ||
		strings.Contains(lower, "x") || strings.Contains(s, "_") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out-of-range values still parse to ±Inf.
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return v
		}
		return math.NaN()
	}
	return v
}

// Open reads the named dataset from a file directly under root.  The name
// must not contain path separators.
func Open(ctx context.Context, root, name string) (*mortality.Dataset, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "Open")
	defer span.End()
	span.SetAttributes(attribute.String("overdoseviz.collection", name))
	ds, err := open(root, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("overdoseviz.records", ds.Len()))
	return ds, nil
}

func open(root, name string) (*mortality.Dataset, error) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid dataset name '%s'", name)
	}
	file, err := os.Open(filepath.Join(root, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	return New(name, ReaderCloser{
		Reader: bufio.NewReader(file),
		Closer: file,
	}).ReadDataset()
}
