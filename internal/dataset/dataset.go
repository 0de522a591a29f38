// Package dataset loads and generates Ames-style house sales tables.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pricedash/adapters/excel"
	"pricedash/internal"
)

// Required columns.
const (
	PriceColumn        = "SalePrice"
	NeighborhoodColumn = "Neighborhood"
)

// Dataset is a sales table: one row per sold property, cells kept as text.
type Dataset struct {
	Headers []string
	Rows    []excel.RawRowData
}

// FromExcel validates a spreadsheet read by the excel adapter. Rows without a
// numeric sale price are dropped.
func FromExcel(data *excel.ExcelData) (*Dataset, error) {
	for _, col := range []string{PriceColumn, NeighborhoodColumn} {
		if !data.HasColumn(col) {
			return nil, fmt.Errorf("dataset is missing the %s column", col)
		}
	}
	rows := make([]excel.RawRowData, 0, len(data.Rows))
	for _, row := range data.Rows {
		if _, ok := parseFloat(row[PriceColumn]); ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset has no rows with a %s", PriceColumn)
	}
	return &Dataset{Headers: data.Headers, Rows: rows}, nil
}

// Load reads a CSV or XLSX sales file.
func Load(path string, logger *internal.Logger) (*Dataset, error) {
	reader := excel.NewDataReader(path)
	if logger != nil {
		reader = reader.WithLogger(logger)
	}
	data, err := reader.ReadData()
	if err != nil {
		return nil, err
	}
	return FromExcel(data)
}

// Len returns the number of sales.
func (d *Dataset) Len() int { return len(d.Rows) }

// HasColumn reports whether the table carries a column.
func (d *Dataset) HasColumn(col string) bool {
	for _, h := range d.Headers {
		if h == col {
			return true
		}
	}
	return false
}

// Prices returns the sale prices in row order.
func (d *Dataset) Prices() []float64 {
	return d.Numeric(PriceColumn)
}

// Neighborhoods returns the neighborhood of every row.
func (d *Dataset) Neighborhoods() []string {
	return d.Strings(NeighborhoodColumn)
}

// Numeric returns a column as floats; blank or non-numeric cells are NaN.
func (d *Dataset) Numeric(col string) []float64 {
	out := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		v, ok := parseFloat(row[col])
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// Strings returns a column as text.
func (d *Dataset) Strings(col string) []string {
	out := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[col]
	}
	return out
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NA") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
