// Package export writes tabular records as CSV, JSON or XLSX downloads.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"pricedash/domain/core"
	"pricedash/domain/housing"
)

// Record is one exported row keyed by column name.
type Record map[string]any

// Format names a download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat accepts csv, json or xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Write dispatches on format.
func Write(w io.Writer, f Format, headers []string, records []Record) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, headers, records)
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatXLSX:
		return WriteXLSX(w, headers, records)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteCSV writes a header line then one line per record, columns in header order.
// Values containing separators or quotes are quoted.
func WriteCSV(w io.Writer, headers []string, records []Record) error {
	if len(records) == 0 {
		return core.ErrEmptyData
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	line := make([]string, len(headers))
	for _, rec := range records {
		for i, h := range headers {
			line[i] = cell(rec[h])
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the records as an indented JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteXLSX writes a single-sheet workbook with a header row.
func WriteXLSX(w io.Writer, headers []string, records []Record) error {
	if len(records) == 0 {
		return core.ErrEmptyData
	}
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for r, rec := range records {
		row := make([]interface{}, len(headers))
		for i, h := range headers {
			row[i] = rec[h]
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

// NeighborhoodHeaders is the column order of neighborhood exports.
var NeighborhoodHeaders = []string{"Neighborhood", "avg_price", "median_price", "min_price", "max_price", "property_count", "segment"}

// NeighborhoodRecords converts neighborhood statistics into export records.
func NeighborhoodRecords(stats []housing.NeighborhoodStats) []Record {
	records := make([]Record, 0, len(stats))
	for _, s := range stats {
		records = append(records, Record{
			"Neighborhood":   s.Neighborhood,
			"avg_price":      s.AvgPrice,
			"median_price":   s.MedianPrice,
			"min_price":      s.MinPrice,
			"max_price":      s.MaxPrice,
			"property_count": s.PropertyCount,
			"segment":        s.Segment(),
		})
	}
	return records
}
