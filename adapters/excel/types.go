package excel

// RawRowData represents a row of raw spreadsheet data as header -> cell pairs
type RawRowData map[string]string

// ExcelData represents a complete tabular dataset
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Column returns every value of one column in row order
func (d *ExcelData) Column(header string) []string {
	values := make([]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		values = append(values, row[header])
	}
	return values
}

// HasColumn reports whether the header row names the column
func (d *ExcelData) HasColumn(header string) bool {
	for _, h := range d.Headers {
		if h == header {
			return true
		}
	}
	return false
}
