package tabular

// RawRowData represents one data row as header -> trimmed cell text
type RawRowData map[string]string

// Table is a header row plus data rows, before any typing
type Table struct {
	Headers []string
	Rows    []RawRowData
}
