package tabular

import (
	"path/filepath"
	"strings"
)

// Config holds configuration for delimited text and XLSX sources
type Config struct {
	// Format is "csv" or "xlsx". Empty means infer from the file extension.
	Format      string   `json:"format"`
	Delimiter   rune     `json:"delimiter"`
	Decimal     rune     `json:"decimal"`
	Encoding    string   `json:"encoding"`
	Sheet       string   `json:"sheet"`
	PeriodOrder []string `json:"period_order"`
}

// DefaultConfig matches the shipped dataset: semicolon separated, comma
// decimals, UTF-8.
func DefaultConfig() Config {
	return Config{
		Delimiter: ';',
		Decimal:   ',',
		Encoding:  "utf-8",
	}
}

// formatFor resolves the file format of name.
func (c Config) formatFor(name string) string {
	if c.Format != "" {
		return strings.ToLower(c.Format)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx":
		return "xlsx"
	default:
		return "csv"
	}
}
