package tabular

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"adoptdash/domain/adoption"
	"adoptdash/domain/core"
	"adoptdash/internal"
	"adoptdash/internal/errors"
)

// missingTokens are cell values read as a missing number.
var missingTokens = map[string]bool{
	"": true, "na": true, "n/a": true, "nan": true, "null": true, "none": true, "-": true,
}

// DataReader turns CSV or XLSX bytes into an adoption dataset
type DataReader struct {
	cfg    Config
	logger *internal.Logger
}

// NewDataReader creates a reader. A nil logger falls back to the default one.
func NewDataReader(cfg Config, logger *internal.Logger) *DataReader {
	if cfg.Delimiter == 0 {
		cfg.Delimiter = ';'
	}
	if cfg.Decimal == 0 {
		cfg.Decimal = ','
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{cfg: cfg, logger: logger}
}

// Parse reads the content of name (used for format detection and error
// messages) into a Dataset whose identity derives from the content bytes.
func (r *DataReader) Parse(name string, data []byte) (*adoption.Dataset, error) {
	start := time.Now()
	table, err := r.ReadTable(name, data)
	if err != nil {
		return nil, err
	}
	rows, err := r.Observations(table)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}

	ds := adoption.NewDataset(rows, adoption.Meta{
		Source:      name,
		Hash:        core.NewHash(data),
		PeriodOrder: r.cfg.PeriodOrder,
	})
	r.logger.Info("[DataReader] %s parsed in %.2fms (%d rows, %d periods, %d technologies)",
		name, float64(time.Since(start).Nanoseconds())/1e6, ds.Len(), len(ds.Periods()), len(ds.Technologies()))
	return ds, nil
}

// ReadTable splits the content into headers and raw rows.
func (r *DataReader) ReadTable(name string, data []byte) (*Table, error) {
	switch format := r.cfg.formatFor(name); format {
	case "csv":
		return r.readCSVData(data)
	case "xlsx":
		return r.readExcelData(data)
	default:
		return nil, errors.DataFormat("unsupported file type: %s", format)
	}
}

// readExcelData reads the configured sheet, or the first one.
func (r *DataReader) readExcelData(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithCode(errors.CodeDataFormat, errors.Wrap(err, "failed to open Excel workbook"))
	}
	defer f.Close()

	sheet := r.cfg.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.DataFormat("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.WithCode(errors.CodeDataFormat, errors.Wrapf(err, "failed to read sheet %q", sheet))
	}
	r.logger.Debug("[DataReader] sheet %q read (%d rows)", sheet, len(rows))
	return r.processRows(rows)
}

// readCSVData decodes the configured character set and splits records.
func (r *DataReader) readCSVData(data []byte) (*Table, error) {
	src, err := r.decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(src)
	reader.Comma = r.cfg.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeDataFormat, errors.Wrap(err, "failed to read CSV"))
	}
	return r.processRows(rows)
}

func (r *DataReader) decode(src io.Reader) (io.Reader, error) {
	switch strings.ToLower(r.cfg.Encoding) {
	case "", "utf-8", "utf8":
		return src, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder().Reader(src), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(src), nil
	default:
		return nil, errors.InvalidInput("unsupported encoding: " + r.cfg.Encoding)
	}
}

// processRows converts raw string rows into a Table. Blank lines are skipped.
func (r *DataReader) processRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.DataFormat("file has no header row")
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		header = strings.TrimSpace(header)
		if i == 0 {
			header = strings.TrimPrefix(header, "\ufeff")
		}
		headers[i] = header
	}

	var dataRows []RawRowData
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &Table{Headers: headers, Rows: dataRows}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Observations types a Table. Every adoption column must be present; extra
// columns are ignored. Missing numeric cells become NaN.
func (r *DataReader) Observations(table *Table) ([]adoption.Observation, error) {
	if err := checkColumns(table.Headers); err != nil {
		return nil, err
	}

	out := make([]adoption.Observation, 0, len(table.Rows))
	for i, row := range table.Rows {
		line := i + 2 // 1-based, after the header
		o := adoption.Observation{
			Period:     row[adoption.PeriodColumn],
			Technology: row[adoption.TechnologyColumn],
		}
		if o.Period == "" || o.Technology == "" {
			return nil, errors.DataFormat("row %d: %s and %s are required", line, adoption.PeriodColumn, adoption.TechnologyColumn)
		}

		for _, attr := range adoption.NumericAttributes {
			v, err := r.parseNumber(row[string(attr)])
			if err != nil {
				return nil, errors.DataFormat("row %d, column %s: %v", line, attr, err)
			}
			if attr.IsInteger() && !math.IsNaN(v) && v != math.Trunc(v) {
				return nil, errors.DataFormat("row %d, column %s: %v is not a whole number", line, attr, v)
			}
			_ = o.Set(attr, v)
		}
		if rate := o.AdoptionRatePercent; rate < 0 || rate > 100 {
			r.logger.Warn("[DataReader] row %d: adoption rate %.2f outside [0,100]", line, rate)
		}
		out = append(out, o)
	}
	return out, nil
}

func checkColumns(headers []string) error {
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[h] = true
	}
	var missing []string
	for _, col := range append([]string{adoption.PeriodColumn, adoption.TechnologyColumn}, attributeColumns()...) {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.DataFormat("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func attributeColumns() []string {
	cols := make([]string, len(adoption.NumericAttributes))
	for i, a := range adoption.NumericAttributes {
		cols[i] = string(a)
	}
	return cols
}

// parseNumber reads a cell with the configured decimal separator. Cells
// written with '.' (XLSX raw values) are accepted as well. Thousands
// separators and infinities are not.
func (r *DataReader) parseNumber(cell string) (float64, error) {
	if missingTokens[strings.ToLower(cell)] {
		return math.NaN(), nil
	}
	if r.cfg.Decimal != '.' {
		dec := string(r.cfg.Decimal)
		switch {
		case strings.Contains(cell, dec) && strings.Contains(cell, "."):
			return 0, errors.DataFormat("ambiguous number %q", cell)
		case strings.Contains(cell, dec):
			cell = strings.Replace(cell, dec, ".", 1)
		}
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, errors.DataFormat("invalid number %q", cell)
	}
	if math.IsInf(v, 0) {
		return 0, errors.DataFormat("non-finite number %q", cell)
	}
	return v, nil
}
