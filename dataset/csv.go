package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/warriorguo/reteflow/types"
)

/**
 * CSVSource holds one parsed tabular dataset: the header in file
 * order and one typed Row per data record.
 */
type CSVSource struct {
	columns []string
	rows    []types.Row
}

var _ types.RowSource = &CSVSource{}

func (s *CSVSource) Columns() []string {
	columns := make([]string, len(s.columns))
	copy(columns, s.columns)
	return columns
}

func (s *CSVSource) Rows() ([]types.Row, error) {
	return s.rows, nil
}

/**
 * ReadCSV parses tabular data from r. The first record is the
 * header, trimmed and stripped of a UTF-8 BOM. Every later record
 * becomes one Row typed per TypeValue, with short records leaving
 * their missing columns nil and surplus cells dropped.
 */
func ReadCSV(r io.Reader) (*CSVSource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Errorf("csv data is empty")
	}
	if err != nil {
		return nil, errors.Annotatef(err, "read csv header")
	}

	columns := make([]string, 0, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF")
		}
		columns = append(columns, strings.TrimSpace(name))
	}

	var rows []types.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// header is line 1, so the first data record reports as line 2
			return nil, errors.Annotatef(err, "read csv line %d", len(rows)+2)
		}

		row := make(types.Row, len(columns))
		for i, name := range columns {
			if i < len(record) {
				row[name] = TypeValue(record[i])
			} else {
				row[name] = nil
			}
		}
		rows = append(rows, row)
	}

	return &CSVSource{columns: columns, rows: rows}, nil
}

/**
 * OpenCSV reads one CSV file from disk.
 */
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()

	source, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Annotatef(err, "load %s", path)
	}
	return source, nil
}

/**
 * TypeValue applies the loader's typing policy to a raw cell. Blank
 * cells become nil, the literals true and false become booleans in
 * any casing, numeric text becomes float64 and anything else stays a
 * trimmed string.
 */
func TypeValue(raw string) any {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

/**
 * WriteCSV emits rows under the given column order. Values print in
 * the loader's own notation so a written file reads back unchanged:
 * nil as blank, booleans lowercased, floats without padding zeros.
 */
func WriteCSV(w io.Writer, columns []string, rows []types.Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return errors.Trace(err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, name := range columns {
			record[i] = formatValue(row[name])
		}
		if err := writer.Write(record); err != nil {
			return errors.Trace(err)
		}
	}

	writer.Flush()
	return errors.Trace(writer.Error())
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	}
	return fmt.Sprintf("%v", value)
}

/**
 * CSVSink writes processed rows to one file, creating the parent
 * directory when needed.
 */
type CSVSink struct {
	path string
}

var _ types.RowSink = &CSVSink{}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Write(columns []string, rows []types.Row) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Trace(err)
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return errors.Trace(err)
	}
	if err := WriteCSV(f, columns, rows); err != nil {
		f.Close()
		return errors.Annotatef(err, "write %s", s.path)
	}
	return errors.Trace(f.Close())
}
