package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmptyInput is returned when the input has no header row.
var ErrEmptyInput = eris.New("table: input has no header row")

// ReadOptions configures the CSV and XLSX readers.
type ReadOptions struct {
	Delimiter rune   // CSV only, default ','
	Encoding  string // CSV only, e.g. "latin1"; default UTF-8 with optional BOM
	Sheet     string // XLSX only, default first sheet
	TrimSpace bool   // trim header names and cells
}

// ReadFile reads a table from disk, choosing the format from the extension.
func ReadFile(path string, opts ReadOptions) (*Table, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, eris.Wrap(err, "table: open file")
	}
	defer f.Close() //nolint:errcheck
	return Read(filepath.Base(path), f, opts)
}

// Read reads a table from r. name is used only to pick the format.
func Read(name string, r io.Reader, opts ReadOptions) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrap(err, "table: read xlsx")
		}
		return ReadXLSX(data, opts)
	case ".csv", ".txt":
		return ReadCSV(r, opts)
	case "":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrap(err, "table: read input")
		}
		if sniffXLSX(data) {
			return ReadXLSX(data, opts)
		}
		return ReadCSV(bytes.NewReader(data), opts)
	default:
		return nil, eris.Errorf("table: unsupported file type %q", filepath.Ext(name))
	}
}

// ReadCSV reads a CSV stream whose first record is the header. Every cell is
// kept as text; short records are padded with missing values.
func ReadCSV(r io.Reader, opts ReadOptions) (*Table, error) {
	decoded, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, eris.Wrap(err, "table: read csv header")
	}

	t, err := New(cleanHeader(header, opts.TrimSpace))
	if err != nil {
		return nil, err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "table: read csv row")
		}
		if err := t.AppendRow(textRow(record, opts.TrimSpace)); err != nil {
			line, _ := reader.FieldPos(0)
			return nil, eris.Wrapf(err, "table: csv line %d", line)
		}
	}

	return t, nil
}

// ReadXLSX reads the first sheet (or opts.Sheet) of an XLSX workbook.
func ReadXLSX(data []byte, opts ReadOptions) (*Table, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "table: open xlsx")
	}

	sheet, err := getSheet(f, opts.Sheet)
	if err != nil {
		return nil, err
	}

	var t *Table
	for _, row := range sheet.Rows {
		cells := rowToStrings(row)
		if t == nil {
			if isBlank(cells) {
				continue
			}
			t, err = New(cleanHeader(cells, opts.TrimSpace))
			if err != nil {
				return nil, err
			}
			continue
		}
		if err := t.AppendRow(textRow(cells, opts.TrimSpace)); err != nil {
			return nil, eris.Wrap(err, "table: xlsx row")
		}
	}

	if t == nil {
		return nil, ErrEmptyInput
	}
	return t, nil
}

// decodeReader strips a UTF-8 BOM, or decodes the named charset to UTF-8.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	if encoding == "" || strings.EqualFold(encoding, "utf-8") || strings.EqualFold(encoding, "utf8") {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, eris.Wrapf(err, "table: unsupported encoding %q", encoding)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("table: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, ErrEmptyInput
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	// xlsx rows often carry styled but empty trailing cells.
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func cleanHeader(header []string, trim bool) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if trim {
			h = strings.TrimSpace(h)
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		out[i] = h
	}
	return out
}

func textRow(record []string, trim bool) []Value {
	vals := make([]Value, len(record))
	for i, field := range record {
		if trim {
			field = strings.TrimSpace(field)
		}
		vals[i] = TextValue(field)
	}
	return vals
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// sniffXLSX reports whether data looks like a zip container (XLSX).
func sniffXLSX(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}
