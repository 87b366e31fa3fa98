package core

// table.go provides the in-memory table the transformation engine works on.
//
// A Table is a set of named columns sharing one row count. Each column is
// either text or numeric; the kind is inferred once at parse time and only
// changes when a rule produces a column of the other kind.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// numericRegex validates that a string is a plain decimal number.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ColumnKind is the representation of a column's cells.
type ColumnKind int

const (
	TextKind ColumnKind = iota
	NumericKind
)

func (k ColumnKind) String() string {
	if k == NumericKind {
		return "numeric"
	}
	return "text"
}

// Column is a named, ordered sequence of cells.
// Numeric columns use NaN as the not-a-number marker.
type Column struct {
	Name string
	kind ColumnKind
	text []string
	nums []float64
}

// TextColumn builds a text column. The values slice is copied.
func TextColumn(name string, values []string) Column {
	return Column{Name: name, kind: TextKind, text: append([]string(nil), values...)}
}

// NumericColumn builds a numeric column. The values slice is copied.
func NumericColumn(name string, values []float64) Column {
	return Column{Name: name, kind: NumericKind, nums: append([]float64(nil), values...)}
}

// Kind returns the column representation.
func (c Column) Kind() ColumnKind { return c.kind }

// Len returns the number of cells.
func (c Column) Len() int {
	if c.kind == NumericKind {
		return len(c.nums)
	}
	return len(c.text)
}

// Cell returns the text rendering of cell i.
func (c Column) Cell(i int) string {
	if c.kind == NumericKind {
		return FormatNumber(c.nums[i])
	}
	return c.text[i]
}

// Texts returns a copy of every cell rendered as text.
func (c Column) Texts() []string {
	if c.kind == TextKind {
		return append([]string(nil), c.text...)
	}
	out := make([]string, len(c.nums))
	for i, v := range c.nums {
		out[i] = FormatNumber(v)
	}
	return out
}

// Numbers returns a copy of the numeric cells, or nil for text columns.
func (c Column) Numbers() []float64 {
	if c.kind != NumericKind {
		return nil
	}
	return append([]float64(nil), c.nums...)
}

// AsText returns the column coerced to text. Not-a-number cells become "".
func (c Column) AsText() Column {
	return Column{Name: c.Name, kind: TextKind, text: c.Texts()}
}

// AsNumeric returns the column coerced to numbers. Cells that do not parse
// become NaN; they are never coerced to zero.
func (c Column) AsNumeric() Column {
	if c.kind == NumericKind {
		return NumericColumn(c.Name, c.nums)
	}
	out := make([]float64, len(c.text))
	for i, s := range c.text {
		if v, ok := ParseNumber(s); ok {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return Column{Name: c.Name, kind: NumericKind, nums: out}
}

// ParseNumber parses a plain decimal number, ignoring surrounding spaces.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatNumber renders a number as the shortest decimal that round-trips,
// never in exponent notation. NaN renders as "".
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// inferColumn types raw cells: numeric when every non-empty cell is a number
// and at least one cell is non-empty.
func inferColumn(name string, cells []string) Column {
	nums := make([]float64, len(cells))
	seen := false
	for i, s := range cells {
		if strings.TrimSpace(s) == "" {
			nums[i] = math.NaN()
			continue
		}
		v, ok := ParseNumber(s)
		if !ok {
			return Column{Name: name, kind: TextKind, text: cells}
		}
		nums[i] = v
		seen = true
	}
	if !seen {
		return Column{Name: name, kind: TextKind, text: cells}
	}
	return Column{Name: name, kind: NumericKind, nums: nums}
}

// Table is an ordered set of uniquely named columns of equal length.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from columns. Names must be unique and every
// column must have the same length.
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), t.rows)
		}
		t.index[c.Name] = i
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Has reports whether the table contains the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int { return t.rows }

// Row returns the text rendering of row i in column order.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.columns))
	for j, c := range t.columns {
		out[j] = c.Cell(i)
	}
	return out
}

// clone returns a shallow copy whose column list can be replaced without
// affecting t. Column backing slices are shared; columns are never mutated.
func (t *Table) clone() *Table {
	c := &Table{
		columns: append([]Column(nil), t.columns...),
		index:   make(map[string]int, len(t.index)),
		rows:    t.rows,
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	return c
}

// replace swaps the named column for col. The name must exist.
func (t *Table) replace(col Column) {
	t.columns[t.index[col.Name]] = col
}

// Select returns a new table holding the named columns in the given order.
// Names that are absent are skipped.
func (t *Table) Select(names []string) *Table {
	out := &Table{index: make(map[string]int, len(names)), rows: t.rows}
	for _, name := range names {
		i, ok := t.index[name]
		if !ok {
			continue
		}
		if _, dup := out.index[name]; dup {
			continue
		}
		out.index[name] = len(out.columns)
		out.columns = append(out.columns, t.columns[i])
	}
	return out
}

// Parse reads delimited text with a header row into a Table.
func Parse(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses delimited text with a header row into a Table.
func ParseBytes(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, &ParseError{Msg: "encoding error: file is not valid UTF-8"}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Msg: "empty file: no header row"}
	}
	if err != nil {
		return nil, parseErrorFrom(0, err)
	}

	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return nil, &ParseError{Line: 1, Msg: fmt.Sprintf("duplicate column %q in header", h)}
		}
		seen[h] = true
	}

	cells := make([][]string, len(header))
	for row := 1; ; row++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseErrorFrom(row, err)
		}
		if len(record) != len(header) {
			line, _ := r.FieldPos(0)
			return nil, &ParseError{
				Row:  row,
				Line: line,
				Msg:  fmt.Sprintf("expected %d fields, got %d", len(header), len(record)),
			}
		}
		for i, v := range record {
			cells[i] = append(cells[i], v)
		}
	}

	columns := make([]Column, len(header))
	for i, name := range header {
		if cells[i] == nil {
			cells[i] = []string{}
		}
		columns[i] = inferColumn(name, cells[i])
	}
	return NewTable(columns...)
}

func parseErrorFrom(row int, err error) *ParseError {
	pe := &ParseError{Row: row, Msg: "invalid csv", Err: err}
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		pe.Line = csvErr.Line
		pe.Msg = "invalid csv: " + csvErr.Err.Error()
	}
	return pe
}

// WriteCSV writes the table as delimited text with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := writeRecord(cw, w, t.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < t.rows; i++ {
		if err := writeRecord(cw, w, t.Row(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeRecord writes one record through cw. A record holding a single empty
// field is written as "" because csv.Writer emits a blank line for it, which
// readers skip.
func writeRecord(cw *csv.Writer, w io.Writer, record []string) error {
	if len(record) != 1 || record[0] != "" {
		return cw.Write(record)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}

// Bytes serializes the table with WriteCSV.
func (t *Table) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
