package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the type of a single cell or of a whole column.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is one scalar cell.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
}

func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func Text(s string) Value    { return Value{Kind: KindText, Str: s} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func Missing() Value         { return Value{} }

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// Equal compares two cells. Missing cells are equal to each other.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == o.Num
	case KindText:
		return v.Str == o.Str
	case KindBool:
		return v.Bool == o.Bool
	}
	return true
}

// Column is a named sequence of cells sharing one inferred kind.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// Table is an ordered set of uniquely named, equal-length columns.
// The row count is stored separately so a table with no columns keeps it.
type Table struct {
	Columns []*Column
	rows    int
}

// NewTable builds a table and checks the column invariants.
func NewTable(rows int, cols ...*Column) (*Table, error) {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.Values) != rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", c.Name, len(c.Values), rows)
		}
	}
	return &Table{Columns: cols, rows: rows}, nil
}

func (t *Table) NumRows() int { return t.rows }
func (t *Table) NumCols() int { return len(t.Columns) }

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		vals := make([]Value, len(c.Values))
		copy(vals, c.Values)
		cols[i] = &Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return &Table{Columns: cols, rows: t.rows}
}

// Head returns a copy of the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.rows {
		n = t.rows
	}
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		vals := make([]Value, n)
		copy(vals, c.Values[:n])
		cols[i] = &Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}
	return &Table{Columns: cols, rows: n}
}

// Equal reports whether two tables have the same columns, kinds and cells.
func (t *Table) Equal(o *Table) bool {
	if t.rows != o.rows || len(t.Columns) != len(o.Columns) {
		return false
	}
	for i, c := range t.Columns {
		oc := o.Columns[i]
		if c.Name != oc.Name || c.Kind != oc.Kind {
			return false
		}
		for r := range c.Values {
			if !c.Values[r].Equal(oc.Values[r]) {
				return false
			}
		}
	}
	return true
}

// UploadedFile is a received file. It is never modified after receipt.
type UploadedFile struct {
	Name string
	Data []byte
	Size int64
}

// Ext returns the lowercased file extension including the dot.
func (f UploadedFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// CleaningOperation names one of the supported cleaning steps.
type CleaningOperation string

const (
	RemoveDuplicateRows        CleaningOperation = "remove_duplicates"
	FillMissingNumericWithMean CleaningOperation = "fill_missing"
)

// ParseCleaningOperation accepts the operation names used by the UI and API.
func ParseCleaningOperation(s string) (CleaningOperation, error) {
	switch CleaningOperation(strings.ToLower(strings.TrimSpace(s))) {
	case RemoveDuplicateRows:
		return RemoveDuplicateRows, nil
	case FillMissingNumericWithMean:
		return FillMissingNumericWithMean, nil
	}
	return "", fmt.Errorf("unknown cleaning operation %q", s)
}

// Format is an export target.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	MimeCSV  = "text/csv"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseFormat accepts csv, xlsx, excel and spreadsheet in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel", "spreadsheet":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

func (f Format) Extension() string { return "." + string(f) }

func (f Format) MimeType() string {
	if f == FormatXLSX {
		return MimeXLSX
	}
	return MimeCSV
}

// Label is the name shown to users.
func (f Format) Label() string {
	if f == FormatXLSX {
		return "Excel"
	}
	return "CSV"
}

// ExportResult is a serialized table ready for download.
type ExportResult struct {
	Data     []byte
	MimeType string
	FileName string
}

// FileInfo summarizes a loaded file for previews.
type FileInfo struct {
	Name    string
	Size    int64
	Rows    int
	Columns int
}
