package converter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// missingTokens are the cell spellings read as "no value".
var missingTokens = map[string]bool{
	"": true, "NA": true, "N/A": true, "n/a": true, "NaN": true, "nan": true,
	"-NaN": true, "-nan": true, "null": true, "NULL": true, "None": true,
	"#N/A": true, "#N/A N/A": true, "#NA": true, "<NA>": true,
	"1.#IND": true, "1.#QNAN": true, "-1.#IND": true, "-1.#QNAN": true,
}

// SupportedExtension reports whether ext (with dot, any case) can be loaded.
func SupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ExtCSV, ExtXLSX:
		return true
	}
	return false
}

// ReadFile reads a file from disk as an upload.
func ReadFile(path string) (types.UploadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.UploadedFile{}, err
	}
	return types.UploadedFile{
		Name: filepath.Base(path),
		Data: data,
		Size: int64(len(data)),
	}, nil
}

// LoadFile parses an uploaded file using the format implied by its name.
func LoadFile(f types.UploadedFile) (*types.Table, error) {
	return Load(f.Data, f.Ext())
}

// Load parses data as the given format. The header row names the columns.
func Load(data []byte, ext string) (*types.Table, error) {
	ext = strings.ToLower(ext)

	var (
		records [][]string
		text    [][]bool
		err     error
	)
	switch ext {
	case ExtCSV:
		records, err = readCSVRecords(data)
	case ExtXLSX:
		records, text, err = readXLSXRecords(data)
	default:
		return nil, &UnsupportedFormatError{Ext: ext}
	}
	if err != nil {
		return nil, &ParseError{Ext: ext, Err: err}
	}

	t, err := buildTable(records, text, ext == ExtXLSX)
	if err != nil {
		return nil, &ParseError{Ext: ext, Err: err}
	}
	return t, nil
}

func readCSVRecords(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	return records, nil
}

// readXLSXRecords returns the first sheet's raw cell values together with
// a mask of the cells stored as strings. Booleans come back as TRUE/FALSE.
func readXLSXRecords(data []byte) ([][]string, [][]bool, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("no sheets")
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty file")
	}

	text := make([][]bool, len(rows))
	for r, row := range rows {
		text[r] = make([]bool, len(row))
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, nil, err
			}
			typ, err := f.GetCellType(sheetName, cell)
			if err != nil {
				return nil, nil, err
			}
			switch typ {
			case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
				text[r][c] = true
			case excelize.CellTypeBool:
				row[c] = xlsxBool(value)
			}
		}
	}

	return rows, text, nil
}

func xlsxBool(raw string) string {
	switch strings.TrimSpace(raw) {
	case "1", "TRUE", "true":
		return "TRUE"
	case "0", "FALSE", "false":
		return "FALSE"
	}
	return raw
}

// buildTable turns header + rows into typed columns. Spreadsheet rows may
// run past the header (trailing header cells left blank), so widen is set
// for XLSX; for CSV a long row is malformed. text, when set, marks cells
// stored as strings; a column holding any such present cell stays text.
func buildTable(records [][]string, text [][]bool, widen bool) (*types.Table, error) {
	header := records[0]
	rows := records[1:]

	width := len(header)
	for i, row := range rows {
		if len(row) <= width {
			continue
		}
		if !widen {
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", i+2, width, len(row))
		}
		width = len(row)
	}

	names := headerNames(header, width)
	cols := make([]*types.Column, width)
	cells := make([]string, len(rows))
	for c := 0; c < width; c++ {
		stringCells := false
		for r, row := range rows {
			cells[r] = ""
			if c < len(row) {
				cells[r] = row[c]
			}
			if text != nil && c < len(text[r+1]) && text[r+1][c] && !IsMissing(cells[r]) {
				stringCells = true
			}
		}
		if stringCells {
			cols[c] = textColumn(names[c], cells)
			continue
		}
		cols[c] = inferColumn(names[c], cells)
	}

	return types.NewTable(len(rows), cols...)
}

// headerNames fills blank header cells and suffixes repeats so every
// column name is unique.
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for seen[name] > 0 {
			name = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[name]++
		names[i] = name
	}
	return names
}

// IsMissing reports whether a raw cell means "no value". Any spelling
// that parses as NaN counts, not only the listed tokens.
func IsMissing(s string) bool {
	s = strings.TrimSpace(s)
	if missingTokens[s] {
		return true
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && math.IsNaN(v)
}

// IsNumeric reports whether a raw cell parses as a number.
func IsNumeric(s string) bool {
	_, ok := parseNumber(s)
	return ok
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseBool(s string) (bool, bool) {
	switch strings.TrimSpace(s) {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}
	return false, false
}

// DetectKind picks the column kind: number if every present cell is
// numeric, bool if every present cell is a true/false token, text
// otherwise. A column with no present cells counts as numeric.
func DetectKind(cells []string) types.Kind {
	numeric, boolean, present := true, true, 0
	for _, cell := range cells {
		if IsMissing(cell) {
			continue
		}
		present++
		if numeric && !IsNumeric(cell) {
			numeric = false
		}
		if boolean {
			if _, ok := parseBool(cell); !ok {
				boolean = false
			}
		}
		if !numeric && !boolean {
			return types.KindText
		}
	}

	switch {
	case present == 0 || numeric:
		return types.KindNumber
	case boolean:
		return types.KindBool
	}
	return types.KindText
}

func inferColumn(name string, cells []string) *types.Column {
	kind := DetectKind(cells)
	values := make([]types.Value, len(cells))
	for i, cell := range cells {
		if IsMissing(cell) {
			continue
		}
		switch kind {
		case types.KindNumber:
			v, _ := parseNumber(cell)
			values[i] = types.Number(v)
		case types.KindBool:
			b, _ := parseBool(cell)
			values[i] = types.Bool(b)
		default:
			values[i] = types.Text(cell)
		}
	}
	return &types.Column{Name: name, Kind: kind, Values: values}
}

// textColumn keeps every present cell as written.
func textColumn(name string, cells []string) *types.Column {
	values := make([]types.Value, len(cells))
	for i, cell := range cells {
		if !IsMissing(cell) {
			values[i] = types.Text(cell)
		}
	}
	return &types.Column{Name: name, Kind: types.KindText, Values: values}
}

// readAllLimited reads at most limit bytes from r, failing with
// ErrFileTooLarge when r holds more. limit <= 0 disables the check.
func readAllLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, limit)
	}
	return data, nil
}

// ReadUpload reads an uploaded stream into an UploadedFile, enforcing the
// size limit.
func ReadUpload(name string, r io.Reader, limit int64) (types.UploadedFile, error) {
	data, err := readAllLimited(r, limit)
	if err != nil {
		return types.UploadedFile{}, err
	}
	return types.UploadedFile{Name: name, Data: data, Size: int64(len(data))}, nil
}
