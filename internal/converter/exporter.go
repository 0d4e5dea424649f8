package converter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the name of the single sheet written to XLSX exports.
const DefaultSheet = "Sheet1"

// Export serializes t to the target format. sourceName is the uploaded
// file's name; the suggested download name swaps its extension for the
// target's.
func Export(t *types.Table, format types.Format, sourceName string) (*types.ExportResult, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case types.FormatCSV:
		data, err = WriteCSV(t)
	case types.FormatXLSX:
		data, err = WriteXLSX(t)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}

	return &types.ExportResult{
		Data:     data,
		MimeType: format.MimeType(),
		FileName: OutputName(sourceName, format),
	}, nil
}

// OutputName returns the base name of sourceName with its extension
// replaced by the format's.
func OutputName(sourceName string, format types.Format) string {
	base := filepath.Base(sourceName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + format.Extension()
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(t *types.Table) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(t.Names()); err != nil {
		return nil, err
	}

	record := make([]string, t.NumCols())
	for r := 0; r < t.NumRows(); r++ {
		for c, col := range t.Columns {
			record[c] = FormatValue(col.Values[r])
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatValue renders a cell the way it is written to CSV.
func FormatValue(v types.Value) string {
	switch v.Kind {
	case types.KindNumber:
		return FormatNumber(v.Num)
	case types.KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case types.KindText:
		return v.Str
	}
	return ""
}

// FormatNumber renders a number with the fewest digits that read back exactly.
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteXLSX writes a single-sheet workbook with a header row and one row
// per record. Numbers and booleans are stored as typed cells and missing
// cells are left blank.
func WriteXLSX(t *types.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(DefaultSheet)
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, t.NumCols())
	for i, name := range t.Names() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, err
	}

	for r := 0; r < t.NumRows(); r++ {
		row := make([]interface{}, t.NumCols())
		for c, col := range t.Columns {
			row[c] = xlsxValue(col.Values[r])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, err
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xlsxValue(v types.Value) interface{} {
	switch v.Kind {
	case types.KindNumber:
		if math.IsInf(v.Num, 0) || math.IsNaN(v.Num) {
			return FormatNumber(v.Num)
		}
		return v.Num
	case types.KindBool:
		return v.Bool
	case types.KindText:
		return v.Str
	}
	return nil
}
