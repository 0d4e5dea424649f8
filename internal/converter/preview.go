package converter

import (
	"github.com/nconklindev/sweeper/internal/types"
)

const (
	// PreviewRows is how many rows a preview shows by default.
	PreviewRows = 5
	// ChartSeries is how many numeric columns a chart shows by default.
	ChartSeries = 2
)

// Summarize describes a loaded file.
func Summarize(f types.UploadedFile, t *types.Table) types.FileInfo {
	info := types.FileInfo{Name: f.Name, Size: f.Size}
	if t != nil {
		info.Rows = t.NumRows()
		info.Columns = t.NumCols()
	}
	return info
}

// PreviewRecords renders the first n rows as strings, header first.
func PreviewRecords(t *types.Table, n int) [][]string {
	head := t.Head(n)
	records := make([][]string, 0, head.NumRows()+1)
	records = append(records, head.Names())
	for r := 0; r < head.NumRows(); r++ {
		row := make([]string, head.NumCols())
		for c, v := range head.Row(r) {
			row[c] = FormatValue(v)
		}
		records = append(records, row)
	}
	return records
}

// NumericColumns returns the names of the numeric columns in table order.
func NumericColumns(t *types.Table) []string {
	var names []string
	for _, c := range t.Columns {
		if c.Kind == types.KindNumber {
			names = append(names, c.Name)
		}
	}
	return names
}

// Series is one numeric column prepared for charting.
type Series struct {
	Name   string
	Values []float64
}

// ChartData returns up to maxSeries numeric columns as float series, with
// missing cells plotted as zero.
func ChartData(t *types.Table, maxSeries int) ([]Series, error) {
	if maxSeries <= 0 {
		maxSeries = ChartSeries
	}

	var series []Series
	for _, c := range t.Columns {
		if len(series) == maxSeries {
			break
		}
		if c.Kind != types.KindNumber {
			continue
		}
		vals := make([]float64, len(c.Values))
		for i, v := range c.Values {
			if v.Kind == types.KindNumber {
				vals[i] = v.Num
			}
		}
		series = append(series, Series{Name: c.Name, Values: vals})
	}

	if len(series) == 0 {
		return nil, ErrNoNumericColumns
	}
	return series, nil
}
