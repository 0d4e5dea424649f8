package converter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"
)

// Apply runs one cleaning operation and returns a new table; t is left
// untouched. Warnings are non-fatal notes about columns the operation
// could not change.
func Apply(t *types.Table, op types.CleaningOperation) (*types.Table, []error, error) {
	switch op {
	case types.RemoveDuplicateRows:
		return RemoveDuplicates(t), nil, nil
	case types.FillMissingNumericWithMean:
		out, warnings := FillMissingWithMean(t)
		return out, warnings, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
}

// RemoveDuplicates keeps the first occurrence of every distinct row,
// comparing all columns in order, and preserves row order.
func RemoveDuplicates(t *types.Table) *types.Table {
	seen := make(map[string]bool, t.NumRows())
	keep := make([]int, 0, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		key := rowKey(t, r)
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, r)
	}

	cols := make([]*types.Column, len(t.Columns))
	for i, c := range t.Columns {
		vals := make([]types.Value, len(keep))
		for j, r := range keep {
			vals[j] = c.Values[r]
		}
		cols[i] = &types.Column{Name: c.Name, Kind: c.Kind, Values: vals}
	}

	out, _ := types.NewTable(len(keep), cols...)
	return out
}

// rowKey encodes a row so that equal rows, and only equal rows, share a key.
// Text is length-prefixed so no cell content can mimic a separator.
func rowKey(t *types.Table, r int) string {
	var b strings.Builder
	for _, c := range t.Columns {
		v := c.Values[r]
		switch v.Kind {
		case types.KindMissing:
			b.WriteByte('m')
		case types.KindNumber:
			b.WriteByte('n')
			b.WriteString(strconv.FormatUint(math.Float64bits(normalizeZero(v.Num)), 16))
		case types.KindBool:
			if v.Bool {
				b.WriteString("bT")
			} else {
				b.WriteString("bF")
			}
		case types.KindText:
			b.WriteByte('s')
			b.WriteString(strconv.Itoa(len(v.Str)))
			b.WriteByte(':')
			b.WriteString(v.Str)
		}
		b.WriteByte(';')
	}
	return b.String()
}

// normalizeZero maps -0 to 0 so both compare equal, as == does.
func normalizeZero(f float64) float64 {
	if f == 0 {
		return 0
	}
	return f
}

// FillMissingWithMean replaces missing cells of every numeric column with
// the mean of that column's present values. Columns with no present
// values stay as they are and are reported as EmptyMeanFillError.
func FillMissingWithMean(t *types.Table) (*types.Table, []error) {
	out := t.Clone()
	var warnings []error

	for _, c := range out.Columns {
		if c.Kind != types.KindNumber {
			continue
		}

		mean, ok := ColumnMean(c)
		if !ok {
			warnings = append(warnings, &EmptyMeanFillError{Column: c.Name})
			continue
		}

		for i, v := range c.Values {
			if v.IsMissing() {
				c.Values[i] = types.Number(mean)
			}
		}
	}

	return out, warnings
}

// ColumnMean returns the arithmetic mean of the present numeric values.
func ColumnMean(c *types.Column) (float64, bool) {
	sum := 0.0
	count := 0
	for _, v := range c.Values {
		if v.Kind != types.KindNumber {
			continue
		}
		sum += v.Num
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
