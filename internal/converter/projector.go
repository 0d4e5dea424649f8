package converter

import (
	"fmt"

	"github.com/nconklindev/sweeper/internal/types"
)

// Project returns a table holding only the named columns, in the order
// given. A nil selection keeps every column; an empty non-nil selection
// keeps none but preserves the row count. Column values are shared with t.
func Project(t *types.Table, names []string) (*types.Table, error) {
	if names == nil {
		names = t.Names()
	}

	picked := make(map[string]bool, len(names))
	cols := make([]*types.Column, 0, len(names))
	for _, name := range names {
		if picked[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		c := t.Column(name)
		if c == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		picked[name] = true
		cols = append(cols, c)
	}

	return types.NewTable(t.NumRows(), cols...)
}
