package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/nconklindev/sweeper/internal/converter"
)

const barWidth = 40

// renderChart draws one horizontal bar per row for each series, scaled to
// the largest absolute value across all series.
func renderChart(series []converter.Series, maxRows int) string {
	peak := 0.0
	rows := 0
	for _, s := range series {
		if len(s.Values) > rows {
			rows = len(s.Values)
		}
		for _, v := range s.Values {
			if !math.IsInf(v, 0) && !math.IsNaN(v) && math.Abs(v) > peak {
				peak = math.Abs(v)
			}
		}
	}
	if rows > maxRows {
		rows = maxRows
	}

	var legend []string
	for i, s := range series {
		legend = append(legend, seriesStyles[i%len(seriesStyles)].Render("■ "+s.Name))
	}

	var b strings.Builder
	b.WriteString(strings.Join(legend, "  "))
	b.WriteString("\n")

	for r := 0; r < rows; r++ {
		for i, s := range series {
			label := "    "
			if i == 0 {
				label = fmt.Sprintf("%3d ", r)
			}
			v := 0.0
			if r < len(s.Values) {
				v = s.Values[r]
			}
			n := 0
			if peak > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) {
				n = int(math.Round(math.Abs(v) / peak * barWidth))
			}
			bar := seriesStyles[i%len(seriesStyles)].Render(strings.Repeat("█", n))
			b.WriteString(fmt.Sprintf("%s%s %s\n", MutedStyle.Render(label), bar, converter.FormatNumber(v)))
		}
	}

	return b.String()
}
