package forecast

import (
	"strings"

	"github.com/theirongolddev/demandcast/internal/model"
)

// Parse extracts the usable history from CSV text. The first line is a
// header and is always skipped. Column 0 is the period label and column 1
// the sales value; further columns are ignored. Fields are split on bare
// commas, so quoted fields containing commas are not supported.
//
// Rows with fewer than two columns or a sales value that is missing,
// unparsable or not positive are dropped. Order is preserved.
func Parse(csvText string) []model.HistoricalPoint {
	points, _ := scan(csvText)
	return points
}

// Profile describes how Parse treats csvText, including which lines were
// dropped and why, and how the usable rows would be split for evaluation.
func Profile(csvText string) model.DataProfile {
	var p model.DataProfile
	lines := splitLines(csvText)
	if len(lines) > 0 {
		for _, h := range strings.Split(lines[0], ",") {
			p.Header = append(p.Header, strings.TrimSpace(h))
		}
		p.DataLines = len(lines) - 1
	}
	p.Valid, p.Dropped = scan(csvText)
	if len(p.Valid) == 0 {
		return p
	}

	sales := salesOf(p.Valid)
	p.MinSales, p.MaxSales = int(sales[0]), int(sales[0])
	for _, s := range sales {
		p.MinSales = min(p.MinSales, int(s))
		p.MaxSales = max(p.MaxSales, int(s))
	}
	p.TotalSales = int64(Sum(sales))
	p.MeanSales = Mean(sales)
	p.MedianSales = Median(sales)
	p.TestSize = TestSize(len(p.Valid))
	p.TrainSize = len(p.Valid) - p.TestSize
	p.Ready = len(p.Valid) >= MinRows
	return p
}

func scan(csvText string) ([]model.HistoricalPoint, []model.DroppedRow) {
	lines := splitLines(csvText)
	if len(lines) < 2 {
		return nil, nil
	}
	var (
		valid   []model.HistoricalPoint
		dropped []model.DroppedRow
	)
	for i, line := range lines[1:] {
		// Line numbers are 1-based and count the header.
		lineNo := i + 2
		cols := strings.Split(line, ",")
		if len(cols) < 2 {
			dropped = append(dropped, model.DroppedRow{Line: lineNo, Raw: line, Reason: model.DropTooFewColumns})
			continue
		}
		sales, ok := parseLeadingInt(strings.TrimSpace(cols[1]))
		switch {
		case !ok:
			dropped = append(dropped, model.DroppedRow{Line: lineNo, Raw: line, Reason: model.DropUnparsable})
		case sales <= 0:
			dropped = append(dropped, model.DroppedRow{Line: lineNo, Raw: line, Reason: model.DropNonPositive})
		default:
			valid = append(valid, model.HistoricalPoint{Month: strings.TrimSpace(cols[0]), Sales: sales})
		}
	}
	return valid, dropped
}

func splitLines(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// parseLeadingInt reads an optionally signed run of decimal digits from the
// start of s and ignores whatever follows, so "1200.50" reads as 1200 and
// "85 units" as 85. It reports false when s does not start with a number.
func parseLeadingInt(s string) (int, bool) {
	i, neg := 0, false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if n > (1<<53)/10 {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	if i == start {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func salesOf(points []model.HistoricalPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = float64(p.Sales)
	}
	return out
}
