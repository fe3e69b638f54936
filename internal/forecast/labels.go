package forecast

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LabelMode controls how forecast periods are named.
type LabelMode string

const (
	// LabelContinue names forecast periods after the last historical label
	// when it is recognizable and falls back to LabelFixed otherwise.
	LabelContinue LabelMode = "continue"
	// LabelFixed always names the six periods Jul through Dec.
	LabelFixed LabelMode = "fixed"
)

// ParseLabelMode accepts "continue" or "fixed"; empty means continue.
func ParseLabelMode(s string) (LabelMode, error) {
	switch LabelMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", LabelContinue:
		return LabelContinue, nil
	case LabelFixed:
		return LabelFixed, nil
	}
	return "", fmt.Errorf("unknown label mode %q (want continue or fixed)", s)
}

// Horizon is the number of forecast periods.
const Horizon = 6

var fixedLabels = [Horizon]string{"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FixedLabels returns the default forecast period names.
func FixedLabels() []string {
	return append([]string(nil), fixedLabels[:]...)
}

// NextLabels names the n periods following last. Month names (full or
// three-letter, optionally followed by a four-digit year), YYYY-MM and
// YYYY-MM-DD labels are continued; anything else yields the fixed labels.
func NextLabels(last string, n int, mode LabelMode) []string {
	if mode != LabelFixed {
		if out, ok := continueLabels(strings.TrimSpace(last), n); ok {
			return out
		}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fixedLabels[i%len(fixedLabels)]
	}
	return out
}

func continueLabels(last string, n int) ([]string, bool) {
	if t, err := time.Parse("2006-01-02", last); err == nil {
		day := t.Day()
		out := make([]string, n)
		for i := range out {
			first := time.Date(t.Year(), t.Month()+time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
			d := min(day, daysIn(first))
			out[i] = time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		}
		return out, true
	}
	if t, err := time.Parse("2006-01", last); err == nil {
		out := make([]string, n)
		for i := range out {
			out[i] = t.AddDate(0, i+1, 0).Format("2006-01")
		}
		return out, true
	}

	name, year, hasYear := last, 0, false
	if fields := strings.Fields(last); len(fields) == 2 && len(fields[1]) == 4 {
		if y, err := strconv.Atoi(fields[1]); err == nil {
			name, year, hasYear = fields[0], y, true
		}
	}
	month, full, ok := lookupMonth(name)
	if !ok {
		return nil, false
	}
	out := make([]string, n)
	for i := range out {
		idx := int(month) + i // zero-based index of the next month
		m := time.Month(idx%12 + 1)
		label := m.String()
		if !full {
			label = label[:3]
		}
		label = matchCase(label, name)
		if hasYear {
			label = fmt.Sprintf("%s %d", label, year+idx/12)
		}
		out[i] = label
	}
	return out, true
}

func lookupMonth(s string) (time.Month, bool, bool) {
	lower := strings.ToLower(s)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if lower == name[:3] || (m == time.September && lower == "sept") {
			return m, false, true
		}
		if lower == name {
			return m, true, true
		}
	}
	return 0, false, false
}

func matchCase(label, like string) string {
	switch like {
	case strings.ToUpper(like):
		return strings.ToUpper(label)
	case strings.ToLower(like):
		return strings.ToLower(label)
	}
	return label
}

func daysIn(first time.Time) int {
	return first.AddDate(0, 1, -1).Day()
}
