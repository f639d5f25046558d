package dashboard

import (
	"fmt"
	"strconv"
	"strings"
)

// Period identifies one dashboard row: a calendar year plus a quarter number.
// Periods are totally ordered by (year, quarter) and carry a canonical
// "YYYY Qn" label used for grouping-key equality.
type Period struct {
	Year    int
	Quarter int
}

// PeriodFormatError reports a period label that cannot be parsed into a
// (year, quarter) pair. It is fatal for the affected grid row only; the
// builder keeps going and marks the row's metrics not available.
type PeriodFormatError struct {
	Label string
}

func (e *PeriodFormatError) Error() string {
	return fmt.Sprintf("dashboard: invalid period label %q; expected \"YYYY Qn\"", e.Label)
}

// ParsePeriod parses a canonical "YYYY Qn" label, tolerating surrounding
// whitespace and a lowercase quarter prefix.
func ParsePeriod(label string) (Period, error) {
	fields := strings.Fields(strings.TrimSpace(label))
	if len(fields) != 2 {
		return Period{}, &PeriodFormatError{Label: label}
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil || year <= 0 {
		return Period{}, &PeriodFormatError{Label: label}
	}
	q, ok := parseQuarter(fields[1])
	if !ok {
		return Period{}, &PeriodFormatError{Label: label}
	}
	return Period{Year: year, Quarter: q}, nil
}

// parseQuarter accepts "Q1".."Q4" (any case) or a bare digit "1".."4".
func parseQuarter(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 2 && (s[0] == 'Q' || s[0] == 'q') {
		s = s[1:]
	}
	q, err := strconv.Atoi(s)
	if err != nil || q < 1 || q > 4 {
		return 0, false
	}
	return q, true
}

// Label returns the canonical "YYYY Qn" textual form.
func (p Period) Label() string {
	return fmt.Sprintf("%d Q%d", p.Year, p.Quarter)
}

// Before reports whether p precedes q in (year, quarter) order.
func (p Period) Before(q Period) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Quarter < q.Quarter
}

// PriorYear returns the same quarter one year earlier, used for the
// year-over-year lookup.
func (p Period) PriorYear() Period {
	return Period{Year: p.Year - 1, Quarter: p.Quarter}
}
