package dividends

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortDirection orders a table column.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// Flip returns the opposite direction.
func (d SortDirection) Flip() SortDirection {
	if d == Desc {
		return Asc
	}
	return Desc
}

// ParseSortDirection accepts "asc" or "desc", case-insensitively.
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("invalid sort direction %q", s)
}

// cellKey is the sort key of one cell. Numeric keys order before text
// keys when a column mixes both.
type cellKey struct {
	numeric bool
	num     float64
	text    string
}

func numericKey(n float64) cellKey { return cellKey{numeric: true, num: n} }
func textKey(s string) cellKey     { return cellKey{text: strings.ToLower(s)} }

func (a cellKey) compare(b cellKey) int {
	switch {
	case a.numeric && b.numeric:
		return cmp.Compare(a.num, b.num)
	case a.numeric:
		return -1
	case b.numeric:
		return 1
	}
	return strings.Compare(a.text, b.text)
}

func recordKey(r Record, col string) cellKey {
	v := r.Column(col)
	switch col {
	case ColPaymentDate:
		if t, ok := ParseDisplayDate(v); ok {
			return numericKey(float64(t.UnixMilli()))
		}
	case ColNumberOfShares, ColValue:
		if n, ok := NumberFromMixedString(v); ok {
			return numericKey(n)
		}
	}
	return textKey(v)
}

func summaryKey(s SummaryRow, col string) cellKey {
	switch col {
	case ColNumberOfPayments:
		return numericKey(float64(s.NumberOfPayments))
	case ColTotalPayments:
		return numericKey(s.total)
	case ColAveragePayment:
		return numericKey(s.average)
	}
	return textKey(s.Column(col))
}

// CompareRecords returns a comparator for the payments column col.
func CompareRecords(col string, dir SortDirection) func(a, b Record) int {
	return directed(dir, func(a, b Record) int { return recordKey(a, col).compare(recordKey(b, col)) })
}

// CompareSummary returns a comparator for the summary column col.
func CompareSummary(col string, dir SortDirection) func(a, b SummaryRow) int {
	return directed(dir, func(a, b SummaryRow) int { return summaryKey(a, col).compare(summaryKey(b, col)) })
}

func directed[T any](dir SortDirection, f func(a, b T) int) func(a, b T) int {
	if dir == Desc {
		return func(a, b T) int { return f(b, a) }
	}
	return f
}

// SortRecords returns a sorted copy of records. An empty column keeps the
// input order.
func SortRecords(records []Record, col string, dir SortDirection) []Record {
	out := slices.Clone(records)
	if col != "" {
		slices.SortStableFunc(out, CompareRecords(col, dir))
	}
	return out
}

// SortSummaryRows returns a sorted copy of rows.
func SortSummaryRows(rows []SummaryRow, col string, dir SortDirection) []SummaryRow {
	out := slices.Clone(rows)
	if col != "" {
		slices.SortStableFunc(out, CompareSummary(col, dir))
	}
	return out
}
