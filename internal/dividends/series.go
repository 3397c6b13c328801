package dividends

import (
	"fmt"
	"time"
)

// Granularity is the bucket width of a chart series.
type Granularity string

const (
	Monthly    Granularity = "monthly"
	Quarterly  Granularity = "quarterly"
	SemiAnnual Granularity = "semiannual"
	Annual     Granularity = "annual"
)

// months returns the bucket width in months.
func (g Granularity) months() int {
	switch g {
	case Quarterly:
		return 3
	case SemiAnnual:
		return 6
	case Annual:
		return 12
	}
	return 1
}

// GranularityForSpan picks the bucket width for a span of calendar months.
func GranularityForSpan(months int) Granularity {
	switch {
	case months <= 12:
		return Monthly
	case months <= 36:
		return Quarterly
	case months <= 72:
		return SemiAnnual
	}
	return Annual
}

// Point is one chart bucket.
type Point struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is an ordered list of chart buckets.
type Series struct {
	Granularity Granularity `json:"granularity"`
	Points      []Point     `json:"points"`
}

// Empty reports whether the series has no buckets.
func (s Series) Empty() bool { return len(s.Points) == 0 }

// dated is a record whose display date parsed.
type dated struct {
	at     time.Time
	amount float64
	valued bool
}

func datedRecords(records []Record) []dated {
	var out []dated
	for _, r := range records {
		t, ok := ParseDisplayDate(r.PaymentDate)
		if !ok {
			continue
		}
		amount, valued := r.Amount()
		out = append(out, dated{at: t, amount: amount, valued: valued})
	}
	return out
}

// bucketStart truncates t to the first month of its bucket.
func bucketStart(t time.Time, g Granularity) time.Time {
	width := g.months()
	m := (int(t.Month())-1)/width*width + 1
	return time.Date(t.Year(), time.Month(m), 1, 0, 0, 0, 0, time.Local)
}

func bucketKey(start time.Time, g Granularity) string {
	m := int(start.Month())
	switch g {
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", start.Year(), (m-1)/3+1)
	case SemiAnnual:
		return fmt.Sprintf("%d-H%d", start.Year(), (m-1)/6+1)
	case Annual:
		return fmt.Sprintf("%d", start.Year())
	}
	return start.Format("2006-01")
}

func bucketLabel(start time.Time, g Granularity) string {
	m := int(start.Month())
	switch g {
	case Quarterly:
		return fmt.Sprintf("Q%d %d", (m-1)/3+1, start.Year())
	case SemiAnnual:
		if m <= 6 {
			return fmt.Sprintf("06/%d", start.Year())
		}
		return fmt.Sprintf("12/%d", start.Year())
	case Annual:
		return fmt.Sprintf("%d", start.Year())
	}
	return start.Format("01/2006")
}

// bucketed sums dated amounts into consecutive buckets from first to last
// (both bucket starts). Amounts outside the range are dropped.
func bucketed(records []dated, first, last time.Time, g Granularity) []Point {
	var points []Point
	index := make(map[string]int)
	for cur := first; !cur.After(last); cur = cur.AddDate(0, g.months(), 0) {
		key := bucketKey(cur, g)
		index[key] = len(points)
		points = append(points, Point{Key: key, Label: bucketLabel(cur, g)})
	}
	for _, d := range records {
		if !d.valued {
			continue
		}
		if i, ok := index[bucketKey(bucketStart(d.at, g), g)]; ok {
			points[i].Value += d.amount
		}
	}
	return points
}

// LastTwelveMonths returns twelve monthly buckets ending with the month of
// now. The series is empty when no record has a parseable date.
func LastTwelveMonths(records []Record, now time.Time) Series {
	ds := datedRecords(records)
	if len(ds) == 0 {
		return Series{Granularity: Monthly}
	}
	last := bucketStart(now, Monthly)
	points := bucketed(ds, last.AddDate(0, -11, 0), last, Monthly)
	for i := range points {
		points[i].Value = Round2(points[i].Value)
	}
	return Series{Granularity: Monthly, Points: points}
}

// MonthSpan counts calendar months from first to now, both inclusive.
func MonthSpan(first, now time.Time) int {
	return (now.Year()-first.Year())*12 + int(now.Month()) - int(first.Month()) + 1
}

// CumulativeGrowth returns the running total of payments from the bucket of
// the earliest dated record through the bucket of now. The bucket width
// adapts to the span of the data.
func CumulativeGrowth(records []Record, now time.Time) Series {
	ds := datedRecords(records)
	if len(ds) == 0 {
		return Series{Granularity: Monthly}
	}
	earliest := ds[0].at
	for _, d := range ds[1:] {
		if d.at.Before(earliest) {
			earliest = d.at
		}
	}

	g := GranularityForSpan(MonthSpan(earliest, now))
	points := bucketed(ds, bucketStart(earliest, g), bucketStart(now, g), g)

	var running float64
	for i := range points {
		running += points[i].Value
		points[i].Value = Round2(running)
	}
	return Series{Granularity: g, Points: points}
}
