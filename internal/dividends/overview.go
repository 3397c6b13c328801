package dividends

import (
	"sort"
	"time"
)

// UnknownTicker labels payments without a ticker in overview highlights.
const UnknownTicker = "Unknown"

// Amount is a money value with its display form.
type Amount struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// PaymentHighlight describes a single payment.
type PaymentHighlight struct {
	Amount      Amount `json:"amount"`
	Ticker      string `json:"ticker"`
	TickerName  string `json:"tickerName"`
	PaymentDate string `json:"paymentDate"`
}

// TickerHighlight describes the accumulated payments of one ticker.
type TickerHighlight struct {
	Ticker     string `json:"ticker"`
	TickerName string `json:"tickerName"`
	Count      int    `json:"count"`
	Total      Amount `json:"total"`
}

// Overview holds the headline statistics of a dataset. Nil fields are
// cards with nothing to show.
type Overview struct {
	FirstPayment    string            `json:"firstPayment"`
	LastPayment     string            `json:"lastPayment"`
	Count           int               `json:"count"`
	Total           *Amount           `json:"total"`
	Total30Days     *Amount           `json:"total30Days"`
	Total365Days    *Amount           `json:"total365Days"`
	Average         *Amount           `json:"average"`
	AveragePerMonth *Amount           `json:"averagePerMonth"`
	Highest         *PaymentHighlight `json:"highest"`
	MostPayments    *TickerHighlight  `json:"mostPayments"`
	BiggestPayer    *TickerHighlight  `json:"biggestPayer"`
	LowestPayer     *TickerHighlight  `json:"lowestPayer"`
}

type tickerStats struct {
	ticker string
	name   string
	count  int
	total  float64
}

// ComputeOverview derives the overview statistics. Only records with both
// a numeric value and a parseable date are counted; the trailing windows
// are measured back from now.
func ComputeOverview(records []Record, now time.Time) Overview {
	var ov Overview
	symbol := CurrencySymbol(InferCurrency(records))
	money := func(v float64) *Amount {
		return &Amount{Value: v, Display: FormatMoney(symbol, v)}
	}

	type stamped struct {
		at  time.Time
		rec Record
	}
	var withDates []stamped
	for _, r := range records {
		if t, ok := ParseDisplayDate(r.PaymentDate); ok {
			withDates = append(withDates, stamped{at: t, rec: r})
		}
	}
	if len(withDates) > 0 {
		sort.SliceStable(withDates, func(i, j int) bool { return withDates[i].at.Before(withDates[j].at) })
		ov.FirstPayment = withDates[0].rec.PaymentDate
		ov.LastPayment = withDates[len(withDates)-1].rec.PaymentDate
	}

	cutoff30 := now.Add(-30 * 24 * time.Hour)
	cutoff365 := now.Add(-365 * 24 * time.Hour)

	var total, total30, total365 float64
	var highest *Record
	var highestAmount float64
	var stats []*tickerStats
	byTicker := make(map[string]*tickerStats)

	for i, r := range records {
		amount, ok := r.Amount()
		if !ok {
			continue
		}
		at, ok := ParseDisplayDate(r.PaymentDate)
		if !ok {
			continue
		}

		ov.Count++
		total += amount
		if !at.Before(cutoff30) {
			total30 += amount
		}
		if !at.Before(cutoff365) {
			total365 += amount
		}
		if highest == nil || amount > highestAmount {
			highest = &records[i]
			highestAmount = amount
		}

		key := r.Ticker
		if key == "" {
			key = UnknownTicker
		}
		st, seen := byTicker[key]
		if !seen {
			st = &tickerStats{ticker: key, name: r.TickerName}
			byTicker[key] = st
			stats = append(stats, st)
		}
		st.count++
		st.total += amount
	}

	if ov.Count > 0 {
		ov.Total = money(total)
		ov.Average = money(total / float64(ov.Count))
	}
	if total30 > 0 {
		ov.Total30Days = money(total30)
	}
	if total365 > 0 {
		ov.Total365Days = money(total365)
		ov.AveragePerMonth = money(total365 / 12)
	}
	if highest != nil {
		ov.Highest = &PaymentHighlight{
			Amount:      *money(highestAmount),
			Ticker:      highest.Ticker,
			TickerName:  highest.TickerName,
			PaymentDate: highest.PaymentDate,
		}
	}

	var most, biggest, lowest *tickerStats
	for _, st := range stats {
		if st.count > 0 && (most == nil || st.count > most.count) {
			most = st
		}
		if st.total > 0 && (biggest == nil || st.total > biggest.total) {
			biggest = st
		}
		if lowest == nil || st.total < lowest.total {
			lowest = st
		}
	}
	highlight := func(st *tickerStats) *TickerHighlight {
		return &TickerHighlight{Ticker: st.ticker, TickerName: st.name, Count: st.count, Total: *money(st.total)}
	}
	if most != nil {
		ov.MostPayments = highlight(most)
	}
	if biggest != nil {
		ov.BiggestPayer = highlight(biggest)
	}
	// A non-positive minimum has no meaningful "lowest payer".
	if lowest != nil && lowest.total > 0 {
		ov.LowestPayer = highlight(lowest)
	}
	return ov
}
