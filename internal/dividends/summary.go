package dividends

import "strings"

// SummaryRow aggregates the payments of one ticker.
type SummaryRow struct {
	Ticker           string `json:"ticker"`
	TickerName       string `json:"tickerName"`
	NumberOfPayments int    `json:"numberOfPayments"`
	TotalPayments    string `json:"totalPayments"`
	AveragePayment   string `json:"averagePayment"`

	total   float64
	average float64
}

// Total returns the unformatted sum of the ticker's payments.
func (s SummaryRow) Total() float64 { return s.total }

// Average returns the unformatted mean payment.
func (s SummaryRow) Average() float64 { return s.average }

// Column returns the display value of the named summary column.
func (s SummaryRow) Column(key string) string {
	switch key {
	case ColTicker:
		return s.Ticker
	case ColTickerName:
		return s.TickerName
	case ColTotalPayments:
		return s.TotalPayments
	case ColAveragePayment:
		return s.AveragePayment
	}
	return ""
}

// InferCurrency returns the currency of the first record that has one.
func InferCurrency(records []Record) string {
	for _, r := range records {
		if strings.TrimSpace(r.Currency) != "" {
			return r.Currency
		}
	}
	return ""
}

// BuildSummaryRows groups records by exact ticker string, in order of first
// appearance. Records whose value is not numeric are skipped. All money
// columns use the symbol of the inferred file currency.
func BuildSummaryRows(records []Record) []SummaryRow {
	symbol := CurrencySymbol(InferCurrency(records))

	index := make(map[string]int)
	var rows []SummaryRow
	for _, r := range records {
		amount, ok := r.Amount()
		if !ok {
			continue
		}
		i, seen := index[r.Ticker]
		if !seen {
			i = len(rows)
			index[r.Ticker] = i
			rows = append(rows, SummaryRow{Ticker: r.Ticker, TickerName: r.TickerName})
		}
		rows[i].NumberOfPayments++
		rows[i].total += amount
	}

	for i := range rows {
		rows[i].average = rows[i].total / float64(rows[i].NumberOfPayments)
		rows[i].TotalPayments = FormatMoney(symbol, rows[i].total)
		rows[i].AveragePayment = FormatMoney(symbol, rows[i].average)
	}
	return rows
}
