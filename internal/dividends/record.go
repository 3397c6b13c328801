// Package dividends implements the dividend payment pipeline: header
// matching, row normalization, aggregation, sorting and pagination.
package dividends

// Column keys for the payments table.
const (
	ColTicker         = "Ticker"
	ColTickerName     = "Ticker Name"
	ColNumberOfShares = "Number of Shares"
	ColPaymentDate    = "Payment Date"
	ColValue          = "Value"
)

// Column keys for the per-ticker summary table.
const (
	ColNumberOfPayments = "Number of Payments"
	ColTotalPayments    = "Total Payments"
	ColAveragePayment   = "Average Payment"
)

// PaymentColumns lists the payments table columns in display order.
var PaymentColumns = []string{ColTicker, ColTickerName, ColNumberOfShares, ColPaymentDate, ColValue}

// SummaryColumns lists the summary table columns in display order.
var SummaryColumns = []string{ColTicker, ColTickerName, ColNumberOfPayments, ColTotalPayments, ColAveragePayment}

// Record is one normalized dividend payment. Every field is always present;
// a source file without a matching column yields an empty string.
type Record struct {
	Ticker         string `json:"ticker"`
	TickerName     string `json:"tickerName"`
	NumberOfShares string `json:"numberOfShares"`
	PaymentDate    string `json:"paymentDate"` // dd/mm/yyyy HH:MM, or the raw input when unrecognized
	Value          string `json:"value"`
	Currency       string `json:"currency"`
}

// Column returns the display value of the named payments column.
func (r Record) Column(key string) string {
	switch key {
	case ColTicker:
		return r.Ticker
	case ColTickerName:
		return r.TickerName
	case ColNumberOfShares:
		return r.NumberOfShares
	case ColPaymentDate:
		return r.PaymentDate
	case ColValue:
		return r.Value
	}
	return ""
}

// Amount returns the numeric payment value.
func (r Record) Amount() (float64, bool) {
	return NumberFromMixedString(r.Value)
}
