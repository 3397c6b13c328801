package dashboard

import (
	"slices"
	"time"

	"github.com/bobmcallan/divvy/internal/dividends"
)

// TableView is the visible page of one table.
type TableView[T any] struct {
	Columns    []string                `json:"columns"`
	Rows       []T                     `json:"rows"`
	SortKey    string                  `json:"sortKey"`
	SortDir    dividends.SortDirection `json:"sortDir"`
	Pagination dividends.PageInfo      `json:"pagination"`
}

// View is a consistent copy of the whole dashboard state.
type View struct {
	Payments         TableView[dividends.Record]     `json:"payments"`
	Summary          TableView[dividends.SummaryRow] `json:"summary"`
	LastTwelveMonths dividends.Series                `json:"lastTwelveMonths"`
	Growth           dividends.Series                `json:"growth"`
	Overview         dividends.Overview              `json:"overview"`
	Currency         string                          `json:"currency"`
	Symbol           string                          `json:"symbol"`
	Load             *LoadResult                     `json:"load"`
}

func tableView[T any](t *dividends.Table[T], columns []string) TableView[T] {
	return TableView[T]{
		Columns:    columns,
		Rows:       slices.Clone(t.PageRows()),
		SortKey:    t.SortKey(),
		SortDir:    t.SortDirection(),
		Pagination: t.PageInfo(),
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Payments:         tableView(c.payments, dividends.PaymentColumns),
		Summary:          tableView(c.summary, dividends.SummaryColumns),
		LastTwelveMonths: c.last12,
		Growth:           c.growth,
		Overview:         c.overview,
		Currency:         c.currency,
		Symbol:           dividends.CurrencySymbol(c.currency),
	}
	if c.lastLoad != nil {
		ld := *c.lastLoad
		v.Load = &ld
	}
	return v
}

// Query selects a page of a table without changing the dashboard state.
// Zero fields fall back to the table's current settings.
type Query struct {
	SortKey  string
	SortDir  dividends.SortDirection
	Page     int
	PageSize int
}

func (q Query) apply(key string, dir dividends.SortDirection, page, size int) Query {
	if q.SortKey == "" {
		q.SortKey, q.SortDir = key, dir
	}
	if q.SortDir == "" {
		q.SortDir = dividends.Asc
	}
	if q.Page <= 0 {
		q.Page = page
	}
	if q.PageSize <= 0 {
		q.PageSize = size
	}
	return q
}

// QueryPayments returns a page of payments sorted as q asks.
func (c *Controller) QueryPayments(q Query) (TableView[dividends.Record], error) {
	c.mu.Lock()
	rows := c.payments.RawRows()
	q = q.apply(c.payments.SortKey(), c.payments.SortDirection(), c.payments.Page(), c.payments.PageSize())
	c.mu.Unlock()

	if q.SortKey != "" && !slices.Contains(dividends.PaymentColumns, q.SortKey) {
		return TableView[dividends.Record]{}, unknownColumn(PaymentsTable, q.SortKey)
	}
	t := dividends.NewTable(dividends.SortRecords, q.SortKey, q.SortDir, q.PageSize)
	t.SetRows(rows)
	t.SetPage(q.Page)
	return tableView(t, dividends.PaymentColumns), nil
}

// QuerySummary returns a page of summary rows sorted as q asks.
func (c *Controller) QuerySummary(q Query) (TableView[dividends.SummaryRow], error) {
	c.mu.Lock()
	rows := c.summary.RawRows()
	q = q.apply(c.summary.SortKey(), c.summary.SortDirection(), c.summary.Page(), c.summary.PageSize())
	c.mu.Unlock()

	if q.SortKey != "" && !slices.Contains(dividends.SummaryColumns, q.SortKey) {
		return TableView[dividends.SummaryRow]{}, unknownColumn(SummaryTable, q.SortKey)
	}
	t := dividends.NewTable(dividends.SortSummaryRows, q.SortKey, q.SortDir, q.PageSize)
	t.SetRows(rows)
	t.SetPage(q.Page)
	return tableView(t, dividends.SummaryColumns), nil
}

// Records returns every loaded record in load order.
func (c *Controller) Records() []dividends.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.records)
}

// Status is a cheap summary of what the dashboard currently holds.
type Status struct {
	Loaded   bool      `json:"loaded"`
	Source   string    `json:"source,omitempty"`
	Records  int       `json:"records"`
	Fallback bool      `json:"fallback,omitempty"`
	LoadedAt time.Time `json:"loadedAt"`
}

// Status reports the last successful load without copying any rows.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastLoad == nil {
		return Status{}
	}
	return Status{
		Loaded:   true,
		Source:   c.lastLoad.Source,
		Records:  len(c.records),
		Fallback: c.lastLoad.Fallback,
		LoadedAt: c.lastLoad.LoadedAt,
	}
}
