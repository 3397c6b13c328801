// Package dashboard owns the state of the dividend dashboard and runs the
// load, sort and paginate pipeline for each user event.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/divvy/internal/cache"
	"github.com/bobmcallan/divvy/internal/common"
	"github.com/bobmcallan/divvy/internal/dividends"
	"github.com/bobmcallan/divvy/internal/ingest"
	"github.com/bobmcallan/divvy/internal/sample"
)

// TableName selects one of the two dashboard tables.
type TableName string

const (
	PaymentsTable TableName = "payments"
	SummaryTable  TableName = "summary"
)

var (
	// ErrUnknownTable is returned for a table name other than payments or summary.
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownColumn is returned when sorting by a column the table does not have.
	ErrUnknownColumn = errors.New("unknown column")
)

// maxLoggedParseErrors bounds per-load parse error logging.
const maxLoggedParseErrors = 20

// DatasetFetcher retrieves the default dataset.
type DatasetFetcher interface {
	Fetch(ctx context.Context) (*cache.Dataset, error)
	URL() string
}

// Options configures a Controller.
type Options struct {
	PageSize        int
	SummaryPageSize int
	Fetcher         DatasetFetcher
	Now             func() time.Time
}

// LoadResult describes the most recent successful load.
type LoadResult struct {
	ID          string              `json:"id"`
	Source      string              `json:"source"`
	Encoding    string              `json:"encoding"`
	Headers     []string            `json:"headers"`
	Records     int                 `json:"records"`
	ParseErrors []ingest.ParseError `json:"parseErrors"`
	Fallback    bool                `json:"fallback"`
	LoadedAt    time.Time           `json:"loadedAt"`
}

// Controller is the single owner of dashboard state. Every exported method
// is one discrete event: it runs to completion under mu, so readers never
// observe a half-applied load.
type Controller struct {
	mu sync.Mutex

	logger  *common.Logger
	fetcher DatasetFetcher
	now     func() time.Time

	records  []dividends.Record
	payments *dividends.Table[dividends.Record]
	summary  *dividends.Table[dividends.SummaryRow]
	currency string
	last12   dividends.Series
	growth   dividends.Series
	overview dividends.Overview
	lastLoad *LoadResult

	subMu       sync.Mutex
	nextSubID   int
	subscribers map[int]func(Event)
}

// New creates a Controller with empty tables.
func New(opts Options, logger *common.Logger) *Controller {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	c := &Controller{
		logger:      logger,
		fetcher:     opts.Fetcher,
		now:         now,
		payments:    dividends.NewPaymentsTable(opts.PageSize),
		summary:     dividends.NewSummaryTable(opts.SummaryPageSize),
		subscribers: make(map[int]func(Event)),
	}
	c.refreshDerived()
	return c
}

// Load parses data and replaces the dashboard state. On error the previous
// state is kept.
func (c *Controller) Load(data []byte, sourceName string) (*LoadResult, error) {
	res, err := c.load(data, sourceName, false)
	if err != nil {
		return nil, err
	}
	c.publish(Event{Kind: EventLoaded, LoadID: res.ID})
	return res, nil
}

func (c *Controller) load(data []byte, sourceName string, fallback bool) (*LoadResult, error) {
	parsed, err := ingest.ParseBytes(data)
	if err != nil {
		c.logger.Warn().Str("source", sourceName).Err(err).Msg("dataset rejected")
		return nil, fmt.Errorf("failed to load %s: %w", sourceName, err)
	}

	records := dividends.NormalizeRows(parsed.Headers, parsed.Rows)
	summary := dividends.BuildSummaryRows(records)

	res := &LoadResult{
		ID:          uuid.New().String(),
		Source:      sourceName,
		Encoding:    parsed.Encoding,
		Headers:     parsed.Headers,
		Records:     len(records),
		ParseErrors: parsed.Errors,
		Fallback:    fallback,
		LoadedAt:    c.now(),
	}

	for i, pe := range parsed.Errors {
		if i == maxLoggedParseErrors {
			c.logger.Warn().Str("load_id", res.ID).Int("remaining", len(parsed.Errors)-i).Msg("further csv parse errors suppressed")
			break
		}
		c.logger.Warn().Str("load_id", res.ID).Int("line", pe.Line).Str("error", pe.Message).Msg("csv parse error")
	}

	c.mu.Lock()
	c.records = records
	c.currency = dividends.InferCurrency(records)
	c.payments.SetRows(records)
	c.summary.SetRows(summary)
	c.lastLoad = res
	c.refreshDerived()
	c.mu.Unlock()

	c.logger.Info().
		Str("load_id", res.ID).
		Str("source", sourceName).
		Str("encoding", parsed.Encoding).
		Int("records", len(records)).
		Int("tickers", len(summary)).
		Int("parse_errors", len(parsed.Errors)).
		Msg("dataset loaded")
	return res, nil
}

// LoadDefault loads the configured default dataset, falling back to the
// embedded sample when the fetch fails or returns unusable data.
func (c *Controller) LoadDefault(ctx context.Context) (*LoadResult, error) {
	if c.fetcher != nil {
		ds, err := c.fetcher.Fetch(ctx)
		if err == nil {
			res, loadErr := c.load(ds.Body, c.fetcher.URL(), false)
			if loadErr == nil {
				c.publish(Event{Kind: EventLoaded, LoadID: res.ID})
				return res, nil
			}
			err = loadErr
		}
		c.logger.Warn().Str("url", c.fetcher.URL()).Err(err).Msg("default dataset unavailable, using embedded sample")
	}

	res, err := c.load(sample.CSV(), sample.Name, c.fetcher != nil)
	if err != nil {
		return nil, err
	}
	c.publish(Event{Kind: EventLoaded, LoadID: res.ID})
	return res, nil
}

// Sort applies a column click: the active column flips direction, a new
// column sorts ascending.
func (c *Controller) Sort(table TableName, key string) error {
	err := c.withTable(table, key, func() {
		switch table {
		case PaymentsTable:
			c.payments.SortBy(key)
		case SummaryTable:
			c.summary.SortBy(key)
		}
	})
	if err != nil {
		return err
	}
	c.publish(Event{Kind: EventSorted, Table: table})
	return nil
}

// SetSort sorts table by key in an explicit direction.
func (c *Controller) SetSort(table TableName, key string, dir dividends.SortDirection) error {
	err := c.withTable(table, key, func() {
		switch table {
		case PaymentsTable:
			c.payments.SetSort(key, dir)
		case SummaryTable:
			c.summary.SetSort(key, dir)
		}
	})
	if err != nil {
		return err
	}
	c.publish(Event{Kind: EventSorted, Table: table})
	return nil
}

// ChangePage moves table by delta pages.
func (c *Controller) ChangePage(table TableName, delta int) error {
	err := c.withTable(table, "", func() {
		switch table {
		case PaymentsTable:
			c.payments.ChangePage(delta)
		case SummaryTable:
			c.summary.ChangePage(delta)
		}
	})
	if err != nil {
		return err
	}
	c.publish(Event{Kind: EventPaged, Table: table})
	return nil
}

// SetPage jumps table to page, clamped to the valid range.
func (c *Controller) SetPage(table TableName, page int) error {
	err := c.withTable(table, "", func() {
		switch table {
		case PaymentsTable:
			c.payments.SetPage(page)
		case SummaryTable:
			c.summary.SetPage(page)
		}
	})
	if err != nil {
		return err
	}
	c.publish(Event{Kind: EventPaged, Table: table})
	return nil
}

// SetPageSize changes the page size of table and returns it to page 1.
func (c *Controller) SetPageSize(table TableName, size int) error {
	var sizeErr error
	err := c.withTable(table, "", func() {
		switch table {
		case PaymentsTable:
			sizeErr = c.payments.SetPageSize(size)
		case SummaryTable:
			sizeErr = c.summary.SetPageSize(size)
		}
	})
	if err != nil {
		return err
	}
	if sizeErr != nil {
		return sizeErr
	}
	c.publish(Event{Kind: EventResized, Table: table})
	return nil
}

// withTable validates table and, when non-empty, the column key, then runs
// fn under the lock and refreshes derived views.
func (c *Controller) withTable(table TableName, key string, fn func()) error {
	columns, err := Columns(table)
	if err != nil {
		return err
	}
	if key != "" && !slices.Contains(columns, key) {
		return unknownColumn(table, key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
	c.refreshDerived()
	return nil
}

// refreshDerived regenerates the chart series and overview. Must be called
// with mu held, or before the controller is shared.
func (c *Controller) refreshDerived() {
	now := c.now()
	c.last12 = dividends.LastTwelveMonths(c.records, now)
	c.growth = dividends.CumulativeGrowth(c.records, now)
	c.overview = dividends.ComputeOverview(c.records, now)
}

// Columns returns the column keys of table in display order.
func Columns(table TableName) ([]string, error) {
	switch table {
	case PaymentsTable:
		return dividends.PaymentColumns, nil
	case SummaryTable:
		return dividends.SummaryColumns, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
}

// ParseTableName validates a table name from a request.
func ParseTableName(s string) (TableName, error) {
	t := TableName(s)
	if _, err := Columns(t); err != nil {
		return "", err
	}
	return t, nil
}
