package dividends

import (
	"errors"
	"fmt"
)

// ErrInvalidPageSize is returned for page sizes below 1.
var ErrInvalidPageSize = errors.New("page size must be a positive integer")

// DefaultPageSize is the initial page size of both tables.
const DefaultPageSize = 10

// Sorter returns a sorted copy of rows.
type Sorter[T any] func(rows []T, key string, dir SortDirection) []T

// Table is the sort and pagination state of one table. Rows is always the
// raw rows sorted by the current key, and Page always lies within
// [1, LastPage].
type Table[T any] struct {
	sorter   Sorter[T]
	rawRows  []T
	rows     []T
	sortKey  string
	sortDir  SortDirection
	page     int
	pageSize int
}

// NewTable creates an empty table with the given initial sort and page size.
func NewTable[T any](sorter Sorter[T], sortKey string, sortDir SortDirection, pageSize int) *Table[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Table[T]{
		sorter:   sorter,
		sortKey:  sortKey,
		sortDir:  sortDir,
		page:     1,
		pageSize: pageSize,
	}
}

// NewPaymentsTable creates the payments table, newest payment first.
func NewPaymentsTable(pageSize int) *Table[Record] {
	return NewTable(SortRecords, ColPaymentDate, Desc, pageSize)
}

// NewSummaryTable creates the summary table, highest total first.
func NewSummaryTable(pageSize int) *Table[SummaryRow] {
	return NewTable(SortSummaryRows, ColTotalPayments, Desc, pageSize)
}

// SetRows replaces the data wholesale and returns to the first page.
func (t *Table[T]) SetRows(rows []T) {
	t.rawRows = rows
	t.resort()
	t.page = 1
}

// SortBy toggles the direction when key is already active, otherwise sorts
// ascending by key. Either way the table returns to the first page.
func (t *Table[T]) SortBy(key string) {
	if key == t.sortKey {
		t.sortDir = t.sortDir.Flip()
	} else {
		t.sortKey = key
		t.sortDir = Asc
	}
	t.resort()
	t.page = 1
}

// SetSort sorts by key in an explicit direction and returns to the first page.
func (t *Table[T]) SetSort(key string, dir SortDirection) {
	t.sortKey = key
	t.sortDir = dir
	t.resort()
	t.page = 1
}

// ChangePage moves by delta pages, clamped to the valid range.
func (t *Table[T]) ChangePage(delta int) {
	t.SetPage(t.page + delta)
}

// SetPage jumps to page, clamped to the valid range.
func (t *Table[T]) SetPage(page int) {
	t.page = ClampPage(page, len(t.rows), t.pageSize)
}

// SetPageSize changes the page size and returns to the first page.
func (t *Table[T]) SetPageSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	t.pageSize = size
	t.page = 1
	return nil
}

func (t *Table[T]) resort() {
	t.rows = t.sorter(t.rawRows, t.sortKey, t.sortDir)
}

// Rows returns all rows in sorted order.
func (t *Table[T]) Rows() []T { return t.rows }

// RawRows returns the rows in load order.
func (t *Table[T]) RawRows() []T { return t.rawRows }

// PageRows returns the rows on the current page.
func (t *Table[T]) PageRows() []T { return Paginate(t.rows, t.page, t.pageSize) }

// Len returns the number of rows.
func (t *Table[T]) Len() int { return len(t.rows) }

func (t *Table[T]) SortKey() string              { return t.sortKey }
func (t *Table[T]) SortDirection() SortDirection { return t.sortDir }
func (t *Table[T]) Page() int                    { return t.page }
func (t *Table[T]) PageSize() int                { return t.pageSize }

// PageInfo returns the pagination metadata of the current page.
func (t *Table[T]) PageInfo() PageInfo {
	return NewPageInfo(t.page, t.pageSize, len(t.rows))
}
