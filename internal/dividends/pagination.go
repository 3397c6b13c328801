package dividends

import "fmt"

// LastPage returns the number of pages needed for total rows, at least 1.
func LastPage(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage limits page to [1, LastPage(total, pageSize)].
func ClampPage(page, total, pageSize int) int {
	last := LastPage(total, pageSize)
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// Paginate returns the slice of rows shown on page.
func Paginate[T any](rows []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return nil
	}
	page = ClampPage(page, len(rows), pageSize)
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(rows))
	if start >= end {
		return []T{}
	}
	return rows[start:end]
}

// PageInfo describes the visible window of a table.
type PageInfo struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	LastPage int    `json:"lastPage"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Total    int    `json:"total"`
	Range    string `json:"range"`
	HasPrev  bool   `json:"hasPrev"`
	HasNext  bool   `json:"hasNext"`
}

// NewPageInfo computes the window for page. Start and End are 1-based and
// inclusive; both are 0 for an empty table.
func NewPageInfo(page, pageSize, total int) PageInfo {
	last := LastPage(total, pageSize)
	page = ClampPage(page, total, pageSize)
	info := PageInfo{
		Page:     page,
		PageSize: pageSize,
		LastPage: last,
		Total:    total,
		HasPrev:  page > 1,
		HasNext:  page < last,
	}
	if total > 0 {
		info.Start = (page-1)*pageSize + 1
		info.End = min(total, page*pageSize)
	}
	info.Range = fmt.Sprintf("%d-%d of %d", info.Start, info.End, info.Total)
	return info
}
