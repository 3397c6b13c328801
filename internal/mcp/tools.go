package mcp

import (
	"context"
	"fmt"

	"github.com/bobmcallan/divvy/internal/common"
	"github.com/bobmcallan/divvy/internal/config"
	"github.com/bobmcallan/divvy/internal/dashboard"
	"github.com/bobmcallan/divvy/internal/dividends"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolNames lists every registered tool in registration order.
var toolNames = []string{"get_version", "get_overview", "list_payments", "list_summary", "get_series", "load_csv"}

// loadCSVResult is returned by load_csv.
type loadCSVResult struct {
	Load     *dashboard.LoadResult `json:"load"`
	Overview dividends.Overview    `json:"overview"`
}

// seriesResult is returned by get_series.
type seriesResult struct {
	Currency         string           `json:"currency"`
	LastTwelveMonths dividends.Series `json:"lastTwelveMonths"`
	Growth           dividends.Series `json:"growth"`
}

// overviewResult is returned by get_overview.
type overviewResult struct {
	Currency string                `json:"currency"`
	Overview dividends.Overview    `json:"overview"`
	Load     *dashboard.LoadResult `json:"load"`
}

// RegisterTools adds the dashboard tools to s.
func RegisterTools(s *server.MCPServer, ctl *dashboard.Controller, build config.BuildInfo, maxCSVBytes int64, logger *common.Logger) {
	s.AddTool(VersionTool(), VersionToolHandler(build))
	s.AddTool(overviewTool(), overviewHandler(ctl))
	s.AddTool(tableTool("list_payments", "List dividend payments, one page at a time.", dividends.PaymentColumns), listPaymentsHandler(ctl))
	s.AddTool(tableTool("list_summary", "List dividend totals per ticker, one page at a time.", dividends.SummaryColumns), listSummaryHandler(ctl))
	s.AddTool(seriesTool(), seriesHandler(ctl))
	s.AddTool(loadCSVTool(), loadCSVHandler(ctl, maxCSVBytes, logger))
}

func overviewTool() mcp.Tool {
	return mcp.NewTool("get_overview",
		mcp.WithDescription("Get overview statistics of the loaded dividends: totals, trailing 30 and 365 day totals, averages, highest payment and top payers."),
	)
}

func overviewHandler(ctl *dashboard.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v := ctl.Snapshot()
		return jsonResult(overviewResult{
			Currency: v.Currency,
			Overview: v.Overview,
			Load:     v.Load,
		}), nil
	}
}

func tableTool(name, description string, columns []string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description+" Reading a page does not change the dashboard view."),
		mcp.WithString("sort_key",
			mcp.Description("Column to sort by"),
			mcp.Enum(columns...),
		),
		mcp.WithString("sort_dir",
			mcp.Description("Sort direction"),
			mcp.Enum(string(dividends.Asc), string(dividends.Desc)),
		),
		mcp.WithNumber("page",
			mcp.Description("1-based page number, clamped to the available pages"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Rows per page"),
		),
	)
}

func tableQuery(r mcp.CallToolRequest) (dashboard.Query, error) {
	q := dashboard.Query{
		SortKey:  r.GetString("sort_key", ""),
		Page:     r.GetInt("page", 0),
		PageSize: r.GetInt("page_size", 0),
	}
	if raw := r.GetString("sort_dir", ""); raw != "" {
		dir, err := dividends.ParseSortDirection(raw)
		if err != nil {
			return q, err
		}
		q.SortDir = dir
	}
	if q.PageSize < 0 {
		return q, dividends.ErrInvalidPageSize
	}
	return q, nil
}

func listPaymentsHandler(ctl *dashboard.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := tableQuery(r)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		view, err := ctl.QueryPayments(q)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(view), nil
	}
}

func listSummaryHandler(ctl *dashboard.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := tableQuery(r)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		view, err := ctl.QuerySummary(q)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(view), nil
	}
}

func seriesTool() mcp.Tool {
	return mcp.NewTool("get_series",
		mcp.WithDescription("Get the chart series: monthly totals for the last twelve months, and cumulative growth with a granularity that adapts to the data span."),
	)
}

func seriesHandler(ctl *dashboard.Controller) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v := ctl.Snapshot()
		return jsonResult(seriesResult{
			Currency:         v.Currency,
			LastTwelveMonths: v.LastTwelveMonths,
			Growth:           v.Growth,
		}), nil
	}
}

func loadCSVTool() mcp.Tool {
	return mcp.NewTool("load_csv",
		mcp.WithDescription("Replace the dashboard data with a dividend CSV export. Header names are matched case-insensitively against common broker exports."),
		mcp.WithString("csv",
			mcp.Description("The CSV text, header row first"),
			mcp.Required(),
		),
		mcp.WithString("name",
			mcp.Description("Name recorded as the data source"),
		),
	)
}

func loadCSVHandler(ctl *dashboard.Controller, maxBytes int64, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := r.RequireString("csv")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if maxBytes > 0 && int64(len(text)) > maxBytes {
			return errorResult(fmt.Sprintf("csv is %d bytes, limit is %d", len(text), maxBytes)), nil
		}
		name := r.GetString("name", "mcp-upload.csv")

		res, err := ctl.Load([]byte(text), name)
		if err != nil {
			logger.Warn().Str("name", name).Err(err).Msg("load_csv rejected")
			return errorResult(err.Error()), nil
		}
		return jsonResult(loadCSVResult{
			Load:     res,
			Overview: ctl.Snapshot().Overview,
		}), nil
	}
}
