package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vinodismyname/mcpdash/internal/dashboard"
	"github.com/vinodismyname/mcpdash/internal/runtime"
	"github.com/vinodismyname/mcpdash/internal/security"
	"github.com/vinodismyname/mcpdash/internal/workbooks"
	"github.com/vinodismyname/mcpdash/pkg/mcperr"
	"github.com/vinodismyname/mcpdash/pkg/validation"
)

// RegisterDashboardTools wires the metric-derivation pipeline: the
// per-product/quarter metrics grid and the pivoted chart-source table.
func RegisterDashboardTools(s *server.MCPServer, reg *Registry, limits runtime.Limits, mgr *workbooks.Manager) {
	builder := &dashboard.Builder{Limits: limits, Mgr: mgr}

	grid := mcp.NewTool(
		"build_metrics_grid",
		mcp.WithDescription("Build the per-product/quarter metrics grid from a raw transactional sheet (Product, Year, Quarter, Revenue, margin amount). For each product and each period of the fixed sequence, returns total revenue, weighted average margin, trailing-quarter delta, year-over-year delta, and a health band (strong/moderate/at_risk/not_available). Combinations absent from the raw data aggregate to zero and band as not_available. Errors include VALIDATION, SCHEMA_MISSING_HEADER, EMPTY_DATASET, INVALID_SHEET, and GRID_FAILED."),
		mcp.WithInputSchema[dashboard.MetricsGridInput](),
		mcp.WithOutputSchema[dashboard.MetricsGridOutput](),
	)
	s.AddTool(grid, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in dashboard.MetricsGridInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}
		out, err := builder.MetricsGrid(ctx, in)
		if err != nil {
			return dashboardError(err, mcperr.GridFailed), nil
		}
		summary := fmt.Sprintf("grid_rows=%d products=%d periods=%d truncated=%v", len(out.Grid), len(in.Products), len(in.Periods), out.Meta.Truncated)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(grid)

	chart := mcp.NewTool(
		"build_chart_table",
		mcp.WithDescription("Build the period-indexed chart-source table from a raw transactional sheet: one row per period of the fixed sequence, one weighted-margin column per product (not-available collapses to 0) plus a total-revenue column aggregated independently from the raw rows. The row matching excluded_period keeps its label but has every cell forced to the non-plottable null sentinel. Errors include VALIDATION, PERIOD_FORMAT, SCHEMA_MISSING_HEADER, EMPTY_DATASET, INVALID_SHEET, and CHART_FAILED."),
		mcp.WithInputSchema[dashboard.ChartTableInput](),
		mcp.WithOutputSchema[dashboard.ChartTableOutput](),
	)
	s.AddTool(chart, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in dashboard.ChartTableInput) (*mcp.CallToolResult, error) {
		if msg := validation.ValidateStruct(in); msg != "" {
			return mcperr.FromText(msg), nil
		}
		out, err := builder.ChartTable(ctx, in)
		if err != nil {
			return dashboardError(err, mcperr.ChartFailed), nil
		}
		summary := fmt.Sprintf("chart_rows=%d products=%d excluded=%s truncated=%v", len(out.Rows), len(out.Products), out.ExcludedPeriod, out.Meta.Truncated)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(chart)
}

// dashboardError maps pipeline failures onto the canonical code catalog.
func dashboardError(err error, fallback mcperr.Code) *mcp.CallToolResult {
	var schemaErr *dashboard.SchemaError
	if errors.As(err, &schemaErr) {
		return mcperr.Wrapf(mcperr.SchemaMissingHeader, "header %q not found", schemaErr.Header)
	}
	if errors.Is(err, dashboard.ErrEmptyDataset) {
		return mcperr.New(mcperr.EmptyDataset, "")
	}
	var periodErr *dashboard.PeriodFormatError
	if errors.As(err, &periodErr) {
		return mcperr.Wrapf(mcperr.PeriodFormat, "label %q", periodErr.Label)
	}
	if errors.Is(err, security.ErrNotAllowed) || errors.Is(err, security.ErrNotFound) {
		return mcperr.New(mcperr.PermissionDenied, "")
	}
	if errors.Is(err, security.ErrUnsupportedExtension) {
		return mcperr.New(mcperr.UnsupportedFormat, "")
	}
	if mcperr.IsInvalidSheet(err) {
		return mcperr.New(mcperr.InvalidSheet, "")
	}
	low := strings.ToLower(err.Error())
	if strings.Contains(low, "invalid range") || strings.Contains(low, "coordinates") {
		return mcperr.New(mcperr.Validation, "invalid range; use A1:D50 or a defined name")
	}
	return mcperr.Wrapf(fallback, "%v", err)
}
