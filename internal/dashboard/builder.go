package dashboard

import (
	"context"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vinodismyname/mcpdash/internal/runtime"
	"github.com/vinodismyname/mcpdash/internal/workbooks"
)

// MetricsGridInput selects the raw dataset and the fixed dashboard lists.
// Products and periods are explicit configuration, not derived from the data:
// combinations absent from the raw rows simply aggregate to zero.
type MetricsGridInput struct {
	Path          string   `json:"path" validate:"required,filepath_ext" jsonschema_description:"Canonical Excel file path (allowed directories enforced)"`
	Sheet         string   `json:"sheet" validate:"required" jsonschema_description:"Sheet holding the raw transactional dataset"`
	Range         string   `json:"range" validate:"required,a1orname" jsonschema_description:"A1-style range or defined name covering header + data"`
	Products      []string `json:"products" validate:"required,min=1,dive,required" jsonschema_description:"Ordered product list; one grid block per product"`
	Periods       []string `json:"periods" validate:"required,min=1" jsonschema_description:"Ordered period sequence as 'YYYY Qn' labels (the dashboard rows)"`
	ProductColumn string   `json:"product_column,omitempty" jsonschema_description:"Product header name (default 'Product')"`
	MarginColumn  string   `json:"margin_column,omitempty" jsonschema_description:"Margin-amount header name (default 'Margin')"`
	MaxCells      int      `json:"max_cells,omitempty" validate:"omitempty,min=1" jsonschema_description:"Max cells to process (bounded by global limits)"`
}

// MetricsGridOutput carries the per-product/period metric rows grouped by
// product then period.
type MetricsGridOutput struct {
	Path  string                `json:"path"`
	Sheet string                `json:"sheet"`
	Range string                `json:"range"`
	Grid  []ProductPeriodMetric `json:"grid"`
	Meta  tableMeta             `json:"meta"`
}

// ChartTableInput extends the grid input with the excluded leading period:
// its chart row is forced non-plottable while the label is retained.
type ChartTableInput struct {
	Path           string   `json:"path" validate:"required,filepath_ext" jsonschema_description:"Canonical Excel file path (allowed directories enforced)"`
	Sheet          string   `json:"sheet" validate:"required" jsonschema_description:"Sheet holding the raw transactional dataset"`
	Range          string   `json:"range" validate:"required,a1orname" jsonschema_description:"A1-style range or defined name covering header + data"`
	Products       []string `json:"products" validate:"required,min=1,dive,required" jsonschema_description:"Ordered product list exposed as chart columns"`
	Periods        []string `json:"periods" validate:"required,min=1" jsonschema_description:"Ordered period sequence as 'YYYY Qn' labels"`
	ExcludedPeriod string   `json:"excluded_period" validate:"required,periodlabel" jsonschema_description:"Period whose row is kept in the table but never plotted"`
	ProductColumn  string   `json:"product_column,omitempty" jsonschema_description:"Product header name (default 'Product')"`
	MarginColumn   string   `json:"margin_column,omitempty" jsonschema_description:"Margin-amount header name (default 'Margin')"`
	MaxCells       int      `json:"max_cells,omitempty" validate:"omitempty,min=1" jsonschema_description:"Max cells to process (bounded by global limits)"`
}

// ChartTableOutput carries the pivoted, period-indexed chart source.
type ChartTableOutput struct {
	Path           string     `json:"path"`
	Sheet          string     `json:"sheet"`
	Range          string     `json:"range"`
	Products       []string   `json:"products"`
	ExcludedPeriod string     `json:"excluded_period"`
	Rows           []ChartRow `json:"rows"`
	Meta           tableMeta  `json:"meta"`
}

// Builder executes the dashboard pipeline against a managed workbook:
// load, aggregate, derive, and (for the chart) pivot. Each stage fully
// consumes its predecessor's output; nothing is shared mutably between them.
type Builder struct {
	Limits runtime.Limits
	Mgr    *workbooks.Manager
}

func (b *Builder) boundCells(requested int) int {
	if requested <= 0 || requested > b.Limits.MaxCellsPerOp {
		return b.Limits.MaxCellsPerOp
	}
	return requested
}

// loadFromWorkbook reads the configured range and normalizes it to records.
func (b *Builder) loadFromWorkbook(ctx context.Context, path, sheet, rangeRef string, cfg LoaderConfig, maxCells int) ([]RawRecord, string, string, tableMeta, error) {
	id, canonical, err := b.Mgr.GetOrOpenByPath(ctx, path)
	if err != nil {
		return nil, "", "", tableMeta{MaxCells: maxCells}, err
	}

	var (
		records    []RawRecord
		normalized string
		meta       tableMeta
	)
	err = b.Mgr.WithRead(id, func(f *excelize.File, _ int64) error {
		table, norm, m, rerr := readTable(f, sheet, rangeRef, maxCells)
		normalized, meta = norm, m
		if rerr != nil {
			return rerr
		}
		records, rerr = LoadRecords(table, cfg)
		return rerr
	})
	if err != nil {
		return nil, canonical, normalized, meta, err
	}
	return records, canonical, normalized, meta, nil
}

// MetricsGrid builds the per-product/period metrics grid from the raw sheet.
func (b *Builder) MetricsGrid(ctx context.Context, in MetricsGridInput) (MetricsGridOutput, error) {
	out := MetricsGridOutput{Sheet: strings.TrimSpace(in.Sheet)}
	maxCells := b.boundCells(in.MaxCells)

	cfg := LoaderConfig{ProductColumn: in.ProductColumn, MarginColumn: in.MarginColumn}
	records, canonical, normalized, meta, err := b.loadFromWorkbook(ctx, in.Path, out.Sheet, in.Range, cfg, maxCells)
	out.Path, out.Range, out.Meta = canonical, normalized, meta
	if err != nil {
		return out, err
	}

	out.Grid = BuildMetricsGrid(records, in.Products, in.Periods)
	return out, nil
}

// ChartTable builds the pivoted chart source from the raw sheet.
func (b *Builder) ChartTable(ctx context.Context, in ChartTableInput) (ChartTableOutput, error) {
	out := ChartTableOutput{Sheet: strings.TrimSpace(in.Sheet), ExcludedPeriod: canonicalLabel(in.ExcludedPeriod)}
	maxCells := b.boundCells(in.MaxCells)

	cfg := LoaderConfig{ProductColumn: in.ProductColumn, MarginColumn: in.MarginColumn}
	records, canonical, normalized, meta, err := b.loadFromWorkbook(ctx, in.Path, out.Sheet, in.Range, cfg, maxCells)
	out.Path, out.Range, out.Meta = canonical, normalized, meta
	if err != nil {
		return out, err
	}

	grid := BuildMetricsGrid(records, in.Products, in.Periods)
	table := BuildChartTable(records, grid, in.Products, in.Periods, in.ExcludedPeriod)
	out.Products = table.Products
	out.Rows = table.Rows
	return out, nil
}
