package dashboard

import "strings"

// ChartRow is one period of the chart-source table. Cells are nil only for
// the excluded leading period: nil is the non-plottable sentinel, so the
// period label stays visible in the table while contributing no data point.
type ChartRow struct {
	Period         string              `json:"period"`
	ProductMargins map[string]*float64 `json:"product_margins"`
	TotalRevenue   *float64            `json:"total_revenue"`
}

// ChartTable is the pivoted chart source: one row per period in sequence
// order, one margin column per product plus a total-revenue column. Products
// carries the fixed column order the map keys cannot.
type ChartTable struct {
	Products []string   `json:"products"`
	Rows     []ChartRow `json:"rows"`
}

// BuildChartTable reshapes the metrics grid into the period-indexed chart
// source. Per-product cells carry the grid's weighted average margin with
// not-available collapsed to 0, so every plotted row is numeric. The
// total-revenue column is re-aggregated from the raw records on purpose:
// keeping a second, independent path means the total stays correct even if
// the per-product margin formulas change upstream.
//
// The row whose period matches excludedPeriod has every cell overwritten with
// the non-plottable sentinel after assembly; its label is preserved.
func BuildChartTable(records []RawRecord, grid []ProductPeriodMetric, products []string, periodLabels []string, excludedPeriod string) ChartTable {
	seq, _ := parseSequence(periodLabels)

	// Index grid margins by (product, period label); first entry wins.
	type key struct{ product, period string }
	margins := make(map[key]*float64, len(grid))
	for _, m := range grid {
		k := key{product: m.Product, period: m.Period}
		if _, seen := margins[k]; !seen {
			margins[k] = m.WeightedMargin
		}
	}

	excluded := canonicalLabel(excludedPeriod)

	table := ChartTable{
		Products: append([]string(nil), products...),
		Rows:     make([]ChartRow, 0, len(seq)),
	}
	for _, sp := range seq {
		row := ChartRow{
			Period:         sp.label,
			ProductMargins: make(map[string]*float64, len(products)),
		}
		for _, product := range products {
			v := 0.0
			if m := margins[key{product: product, period: sp.label}]; m != nil {
				v = *m
			}
			row.ProductMargins[product] = ptr(v)
		}
		if sp.ok {
			row.TotalRevenue = ptr(SumRevenueByPeriod(records, sp.p))
		} else {
			row.TotalRevenue = ptr(0.0)
		}
		table.Rows = append(table.Rows, row)
	}

	for i := range table.Rows {
		if table.Rows[i].Period == excluded {
			for product := range table.Rows[i].ProductMargins {
				table.Rows[i].ProductMargins[product] = nil
			}
			table.Rows[i].TotalRevenue = nil
		}
	}
	return table
}

// canonicalLabel normalizes a period label for row matching, falling back to
// the trimmed input when it does not parse.
func canonicalLabel(label string) string {
	if p, err := ParsePeriod(label); err == nil {
		return p.Label()
	}
	return strings.TrimSpace(label)
}

func ptr(v float64) *float64 { return &v }
