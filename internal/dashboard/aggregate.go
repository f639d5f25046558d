package dashboard

import "strings"

// Pure sums over exact-match filters. Grouping-key equality is a
// case-sensitive, trimmed match on product name and an exact match on the
// period's (year, quarter) key. Empty match sets sum to 0.

// SumRevenue totals revenue for one product/period combination.
func SumRevenue(records []RawRecord, product string, period Period) float64 {
	product = strings.TrimSpace(product)
	var total float64
	for _, r := range records {
		if r.Product == product && r.Period == period {
			total += r.Revenue
		}
	}
	return total
}

// SumMargin totals margin amount for one product/period combination.
func SumMargin(records []RawRecord, product string, period Period) float64 {
	product = strings.TrimSpace(product)
	var total float64
	for _, r := range records {
		if r.Product == product && r.Period == period {
			total += r.Margin
		}
	}
	return total
}

// SumRevenueByPeriod totals revenue across all products for one period. The
// chart table's total-revenue column uses this independent aggregation path
// rather than summing its own product columns.
func SumRevenueByPeriod(records []RawRecord, period Period) float64 {
	var total float64
	for _, r := range records {
		if r.Period == period {
			total += r.Revenue
		}
	}
	return total
}
