package dashboard

import (
	"math"
	"strings"
)

// Health bands a product/period's weighted average margin.
type Health string

const (
	HealthStrong       Health = "strong"
	HealthModerate     Health = "moderate"
	HealthAtRisk       Health = "at_risk"
	HealthNotAvailable Health = "not_available"
)

// Margin thresholds for health banding. 0.35 belongs to moderate (the strong
// band is exclusive); 0.20 belongs to moderate as well.
const (
	strongMarginFloor   = 0.35
	moderateMarginFloor = 0.20
)

// ProductPeriodMetric is one grid row. Nil pointers mark values that are not
// available: the weighted margin is nil exactly when aggregated revenue for
// the combination is zero, and health is not_available exactly then.
type ProductPeriodMetric struct {
	Product        string   `json:"product"`
	Period         string   `json:"period"`
	TotalRevenue   float64  `json:"total_revenue"`
	WeightedMargin *float64 `json:"weighted_avg_margin"`
	TrailingDelta  *float64 `json:"trailing_delta"`
	YoYDelta       *float64 `json:"yoy_delta"`
	Health         Health   `json:"health"`
}

// ClassifyHealth bands a weighted average margin. It is total: numeric input
// always maps to one of the three numeric bands.
func ClassifyHealth(margin *float64) Health {
	if margin == nil {
		return HealthNotAvailable
	}
	switch {
	case *margin > strongMarginFloor:
		return HealthStrong
	case *margin >= moderateMarginFloor:
		return HealthModerate
	default:
		return HealthAtRisk
	}
}

// seqPeriod is one entry of the fixed period sequence. An unparseable label
// keeps ok=false and poisons only its own grid rows.
type seqPeriod struct {
	label string
	p     Period
	ok    bool
}

func parseSequence(periodLabels []string) ([]seqPeriod, int) {
	seq := make([]seqPeriod, 0, len(periodLabels))
	minYear := math.MaxInt
	for _, label := range periodLabels {
		p, err := ParsePeriod(label)
		sp := seqPeriod{label: strings.TrimSpace(label), p: p, ok: err == nil}
		if sp.ok {
			sp.label = p.Label()
			if p.Year < minYear {
				minYear = p.Year
			}
		}
		seq = append(seq, sp)
	}
	return seq, minYear
}

// BuildMetricsGrid computes one metric row per (product, period) combination,
// products in list order, periods in sequence order. The enumeration yields
// one contiguous block of periods per product, so "previous row" and
// "previous period, same product" coincide; trailing deltas are computed from
// that explicit per-product ordering rather than any incidental index.
func BuildMetricsGrid(records []RawRecord, products []string, periodLabels []string) []ProductPeriodMetric {
	seq, minYear := parseSequence(periodLabels)

	grid := make([]ProductPeriodMetric, 0, len(products)*len(seq))
	for _, product := range products {
		block := make([]ProductPeriodMetric, len(seq))

		// Sums and banding first; the delta pass reads sibling margins.
		for i, sp := range seq {
			m := ProductPeriodMetric{Product: product, Period: sp.label, Health: HealthNotAvailable}
			if sp.ok {
				m.TotalRevenue = SumRevenue(records, product, sp.p)
				if m.TotalRevenue != 0 {
					margin := SumMargin(records, product, sp.p) / m.TotalRevenue
					m.WeightedMargin = &margin
				}
				m.Health = ClassifyHealth(m.WeightedMargin)
			}
			block[i] = m
		}

		for i, sp := range seq {
			if !sp.ok || block[i].WeightedMargin == nil {
				continue
			}
			cur := *block[i].WeightedMargin

			// Trailing delta: the row directly above in this product's
			// block. The first period of the sequence never has one.
			if i > 0 {
				if prev := block[i-1].WeightedMargin; prev != nil {
					d := cur - *prev
					block[i].TrailingDelta = &d
				}
			}

			// YoY delta: same product, same quarter, one year earlier. Rows
			// in the first year of the sequence never have one. When the
			// sequence holds duplicate periods the first match in grid order
			// wins; that tie-break is deliberate, not an accident of the
			// data model.
			if sp.p.Year > minYear {
				want := sp.p.PriorYear()
				for j, other := range seq {
					if other.ok && other.p == want {
						if pm := block[j].WeightedMargin; pm != nil {
							d := cur - *pm
							block[i].YoYDelta = &d
						}
						break
					}
				}
			}
		}
		grid = append(grid, block...)
	}
	return grid
}
