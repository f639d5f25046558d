package dashboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func aggregateFixture() []RawRecord {
	return []RawRecord{
		{Product: "Widget Pro", Period: Period{2023, 1}, Revenue: 600, Margin: 240},
		{Product: "Widget Pro", Period: Period{2023, 1}, Revenue: 400, Margin: 160},
		{Product: "Widget Pro", Period: Period{2023, 2}, Revenue: 800, Margin: 120},
		{Product: "Gadget Max", Period: Period{2023, 1}, Revenue: 250, Margin: 50},
	}
}

func TestSumRevenue(t *testing.T) {
	records := aggregateFixture()
	require.Equal(t, 1000.0, SumRevenue(records, "Widget Pro", Period{2023, 1}))
	require.Equal(t, 800.0, SumRevenue(records, "Widget Pro", Period{2023, 2}))
	// Product arguments are trimmed before matching.
	require.Equal(t, 250.0, SumRevenue(records, " Gadget Max ", Period{2023, 1}))
	// Matching is case-sensitive; empty match sets sum to 0.
	require.Zero(t, SumRevenue(records, "widget pro", Period{2023, 1}))
	require.Zero(t, SumRevenue(records, "Widget Pro", Period{2024, 1}))
}

func TestSumMargin(t *testing.T) {
	records := aggregateFixture()
	require.Equal(t, 400.0, SumMargin(records, "Widget Pro", Period{2023, 1}))
	require.Zero(t, SumMargin(records, "Unknown", Period{2023, 1}))
}

func TestSumRevenueByPeriod(t *testing.T) {
	records := aggregateFixture()
	require.Equal(t, 1250.0, SumRevenueByPeriod(records, Period{2023, 1}))
	require.Equal(t, 800.0, SumRevenueByPeriod(records, Period{2023, 2}))
	require.Zero(t, SumRevenueByPeriod(records, Period{2024, 4}))
}
