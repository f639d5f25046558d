package dashboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePeriod_CanonicalAndTolerantForms(t *testing.T) {
	cases := []struct {
		label string
		want  Period
	}{
		{"2023 Q1", Period{Year: 2023, Quarter: 1}},
		{"2024 Q4", Period{Year: 2024, Quarter: 4}},
		{"  2023 Q2  ", Period{Year: 2023, Quarter: 2}},
		{"2023 q3", Period{Year: 2023, Quarter: 3}},
		{"2023  Q1", Period{Year: 2023, Quarter: 1}},
		{"2023 1", Period{Year: 2023, Quarter: 1}},
	}
	for _, tc := range cases {
		p, err := ParsePeriod(tc.label)
		require.NoError(t, err, "label %q", tc.label)
		require.Equal(t, tc.want, p, "label %q", tc.label)
	}
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, label := range []string{
		"",
		"2023",
		"2023 Q5",
		"2023 Q0",
		"Q1 2023",
		"abcd Q1",
		"0 Q1",
		"-3 Q1",
		"2023 Q1 extra",
	} {
		_, err := ParsePeriod(label)
		require.Error(t, err, "label %q", label)
		var pfe *PeriodFormatError
		require.True(t, errors.As(err, &pfe), "label %q", label)
		require.Equal(t, label, pfe.Label)
	}
}

func TestPeriodLabelRoundTrip(t *testing.T) {
	p := Period{Year: 2024, Quarter: 3}
	require.Equal(t, "2024 Q3", p.Label())
	back, err := ParsePeriod(p.Label())
	require.NoError(t, err)
	require.Equal(t, p, back)
}

func TestPeriodOrdering(t *testing.T) {
	require.True(t, Period{2023, 4}.Before(Period{2024, 1}))
	require.True(t, Period{2023, 1}.Before(Period{2023, 2}))
	require.False(t, Period{2024, 1}.Before(Period{2023, 4}))
	require.False(t, Period{2023, 2}.Before(Period{2023, 2}))
}

func TestPeriodPriorYear(t *testing.T) {
	require.Equal(t, Period{Year: 2023, Quarter: 2}, Period{Year: 2024, Quarter: 2}.PriorYear())
}
