package dashboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRecords_Basic(t *testing.T) {
	table := [][]string{
		{"Product", "Year", "Quarter", "Revenue", "Margin"},
		{"Widget Pro", "2023", "Q1", "600", "240"},
		{" Widget Pro ", "2023", "1", "400", "160"},
	}
	records, err := LoadRecords(table, LoaderConfig{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, RawRecord{Product: "Widget Pro", Period: Period{2023, 1}, Revenue: 600, Margin: 240}, records[0])
	// Product names are trimmed; quarter accepts a bare digit.
	require.Equal(t, "Widget Pro", records[1].Product)
	require.Equal(t, Period{2023, 1}, records[1].Period)
}

func TestLoadRecords_MissingHeader(t *testing.T) {
	table := [][]string{
		{"Product", "Year", "Quarter", "Revenue"},
		{"Widget Pro", "2023", "Q1", "600"},
	}
	_, err := LoadRecords(table, LoaderConfig{})
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, "Margin", schemaErr.Header)
}

func TestLoadRecords_EmptyTable(t *testing.T) {
	_, err := LoadRecords(nil, LoaderConfig{})
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
}

func TestLoadRecords_HeaderOnly(t *testing.T) {
	table := [][]string{{"Product", "Year", "Quarter", "Revenue", "Margin"}}
	_, err := LoadRecords(table, LoaderConfig{})
	require.ErrorIs(t, err, ErrEmptyDataset)
}

func TestLoadRecords_SkipsRowsWithoutPeriodKey(t *testing.T) {
	table := [][]string{
		{"Product", "Year", "Quarter", "Revenue", "Margin"},
		{"A", "", "Q1", "100", "10"},
		{"B", "2023", "", "100", "10"},
		{"C", "20x3", "Q1", "100", "10"},
		{"D", "2023", "Q7", "100", "10"},
		{"E", "2023", "Q1", "100", "10"},
	}
	records, err := LoadRecords(table, LoaderConfig{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "E", records[0].Product)
}

func TestLoadRecords_CoercesDirtyNumbers(t *testing.T) {
	table := [][]string{
		{"Product", "Year", "Quarter", "Revenue", "Margin"},
		{"A", "2023", "Q1", "$1,200.50", "40%"},
		{"B", "2023", "Q1", "n/a", ""},
	}
	records, err := LoadRecords(table, LoaderConfig{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.InDelta(t, 1200.50, records[0].Revenue, 1e-9)
	require.InDelta(t, 0.40, records[0].Margin, 1e-9)
	require.Zero(t, records[1].Revenue)
	require.Zero(t, records[1].Margin)
}

func TestLoadRecords_CustomColumns(t *testing.T) {
	table := [][]string{
		{"SKU", "Year", "Quarter", "Revenue", "GM"},
		{"A", "2023", "Q1", "100", "35"},
	}
	cfg := LoaderConfig{ProductColumn: "SKU", MarginColumn: "GM"}
	records, err := LoadRecords(table, cfg)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 35.0, records[0].Margin)
}

func TestLoadRecords_ShortRowsAndDuplicateHeaders(t *testing.T) {
	// First occurrence of a duplicate header wins; short rows read as blanks.
	table := [][]string{
		{"Product", "Year", "Quarter", "Revenue", "Margin", "Revenue"},
		{"A", "2023", "Q1", "100"},
	}
	records, err := LoadRecords(table, LoaderConfig{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 100.0, records[0].Revenue)
	require.Zero(t, records[0].Margin)
}
