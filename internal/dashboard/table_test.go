package dashboard

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTableFixture(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sh := "Raw"
	f.SetSheetName("Sheet1", sh)
	require.NoError(t, f.SetSheetRow(sh, "A1", &[]string{"Product", "Year", "Quarter", "Revenue", "Margin"}))
	require.NoError(t, f.SetSheetRow(sh, "A2", &[]string{"Widget Pro", "2023", "Q1", "600", "240"}))
	require.NoError(t, f.SetSheetRow(sh, "A3", &[]string{"Gadget Max", "2023", "Q1", "250", "50"}))
	return f
}

func TestReadTable_A1Range(t *testing.T) {
	f := newTableFixture(t)
	defer f.Close()

	table, normalized, meta, err := readTable(f, "Raw", "A1:E3", 1000)
	require.NoError(t, err)
	require.Equal(t, "A1:E3", normalized)
	require.Len(t, table, 3)
	require.Equal(t, "Product", table[0][0])
	require.Equal(t, "250", table[2][3])
	require.Equal(t, 2, meta.ProcessedRows)
	require.False(t, meta.Truncated)
}

func TestReadTable_ReversedCornersNormalize(t *testing.T) {
	f := newTableFixture(t)
	defer f.Close()

	_, normalized, _, err := readTable(f, "Raw", "E3:A1", 1000)
	require.NoError(t, err)
	require.Equal(t, "A1:E3", normalized)
}

func TestReadTable_SheetQualifiedRange(t *testing.T) {
	f := newTableFixture(t)
	defer f.Close()

	_, _, _, err := readTable(f, "Raw", "Raw!A1:E3", 1000)
	require.NoError(t, err)

	_, _, _, err = readTable(f, "Raw", "Other!A1:E3", 1000)
	require.Error(t, err)
}

func TestReadTable_DefinedName(t *testing.T) {
	f := newTableFixture(t)
	defer f.Close()

	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{
		Name:     "RawData",
		RefersTo: "Raw!$A$1:$E$3",
	}))

	table, normalized, _, err := readTable(f, "Raw", "RawData", 1000)
	require.NoError(t, err)
	require.Equal(t, "A1:E3", normalized)
	require.Len(t, table, 3)

	// Surrounding whitespace is tolerated, same as for A1 ranges.
	table, _, _, err = readTable(f, "Raw", "  RawData ", 1000)
	require.NoError(t, err)
	require.Len(t, table, 3)
}

func TestReadTable_InvalidRange(t *testing.T) {
	f := newTableFixture(t)
	defer f.Close()

	for _, ref := range []string{"", "NoSuchName", "A1:B2:C3", "ZZ:1"} {
		_, _, _, err := readTable(f, "Raw", ref, 1000)
		require.Error(t, err, "ref %q", ref)
	}
}
