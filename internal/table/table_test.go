package table_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"macroagg/internal/etlerr"
	"macroagg/internal/table"
)

func TestNew_RejectsRaggedRows(t *testing.T) {
	t.Parallel()

	_, err := table.New([]string{"quarter", "value"}, [][]table.Value{
		{table.Str("2023-Q1"), table.Num(1)},
		{table.Str("2023-Q2")},
	})
	var fe *etlerr.FormatError
	require.True(t, errors.As(err, &fe), "expected FormatError, got %v", err)
}

func TestNew_RejectsDuplicateColumns(t *testing.T) {
	t.Parallel()

	_, err := table.New([]string{"quarter", "quarter"}, nil)
	require.Error(t, err)
}

func TestNew_CopiesInput(t *testing.T) {
	t.Parallel()

	row := []table.Value{table.Str("2023-Q1"), table.Num(1)}
	tb, err := table.New([]string{"quarter", "value"}, [][]table.Value{row})
	require.NoError(t, err)

	row[1] = table.Num(99)
	got, ok := tb.Row(0)[1].Float()
	require.True(t, ok)
	require.InDelta(t, 1.0, got, 1e-9)
}

func TestRenameSelectSort(t *testing.T) {
	t.Parallel()

	tb, err := table.New([]string{"quarter", "value", "extra"}, [][]table.Value{
		{table.Str("2023-Q2"), table.Num(2), table.Str("b")},
		{table.Str("2023-Q1"), table.Num(1), table.Str("a")},
	})
	require.NoError(t, err)

	renamed, err := tb.Rename("value", "eur_to_usd")
	require.NoError(t, err)
	require.Equal(t, []string{"quarter", "eur_to_usd", "extra"}, renamed.Columns())
	require.Equal(t, []string{"quarter", "value", "extra"}, tb.Columns(), "input must not change")

	_, err = renamed.Rename("eur_to_usd", "extra")
	require.Error(t, err)

	sel, err := renamed.Select("eur_to_usd", "quarter")
	require.NoError(t, err)
	require.Equal(t, []string{"eur_to_usd", "quarter"}, sel.Columns())

	sorted, err := sel.SortBy("quarter")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"1", "2023-Q1"}, {"2", "2023-Q2"}}, sorted.Records())
}

func TestValueString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", table.NullValue().String())
	require.Equal(t, "1.1", table.Num(1.1).String())
	require.Equal(t, "110", table.Num(110).String())
	require.Equal(t, "2023-Q1", table.Str("2023-Q1").String())

	_, ok := table.Str("1").Float()
	require.False(t, ok)
	require.True(t, table.NullValue().IsNull())
}
