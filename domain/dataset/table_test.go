package dataset

import (
	"math"
	"testing"

	"mlpipe/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := FromColumns(
		NewNumericColumn("a", []float64{1, math.NaN(), 3}),
		NewCategoricalColumn("b", []string{"x", "", "z"}),
		NewBooleanColumn("c", []bool{true, false, true}),
	)
	require.NoError(t, err)
	return tbl
}

func TestTable_AddRejectsLengthMismatch(t *testing.T) {
	tbl := sampleTable(t)
	err := tbl.Add(NewNumericColumn("d", []float64{1}))
	assert.Error(t, err)
}

func TestTable_AddReplacesInPlace(t *testing.T) {
	tbl := sampleTable(t)
	require.NoError(t, tbl.Add(NewNumericColumn("a", []float64{7, 8, 9})))
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Names())

	vals, err := tbl.Numeric("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 8, 9}, vals)
}

func TestTable_NumericErrors(t *testing.T) {
	tbl := sampleTable(t)

	_, err := tbl.Numeric("missing")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)

	_, err = tbl.Numeric("b")
	assert.ErrorIs(t, err, core.ErrColumnType)
}

func TestTable_DropAndRowsCopy(t *testing.T) {
	tbl := sampleTable(t)

	dropped := tbl.Drop("b")
	assert.Equal(t, []string{"a", "c"}, dropped.Names())
	assert.Equal(t, 3, dropped.Len())

	sub := tbl.Rows([]int{2, 0})
	assert.Equal(t, 2, sub.Len())
	b, err := sub.Column("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "x"}, b.Str)

	// the source table is untouched
	a, _ := tbl.Column("a")
	a.Num[0] = 100
	subA, _ := sub.Column("a")
	assert.Equal(t, 1.0, subA.Num[1])
}

func TestColumn_FormatAndMissing(t *testing.T) {
	tbl := sampleTable(t)
	assert.Equal(t, []string{"1", "x", "True"}, tbl.Row(0))
	assert.Equal(t, []string{"", "", "False"}, tbl.Row(1))

	a, _ := tbl.Column("a")
	assert.Equal(t, 1, a.MissingCount())
	assert.Equal(t, []float64{1, 3}, a.Present())
}
