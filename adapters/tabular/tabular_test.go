package tabular

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"mlpipe/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"
)

func TestReadCSV_InfersKinds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	content := "num,cat,flag,empty\n" +
		"1.5,Yes,True,\n" +
		",No,False,\n" +
		"3,,True,NaN\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	num, err := table.Column("num")
	require.NoError(t, err)
	assert.Equal(t, dataset.KindNumeric, num.Kind)
	assert.Equal(t, 1.5, num.Num[0])
	assert.True(t, math.IsNaN(num.Num[1]))

	cat, _ := table.Column("cat")
	assert.Equal(t, dataset.KindCategorical, cat.Kind)
	assert.Equal(t, []string{"Yes", "No", ""}, cat.Str)

	flag, _ := table.Column("flag")
	assert.Equal(t, dataset.KindBoolean, flag.Kind)
	assert.Equal(t, []float64{1, 0, 1}, flag.Num)

	empty, _ := table.Column("empty")
	assert.Equal(t, dataset.KindNumeric, empty.Kind)
	assert.Equal(t, 3, empty.MissingCount())
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	table, err := dataset.FromColumns(
		dataset.NewNumericColumn("x", []float64{0.25, math.NaN()}),
		dataset.NewBooleanColumn("Stage_fear_Yes", []bool{true, false}),
		dataset.NewCategoricalColumn("c", []string{"a", "b"}),
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	require.NoError(t, WriteCSV(path, table))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x,Stage_fear_Yes,c\n0.25,True,a\n,False,b\n", string(raw))

	back, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, table.Names(), back.Names())
	flag, _ := back.Column("Stage_fear_Yes")
	assert.Equal(t, dataset.KindBoolean, flag.Kind)
}

func TestReadTable_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"a", "b"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1, "x"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{2, "y"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewDataReader(path).ReadTable()
	require.NoError(t, err)
	a, err := table.Numeric("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, a)
}

func TestReadTable_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestMatrix_RoundTrip(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	path := filepath.Join(t.TempDir(), "train", "train.bin")

	require.NoError(t, SaveMatrix(path, m))
	back, err := LoadMatrix(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, back))
}
