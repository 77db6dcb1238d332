package ml

import (
	"path/filepath"
	"testing"

	"mlpipe/domain/core"
	"mlpipe/domain/dataset"
	"mlpipe/domain/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func separable() (*mat.Dense, []float64) {
	x := mat.NewDense(6, 1, []float64{-2, -1, -0.5, 0.5, 1, 2})
	return x, []float64{0, 0, 0, 1, 1, 1}
}

func TestLogisticRegression_Solvers(t *testing.T) {
	for _, solver := range []string{SolverLBFGS, SolverNewtonCG} {
		t.Run(solver, func(t *testing.T) {
			x, y := separable()
			clf := NewLogisticRegression(1.0, 1000, solver)
			require.NoError(t, clf.Fit(x, y))

			assert.Equal(t, 1, clf.NFeatures())
			assert.Greater(t, clf.Coef[0], 0.0)
			assert.InDelta(t, 0.0, clf.Intercept, 1e-3)

			pred, err := clf.Predict(x)
			require.NoError(t, err)
			assert.Equal(t, y, pred)

			proba, err := clf.PredictProba(x)
			require.NoError(t, err)
			assert.Less(t, proba[0], 0.5)
			assert.Greater(t, proba[5], 0.5)
		})
	}
}

func TestLogisticRegression_Errors(t *testing.T) {
	x, _ := separable()

	err := NewLogisticRegression(1, 100, SolverLBFGS).Fit(x, []float64{1, 1, 1, 1, 1, 1})
	assert.ErrorIs(t, err, core.ErrSingleClass)

	err = NewLogisticRegression(1, 100, "sag").Fit(x, []float64{0, 0, 0, 1, 1, 1})
	assert.Error(t, err)

	_, err = NewLogisticRegression(1, 100, SolverLBFGS).Predict(x)
	assert.ErrorIs(t, err, core.ErrNotFitted)

	clf := NewLogisticRegression(1, 100, SolverLBFGS)
	require.NoError(t, clf.Fit(x, []float64{0, 0, 0, 1, 1, 1}))
	_, err = clf.Predict(mat.NewDense(1, 2, nil))
	assert.ErrorIs(t, err, core.ErrFeatureMismatch)
}

func TestScore(t *testing.T) {
	m, err := Score([]float64{1, 1, 0, 0}, []float64{1, 0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, ClassificationMetrics{Accuracy: 0.5, F1: 0.5, Precision: 0.5, Recall: 0.5}, m)

	// no predicted or actual positives
	m, err = Score([]float64{0, 0}, []float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Accuracy)
	assert.Equal(t, 0.0, m.F1)
	assert.Equal(t, 0.0, m.Precision)

	_, err = Score([]float64{1}, nil)
	assert.Error(t, err)
}

func sampleFeatures() schema.Features {
	return schema.Features{
		BinColumn:   "a",
		PolyColumns: []string{"a", "b"},
		Interactions: []schema.Interaction{
			{Name: "ratio", Op: OpRatioPlusOne, Inputs: []string{"a", "b"}},
			{Name: "overload", Op: OpProduct, Inputs: []string{"flag", "b"}},
		},
	}
}

func sampleTable(t *testing.T) (*dataset.Table, []float64) {
	t.Helper()
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	b := []float64{9, 8, 9, 7, 6, 5, 5, 4, 3, 2, 2, 1}
	flag := []bool{false, false, true, false, true, false, true, true, false, true, true, true}
	y := []float64{0, 0, 0, 0, 0, 1, 0, 1, 1, 1, 1, 1}

	table, err := dataset.FromColumns(
		dataset.NewNumericColumn("a", a),
		dataset.NewNumericColumn("b", b),
		dataset.NewBooleanColumn("flag", flag),
	)
	require.NoError(t, err)
	return table, y
}

func TestPreprocessor_FeatureLayout(t *testing.T) {
	table, _ := sampleTable(t)
	edges, err := TertileEdges(mustNumeric(t, table, "a"))
	require.NoError(t, err)

	p := NewPreprocessor(sampleFeatures(), edges)
	x, err := p.FitTransform(table)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "flag", "ratio", "overload", "a_Binned_Medium", "a_Binned_High", "a b"}, p.FeatureNames)
	rows, cols := x.Dims()
	assert.Equal(t, 12, rows)
	assert.Equal(t, 8, cols)

	// scaled training columns are centered
	for j := 0; j < cols; j++ {
		var sum float64
		for i := 0; i < rows; i++ {
			sum += x.At(i, j)
		}
		assert.InDelta(t, 0, sum, 1e-9, "column %s", p.FeatureNames[j])
	}

	_, err = p.Transform(table.Drop("flag"))
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestModel_RoundTripPredictsIdentically(t *testing.T) {
	table, y := sampleTable(t)
	edges, err := TertileEdges(mustNumeric(t, table, "a"))
	require.NoError(t, err)

	p := NewPreprocessor(sampleFeatures(), edges)
	p.TargetClasses = []string{"Extrovert", "Introvert"}
	x, err := p.FitTransform(table)
	require.NoError(t, err)

	clf := NewLogisticRegression(1.0, 1000, SolverLBFGS)
	require.NoError(t, clf.Fit(x, y))

	model := &Model{Preprocessor: p, Classifier: *clf}
	before, err := model.Predict(table)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, model.Save(path))
	loaded, err := LoadModel(path)
	require.NoError(t, err)

	after, err := loaded.Predict(table)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	labels, err := loaded.PredictLabels(table)
	require.NoError(t, err)
	assert.Len(t, labels, table.Len())

	data, err := model.Marshal()
	require.NoError(t, err)
	decoded, err := UnmarshalModel(data)
	require.NoError(t, err)
	assert.Equal(t, model.NFeatures(), decoded.NFeatures())

	_, err = UnmarshalModel([]byte(`{}`))
	assert.ErrorIs(t, err, core.ErrNotFitted)
}

func TestPreprocessor_SaveLoad(t *testing.T) {
	table, _ := sampleTable(t)
	edges, err := TertileEdges(mustNumeric(t, table, "a"))
	require.NoError(t, err)
	p := NewPreprocessor(sampleFeatures(), edges)
	want, err := p.FitTransform(table)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "transformer", "preprocessor.json")
	require.NoError(t, p.Save(path))
	loaded, err := LoadPreprocessor(path)
	require.NoError(t, err)

	got, err := loaded.Transform(table)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-12))
}

func mustNumeric(t *testing.T, table *dataset.Table, name string) []float64 {
	t.Helper()
	vals, err := table.Numeric(name)
	require.NoError(t, err)
	return vals
}
