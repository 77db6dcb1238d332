package profiling

import (
	"math"
	"testing"

	"mlpipe/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestProfileTable(t *testing.T) {
	table, err := dataset.FromColumns(
		dataset.NewNumericColumn("x", []float64{1, 2, 3, 4, 100, math.NaN()}),
		dataset.NewCategoricalColumn("c", []string{"b", "a", "b", "", "a", "b"}),
		dataset.NewNumericColumn("empty", []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()}),
	)
	require.NoError(t, err)

	profiles := NewDataProfiler().ProfileTable(table)
	require.Len(t, profiles, 3)

	x := profiles[0]
	assert.Equal(t, 6, x.Count)
	assert.Equal(t, 1, x.Missing)
	require.NotNil(t, x.Summary)
	assert.Equal(t, 3.0, x.Summary.Median)
	assert.Equal(t, 2.0, x.Summary.Q25)
	assert.Equal(t, 4.0, x.Summary.Q75)
	assert.Equal(t, 100.0, x.Summary.Max)
	assert.Equal(t, 1, x.Distribution.Outliers)

	c := profiles[1]
	assert.Equal(t, dataset.KindCategorical, c.Kind)
	assert.Equal(t, 2, c.Distinct)
	assert.Equal(t, "b", c.TopValue)
	assert.Nil(t, c.Summary)

	assert.Nil(t, profiles[2].Summary)
	assert.Equal(t, 6, profiles[2].Missing)
}

func TestAnalyzeDistribution_ShapeMarkers(t *testing.T) {
	analyzer := NewDistributionAnalyzer()

	uniform := make([]float64, 1000)
	for i := range uniform {
		uniform[i] = float64(i)
	}
	_, dist, err := analyzer.AnalyzeDistribution(uniform)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, dist.Skewness, 1e-9)
	assert.InDelta(t, -1.2, dist.ExcessKurtosis, 0.01)
	assert.False(t, dist.IsNormal)
	assert.Less(t, dist.NormalityP, 0.001)

	unit := distuv.UnitNormal
	normal := make([]float64, 500)
	for i := range normal {
		normal[i] = unit.Quantile((float64(i) + 0.5) / float64(len(normal)))
	}
	_, dist, err = analyzer.AnalyzeDistribution(normal)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, dist.Skewness, 1e-6)
	assert.InDelta(t, 0.0, dist.ExcessKurtosis, 0.2)
	assert.True(t, dist.IsNormal)
}

func TestAnalyzeDistribution_ConstantColumnHasNoShape(t *testing.T) {
	summary, dist, err := NewDistributionAnalyzer().AnalyzeDistribution([]float64{5, 5, 5, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, summary.Median)
	assert.Zero(t, dist.Skewness)
	assert.Zero(t, dist.ExcessKurtosis)
	assert.False(t, dist.IsNormal)
}
