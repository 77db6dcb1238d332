package testkit

import (
	"context"
	"math"
	"testing"

	"mlpipe/domain/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonalityDataGenerator_MatchesDefaultSchema(t *testing.T) {
	table := NewPersonalityDataGenerator(DefaultPersonalityConfig()).Generate()
	sch, err := schema.Default()
	require.NoError(t, err)

	assert.Equal(t, 100, table.Len())
	assert.Equal(t, append([]string{"_id"}, sch.ColumnNames()...), table.Names())

	target, err := table.Column(sch.TargetColumn)
	require.NoError(t, err)
	counts := map[string]int{}
	for _, v := range target.Str {
		counts[v]++
	}
	assert.Equal(t, map[string]int{LabelIntrovert: 50, LabelExtrovert: 50}, counts)

	friends, err := table.Numeric("Friends_circle_size")
	require.NoError(t, err)
	assert.Equal(t, 60.0, friends[0])
}

func TestPersonalityDataGenerator_Deterministic(t *testing.T) {
	cfg := DefaultPersonalityConfig()
	a := NewPersonalityDataGenerator(cfg).Generate()
	b := NewPersonalityDataGenerator(cfg).Generate()

	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, a.Row(i), b.Row(i))
	}
}

func TestPersonalityDataGenerator_NoMissingWhenRateZero(t *testing.T) {
	cfg := DefaultPersonalityConfig()
	cfg.MissingRate = 0
	cfg.WithID = false
	table := NewPersonalityDataGenerator(cfg).Generate()

	for _, col := range table.Columns() {
		assert.Zero(t, col.MissingCount(), col.Name)
	}
	alone, err := table.Numeric("Time_spent_Alone")
	require.NoError(t, err)
	for _, v := range alone {
		assert.False(t, math.IsNaN(v))
	}
}

func TestMemorySource_ReturnsCopies(t *testing.T) {
	kit := NewTestKit()
	src := kit.Source()

	first, err := src.ExportCollection(context.Background(), "db", "coll")
	require.NoError(t, err)
	first = first.Drop("_id")

	second, err := src.ExportCollection(context.Background(), "db", "coll")
	require.NoError(t, err)
	assert.True(t, second.Has("_id"))
	assert.Equal(t, 2, src.Calls)
	assert.False(t, first.Has("_id"))
}
