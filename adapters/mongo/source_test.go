package mongo

import (
	"math"
	"testing"

	"mlpipe/domain/core"
	"mlpipe/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDocumentsToTable(t *testing.T) {
	id := primitive.NewObjectID()
	docs := []bson.D{
		{{Key: "_id", Value: id}, {Key: "Time_spent_Alone", Value: 4.0}, {Key: "Stage_fear", Value: "No"}},
		{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "Time_spent_Alone", Value: int32(9)}, {Key: "Stage_fear", Value: nil}, {Key: "flag", Value: true}},
		{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "Stage_fear", Value: "Yes"}},
	}

	table, err := DocumentsToTable(docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"_id", "Time_spent_Alone", "Stage_fear", "flag"}, table.Names())
	assert.Equal(t, 3, table.Len())

	ids, _ := table.Column("_id")
	assert.Equal(t, dataset.KindCategorical, ids.Kind)
	assert.Equal(t, id.Hex(), ids.Str[0])

	alone, _ := table.Column("Time_spent_Alone")
	assert.Equal(t, dataset.KindNumeric, alone.Kind)
	assert.Equal(t, 4.0, alone.Num[0])
	assert.Equal(t, 9.0, alone.Num[1])
	assert.True(t, math.IsNaN(alone.Num[2]))

	fear, _ := table.Column("Stage_fear")
	assert.Equal(t, []string{"No", "", "Yes"}, fear.Str)

	flag, _ := table.Column("flag")
	assert.Equal(t, dataset.KindBoolean, flag.Kind)
	assert.Equal(t, 2, flag.MissingCount())
}

func TestDocumentsToTable_MixedTypesAreCategorical(t *testing.T) {
	docs := []bson.D{
		{{Key: "v", Value: int64(1)}},
		{{Key: "v", Value: "two"}},
	}
	table, err := DocumentsToTable(docs)
	require.NoError(t, err)
	v, _ := table.Column("v")
	assert.Equal(t, []string{"1", "two"}, v.Str)
}

func TestDocumentsToTable_Empty(t *testing.T) {
	_, err := DocumentsToTable(nil)
	assert.ErrorIs(t, err, core.ErrEmptyDataset)
}
