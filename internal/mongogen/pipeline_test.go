package mongogen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/querychat/querychat/internal/ir"
)

func TestBuild_CountGroupedByStatus(t *testing.T) {
	p, err := New().Build(&ir.Query{
		From:       "orders",
		Select:     []string{"status"},
		GroupBy:    []string{"status"},
		Aggregates: []ir.Aggregate{{Func: ir.AggCount, Field: "*", Alias: "count_total"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "orders", p.Collection)
	require.Len(t, p.Stages, 2)
	assert.Equal(t, bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$status"},
		{Key: "count_total", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}}, p.Stages[0])
	assert.Equal(t, bson.D{{Key: "$project", Value: bson.D{
		{Key: "status", Value: "$_id"},
		{Key: "count_total", Value: 1},
		{Key: "_id", Value: 0},
	}}}, p.Stages[1])
}

func TestBuild_MatchSortLimit(t *testing.T) {
	p, err := New().Build(&ir.Query{
		From:    "cars",
		Where:   []ir.Condition{{Field: "price", Op: ir.OpGt, Value: ir.Int(20000)}},
		OrderBy: &ir.Ordering{Field: "price", Direction: ir.Descending},
		Limit:   5,
	})
	require.NoError(t, err)
	require.Len(t, p.Stages, 3)
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{
		{Key: "price", Value: bson.D{{Key: "$gt", Value: int64(20000)}}},
	}}}, p.Stages[0])
	assert.Equal(t, bson.D{{Key: "$sort", Value: bson.D{{Key: "price", Value: -1}}}}, p.Stages[1])
	assert.Equal(t, bson.D{{Key: "$limit", Value: int64(5)}}, p.Stages[2])
}

func TestBuild_BareQueryHasNoStages(t *testing.T) {
	p, err := New().Build(&ir.Query{From: "orders"})
	require.NoError(t, err)
	assert.Empty(t, p.Stages)
}

func TestBuild_SelectedColumnsProjectWithoutID(t *testing.T) {
	p, err := New().Build(&ir.Query{From: "orders", Select: []string{"status", "total"}})
	require.NoError(t, err)
	require.Len(t, p.Stages, 1)
	assert.Equal(t, bson.D{{Key: "$project", Value: bson.D{
		{Key: "status", Value: 1},
		{Key: "total", Value: 1},
		{Key: "_id", Value: 0},
	}}}, p.Stages[0])
}

func TestBuild_ExplicitIDStaysProjected(t *testing.T) {
	p, err := New().Build(&ir.Query{From: "orders", Select: []string{"_id", "status"}})
	require.NoError(t, err)
	require.Len(t, p.Stages, 1)
	assert.Equal(t, bson.D{{Key: "$project", Value: bson.D{
		{Key: "_id", Value: 1},
		{Key: "status", Value: 1},
	}}}, p.Stages[0])
}

func TestBuild_LoweredRangeMergesPerField(t *testing.T) {
	p, err := New().Build(&ir.Query{
		From: "cars",
		Where: []ir.Condition{
			{Field: "price", Op: ir.OpGte, Value: ir.Int(20000)},
			{Field: "price", Op: ir.OpLte, Value: ir.Int(40000)},
		},
	})
	require.NoError(t, err)
	require.Len(t, p.Stages, 1)
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{
		{Key: "price", Value: bson.D{
			{Key: "$gte", Value: int64(20000)},
			{Key: "$lte", Value: int64(40000)},
		}},
	}}}, p.Stages[0])
}

func TestBuild_EqualityMergedWithRangeUsesExplicitEq(t *testing.T) {
	p, err := New().Build(&ir.Query{
		From: "cars",
		Where: []ir.Condition{
			{Field: "doors", Op: ir.OpEq, Value: ir.Int(4)},
			{Field: "doors", Op: ir.OpNe, Value: ir.Int(2)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{
		{Key: "doors", Value: bson.D{
			{Key: "$eq", Value: int64(4)},
			{Key: "$ne", Value: int64(2)},
		}},
	}}}, p.Stages[0])
}

func TestBuild_OperatorMappings(t *testing.T) {
	cases := []struct {
		name string
		cond ir.Condition
		want bson.E
	}{
		{"equality", ir.Condition{Field: "status", Op: ir.OpEq, Value: ir.String("Pending")},
			bson.E{Key: "status", Value: "Pending"}},
		{"greater", ir.Condition{Field: "total", Op: ir.OpGt, Value: ir.Int(100)},
			bson.E{Key: "total", Value: bson.D{{Key: "$gt", Value: int64(100)}}}},
		{"less", ir.Condition{Field: "total", Op: ir.OpLt, Value: ir.Int(100)},
			bson.E{Key: "total", Value: bson.D{{Key: "$lt", Value: int64(100)}}}},
		{"at least", ir.Condition{Field: "total", Op: ir.OpGte, Value: ir.Float(9.5)},
			bson.E{Key: "total", Value: bson.D{{Key: "$gte", Value: float64(9.5)}}}},
		{"at most", ir.Condition{Field: "total", Op: ir.OpLte, Value: ir.Float(9.5)},
			bson.E{Key: "total", Value: bson.D{{Key: "$lte", Value: float64(9.5)}}}},
		{"not equal", ir.Condition{Field: "status", Op: ir.OpNe, Value: ir.String("Done")},
			bson.E{Key: "status", Value: bson.D{{Key: "$ne", Value: "Done"}}}},
		{"pattern", ir.Condition{Field: "title", Op: ir.OpLike, Value: ir.String("star")},
			bson.E{Key: "title", Value: bson.D{{Key: "$regex", Value: "star"}, {Key: "$options", Value: "i"}}}},
		{"membership", ir.Condition{Field: "status", Op: ir.OpIn, Raw: "'Pending', 'Shipped'", Value: ir.String("'Pending', 'Shipped'")},
			bson.E{Key: "status", Value: bson.D{{Key: "$in", Value: []any{"Pending", "Shipped"}}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New().Build(&ir.Query{From: "things", Where: []ir.Condition{tc.cond}})
			require.NoError(t, err)
			require.Len(t, p.Stages, 1)
			assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{tc.want}}}, p.Stages[0])
		})
	}
}

func TestBuild_UnloweredRangeLiteralFails(t *testing.T) {
	_, err := New().Build(&ir.Query{
		From:  "cars",
		Where: []ir.Condition{{Field: "price", Op: ir.OpBetween, Raw: "20000 AND 40000"}},
	})
	assert.Error(t, err)
}

func TestBuild_UngroupedAggregateGetsNilGroupKey(t *testing.T) {
	p, err := New().Build(&ir.Query{
		From:       "movies",
		Aggregates: []ir.Aggregate{{Func: ir.AggAvg, Field: "rating", Alias: "avg_rating"}},
	})
	require.NoError(t, err)
	require.Len(t, p.Stages, 2)
	assert.Equal(t, bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "avg_rating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
	}}}, p.Stages[0])
	assert.Equal(t, bson.D{{Key: "$project", Value: bson.D{
		{Key: "avg_rating", Value: 1},
		{Key: "_id", Value: 0},
	}}}, p.Stages[1])
}

func TestBuild_HavingDerivesAccumulatorAndFilter(t *testing.T) {
	p, err := New().Build(&ir.Query{
		From:    "cars",
		Select:  []string{"make"},
		GroupBy: []string{"make"},
		Having:  []ir.Condition{{Field: "AVG(price)", Op: ir.OpGt, Value: ir.Int(100)}},
	})
	require.NoError(t, err)
	require.Len(t, p.Stages, 3)
	assert.Equal(t, bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$make"},
		{Key: "avg_price", Value: bson.D{{Key: "$avg", Value: "$price"}}},
	}}}, p.Stages[0])
	assert.Equal(t, bson.D{{Key: "$project", Value: bson.D{
		{Key: "make", Value: "$_id"},
		{Key: "avg_price", Value: 1},
		{Key: "_id", Value: 0},
	}}}, p.Stages[1])
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{
		{Key: "avg_price", Value: bson.D{{Key: "$gt", Value: int64(100)}}},
	}}}, p.Stages[2])
}

func TestBuild_HavingRejectsNonComparisonOperator(t *testing.T) {
	_, err := New().Build(&ir.Query{
		From:    "cars",
		GroupBy: []string{"make"},
		Having:  []ir.Condition{{Field: "AVG(price)", Op: ir.OpLike, Value: ir.String("x")}},
	})
	assert.Error(t, err)
}

func TestBuild_MissingCollectionFails(t *testing.T) {
	_, err := New().Build(&ir.Query{Select: []string{"*"}})
	assert.Error(t, err)
}
