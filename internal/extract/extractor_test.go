package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querychat/querychat/internal/catalog"
	"github.com/querychat/querychat/internal/ir"
)

func testCatalog() *catalog.Snapshot {
	return catalog.New(
		catalog.Entity{Name: "orders", Fields: []string{"status", "total"}},
		catalog.Entity{Name: "cars", Fields: []string{"price", "model"}},
		catalog.Entity{Name: "Products", Fields: []string{"Category", "Price"}},
	)
}

func TestExtract_CountGroupedByStatus(t *testing.T) {
	q, err := Default().Extract("count orders grouped by status", testCatalog())
	require.NoError(t, err)

	assert.Equal(t, "orders", q.From)
	require.Len(t, q.Aggregates, 1)
	assert.Equal(t, ir.Aggregate{Func: ir.AggCount, Field: "*", Alias: "count_total"}, q.Aggregates[0])
	assert.Equal(t, []string{"status"}, q.GroupBy)
	assert.Equal(t, []string{"status"}, q.Select)
	assert.Empty(t, q.Where)
}

func TestExtract_WhereOrderLimit(t *testing.T) {
	q, err := Default().Extract("show cars where price > 20000 order by price desc limit 5", testCatalog())
	require.NoError(t, err)

	assert.Equal(t, "cars", q.From)
	assert.Empty(t, q.Aggregates)
	require.Len(t, q.Where, 1)
	assert.Equal(t, ir.Condition{Field: "price", Op: ir.OpGt, Value: ir.Int(20000)}, q.Where[0])
	require.NotNil(t, q.OrderBy)
	assert.Equal(t, ir.Ordering{Field: "price", Direction: ir.Descending}, *q.OrderBy)
	assert.Equal(t, 5, q.Limit)
}

func TestExtract_UnresolvedTarget(t *testing.T) {
	_, err := Default().Extract("average rating from movies", testCatalog())
	require.Error(t, err)
	assert.True(t, IsUnresolvedTarget(err))

	var ute *UnresolvedTargetError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, []string{"orders", "cars", "Products"}, ute.Known)
}

func TestExtract_PrepositionAnchoredEntity(t *testing.T) {
	// "avg price from Products": the entity is only reachable through the
	// preposition; the catalog supplies the durable casing.
	q, err := Default().Extract("average price of Products", testCatalog())
	require.NoError(t, err)
	assert.Equal(t, "Products", q.From)
	require.Len(t, q.Aggregates, 1)
	assert.Equal(t, ir.Aggregate{Func: ir.AggAvg, Field: "price", Alias: "avg_price"}, q.Aggregates[0])
	assert.Nil(t, q.Select)
}

func TestExtract_ValueKeepsOriginalCase(t *testing.T) {
	q, err := Default().Extract("show Orders where Status is Pending", testCatalog())
	require.NoError(t, err)
	require.Len(t, q.Where, 1)
	assert.Equal(t, "Status", q.Where[0].Field)
	assert.Equal(t, ir.String("Pending"), q.Where[0].Value)
}

func TestExtract_IsNotBeatsBareIs(t *testing.T) {
	q, err := Default().Extract("show orders where status is not Cancelled", testCatalog())
	require.NoError(t, err)
	require.Len(t, q.Where, 1)
	assert.Equal(t, ir.Condition{Field: "status", Op: ir.OpNe, Value: ir.String("Cancelled")}, q.Where[0])
}

func TestExtract_BetweenLowersBeforeConjunctionSplit(t *testing.T) {
	q, err := Default().Extract("show cars where price between 10000 and 20000 and model is Corolla", testCatalog())
	require.NoError(t, err)
	require.Len(t, q.Where, 3)
	assert.Equal(t, ir.Condition{Field: "price", Op: ir.OpGte, Value: ir.Int(10000)}, q.Where[0])
	assert.Equal(t, ir.Condition{Field: "price", Op: ir.OpLte, Value: ir.Int(20000)}, q.Where[1])
	assert.Equal(t, ir.Condition{Field: "model", Op: ir.OpEq, Value: ir.String("Corolla")}, q.Where[2])
}

func TestExtract_ConjunctionSplit(t *testing.T) {
	q, err := Default().Extract("show cars where price at least 10000 and price at most 30000", testCatalog())
	require.NoError(t, err)
	require.Len(t, q.Where, 2)
	assert.Equal(t, ir.OpGte, q.Where[0].Op)
	assert.Equal(t, ir.OpLte, q.Where[1].Op)
}

func TestExtract_InListKeepsRawCapture(t *testing.T) {
	q, err := Default().Extract("show orders where status in ('Pending', 'Completed')", testCatalog())
	require.NoError(t, err)
	require.Len(t, q.Where, 1)
	assert.Equal(t, ir.OpIn, q.Where[0].Op)
	assert.Equal(t, "'Pending', 'Completed'", q.Where[0].Raw)
}

func TestExtract_LikeFromContains(t *testing.T) {
	q, err := Default().Extract("show orders where status contains Pend", testCatalog())
	require.NoError(t, err)
	require.Len(t, q.Where, 1)
	assert.Equal(t, ir.Condition{Field: "status", Op: ir.OpLike, Value: ir.String("Pend")}, q.Where[0])
}

func TestExtract_WhereRegionDoesNotFeedAggregates(t *testing.T) {
	// "total" is a SUM phrase variant but sits inside the condition region.
	q, err := Default().Extract("show orders where total greater than 100", testCatalog())
	require.NoError(t, err)
	assert.Empty(t, q.Aggregates)
	require.Len(t, q.Where, 1)
	assert.Equal(t, ir.Condition{Field: "total", Op: ir.OpGt, Value: ir.Int(100)}, q.Where[0])
}

func TestExtract_GroupByMultipleFields(t *testing.T) {
	q, err := Default().Extract("count orders grouped by status and total", testCatalog())
	require.NoError(t, err)
	assert.Equal(t, []string{"status", "total"}, q.GroupBy)
	assert.Equal(t, []string{"status", "total"}, q.Select)
}

func TestExtract_GroupByStopsAtFollowingClauseCue(t *testing.T) {
	q, err := Default().Extract("count orders grouped by status and sorted by total", testCatalog())
	require.NoError(t, err)

	assert.Equal(t, []string{"status"}, q.GroupBy)
	require.NotNil(t, q.OrderBy)
	assert.Equal(t, ir.Ordering{Field: "total", Direction: ir.Ascending}, *q.OrderBy)
}

func TestExtract_GroupByPer(t *testing.T) {
	q, err := Default().Extract("sum of total orders per status", testCatalog())
	require.NoError(t, err)
	assert.Equal(t, []string{"status"}, q.GroupBy)
	require.Len(t, q.Aggregates, 1)
	assert.Equal(t, ir.AggSum, q.Aggregates[0].Func)
	assert.Equal(t, "total", q.Aggregates[0].Field)
}

func TestExtract_HavingRewrite(t *testing.T) {
	q, err := Default().Extract("show Products category having average price greater than 100", testCatalog())
	require.NoError(t, err)

	require.Len(t, q.Having, 1)
	assert.Equal(t, ir.Condition{Field: "AVG(price)", Op: ir.OpGt, Value: ir.Int(100)}, q.Having[0])
	assert.Equal(t, []string{"category"}, q.GroupBy)
	assert.Equal(t, []string{"category"}, q.Select)
	// The aggregate pass claimed AVG(price) from the same phrase; the
	// rewrite must remove it so the projection stays the grouping field.
	assert.Empty(t, q.Aggregates)
}

func TestExtract_OrderByDefaultsAscending(t *testing.T) {
	q, err := Default().Extract("show orders sorted by total", testCatalog())
	require.NoError(t, err)
	require.NotNil(t, q.OrderBy)
	assert.Equal(t, ir.Ordering{Field: "total", Direction: ir.Ascending}, *q.OrderBy)
}

func TestExtract_TopN(t *testing.T) {
	q, err := Default().Extract("top 10 cars sorted by price descending", testCatalog())
	require.NoError(t, err)
	assert.Equal(t, 10, q.Limit)
	require.NotNil(t, q.OrderBy)
	assert.Equal(t, ir.Descending, q.OrderBy.Direction)
}

func TestExtract_UnmatchedConditionIsDroppedNotFatal(t *testing.T) {
	q, err := Default().Extract("show orders where status resembles Pending", testCatalog())
	require.NoError(t, err)
	// "resembles" maps to no operator: the clause is dropped, nothing else.
	assert.Equal(t, "orders", q.From)
	for _, c := range q.Where {
		assert.NotEqual(t, "resembles", c.Field)
	}
}

func TestExtract_WhitespaceAndCaseNormalization(t *testing.T) {
	q, err := Default().Extract("  SHOW   CARS   where   price  >  1000 ", testCatalog())
	require.NoError(t, err)
	assert.Equal(t, "cars", q.From)
	require.Len(t, q.Where, 1)
	assert.Equal(t, ir.Int(1000), ir.ParseValue("1000"))
	assert.Equal(t, ir.OpGt, q.Where[0].Op)
}
