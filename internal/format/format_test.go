package format

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querychat/querychat/internal/executor"
)

func TestTable_GroupedResult(t *testing.T) {
	result := &executor.Result{
		Columns: []string{"status", "count_total"},
		Rows: []map[string]any{
			{"status": "Pending", "count_total": int64(2)},
			{"status": "Shipped", "count_total": int64(1)},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "table_grouped", []byte(Table(result)))
}

func TestTable_EmptyResult(t *testing.T) {
	assert.Equal(t, "Empty set", Table(&executor.Result{Columns: []string{"status"}, Rows: []map[string]any{}}))
}

func TestTable_SingleRowUsesSingularNoun(t *testing.T) {
	out := Table(&executor.Result{
		Columns: []string{"n"},
		Rows:    []map[string]any{{"n": int64(7)}},
	})
	assert.Contains(t, out, "1 row in set")
}

func TestTable_NullAndFloatRendering(t *testing.T) {
	out := Table(&executor.Result{
		Columns: []string{"price", "note"},
		Rows:    []map[string]any{{"price": 19999.5, "note": nil}},
	})
	assert.Contains(t, out, "19999.5")
	assert.Contains(t, out, "NULL")
}

func TestJSONChunks_EmptyResult(t *testing.T) {
	chunks := JSONChunks(&executor.Result{})
	assert.Equal(t, []string{"No results found."}, chunks)
}

func TestJSONChunks_SingleChunkHasNoTrailingNote(t *testing.T) {
	result := &executor.Result{
		Columns: []string{"status"},
		Rows:    []map[string]any{{"status": "Pending"}},
	}
	chunks := JSONChunks(result)
	require.Len(t, chunks, 1)
	assert.True(t, strings.HasPrefix(chunks[0], "```json\n"))
	assert.True(t, strings.HasSuffix(chunks[0], "\n```"))
	assert.Contains(t, chunks[0], `"status": "Pending"`)
}

func TestJSONChunks_LargeResultSplitsAndNotes(t *testing.T) {
	result := &executor.Result{Columns: []string{"id"}}
	for i := 0; i < 12; i++ {
		result.Rows = append(result.Rows, map[string]any{"id": int64(i)})
	}

	chunks := JSONChunks(result)
	require.Len(t, chunks, 3)
	assert.Equal(t, ChunkSize, strings.Count(chunks[0], `"id"`))
	assert.Equal(t, 2, strings.Count(chunks[1], `"id"`))
	assert.Equal(t, fmt.Sprintf("Showing first %d of 12 results.", ChunkSize), chunks[2])
}

func TestValue(t *testing.T) {
	assert.Equal(t, "NULL", Value(nil))
	assert.Equal(t, "1", Value(true))
	assert.Equal(t, "0", Value(false))
	assert.Equal(t, "3.5", Value(3.5))
	assert.Equal(t, "abc", Value("abc"))
}
