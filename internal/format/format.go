// Package format renders result sets for terminal output: a bordered ASCII
// table for relational results, pretty-printed JSON chunks for document
// results.
package format

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/querychat/querychat/internal/executor"
)

// ChunkSize is the number of rows rendered per JSON chunk.
const ChunkSize = 10

// Table renders a result set as a bordered ASCII table with a trailing row
// count. An empty result renders as "Empty set".
func Table(result *executor.Result) string {
	if result.Len() == 0 {
		return "Empty set"
	}
	columns := result.Columns

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	cells := make([][]string, 0, result.Len())
	for _, row := range result.Rows {
		line := make([]string, len(columns))
		for i, col := range columns {
			line[i] = Value(row[col])
			if len(line[i]) > widths[i] {
				widths[i] = len(line[i])
			}
		}
		cells = append(cells, line)
	}

	var border strings.Builder
	border.WriteByte('+')
	for _, w := range widths {
		border.WriteString(strings.Repeat("-", w+2))
		border.WriteByte('+')
	}

	var b strings.Builder
	b.WriteString(border.String())
	b.WriteByte('\n')
	writeRow(&b, columns, widths)
	b.WriteString(border.String())
	b.WriteByte('\n')
	for _, line := range cells {
		writeRow(&b, line, widths)
	}
	b.WriteString(border.String())
	b.WriteByte('\n')

	noun := "rows"
	if result.Len() == 1 {
		noun = "row"
	}
	fmt.Fprintf(&b, "\n%d %s in set\n", result.Len(), noun)
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	b.WriteByte('|')
	for i, cell := range cells {
		b.WriteByte(' ')
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
		b.WriteString(" |")
	}
	b.WriteByte('\n')
}

// JSONChunks renders a document result as fenced, pretty-printed JSON
// blocks, ChunkSize rows per chunk, with a trailing note when the result
// was larger than one chunk. An empty result yields a single
// "No results found." entry.
func JSONChunks(result *executor.Result) []string {
	if result.Len() == 0 {
		return []string{"No results found."}
	}

	var chunks []string
	for lo := 0; lo < result.Len(); lo += ChunkSize {
		hi := lo + ChunkSize
		if hi > result.Len() {
			hi = result.Len()
		}
		chunk := make([]map[string]any, 0, hi-lo)
		for _, row := range result.Rows[lo:hi] {
			chunk = append(chunk, printable(row))
		}
		encoded, err := json.MarshalIndent(chunk, "", "  ")
		if err != nil {
			encoded = []byte(fmt.Sprintf("%v", chunk))
		}
		chunks = append(chunks, "```json\n"+string(encoded)+"\n```")
	}
	if result.Len() > ChunkSize {
		chunks = append(chunks, fmt.Sprintf("Showing first %d of %d results.", ChunkSize, result.Len()))
	}
	return chunks
}

// printable replaces values the JSON encoder cannot represent with their
// display strings.
func printable(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for key, value := range row {
		switch value.(type) {
		case nil, string, bool,
			int, int32, int64, float32, float64,
			json.Number:
			out[key] = value
		default:
			out[key] = Value(value)
		}
	}
	return out
}

// Value formats a single cell for display. NULL for nil, dates as
// YYYY-MM-DD, booleans as 0/1, everything else via its natural string form.
func Value(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return val.Format("2006-01-02")
	case bool:
		if val {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
