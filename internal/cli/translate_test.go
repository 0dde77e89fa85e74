package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `entities:
  - name: orders
    fields: [id, status, total]
  - name: cars
    fields: [id, make, price, year]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestTranslate_TextOutput(t *testing.T) {
	out, err := executeCommand("translate", "--catalog", writeCatalog(t), "count", "orders", "grouped", "by", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT status, COUNT(*) AS count_total FROM orders GROUP BY status")
	assert.Contains(t, out, `db.orders.aggregate([`)
	assert.Contains(t, out, `"$group"`)
}

func TestTranslate_JSONOutput(t *testing.T) {
	out, err := executeCommand("--format", "json", "translate", "--catalog", writeCatalog(t),
		"show", "cars", "where", "price", "greater", "than", "20000")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var tr Translation
	require.NoError(t, json.Unmarshal(data, &tr))
	assert.Equal(t, "SELECT * FROM cars WHERE price > 20000", tr.SQL)
	assert.Equal(t, "cars", tr.Collection)
	require.Len(t, tr.Stages, 1)
}

func TestTranslate_UnresolvedTargetFails(t *testing.T) {
	out, err := executeCommand("translate", "--catalog", writeCatalog(t), "list", "the", "gadgets")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "no target entity recognized")
}

func TestTranslate_MissingCatalogFlag(t *testing.T) {
	_, err := executeCommand("translate", "count", "orders")
	assert.Error(t, err)
}

func TestTranslate_BadCatalogPath(t *testing.T) {
	_, err := executeCommand("translate", "--catalog", "/nonexistent/catalog.yaml", "count", "orders")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
