package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querychat/querychat/internal/extract"
)

func TestScenarios(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestRun_ErrorScenarioCapturesUnresolvedTarget(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/unresolved_target.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	require.Error(t, result.Err)
	assert.True(t, extract.IsUnresolvedTarget(result.Err))
}

func TestRun_UnexpectedSuccessFailsErrorScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/count_orders_by_status.yaml")
	require.NoError(t, err)
	s.ExpectError = true

	_, err = Run(s)
	assert.Error(t, err)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: unknown field should be rejected
catalogue:
  - name: orders
text: count orders
`)
	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenario_RequiresCatalog(t *testing.T) {
	path := writeScenario(t, `
name: no-catalog
description: catalog is mandatory
text: count orders
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog")
}

func TestLoadScenario_RequiresText(t *testing.T) {
	path := writeScenario(t, `
name: no-text
description: text is mandatory
catalog:
  - name: orders
    fields: [id]
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text")
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
