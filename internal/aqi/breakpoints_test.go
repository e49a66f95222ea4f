package aqi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "breakpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTableEmptyPathUsesDefault(t *testing.T) {
	table, err := LoadTable("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable().Version, table.Version)
}

func TestLoadTableFromFile(t *testing.T) {
	path := writeTable(t, `
version: 2
parameters:
  pm25:
    unit: ug/m3
    bands:
      - {clow: 0.0, chigh: 10.0, ilow: 0, ihigh: 50}
      - {clow: 10.1, chigh: 40.0, ilow: 51, ihigh: 100}
`)

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Version)

	// The custom table changes index semantics.
	calc := NewCalculator(table)
	index, ok := calc.ComputeIndex(ParamPM25, 10.0, UnitUGM3)
	require.True(t, ok)
	assert.Equal(t, 50, index)
}

func TestLoadTableMissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadTableRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "{{{"},
		{"missing version", `
parameters:
  pm25:
    unit: ug/m3
    bands:
      - {clow: 0.0, chigh: 10.0, ilow: 0, ihigh: 50}
`},
		{"no bands", `
version: 1
parameters:
  pm25:
    unit: ug/m3
    bands: []
`},
		{"unordered bands", `
version: 1
parameters:
  pm25:
    unit: ug/m3
    bands:
      - {clow: 10.1, chigh: 40.0, ilow: 51, ihigh: 100}
      - {clow: 0.0, chigh: 10.0, ilow: 0, ihigh: 50}
`},
		{"empty band", `
version: 1
parameters:
  pm25:
    unit: ug/m3
    bands:
      - {clow: 10.0, chigh: 10.0, ilow: 0, ihigh: 50}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTable(writeTable(t, tt.content))
			assert.Error(t, err)
		})
	}
}
