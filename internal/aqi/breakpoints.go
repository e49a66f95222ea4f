package aqi

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

// Parameter identifies a monitored pollutant
type Parameter string

const (
	ParamPM25 Parameter = "pm25"
	ParamPM10 Parameter = "pm10"
	ParamO3   Parameter = "o3"
	ParamNO2  Parameter = "no2"
	ParamSO2  Parameter = "so2"
	ParamCO   Parameter = "co"
	ParamHCHO Parameter = "hcho"
)

// Parameters is the fixed evaluation order. Aggregation iterates this list so
// dominant-pollutant ties always resolve the same way.
var Parameters = []Parameter{
	ParamPM25, ParamPM10, ParamO3, ParamNO2, ParamSO2, ParamCO, ParamHCHO,
}

// Unit identifies a concentration unit
type Unit string

const (
	UnitUGM3 Unit = "ug/m3"
	UnitMGM3 Unit = "mg/m3"
	UnitPPB  Unit = "ppb"
	UnitPPM  Unit = "ppm"
)

// Band is a single breakpoint range mapping a concentration interval to an
// index interval
type Band struct {
	CLow  float64 `yaml:"clow"`
	CHigh float64 `yaml:"chigh"`
	ILow  int     `yaml:"ilow"`
	IHigh int     `yaml:"ihigh"`
}

// ParameterTable holds the ordered breakpoint bands for one pollutant and the
// unit the bands are defined in
type ParameterTable struct {
	Unit  Unit   `yaml:"unit"`
	Bands []Band `yaml:"bands"`
}

// Table is the full breakpoint configuration artifact. Changing it changes
// index semantics, so it carries a version number.
type Table struct {
	Version    int                           `yaml:"version"`
	Parameters map[Parameter]ParameterTable `yaml:"parameters"`
}

//go:embed breakpoints.yaml
var defaultBreakpoints []byte

// DefaultTable returns the built-in breakpoint table
func DefaultTable() *Table {
	table, err := parseTable(defaultBreakpoints)
	if err != nil {
		// The embedded artifact is validated by tests; a parse failure here
		// means a broken build, not a runtime condition.
		panic(fmt.Sprintf("embedded breakpoint table is invalid: %v", err))
	}
	return table
}

// LoadTable reads a breakpoint table from a YAML file, falling back to the
// embedded default when path is empty
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read breakpoint table: %w", err)
	}

	return parseTable(data)
}

func parseTable(data []byte) (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse breakpoint table: %w", err)
	}

	if table.Version == 0 {
		return nil, fmt.Errorf("breakpoint table has no version")
	}

	for param, pt := range table.Parameters {
		if len(pt.Bands) == 0 {
			return nil, fmt.Errorf("parameter %s has no bands", param)
		}
		bands := pt.Bands
		if !sort.SliceIsSorted(bands, func(i, j int) bool { return bands[i].CLow < bands[j].CLow }) {
			return nil, fmt.Errorf("parameter %s has unordered bands", param)
		}
		for _, b := range bands {
			if b.CHigh <= b.CLow {
				return nil, fmt.Errorf("parameter %s has an empty band [%v,%v]", param, b.CLow, b.CHigh)
			}
		}
	}

	return &table, nil
}
