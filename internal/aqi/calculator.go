package aqi

import "math"

// MaxIndex is the index cap. Concentrations above the highest band return
// MaxIndex rather than extrapolating.
const MaxIndex = 500

// Category labels for the index ladder
const (
	CategoryGood          = "Good"
	CategoryModerate      = "Moderate"
	CategorySensitive     = "Unhealthy for Sensitive Groups"
	CategoryUnhealthy     = "Unhealthy"
	CategoryVeryUnhealthy = "Very Unhealthy"
	CategoryHazardous     = "Hazardous"
)

// molecular weights (g/mol) for gas-phase unit conversion
var molecularWeight = map[Parameter]float64{
	ParamO3:   48.00,
	ParamNO2:  46.01,
	ParamSO2:  64.07,
	ParamCO:   28.01,
	ParamHCHO: 30.03,
}

// molarVolume is liters per mole at 25C and 1 atm, the reference condition
// for regulatory ppb <-> ug/m3 conversion.
const molarVolume = 24.45

// Calculator converts concentrations into index values using a breakpoint
// table. It is a pure value-object utility with no persistence coupling.
type Calculator struct {
	table *Table
}

// NewCalculator creates a Calculator over the given breakpoint table
func NewCalculator(table *Table) *Calculator {
	return &Calculator{table: table}
}

// ComputeIndex converts a concentration to an index value in [0, MaxIndex].
// The second return is false when the parameter has no breakpoint table or the
// unit cannot be normalized; such results must not participate in
// dominant-pollutant selection.
func (c *Calculator) ComputeIndex(param Parameter, value float64, unit Unit) (int, bool) {
	pt, ok := c.table.Parameters[param]
	if !ok {
		return 0, false
	}

	conc, ok := convertUnit(param, value, unit, pt.Unit)
	if !ok {
		return 0, false
	}
	if conc < 0 {
		conc = 0
	}

	last := pt.Bands[len(pt.Bands)-1]
	if conc > last.CHigh {
		return MaxIndex, true
	}

	for _, b := range pt.Bands {
		if conc > b.CHigh {
			continue
		}
		// Concentrations that fall in the gap between adjacent bands
		// (e.g. 12.05 between 12.0 and 12.1) resolve to the higher band
		// clamped to its lower bound, keeping the index monotonic.
		if conc < b.CLow {
			conc = b.CLow
		}
		span := b.CHigh - b.CLow
		index := float64(b.IHigh-b.ILow)/span*(conc-b.CLow) + float64(b.ILow)
		return int(math.Round(index)), true
	}

	return MaxIndex, true
}

// Category returns the label for an index value
func Category(index int) string {
	switch {
	case index <= 50:
		return CategoryGood
	case index <= 100:
		return CategoryModerate
	case index <= 150:
		return CategorySensitive
	case index <= 200:
		return CategoryUnhealthy
	case index <= 300:
		return CategoryVeryUnhealthy
	default:
		return CategoryHazardous
	}
}

// CanonicalUnit returns the unit a parameter's breakpoint table is defined in.
// Parameters without a table report ug/m3 so ingested values still normalize
// consistently.
func (c *Calculator) CanonicalUnit(param Parameter) Unit {
	if pt, ok := c.table.Parameters[param]; ok {
		return pt.Unit
	}
	return UnitUGM3
}

// Normalize converts a value to the parameter's canonical unit. Returns false
// when no conversion path exists.
func (c *Calculator) Normalize(param Parameter, value float64, unit Unit) (float64, bool) {
	return convertUnit(param, value, unit, c.CanonicalUnit(param))
}

// convertUnit normalizes a concentration from one unit to another. Gas-phase
// mass <-> volume conversion uses the molecular weight at 25C.
func convertUnit(param Parameter, value float64, from, to Unit) (float64, bool) {
	if from == to {
		return value, true
	}

	// collapse the milli/micro pairs first
	switch from {
	case UnitPPM:
		value, from = value*1000, UnitPPB
	case UnitMGM3:
		value, from = value*1000, UnitUGM3
	}

	var target Unit
	switch to {
	case UnitPPM, UnitPPB:
		target = UnitPPB
	case UnitMGM3, UnitUGM3:
		target = UnitUGM3
	default:
		return 0, false
	}

	if from != target {
		mw, ok := molecularWeight[param]
		if !ok {
			return 0, false
		}
		if from == UnitPPB {
			value = value * mw / molarVolume
		} else {
			value = value * molarVolume / mw
		}
	}

	switch to {
	case UnitPPM:
		return value / 1000, true
	case UnitMGM3:
		return value / 1000, true
	default:
		return value, true
	}
}
