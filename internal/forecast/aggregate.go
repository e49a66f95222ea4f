package forecast

import (
	"time"

	"github.com/rpenumatsa/airsense-server/internal/aqi"
)

// IndexPoint is the hourly index rollup across all parameters
type IndexPoint struct {
	Time              time.Time      `json:"time"`
	Index             int            `json:"index"`
	Category          string         `json:"category"`
	DominantParameter string         `json:"dominant_parameter"`
	Breakdown         map[string]int `json:"breakdown"`
}

// AggregateIndex computes one IndexPoint per hour from the per-parameter
// forecasts. Each hour's index is the maximum per-parameter index; the
// parameter producing it is recorded as dominant. Iteration follows
// aqi.Parameters so ties resolve deterministically to the first parameter.
// Parameters with no breakpoint table are skipped.
func AggregateIndex(calc *aqi.Calculator, forecasts map[string][]Point, horizonHours int) []IndexPoint {
	points := make([]IndexPoint, 0, horizonHours)

	for h := 0; h < horizonHours; h++ {
		ip := IndexPoint{
			Breakdown: make(map[string]int),
		}

		for _, param := range aqi.Parameters {
			series, ok := forecasts[string(param)]
			if !ok || h >= len(series) {
				continue
			}
			fp := series[h]

			index, ok := calc.ComputeIndex(param, fp.Value, calc.CanonicalUnit(param))
			if !ok {
				continue
			}

			ip.Breakdown[string(param)] = index
			if ip.Time.IsZero() {
				ip.Time = fp.Time
			}
			// Strict > keeps the first parameter on ties.
			if ip.DominantParameter == "" || index > ip.Index {
				ip.Index = index
				ip.DominantParameter = string(param)
			}
		}

		if ip.DominantParameter == "" {
			// No parameter produced a usable index this hour.
			continue
		}

		ip.Category = aqi.Category(ip.Index)
		points = append(points, ip)
	}

	return points
}
