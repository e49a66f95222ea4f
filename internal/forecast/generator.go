// Package forecast generates per-parameter hourly concentration forecasts and
// rolls them up into hourly index points.
package forecast

import (
	"hash/crc32"
	"math"
	"math/rand"
	"time"

	"github.com/rpenumatsa/airsense-server/internal/aqi"
	"github.com/rpenumatsa/airsense-server/internal/database"
	"github.com/rpenumatsa/airsense-server/internal/features"
	"github.com/rpenumatsa/airsense-server/internal/model"
)

// Point is one forecast hour for one parameter. Confidence is in [0,1].
type Point struct {
	Parameter  string    `json:"parameter"`
	Time       time.Time `json:"time"`
	Value      float64   `json:"value"`
	Confidence float64   `json:"confidence"`
}

// Confidence constants for the fallback paths
const (
	confidenceTrend    = 0.5
	confidenceBaseline = 0.3
	maxConfidence      = 0.95
	confidenceHalfLife = 12.0
)

// trendWindow caps how many recent samples feed the trend fallback
const trendWindow = 24

// baselines are parameter-specific fallback concentrations (canonical units)
// used when no historical data exists at all
var baselines = map[aqi.Parameter]float64{
	aqi.ParamPM25: 12,
	aqi.ParamPM10: 25,
	aqi.ParamO3:   30,
	aqi.ParamNO2:  20,
	aqi.ParamSO2:  8,
	aqi.ParamCO:   0.4,
	aqi.ParamHCHO: 5,
}

// Generator produces hourly forecasts for one location and cycle. The RNG is
// seeded from the location and cycle hour so re-running a sweep with no
// elapsed time reproduces identical output.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator seeded for one location/cycle pair
func NewGenerator(zipcode string, cycle time.Time) *Generator {
	seed := int64(crc32.ChecksumIEEE([]byte(zipcode))) + cycle.Truncate(time.Hour).Unix()
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Weather synthesizes the shared hourly weather series for this cycle
func (g *Generator) Weather(current *database.WeatherSample, start time.Time, horizonHours int) []WeatherPoint {
	return SynthesizeWeather(current, start, horizonHours, g.rng)
}

// Forecast produces one Point per hour 0..horizonHours-1 for a parameter.
// With a trained model it predicts on each hour's covariates and applies the
// parameter-family weather adjustment; without one it extrapolates the recent
// trend, and with no history at all it falls back to the parameter baseline.
func (g *Generator) Forecast(param aqi.Parameter, m *model.Model, recent []*database.Sample, weather []WeatherPoint, horizonHours int) []Point {
	points := make([]Point, 0, horizonHours)

	for h := 0; h < horizonHours; h++ {
		w := weather[h]

		var value, confidence float64
		if m != nil {
			value = g.predictHour(param, m, w)
			confidence = decayConfidence(clamp(m.R2, 0, 1), h)
		} else {
			value, confidence = trendValue(param, recent, w.Time, h)
		}

		if value < 0 {
			value = 0
		}

		points = append(points, Point{
			Parameter:  string(param),
			Time:       w.Time,
			Value:      value,
			Confidence: confidence,
		})
	}

	return points
}

// predictHour evaluates the model on one weather hour and applies the weather
// adjustment multiplier
func (g *Generator) predictHour(param aqi.Parameter, m *model.Model, w WeatherPoint) float64 {
	predicted := m.Predict(featuresFor(w))
	return predicted * weatherAdjustment(param, w)
}

// decayConfidence applies the horizon decay to a base confidence. The result
// is strictly non-increasing with hour offset.
func decayConfidence(base float64, hourOffset int) float64 {
	c := base * math.Exp(-float64(hourOffset)/confidenceHalfLife)
	if c > maxConfidence {
		c = maxConfidence
	}
	return c
}

// trendValue is the no-model fallback: mean of the most recent samples plus a
// linear trend extrapolated by hour offset, modulated at 20% of the mean by
// the same diurnal sinusoid the weather synthesis uses (peak at hour 15).
// Confidence is fixed per fallback kind, not decayed.
func trendValue(param aqi.Parameter, recent []*database.Sample, ts time.Time, hourOffset int) (float64, float64) {
	if len(recent) == 0 {
		return baselines[param], confidenceBaseline
	}

	window := recent
	if len(window) > trendWindow {
		window = window[len(window)-trendWindow:]
	}

	var mean float64
	for _, s := range window {
		mean += s.Value
	}
	mean /= float64(len(window))

	var trend float64
	if len(window) > 1 {
		trend = (window[len(window)-1].Value - window[0].Value) / float64(len(window))
	}

	diurnal := 0.2 * mean * math.Sin(2*math.Pi*float64(ts.Hour()-9)/24)
	return mean + trend*float64(hourOffset) + diurnal, confidenceTrend
}

// weatherAdjustment scales a model prediction by the parameter family's
// response to weather. The multiplier is clamped to [0.3, 2.0].
func weatherAdjustment(param aqi.Parameter, w WeatherPoint) float64 {
	m := 1.0

	switch param {
	case aqi.ParamNO2:
		// Traffic gases accumulate under high pressure and still air. The
		// pressure factor scales within [0.8, 1.0].
		m = clamp(0.8*(w.Pressure/1013.0), 0.8, 1.0)
		if w.WindSpeed < 10 {
			m *= 1.0 + (10-w.WindSpeed)/10*0.5
		}

	case aqi.ParamPM25, aqi.ParamPM10:
		// Particulates build up in calm, humid conditions.
		if w.WindSpeed < 8 {
			m = 1.0 + (8-w.WindSpeed)/8*0.6
		}
		m *= 0.7 + 0.3*clamp(w.Humidity/100, 0, 1)

	case aqi.ParamO3:
		// Ozone forms photochemically: warm and dry favors it.
		if w.Temperature > 10 {
			m = 1.0 + (w.Temperature-10)*0.02
		}
		m *= 1.0 - 0.3*clamp(w.Humidity/100, 0, 1)

	case aqi.ParamHCHO:
		if w.Temperature > 5 {
			m = 1.0 + (w.Temperature-5)*0.015
		}
	}

	return clamp(m, 0.3, 2.0)
}

// featuresFor builds the covariate vector for one synthesized weather hour
func featuresFor(w WeatherPoint) features.Vector {
	return features.NewVector(w.Time, w.Temperature, w.Humidity, w.WindSpeed, w.Pressure, w.CloudCover)
}
