package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpenumatsa/airsense-server/internal/aqi"
	"github.com/rpenumatsa/airsense-server/internal/database"
	"github.com/rpenumatsa/airsense-server/internal/model"
)

var testStart = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

// flatModel returns a model predicting a constant concentration with the
// given in-sample R2
func flatModel(value, r2 float64) *model.Model {
	coeffs := make([]float64, 15)
	coeffs[0] = value
	return &model.Model{
		Parameter:    "pm25",
		Coefficients: coeffs,
		R2:           r2,
		SampleCount:  50,
	}
}

func testWeather(g *Generator, hours int) []WeatherPoint {
	current := &database.WeatherSample{
		Temperature: 18,
		Humidity:    55,
		WindSpeed:   4,
		Pressure:    1012,
		CloudCover:  30,
	}
	return g.Weather(current, testStart, hours)
}

func TestConfidenceNonIncreasing(t *testing.T) {
	g := NewGenerator("10001", testStart)
	weather := testWeather(g, 24)

	points := g.Forecast(aqi.ParamPM25, flatModel(20, 0.8), nil, weather, 24)
	require.Len(t, points, 24)

	for i := 1; i < len(points); i++ {
		assert.LessOrEqual(t, points[i].Confidence, points[i-1].Confidence,
			"confidence increased at hour %d", i)
	}

	assert.InDelta(t, 0.8, points[0].Confidence, 1e-9)
	assert.InDelta(t, 0.8*math.Exp(-1), points[12].Confidence, 1e-9)
}

func TestConfidenceCapped(t *testing.T) {
	g := NewGenerator("10001", testStart)
	weather := testWeather(g, 4)

	points := g.Forecast(aqi.ParamPM25, flatModel(20, 1.0), nil, weather, 4)
	for _, p := range points {
		assert.LessOrEqual(t, p.Confidence, 0.95)
	}
}

func TestForecastValuesNonNegative(t *testing.T) {
	g := NewGenerator("10001", testStart)
	weather := testWeather(g, 24)

	// A model predicting a negative concentration must be clamped to zero.
	points := g.Forecast(aqi.ParamNO2, flatModel(-40, 0.6), nil, weather, 24)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Value, 0.0)
	}
}

func TestWeatherAdjustmentClamped(t *testing.T) {
	extremes := []WeatherPoint{
		{Time: testStart, Temperature: 45, Humidity: 0, WindSpeed: 0, Pressure: 1040, CloudCover: 0},
		{Time: testStart, Temperature: -30, Humidity: 100, WindSpeed: 40, Pressure: 950, CloudCover: 100},
	}

	for _, param := range aqi.Parameters {
		for _, w := range extremes {
			m := weatherAdjustment(param, w)
			assert.GreaterOrEqual(t, m, 0.3)
			assert.LessOrEqual(t, m, 2.0)
		}
	}
}

func TestNO2PressureFactorFloor(t *testing.T) {
	// The pressure factor scales within [0.8, 1.0]; low pressure must not
	// push it below the floor. Wind above 10 keeps the still-air boost out.
	low := WeatherPoint{Time: testStart, Temperature: 15, Humidity: 50, WindSpeed: 12, Pressure: 950, CloudCover: 40}
	assert.InDelta(t, 0.8, weatherAdjustment(aqi.ParamNO2, low), 1e-9)

	high := WeatherPoint{Time: testStart, Temperature: 15, Humidity: 50, WindSpeed: 12, Pressure: 1040, CloudCover: 40}
	assert.InDelta(t, 0.8*1040/1013, weatherAdjustment(aqi.ParamNO2, high), 1e-9)

	mid := WeatherPoint{Time: testStart, Temperature: 15, Humidity: 50, WindSpeed: 12, Pressure: 1013, CloudCover: 40}
	assert.InDelta(t, 0.8, weatherAdjustment(aqi.ParamNO2, mid), 1e-9)
}

func TestTrendDiurnalPhaseMatchesWeather(t *testing.T) {
	var recent []*database.Sample
	for i := 0; i < 8; i++ {
		recent = append(recent, &database.Sample{Parameter: "pm25", Value: 10})
	}

	// Flat history isolates the diurnal term: peak at hour 15, trough at 3,
	// the same phase the weather synthesis uses.
	peak, _ := trendValue(aqi.ParamPM25, recent, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), 0)
	assert.InDelta(t, 12.0, peak, 1e-9)

	trough, _ := trendValue(aqi.ParamPM25, recent, time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC), 0)
	assert.InDelta(t, 8.0, trough, 1e-9)
}

func TestTrendFallback(t *testing.T) {
	g := NewGenerator("10001", testStart)
	weather := testWeather(g, 6)

	var recent []*database.Sample
	for i := 0; i < 12; i++ {
		recent = append(recent, &database.Sample{
			Parameter: "pm25",
			Value:     10 + float64(i),
			Timestamp: testStart.Add(time.Duration(i-12) * time.Hour),
		})
	}

	points := g.Forecast(aqi.ParamPM25, nil, recent, weather, 6)
	require.Len(t, points, 6)

	for _, p := range points {
		assert.Equal(t, 0.5, p.Confidence, "trend fallback confidence is fixed")
		assert.GreaterOrEqual(t, p.Value, 0.0)
	}
}

func TestBaselineFallback(t *testing.T) {
	g := NewGenerator("10001", testStart)
	weather := testWeather(g, 3)

	points := g.Forecast(aqi.ParamO3, nil, nil, weather, 3)
	require.Len(t, points, 3)

	for _, p := range points {
		assert.Equal(t, 0.3, p.Confidence, "no-history fallback confidence is fixed")
		assert.Equal(t, 30.0, p.Value, "baseline constant for ozone")
	}
}

func TestGeneratorDeterministicPerCycle(t *testing.T) {
	run := func() []Point {
		g := NewGenerator("10001", testStart)
		weather := testWeather(g, 12)
		return g.Forecast(aqi.ParamPM25, flatModel(20, 0.7), nil, weather, 12)
	}

	assert.Equal(t, run(), run(), "same location and cycle must reproduce identical forecasts")
}

func TestSynthesizedWeatherClamps(t *testing.T) {
	g := NewGenerator("10001", testStart)

	extreme := &database.WeatherSample{
		Temperature: 30,
		Humidity:    99,
		WindSpeed:   0.1,
		Pressure:    1013,
		CloudCover:  99,
	}
	for _, w := range g.Weather(extreme, testStart, 48) {
		assert.GreaterOrEqual(t, w.Humidity, 20.0)
		assert.LessOrEqual(t, w.Humidity, 90.0)
		assert.GreaterOrEqual(t, w.CloudCover, 0.0)
		assert.LessOrEqual(t, w.CloudCover, 100.0)
		assert.GreaterOrEqual(t, w.WindSpeed, 0.0)
	}
}

func TestSynthesizedWeatherWithoutReading(t *testing.T) {
	g := NewGenerator("10001", testStart)

	points := g.Weather(nil, testStart, 24)
	require.Len(t, points, 24)

	// The generic diurnal curve stays within plausible bounds.
	for _, w := range points {
		assert.Greater(t, w.Temperature, 0.0)
		assert.Less(t, w.Temperature, 30.0)
	}
}
