package forecast

import (
	"math"
	"math/rand"
	"time"

	"github.com/rpenumatsa/airsense-server/internal/database"
)

// WeatherPoint is one synthesized hourly weather value used as model input.
// The same series is shared by every parameter within a forecast call.
type WeatherPoint struct {
	Time        time.Time
	Temperature float64
	Humidity    float64
	WindSpeed   float64
	Pressure    float64
	CloudCover  float64
}

// generic diurnal baseline used when no live weather reading is available
const (
	baseTemperature = 15.0
	baseHumidity    = 60.0
	baseWindSpeed   = 3.0
	basePressure    = 1013.0
	baseCloudCover  = 40.0
)

// SynthesizeWeather projects an hourly weather series over the horizon. When a
// current reading exists the series is that reading plus a 24h sinusoidal term
// and bounded jitter; otherwise a generic diurnal temperature curve is used.
// Humidity is clamped to [20,90] and cloud cover to [0,100].
func SynthesizeWeather(current *database.WeatherSample, start time.Time, horizonHours int, rng *rand.Rand) []WeatherPoint {
	temp, humidity, wind, pressure, cloud := baseTemperature, baseHumidity, baseWindSpeed, basePressure, baseCloudCover
	if current != nil {
		temp = current.Temperature
		humidity = current.Humidity
		wind = current.WindSpeed
		pressure = current.Pressure
		cloud = current.CloudCover
	}

	points := make([]WeatherPoint, 0, horizonHours)
	for h := 0; h < horizonHours; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)

		// Diurnal phase peaks mid-afternoon (hour 15).
		phase := 2 * math.Pi * float64(ts.Hour()-9) / 24

		points = append(points, WeatherPoint{
			Time:        ts,
			Temperature: temp + 4*math.Sin(phase) + jitter(rng, 0.8),
			Humidity:    clamp(humidity-8*math.Sin(phase)+jitter(rng, 3), 20, 90),
			WindSpeed:   math.Max(0, wind+jitter(rng, 0.6)),
			Pressure:    pressure + jitter(rng, 1.5),
			CloudCover:  clamp(cloud+jitter(rng, 8), 0, 100),
		})
	}

	return points
}

// jitter returns a uniform random value in [-scale, scale]
func jitter(rng *rand.Rand, scale float64) float64 {
	return (rng.Float64()*2 - 1) * scale
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
