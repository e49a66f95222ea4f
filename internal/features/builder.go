// Package features joins pollutant samples with nearest-in-time weather
// observations into training rows for the per-parameter regression models.
package features

import (
	"math"
	"time"

	"github.com/rpenumatsa/airsense-server/internal/database"
)

// MaxJoinWindow is the largest pollutant-to-weather timestamp gap accepted
// when building a training row. Samples without a weather observation inside
// the window are silently excluded.
const MaxJoinWindow = 6 * time.Hour

// Dim is the number of model covariates per row
const Dim = 7

// Vector holds the model covariates: hour-of-day, day-of-week, temperature,
// humidity, wind speed, pressure, cloud cover.
type Vector [Dim]float64

// Row is one training example: covariates plus the target concentration
type Row struct {
	Features Vector
	Target   float64
}

// NewVector builds a covariate vector from a timestamp and weather values
func NewVector(ts time.Time, temperature, humidity, windSpeed, pressure, cloudCover float64) Vector {
	return Vector{
		float64(ts.Hour()),
		float64(ts.Weekday()),
		temperature,
		humidity,
		windSpeed,
		pressure,
		cloudCover,
	}
}

// BuildTrainingRows pairs each pollutant sample with the weather observation
// closest to it in time. Pairs further apart than MaxJoinWindow are dropped.
// The join is pure and deterministic: identical inputs yield identical rows.
func BuildTrainingRows(samples []*database.Sample, weather []*database.WeatherSample) []Row {
	if len(samples) == 0 || len(weather) == 0 {
		return nil
	}

	rows := make([]Row, 0, len(samples))
	for _, s := range samples {
		w := nearestWeather(weather, s.Timestamp)
		if w == nil {
			continue
		}

		rows = append(rows, Row{
			Features: NewVector(s.Timestamp, w.Temperature, w.Humidity, w.WindSpeed, w.Pressure, w.CloudCover),
			Target:   s.Value,
		})
	}

	return rows
}

// nearestWeather returns the observation with minimal absolute timestamp
// distance to ts, or nil if the closest one is outside MaxJoinWindow
func nearestWeather(weather []*database.WeatherSample, ts time.Time) *database.WeatherSample {
	var best *database.WeatherSample
	bestGap := math.MaxFloat64

	for _, w := range weather {
		gap := math.Abs(float64(w.Timestamp.Sub(ts)))
		if gap < bestGap {
			best = w
			bestGap = gap
		}
	}

	if best == nil || time.Duration(bestGap) > MaxJoinWindow {
		return nil
	}
	return best
}
