// Package ingest turns consumed Kafka messages into storage writes. It is the
// boundary behind which the acquisition collaborators live; everything past
// here sees only normalized, time-stamped samples.
package ingest

import (
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/rpenumatsa/airsense-server/internal/aqi"
	"github.com/rpenumatsa/airsense-server/internal/database"
	"github.com/rpenumatsa/airsense-server/internal/observability"
	"github.com/rpenumatsa/airsense-server/internal/protocol"
	"github.com/rpenumatsa/airsense-server/internal/queue"
)

// Store is the storage surface the handlers write to
type Store interface {
	GetLocation(zipcode string) (*database.Location, error)
	UpsertLocation(loc *database.Location) error
	InsertSample(s *database.Sample) error
	InsertWeatherSample(w *database.WeatherSample) error
}

// SampleHandler decodes pollutant sample messages, normalizes the
// concentration to the parameter's canonical unit, and writes the row
func SampleHandler(store Store, calc *aqi.Calculator, metrics *observability.Metrics) queue.MessageHandler {
	return func(msg kafka.Message) error {
		sm, err := protocol.DecodeSampleMessage(msg.Value)
		if err != nil {
			return fmt.Errorf("failed to decode sample message: %w", err)
		}

		ts, err := sm.ParsedTimestamp()
		if err != nil {
			return err
		}

		if err := ensureLocation(store, sm.Zipcode, sm.City, sm.Lat, sm.Lon); err != nil {
			return err
		}

		param := aqi.Parameter(sm.Parameter)
		value, unit := sm.Value, sm.Unit
		if normalized, ok := calc.Normalize(param, sm.Value, aqi.Unit(sm.Unit)); ok {
			value = normalized
			unit = string(calc.CanonicalUnit(param))
		}

		sample := &database.Sample{
			Zipcode:     sm.Zipcode,
			Parameter:   sm.Parameter,
			Value:       value,
			Unit:        unit,
			Lat:         sm.Lat,
			Lon:         sm.Lon,
			Timestamp:   ts,
			QualityFlag: sm.QualityFlag,
			Source:      sm.Source,
			ReceivedAt:  ts,
		}

		if err := store.InsertSample(sample); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}

		metrics.SamplesIngested.WithLabelValues("pollutant").Inc()
		return nil
	}
}

// WeatherHandler decodes weather messages and writes the observation
func WeatherHandler(store Store, metrics *observability.Metrics) queue.MessageHandler {
	return func(msg kafka.Message) error {
		wm, err := protocol.DecodeWeatherMessage(msg.Value)
		if err != nil {
			return fmt.Errorf("failed to decode weather message: %w", err)
		}

		ts, err := wm.ParsedTimestamp()
		if err != nil {
			return err
		}

		if err := ensureLocation(store, wm.Zipcode, wm.City, wm.Lat, wm.Lon); err != nil {
			return err
		}

		sample := &database.WeatherSample{
			Zipcode:     wm.Zipcode,
			Lat:         wm.Lat,
			Lon:         wm.Lon,
			Timestamp:   ts,
			Temperature: wm.Temperature,
			Humidity:    wm.Humidity,
			WindSpeed:   wm.WindSpeed,
			Pressure:    wm.Pressure,
			CloudCover:  wm.CloudCover,
			ReceivedAt:  ts,
		}

		if err := store.InsertWeatherSample(sample); err != nil {
			return fmt.Errorf("failed to insert weather sample: %w", err)
		}

		metrics.SamplesIngested.WithLabelValues("weather").Inc()
		return nil
	}
}

func ensureLocation(store Store, zipcode, city string, lat, lon *float64) error {
	loc, err := store.GetLocation(zipcode)
	if err != nil {
		return fmt.Errorf("failed to get location: %w", err)
	}
	if loc != nil {
		return nil
	}

	newLoc := &database.Location{
		Zipcode:  zipcode,
		CityName: city,
		Lat:      lat,
		Lon:      lon,
	}
	if err := store.UpsertLocation(newLoc); err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}
