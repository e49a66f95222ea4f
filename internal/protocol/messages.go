// Package protocol defines the Kafka message formats exchanged between the
// ingestion collaborators, the sweeper, and the notification service.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// SampleMessage is one pollutant measurement deposited on the samples topic
// by an ingestion collaborator (satellite feed or ground station).
type SampleMessage struct {
	Zipcode     string   `json:"zipcode"`
	City        string   `json:"city"`
	Parameter   string   `json:"parameter"`
	Value       float64  `json:"value"`
	Unit        string   `json:"unit"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	Timestamp   string   `json:"timestamp"`
	QualityFlag string   `json:"quality_flag,omitempty"`
	Source      string   `json:"source"`
}

// WeatherMessage is one weather observation deposited on the weather topic
type WeatherMessage struct {
	Zipcode     string   `json:"zipcode"`
	City        string   `json:"city"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	Timestamp   string   `json:"timestamp"`
	Temperature float64  `json:"temperature"`
	Humidity    float64  `json:"humidity"`
	WindSpeed   float64  `json:"wind_speed"`
	Pressure    float64  `json:"pressure"`
	CloudCover  float64  `json:"cloud_cover"`
}

// ParsedTimestamp validates and parses the RFC3339 timestamp
func (m *SampleMessage) ParsedTimestamp() (time.Time, error) {
	return parseTimestamp(m.Timestamp)
}

// ParsedTimestamp validates and parses the RFC3339 timestamp
func (m *WeatherMessage) ParsedTimestamp() (time.Time, error) {
	return parseTimestamp(m.Timestamp)
}

func parseTimestamp(ts string) (time.Time, error) {
	if ts == "" {
		return time.Time{}, fmt.Errorf("timestamp is required")
	}
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp format (must be RFC3339): %w", err)
	}
	return parsed, nil
}

// Validate checks required fields of a sample message
func (m *SampleMessage) Validate() error {
	if m.Zipcode == "" {
		return fmt.Errorf("zipcode is required")
	}
	if m.Parameter == "" {
		return fmt.Errorf("parameter is required")
	}
	if m.Unit == "" {
		return fmt.Errorf("unit is required")
	}
	if m.Source == "" {
		return fmt.Errorf("source is required")
	}
	_, err := m.ParsedTimestamp()
	return err
}

// Validate checks required fields of a weather message
func (m *WeatherMessage) Validate() error {
	if m.Zipcode == "" {
		return fmt.Errorf("zipcode is required")
	}
	_, err := m.ParsedTimestamp()
	return err
}

// DecodeSampleMessage decodes JSON to SampleMessage
func DecodeSampleMessage(data []byte) (*SampleMessage, error) {
	var msg SampleMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid sample message: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeWeatherMessage decodes JSON to WeatherMessage
func DecodeWeatherMessage(data []byte) (*WeatherMessage, error) {
	var msg WeatherMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid weather message: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EncodeMessage encodes any message to JSON
func EncodeMessage(msg interface{}) ([]byte, error) {
	return json.Marshal(msg)
}
