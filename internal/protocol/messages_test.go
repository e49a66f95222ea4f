package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSampleMessage(t *testing.T) {
	data := []byte(`{
		"zipcode": "10001",
		"city": "New York",
		"parameter": "pm25",
		"value": 18.5,
		"unit": "ug/m3",
		"timestamp": "2026-03-10T14:00:00Z",
		"source": "ground"
	}`)

	msg, err := DecodeSampleMessage(data)
	require.NoError(t, err)
	assert.Equal(t, "pm25", msg.Parameter)

	ts, err := msg.ParsedTimestamp()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC), ts)
}

func TestDecodeSampleMessageValidation(t *testing.T) {
	base := func() *SampleMessage {
		return &SampleMessage{
			Zipcode:   "10001",
			Parameter: "pm25",
			Value:     18.5,
			Unit:      "ug/m3",
			Timestamp: "2026-03-10T14:00:00Z",
			Source:    "ground",
		}
	}

	tests := []struct {
		name   string
		mutate func(*SampleMessage)
	}{
		{"missing zipcode", func(m *SampleMessage) { m.Zipcode = "" }},
		{"missing parameter", func(m *SampleMessage) { m.Parameter = "" }},
		{"missing unit", func(m *SampleMessage) { m.Unit = "" }},
		{"missing source", func(m *SampleMessage) { m.Source = "" }},
		{"missing timestamp", func(m *SampleMessage) { m.Timestamp = "" }},
		{"non-rfc3339 timestamp", func(m *SampleMessage) { m.Timestamp = "2026-03-10 14:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(m)
			assert.Error(t, m.Validate())
		})
	}

	assert.NoError(t, base().Validate())
}

func TestDecodeWeatherMessageValidation(t *testing.T) {
	_, err := DecodeWeatherMessage([]byte(`{"timestamp": "2026-03-10T14:00:00Z"}`))
	assert.Error(t, err, "zipcode is required")

	msg, err := DecodeWeatherMessage([]byte(`{"zipcode": "10001", "timestamp": "2026-03-10T14:00:00Z", "temperature": 16.5}`))
	require.NoError(t, err)
	assert.Equal(t, 16.5, msg.Temperature)
}
