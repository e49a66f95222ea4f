package protocol

import (
	"encoding/json"
	"time"
)

// AlertMessage is the fan-out format published to the alerts topic when an
// alert record is created. The notification service consumes it and renders
// the per-channel deliveries.
type AlertMessage struct {
	AlertID           string    `json:"alert_id"`
	Zipcode           string    `json:"zipcode"`
	City              string    `json:"city,omitempty"`
	Severity          string    `json:"severity"`
	IndexValue        int       `json:"index_value"`
	Category          string    `json:"category"`
	DominantParameter string    `json:"dominant_parameter"`
	Message           string    `json:"message"`
	HealthImpact      string    `json:"health_impact"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// EncodeAlertMessage encodes an AlertMessage to JSON
func EncodeAlertMessage(msg *AlertMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeAlertMessage decodes JSON to AlertMessage
func DecodeAlertMessage(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
