package database

import (
	"time"
)

// Location represents a monitored location
type Location struct {
	Zipcode   string
	CityName  string
	Lat       *float64
	Lon       *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sample sources
const (
	SourceGround    = "ground"
	SourceSatellite = "satellite"
)

// Sample represents one pollutant concentration measurement. Samples are
// immutable once ingested; newer samples supersede older ones.
type Sample struct {
	ID          int64
	Zipcode     string
	Parameter   string
	Value       float64
	Unit        string
	Lat         *float64
	Lon         *float64
	Timestamp   time.Time
	QualityFlag string
	Source      string
	ReceivedAt  time.Time
}

// WeatherSample represents one weather observation used as a model covariate
type WeatherSample struct {
	ID          int64
	Zipcode     string
	Lat         *float64
	Lon         *float64
	Timestamp   time.Time
	Temperature float64
	Humidity    float64
	WindSpeed   float64
	Pressure    float64
	CloudCover  float64
	ReceivedAt  time.Time
}

// Alert severities
const (
	SeverityModerate = "moderate"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert statuses
const (
	AlertStatusActive    = "ACTIVE"
	AlertStatusExpired   = "EXPIRED"
	AlertStatusCancelled = "CANCELLED"
)

// AlertRecord represents a persisted health alert. Unlike the sample models
// it carries JSON tags because the query API serves it directly.
type AlertRecord struct {
	ID                string    `json:"id"`
	Zipcode           string    `json:"zipcode"`
	Lat               *float64  `json:"lat,omitempty"`
	Lon               *float64  `json:"lon,omitempty"`
	Severity          string    `json:"severity"`
	IndexValue        int       `json:"index_value"`
	DominantParameter string    `json:"dominant_parameter"`
	Message           string    `json:"message"`
	HealthImpact      string    `json:"health_impact"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}
