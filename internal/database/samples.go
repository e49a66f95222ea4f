package database

import (
	"database/sql"
	"time"
)

// InsertSample inserts a pollutant sample
func (db *DB) InsertSample(s *Sample) error {
	query := `
		INSERT INTO samples (
			zipcode, parameter, value, unit, lat, lon,
			timestamp, quality_flag, source, received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	return db.QueryRow(
		query,
		s.Zipcode,
		s.Parameter,
		s.Value,
		s.Unit,
		s.Lat,
		s.Lon,
		s.Timestamp,
		s.QualityFlag,
		s.Source,
		s.ReceivedAt,
	).Scan(&s.ID)
}

// FindSamples retrieves samples for a parameter at a location since the given
// time, ordered by timestamp ascending
func (db *DB) FindSamples(zipcode, parameter string, since time.Time) ([]*Sample, error) {
	query := `
		SELECT id, zipcode, parameter, value, unit, lat, lon,
		       timestamp, quality_flag, source, received_at
		FROM samples
		WHERE zipcode = $1 AND parameter = $2 AND timestamp >= $3
		ORDER BY timestamp ASC
	`

	rows, err := db.Query(query, zipcode, parameter, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(
			&s.ID,
			&s.Zipcode,
			&s.Parameter,
			&s.Value,
			&s.Unit,
			&s.Lat,
			&s.Lon,
			&s.Timestamp,
			&s.QualityFlag,
			&s.Source,
			&s.ReceivedAt,
		); err != nil {
			return nil, err
		}
		samples = append(samples, &s)
	}

	return samples, rows.Err()
}

// FindLatestSample retrieves the newest sample for a parameter at a location
// from the given source since the given time. Returns nil when none exists.
func (db *DB) FindLatestSample(zipcode, parameter, source string, since time.Time) (*Sample, error) {
	query := `
		SELECT id, zipcode, parameter, value, unit, lat, lon,
		       timestamp, quality_flag, source, received_at
		FROM samples
		WHERE zipcode = $1 AND parameter = $2 AND source = $3 AND timestamp >= $4
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var s Sample
	err := db.QueryRow(query, zipcode, parameter, source, since).Scan(
		&s.ID,
		&s.Zipcode,
		&s.Parameter,
		&s.Value,
		&s.Unit,
		&s.Lat,
		&s.Lon,
		&s.Timestamp,
		&s.QualityFlag,
		&s.Source,
		&s.ReceivedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// InsertWeatherSample inserts a weather observation
func (db *DB) InsertWeatherSample(w *WeatherSample) error {
	query := `
		INSERT INTO weather_samples (
			zipcode, lat, lon, timestamp, temperature, humidity,
			wind_speed, pressure, cloud_cover, received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	return db.QueryRow(
		query,
		w.Zipcode,
		w.Lat,
		w.Lon,
		w.Timestamp,
		w.Temperature,
		w.Humidity,
		w.WindSpeed,
		w.Pressure,
		w.CloudCover,
		w.ReceivedAt,
	).Scan(&w.ID)
}

// FindWeather retrieves weather observations for a location since the given
// time, ordered by timestamp ascending
func (db *DB) FindWeather(zipcode string, since time.Time) ([]*WeatherSample, error) {
	query := `
		SELECT id, zipcode, lat, lon, timestamp, temperature, humidity,
		       wind_speed, pressure, cloud_cover, received_at
		FROM weather_samples
		WHERE zipcode = $1 AND timestamp >= $2
		ORDER BY timestamp ASC
	`

	rows, err := db.Query(query, zipcode, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*WeatherSample
	for rows.Next() {
		var w WeatherSample
		if err := rows.Scan(
			&w.ID,
			&w.Zipcode,
			&w.Lat,
			&w.Lon,
			&w.Timestamp,
			&w.Temperature,
			&w.Humidity,
			&w.WindSpeed,
			&w.Pressure,
			&w.CloudCover,
			&w.ReceivedAt,
		); err != nil {
			return nil, err
		}
		samples = append(samples, &w)
	}

	return samples, rows.Err()
}

// FindLatestWeather retrieves the newest weather observation for a location.
// Returns nil when none exists.
func (db *DB) FindLatestWeather(zipcode string) (*WeatherSample, error) {
	query := `
		SELECT id, zipcode, lat, lon, timestamp, temperature, humidity,
		       wind_speed, pressure, cloud_cover, received_at
		FROM weather_samples
		WHERE zipcode = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var w WeatherSample
	err := db.QueryRow(query, zipcode).Scan(
		&w.ID,
		&w.Zipcode,
		&w.Lat,
		&w.Lon,
		&w.Timestamp,
		&w.Temperature,
		&w.Humidity,
		&w.WindSpeed,
		&w.Pressure,
		&w.CloudCover,
		&w.ReceivedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &w, nil
}
