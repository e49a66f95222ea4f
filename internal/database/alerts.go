package database

import (
	"database/sql"
	"time"
)

// InsertAlert persists a new alert record
func (db *DB) InsertAlert(a *AlertRecord) error {
	query := `
		INSERT INTO alerts (
			id, zipcode, lat, lon, severity, index_value, dominant_parameter,
			message, health_impact, status, created_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := db.Exec(
		query,
		a.ID,
		a.Zipcode,
		a.Lat,
		a.Lon,
		a.Severity,
		a.IndexValue,
		a.DominantParameter,
		a.Message,
		a.HealthImpact,
		a.Status,
		a.CreatedAt,
		a.ExpiresAt,
	)
	return err
}

// FindRecentAlert retrieves the newest alert for a location and severity
// created since the given time. Returns nil when none exists; the evaluator
// uses this for the one-hour dedup check.
func (db *DB) FindRecentAlert(zipcode, severity string, since time.Time) (*AlertRecord, error) {
	query := `
		SELECT id, zipcode, lat, lon, severity, index_value, dominant_parameter,
		       message, health_impact, status, created_at, expires_at
		FROM alerts
		WHERE zipcode = $1 AND severity = $2 AND created_at >= $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	var a AlertRecord
	err := db.QueryRow(query, zipcode, severity, since).Scan(
		&a.ID,
		&a.Zipcode,
		&a.Lat,
		&a.Lon,
		&a.Severity,
		&a.IndexValue,
		&a.DominantParameter,
		&a.Message,
		&a.HealthImpact,
		&a.Status,
		&a.CreatedAt,
		&a.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// FindActiveAlerts retrieves all active alerts for a location, newest first
func (db *DB) FindActiveAlerts(zipcode string) ([]*AlertRecord, error) {
	query := `
		SELECT id, zipcode, lat, lon, severity, index_value, dominant_parameter,
		       message, health_impact, status, created_at, expires_at
		FROM alerts
		WHERE zipcode = $1 AND status = $2
		ORDER BY created_at DESC
	`

	rows, err := db.Query(query, zipcode, AlertStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*AlertRecord
	for rows.Next() {
		var a AlertRecord
		if err := rows.Scan(
			&a.ID,
			&a.Zipcode,
			&a.Lat,
			&a.Lon,
			&a.Severity,
			&a.IndexValue,
			&a.DominantParameter,
			&a.Message,
			&a.HealthImpact,
			&a.Status,
			&a.CreatedAt,
			&a.ExpiresAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, &a)
	}

	return alerts, rows.Err()
}

// ExpireAlerts marks all active alerts past their expiration as expired and
// returns the number of rows updated
func (db *DB) ExpireAlerts(now time.Time) (int64, error) {
	query := `
		UPDATE alerts
		SET status = $1
		WHERE status = $2 AND expires_at <= $3
	`

	result, err := db.Exec(query, AlertStatusExpired, AlertStatusActive, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
