// Package sweep runs the periodic train-forecast-evaluate cycle across the
// monitored locations.
package sweep

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rpenumatsa/airsense-server/internal/alerting"
	"github.com/rpenumatsa/airsense-server/internal/aqi"
	"github.com/rpenumatsa/airsense-server/internal/database"
	"github.com/rpenumatsa/airsense-server/internal/features"
	"github.com/rpenumatsa/airsense-server/internal/forecast"
	"github.com/rpenumatsa/airsense-server/internal/model"
	"github.com/rpenumatsa/airsense-server/internal/observability"
)

// Sweeper executes one full pipeline pass for a single location: load the
// rolling sample window, train per-parameter models, generate forecasts,
// aggregate index points, and evaluate alerts.
type Sweeper struct {
	db             *database.DB
	calc           *aqi.Calculator
	evaluator      *alerting.Evaluator
	store          *forecast.Store
	metrics        *observability.Metrics
	clock          clockwork.Clock
	horizonHours   int
	trainingWindow time.Duration
}

// NewSweeper wires the pipeline for the sweep scheduler
func NewSweeper(db *database.DB, calc *aqi.Calculator, evaluator *alerting.Evaluator, store *forecast.Store, metrics *observability.Metrics, clock clockwork.Clock, horizonHours int, trainingWindow time.Duration) *Sweeper {
	return &Sweeper{
		db:             db,
		calc:           calc,
		evaluator:      evaluator,
		store:          store,
		metrics:        metrics,
		clock:          clock,
		horizonHours:   horizonHours,
		trainingWindow: trainingWindow,
	}
}

// Sweep runs the pipeline for one location. A storage error aborts the whole
// location (retried next cycle, no partial alert writes); a missing live
// weather reading only degrades to synthesized weather.
func (s *Sweeper) Sweep(ctx context.Context, zipcode string) error {
	now := s.clock.Now()

	expired, err := s.db.ExpireAlerts(now)
	if err != nil {
		return fmt.Errorf("failed to expire alerts: %w", err)
	}
	if expired > 0 {
		s.metrics.AlertsExpired.Add(float64(expired))
	}

	since := now.Add(-s.trainingWindow)

	weatherHistory, err := s.db.FindWeather(zipcode, since)
	if err != nil {
		return fmt.Errorf("failed to load weather history: %w", err)
	}

	samplesByParam := make(map[aqi.Parameter][]*database.Sample, len(aqi.Parameters))
	models := make(map[aqi.Parameter]*model.Model, len(aqi.Parameters))
	for _, param := range aqi.Parameters {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		samples, err := s.db.FindSamples(zipcode, string(param), since)
		if err != nil {
			return fmt.Errorf("failed to load %s samples: %w", param, err)
		}
		samplesByParam[param] = samples

		rows := features.BuildTrainingRows(samples, weatherHistory)
		s.metrics.TrainingRows.Observe(float64(len(rows)))

		if m := model.Train(string(param), rows); m != nil {
			models[param] = m
			s.metrics.ModelsTrained.Inc()
		} else {
			s.metrics.ModelFallbacks.Inc()
		}
	}

	// A failed live weather lookup degrades to the synthesized series.
	current, err := s.db.FindLatestWeather(zipcode)
	if err != nil {
		log.Printf("Warning: live weather unavailable for %s, using synthesized series: %v", zipcode, err)
		current = nil
	}

	start := now.Truncate(time.Hour)
	gen := forecast.NewGenerator(zipcode, now)
	weather := gen.Weather(current, start, s.horizonHours)

	perParameter := make(map[string][]forecast.Point, len(aqi.Parameters))
	for _, param := range aqi.Parameters {
		points := gen.Forecast(param, models[param], samplesByParam[param], weather, s.horizonHours)
		perParameter[string(param)] = points
	}

	indexPoints := forecast.AggregateIndex(s.calc, perParameter, s.horizonHours)

	s.store.Put(&forecast.Result{
		Zipcode:      zipcode,
		GeneratedAt:  now,
		HorizonHours: s.horizonHours,
		PerParameter: perParameter,
		Index:        indexPoints,
		Confidence:   forecast.OverallConfidence(perParameter),
	})

	if _, err := s.evaluator.Evaluate(ctx, zipcode); err != nil {
		return fmt.Errorf("alert evaluation failed: %w", err)
	}

	return nil
}
