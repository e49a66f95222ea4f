// Package alerting evaluates live samples against the severity threshold
// ladder and creates deduplicated, quiet-hours-aware health alerts.
package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/rpenumatsa/airsense-server/internal/aqi"
	"github.com/rpenumatsa/airsense-server/internal/database"
	"github.com/rpenumatsa/airsense-server/internal/observability"
)

// SampleSource provides read access to live samples
type SampleSource interface {
	FindLatestSample(zipcode, parameter, source string, since time.Time) (*database.Sample, error)
}

// AlertStore persists and queries alert records
type AlertStore interface {
	InsertAlert(a *database.AlertRecord) error
	FindRecentAlert(zipcode, severity string, since time.Time) (*database.AlertRecord, error)
}

// Dispatcher fans a created alert out to the notification channels.
// Implementations must not block alert persistence.
type Dispatcher interface {
	Dispatch(a *database.AlertRecord)
}

// Threshold is one rung of the severity ladder
type Threshold struct {
	Severity string
	MinIndex int
	Enabled  bool
}

// DefaultThresholds returns the ladder with the plain-moderate rung disabled,
// matching the default alerting policy.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Severity: database.SeverityModerate, MinIndex: 100, Enabled: false},
		{Severity: database.SeverityModerate, MinIndex: 101, Enabled: true},
		{Severity: database.SeverityHigh, MinIndex: 151, Enabled: true},
		{Severity: database.SeverityCritical, MinIndex: 201, Enabled: true},
	}
}

// QuietHours suppresses non-top-tier alerts inside a daily window. The window
// may wrap past midnight (e.g. 22:00-07:00).
type QuietHours struct {
	Enabled   bool
	StartHour int
	EndHour   int
}

// Active reports whether t falls inside the quiet window
func (q QuietHours) Active(t time.Time) bool {
	if !q.Enabled || q.StartHour == q.EndHour {
		return false
	}
	hour := t.Hour()
	if q.StartHour < q.EndHour {
		return hour >= q.StartHour && hour < q.EndHour
	}
	// Overnight wraparound.
	return hour >= q.StartHour || hour < q.EndHour
}

// Config holds the evaluator policy knobs
type Config struct {
	Thresholds  []Threshold
	Quiet       QuietHours
	DedupWindow time.Duration
	Lookback    time.Duration
	AlertTTL    time.Duration
}

// DefaultConfig returns the standard evaluation policy
func DefaultConfig() Config {
	return Config{
		Thresholds:  DefaultThresholds(),
		Quiet:       QuietHours{Enabled: true, StartHour: 22, EndHour: 7},
		DedupWindow: time.Hour,
		Lookback:    3 * time.Hour,
		AlertTTL:    24 * time.Hour,
	}
}

// Evaluator runs the per-location alert evaluation cycle
type Evaluator struct {
	samples    SampleSource
	alerts     AlertStore
	dispatcher Dispatcher
	calc       *aqi.Calculator
	states     *StateManager
	metrics    *observability.Metrics
	cfg        Config
	clock      clockwork.Clock
}

// NewEvaluator creates an alert evaluator. The state manager may be nil when
// no Redis is available; evaluation state tracking is then skipped.
func NewEvaluator(samples SampleSource, alerts AlertStore, dispatcher Dispatcher, calc *aqi.Calculator, states *StateManager, metrics *observability.Metrics, cfg Config, clock clockwork.Clock) *Evaluator {
	return &Evaluator{
		samples:    samples,
		alerts:     alerts,
		dispatcher: dispatcher,
		calc:       calc,
		states:     states,
		metrics:    metrics,
		cfg:        cfg,
		clock:      clock,
	}
}

// Evaluate runs one alert evaluation for a location. It returns the created
// alert record, or nil when nothing was created: no data, below every
// threshold, quiet hours, or dedup hit are all expected outcomes.
func (e *Evaluator) Evaluate(ctx context.Context, zipcode string) (*database.AlertRecord, error) {
	now := e.clock.Now()

	index, dominant, sample := e.currentIndex(zipcode, now)
	if sample == nil {
		e.setState(ctx, zipcode, StatusNormal, 0, "", now)
		return nil, nil
	}

	tier := e.highestTierMet(index)
	if tier == nil {
		e.setState(ctx, zipcode, StatusNormal, index, "", now)
		return nil, nil
	}

	// Escalation runs before the quiet-hours and dedup checks so both key on
	// the severity that will actually be stored.
	severity := escalate(tier.Severity, index)

	if e.cfg.Quiet.Active(now) && severity != e.topTierSeverity() {
		e.metrics.AlertsSuppressed.WithLabelValues("quiet_hours").Inc()
		return nil, nil
	}

	existing, err := e.alerts.FindRecentAlert(zipcode, severity, now.Add(-e.cfg.DedupWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to query recent alerts: %w", err)
	}
	if existing != nil {
		// Same location and severity inside the dedup window: expected,
		// suppress silently.
		e.metrics.AlertsSuppressed.WithLabelValues("dedup").Inc()
		return nil, nil
	}

	message, impact := alertText(severity, dominant, index)
	record := &database.AlertRecord{
		ID:                uuid.New().String(),
		Zipcode:           zipcode,
		Lat:               sample.Lat,
		Lon:               sample.Lon,
		Severity:          severity,
		IndexValue:        index,
		DominantParameter: dominant,
		Message:           message,
		HealthImpact:      impact,
		Status:            database.AlertStatusActive,
		CreatedAt:         now,
		ExpiresAt:         now.Add(e.cfg.AlertTTL),
	}

	if err := e.alerts.InsertAlert(record); err != nil {
		return nil, fmt.Errorf("failed to insert alert: %w", err)
	}

	e.metrics.AlertsCreated.WithLabelValues(record.Severity).Inc()
	e.setState(ctx, zipcode, StatusAlerting, index, record.Severity, now)

	// Notification fan-out is fire-and-forget; channel failures never roll
	// back the persisted record.
	e.dispatcher.Dispatch(record)

	return record, nil
}

// currentIndex computes the present index from the newest real sample per
// parameter within the lookback window, preferring ground-station data over
// satellite. Returns the max index, the parameter producing it, and the
// sample it came from.
func (e *Evaluator) currentIndex(zipcode string, now time.Time) (int, string, *database.Sample) {
	since := now.Add(-e.cfg.Lookback)

	best := -1
	var dominant string
	var bestSample *database.Sample

	for _, param := range aqi.Parameters {
		s, err := e.samples.FindLatestSample(zipcode, string(param), database.SourceGround, since)
		if err != nil || s == nil {
			s, err = e.samples.FindLatestSample(zipcode, string(param), database.SourceSatellite, since)
			if err != nil || s == nil {
				continue
			}
		}

		index, ok := e.calc.ComputeIndex(param, s.Value, aqi.Unit(s.Unit))
		if !ok {
			continue
		}

		if index > best {
			best = index
			dominant = string(param)
			bestSample = s
		}
	}

	if bestSample == nil {
		return 0, "", nil
	}
	return best, dominant, bestSample
}

// highestTierMet returns the highest enabled threshold the index reaches
func (e *Evaluator) highestTierMet(index int) *Threshold {
	var met *Threshold
	for i := range e.cfg.Thresholds {
		t := &e.cfg.Thresholds[i]
		if t.Enabled && index >= t.MinIndex {
			met = t
		}
	}
	return met
}

// topTierSeverity returns the severity of the highest enabled rung; only that
// tier bypasses quiet hours
func (e *Evaluator) topTierSeverity() string {
	top := ""
	for _, t := range e.cfg.Thresholds {
		if t.Enabled {
			top = t.Severity
		}
	}
	return top
}

func (e *Evaluator) setState(ctx context.Context, zipcode, status string, index int, severity string, now time.Time) {
	if e.states == nil {
		return
	}
	state := &EvalState{
		Status:      status,
		LastIndex:   index,
		LastAlert:   severity,
		EvaluatedAt: now,
	}
	if err := e.states.SetEvalState(ctx, zipcode, state); err != nil {
		fmt.Printf("Failed to save evaluation state for %s: %v\n", zipcode, err)
	}
}

// escalate is a safety net over the ladder classification: the stored severity
// must never understate the index, even under a reconfigured ladder. It runs
// before the dedup query so the dedup key, the alert copy, and the stored row
// all agree on the same severity.
func escalate(severity string, index int) string {
	if index > 200 && severity != database.SeverityCritical {
		return database.SeverityCritical
	}
	if index > 150 && severity == database.SeverityModerate {
		return database.SeverityHigh
	}
	return severity
}
