package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Evaluation statuses
const (
	StatusNormal   = "NORMAL"
	StatusAlerting = "ALERTING"
)

// EvalState is the last evaluation outcome for a location
type EvalState struct {
	Status      string    `json:"status"`
	LastIndex   int       `json:"last_index"`
	LastAlert   string    `json:"last_alert,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// StateManager keeps evaluation state and sweep locks in Redis
type StateManager struct {
	redis *redis.Client
}

// NewStateManager creates a new state manager
func NewStateManager(redisClient *redis.Client) *StateManager {
	return &StateManager{redis: redisClient}
}

// GetEvalState retrieves the evaluation state for a location
func (sm *StateManager) GetEvalState(ctx context.Context, zipcode string) (*EvalState, error) {
	key := fmt.Sprintf("eval_state:%s", zipcode)

	data, err := sm.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return &EvalState{Status: StatusNormal}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state from Redis: %w", err)
	}

	var state EvalState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &state, nil
}

// SetEvalState saves the evaluation state for a location
func (sm *StateManager) SetEvalState(ctx context.Context, zipcode string, state *EvalState) error {
	key := fmt.Sprintf("eval_state:%s", zipcode)

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Expire stale state after 7 days so removed locations clean themselves up
	if err := sm.redis.Set(ctx, key, data, 7*24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to set state in Redis: %w", err)
	}

	return nil
}

// AcquireSweepLock takes the per-location sweep lock. It returns false when
// another sweep for the same location is already in flight, which guarantees
// the dedup check-then-write sequence is never raced on one location.
func (sm *StateManager) AcquireSweepLock(ctx context.Context, zipcode string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("sweep_lock:%s", zipcode)

	ok, err := sm.redis.SetNX(ctx, key, time.Now().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	return ok, nil
}

// ReleaseSweepLock releases the per-location sweep lock
func (sm *StateManager) ReleaseSweepLock(ctx context.Context, zipcode string) error {
	key := fmt.Sprintf("sweep_lock:%s", zipcode)
	return sm.redis.Del(ctx, key).Err()
}
