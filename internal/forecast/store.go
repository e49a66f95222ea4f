package forecast

import (
	"sync"
	"time"
)

// Result is the forecast output contract consumed by the presentation layer
type Result struct {
	Zipcode      string             `json:"zipcode"`
	GeneratedAt  time.Time          `json:"generated_at"`
	HorizonHours int                `json:"horizon_hours"`
	PerParameter map[string][]Point `json:"per_parameter"`
	Index        []IndexPoint       `json:"index"`
	Confidence   float64            `json:"confidence"`
}

// OverallConfidence is the mean confidence across all forecast points
func OverallConfidence(perParameter map[string][]Point) float64 {
	var sum float64
	var count int
	for _, series := range perParameter {
		for _, p := range series {
			sum += p.Confidence
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Store holds the latest forecast result per location for the query API.
// Results are ephemeral: each sweep replaces the previous one wholesale.
type Store struct {
	mu      sync.RWMutex
	results map[string]*Result
}

// NewStore creates an empty forecast store
func NewStore() *Store {
	return &Store{results: make(map[string]*Result)}
}

// Put replaces the stored result for a location
func (s *Store) Put(result *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.Zipcode] = result
}

// Get returns the latest result for a location, or nil
func (s *Store) Get(zipcode string) *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results[zipcode]
}
