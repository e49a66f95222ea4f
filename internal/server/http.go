// Package server exposes the query API for forecasts and active alerts,
// plus health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rpenumatsa/airsense-server/internal/database"
	"github.com/rpenumatsa/airsense-server/internal/forecast"
)

// AlertFinder provides read access to active alerts
type AlertFinder interface {
	FindActiveAlerts(zipcode string) ([]*database.AlertRecord, error)
}

// Server serves the forecast and alert query API
type Server struct {
	httpServer *http.Server
	forecasts  *forecast.Store
	alerts     AlertFinder
}

// NewServer creates the HTTP server with forecast, alert, health, and metrics
// routes
func NewServer(addr string, forecasts *forecast.Store, alerts AlertFinder) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		forecasts: forecasts,
		alerts:    alerts,
	}

	mux.HandleFunc("GET /api/forecast/{zipcode}", s.handleForecast)
	mux.HandleFunc("GET /api/alerts/{zipcode}", s.handleAlerts)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	zipcode := r.PathValue("zipcode")

	result := s.forecasts.Get(zipcode)
	if result == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no forecast available for location",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	zipcode := r.PathValue("zipcode")

	alerts, err := s.alerts.FindActiveAlerts(zipcode)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to query alerts",
		})
		return
	}
	if alerts == nil {
		alerts = []*database.AlertRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"zipcode": zipcode,
		"alerts":  alerts,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
