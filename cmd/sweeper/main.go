package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/rpenumatsa/airsense-server/internal/alerting"
	"github.com/rpenumatsa/airsense-server/internal/aqi"
	"github.com/rpenumatsa/airsense-server/internal/database"
	"github.com/rpenumatsa/airsense-server/internal/forecast"
	"github.com/rpenumatsa/airsense-server/internal/notification"
	"github.com/rpenumatsa/airsense-server/internal/observability"
	"github.com/rpenumatsa/airsense-server/internal/queue"
	"github.com/rpenumatsa/airsense-server/internal/server"
	"github.com/rpenumatsa/airsense-server/internal/sweep"
	"github.com/rpenumatsa/airsense-server/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if len(cfg.Sweep.Zipcodes) == 0 {
		log.Fatal("SWEEP_ZIPCODES must list at least one location")
	}

	fmt.Println("Starting Sweeper Service...")

	// Connect to database
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	fmt.Println("Connected to Redis")

	// Load the breakpoint table artifact
	table, err := aqi.LoadTable(cfg.Sweep.BreakpointsPath)
	if err != nil {
		log.Fatalf("Failed to load breakpoint table: %v", err)
	}
	calc := aqi.NewCalculator(table)
	fmt.Printf("Breakpoint table loaded (version %d)\n", table.Version)

	// Create alerts topic for notification fan-out
	if err := queue.CreateTopic(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts, 1, 1); err != nil {
		fmt.Printf("Note: Topic creation failed (may already exist): %v\n", err)
	}

	alertProducer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts)
	defer alertProducer.Close()

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()
	states := alerting.NewStateManager(redisClient)

	dispatcher := notification.NewDispatcher(metrics, notification.NewKafkaChannel(alertProducer))

	alertCfg := alerting.DefaultConfig()
	alertCfg.Quiet.Enabled = cfg.Alerting.QuietHoursEnabled
	alertCfg.Quiet.StartHour = cfg.Alerting.QuietStartHour
	alertCfg.Quiet.EndHour = cfg.Alerting.QuietEndHour
	alertCfg.Thresholds[0].Enabled = cfg.Alerting.ModerateEnabled
	alertCfg.DedupWindow = cfg.Alerting.DedupWindow
	alertCfg.Lookback = cfg.Alerting.Lookback
	alertCfg.AlertTTL = cfg.Alerting.AlertTTL

	evaluator := alerting.NewEvaluator(db, db, dispatcher, calc, states, metrics, alertCfg, clock)

	forecastStore := forecast.NewStore()
	sweeper := sweep.NewSweeper(db, calc, evaluator, forecastStore, metrics, clock,
		cfg.Sweep.HorizonHours, cfg.Sweep.TrainingWindow)

	scheduler := sweep.NewScheduler(sweeper, states, metrics, clock, cfg.Sweep.Interval, cfg.Sweep.Zipcodes)
	scheduler.Start(ctx)
	defer scheduler.Stop()
	fmt.Printf("Sweep scheduler started (interval %s, %d locations)\n",
		cfg.Sweep.Interval, len(cfg.Sweep.Zipcodes))

	// Query API
	httpServer := server.NewServer(cfg.HTTP.Addr, forecastStore, db)
	go func() {
		if err := httpServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	fmt.Println("\n✓ Sweeper Service is running")
	fmt.Printf("✓ HTTP API listening on %s\n", cfg.HTTP.Addr)
	fmt.Println("✓ Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
}
