package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpenumatsa/airsense-server/internal/aqi"
	"github.com/rpenumatsa/airsense-server/internal/database"
	"github.com/rpenumatsa/airsense-server/internal/ingest"
	"github.com/rpenumatsa/airsense-server/internal/observability"
	"github.com/rpenumatsa/airsense-server/internal/queue"
	"github.com/rpenumatsa/airsense-server/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Ingest Service...")
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create ingestion topics
	for _, topic := range []string{cfg.Kafka.TopicSamples, cfg.Kafka.TopicWeather} {
		if err := queue.CreateTopic(cfg.Kafka.Brokers, topic, cfg.Kafka.NumPartitions, 1); err != nil {
			fmt.Printf("Note: Topic creation failed (may already exist): %v\n", err)
		}
	}

	table, err := aqi.LoadTable(cfg.Sweep.BreakpointsPath)
	if err != nil {
		log.Fatalf("Failed to load breakpoint table: %v", err)
	}
	calc := aqi.NewCalculator(table)

	metrics := observability.NewMetrics()

	ctx := context.Background()

	// One consumer + batch writer per topic (batch size: 100, flush: 5s)
	sampleConsumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicSamples, "ingest-samples-group")
	defer sampleConsumer.Close()
	sampleWriter := queue.NewBatchWriter(sampleConsumer, ingest.SampleHandler(db, calc, metrics), 100, 5*time.Second)
	if err := sampleWriter.Start(ctx); err != nil {
		log.Fatalf("Failed to start sample writer: %v", err)
	}

	weatherConsumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicWeather, "ingest-weather-group")
	defer weatherConsumer.Close()
	weatherWriter := queue.NewBatchWriter(weatherConsumer, ingest.WeatherHandler(db, metrics), 100, 5*time.Second)
	if err := weatherWriter.Start(ctx); err != nil {
		log.Fatalf("Failed to start weather writer: %v", err)
	}

	fmt.Println("\n✓ Ingest Service is running")
	fmt.Println("✓ Consuming sample and weather topics into PostgreSQL")
	fmt.Println("✓ Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
	sampleWriter.Stop()
	weatherWriter.Stop()
	fmt.Println("Ingest Service stopped")
}
