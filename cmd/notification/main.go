package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpenumatsa/airsense-server/internal/notification"
	"github.com/rpenumatsa/airsense-server/internal/protocol"
	"github.com/rpenumatsa/airsense-server/internal/queue"
	"github.com/rpenumatsa/airsense-server/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Notification Service...")

	// Create email notifier
	emailNotifier := notification.NewEmailNotifier(&cfg.SMTP)

	// Create consumer for alerts
	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts, "notification-group")
	defer consumer.Close()
	fmt.Println("Kafka consumer initialized")

	ctx := context.Background()

	fmt.Println("\n✓ Notification Service is running")
	fmt.Println("✓ Press Ctrl+C to stop")

	// Start consuming and sending notifications
	go func() {
		for {
			msg, err := consumer.Consume(ctx)
			if err != nil {
				log.Printf("Failed to consume message: %v\n", err)
				continue
			}

			alert, err := protocol.DecodeAlertMessage(msg.Value)
			if err != nil {
				log.Printf("Failed to decode alert: %v\n", err)
				consumer.Commit(ctx, msg)
				continue
			}

			// Delivery failures are logged, never retried synchronously.
			if err := emailNotifier.SendAlertNotification(alert); err != nil {
				log.Printf("Failed to send notification for alert %s: %v\n", alert.AlertID, err)
			}

			if err := consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit offset: %v\n", err)
			}
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
}
