package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	HTTP     HTTPConfig
	Sweep    SweepConfig
	Alerting AlertingConfig
	SMTP     SMTPConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	TopicSamples  string
	TopicWeather  string
	TopicAlerts   string
	NumPartitions int
}

type HTTPConfig struct {
	Addr string
}

type SweepConfig struct {
	Interval        time.Duration
	HorizonHours    int
	TrainingWindow  time.Duration
	Zipcodes        []string
	BreakpointsPath string
}

type AlertingConfig struct {
	QuietHoursEnabled bool
	QuietStartHour    int
	QuietEndHour      int
	ModerateEnabled   bool
	DedupWindow       time.Duration
	Lookback          time.Duration
	AlertTTL          time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "airsense_user"),
			Password: getEnv("DB_PASSWORD", "airsense_pass"),
			DBName:   getEnv("DB_NAME", "airsense_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicSamples:  getEnv("KAFKA_TOPIC_SAMPLES", "airsense.samples.raw"),
			TopicWeather:  getEnv("KAFKA_TOPIC_WEATHER", "airsense.weather.raw"),
			TopicAlerts:   getEnv("KAFKA_TOPIC_ALERTS", "airsense.alerts"),
			NumPartitions: getEnvAsInt("KAFKA_NUM_PARTITIONS", 10),
		},
		HTTP: HTTPConfig{
			Addr: getEnv("HTTP_ADDR", ":8090"),
		},
		Sweep: SweepConfig{
			Interval:        getEnvAsDuration("SWEEP_INTERVAL", 15*time.Minute),
			HorizonHours:    getEnvAsInt("SWEEP_HORIZON_HOURS", 24),
			TrainingWindow:  getEnvAsDuration("SWEEP_TRAINING_WINDOW", 30*24*time.Hour),
			Zipcodes:        splitNonEmpty(getEnv("SWEEP_ZIPCODES", "")),
			BreakpointsPath: getEnv("BREAKPOINTS_PATH", ""),
		},
		Alerting: AlertingConfig{
			QuietHoursEnabled: getEnvAsBool("ALERT_QUIET_HOURS_ENABLED", true),
			QuietStartHour:    getEnvAsInt("ALERT_QUIET_START_HOUR", 22),
			QuietEndHour:      getEnvAsInt("ALERT_QUIET_END_HOUR", 7),
			ModerateEnabled:   getEnvAsBool("ALERT_MODERATE_ENABLED", false),
			DedupWindow:       getEnvAsDuration("ALERT_DEDUP_WINDOW", time.Hour),
			Lookback:          getEnvAsDuration("ALERT_LOOKBACK", 3*time.Hour),
			AlertTTL:          getEnvAsDuration("ALERT_TTL", 24*time.Hour),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "airsense@example.com"),
			To:       getEnv("SMTP_TO", "subscribers@example.com"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
