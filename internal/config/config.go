package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"eatery/internal/finder"
	"eatery/internal/input"
)

var ErrMissing = errors.New("required setting is not set")

type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Enabled reports whether an endpoint was configured at all.
func (m MinIO) Enabled() bool {
	return m.Endpoint != ""
}

func (m MinIO) Validate() error {
	for name, v := range map[string]string{
		"MINIO_ENDPOINT":   m.Endpoint,
		"MINIO_ACCESS_KEY": m.AccessKey,
		"MINIO_SECRET_KEY": m.SecretKey,
		"RESULTS_BUCKET":   m.Bucket,
	} {
		if v == "" {
			return fmt.Errorf("%s: %w", name, ErrMissing)
		}
	}
	return nil
}

type Kafka struct {
	Broker  string
	Topic   string
	GroupID string
}

type Config struct {
	PlacesAPIKey     string
	PlacesBaseURL    string
	RoutingBaseURL   string
	NominatimBaseURL string
	HTTPTimeout      time.Duration
	Concurrency      int
	FailurePolicy    finder.Policy
	Columns          input.Columns
	MinIO            MinIO
	DatabaseURL      string
	Kafka            Kafka
}

// Load reads the environment. Empty base URLs mean each client's default.
func Load() (Config, error) {
	cfg := Config{
		HTTPTimeout: 30 * time.Second,
		Concurrency: 1,
		Columns:     input.DefaultColumns,
		MinIO:       MinIO{Bucket: "eatery"},
		Kafka:       Kafka{Topic: "eatery-results", GroupID: "eatery-loader"},
	}

	cfg.PlacesAPIKey = os.Getenv("PLACES_API_KEY")
	cfg.PlacesBaseURL = os.Getenv("PLACES_BASE_URL")
	cfg.RoutingBaseURL = os.Getenv("ROUTING_BASE_URL")
	cfg.NominatimBaseURL = os.Getenv("NOMINATIM_BASE_URL")

	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("HTTP_TIMEOUT_SECONDS: invalid value %q", v)
		}
		cfg.HTTPTimeout = time.Duration(n) * time.Second
	}
	if v := os.Getenv("FINDER_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("FINDER_CONCURRENCY: invalid value %q", v)
		}
		cfg.Concurrency = n
	}
	policy, err := finder.ParsePolicy(os.Getenv("FINDER_FAILURE_POLICY"))
	if err != nil {
		return Config{}, fmt.Errorf("FINDER_FAILURE_POLICY: %w", err)
	}
	cfg.FailurePolicy = policy

	cfg.Columns.Name = getenv("INPUT_NAME_COLUMN", cfg.Columns.Name)
	cfg.Columns.Latitude = getenv("INPUT_LAT_COLUMN", cfg.Columns.Latitude)
	cfg.Columns.Longitude = getenv("INPUT_LON_COLUMN", cfg.Columns.Longitude)

	cfg.MinIO.Endpoint = os.Getenv("MINIO_ENDPOINT")
	cfg.MinIO.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	cfg.MinIO.SecretKey = os.Getenv("MINIO_SECRET_KEY")
	cfg.MinIO.Bucket = getenv("RESULTS_BUCKET", cfg.MinIO.Bucket)
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("MINIO_USE_SSL: %w", err)
		}
		cfg.MinIO.UseSSL = b
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = getenv("KAFKA_TOPIC", cfg.Kafka.Topic)
	cfg.Kafka.GroupID = getenv("KAFKA_GROUP_ID", cfg.Kafka.GroupID)

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
