// Package config loads the gestor server configuration from GESTOR_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/analytics"
)

// MemoryDatabaseURL selects the in-memory store instead of Postgres.
const MemoryDatabaseURL = "memory://"

type Config struct {
	DatabaseURL string // GESTOR_DATABASE_URL (required; "memory://" = in-memory store)
	GRPCAddr    string // GESTOR_GRPC_ADDR (default ":9090")
	HTTPAddr    string // GESTOR_HTTP_ADDR (default ":8080")
	NATSURL     string // GESTOR_NATS_URL (optional, empty = no events)
	AuthToken   string // GESTOR_AUTH_TOKEN (optional, empty = auth disabled)

	// Analytics settings
	Timezone        string // GESTOR_TIMEZONE (default "UTC")
	AnalyticsConfig string // GESTOR_ANALYTICS_CONFIG (optional YAML file)

	// Sync settings
	SyncInterval   time.Duration // GESTOR_SYNC_INTERVAL (default 10m; 0 = disabled)
	SyncS3Bucket   string        // GESTOR_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // GESTOR_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // GESTOR_SYNC_S3_REGION (default "us-east-1")
	SyncS3Prefix   string        // GESTOR_SYNC_S3_PREFIX (default "gestor/")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:     os.Getenv("GESTOR_DATABASE_URL"),
		GRPCAddr:        envOrDefault("GESTOR_GRPC_ADDR", ":9090"),
		HTTPAddr:        envOrDefault("GESTOR_HTTP_ADDR", ":8080"),
		NATSURL:         os.Getenv("GESTOR_NATS_URL"),
		AuthToken:       os.Getenv("GESTOR_AUTH_TOKEN"),
		Timezone:        envOrDefault("GESTOR_TIMEZONE", "UTC"),
		AnalyticsConfig: os.Getenv("GESTOR_ANALYTICS_CONFIG"),
		SyncS3Bucket:    os.Getenv("GESTOR_SYNC_S3_BUCKET"),
		SyncS3Endpoint:  os.Getenv("GESTOR_SYNC_S3_ENDPOINT"),
		SyncS3Region:    envOrDefault("GESTOR_SYNC_S3_REGION", "us-east-1"),
		SyncS3Prefix:    envOrDefault("GESTOR_SYNC_S3_PREFIX", "gestor/"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("GESTOR_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("GESTOR_SYNC_INTERVAL", "10m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("GESTOR_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return nil, fmt.Errorf("GESTOR_TIMEZONE: %w", err)
	}

	return c, nil
}

// InMemory reports whether the in-memory store was requested.
func (c *Config) InMemory() bool {
	return c.DatabaseURL == MemoryDatabaseURL
}

// Analytics loads the analytics configuration file, if any. GESTOR_TIMEZONE
// applies unless the file sets its own timezone.
func (c *Config) Analytics() (analytics.Config, error) {
	ac, err := analytics.LoadConfig(c.AnalyticsConfig)
	if err != nil {
		return analytics.Config{}, err
	}
	if ac.Location == time.UTC && c.Timezone != "" && c.Timezone != "UTC" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return analytics.Config{}, fmt.Errorf("GESTOR_TIMEZONE: %w", err)
		}
		ac.Location = loc
	}
	return ac, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
