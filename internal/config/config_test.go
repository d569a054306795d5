package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"
)

// envVars lists every variable Load reads; each test starts with all of them cleared.
var envVars = []string{
	"GESTOR_DATABASE_URL", "GESTOR_GRPC_ADDR", "GESTOR_HTTP_ADDR", "GESTOR_NATS_URL",
	"GESTOR_AUTH_TOKEN", "GESTOR_TIMEZONE", "GESTOR_ANALYTICS_CONFIG",
	"GESTOR_SYNC_INTERVAL", "GESTOR_SYNC_S3_BUCKET", "GESTOR_SYNC_S3_ENDPOINT",
	"GESTOR_SYNC_S3_REGION", "GESTOR_SYNC_S3_PREFIX",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name         string
		env          map[string]string
		wantErr      bool
		wantGRPCAddr string
		wantHTTPAddr string
		wantNATSURL  string
		wantMemory   bool
	}{
		{
			name:    "MissingDatabaseURL",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:         "DefaultAddresses",
			env:          map[string]string{"GESTOR_DATABASE_URL": "postgres://localhost/gestor"},
			wantGRPCAddr: ":9090",
			wantHTTPAddr: ":8080",
		},
		{
			name: "CustomAddresses",
			env: map[string]string{
				"GESTOR_DATABASE_URL": "postgres://db:5432/gestor",
				"GESTOR_GRPC_ADDR":    ":5050",
				"GESTOR_HTTP_ADDR":    ":3000",
				"GESTOR_NATS_URL":     "nats://localhost:4222",
			},
			wantGRPCAddr: ":5050",
			wantHTTPAddr: ":3000",
			wantNATSURL:  "nats://localhost:4222",
		},
		{
			name:         "MemoryStore",
			env:          map[string]string{"GESTOR_DATABASE_URL": "memory://"},
			wantGRPCAddr: ":9090",
			wantHTTPAddr: ":8080",
			wantMemory:   true,
		},
		{
			name:    "UnknownTimezone",
			env:     map[string]string{"GESTOR_DATABASE_URL": "memory://", "GESTOR_TIMEZONE": "Mars/Olympus"},
			wantErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tc.env["GESTOR_DATABASE_URL"] {
				t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, tc.env["GESTOR_DATABASE_URL"])
			}
			if cfg.GRPCAddr != tc.wantGRPCAddr {
				t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, tc.wantGRPCAddr)
			}
			if cfg.HTTPAddr != tc.wantHTTPAddr {
				t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, tc.wantHTTPAddr)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
			if cfg.InMemory() != tc.wantMemory {
				t.Errorf("InMemory() = %v, want %v", cfg.InMemory(), tc.wantMemory)
			}
		})
	}
}

func TestLoadSyncDefaults(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("GESTOR_DATABASE_URL", "postgres://localhost/gestor")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 10*time.Minute {
		t.Errorf("SyncInterval = %v, want 10m", cfg.SyncInterval)
	}
	if cfg.SyncS3Region != "us-east-1" {
		t.Errorf("SyncS3Region = %q, want %q", cfg.SyncS3Region, "us-east-1")
	}
	if cfg.SyncS3Prefix != "gestor/" {
		t.Errorf("SyncS3Prefix = %q, want %q", cfg.SyncS3Prefix, "gestor/")
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", cfg.Timezone)
	}
}

func TestLoadSyncCustom(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("GESTOR_DATABASE_URL", "postgres://localhost/gestor")
	t.Setenv("GESTOR_SYNC_INTERVAL", "1h")
	t.Setenv("GESTOR_SYNC_S3_BUCKET", "my-bucket")
	t.Setenv("GESTOR_SYNC_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("GESTOR_SYNC_S3_REGION", "sa-east-1")
	t.Setenv("GESTOR_SYNC_S3_PREFIX", "backups/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != time.Hour {
		t.Errorf("SyncInterval = %v, want 1h", cfg.SyncInterval)
	}
	if cfg.SyncS3Bucket != "my-bucket" {
		t.Errorf("SyncS3Bucket = %q", cfg.SyncS3Bucket)
	}
	if cfg.SyncS3Endpoint != "http://minio:9000" {
		t.Errorf("SyncS3Endpoint = %q", cfg.SyncS3Endpoint)
	}
	if cfg.SyncS3Region != "sa-east-1" {
		t.Errorf("SyncS3Region = %q", cfg.SyncS3Region)
	}
	if cfg.SyncS3Prefix != "backups/" {
		t.Errorf("SyncS3Prefix = %q", cfg.SyncS3Prefix)
	}
}

func TestLoadSyncInvalidInterval(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("GESTOR_DATABASE_URL", "postgres://localhost/gestor")
	t.Setenv("GESTOR_SYNC_INTERVAL", "not-a-duration")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid GESTOR_SYNC_INTERVAL")
	}
}

func TestLoadSyncDisabled(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("GESTOR_DATABASE_URL", "postgres://localhost/gestor")
	t.Setenv("GESTOR_SYNC_INTERVAL", "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SyncInterval != 0 {
		t.Errorf("SyncInterval = %v, want 0 (disabled)", cfg.SyncInterval)
	}
}

func TestAnalytics(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("GESTOR_DATABASE_URL", "memory://")
	t.Setenv("GESTOR_TIMEZONE", "Etc/GMT+3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ac, err := cfg.Analytics()
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if ac.Location.String() != "Etc/GMT+3" || ac.RecentWindow != 3 {
		t.Errorf("analytics config = %+v", ac)
	}

	path := filepath.Join(t.TempDir(), "analytics.yaml")
	if err := os.WriteFile(path, []byte("timezone: Etc/GMT-2\nrecent_window: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.AnalyticsConfig = path
	ac, err = cfg.Analytics()
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if ac.Location.String() != "Etc/GMT-2" || ac.RecentWindow != 5 {
		t.Errorf("file settings not applied: location=%s window=%d", ac.Location, ac.RecentWindow)
	}

	cfg.AnalyticsConfig = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := cfg.Analytics(); err == nil {
		t.Error("expected error for missing analytics file")
	}
}

func TestEnvOrDefault(t *testing.T) {
	for _, tc := range []struct {
		name     string
		key      string
		envVal   string
		fallback string
		want     string
	}{
		{"EmptyUsesDefault", "TEST_ENVDEFAULT_EMPTY", "", "default-val", "default-val"},
		{"SetUsesEnv", "TEST_ENVDEFAULT_SET", "custom", "default-val", "custom"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envVal)
			got := envOrDefault(tc.key, tc.fallback)
			if got != tc.want {
				t.Errorf("envOrDefault(%q, %q) = %q, want %q", tc.key, tc.fallback, got, tc.want)
			}
		})
	}
}
