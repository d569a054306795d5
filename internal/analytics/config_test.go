package analytics

import (
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

func strategyNames(chain []HoursStrategy) []string {
	names := make([]string, len(chain))
	for i, s := range chain {
		names[i] = s.Name
	}
	return names
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.RecentWindow)
	assert.Equal(t, 3650, cfg.ProjectionHorizonDays)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, []string{"estimate", "actual"}, strategyNames(cfg.Strategies))
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name       string
		yaml       string
		wantErr    bool
		errMsg     string
		location   string
		window     int
		horizon    int
		strategies []string
	}{
		{
			name: "full configuration",
			yaml: `
timezone: America/Sao_Paulo
recent_window: 5
projection_horizon_days: 90
hours_strategies: [actual, estimate]
`,
			location:   "America/Sao_Paulo",
			window:     5,
			horizon:    90,
			strategies: []string{"actual", "estimate"},
		},
		{
			name:       "partial keeps defaults",
			yaml:       "recent_window: 2\n",
			location:   "UTC",
			window:     2,
			horizon:    3650,
			strategies: []string{"estimate", "actual"},
		},
		{
			name:       "empty document",
			yaml:       "",
			location:   "UTC",
			window:     3,
			horizon:    3650,
			strategies: []string{"estimate", "actual"},
		},
		{name: "unknown strategy", yaml: "hours_strategies: [story_points]", wantErr: true, errMsg: `unknown hours strategy "story_points"`},
		{name: "zero window", yaml: "recent_window: 0", wantErr: true, errMsg: "recent_window must be >= 1"},
		{name: "negative horizon", yaml: "projection_horizon_days: -1", wantErr: true, errMsg: "projection_horizon_days must be >= 1"},
		{name: "bad timezone", yaml: "timezone: Mars/Olympus", wantErr: true, errMsg: "timezone"},
		{name: "malformed", yaml: "recent_window: [1", wantErr: true, errMsg: "parse analytics config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.location, cfg.Location.String())
			assert.Equal(t, tt.window, cfg.RecentWindow)
			assert.Equal(t, tt.horizon, cfg.ProjectionHorizonDays)
			assert.Equal(t, tt.strategies, strategyNames(cfg.Strategies))
		})
	}
}

func TestParseConfig_ActualFirstChain(t *testing.T) {
	cfg, err := ParseConfig([]byte("hours_strategies: [actual, estimate]\n"))
	require.NoError(t, err)

	task := &model.Task{EstimateHours: 2, ActualHours: 7}
	assert.Equal(t, 7.0, Contribution(task, cfg.Strategies))
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.RecentWindow)

	path := filepath.Join(t.TempDir(), "analytics.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recent_window: 4\n"), 0o600))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.RecentWindow)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read analytics config")
}

func TestContribution(t *testing.T) {
	chain := DefaultConfig().Strategies
	for _, tc := range []struct {
		name     string
		estimate float64
		actual   float64
		want     float64
	}{
		{"EstimatePreferred", 8, 12, 8},
		{"FallsBackToActual", 0, 5, 5},
		{"NothingKnown", 0, 0, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			task := &model.Task{EstimateHours: tc.estimate, ActualHours: tc.actual}
			assert.Equal(t, tc.want, Contribution(task, chain))
		})
	}
}

func TestZeroConfigIsNormalized(t *testing.T) {
	r := ComputeVelocity([]SprintTasks{sprintWithVelocity("a", 0, 4)}, Config{})
	assert.Equal(t, 4.0, r.Metrics.Forecast)
}
