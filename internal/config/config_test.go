package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithDefaultsNoFileIsValid(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, Validate(cfg), "the built-in defaults must validate on their own")

	assert.Equal(t, "odds-oracle", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 30, cfg.Sync.LookbackDays)
	assert.InDelta(t, 1.0,
		cfg.Model.NetRatingWeight+cfg.Model.MatchupWeight+cfg.Model.MomentumWeight+cfg.Model.HomeCourtWeight,
		0.001)

	nba, ok := cfg.Baselines("basketball_nba")
	require.True(t, ok, "the default NBA baselines must be present")
	assert.Equal(t, 112.0, nba.AvgPointsPerGame)

	_, ok = cfg.Baselines("football_nfl")
	assert.True(t, ok, "the default NFL baselines must be present")
}

func TestLoadWithDefaultsFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  log_level: debug
sync:
  lookback_days: 7
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 7, cfg.Sync.LookbackDays)
	// Untouched keys keep their defaults.
	assert.Equal(t, 500, cfg.Sync.TrainingSampleLimit)
}

func TestLoadWithDefaultsEnvOverride(t *testing.T) {
	t.Setenv("ODDS_ORACLE_SYNC_LOOKBACK_DAYS", "14")

	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.Sync.LookbackDays)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "strict Load requires the file to exist")
}

func TestValidateRejectsWeightsNotSummingToOne(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Model.NetRatingWeight = 0.6

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights must sum to 1.0")
}

func TestValidateRejectsInvertedConfidenceBand(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Model.ConfidenceFloor = 95
	cfg.Model.ConfidenceCeiling = 60

	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsUnknownSyncSport(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Sync.Sports = []string{"cricket_ipl"}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unconfigured sport")
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.App.LogLevel = "verbose"

	assert.Error(t, Validate(cfg))
}

func TestValidateProductionRequiresSSL(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "disable"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SSL")

	cfg.Database.SSLMode = "require"
	assert.NoError(t, Validate(cfg))
}

func TestValidateRejectsInvertedScoreBands(t *testing.T) {
	cfg := defaultConfig(t)
	nba := cfg.Sports["basketball_nba"]
	nba.LowScoreMax = 240
	cfg.Sports["basketball_nba"] = nba

	assert.Error(t, Validate(cfg))
}

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	return cfg
}
