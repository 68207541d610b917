// Package config provides configuration management for the Odds Oracle engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with defaults for every tunable field,
// so a config file is only needed to override them. It expands environment
// variable placeholders in the YAML file (${VAR_NAME}).
func LoadWithDefaults(configPath string) (*Config, error) {
	v := newViper()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ODDS_ORACLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "odds-oracle")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "odds_oracle")
	v.SetDefault("database.user", "odds_oracle")
	v.SetDefault("database.password", "odds_oracle")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("providers.stats.base_url", "https://api.sportsfeed.example.com/stats")
	v.SetDefault("providers.scores.base_url", "https://api.sportsfeed.example.com/scores")
	v.SetDefault("providers.games.base_url", "https://api.sportsfeed.example.com/games")
	v.SetDefault("providers.stats_cache_ttl_seconds", 900)
	v.SetDefault("providers.timeout_seconds", 30)
	v.SetDefault("providers.max_retries", 3)
	v.SetDefault("providers.rate_limit_per_second", 5.0)

	// Factor weights and scaling constants carried over from the original
	// model; tunable, not assumed optimal.
	v.SetDefault("model.net_rating_weight", 0.40)
	v.SetDefault("model.matchup_weight", 0.30)
	v.SetDefault("model.momentum_weight", 0.15)
	v.SetDefault("model.home_court_weight", 0.15)
	v.SetDefault("model.momentum_divisor", 200.0)
	v.SetDefault("model.momentum_scale", 15.0)
	v.SetDefault("model.logistic_divisor", 10.0)
	v.SetDefault("model.confidence_floor", 60.0)
	v.SetDefault("model.confidence_ceiling", 95.0)
	v.SetDefault("model.net_rating_factor_threshold", 5.0)
	v.SetDefault("model.momentum_factor_threshold", 3.0)
	v.SetDefault("model.shooting_gap_threshold", 10.0)
	v.SetDefault("model.moneyline_edge", 0.05)
	v.SetDefault("model.spread_edge", 0.03)
	v.SetDefault("model.spread_sigma", 13.5)
	v.SetDefault("model.total_sigma", 18.0)

	v.SetDefault("calibration.min_samples", 20)
	v.SetDefault("calibration.max_iterations", 100)
	v.SetDefault("calibration.tolerance", 1e-8)

	v.SetDefault("simulation.default_iterations", 10000)
	v.SetDefault("simulation.variance_sample_cap", 500)
	v.SetDefault("simulation.default_variance", 144.0)

	v.SetDefault("sync.sports", []string{"basketball_nba"})
	v.SetDefault("sync.lookback_days", 30)
	v.SetDefault("sync.inter_call_delay_ms", 250)
	v.SetDefault("sync.cron_schedule", "0 6 * * *")
	v.SetDefault("sync.train_on_sync", true)
	v.SetDefault("sync.training_sample_limit", 500)

	v.SetDefault("feedback.min_segment_bets", 10)
	v.SetDefault("feedback.push_threshold", 0.5)
	v.SetDefault("feedback.win_payout", 0.91)
	v.SetDefault("feedback.cron_schedule", "0 7 * * 1")

	v.SetDefault("sports.basketball_nba.avg_points_per_game", 112.0)
	v.SetDefault("sports.basketball_nba.avg_field_goal_pct", 47.0)
	v.SetDefault("sports.basketball_nba.avg_three_point_pct", 36.0)
	v.SetDefault("sports.basketball_nba.avg_free_throw_pct", 78.0)
	v.SetDefault("sports.basketball_nba.avg_rebounds", 44.0)
	v.SetDefault("sports.basketball_nba.avg_turnovers", 13.5)
	v.SetDefault("sports.basketball_nba.home_advantage", 3.0)
	v.SetDefault("sports.basketball_nba.scoring_unit", 1.0)
	v.SetDefault("sports.basketball_nba.score_floor", 70.0)
	v.SetDefault("sports.basketball_nba.score_ceiling", 170.0)
	v.SetDefault("sports.basketball_nba.low_score_max", 210.0)
	v.SetDefault("sports.basketball_nba.medium_score_max", 230.0)

	v.SetDefault("sports.football_nfl.avg_points_per_game", 22.0)
	v.SetDefault("sports.football_nfl.avg_field_goal_pct", 84.0)
	v.SetDefault("sports.football_nfl.avg_three_point_pct", 0.0)
	v.SetDefault("sports.football_nfl.avg_free_throw_pct", 0.0)
	v.SetDefault("sports.football_nfl.avg_rebounds", 0.0)
	v.SetDefault("sports.football_nfl.avg_turnovers", 1.3)
	v.SetDefault("sports.football_nfl.home_advantage", 2.0)
	v.SetDefault("sports.football_nfl.scoring_unit", 1.0)
	v.SetDefault("sports.football_nfl.score_floor", 0.0)
	v.SetDefault("sports.football_nfl.score_ceiling", 70.0)
	v.SetDefault("sports.football_nfl.low_score_max", 38.0)
	v.SetDefault("sports.football_nfl.medium_score_max", 48.0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9091)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("health.port", "8080")
}
