// Package config provides configuration management for the Odds Oracle engine.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig                 `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig            `mapstructure:"database" validate:"required"`
	Providers   ProvidersConfig           `mapstructure:"providers" validate:"required"`
	Model       ModelConfig               `mapstructure:"model" validate:"required"`
	Calibration CalibrationConfig         `mapstructure:"calibration" validate:"required"`
	Simulation  SimulationConfig          `mapstructure:"simulation" validate:"required"`
	Sync        SyncConfig                `mapstructure:"sync" validate:"required"`
	Feedback    FeedbackConfig            `mapstructure:"feedback" validate:"required"`
	Sports      map[string]SportBaselines `mapstructure:"sports" validate:"required,min=1,dive"`
	Metrics     MetricsConfig             `mapstructure:"metrics" validate:"required"`
	Health      HealthConfig              `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ProvidersConfig configures the three upstream data sources.
type ProvidersConfig struct {
	Stats  ProviderConfig `mapstructure:"stats" validate:"required"`
	Scores ProviderConfig `mapstructure:"scores" validate:"required"`
	Games  ProviderConfig `mapstructure:"games" validate:"required"`
	// StatsCacheTTLSeconds bounds how long team stats and recent games are
	// cached between predictions within one process.
	StatsCacheTTLSeconds int     `mapstructure:"stats_cache_ttl_seconds" validate:"required,gt=0"`
	TimeoutSeconds       int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries           int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSecond   float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
}

// ProviderConfig represents a single upstream data source.
type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"`
}

// ModelConfig carries the matchup-model factor weights and thresholds. These
// are tunable defaults, not fixed truths; the feedback analyzer treats them as
// recalibration targets.
type ModelConfig struct {
	NetRatingWeight   float64 `mapstructure:"net_rating_weight" validate:"required,gt=0,lte=1"`
	MatchupWeight     float64 `mapstructure:"matchup_weight" validate:"required,gt=0,lte=1"`
	MomentumWeight    float64 `mapstructure:"momentum_weight" validate:"required,gt=0,lte=1"`
	HomeCourtWeight   float64 `mapstructure:"home_court_weight" validate:"required,gt=0,lte=1"`
	MomentumDivisor   float64 `mapstructure:"momentum_divisor" validate:"required,gt=0"`
	MomentumScale     float64 `mapstructure:"momentum_scale" validate:"required,gt=0"`
	LogisticDivisor   float64 `mapstructure:"logistic_divisor" validate:"required,gt=0"`
	ConfidenceFloor   float64 `mapstructure:"confidence_floor" validate:"required,gte=0,lte=100"`
	ConfidenceCeiling float64 `mapstructure:"confidence_ceiling" validate:"required,gte=0,lte=100"`

	// Key-factor significance thresholds.
	NetRatingFactorThreshold float64 `mapstructure:"net_rating_factor_threshold" validate:"gte=0"`
	MomentumFactorThreshold  float64 `mapstructure:"momentum_factor_threshold" validate:"gte=0"`
	ShootingGapThreshold     float64 `mapstructure:"shooting_gap_threshold" validate:"gte=0"`

	// Value-bet edge thresholds, expressed as probability points.
	MoneylineEdge float64 `mapstructure:"moneyline_edge" validate:"required,gt=0,lt=1"`
	SpreadEdge    float64 `mapstructure:"spread_edge" validate:"required,gt=0,lt=1"`
	// SpreadSigma converts a line-vs-prediction gap into a cover probability.
	SpreadSigma float64 `mapstructure:"spread_sigma" validate:"required,gt=0"`
	TotalSigma  float64 `mapstructure:"total_sigma" validate:"required,gt=0"`
}

// CalibrationConfig configures the Platt-scaling recalibrator.
type CalibrationConfig struct {
	MinSamples    int     `mapstructure:"min_samples" validate:"required,gte=2"`
	MaxIterations int     `mapstructure:"max_iterations" validate:"required,gt=0"`
	Tolerance     float64 `mapstructure:"tolerance" validate:"required,gt=0"`
}

// SimulationConfig configures the variance estimator and Monte Carlo runs.
type SimulationConfig struct {
	DefaultIterations int `mapstructure:"default_iterations" validate:"required,gt=0"`
	// VarianceSampleCap bounds how many recent validated games feed a variance
	// model rebuild.
	VarianceSampleCap int     `mapstructure:"variance_sample_cap" validate:"required,gt=0"`
	DefaultVariance   float64 `mapstructure:"default_variance" validate:"required,gt=0"`
}

// SyncConfig configures the outcome-matching batch job.
type SyncConfig struct {
	Sports              []string `mapstructure:"sports" validate:"required,min=1"`
	LookbackDays        int      `mapstructure:"lookback_days" validate:"required,gt=0"`
	InterCallDelayMS    int      `mapstructure:"inter_call_delay_ms" validate:"gte=0"`
	CronSchedule        string   `mapstructure:"cron_schedule" validate:"required"`
	TrainOnSync         bool     `mapstructure:"train_on_sync"`
	TrainingSampleLimit int      `mapstructure:"training_sample_limit" validate:"required,gt=0"`
}

// FeedbackConfig configures the ATS feedback analyzer.
type FeedbackConfig struct {
	MinSegmentBets int     `mapstructure:"min_segment_bets" validate:"required,gt=0"`
	PushThreshold  float64 `mapstructure:"push_threshold" validate:"required,gt=0"`
	WinPayout      float64 `mapstructure:"win_payout" validate:"required,gt=0"`
	CronSchedule   string  `mapstructure:"cron_schedule" validate:"required"`
}

// SportBaselines are the league-average constants a sport's analytics are
// normalized against. Baselines are configuration so a new sport is a YAML
// block, not a code change.
type SportBaselines struct {
	AvgPointsPerGame float64 `mapstructure:"avg_points_per_game" validate:"required,gt=0"`
	AvgFieldGoalPct  float64 `mapstructure:"avg_field_goal_pct" validate:"required,gt=0,lte=100"`
	AvgThreePointPct float64 `mapstructure:"avg_three_point_pct" validate:"gte=0,lte=100"`
	AvgFreeThrowPct  float64 `mapstructure:"avg_free_throw_pct" validate:"gte=0,lte=100"`
	AvgRebounds      float64 `mapstructure:"avg_rebounds" validate:"gte=0"`
	AvgTurnovers     float64 `mapstructure:"avg_turnovers" validate:"gte=0"`
	HomeAdvantage    float64 `mapstructure:"home_advantage" validate:"gte=0"`
	// ScoringUnit is the points-per-scoring-event divisor used when deriving
	// predicted totals (1 for basketball, 1 for NFL points, 7 for TD-equivalent
	// modeling if desired).
	ScoringUnit    float64 `mapstructure:"scoring_unit" validate:"required,gt=0"`
	ScoreFloor     float64 `mapstructure:"score_floor" validate:"gte=0"`
	ScoreCeiling   float64 `mapstructure:"score_ceiling" validate:"required,gt=0"`
	LowScoreMax    float64 `mapstructure:"low_score_max" validate:"required,gt=0"`
	MediumScoreMax float64 `mapstructure:"medium_score_max" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health endpoint configuration
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Baselines returns the configured baselines for a sport.
func (c *Config) Baselines(sport string) (SportBaselines, bool) {
	b, ok := c.Sports[sport]
	return b, ok
}
