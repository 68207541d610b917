package datasource

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
)

// Providers bundles the three upstream clients plus the shared HTTP client
// they ride on.
type Providers struct {
	Stats      StatsProvider
	Scores     ScoresProvider
	Games      GamesByDateProvider
	httpClient *RateLimitedHTTPClient
}

// NewProviders builds the provider set from configuration. All three share
// one rate-limited HTTP client so the configured request rate is global.
func NewProviders(cfg config.ProvidersConfig, logger *logrus.Logger) *Providers {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.MaxRetries
	httpCfg.RateLimit = cfg.RateLimitPerSecond
	httpClient := NewRateLimitedHTTPClient(httpCfg, logger)

	statsTTL := time.Duration(cfg.StatsCacheTTLSeconds) * time.Second

	return &Providers{
		Stats:      NewSportsfeedClient(httpClient, cfg.Stats.BaseURL, cfg.Stats.APIKey, "stats_api", statsTTL, logger),
		Scores:     NewSportsfeedClient(httpClient, cfg.Scores.BaseURL, cfg.Scores.APIKey, "scores_api", 0, logger),
		Games:      NewSportsfeedClient(httpClient, cfg.Games.BaseURL, cfg.Games.APIKey, "games_api", 0, logger),
		httpClient: httpClient,
	}
}

// Close releases the shared HTTP client.
func (p *Providers) Close() error {
	if p.httpClient != nil {
		return p.httpClient.Close()
	}
	return nil
}
