// Package datasource provides clients for the upstream sports-data providers:
// season stats, exact-id completed scores, and by-date closed games.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

// StatsProvider returns season aggregates and recent games per team (read-only).
type StatsProvider interface {
	// FetchTeamStats retrieves the season aggregate for one team.
	FetchTeamStats(ctx context.Context, sport, teamID, season string) (*models.TeamStats, error)

	// FetchRecentGames retrieves finished games for a team, most-recent-first.
	FetchRecentGames(ctx context.Context, sport, teamID string, limit int) ([]models.GameResult, error)
}

// ScoresProvider is the primary outcome source, keyed by exact game identifier.
type ScoresProvider interface {
	// FetchCompletedGames retrieves final scores for a sport and day.
	FetchCompletedGames(ctx context.Context, sport string, day time.Time) ([]CompletedGame, error)
}

// GamesByDateProvider is the fallback outcome source matched by team names.
type GamesByDateProvider interface {
	// FetchGamesByDate retrieves closed games with team names and scores.
	FetchGamesByDate(ctx context.Context, sport string, day time.Time) ([]CompletedGame, error)
}

// CompletedGame is a normalized finished game from either outcome source.
type CompletedGame struct {
	GameID    string    `json:"game_id"`
	Sport     string    `json:"sport"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	GameDate  time.Time `json:"game_date"`
	Completed bool      `json:"completed"`
}

// Error codes for provider failures.
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// ProviderError represents errors from provider operations
type ProviderError struct {
	Source  string // Provider name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s): %v", e.Source, e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Source, e.Message, e.Code)
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new provider error
func NewProviderError(source, code, message string, err error) ProviderError {
	return ProviderError{Source: source, Code: code, Message: message, Err: err}
}

// IsNotFound reports whether an error is a provider not-found error.
func IsNotFound(err error) bool {
	var pe ProviderError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeNotFound
	}
	return errors.Is(err, models.ErrNotFound)
}
