package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

// SportsfeedClient talks to one upstream sportsfeed endpoint. Three instances
// cover the three provider roles (stats, scores, games-by-date); each role
// hits a different base URL with its own API key.
type SportsfeedClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	source     string
	cache      *gocache.Cache
	logger     *logrus.Logger
}

// sportsfeedTeamStats is the upstream season-aggregate payload.
type sportsfeedTeamStats struct {
	TeamID           string  `json:"teamId"`
	TeamName         string  `json:"teamName"`
	Season           string  `json:"season"`
	GamesPlayed      int     `json:"gamesPlayed"`
	PointsFor        float64 `json:"pointsPerGame"`
	PointsAgainst    float64 `json:"pointsAllowedPerGame"`
	FieldGoalPct     float64 `json:"fieldGoalPct"`
	ThreePointPct    float64 `json:"threePointPct"`
	FreeThrowPct     float64 `json:"freeThrowPct"`
	ReboundsPerGame  float64 `json:"reboundsPerGame"`
	AssistsPerGame   float64 `json:"assistsPerGame"`
	TurnoversPerGame float64 `json:"turnoversPerGame"`
	Pace             float64 `json:"pace"`
}

// sportsfeedGame is the upstream game payload shared by the recent-games,
// completed-scores, and games-by-date endpoints.
type sportsfeedGame struct {
	GameID    string  `json:"gameId"`
	Date      string  `json:"date"`
	HomeTeam  string  `json:"homeTeam"`
	AwayTeam  string  `json:"awayTeam"`
	HomeScore *int    `json:"homeScore"`
	AwayScore *int    `json:"awayScore"`
	Status    string  `json:"status"`
	Sport     *string `json:"sport"`
}

// NewSportsfeedClient creates a client for one provider role. A nil cache
// disables caching (scores and games-by-date results are never reused, only
// team stats benefit).
func NewSportsfeedClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey, source string, cacheTTL time.Duration, logger *logrus.Logger) *SportsfeedClient {
	var c *gocache.Cache
	if cacheTTL > 0 {
		c = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return &SportsfeedClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		source:     source,
		cache:      c,
		logger:     logger,
	}
}

// FetchTeamStats retrieves the season aggregate for one team.
func (c *SportsfeedClient) FetchTeamStats(ctx context.Context, sport, teamID, season string) (*models.TeamStats, error) {
	cacheKey := fmt.Sprintf("stats:%s:%s:%s", sport, teamID, season)
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			stats := cached.(models.TeamStats)
			return &stats, nil
		}
	}

	url := fmt.Sprintf("%s/sports/%s/teams/%s/stats?season=%s", c.baseURL, sport, teamID, season)
	var raw sportsfeedTeamStats
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}

	stats := models.TeamStats{
		TeamID:               raw.TeamID,
		TeamName:             raw.TeamName,
		Sport:                sport,
		Season:               raw.Season,
		GamesPlayed:          raw.GamesPlayed,
		PointsPerGame:        raw.PointsFor,
		PointsAllowedPerGame: raw.PointsAgainst,
		// Upstream mixes fraction and whole-percentage scales; normalize here
		// so nothing downstream ever branches on scale.
		FieldGoalPct:     models.NewPercentage(raw.FieldGoalPct),
		ThreePointPct:    models.NewPercentage(raw.ThreePointPct),
		FreeThrowPct:     models.NewPercentage(raw.FreeThrowPct),
		ReboundsPerGame:  raw.ReboundsPerGame,
		AssistsPerGame:   raw.AssistsPerGame,
		TurnoversPerGame: raw.TurnoversPerGame,
		Pace:             raw.Pace,
	}
	if stats.TeamID == "" {
		stats.TeamID = teamID
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, stats, gocache.DefaultExpiration)
	}
	return &stats, nil
}

// FetchRecentGames retrieves finished games for a team, most-recent-first.
func (c *SportsfeedClient) FetchRecentGames(ctx context.Context, sport, teamID string, limit int) ([]models.GameResult, error) {
	if limit <= 0 {
		limit = 10
	}
	cacheKey := fmt.Sprintf("recent:%s:%s:%d", sport, teamID, limit)
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			return cached.([]models.GameResult), nil
		}
	}

	url := fmt.Sprintf("%s/sports/%s/teams/%s/games?status=final&limit=%d", c.baseURL, sport, teamID, limit)
	var raw []sportsfeedGame
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}

	results := make([]models.GameResult, 0, len(raw))
	for _, g := range raw {
		if g.HomeScore == nil || g.AwayScore == nil {
			continue
		}
		date, err := parseGameDate(g.Date)
		if err != nil {
			c.logger.WithField("game_id", g.GameID).WithError(err).Warn("Skipping game with unparseable date")
			continue
		}
		r := models.GameResult{
			GameID:   g.GameID,
			GameDate: date,
		}
		// The feed is home/away oriented; flip to the requested team's
		// perspective.
		if g.HomeTeam == teamID {
			r.Opponent = g.AwayTeam
			r.TeamScore = *g.HomeScore
			r.OpponentScore = *g.AwayScore
			r.Home = true
		} else {
			r.Opponent = g.HomeTeam
			r.TeamScore = *g.AwayScore
			r.OpponentScore = *g.HomeScore
		}
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].GameDate.After(results[j].GameDate)
	})
	if len(results) > limit {
		results = results[:limit]
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, results, gocache.DefaultExpiration)
	}
	return results, nil
}

// FetchCompletedGames retrieves final scores for a sport and day.
func (c *SportsfeedClient) FetchCompletedGames(ctx context.Context, sport string, day time.Time) ([]CompletedGame, error) {
	url := fmt.Sprintf("%s/sports/%s/scores?date=%s", c.baseURL, sport, day.UTC().Format("2006-01-02"))
	return c.fetchGames(ctx, url, sport)
}

// FetchGamesByDate retrieves closed games with team names and scores. The
// fallback outcome path matches these against stored predictions by team name
// rather than game id.
func (c *SportsfeedClient) FetchGamesByDate(ctx context.Context, sport string, day time.Time) ([]CompletedGame, error) {
	url := fmt.Sprintf("%s/sports/%s/games?date=%s&status=closed", c.baseURL, sport, day.UTC().Format("2006-01-02"))
	return c.fetchGames(ctx, url, sport)
}

func (c *SportsfeedClient) fetchGames(ctx context.Context, url, sport string) ([]CompletedGame, error) {
	var raw []sportsfeedGame
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}

	games := make([]CompletedGame, 0, len(raw))
	for _, g := range raw {
		if g.HomeScore == nil || g.AwayScore == nil {
			continue
		}
		date, err := parseGameDate(g.Date)
		if err != nil {
			c.logger.WithField("game_id", g.GameID).WithError(err).Warn("Skipping game with unparseable date")
			continue
		}
		completed := g.Status == "final" || g.Status == "closed" || g.Status == "completed"
		if !completed {
			continue
		}
		games = append(games, CompletedGame{
			GameID:    g.GameID,
			Sport:     sport,
			HomeTeam:  g.HomeTeam,
			AwayTeam:  g.AwayTeam,
			HomeScore: *g.HomeScore,
			AwayScore: *g.AwayScore,
			GameDate:  date,
			Completed: true,
		})
	}
	return games, nil
}

func (c *SportsfeedClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewProviderError(c.source, ErrCodeNetworkError, "failed to create request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewProviderError(c.source, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewProviderError(c.source, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case http.StatusTooManyRequests:
		return NewProviderError(c.source, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case http.StatusNotFound:
		return NewProviderError(c.source, ErrCodeNotFound, "resource not found", nil)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return NewProviderError(c.source, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(c.source, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}

// parseGameDate accepts both date-only and RFC3339 timestamps; the feeds are
// inconsistent between endpoints.
func parseGameDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
