package models

import "time"

// Percentage always stores a value on the 0-100 scale. Upstream stats
// providers disagree on whether shooting percentages are fractions (0.472) or
// whole percentages (47.2); NewPercentage normalizes at the boundary so the
// rest of the engine never branches on scale.
type Percentage float64

// NewPercentage normalizes a raw value to the 0-100 scale. Values at or below
// 1.0 are treated as fractions; shooting splits below 1% do not occur in any
// supported sport.
func NewPercentage(v float64) Percentage {
	if v > 0 && v <= 1.0 {
		v *= 100
	}
	return Percentage(v)
}

// Value returns the percentage on the 0-100 scale.
func (p Percentage) Value() float64 { return float64(p) }

// Fraction returns the percentage as a 0-1 fraction.
func (p Percentage) Fraction() float64 { return float64(p) / 100 }

// TeamStats is an immutable per-season aggregate produced by the stats
// provider and consumed read-only.
type TeamStats struct {
	TeamID               string     `json:"team_id" validate:"required"`
	TeamName             string     `json:"team_name" validate:"required"`
	Sport                string     `json:"sport" validate:"required"`
	Season               string     `json:"season"`
	GamesPlayed          int        `json:"games_played" validate:"gte=0"`
	PointsPerGame        float64    `json:"points_per_game" validate:"gte=0"`
	PointsAllowedPerGame float64    `json:"points_allowed_per_game" validate:"gte=0"`
	FieldGoalPct         Percentage `json:"field_goal_pct"`
	ThreePointPct        Percentage `json:"three_point_pct"`
	FreeThrowPct         Percentage `json:"free_throw_pct"`
	ReboundsPerGame      float64    `json:"rebounds_per_game"`
	AssistsPerGame       float64    `json:"assists_per_game"`
	TurnoversPerGame     float64    `json:"turnovers_per_game"`
	Pace                 float64    `json:"pace"`
}

// GameResult is a single finished game from a team's perspective. Recent-game
// lists are ordered most-recent-first.
type GameResult struct {
	GameID        string    `json:"game_id"`
	GameDate      time.Time `json:"game_date"`
	Opponent      string    `json:"opponent"`
	TeamScore     int       `json:"team_score"`
	OpponentScore int       `json:"opponent_score"`
	Home          bool      `json:"home"`
}

// Won reports whether the team won the game.
func (g GameResult) Won() bool { return g.TeamScore > g.OpponentScore }

// Margin returns the signed score margin from the team's perspective.
func (g GameResult) Margin() int { return g.TeamScore - g.OpponentScore }
