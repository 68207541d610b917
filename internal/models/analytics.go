package models

// TeamAnalytics is derived from TeamStats plus a window of recent games.
// Ratings are relative to the league average (= 100). It is recomputed for
// every prediction and stored only as a denormalized snapshot on the tracked
// prediction, never as its own entity.
type TeamAnalytics struct {
	TeamID             string  `json:"team_id"`
	TeamName           string  `json:"team_name"`
	OffensiveRating    float64 `json:"offensive_rating"`
	DefensiveRating    float64 `json:"defensive_rating"`
	NetRating          float64 `json:"net_rating"`
	Momentum           float64 `json:"momentum"`        // -100..100
	WinStreak          int     `json:"win_streak"`      // signed, losses negative
	RecentForm         string  `json:"recent_form"`     // W/L tokens, oldest to newest
	LastFiveRecord     string  `json:"last_five_record"` // e.g. "3-2"
	ShootingEfficiency float64 `json:"shooting_efficiency"`
	ReboundStrength    float64 `json:"rebound_strength"`
	TurnoverControl    float64 `json:"turnover_control"`
	Consistency        float64 `json:"consistency"` // 0..100
	HomeCourtBonus     float64 `json:"home_court_bonus"`
}
