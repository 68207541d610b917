package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetMarket tags the market a value bet belongs to.
type BetMarket string

// Supported bet markets.
const (
	BetMoneyline BetMarket = "moneyline"
	BetSpread    BetMarket = "spread"
	BetTotal     BetMarket = "total"
)

// ValueBet flags a market where the model-implied probability exceeds the
// market-implied probability by more than the configured edge. The Market tag
// determines which payload fields are meaningful: Line is unset for moneyline
// bets, Side is home/away for moneyline and spread, over/under for totals.
type ValueBet struct {
	Market     BetMarket       `json:"market"`
	Side       string          `json:"side"`
	Line       decimal.Decimal `json:"line"`
	Price      decimal.Decimal `json:"price"` // American odds
	ModelProb  float64         `json:"model_prob"`
	MarketProb float64         `json:"market_prob"`
	Edge       float64         `json:"edge"`
}

// OddsSnapshot captures the market at prediction time. Prices are American
// odds; lines follow the home-minus-away spread convention.
type OddsSnapshot struct {
	MoneylineHome decimal.Decimal `json:"moneyline_home"`
	MoneylineAway decimal.Decimal `json:"moneyline_away"`
	SpreadLine    decimal.Decimal `json:"spread_line"` // home-minus-away convention, positive = home favored
	SpreadPrice   decimal.Decimal `json:"spread_price"`
	TotalLine     decimal.Decimal `json:"total_line"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	CapturedAt    time.Time       `json:"captured_at"`
}

// WinProbability holds the two-sided probability; the pair always sums to 1.
type WinProbability struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// PredictedScore is the model's expected final score.
type PredictedScore struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// MatchupPrediction is the predictor output for one game. WinProbability is
// the calibrated pair surfaced to callers; RawHomeWinProb is the
// pre-calibration value retained for retraining.
type MatchupPrediction struct {
	GameID          string         `json:"game_id"`
	Sport           string         `json:"sport"`
	HomeTeam        string         `json:"home_team"`
	AwayTeam        string         `json:"away_team"`
	GameDate        time.Time      `json:"game_date"`
	WinProbability  WinProbability `json:"win_probability"`
	RawHomeWinProb  float64        `json:"raw_home_win_prob"`
	PredictedScore  PredictedScore `json:"predicted_score"`
	PredictedSpread float64        `json:"predicted_spread"` // home - away, positive = home favored
	PredictedTotal  float64        `json:"predicted_total"`
	Confidence      float64        `json:"confidence"` // 60..95
	KeyFactors      []string       `json:"key_factors"`
	ValueBets       []ValueBet     `json:"value_bets,omitempty"`
	HomeAnalytics   TeamAnalytics  `json:"home_analytics"`
	AwayAnalytics   TeamAnalytics  `json:"away_analytics"`
}

// ActualOutcome is the recorded final result, attached to exactly one tracked
// prediction.
type ActualOutcome struct {
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
	Winner     string    `json:"winner"` // "home", "away" or "tie"
	RecordedAt time.Time `json:"recorded_at"`
}

// NewActualOutcome derives the winner from the final score.
func NewActualOutcome(homeScore, awayScore int, recordedAt time.Time) ActualOutcome {
	winner := "tie"
	switch {
	case homeScore > awayScore:
		winner = "home"
	case awayScore > homeScore:
		winner = "away"
	}
	return ActualOutcome{
		HomeScore:  homeScore,
		AwayScore:  awayScore,
		Winner:     winner,
		RecordedAt: recordedAt,
	}
}

// TrackedPrediction is the persisted lifecycle record for a prediction.
// Identity is (GameID, CreatedAt); an unvalidated game id is deduplicated on
// creation. It transitions unvalidated -> validated exactly once.
type TrackedPrediction struct {
	ID         uuid.UUID         `db:"id" json:"id"`
	GameID     string            `db:"game_id" json:"game_id" validate:"required"`
	Sport      string            `db:"sport" json:"sport" validate:"required"`
	HomeTeam   string            `db:"home_team" json:"home_team"`
	AwayTeam   string            `db:"away_team" json:"away_team"`
	GameDate   time.Time         `db:"game_date" json:"game_date"`
	Prediction MatchupPrediction `db:"prediction" json:"prediction"`
	Odds       *OddsSnapshot     `db:"odds" json:"odds,omitempty"`
	Outcome    *ActualOutcome    `db:"outcome" json:"outcome,omitempty"`
	Validated  bool              `db:"validated" json:"validated"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updated_at"`
}
