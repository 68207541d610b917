package models

import "time"

// TrainingExample is one row per validated prediction, rebuilt on demand from
// TrackedPrediction. It is never persisted as its own entity.
type TrainingExample struct {
	GameID          string    `json:"game_id"`
	Sport           string    `json:"sport"`
	GameDate        time.Time `json:"game_date"`
	HomeAnalytics   TeamAnalytics
	AwayAnalytics   TeamAnalytics
	RawHomeWinProb  float64
	PredictedSpread float64
	PredictedTotal  float64
	Confidence      float64
	MarketSpread    *float64 // closing line, home perspective; nil if unknown
	MarketTotal     *float64
	ActualHomeScore int
	ActualAwayScore int
	HomeWon         bool
}

// NewTrainingExample flattens a validated tracked prediction into a training
// row. The caller must only pass validated predictions.
func NewTrainingExample(tp *TrackedPrediction) TrainingExample {
	ex := TrainingExample{
		GameID:          tp.GameID,
		Sport:           tp.Sport,
		GameDate:        tp.GameDate,
		HomeAnalytics:   tp.Prediction.HomeAnalytics,
		AwayAnalytics:   tp.Prediction.AwayAnalytics,
		RawHomeWinProb:  tp.Prediction.RawHomeWinProb,
		PredictedSpread: tp.Prediction.PredictedSpread,
		PredictedTotal:  tp.Prediction.PredictedTotal,
		Confidence:      tp.Prediction.Confidence,
	}
	if tp.Outcome != nil {
		ex.ActualHomeScore = tp.Outcome.HomeScore
		ex.ActualAwayScore = tp.Outcome.AwayScore
		ex.HomeWon = tp.Outcome.Winner == "home"
	}
	if tp.Odds != nil {
		spread, _ := tp.Odds.SpreadLine.Float64()
		total, _ := tp.Odds.TotalLine.Float64()
		if !tp.Odds.SpreadLine.IsZero() || !tp.Odds.TotalLine.IsZero() {
			ex.MarketSpread = &spread
			ex.MarketTotal = &total
		}
	}
	return ex
}

// ActualSpread is the observed home-minus-away margin.
func (e TrainingExample) ActualSpread() float64 {
	return float64(e.ActualHomeScore - e.ActualAwayScore)
}

// ActualTotal is the observed combined score.
func (e TrainingExample) ActualTotal() float64 {
	return float64(e.ActualHomeScore + e.ActualAwayScore)
}
