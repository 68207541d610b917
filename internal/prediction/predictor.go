// Package prediction combines two teams' analytics into a matchup prediction:
// win probability, score, spread, total, confidence, and value bets.
package prediction

import (
	"math"
	"time"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

// MatchupInput carries everything the predictor needs for one game. The
// analytics must come from the same calculator/baselines as the stats.
type MatchupInput struct {
	GameID        string
	Sport         string
	GameDate      time.Time
	HomeAnalytics models.TeamAnalytics
	AwayAnalytics models.TeamAnalytics
	HomeStats     models.TeamStats
	AwayStats     models.TeamStats
}

// Predictor implements the weighted-factor matchup model. Weights live in
// config, not constants, so the feedback loop can tune them.
type Predictor struct {
	weights   config.ModelConfig
	baselines config.SportBaselines
}

// NewPredictor creates a predictor for one sport.
func NewPredictor(weights config.ModelConfig, baselines config.SportBaselines) *Predictor {
	return &Predictor{weights: weights, baselines: baselines}
}

// Predict produces a MatchupPrediction. The returned WinProbability is the
// raw (uncalibrated) pair; the engine overwrites it with the calibrated
// values and keeps RawHomeWinProb for retraining.
func (p *Predictor) Predict(in MatchupInput) models.MatchupPrediction {
	home, away := in.HomeAnalytics, in.AwayAnalytics

	netTerm := p.weights.NetRatingWeight * (home.NetRating - away.NetRating)
	matchupTerm := p.weights.MatchupWeight *
		((home.OffensiveRating - away.DefensiveRating) - (away.OffensiveRating - home.DefensiveRating))
	momentumTerm := p.weights.MomentumWeight *
		((home.Momentum - away.Momentum) / p.weights.MomentumDivisor * p.weights.MomentumScale)
	homeTerm := p.weights.HomeCourtWeight * home.HomeCourtBonus

	totalScore := netTerm + matchupTerm + momentumTerm + homeTerm

	rawHome := sigmoid(totalScore / p.weights.LogisticDivisor)

	predictedTotal := p.predictedTotal(in.HomeStats, in.AwayStats, totalScore)
	spreadCore := totalScore / 2
	homeScore := predictedTotal/2 + spreadCore/2 + home.HomeCourtBonus/2
	awayScore := predictedTotal/2 - spreadCore/2 - home.HomeCourtBonus/2

	pred := models.MatchupPrediction{
		GameID:   in.GameID,
		Sport:    in.Sport,
		HomeTeam: home.TeamName,
		AwayTeam: away.TeamName,
		GameDate: in.GameDate,
		WinProbability: models.WinProbability{
			Home: rawHome,
			Away: 1 - rawHome,
		},
		RawHomeWinProb: rawHome,
		PredictedScore: models.PredictedScore{
			Home: round1(homeScore),
			Away: round1(awayScore),
		},
		PredictedTotal: round1(predictedTotal),
		Confidence:     p.confidence(home, away),
		HomeAnalytics:  home,
		AwayAnalytics:  away,
	}
	// Spread derives from the rounded scores so the published numbers agree.
	pred.PredictedSpread = round1(pred.PredictedScore.Home - pred.PredictedScore.Away)
	pred.KeyFactors = p.keyFactors(home, away, netTerm, momentumTerm)
	return pred
}

// predictedTotal averages both teams' points for and against, scales by the
// sport's scoring unit, and adjusts by half the model score.
func (p *Predictor) predictedTotal(homeStats, awayStats models.TeamStats, totalScore float64) float64 {
	unit := p.baselines.ScoringUnit
	if unit <= 0 {
		unit = 1
	}
	base := (homeStats.PointsPerGame + homeStats.PointsAllowedPerGame +
		awayStats.PointsPerGame + awayStats.PointsAllowedPerGame) / 2 / unit
	return base + totalScore/2
}

// confidence averages the two consistency scores, clamped to the configured
// display band so the model never shows more certainty than the band allows.
func (p *Predictor) confidence(home, away models.TeamAnalytics) float64 {
	avg := (home.Consistency + away.Consistency) / 2
	return math.Min(math.Max(avg, p.weights.ConfidenceFloor), p.weights.ConfidenceCeiling)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
