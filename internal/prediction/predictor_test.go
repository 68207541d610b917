package prediction

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

func testModelConfig() config.ModelConfig {
	return config.ModelConfig{
		NetRatingWeight:          0.40,
		MatchupWeight:            0.30,
		MomentumWeight:           0.15,
		HomeCourtWeight:          0.15,
		MomentumDivisor:          200,
		MomentumScale:            15,
		LogisticDivisor:          10,
		ConfidenceFloor:          60,
		ConfidenceCeiling:        95,
		NetRatingFactorThreshold: 5,
		MomentumFactorThreshold:  3,
		ShootingGapThreshold:     10,
		MoneylineEdge:            0.05,
		SpreadEdge:               0.03,
		SpreadSigma:              13.5,
		TotalSigma:               18,
	}
}

func testBaselines() config.SportBaselines {
	return config.SportBaselines{
		AvgPointsPerGame: 112,
		AvgFieldGoalPct:  47,
		AvgThreePointPct: 36,
		AvgFreeThrowPct:  78,
		AvgRebounds:      44,
		AvgTurnovers:     13.5,
		HomeAdvantage:    3,
		ScoringUnit:      1,
		ScoreFloor:       70,
		ScoreCeiling:     170,
		LowScoreMax:      210,
		MediumScoreMax:   230,
	}
}

func analyticsWith(net, momentum, consistency float64) models.TeamAnalytics {
	return models.TeamAnalytics{
		TeamName:           "Team",
		OffensiveRating:    100 + net/2,
		DefensiveRating:    100 - net/2,
		NetRating:          net,
		Momentum:           momentum,
		ShootingEfficiency: 100,
		Consistency:        consistency,
	}
}

func statsWith(ppg, papg float64) models.TeamStats {
	return models.TeamStats{PointsPerGame: ppg, PointsAllowedPerGame: papg}
}

func baseInput() MatchupInput {
	return MatchupInput{
		GameID:    "game-1",
		Sport:     "basketball_nba",
		GameDate:  time.Now(),
		HomeStats: statsWith(112, 112),
		AwayStats: statsWith(112, 112),
	}
}

func TestIdenticalAnalyticsYieldsEvenOdds(t *testing.T) {
	p := NewPredictor(testModelConfig(), testBaselines())
	in := baseInput()
	same := analyticsWith(0, 0, 80)
	in.HomeAnalytics = same
	in.AwayAnalytics = same
	// No home bonus in the analytics, so the matchup is perfectly symmetric.

	pred := p.Predict(in)
	if pred.RawHomeWinProb != 0.5 {
		t.Fatalf("expected exactly 0.5 raw probability, got %v", pred.RawHomeWinProb)
	}
	if pred.PredictedSpread != 0 {
		t.Fatalf("expected 0 spread, got %v", pred.PredictedSpread)
	}
}

func TestStrongerHomeTeamFavored(t *testing.T) {
	p := NewPredictor(testModelConfig(), testBaselines())
	in := baseInput()
	in.HomeAnalytics = analyticsWith(10, 0, 80)
	in.AwayAnalytics = analyticsWith(-5, 0, 80)

	pred := p.Predict(in)
	if pred.RawHomeWinProb <= 0.5 {
		t.Fatalf("expected home win probability > 0.5, got %v", pred.RawHomeWinProb)
	}
	if pred.PredictedSpread <= 0 {
		t.Fatalf("expected positive spread, got %v", pred.PredictedSpread)
	}
}

func TestConfidenceStaysInBand(t *testing.T) {
	p := NewPredictor(testModelConfig(), testBaselines())
	for _, consistency := range []float64{0, 30, 50, 75, 100} {
		in := baseInput()
		in.HomeAnalytics = analyticsWith(5, 20, consistency)
		in.AwayAnalytics = analyticsWith(-5, -20, consistency)
		pred := p.Predict(in)
		if pred.Confidence < 60 || pred.Confidence > 95 {
			t.Fatalf("consistency %v produced confidence %v outside [60, 95]", consistency, pred.Confidence)
		}
	}
}

func TestSpreadSignMatchesScores(t *testing.T) {
	p := NewPredictor(testModelConfig(), testBaselines())
	cases := []struct{ homeNet, awayNet float64 }{
		{12, -8}, {-10, 6}, {3, 3}, {0.5, -0.5},
	}
	for _, tc := range cases {
		in := baseInput()
		in.HomeAnalytics = analyticsWith(tc.homeNet, 0, 80)
		in.AwayAnalytics = analyticsWith(tc.awayNet, 0, 80)
		pred := p.Predict(in)

		scoreDiff := pred.PredictedScore.Home - pred.PredictedScore.Away
		if math.Signbit(pred.PredictedSpread) != math.Signbit(scoreDiff) &&
			pred.PredictedSpread != 0 && scoreDiff != 0 {
			t.Fatalf("spread %v disagrees with score diff %v", pred.PredictedSpread, scoreDiff)
		}
	}
}

func TestProbabilitiesSumToOne(t *testing.T) {
	p := NewPredictor(testModelConfig(), testBaselines())
	in := baseInput()
	in.HomeAnalytics = analyticsWith(8, 40, 70)
	in.AwayAnalytics = analyticsWith(-3, -10, 65)

	pred := p.Predict(in)
	sum := pred.WinProbability.Home + pred.WinProbability.Away
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("probabilities sum to %v", sum)
	}
}

func TestKeyFactorsFireOnLargeEdges(t *testing.T) {
	p := NewPredictor(testModelConfig(), testBaselines())
	in := baseInput()
	home := analyticsWith(25, 80, 80)
	home.ShootingEfficiency = 115
	home.LastFiveRecord = "5-0"
	away := analyticsWith(-10, -60, 80)
	away.ShootingEfficiency = 95
	away.LastFiveRecord = "1-4"
	home.HomeCourtBonus = 3
	in.HomeAnalytics = home
	in.AwayAnalytics = away

	pred := p.Predict(in)
	if len(pred.KeyFactors) == 0 {
		t.Fatal("expected key factors for a lopsided matchup")
	}
}

func TestMoneylineValueBetFlagged(t *testing.T) {
	p := NewPredictor(testModelConfig(), testBaselines())
	in := baseInput()
	in.HomeAnalytics = analyticsWith(15, 50, 85)
	in.AwayAnalytics = analyticsWith(-10, -40, 85)

	pred := p.Predict(in)
	// Market prices the home side near even money while the model is far more
	// confident, so a home moneyline value bet must be flagged.
	odds := models.OddsSnapshot{
		MoneylineHome: decimal.NewFromInt(-110),
		MoneylineAway: decimal.NewFromInt(-110),
		CapturedAt:    time.Now(),
	}
	bets := p.FindValueBets(pred, odds)

	found := false
	for _, vb := range bets {
		if vb.Market == models.BetMoneyline && vb.Side == "home" {
			found = true
			if vb.Edge < 0.05 {
				t.Fatalf("flagged edge %v below threshold", vb.Edge)
			}
		}
	}
	if !found {
		t.Fatalf("expected home moneyline value bet, got %+v (model prob %v)", bets, pred.WinProbability.Home)
	}
}

func TestNoValueBetWithoutEdge(t *testing.T) {
	p := NewPredictor(testModelConfig(), testBaselines())
	in := baseInput()
	same := analyticsWith(0, 0, 80)
	in.HomeAnalytics = same
	in.AwayAnalytics = same

	pred := p.Predict(in)
	odds := models.OddsSnapshot{
		MoneylineHome: decimal.NewFromInt(-110),
		MoneylineAway: decimal.NewFromInt(-110),
		CapturedAt:    time.Now(),
	}
	for _, vb := range p.FindValueBets(pred, odds) {
		if vb.Market == models.BetMoneyline {
			t.Fatalf("50/50 model should not beat -110 juice, got %+v", vb)
		}
	}
}
