package simulation

import (
	"math"
	"reflect"
	"testing"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

func testPrediction() models.MatchupPrediction {
	return models.MatchupPrediction{
		GameID:          "game-1",
		Sport:           "basketball_nba",
		PredictedScore:  models.PredictedScore{Home: 114.5, Away: 108.0},
		PredictedSpread: 6.5,
		PredictedTotal:  222.5,
	}
}

func testVarianceModel() *models.VarianceModel {
	return &models.VarianceModel{
		Version:      "test",
		SampleSize:   100,
		BaseVariance: 144,
		QualityTiers: map[string]float64{
			models.QualityElite:   110,
			models.QualityGood:    130,
			models.QualityAverage: 144,
			models.QualityPoor:    160,
		},
		MatchupTiers: map[string]float64{
			models.MatchupBlowout:     170,
			models.MatchupCompetitive: 144,
			models.MatchupClose:       120,
		},
		ScoreRangeTiers: map[string]float64{
			models.ScoreRangeLow:    130,
			models.ScoreRangeMedium: 144,
			models.ScoreRangeHigh:   158,
		},
	}
}

func testSimConfig(seed int64) Config {
	return Config{
		Iterations:   5000,
		Seed:         seed,
		ScoreFloor:   70,
		ScoreCeiling: 170,
		Bands:        models.ScoreBands{LowMax: 210, MediumMax: 230},
	}
}

func TestRunDeterministicWithSeed(t *testing.T) {
	first, err := Run(testPrediction(), testVarianceModel(), testSimConfig(42))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := Run(testPrediction(), testVarianceModel(), testSimConfig(42))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same seed produced different results")
	}
}

func TestRunDifferentSeedsDiffer(t *testing.T) {
	first, _ := Run(testPrediction(), testVarianceModel(), testSimConfig(1))
	second, _ := Run(testPrediction(), testVarianceModel(), testSimConfig(2))
	if reflect.DeepEqual(first, second) {
		t.Fatal("different seeds produced identical results")
	}
}

func TestWinProbabilitiesSumToOne(t *testing.T) {
	result, err := Run(testPrediction(), testVarianceModel(), testSimConfig(7))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	sum := result.HomeWinProbability + result.AwayWinProbability
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("probabilities sum to %v", sum)
	}
}

func TestScoresRespectBounds(t *testing.T) {
	result, err := Run(testPrediction(), testVarianceModel(), testSimConfig(11))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for name, d := range map[string]Distribution{
		"home": result.HomeScore,
		"away": result.AwayScore,
	} {
		if d.Min < 70 || d.Max > 170 {
			t.Fatalf("%s scores [%v, %v] escape bounds [70, 170]", name, d.Min, d.Max)
		}
	}
}

func TestDistributionOrdering(t *testing.T) {
	result, err := Run(testPrediction(), testVarianceModel(), testSimConfig(13))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	d := result.HomeScore
	if !(d.Min <= d.P10 && d.P10 <= d.P25 && d.P25 <= d.Median &&
		d.Median <= d.P75 && d.P75 <= d.P90 && d.P90 <= d.Max) {
		t.Fatalf("percentiles out of order: %+v", d)
	}
	ci := result.ConfidenceIntervals["home_score"]
	if ci.Low != d.P10 || ci.High != d.P90 {
		t.Fatalf("confidence interval %+v should be p10-p90 of %+v", ci, d)
	}
}

func TestFavoredSideWinsMoreOften(t *testing.T) {
	result, err := Run(testPrediction(), testVarianceModel(), testSimConfig(17))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.HomeWinProbability <= 0.5 {
		t.Fatalf("home favored by 6.5 but win probability is %v", result.HomeWinProbability)
	}
}

func TestRunRequiresVarianceModel(t *testing.T) {
	if _, err := Run(testPrediction(), nil, testSimConfig(1)); err == nil {
		t.Fatal("expected error for nil variance model")
	}
}

func TestRunRejectsInvertedBounds(t *testing.T) {
	cfg := testSimConfig(1)
	cfg.ScoreFloor = 170
	cfg.ScoreCeiling = 70
	if _, err := Run(testPrediction(), testVarianceModel(), cfg); err == nil {
		t.Fatal("expected error for ceiling below floor")
	}
}
