package simulation

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

func testEstimator() *Estimator {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewEstimator(config.SimulationConfig{
		DefaultIterations: 10000,
		VarianceSampleCap: 500,
		DefaultVariance:   144,
	}, models.ScoreBands{LowMax: 210, MediumMax: 230}, logger)
}

func TestBuildEmptySampleReturnsDefaultModel(t *testing.T) {
	model := testEstimator().Build(nil)
	if model == nil {
		t.Fatal("expected non-nil default model")
	}
	if model.Version != "default" {
		t.Fatalf("expected default model, got version %q", model.Version)
	}
	if model.BaseVariance != 144 {
		t.Fatalf("expected configured default variance, got %v", model.BaseVariance)
	}
	if len(model.QualityTiers) == 0 || len(model.MatchupTiers) == 0 || len(model.ScoreRangeTiers) == 0 {
		t.Fatal("default model must populate every tier map")
	}
}

func TestBuildTiersNeverNegative(t *testing.T) {
	games := []HistoricalGame{
		{PredictedHome: 112, PredictedAway: 105, PredictedSpread: 7, PredictedTotal: 217, ActualHome: 118, ActualAway: 101},
		{PredictedHome: 108, PredictedAway: 110, PredictedSpread: -2, PredictedTotal: 218, ActualHome: 99, ActualAway: 121},
		{PredictedHome: 120, PredictedAway: 102, PredictedSpread: 18, PredictedTotal: 222, ActualHome: 131, ActualAway: 95},
		{PredictedHome: 101, PredictedAway: 100, PredictedSpread: 1, PredictedTotal: 201, ActualHome: 104, ActualAway: 103},
		{PredictedHome: 125, PredictedAway: 111, PredictedSpread: 14, PredictedTotal: 236, ActualHome: 112, ActualAway: 119},
	}
	model := testEstimator().Build(games)

	if model.SampleSize != len(games) {
		t.Fatalf("expected sample size %d, got %d", len(games), model.SampleSize)
	}
	if model.BaseVariance < 0 {
		t.Fatalf("negative base variance %v", model.BaseVariance)
	}
	for _, tiers := range []map[string]float64{model.QualityTiers, model.MatchupTiers, model.ScoreRangeTiers} {
		for tier, v := range tiers {
			if v < 0 {
				t.Fatalf("tier %s has negative variance %v", tier, v)
			}
		}
	}
}

func TestBuildCapsSample(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	e := NewEstimator(config.SimulationConfig{
		DefaultIterations: 10000,
		VarianceSampleCap: 3,
		DefaultVariance:   144,
	}, models.ScoreBands{LowMax: 210, MediumMax: 230}, logger)

	games := make([]HistoricalGame, 10)
	for i := range games {
		games[i] = HistoricalGame{
			PredictedHome: 110, PredictedAway: 105,
			PredictedSpread: 5, PredictedTotal: 215,
			ActualHome: 108 + i, ActualAway: 104,
		}
	}
	model := e.Build(games)
	if model.SampleSize != 3 {
		t.Fatalf("expected capped sample size 3, got %d", model.SampleSize)
	}
}

func TestVarianceBlendFallsBackToBase(t *testing.T) {
	vm := &models.VarianceModel{
		BaseVariance: 144,
		// Only one tier map has data; missing buckets fall back to base.
		QualityTiers: map[string]float64{models.QualityGood: 100},
	}
	bands := models.ScoreBands{LowMax: 210, MediumMax: 230}

	// Spread 7 is quality "good": blend = 0.4*100 + 0.3*144 + 0.3*144.
	got := vm.Variance(7, 220, bands)
	want := 0.4*100 + 0.3*144 + 0.3*144
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected blended variance %v, got %v", want, got)
	}

	// Nothing populated for spread 1 ("poor" tier missing): pure base.
	if got := vm.Variance(1, 220, bands); math.Abs(got-144) > 1e-9 {
		t.Fatalf("expected base variance 144, got %v", got)
	}
}
