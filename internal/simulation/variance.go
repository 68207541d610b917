// Package simulation estimates empirical prediction-error variance and runs
// Monte Carlo score simulations on top of it.
package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

// HistoricalGame pairs a regenerated prediction with its observed outcome,
// the input row for a variance model rebuild.
type HistoricalGame struct {
	PredictedHome   float64
	PredictedAway   float64
	PredictedSpread float64
	PredictedTotal  float64
	ActualHome      int
	ActualAway      int
}

// meanAbsError is the per-game mean absolute score error across both teams.
func (g HistoricalGame) meanAbsError() float64 {
	return (math.Abs(g.PredictedHome-float64(g.ActualHome)) +
		math.Abs(g.PredictedAway-float64(g.ActualAway))) / 2
}

// Estimator rebuilds the VarianceModel in batch from historical validated
// games. The sample is capped at the most recent N games by the caller.
type Estimator struct {
	cfg    config.SimulationConfig
	bands  models.ScoreBands
	logger *logrus.Logger
}

// NewEstimator creates a variance estimator for one sport's score bands.
func NewEstimator(cfg config.SimulationConfig, bands models.ScoreBands, logger *logrus.Logger) *Estimator {
	return &Estimator{cfg: cfg, bands: bands, logger: logger}
}

// Build estimates variance independently per quality, matchup, and
// score-range tier. An empty sample returns the documented default model so
// downstream simulation never operates on nulls.
func (e *Estimator) Build(games []HistoricalGame) *models.VarianceModel {
	if len(games) > e.cfg.VarianceSampleCap {
		games = games[:e.cfg.VarianceSampleCap]
	}
	if len(games) == 0 {
		if e.logger != nil {
			e.logger.Warn("No historical games available, returning default variance model")
		}
		return e.DefaultModel()
	}

	all := make([]float64, 0, len(games))
	byQuality := map[string][]float64{}
	byMatchup := map[string][]float64{}
	byScore := map[string][]float64{}

	for _, g := range games {
		err := g.meanAbsError()
		all = append(all, err)
		q := models.QualityTier(g.PredictedSpread)
		m := models.MatchupTier(g.PredictedSpread)
		s := e.bands.Classify(g.PredictedTotal)
		byQuality[q] = append(byQuality[q], err)
		byMatchup[m] = append(byMatchup[m], err)
		byScore[s] = append(byScore[s], err)
	}

	model := &models.VarianceModel{
		Version:         fmt.Sprintf("v%d", time.Now().UTC().Unix()),
		BuiltAt:         time.Now().UTC(),
		SampleSize:      len(games),
		BaseVariance:    populationVariance(all),
		QualityTiers:    tierVariances(byQuality),
		MatchupTiers:    tierVariances(byMatchup),
		ScoreRangeTiers: tierVariances(byScore),
	}
	if model.BaseVariance <= 0 {
		model.BaseVariance = e.cfg.DefaultVariance
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"version":       model.Version,
			"sample_size":   model.SampleSize,
			"base_variance": model.BaseVariance,
		}).Info("Variance model rebuilt")
	}
	return model
}

// DefaultModel is the non-empty placeholder used when no history exists. The
// configured default variance seeds every tier so lookups stay sensible.
func (e *Estimator) DefaultModel() *models.VarianceModel {
	v := e.cfg.DefaultVariance
	return &models.VarianceModel{
		Version:      "default",
		BuiltAt:      time.Now().UTC(),
		SampleSize:   0,
		BaseVariance: v,
		QualityTiers: map[string]float64{
			models.QualityElite:   v * 0.8,
			models.QualityGood:    v * 0.9,
			models.QualityAverage: v,
			models.QualityPoor:    v * 1.1,
		},
		MatchupTiers: map[string]float64{
			models.MatchupBlowout:     v * 1.2,
			models.MatchupCompetitive: v,
			models.MatchupClose:       v * 0.9,
		},
		ScoreRangeTiers: map[string]float64{
			models.ScoreRangeLow:    v * 0.9,
			models.ScoreRangeMedium: v,
			models.ScoreRangeHigh:   v * 1.1,
		},
	}
}

func tierVariances(buckets map[string][]float64) map[string]float64 {
	out := make(map[string]float64, len(buckets))
	for tier, errs := range buckets {
		out[tier] = populationVariance(errs)
	}
	return out
}

func populationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	return variance / float64(len(values))
}
