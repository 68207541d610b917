package models

import (
	"math"
	"time"
)

// Tier names for the variance lookup.
const (
	QualityElite   = "elite"
	QualityGood    = "good"
	QualityAverage = "average"
	QualityPoor    = "poor"

	MatchupBlowout     = "blowout"
	MatchupCompetitive = "competitive"
	MatchupClose       = "close"

	ScoreRangeLow    = "low"
	ScoreRangeMedium = "medium"
	ScoreRangeHigh   = "high"
)

// Blend weights for combining tier variances into a per-prediction estimate.
const (
	qualityWeight    = 0.40
	matchupWeight    = 0.30
	scoreRangeWeight = 0.30
)

// ScoreBands are the sport-specific boundaries between low/medium/high
// predicted totals.
type ScoreBands struct {
	LowMax    float64 `json:"low_max"`
	MediumMax float64 `json:"medium_max"`
}

// Classify returns the score-range tier for a predicted total.
func (b ScoreBands) Classify(total float64) string {
	switch {
	case total <= b.LowMax:
		return ScoreRangeLow
	case total <= b.MediumMax:
		return ScoreRangeMedium
	default:
		return ScoreRangeHigh
	}
}

// QualityTier buckets a prediction by the magnitude of its spread.
func QualityTier(spread float64) string {
	abs := math.Abs(spread)
	switch {
	case abs > 10:
		return QualityElite
	case abs > 5:
		return QualityGood
	case abs > 2:
		return QualityAverage
	default:
		return QualityPoor
	}
}

// MatchupTier buckets a prediction by how lopsided the matchup is.
func MatchupTier(spread float64) string {
	abs := math.Abs(spread)
	switch {
	case abs > 15:
		return MatchupBlowout
	case abs > 5:
		return MatchupCompetitive
	default:
		return MatchupClose
	}
}

// VarianceModel is the nested empirical-error variance lookup rebuilt in
// batch from historical validated games. It is immutable within a single
// simulation call.
type VarianceModel struct {
	Version         string             `json:"version"`
	BuiltAt         time.Time          `json:"built_at"`
	SampleSize      int                `json:"sample_size"`
	BaseVariance    float64            `json:"base_variance"`
	QualityTiers    map[string]float64 `json:"quality_tiers"`
	MatchupTiers    map[string]float64 `json:"matchup_tiers"`
	ScoreRangeTiers map[string]float64 `json:"score_range_tiers"`
}

// Variance blends the three tier estimates (quality 40%, matchup 30%,
// score-range 30%) for a specific prediction. Empty buckets fall back to the
// overall base variance rather than zero.
func (m *VarianceModel) Variance(spread, total float64, bands ScoreBands) float64 {
	q := m.tierOrBase(m.QualityTiers, QualityTier(spread))
	mt := m.tierOrBase(m.MatchupTiers, MatchupTier(spread))
	sr := m.tierOrBase(m.ScoreRangeTiers, bands.Classify(total))
	return qualityWeight*q + matchupWeight*mt + scoreRangeWeight*sr
}

// StdDev is the simulation-facing square root of the blended variance.
func (m *VarianceModel) StdDev(spread, total float64, bands ScoreBands) float64 {
	return math.Sqrt(m.Variance(spread, total, bands))
}

func (m *VarianceModel) tierOrBase(tiers map[string]float64, key string) float64 {
	if v, ok := tiers[key]; ok && v > 0 {
		return v
	}
	return m.BaseVariance
}
