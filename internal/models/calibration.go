package models

import (
	"math"
	"time"
)

const probEpsilon = 1e-6

// RecalibrationParams is the two-parameter Platt remap
// calibrated = sigmoid(A*logit(raw) + B). The single global record is
// versioned by overwrite and refreshed after each successful training run.
type RecalibrationParams struct {
	A           float64   `json:"a"`
	B           float64   `json:"b"`
	SampleCount int       `json:"sample_count"`
	Trained     bool      `json:"trained"`
	TrainedAt   time.Time `json:"trained_at"`
}

// IdentityParams returns the no-op transform used before any training run has
// succeeded and as the fallback when fitting diverges.
func IdentityParams() RecalibrationParams {
	return RecalibrationParams{A: 1, B: 0}
}

// Apply maps a raw probability to its calibrated value. The transform is
// monotonic in raw, so applying it never reorders predictions.
func (p RecalibrationParams) Apply(raw float64) float64 {
	clamped := math.Min(math.Max(raw, probEpsilon), 1-probEpsilon)
	logit := math.Log(clamped / (1 - clamped))
	return 1 / (1 + math.Exp(-(p.A*logit + p.B)))
}

// IsIdentity reports whether applying the params is a no-op.
func (p RecalibrationParams) IsIdentity() bool {
	return p.A == 1 && p.B == 0
}
