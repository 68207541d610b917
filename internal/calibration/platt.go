// Package calibration fits and serves the two-parameter Platt remap that
// corrects the raw model probability against observed outcomes.
package calibration

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

const logitEpsilon = 1e-6

// Sample is one validated prediction: the raw (pre-calibration) home win
// probability and whether the home side actually won.
type Sample struct {
	RawProb float64
	HomeWon bool
}

// Fitter fits RecalibrationParams by logistic-regression maximum likelihood
// over the binary outcome, using Newton-Raphson on the two parameters. The
// fit is fully deterministic for a given sample set.
type Fitter struct {
	cfg    config.CalibrationConfig
	logger *logrus.Logger
}

// NewFitter creates a fitter from the calibration config.
func NewFitter(cfg config.CalibrationConfig, logger *logrus.Logger) *Fitter {
	return &Fitter{cfg: cfg, logger: logger}
}

// Fit estimates {A, B} so that sigmoid(A*logit(raw) + B) tracks the empirical
// win rate. It returns ErrInsufficientSamples below the configured minimum
// and ErrFitDiverged when the input is degenerate (for example all outcomes
// identical); callers fall back to the identity transform on error.
func (f *Fitter) Fit(samples []Sample) (models.RecalibrationParams, error) {
	if len(samples) < f.cfg.MinSamples {
		return models.IdentityParams(), fmt.Errorf("%w: have %d, need %d",
			models.ErrInsufficientSamples, len(samples), f.cfg.MinSamples)
	}

	wins := 0
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		clamped := math.Min(math.Max(s.RawProb, logitEpsilon), 1-logitEpsilon)
		xs[i] = math.Log(clamped / (1 - clamped))
		if s.HomeWon {
			ys[i] = 1
			wins++
		}
	}
	if wins == 0 || wins == len(samples) {
		return models.IdentityParams(), fmt.Errorf("%w: all outcomes identical", models.ErrFitDiverged)
	}

	a, b := 1.0, 0.0
	for iter := 0; iter < f.cfg.MaxIterations; iter++ {
		// Gradient and Hessian of the negative log-likelihood.
		var gA, gB, hAA, hAB, hBB float64
		for i := range xs {
			p := sigmoid(a*xs[i] + b)
			diff := p - ys[i]
			w := p * (1 - p)
			gA += diff * xs[i]
			gB += diff
			hAA += w * xs[i] * xs[i]
			hAB += w * xs[i]
			hBB += w
		}

		det := hAA*hBB - hAB*hAB
		if math.Abs(det) < 1e-12 {
			return models.IdentityParams(), fmt.Errorf("%w: singular hessian", models.ErrFitDiverged)
		}

		deltaA := (hBB*gA - hAB*gB) / det
		deltaB := (hAA*gB - hAB*gA) / det
		a -= deltaA
		b -= deltaB

		if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
			return models.IdentityParams(), fmt.Errorf("%w: parameters diverged", models.ErrFitDiverged)
		}

		if math.Abs(deltaA) < f.cfg.Tolerance && math.Abs(deltaB) < f.cfg.Tolerance {
			if f.logger != nil {
				f.logger.WithFields(logrus.Fields{
					"a":          a,
					"b":          b,
					"samples":    len(samples),
					"iterations": iter + 1,
				}).Debug("Platt fit converged")
			}
			return models.RecalibrationParams{
				A:           a,
				B:           b,
				SampleCount: len(samples),
				Trained:     true,
			}, nil
		}
	}

	return models.IdentityParams(), fmt.Errorf("%w: no convergence after %d iterations",
		models.ErrFitDiverged, f.cfg.MaxIterations)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
