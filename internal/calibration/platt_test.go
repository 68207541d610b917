package calibration

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

func testFitter() *Fitter {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewFitter(config.CalibrationConfig{
		MinSamples:    20,
		MaxIterations: 100,
		Tolerance:     1e-8,
	}, logger)
}

// calibratedSamples draws outcomes whose empirical frequency matches the raw
// probability, so the identity transform is already the maximum-likelihood
// fit.
func calibratedSamples(n int, seed int64) []Sample {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]Sample, n)
	for i := range samples {
		p := 0.2 + 0.6*rng.Float64()
		samples[i] = Sample{RawProb: p, HomeWon: rng.Float64() < p}
	}
	return samples
}

func TestFitCalibratedDataReturnsNearIdentity(t *testing.T) {
	params, err := testFitter().Fit(calibratedSamples(5000, 7))
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if !params.Trained {
		t.Fatal("expected trained params")
	}
	if math.Abs(params.A-1) > 0.15 {
		t.Fatalf("expected A near 1, got %v", params.A)
	}
	if math.Abs(params.B) > 0.15 {
		t.Fatalf("expected B near 0, got %v", params.B)
	}
}

func TestFitRejectsSmallSamples(t *testing.T) {
	_, err := testFitter().Fit(calibratedSamples(19, 1))
	if !errors.Is(err, models.ErrInsufficientSamples) {
		t.Fatalf("expected ErrInsufficientSamples, got %v", err)
	}
}

func TestFitDegenerateOutcomesFallsBackToIdentity(t *testing.T) {
	samples := make([]Sample, 30)
	for i := range samples {
		samples[i] = Sample{RawProb: 0.6, HomeWon: true}
	}
	params, err := testFitter().Fit(samples)
	if !errors.Is(err, models.ErrFitDiverged) {
		t.Fatalf("expected ErrFitDiverged, got %v", err)
	}
	if !params.IsIdentity() {
		t.Fatalf("expected identity fallback, got %+v", params)
	}
}

func TestFitIsDeterministic(t *testing.T) {
	samples := calibratedSamples(200, 42)
	first, err := testFitter().Fit(samples)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	second, err := testFitter().Fit(samples)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if first.A != second.A || first.B != second.B {
		t.Fatalf("same input produced different fits: %+v vs %+v", first, second)
	}
}

func TestFitShiftsTowardEmpiricalRate(t *testing.T) {
	// The model says 70% but the home side only wins about half the time;
	// applying the fitted params must pull the probability down.
	rng := rand.New(rand.NewSource(99))
	samples := make([]Sample, 400)
	for i := range samples {
		samples[i] = Sample{RawProb: 0.7, HomeWon: rng.Float64() < 0.5}
	}
	// Spread the raw probabilities slightly so the design matrix is not rank
	// deficient.
	for i := 0; i < len(samples); i += 4 {
		samples[i].RawProb = 0.65
	}

	params, err := testFitter().Fit(samples)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	calibrated := params.Apply(0.7)
	if calibrated >= 0.7 {
		t.Fatalf("expected calibrated probability below raw 0.7, got %v", calibrated)
	}
	if calibrated < 0.3 {
		t.Fatalf("calibrated probability overshot, got %v", calibrated)
	}
}

func TestApplyClampsExtremes(t *testing.T) {
	params := models.RecalibrationParams{A: 1, B: 0}
	for _, raw := range []float64{0, 1, -0.5, 1.5} {
		got := params.Apply(raw)
		if got <= 0 || got >= 1 {
			t.Fatalf("Apply(%v) = %v outside (0, 1)", raw, got)
		}
	}
}
