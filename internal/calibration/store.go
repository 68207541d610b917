package calibration

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/repository"
)

// Store holds the process-wide active RecalibrationParams. Params are loaded
// once at startup and replaced atomically after a successful training run, so
// prediction calls never observe a half-updated A/B pair.
type Store struct {
	active atomic.Value // models.RecalibrationParams
	repo   repository.ModelStateRepository
	logger *logrus.Logger
}

// NewStore creates a store seeded with the identity transform.
func NewStore(repo repository.ModelStateRepository, logger *logrus.Logger) *Store {
	s := &Store{repo: repo, logger: logger}
	s.active.Store(models.IdentityParams())
	return s
}

// Load refreshes the active params from persistence. A missing record is not
// an error: the store keeps the identity transform until the first training
// run persists real params.
func (s *Store) Load(ctx context.Context) error {
	params, err := s.repo.GetCalibration(ctx)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("No persisted calibration params, using identity transform")
			return nil
		}
		return err
	}
	s.active.Store(*params)
	s.logger.WithFields(logrus.Fields{
		"a":       params.A,
		"b":       params.B,
		"samples": params.SampleCount,
	}).Info("Loaded calibration params")
	return nil
}

// Active returns an immutable snapshot of the current params.
func (s *Store) Active() models.RecalibrationParams {
	return s.active.Load().(models.RecalibrationParams)
}

// Replace persists new params and makes them active for all subsequent
// predictions in this process.
func (s *Store) Replace(ctx context.Context, params models.RecalibrationParams) error {
	params.TrainedAt = time.Now().UTC()
	if err := s.repo.SaveCalibration(ctx, params); err != nil {
		return err
	}
	s.active.Store(params)
	s.logger.WithFields(logrus.Fields{
		"a":       params.A,
		"b":       params.B,
		"samples": params.SampleCount,
	}).Info("Calibration params replaced")
	return nil
}
