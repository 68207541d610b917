package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/database"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

// PredictionRepository defines the interface for tracked-prediction data access.
type PredictionRepository interface {
	Create(ctx context.Context, prediction *models.TrackedPrediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrackedPrediction, error)
	// FindUnvalidatedByGameID returns the first unvalidated prediction for a
	// game id, used to deduplicate repeated generation requests.
	FindUnvalidatedByGameID(ctx context.Context, gameID string) (*models.TrackedPrediction, error)
	// ListUnvalidatedBefore returns unvalidated predictions whose game date is
	// strictly before the cutoff (the batch sync's pending set).
	ListUnvalidatedBefore(ctx context.Context, cutoff time.Time) ([]*models.TrackedPrediction, error)
	// ListValidated returns the most recent validated predictions, newest first.
	ListValidated(ctx context.Context, limit int) ([]*models.TrackedPrediction, error)
	CountValidated(ctx context.Context) (int, error)
	// RecordOutcome attaches an outcome and flips the validated flag. It is
	// guarded by validated = false and returns ErrAlreadyValidated when the
	// prediction has already been settled, making duplicate batch runs no-ops.
	RecordOutcome(ctx context.Context, id uuid.UUID, outcome models.ActualOutcome) error
	Update(ctx context.Context, prediction *models.TrackedPrediction) error
}

// ModelStateRepository is key/value storage for the single active
// recalibration record and variance model snapshots.
type ModelStateRepository interface {
	SaveCalibration(ctx context.Context, params models.RecalibrationParams) error
	GetCalibration(ctx context.Context) (*models.RecalibrationParams, error)
	SaveVarianceModel(ctx context.Context, model *models.VarianceModel) error
	GetVarianceModel(ctx context.Context) (*models.VarianceModel, error)
}

// Repositories bundles every repository for dependency wiring.
type Repositories struct {
	Predictions PredictionRepository
	ModelState  ModelStateRepository
}

// NewRepositories wires every repository on one database handle.
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Predictions: NewPostgresPredictionRepository(db),
		ModelState:  NewPostgresModelStateRepository(db),
	}
}
