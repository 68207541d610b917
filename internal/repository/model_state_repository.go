package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/database"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

// Keys under which model state is stored.
const (
	calibrationKey   = "recalibration_params"
	varianceModelKey = "variance_model"
)

// PostgresModelStateRepository implements ModelStateRepository on a simple
// key/value table (model_state: key text primary key, value jsonb).
type PostgresModelStateRepository struct {
	db *database.DB
}

// NewPostgresModelStateRepository creates a new model state repository
func NewPostgresModelStateRepository(db *database.DB) ModelStateRepository {
	return &PostgresModelStateRepository{db: db}
}

// SaveCalibration upserts the single active recalibration record
func (r *PostgresModelStateRepository) SaveCalibration(ctx context.Context, params models.RecalibrationParams) error {
	return r.save(ctx, calibrationKey, params)
}

// GetCalibration loads the active recalibration record
func (r *PostgresModelStateRepository) GetCalibration(ctx context.Context) (*models.RecalibrationParams, error) {
	params := &models.RecalibrationParams{}
	if err := r.load(ctx, calibrationKey, params); err != nil {
		return nil, err
	}
	return params, nil
}

// SaveVarianceModel upserts the current variance model snapshot
func (r *PostgresModelStateRepository) SaveVarianceModel(ctx context.Context, model *models.VarianceModel) error {
	return r.save(ctx, varianceModelKey, model)
}

// GetVarianceModel loads the current variance model snapshot
func (r *PostgresModelStateRepository) GetVarianceModel(ctx context.Context) (*models.VarianceModel, error) {
	model := &models.VarianceModel{}
	if err := r.load(ctx, varianceModelKey, model); err != nil {
		return nil, err
	}
	return model, nil
}

func (r *PostgresModelStateRepository) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal model state %s: %w", key, err)
	}

	query := `
		INSERT INTO model_state (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := r.db.GetPool().Exec(ctx, query, key, data); err != nil {
		return fmt.Errorf("failed to save model state %s: %w", key, err)
	}
	return nil
}

func (r *PostgresModelStateRepository) load(ctx context.Context, key string, out any) error {
	var data []byte
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT value FROM model_state WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load model state %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal model state %s: %w", key, err)
	}
	return nil
}
