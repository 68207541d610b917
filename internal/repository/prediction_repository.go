package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/database"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL.
// The prediction payload, odds snapshot, and outcome are stored as JSONB
// alongside the indexed columns used for matching.
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

const predictionColumns = `
	id, game_id, sport, home_team, away_team, game_date,
	prediction, odds, outcome, validated, created_at, updated_at
`

// Create inserts a new tracked prediction
func (r *PostgresPredictionRepository) Create(ctx context.Context, tp *models.TrackedPrediction) error {
	predJSON, err := json.Marshal(tp.Prediction)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}
	oddsJSON, err := marshalNullable(tp.Odds)
	if err != nil {
		return fmt.Errorf("failed to marshal odds: %w", err)
	}

	query := `
		INSERT INTO tracked_predictions (id, game_id, sport, home_team, away_team, game_date,
		                                 prediction, odds, validated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, NOW(), NOW())
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		tp.ID, tp.GameID, tp.Sport, tp.HomeTeam, tp.AwayTeam, tp.GameDate,
		predJSON, oddsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to create tracked prediction: %w", err)
	}

	return nil
}

// GetByID retrieves a tracked prediction by ID
func (r *PostgresPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrackedPrediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM tracked_predictions WHERE id = $1`
	return r.scanOne(r.db.GetPool().QueryRow(ctx, query, id))
}

// FindUnvalidatedByGameID returns the first unvalidated prediction for a game id
func (r *PostgresPredictionRepository) FindUnvalidatedByGameID(ctx context.Context, gameID string) (*models.TrackedPrediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM tracked_predictions
		WHERE game_id = $1 AND validated = false
		ORDER BY created_at ASC
		LIMIT 1
	`
	return r.scanOne(r.db.GetPool().QueryRow(ctx, query, gameID))
}

// ListUnvalidatedBefore returns unvalidated predictions with game dates before the cutoff
func (r *PostgresPredictionRepository) ListUnvalidatedBefore(ctx context.Context, cutoff time.Time) ([]*models.TrackedPrediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM tracked_predictions
		WHERE validated = false AND game_date < $1
		ORDER BY game_date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query unvalidated predictions: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// ListValidated returns the most recent validated predictions
func (r *PostgresPredictionRepository) ListValidated(ctx context.Context, limit int) ([]*models.TrackedPrediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM tracked_predictions
		WHERE validated = true
		ORDER BY game_date DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query validated predictions: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// CountValidated counts validated predictions
func (r *PostgresPredictionRepository) CountValidated(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT COUNT(*) FROM tracked_predictions WHERE validated = true`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count validated predictions: %w", err)
	}
	return count, nil
}

// RecordOutcome attaches an outcome and marks the prediction validated. The
// validated = false guard in the WHERE clause makes the transition exactly
// once even under concurrent batch runs.
func (r *PostgresPredictionRepository) RecordOutcome(ctx context.Context, id uuid.UUID, outcome models.ActualOutcome) error {
	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	query := `
		UPDATE tracked_predictions
		SET outcome = $2, validated = true, updated_at = NOW()
		WHERE id = $1 AND validated = false
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query, id, outcomeJSON)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrAlreadyValidated
	}

	return nil
}

// Update updates the mutable columns of an existing prediction
func (r *PostgresPredictionRepository) Update(ctx context.Context, tp *models.TrackedPrediction) error {
	predJSON, err := json.Marshal(tp.Prediction)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}
	oddsJSON, err := marshalNullable(tp.Odds)
	if err != nil {
		return fmt.Errorf("failed to marshal odds: %w", err)
	}

	query := `
		UPDATE tracked_predictions
		SET prediction = $2, odds = $3, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query, tp.ID, predJSON, oddsJSON)
	if err != nil {
		return fmt.Errorf("failed to update prediction: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresPredictionRepository) scanOne(row rowScanner) (*models.TrackedPrediction, error) {
	tp := &models.TrackedPrediction{}
	var predJSON, oddsJSON, outcomeJSON []byte

	err := row.Scan(
		&tp.ID, &tp.GameID, &tp.Sport, &tp.HomeTeam, &tp.AwayTeam, &tp.GameDate,
		&predJSON, &oddsJSON, &outcomeJSON, &tp.Validated, &tp.CreatedAt, &tp.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tracked prediction: %w", err)
	}

	if err := unmarshalPayloads(tp, predJSON, oddsJSON, outcomeJSON); err != nil {
		return nil, err
	}
	return tp, nil
}

func (r *PostgresPredictionRepository) scanMany(rows pgx.Rows) ([]*models.TrackedPrediction, error) {
	var predictions []*models.TrackedPrediction
	for rows.Next() {
		tp := &models.TrackedPrediction{}
		var predJSON, oddsJSON, outcomeJSON []byte
		err := rows.Scan(
			&tp.ID, &tp.GameID, &tp.Sport, &tp.HomeTeam, &tp.AwayTeam, &tp.GameDate,
			&predJSON, &oddsJSON, &outcomeJSON, &tp.Validated, &tp.CreatedAt, &tp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracked prediction: %w", err)
		}
		if err := unmarshalPayloads(tp, predJSON, oddsJSON, outcomeJSON); err != nil {
			return nil, err
		}
		predictions = append(predictions, tp)
	}
	return predictions, rows.Err()
}

func unmarshalPayloads(tp *models.TrackedPrediction, predJSON, oddsJSON, outcomeJSON []byte) error {
	if len(predJSON) > 0 {
		if err := json.Unmarshal(predJSON, &tp.Prediction); err != nil {
			return fmt.Errorf("failed to unmarshal prediction payload: %w", err)
		}
	}
	if len(oddsJSON) > 0 {
		tp.Odds = &models.OddsSnapshot{}
		if err := json.Unmarshal(oddsJSON, tp.Odds); err != nil {
			return fmt.Errorf("failed to unmarshal odds payload: %w", err)
		}
	}
	if len(outcomeJSON) > 0 {
		tp.Outcome = &models.ActualOutcome{}
		if err := json.Unmarshal(outcomeJSON, tp.Outcome); err != nil {
			return fmt.Errorf("failed to unmarshal outcome payload: %w", err)
		}
	}
	return nil
}

func marshalNullable(odds *models.OddsSnapshot) ([]byte, error) {
	if odds == nil {
		return nil, nil
	}
	return json.Marshal(odds)
}
