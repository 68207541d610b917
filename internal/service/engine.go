// Package service wires the analytics, prediction, calibration, and
// simulation components into the engine facade the CLIs consume.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/analytics"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/calibration"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/datasource"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/feedback"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/logger"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/metrics"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/prediction"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/repository"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/simulation"
)

// GameRequest identifies one upcoming game to predict.
type GameRequest struct {
	GameID     string
	Sport      string
	Season     string
	HomeTeamID string
	AwayTeamID string
	GameDate   time.Time
	Odds       *models.OddsSnapshot
}

// Engine is the top-level facade over the prediction pipeline.
type Engine struct {
	cfg      *config.Config
	repos    *repository.Repositories
	stats    datasource.StatsProvider
	calStore *calibration.Store
	analyzer *feedback.Analyzer
	audit    *logger.AuditLogger
	logger   *logrus.Logger
}

// NewEngine wires the engine from its collaborators.
func NewEngine(
	cfg *config.Config,
	repos *repository.Repositories,
	stats datasource.StatsProvider,
	calStore *calibration.Store,
	audit *logger.AuditLogger,
	log *logrus.Logger,
) *Engine {
	return &Engine{
		cfg:      cfg,
		repos:    repos,
		stats:    stats,
		calStore: calStore,
		analyzer: feedback.NewAnalyzer(cfg.Feedback, log),
		audit:    audit,
		logger:   log,
	}
}

// GeneratePrediction produces and persists a prediction for one game. A
// pending unvalidated prediction for the same game id is returned as-is
// instead of generating a duplicate. When persistence fails the freshly
// generated prediction is still returned alongside the error so the caller
// can surface it.
func (e *Engine) GeneratePrediction(ctx context.Context, req GameRequest) (*models.TrackedPrediction, error) {
	existing, err := e.repos.Predictions.FindUnvalidatedByGameID(ctx, req.GameID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing prediction: %w", err)
	}
	if existing != nil {
		metrics.PredictionsDeduplicatedTotal.Inc()
		e.audit.LogPredictionGenerated(existing.ID.String(), existing.GameID, existing.Sport,
			existing.Prediction.WinProbability.Home, existing.Prediction.RawHomeWinProb,
			existing.Prediction.PredictedSpread, true)
		return existing, nil
	}

	baselines, ok := e.cfg.Baselines(req.Sport)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownSport, req.Sport)
	}

	homeInput, err := e.teamInput(ctx, req, req.HomeTeamID, baselines, true)
	if err != nil {
		return nil, err
	}
	awayInput, err := e.teamInput(ctx, req, req.AwayTeamID, baselines, false)
	if err != nil {
		return nil, err
	}

	predictor := prediction.NewPredictor(e.cfg.Model, baselines)
	pred := predictor.Predict(prediction.MatchupInput{
		GameID:        req.GameID,
		Sport:         req.Sport,
		GameDate:      req.GameDate,
		HomeAnalytics: homeInput.analytics,
		AwayAnalytics: awayInput.analytics,
		HomeStats:     homeInput.stats,
		AwayStats:     awayInput.stats,
	})

	// The raw probability stays on the record for retraining; the surfaced
	// pair is the calibrated one.
	calibrated := e.calStore.Active().Apply(pred.RawHomeWinProb)
	pred.WinProbability = models.WinProbability{Home: calibrated, Away: 1 - calibrated}

	if req.Odds != nil {
		pred.ValueBets = predictor.FindValueBets(pred, *req.Odds)
		for _, vb := range pred.ValueBets {
			metrics.ValueBetsFlaggedTotal.WithLabelValues(string(vb.Market)).Inc()
		}
	}

	now := time.Now().UTC()
	tracked := &models.TrackedPrediction{
		ID:         uuid.New(),
		GameID:     req.GameID,
		Sport:      req.Sport,
		HomeTeam:   pred.HomeTeam,
		AwayTeam:   pred.AwayTeam,
		GameDate:   req.GameDate,
		Prediction: pred,
		Odds:       req.Odds,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := e.repos.Predictions.Create(ctx, tracked); err != nil {
		e.logger.WithError(err).WithField("game_id", req.GameID).Error("Failed to persist prediction")
		return tracked, fmt.Errorf("failed to persist prediction: %w", err)
	}

	metrics.PredictionsGeneratedTotal.WithLabelValues(req.Sport).Inc()
	e.audit.LogPredictionGenerated(tracked.ID.String(), tracked.GameID, tracked.Sport,
		calibrated, pred.RawHomeWinProb, pred.PredictedSpread, false)
	return tracked, nil
}

type teamInput struct {
	stats     models.TeamStats
	analytics models.TeamAnalytics
}

func (e *Engine) teamInput(ctx context.Context, req GameRequest, teamID string, baselines config.SportBaselines, isHome bool) (*teamInput, error) {
	stats, err := e.stats.FetchTeamStats(ctx, req.Sport, teamID, req.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats for %s: %w", teamID, err)
	}
	recent, err := e.stats.FetchRecentGames(ctx, req.Sport, teamID, 10)
	if err != nil {
		// Analytics degrade to no-opinion defaults without recent games.
		e.logger.WithError(err).WithField("team_id", teamID).Warn("Recent games unavailable, degrading analytics")
		recent = nil
	}

	calc := analytics.NewCalculator(baselines)
	return &teamInput{
		stats:     *stats,
		analytics: calc.Calculate(*stats, recent, isHome),
	}, nil
}

// Prediction loads one tracked prediction by id.
func (e *Engine) Prediction(ctx context.Context, id uuid.UUID) (*models.TrackedPrediction, error) {
	return e.repos.Predictions.GetByID(ctx, id)
}

// Simulate runs a Monte Carlo simulation for a prediction against the
// persisted variance model, falling back to the default model when none has
// been built yet.
func (e *Engine) Simulate(ctx context.Context, pred models.MatchupPrediction, iterations int, seed int64) (*simulation.Result, error) {
	baselines, ok := e.cfg.Baselines(pred.Sport)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownSport, pred.Sport)
	}
	bands := models.ScoreBands{LowMax: baselines.LowScoreMax, MediumMax: baselines.MediumScoreMax}

	vm, err := e.repos.ModelState.GetVarianceModel(ctx)
	if errors.Is(err, models.ErrNotFound) {
		estimator := simulation.NewEstimator(e.cfg.Simulation, bands, e.logger)
		vm = estimator.DefaultModel()
	} else if err != nil {
		return nil, fmt.Errorf("failed to load variance model: %w", err)
	}

	if iterations <= 0 {
		iterations = e.cfg.Simulation.DefaultIterations
	}

	start := time.Now()
	result, err := simulation.Run(pred, vm, simulation.Config{
		Iterations:   iterations,
		Seed:         seed,
		ScoreFloor:   baselines.ScoreFloor,
		ScoreCeiling: baselines.ScoreCeiling,
		Bands:        bands,
	})
	if err != nil {
		return nil, err
	}
	metrics.SimulationDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

// RebuildVarianceModel re-estimates error variance for one sport from the
// validated history and persists the snapshot.
func (e *Engine) RebuildVarianceModel(ctx context.Context, sport string) (*models.VarianceModel, error) {
	baselines, ok := e.cfg.Baselines(sport)
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownSport, sport)
	}
	bands := models.ScoreBands{LowMax: baselines.LowScoreMax, MediumMax: baselines.MediumScoreMax}

	validated, err := e.repos.Predictions.ListValidated(ctx, e.cfg.Simulation.VarianceSampleCap)
	if err != nil {
		return nil, fmt.Errorf("failed to list validated predictions: %w", err)
	}

	games := make([]simulation.HistoricalGame, 0, len(validated))
	for _, tp := range validated {
		if tp.Sport != sport || tp.Outcome == nil {
			continue
		}
		games = append(games, simulation.HistoricalGame{
			PredictedHome:   tp.Prediction.PredictedScore.Home,
			PredictedAway:   tp.Prediction.PredictedScore.Away,
			PredictedSpread: tp.Prediction.PredictedSpread,
			PredictedTotal:  tp.Prediction.PredictedTotal,
			ActualHome:      tp.Outcome.HomeScore,
			ActualAway:      tp.Outcome.AwayScore,
		})
	}

	estimator := simulation.NewEstimator(e.cfg.Simulation, bands, e.logger)
	vm := estimator.Build(games)
	if err := e.repos.ModelState.SaveVarianceModel(ctx, vm); err != nil {
		return nil, fmt.Errorf("failed to persist variance model: %w", err)
	}
	return vm, nil
}

// TrainingExamples rebuilds the training rows from the validated history.
func (e *Engine) TrainingExamples(ctx context.Context) ([]models.TrainingExample, error) {
	validated, err := e.repos.Predictions.ListValidated(ctx, e.cfg.Sync.TrainingSampleLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list validated predictions: %w", err)
	}
	metrics.ValidatedExamples.Set(float64(len(validated)))

	examples := make([]models.TrainingExample, 0, len(validated))
	for _, tp := range validated {
		examples = append(examples, models.NewTrainingExample(tp))
	}
	return examples, nil
}

// RunFeedbackReport builds the ATS feedback report over the validated
// history.
func (e *Engine) RunFeedbackReport(ctx context.Context) (*feedback.Report, error) {
	examples, err := e.TrainingExamples(ctx)
	if err != nil {
		return nil, err
	}
	return e.analyzer.Analyze(examples), nil
}
