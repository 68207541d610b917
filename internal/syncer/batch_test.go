package syncer

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/calibration"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/datasource"
	applogger "github.com/eberleben15/TheOddsOracle-sub001/internal/logger"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

// MockPredictionRepository is a mock implementation of PredictionRepository
type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) Create(ctx context.Context, p *models.TrackedPrediction) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrackedPrediction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrackedPrediction), args.Error(1)
}

func (m *MockPredictionRepository) FindUnvalidatedByGameID(ctx context.Context, gameID string) (*models.TrackedPrediction, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrackedPrediction), args.Error(1)
}

func (m *MockPredictionRepository) ListUnvalidatedBefore(ctx context.Context, cutoff time.Time) ([]*models.TrackedPrediction, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TrackedPrediction), args.Error(1)
}

func (m *MockPredictionRepository) ListValidated(ctx context.Context, limit int) ([]*models.TrackedPrediction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TrackedPrediction), args.Error(1)
}

func (m *MockPredictionRepository) CountValidated(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockPredictionRepository) RecordOutcome(ctx context.Context, id uuid.UUID, outcome models.ActualOutcome) error {
	args := m.Called(ctx, id, outcome)
	return args.Error(0)
}

func (m *MockPredictionRepository) Update(ctx context.Context, p *models.TrackedPrediction) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockScoresProvider is a mock implementation of ScoresProvider
type MockScoresProvider struct {
	mock.Mock
}

func (m *MockScoresProvider) FetchCompletedGames(ctx context.Context, sport string, day time.Time) ([]datasource.CompletedGame, error) {
	args := m.Called(ctx, sport, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]datasource.CompletedGame), args.Error(1)
}

// MockGamesProvider is a mock implementation of GamesByDateProvider
type MockGamesProvider struct {
	mock.Mock
}

func (m *MockGamesProvider) FetchGamesByDate(ctx context.Context, sport string, day time.Time) ([]datasource.CompletedGame, error) {
	args := m.Called(ctx, sport, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]datasource.CompletedGame), args.Error(1)
}

type fakeModelStateRepo struct {
	calibration *models.RecalibrationParams
}

func (f *fakeModelStateRepo) SaveCalibration(_ context.Context, params models.RecalibrationParams) error {
	f.calibration = &params
	return nil
}

func (f *fakeModelStateRepo) GetCalibration(_ context.Context) (*models.RecalibrationParams, error) {
	if f.calibration == nil {
		return nil, models.ErrNotFound
	}
	return f.calibration, nil
}

func (f *fakeModelStateRepo) SaveVarianceModel(_ context.Context, _ *models.VarianceModel) error {
	return nil
}

func (f *fakeModelStateRepo) GetVarianceModel(_ context.Context) (*models.VarianceModel, error) {
	return nil, models.ErrNotFound
}

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		Sports:              []string{"basketball_nba"},
		LookbackDays:        30,
		InterCallDelayMS:    0,
		CronSchedule:        "0 6 * * *",
		TrainOnSync:         true,
		TrainingSampleLimit: 500,
	}
}

func newTestSynchronizer(repo *MockPredictionRepository, scores *MockScoresProvider, games *MockGamesProvider, trainOnSync bool) (*Synchronizer, *calibration.Store) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := testSyncConfig()
	cfg.TrainOnSync = trainOnSync
	fitter := calibration.NewFitter(config.CalibrationConfig{
		MinSamples: 20, MaxIterations: 100, Tolerance: 1e-8,
	}, logger)
	calStore := calibration.NewStore(&fakeModelStateRepo{}, logger)

	s := NewSynchronizer(cfg, repo, scores, games, fitter, calStore, applogger.NewAuditLogger(logger), logger)
	s.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }
	s.sleep = func(time.Duration) {}
	return s, calStore
}

func pendingPrediction(gameID string, daysAgo int) *models.TrackedPrediction {
	gameDate := time.Date(2026, 3, 15-daysAgo, 19, 0, 0, 0, time.UTC)
	return &models.TrackedPrediction{
		ID:       uuid.New(),
		GameID:   gameID,
		Sport:    "basketball_nba",
		HomeTeam: "Boston Celtics",
		AwayTeam: "Miami Heat",
		GameDate: gameDate,
		Prediction: models.MatchupPrediction{
			GameID:         gameID,
			RawHomeWinProb: 0.6,
		},
	}
}

func TestRunNothingPendingMakesNoFetches(t *testing.T) {
	repo := &MockPredictionRepository{}
	scores := &MockScoresProvider{}
	games := &MockGamesProvider{}
	s, _ := newTestSynchronizer(repo, scores, games, true)

	repo.On("ListUnvalidatedBefore", mock.Anything, mock.Anything).
		Return([]*models.TrackedPrediction{}, nil)

	result, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Checked)
	assert.Equal(t, 0, result.Matched)
	assert.False(t, result.Trained)

	scores.AssertNotCalled(t, "FetchCompletedGames", mock.Anything, mock.Anything, mock.Anything)
	games.AssertNotCalled(t, "FetchGamesByDate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunCutoffExcludesTodayAndFuture(t *testing.T) {
	repo := &MockPredictionRepository{}
	scores := &MockScoresProvider{}
	games := &MockGamesProvider{}
	s, _ := newTestSynchronizer(repo, scores, games, false)

	repo.On("ListUnvalidatedBefore", mock.Anything,
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)).
		Return([]*models.TrackedPrediction{}, nil)

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRunMatchesByExactGameID(t *testing.T) {
	repo := &MockPredictionRepository{}
	scores := &MockScoresProvider{}
	games := &MockGamesProvider{}
	s, _ := newTestSynchronizer(repo, scores, games, false)

	pending := pendingPrediction("nba-1001", 1)
	repo.On("ListUnvalidatedBefore", mock.Anything, mock.Anything).
		Return([]*models.TrackedPrediction{pending}, nil)
	scores.On("FetchCompletedGames", mock.Anything, "basketball_nba", mock.Anything).
		Return([]datasource.CompletedGame{{
			GameID: "nba-1001", Sport: "basketball_nba",
			HomeTeam: "Boston Celtics", AwayTeam: "Miami Heat",
			HomeScore: 112, AwayScore: 104, Completed: true,
		}}, nil)
	repo.On("RecordOutcome", mock.Anything, pending.ID, mock.MatchedBy(func(o models.ActualOutcome) bool {
		return o.HomeScore == 112 && o.AwayScore == 104 && o.Winner == "home"
	})).Return(nil)

	result, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, 1, result.Matched)
	assert.Empty(t, result.Errors)
	repo.AssertExpectations(t)
	games.AssertNotCalled(t, "FetchGamesByDate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunIsIdempotentAcrossDuplicateRuns(t *testing.T) {
	repo := &MockPredictionRepository{}
	scores := &MockScoresProvider{}
	games := &MockGamesProvider{}
	s, _ := newTestSynchronizer(repo, scores, games, false)

	pending := pendingPrediction("nba-1001", 1)
	repo.On("ListUnvalidatedBefore", mock.Anything, mock.Anything).
		Return([]*models.TrackedPrediction{pending}, nil)
	scores.On("FetchCompletedGames", mock.Anything, "basketball_nba", mock.Anything).
		Return([]datasource.CompletedGame{{
			GameID: "nba-1001", HomeTeam: "Boston Celtics", AwayTeam: "Miami Heat",
			HomeScore: 112, AwayScore: 104, Completed: true,
		}}, nil)
	// A concurrent run already settled this prediction.
	repo.On("RecordOutcome", mock.Anything, pending.ID, mock.Anything).
		Return(models.ErrAlreadyValidated)

	result, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Matched, "already-validated prediction must not count as matched")
	assert.Empty(t, result.Errors, "idempotent skip is not an error")
}

func TestRunFallsBackToTeamNameMatch(t *testing.T) {
	repo := &MockPredictionRepository{}
	scores := &MockScoresProvider{}
	games := &MockGamesProvider{}
	s, _ := newTestSynchronizer(repo, scores, games, false)

	pending := pendingPrediction("nba-1001", 1)
	repo.On("ListUnvalidatedBefore", mock.Anything, mock.Anything).
		Return([]*models.TrackedPrediction{pending}, nil)
	// The scores feed has nothing under this identifier.
	scores.On("FetchCompletedGames", mock.Anything, "basketball_nba", mock.Anything).
		Return([]datasource.CompletedGame{}, nil)
	// The by-date feed knows the game under a different id, with skewed names.
	games.On("FetchGamesByDate", mock.Anything, "basketball_nba", mock.Anything).
		Return([]datasource.CompletedGame{{
			GameID: "other-id", HomeTeam: "Boston", AwayTeam: "Miami Heat",
			HomeScore: 98, AwayScore: 105, Completed: true,
		}}, nil)
	repo.On("RecordOutcome", mock.Anything, pending.ID, mock.MatchedBy(func(o models.ActualOutcome) bool {
		return o.Winner == "away"
	})).Return(nil)

	result, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Matched)
	repo.AssertExpectations(t)
}

func TestRunFetchFailureIsPartialNotFatal(t *testing.T) {
	repo := &MockPredictionRepository{}
	scores := &MockScoresProvider{}
	games := &MockGamesProvider{}
	s, _ := newTestSynchronizer(repo, scores, games, false)

	pending := pendingPrediction("nba-1001", 1)
	repo.On("ListUnvalidatedBefore", mock.Anything, mock.Anything).
		Return([]*models.TrackedPrediction{pending}, nil)
	scores.On("FetchCompletedGames", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, datasource.NewProviderError("scores_api", datasource.ErrCodeServerError, "boom", nil))
	games.On("FetchGamesByDate", mock.Anything, mock.Anything, mock.Anything).
		Return([]datasource.CompletedGame{}, nil)

	result, err := s.Run(context.Background())
	require.NoError(t, err, "fetch failures degrade to partial success")
	assert.Equal(t, 0, result.Matched)
	assert.NotEmpty(t, result.Errors)
}

func TestRunTrainsWhenEnoughValidatedSamples(t *testing.T) {
	repo := &MockPredictionRepository{}
	scores := &MockScoresProvider{}
	games := &MockGamesProvider{}
	s, calStore := newTestSynchronizer(repo, scores, games, true)

	pending := pendingPrediction("nba-1001", 1)
	repo.On("ListUnvalidatedBefore", mock.Anything, mock.Anything).
		Return([]*models.TrackedPrediction{pending}, nil)
	scores.On("FetchCompletedGames", mock.Anything, mock.Anything, mock.Anything).
		Return([]datasource.CompletedGame{{
			GameID: "nba-1001", HomeTeam: "Boston Celtics", AwayTeam: "Miami Heat",
			HomeScore: 112, AwayScore: 104, Completed: true,
		}}, nil)
	repo.On("RecordOutcome", mock.Anything, pending.ID, mock.Anything).Return(nil)

	rng := rand.New(rand.NewSource(5))
	validated := make([]*models.TrackedPrediction, 60)
	for i := range validated {
		raw := 0.25 + 0.5*rng.Float64()
		winner := "away"
		if rng.Float64() < raw {
			winner = "home"
		}
		validated[i] = &models.TrackedPrediction{
			ID:         uuid.New(),
			GameID:     uuid.NewString(),
			Sport:      "basketball_nba",
			Prediction: models.MatchupPrediction{RawHomeWinProb: raw},
			Outcome:    &models.ActualOutcome{Winner: winner},
			Validated:  true,
		}
	}
	repo.On("ListValidated", mock.Anything, 500).Return(validated, nil)

	result, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Trained)
	assert.True(t, calStore.Active().Trained, "new params must be active")
	assert.Empty(t, result.Errors)
}

func TestRunSkipsTrainingBelowThreshold(t *testing.T) {
	repo := &MockPredictionRepository{}
	scores := &MockScoresProvider{}
	games := &MockGamesProvider{}
	s, calStore := newTestSynchronizer(repo, scores, games, true)

	pending := pendingPrediction("nba-1001", 1)
	repo.On("ListUnvalidatedBefore", mock.Anything, mock.Anything).
		Return([]*models.TrackedPrediction{pending}, nil)
	scores.On("FetchCompletedGames", mock.Anything, mock.Anything, mock.Anything).
		Return([]datasource.CompletedGame{{
			GameID: "nba-1001", HomeTeam: "Boston Celtics", AwayTeam: "Miami Heat",
			HomeScore: 112, AwayScore: 104, Completed: true,
		}}, nil)
	repo.On("RecordOutcome", mock.Anything, pending.ID, mock.Anything).Return(nil)

	few := []*models.TrackedPrediction{
		{
			ID: uuid.New(), Sport: "basketball_nba",
			Prediction: models.MatchupPrediction{RawHomeWinProb: 0.55},
			Outcome:    &models.ActualOutcome{Winner: "home"},
			Validated:  true,
		},
	}
	repo.On("ListValidated", mock.Anything, 500).Return(few, nil)

	result, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Trained)
	assert.True(t, calStore.Active().IsIdentity())
	assert.Empty(t, result.Errors, "insufficient samples is a quiet skip")
}
