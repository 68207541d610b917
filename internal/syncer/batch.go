// Package syncer matches stored predictions against final scores and feeds
// newly validated outcomes back into calibration training.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/calibration"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/datasource"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/logger"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/matching"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/repository"
)

// SyncResult summarizes one batch run.
type SyncResult struct {
	Checked int      `json:"checked"`
	Matched int      `json:"matched"`
	Trained bool     `json:"trained"`
	Errors  []string `json:"errors,omitempty"`
}

// Synchronizer runs the outcome-matching batch: list pending predictions,
// resolve final scores (exact game id first, team-name fallback second),
// record outcomes idempotently, then retrain calibration when enough
// validated samples exist.
type Synchronizer struct {
	cfg      config.SyncConfig
	repo     repository.PredictionRepository
	scores   datasource.ScoresProvider
	games    datasource.GamesByDateProvider
	fitter   *calibration.Fitter
	calStore *calibration.Store
	audit    *logger.AuditLogger
	logger   *logrus.Logger

	// Injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewSynchronizer wires a batch synchronizer.
func NewSynchronizer(
	cfg config.SyncConfig,
	repo repository.PredictionRepository,
	scores datasource.ScoresProvider,
	games datasource.GamesByDateProvider,
	fitter *calibration.Fitter,
	calStore *calibration.Store,
	audit *logger.AuditLogger,
	log *logrus.Logger,
) *Synchronizer {
	return &Synchronizer{
		cfg:      cfg,
		repo:     repo,
		scores:   scores,
		games:    games,
		fitter:   fitter,
		calStore: calStore,
		audit:    audit,
		logger:   log,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

type dayKey struct {
	sport string
	day   string // 2006-01-02 in UTC
}

// Run executes one batch pass. Pending predictions are those whose game date
// falls strictly before the current UTC day; games scheduled today or later
// are never touched. With nothing pending the run makes zero provider calls.
func (s *Synchronizer) Run(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{}

	cutoff := startOfUTCDay(s.now())
	pending, err := s.repo.ListUnvalidatedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending predictions: %w", err)
	}
	result.Checked = len(pending)
	if len(pending) == 0 {
		s.logger.Debug("No pending predictions, skipping sync")
		return result, nil
	}

	s.logger.WithField("pending", len(pending)).Info("Starting outcome sync")

	unmatched := s.matchByGameID(ctx, pending, result)
	if len(unmatched) > 0 {
		s.matchByTeamNames(ctx, unmatched, result)
	}

	if s.cfg.TrainOnSync {
		s.train(ctx, result)
	}

	s.logger.WithFields(logrus.Fields{
		"checked": result.Checked,
		"matched": result.Matched,
		"trained": result.Trained,
		"errors":  len(result.Errors),
	}).Info("Outcome sync finished")
	return result, nil
}

// matchByGameID resolves outcomes through the primary scores provider, one
// fetch per distinct (sport, game day). Returns the predictions it could not
// match.
func (s *Synchronizer) matchByGameID(ctx context.Context, pending []*models.TrackedPrediction, result *SyncResult) []*models.TrackedPrediction {
	groups := map[dayKey][]*models.TrackedPrediction{}
	order := []dayKey{}
	for _, p := range pending {
		k := dayKey{sport: p.Sport, day: p.GameDate.UTC().Format("2006-01-02")}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], p)
	}

	var unmatched []*models.TrackedPrediction
	for i, k := range order {
		if i > 0 {
			s.courtesyDelay()
		}
		day, _ := time.Parse("2006-01-02", k.day)
		completed, err := s.scores.FetchCompletedGames(ctx, k.sport, day)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("scores fetch %s/%s: %v", k.sport, k.day, err))
			unmatched = append(unmatched, groups[k]...)
			continue
		}

		byID := make(map[string]datasource.CompletedGame, len(completed))
		for _, g := range completed {
			byID[g.GameID] = g
		}

		for _, p := range groups[k] {
			game, ok := byID[p.GameID]
			if !ok {
				unmatched = append(unmatched, p)
				continue
			}
			if s.record(ctx, p, game, "exact_id", result) {
				result.Matched++
			}
		}
	}
	return unmatched
}

// matchByTeamNames is the fallback path: fetch closed games by date and match
// on fuzzy team-name equivalence, scanning the game day plus one day either
// side to absorb timezone drift between the feed and the stored game date.
func (s *Synchronizer) matchByTeamNames(ctx context.Context, pending []*models.TrackedPrediction, result *SyncResult) {
	oldest := startOfUTCDay(s.now()).AddDate(0, 0, -s.cfg.LookbackDays)
	fetched := map[dayKey][]datasource.CompletedGame{}

	for _, p := range pending {
		gameDay := startOfUTCDay(p.GameDate)
		var candidates []datasource.CompletedGame
		for _, offset := range []int{0, -1, 1} {
			day := gameDay.AddDate(0, 0, offset)
			if day.Before(oldest) {
				continue
			}
			k := dayKey{sport: p.Sport, day: day.Format("2006-01-02")}
			games, ok := fetched[k]
			if !ok {
				if len(fetched) > 0 {
					s.courtesyDelay()
				}
				var err error
				games, err = s.games.FetchGamesByDate(ctx, p.Sport, day)
				if err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("games fetch %s/%s: %v", k.sport, k.day, err))
					games = nil
				}
				fetched[k] = games
			}
			candidates = append(candidates, games...)
		}

		game, found := bestTeamNameMatch(p, candidates)
		if !found {
			s.logger.WithFields(logrus.Fields{
				"game_id": p.GameID,
				"home":    p.HomeTeam,
				"away":    p.AwayTeam,
			}).Warn("No outcome found for pending prediction")
			continue
		}
		if s.record(ctx, p, game, "team_names", result) {
			result.Matched++
		}
	}
}

// bestTeamNameMatch requires both sides to pass the equivalence rules; among
// multiple passing candidates the highest combined similarity wins.
func bestTeamNameMatch(p *models.TrackedPrediction, candidates []datasource.CompletedGame) (datasource.CompletedGame, bool) {
	var best datasource.CompletedGame
	bestScore := -1.0
	for _, g := range candidates {
		if !matching.EquivalentTeamNames(p.HomeTeam, g.HomeTeam) ||
			!matching.EquivalentTeamNames(p.AwayTeam, g.AwayTeam) {
			continue
		}
		score := matching.Similarity(p.HomeTeam, g.HomeTeam) + matching.Similarity(p.AwayTeam, g.AwayTeam)
		if score > bestScore {
			bestScore = score
			best = g
		}
	}
	return best, bestScore >= 0
}

// record attaches the outcome. ErrAlreadyValidated means a concurrent or
// earlier run settled this prediction; that is the idempotence guarantee
// working, not a failure.
func (s *Synchronizer) record(ctx context.Context, p *models.TrackedPrediction, game datasource.CompletedGame, method string, result *SyncResult) bool {
	outcome := models.NewActualOutcome(game.HomeScore, game.AwayScore, s.now().UTC())
	err := s.repo.RecordOutcome(ctx, p.ID, outcome)
	if errors.Is(err, models.ErrAlreadyValidated) {
		return false
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("record outcome %s: %v", p.GameID, err))
		return false
	}
	s.audit.LogOutcomeRecorded(p.ID.String(), p.GameID, game.HomeScore, game.AwayScore, method, outcome.RecordedAt)
	return true
}

// train refits calibration on the validated history. An insufficient-sample
// fit is a quiet skip; a diverged fit keeps the current params and is logged
// to the audit trail.
func (s *Synchronizer) train(ctx context.Context, result *SyncResult) {
	validated, err := s.repo.ListValidated(ctx, s.cfg.TrainingSampleLimit)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list validated: %v", err))
		return
	}

	samples := make([]calibration.Sample, 0, len(validated))
	for _, p := range validated {
		if p.Outcome == nil || p.Outcome.Winner == "tie" {
			continue
		}
		samples = append(samples, calibration.Sample{
			RawProb: p.Prediction.RawHomeWinProb,
			HomeWon: p.Outcome.Winner == "home",
		})
	}

	params, err := s.fitter.Fit(samples)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientSamples) {
			s.logger.WithField("samples", len(samples)).Debug("Not enough validated outcomes to retrain")
			return
		}
		result.Errors = append(result.Errors, fmt.Sprintf("calibration fit: %v", err))
		s.audit.LogCalibrationFallback(err.Error(), len(samples))
		return
	}

	old := s.calStore.Active()
	if err := s.calStore.Replace(ctx, params); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("persist calibration: %v", err))
		return
	}
	s.audit.LogCalibrationReplaced(old.A, old.B, params.A, params.B, params.SampleCount)
	result.Trained = true
}

func (s *Synchronizer) courtesyDelay() {
	if s.cfg.InterCallDelayMS > 0 {
		s.sleep(time.Duration(s.cfg.InterCallDelayMS) * time.Millisecond)
	}
}

func startOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
