// Package analytics derives normalized team ratings, momentum, and
// consistency scores from raw season stats and recent games.
package analytics

import (
	"fmt"
	"math"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

const (
	momentumGames    = 5
	consistencyGames = 10
	// Fewer than this many recent games yields the neutral consistency score.
	minConsistencyGames = 3
	neutralConsistency  = 50.0
)

// Calculator converts TeamStats plus a recent-game window into TeamAnalytics.
// Baselines are per-sport league averages; a calculator is cheap and stateless
// so one is built per sport from config.
type Calculator struct {
	baselines config.SportBaselines
}

// NewCalculator creates a calculator for one sport's baselines.
func NewCalculator(baselines config.SportBaselines) *Calculator {
	return &Calculator{baselines: baselines}
}

// Calculate derives analytics for one team. Recent games must be ordered
// most-recent-first. Missing or empty recent games degrade to neutral
// momentum and consistency rather than failing the prediction.
func (c *Calculator) Calculate(stats models.TeamStats, recent []models.GameResult, isHome bool) models.TeamAnalytics {
	off := ratio(stats.PointsPerGame, c.baselines.AvgPointsPerGame) * 100
	def := ratio(stats.PointsAllowedPerGame, c.baselines.AvgPointsPerGame) * 100

	a := models.TeamAnalytics{
		TeamID:             stats.TeamID,
		TeamName:           stats.TeamName,
		OffensiveRating:    off,
		DefensiveRating:    def,
		NetRating:          off - def,
		Momentum:           momentum(recent),
		WinStreak:          winStreak(recent),
		RecentForm:         recentForm(recent, momentumGames),
		LastFiveRecord:     lastFiveRecord(recent),
		ShootingEfficiency: c.shootingEfficiency(stats),
		ReboundStrength:    ratio(stats.ReboundsPerGame, c.baselines.AvgRebounds) * 100,
		TurnoverControl:    turnoverControl(stats.TurnoversPerGame, c.baselines.AvgTurnovers),
		Consistency:        consistency(recent),
	}
	if isHome {
		a.HomeCourtBonus = c.baselines.HomeAdvantage
	}
	return a
}

// shootingEfficiency blends field-goal, three-point, and free-throw
// percentages (50/30/20) after normalizing each against its league baseline.
// Percentage inputs have already been normalized to the 0-100 scale by the
// models.Percentage boundary, so 0.472 and 47.2 produce identical output.
func (c *Calculator) shootingEfficiency(stats models.TeamStats) float64 {
	fg := ratio(stats.FieldGoalPct.Value(), c.baselines.AvgFieldGoalPct) * 100
	tp := ratio(stats.ThreePointPct.Value(), c.baselines.AvgThreePointPct) * 100
	ft := ratio(stats.FreeThrowPct.Value(), c.baselines.AvgFreeThrowPct) * 100

	weightSum := 0.0
	score := 0.0
	if fg > 0 {
		score += fg * 0.5
		weightSum += 0.5
	}
	if tp > 0 {
		score += tp * 0.3
		weightSum += 0.3
	}
	if ft > 0 {
		score += ft * 0.2
		weightSum += 0.2
	}
	if weightSum == 0 {
		return 100 // no shooting data at all, league average by definition
	}
	return score / weightSum
}

// momentum iterates the most recent games with linearly decaying weight
// (5/5 down to 1/5). Wins contribute +(20 + min(margin, 20))*weight, losses
// the negative. The sum is clamped to [-100, 100].
func momentum(recent []models.GameResult) float64 {
	if len(recent) == 0 {
		return 0
	}
	n := min(momentumGames, len(recent))
	sum := 0.0
	for i := 0; i < n; i++ {
		weight := float64(momentumGames-i) / float64(momentumGames)
		margin := math.Abs(float64(recent[i].Margin()))
		contribution := (20 + math.Min(margin, 20)) * weight
		if !recent[i].Won() {
			contribution = -contribution
		}
		sum += contribution
	}
	return clamp(sum, -100, 100)
}

// winStreak counts consecutive same-result games starting at the most recent.
// Losing streaks are negative.
func winStreak(recent []models.GameResult) int {
	if len(recent) == 0 {
		return 0
	}
	won := recent[0].Won()
	streak := 0
	for _, g := range recent {
		if g.Won() != won {
			break
		}
		streak++
	}
	if !won {
		streak = -streak
	}
	return streak
}

// recentForm encodes the last n results oldest-to-newest as W/L tokens.
func recentForm(recent []models.GameResult, n int) string {
	if len(recent) == 0 {
		return ""
	}
	if n > len(recent) {
		n = len(recent)
	}
	tokens := make([]byte, n)
	for i := 0; i < n; i++ {
		// recent is most-recent-first; the form string reads oldest to newest
		g := recent[n-1-i]
		if g.Won() {
			tokens[i] = 'W'
		} else {
			tokens[i] = 'L'
		}
	}
	return string(tokens)
}

// lastFiveRecord formats the win-loss record over the last five games.
func lastFiveRecord(recent []models.GameResult) string {
	n := min(momentumGames, len(recent))
	wins := 0
	for i := 0; i < n; i++ {
		if recent[i].Won() {
			wins++
		}
	}
	return fmt.Sprintf("%d-%d", wins, n-wins)
}

// consistency is the inverse of score-margin volatility over up to the last
// ten games: clamp(100 - stddev*5, 0, 100). Fewer than three games yields the
// neutral default.
func consistency(recent []models.GameResult) float64 {
	n := min(consistencyGames, len(recent))
	if n < minConsistencyGames {
		return neutralConsistency
	}
	margins := make([]float64, n)
	mean := 0.0
	for i := 0; i < n; i++ {
		margins[i] = math.Abs(float64(recent[i].Margin()))
		mean += margins[i]
	}
	mean /= float64(n)
	variance := 0.0
	for _, m := range margins {
		diff := m - mean
		variance += diff * diff
	}
	variance /= float64(n)
	return clamp(100-math.Sqrt(variance)*5, 0, 100)
}

func turnoverControl(perGame, leagueAvg float64) float64 {
	if perGame <= 0 || leagueAvg <= 0 {
		return 100
	}
	// Fewer turnovers than league average scores above 100.
	return leagueAvg / perGame * 100
}

func ratio(value, baseline float64) float64 {
	if baseline <= 0 || value <= 0 {
		return 0
	}
	return value / baseline
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
