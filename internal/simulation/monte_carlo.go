package simulation

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

// Config configures one Monte Carlo run.
type Config struct {
	Iterations int
	// Seed selects a deterministic generator; 0 means seed from the clock.
	Seed       int64
	ScoreFloor float64
	// ScoreCeiling bounds each drawn score; required > 0.
	ScoreCeiling float64
	Bands        models.ScoreBands
}

// Distribution summarizes one simulated quantity over all iterations.
type Distribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

// ConfidenceInterval is the central 80% band (p10-p90).
type ConfidenceInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Result is the full output of a simulation run.
type Result struct {
	Iterations         int                           `json:"iterations"`
	Seed               int64                         `json:"seed"`
	HomeScore          Distribution                  `json:"home_score"`
	AwayScore          Distribution                  `json:"away_score"`
	Spread             Distribution                  `json:"spread"`
	Total              Distribution                  `json:"total"`
	HomeWinProbability float64                       `json:"home_win_probability"`
	AwayWinProbability float64                       `json:"away_win_probability"`
	ConfidenceIntervals map[string]ConfidenceInterval `json:"confidence_intervals"`
}

// Run draws home and away scores independently from normal distributions
// centered at the predicted score, with standard deviation from the variance
// model (home looks up +spread, away the mirrored -spread). Draws are clamped
// to the sport's realistic score bounds; every statistic is computed on the
// clamped, sorted sample. With a non-zero seed the run is bit-for-bit
// reproducible.
func Run(pred models.MatchupPrediction, vm *models.VarianceModel, cfg Config) (*Result, error) {
	if vm == nil {
		return nil, fmt.Errorf("variance model is required")
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 10000
	}
	if cfg.ScoreCeiling <= cfg.ScoreFloor {
		return nil, fmt.Errorf("score ceiling %.1f must exceed floor %.1f", cfg.ScoreCeiling, cfg.ScoreFloor)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))

	homeSD := vm.StdDev(pred.PredictedSpread, pred.PredictedTotal, cfg.Bands)
	awaySD := vm.StdDev(-pred.PredictedSpread, pred.PredictedTotal, cfg.Bands)

	homeScores := make([]float64, cfg.Iterations)
	awayScores := make([]float64, cfg.Iterations)
	spreads := make([]float64, cfg.Iterations)
	totals := make([]float64, cfg.Iterations)

	homeWins := 0.0
	for i := 0; i < cfg.Iterations; i++ {
		home := clampScore(pred.PredictedScore.Home+rng.NormFloat64()*homeSD, cfg)
		away := clampScore(pred.PredictedScore.Away+rng.NormFloat64()*awaySD, cfg)
		homeScores[i] = home
		awayScores[i] = away
		spreads[i] = home - away
		totals[i] = home + away
		switch {
		case home > away:
			homeWins++
		case home == away:
			// Clamping can pin both sides to a bound; split ties evenly so the
			// two win probabilities still sum to 1.
			homeWins += 0.5
		}
	}

	result := &Result{
		Iterations:         cfg.Iterations,
		Seed:               seed,
		HomeScore:          summarize(homeScores),
		AwayScore:          summarize(awayScores),
		Spread:             summarize(spreads),
		Total:              summarize(totals),
		HomeWinProbability: homeWins / float64(cfg.Iterations),
	}
	result.AwayWinProbability = 1 - result.HomeWinProbability
	result.ConfidenceIntervals = map[string]ConfidenceInterval{
		"home_score": {Low: result.HomeScore.P10, High: result.HomeScore.P90},
		"away_score": {Low: result.AwayScore.P10, High: result.AwayScore.P90},
		"spread":     {Low: result.Spread.P10, High: result.Spread.P90},
		"total":      {Low: result.Total.P10, High: result.Total.P90},
	}

	return result, nil
}

func clampScore(v float64, cfg Config) float64 {
	// Scores are integers on the scoreboard; rounding before clamping keeps
	// the sample realistic.
	v = math.Round(v)
	return math.Min(math.Max(v, cfg.ScoreFloor), cfg.ScoreCeiling)
}

func summarize(values []float64) Distribution {
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)

	mean := 0.0
	for _, v := range sorted {
		mean += v
	}
	mean /= float64(len(sorted))

	variance := 0.0
	for _, v := range sorted {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(sorted))

	return Distribution{
		Mean:   mean,
		Median: percentile(sorted, 0.50),
		StdDev: math.Sqrt(variance),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		P10:    percentile(sorted, 0.10),
		P25:    percentile(sorted, 0.25),
		P75:    percentile(sorted, 0.75),
		P90:    percentile(sorted, 0.90),
	}
}

// percentile expects a sorted sample.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
