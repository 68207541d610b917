// Package feedback analyzes against-the-spread performance of validated
// predictions and produces rule-based tuning recommendations.
package feedback

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/config"
	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

// BetResult classifies one ATS bet.
type BetResult string

// Possible bet results.
const (
	ResultWin  BetResult = "win"
	ResultLoss BetResult = "loss"
	ResultPush BetResult = "push"
)

// Segment dimensions.
const (
	DimSport        = "sport"
	DimFavoriteSide = "favorite_side"
	DimSpreadBucket = "spread_bucket"
	DimTotalBucket  = "total_bucket"
	DimConfidence   = "confidence_band"
)

// Tally is a win/loss/push count with net units at fixed juice.
type Tally struct {
	Wins     int             `json:"wins"`
	Losses   int             `json:"losses"`
	Pushes   int             `json:"pushes"`
	NetUnits decimal.Decimal `json:"net_units"`
}

// Decided is the number of non-push bets.
func (t Tally) Decided() int { return t.Wins + t.Losses }

// WinRate is wins over decided bets; 0 with no decided bets.
func (t Tally) WinRate() float64 {
	if t.Decided() == 0 {
		return 0
	}
	return float64(t.Wins) / float64(t.Decided())
}

// FeatureCorrelation reports how one model feature relates to ATS success.
// Pushes are excluded from both the median split and the Pearson coefficient.
type FeatureCorrelation struct {
	Feature      string  `json:"feature"`
	Median       float64 `json:"median"`
	WinRateAbove float64 `json:"win_rate_above_median"`
	WinRateBelow float64 `json:"win_rate_below_median"`
	Pearson      float64 `json:"pearson"`
}

// SegmentStats is the tally for one segment of one dimension.
type SegmentStats struct {
	Dimension string `json:"dimension"`
	Segment   string `json:"segment"`
	Tally
}

// BiasEntry ranks a segment by win rate with its weighted contribution to the
// overall record (win-rate delta times sample share).
type BiasEntry struct {
	Dimension    string  `json:"dimension"`
	Segment      string  `json:"segment"`
	Decided      int     `json:"decided"`
	WinRate      float64 `json:"win_rate"`
	Contribution float64 `json:"contribution"`
}

// Report is the full ATS feedback report.
type Report struct {
	Overall         Tally                `json:"overall"`
	Features        []FeatureCorrelation `json:"features"`
	Segments        []SegmentStats       `json:"segments"`
	BiasTable       []BiasEntry          `json:"bias_table"`
	Recommendations []Recommendation     `json:"recommendations"`
	ExaminedGames   int                  `json:"examined_games"`
	SkippedNoLine   int                  `json:"skipped_no_line"`
}

// atsBet is one graded against-the-spread bet.
type atsBet struct {
	example     models.TrainingExample
	result      BetResult
	coverMargin float64
	pickedHome  bool
	onFavorite  bool
}

// Analyzer grades the validated history against the closing spread and
// derives the feedback report.
type Analyzer struct {
	cfg    config.FeedbackConfig
	logger *logrus.Logger
}

// NewAnalyzer creates a feedback analyzer.
func NewAnalyzer(cfg config.FeedbackConfig, logger *logrus.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, logger: logger}
}

// Analyze grades every example that carries a market spread and builds the
// report. Examples without a known closing line are counted and skipped.
func (a *Analyzer) Analyze(examples []models.TrainingExample) *Report {
	report := &Report{ExaminedGames: len(examples)}

	bets := make([]atsBet, 0, len(examples))
	for _, ex := range examples {
		if ex.MarketSpread == nil {
			report.SkippedNoLine++
			continue
		}
		bets = append(bets, a.grade(ex))
	}

	for _, b := range bets {
		a.addToTally(&report.Overall, b)
	}
	report.Features = a.featureCorrelations(bets)
	report.Segments = a.segment(bets)
	report.BiasTable = biasTable(report.Segments, report.Overall)
	report.Recommendations = a.recommend(report.Segments)

	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			"bets":            len(bets),
			"wins":            report.Overall.Wins,
			"losses":          report.Overall.Losses,
			"pushes":          report.Overall.Pushes,
			"net_units":       report.Overall.NetUnits.String(),
			"recommendations": len(report.Recommendations),
		}).Info("Feedback report generated")
	}
	return report
}

// grade picks the side the model disagrees with the market on and settles it
// against the actual margin. The cover margin is from the picked side's
// perspective, so a positive margin always means the bet cashed.
func (a *Analyzer) grade(ex models.TrainingExample) atsBet {
	marketSpread := *ex.MarketSpread
	pickedHome := ex.PredictedSpread > marketSpread
	homeFavored := marketSpread > 0

	coverMargin := ex.ActualSpread() - marketSpread
	if !pickedHome {
		coverMargin = -coverMargin
	}

	b := atsBet{
		example:     ex,
		coverMargin: coverMargin,
		pickedHome:  pickedHome,
		onFavorite:  pickedHome == homeFavored,
	}
	switch {
	case math.Abs(coverMargin) < a.cfg.PushThreshold:
		b.result = ResultPush
	case coverMargin > 0:
		b.result = ResultWin
	default:
		b.result = ResultLoss
	}
	return b
}

func (a *Analyzer) addToTally(t *Tally, b atsBet) {
	switch b.result {
	case ResultWin:
		t.Wins++
		t.NetUnits = t.NetUnits.Add(decimal.NewFromFloat(a.cfg.WinPayout))
	case ResultLoss:
		t.Losses++
		t.NetUnits = t.NetUnits.Sub(decimal.NewFromInt(1))
	case ResultPush:
		t.Pushes++
	}
}

// featureExtractors maps report feature names to the model inputs they read.
var featureExtractors = []struct {
	name    string
	extract func(models.TrainingExample) float64
}{
	{"net_rating_diff", func(e models.TrainingExample) float64 {
		return e.HomeAnalytics.NetRating - e.AwayAnalytics.NetRating
	}},
	{"momentum_diff", func(e models.TrainingExample) float64 {
		return e.HomeAnalytics.Momentum - e.AwayAnalytics.Momentum
	}},
	{"shooting_diff", func(e models.TrainingExample) float64 {
		return e.HomeAnalytics.ShootingEfficiency - e.AwayAnalytics.ShootingEfficiency
	}},
	{"avg_consistency", func(e models.TrainingExample) float64 {
		return (e.HomeAnalytics.Consistency + e.AwayAnalytics.Consistency) / 2
	}},
	{"confidence", func(e models.TrainingExample) float64 { return e.Confidence }},
	{"raw_home_win_prob", func(e models.TrainingExample) float64 { return e.RawHomeWinProb }},
	{"predicted_spread_abs", func(e models.TrainingExample) float64 {
		return math.Abs(e.PredictedSpread)
	}},
}

func (a *Analyzer) featureCorrelations(bets []atsBet) []FeatureCorrelation {
	decided := make([]atsBet, 0, len(bets))
	for _, b := range bets {
		if b.result != ResultPush {
			decided = append(decided, b)
		}
	}
	if len(decided) == 0 {
		return nil
	}

	out := make([]FeatureCorrelation, 0, len(featureExtractors))
	for _, fe := range featureExtractors {
		values := make([]float64, len(decided))
		outcomes := make([]float64, len(decided))
		for i, b := range decided {
			values[i] = fe.extract(b.example)
			if b.result == ResultWin {
				outcomes[i] = 1
			}
		}

		med := median(values)
		var aboveW, aboveN, belowW, belowN float64
		for i, v := range values {
			if v > med {
				aboveN++
				aboveW += outcomes[i]
			} else {
				belowN++
				belowW += outcomes[i]
			}
		}

		fc := FeatureCorrelation{
			Feature: fe.name,
			Median:  med,
			Pearson: pearson(values, outcomes),
		}
		if aboveN > 0 {
			fc.WinRateAbove = aboveW / aboveN
		}
		if belowN > 0 {
			fc.WinRateBelow = belowW / belowN
		}
		out = append(out, fc)
	}
	return out
}

// segment tallies bets along every dimension. Total buckets come from sample
// terciles of the market total so the bucketing works across sports with
// different scoring scales.
func (a *Analyzer) segment(bets []atsBet) []SegmentStats {
	lowCut, highCut := totalTerciles(bets)

	tallies := map[[2]string]*Tally{}
	order := [][2]string{}
	add := func(dim, seg string, b atsBet) {
		key := [2]string{dim, seg}
		t, ok := tallies[key]
		if !ok {
			t = &Tally{}
			tallies[key] = t
			order = append(order, key)
		}
		a.addToTally(t, b)
	}

	for _, b := range bets {
		add(DimSport, b.example.Sport, b)

		if b.onFavorite {
			add(DimFavoriteSide, "favorite", b)
		} else {
			add(DimFavoriteSide, "underdog", b)
		}

		add(DimSpreadBucket, spreadBucket(math.Abs(*b.example.MarketSpread)), b)

		if b.example.MarketTotal != nil {
			add(DimTotalBucket, totalBucket(*b.example.MarketTotal, lowCut, highCut), b)
		}

		add(DimConfidence, confidenceBand(b.example.Confidence), b)
	}

	out := make([]SegmentStats, 0, len(order))
	for _, key := range order {
		out = append(out, SegmentStats{Dimension: key[0], Segment: key[1], Tally: *tallies[key]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dimension != out[j].Dimension {
			return out[i].Dimension < out[j].Dimension
		}
		return out[i].Segment < out[j].Segment
	})
	return out
}

func spreadBucket(absSpread float64) string {
	switch {
	case absSpread < 3:
		return "close"
	case absSpread < 7:
		return "moderate"
	default:
		return "large"
	}
}

func confidenceBand(confidence float64) string {
	switch {
	case confidence >= 80:
		return "high"
	case confidence >= 70:
		return "medium"
	default:
		return "low"
	}
}

func totalBucket(total, lowCut, highCut float64) string {
	switch {
	case total <= lowCut:
		return "low"
	case total >= highCut:
		return "high"
	default:
		return "medium"
	}
}

func totalTerciles(bets []atsBet) (float64, float64) {
	totals := []float64{}
	for _, b := range bets {
		if b.example.MarketTotal != nil {
			totals = append(totals, *b.example.MarketTotal)
		}
	}
	if len(totals) == 0 {
		return 0, 0
	}
	sort.Float64s(totals)
	return totals[len(totals)/3], totals[len(totals)*2/3]
}

// biasTable ranks segments by win rate; contribution weights each segment's
// win-rate delta by its share of the decided sample.
func biasTable(segments []SegmentStats, overall Tally) []BiasEntry {
	totalDecided := overall.Decided()
	if totalDecided == 0 {
		return nil
	}
	out := make([]BiasEntry, 0, len(segments))
	for _, s := range segments {
		if s.Decided() == 0 {
			continue
		}
		out = append(out, BiasEntry{
			Dimension:    s.Dimension,
			Segment:      s.Segment,
			Decided:      s.Decided(),
			WinRate:      s.WinRate(),
			Contribution: (s.WinRate() - overall.WinRate()) * float64(s.Decided()) / float64(totalDecided),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WinRate > out[j].WinRate })
	return out
}

func median(values []float64) float64 {
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
