package feedback

// RecommendationAction is the machine-readable action a rule proposes.
type RecommendationAction string

// Supported actions.
const (
	ActionDisable     RecommendationAction = "disable"
	ActionDownweight  RecommendationAction = "downweight"
	ActionRecalibrate RecommendationAction = "recalibrate"
	ActionInvestigate RecommendationAction = "investigate"
)

// Recommendation is one rule firing against one segment.
type Recommendation struct {
	Action    RecommendationAction `json:"action"`
	Dimension string               `json:"dimension"`
	Segment   string               `json:"segment"`
	Decided   int                  `json:"decided"`
	WinRate   float64              `json:"win_rate"`
	Reason    string               `json:"reason"`
}

// Rule thresholds. Win rates are fractions; minSegmentBets comes from config.
const (
	disableWinRate     = 0.35
	downweightWinRate  = 0.45
	investigateWinRate = 0.40
	confidenceGap      = 0.05
)

// recommend applies the rule set to the segment tallies. Every rule requires
// a minimum number of decided bets so thin segments never trigger actions.
func (a *Analyzer) recommend(segments []SegmentStats) []Recommendation {
	minBets := a.cfg.MinSegmentBets

	var recs []Recommendation
	var highConf, mediumConf *SegmentStats
	for i := range segments {
		s := &segments[i]
		if s.Dimension == DimConfidence {
			switch s.Segment {
			case "high":
				highConf = s
			case "medium":
				mediumConf = s
			}
		}

		if s.Decided() < minBets {
			continue
		}
		rate := s.WinRate()
		switch {
		case rate < disableWinRate:
			recs = append(recs, Recommendation{
				Action:    ActionDisable,
				Dimension: s.Dimension,
				Segment:   s.Segment,
				Decided:   s.Decided(),
				WinRate:   rate,
				Reason:    "win rate below 35% on a meaningful sample",
			})
		case rate < downweightWinRate:
			recs = append(recs, Recommendation{
				Action:    ActionDownweight,
				Dimension: s.Dimension,
				Segment:   s.Segment,
				Decided:   s.Decided(),
				WinRate:   rate,
				Reason:    "win rate between 35% and 45%",
			})
		}

		if (s.Dimension == DimSpreadBucket || s.Dimension == DimTotalBucket) && rate < investigateWinRate {
			recs = append(recs, Recommendation{
				Action:    ActionInvestigate,
				Dimension: s.Dimension,
				Segment:   s.Segment,
				Decided:   s.Decided(),
				WinRate:   rate,
				Reason:    "bucket win rate below 40%",
			})
		}
	}

	// Inverted-confidence signal: high-confidence picks should not lose to
	// medium-confidence picks.
	if highConf != nil && mediumConf != nil &&
		highConf.Decided() >= minBets && mediumConf.Decided() >= minBets &&
		mediumConf.WinRate()-highConf.WinRate() > confidenceGap {
		recs = append(recs, Recommendation{
			Action:    ActionRecalibrate,
			Dimension: DimConfidence,
			Segment:   "high",
			Decided:   highConf.Decided(),
			WinRate:   highConf.WinRate(),
			Reason:    "high-confidence picks underperform medium-confidence picks",
		})
	}
	return recs
}
