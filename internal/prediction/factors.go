package prediction

import (
	"fmt"
	"math"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

// keyFactors renders natural-language explanations for every contributing
// factor whose magnitude clears its significance threshold.
func (p *Predictor) keyFactors(home, away models.TeamAnalytics, netTerm, momentumTerm float64) []string {
	var factors []string

	if math.Abs(netTerm) > p.weights.NetRatingFactorThreshold {
		leader, trailer := home, away
		if netTerm < 0 {
			leader, trailer = away, home
		}
		factors = append(factors, fmt.Sprintf(
			"%s holds a significant net-rating edge over %s (%+.1f vs %+.1f)",
			leader.TeamName, trailer.TeamName, leader.NetRating, trailer.NetRating))
	}

	if math.Abs(momentumTerm) > p.weights.MomentumFactorThreshold {
		leader := home
		if momentumTerm < 0 {
			leader = away
		}
		factors = append(factors, fmt.Sprintf(
			"%s comes in hot (momentum %+.0f, last 5: %s)",
			leader.TeamName, leader.Momentum, leader.LastFiveRecord))
	}

	shootingGap := home.ShootingEfficiency - away.ShootingEfficiency
	if math.Abs(shootingGap) > p.weights.ShootingGapThreshold {
		leader := home
		if shootingGap < 0 {
			leader = away
		}
		factors = append(factors, fmt.Sprintf(
			"%s shoots well above the opposition (efficiency gap %.1f)",
			leader.TeamName, math.Abs(shootingGap)))
	}

	if home.HomeCourtBonus > 0 {
		factors = append(factors, fmt.Sprintf(
			"%s gets a %.1f-point home advantage", home.TeamName, home.HomeCourtBonus))
	}

	return factors
}
