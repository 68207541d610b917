package prediction

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/eberleben15/TheOddsOracle-sub001/internal/models"
)

// FindValueBets compares the model's probabilities against the market odds
// snapshot and flags every market where the model edge exceeds the configured
// threshold (probability points). The calibrated win probability is used for
// the moneyline; spread and total cover probabilities come from a normal
// approximation around the predicted numbers.
func (p *Predictor) FindValueBets(pred models.MatchupPrediction, odds models.OddsSnapshot) []models.ValueBet {
	var bets []models.ValueBet

	for _, market := range []models.BetMarket{models.BetMoneyline, models.BetSpread, models.BetTotal} {
		switch market {
		case models.BetMoneyline:
			bets = append(bets, p.moneylineValue(pred, odds)...)
		case models.BetSpread:
			bets = append(bets, p.spreadValue(pred, odds)...)
		case models.BetTotal:
			bets = append(bets, p.totalValue(pred, odds)...)
		}
	}
	return bets
}

func (p *Predictor) moneylineValue(pred models.MatchupPrediction, odds models.OddsSnapshot) []models.ValueBet {
	var bets []models.ValueBet
	sides := []struct {
		side      string
		modelProb float64
		price     decimal.Decimal
	}{
		{"home", pred.WinProbability.Home, odds.MoneylineHome},
		{"away", pred.WinProbability.Away, odds.MoneylineAway},
	}
	for _, s := range sides {
		if s.price.IsZero() {
			continue
		}
		marketProb := impliedProbability(s.price)
		if edge := s.modelProb - marketProb; edge > p.weights.MoneylineEdge {
			bets = append(bets, models.ValueBet{
				Market:     models.BetMoneyline,
				Side:       s.side,
				Price:      s.price,
				ModelProb:  s.modelProb,
				MarketProb: marketProb,
				Edge:       edge,
			})
		}
	}
	return bets
}

func (p *Predictor) spreadValue(pred models.MatchupPrediction, odds models.OddsSnapshot) []models.ValueBet {
	if odds.SpreadLine.IsZero() && odds.SpreadPrice.IsZero() {
		return nil
	}
	line, _ := odds.SpreadLine.Float64()
	marketProb := impliedProbability(odds.SpreadPrice)
	if marketProb == 0 {
		marketProb = 0.5238 // standard -110 juice when the book omits a price
	}

	// Probability the home side beats the line, from a normal approximation
	// around the predicted spread.
	coverProb := normalCDF((pred.PredictedSpread - line) / p.weights.SpreadSigma)

	var bets []models.ValueBet
	if edge := coverProb - marketProb; edge > p.weights.SpreadEdge {
		bets = append(bets, models.ValueBet{
			Market:     models.BetSpread,
			Side:       "home",
			Line:       odds.SpreadLine,
			Price:      odds.SpreadPrice,
			ModelProb:  coverProb,
			MarketProb: marketProb,
			Edge:       edge,
		})
	}
	if edge := (1 - coverProb) - marketProb; edge > p.weights.SpreadEdge {
		bets = append(bets, models.ValueBet{
			Market:     models.BetSpread,
			Side:       "away",
			Line:       odds.SpreadLine.Neg(),
			Price:      odds.SpreadPrice,
			ModelProb:  1 - coverProb,
			MarketProb: marketProb,
			Edge:       edge,
		})
	}
	return bets
}

func (p *Predictor) totalValue(pred models.MatchupPrediction, odds models.OddsSnapshot) []models.ValueBet {
	if odds.TotalLine.IsZero() {
		return nil
	}
	line, _ := odds.TotalLine.Float64()
	marketProb := impliedProbability(odds.TotalPrice)
	if marketProb == 0 {
		marketProb = 0.5238
	}

	overProb := normalCDF((pred.PredictedTotal - line) / p.weights.TotalSigma)

	var bets []models.ValueBet
	if edge := overProb - marketProb; edge > p.weights.SpreadEdge {
		bets = append(bets, models.ValueBet{
			Market:     models.BetTotal,
			Side:       "over",
			Line:       odds.TotalLine,
			Price:      odds.TotalPrice,
			ModelProb:  overProb,
			MarketProb: marketProb,
			Edge:       edge,
		})
	}
	if edge := (1 - overProb) - marketProb; edge > p.weights.SpreadEdge {
		bets = append(bets, models.ValueBet{
			Market:     models.BetTotal,
			Side:       "under",
			Line:       odds.TotalLine,
			Price:      odds.TotalPrice,
			ModelProb:  1 - overProb,
			MarketProb: marketProb,
			Edge:       edge,
		})
	}
	return bets
}

// impliedProbability converts American odds to the market-implied win
// probability, vig included.
func impliedProbability(price decimal.Decimal) float64 {
	american, _ := price.Float64()
	if american == 0 {
		return 0
	}
	if american > 0 {
		return 100 / (american + 100)
	}
	return -american / (-american + 100)
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}
