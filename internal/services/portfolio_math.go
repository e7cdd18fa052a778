package services

import (
	"math"
	"time"

	"github.com/epeers/pmscockpit/internal/models"
)

// weightOf returns mv as a percentage of nav.
func weightOf(mv, nav float64) float64 {
	return safeNum(mv) / navOrOne(nav) * 100
}

// activeBps is the rounded active weight in basis points.
func activeBps(weight, indexWeight float64) float64 {
	return math.Round((safeNum(weight) - safeNum(indexWeight)) * 100)
}

// DerivePositions recomputes market value, weight and active weight for every
// position from quantity, price and the rate table. The input is not modified.
func DerivePositions(p models.Portfolio, rates models.FXRates) []models.Position {
	out := make([]models.Position, len(p.Positions))
	for i, pos := range p.Positions {
		pos.Quantity = safeNum(pos.Quantity)
		pos.Price = safeNum(pos.Price)
		pos.MarketValue = pos.Quantity * pos.Price * fxRate(rates, pos.Currency)
		pos.Weight = weightOf(pos.MarketValue, p.NavUSD)
		pos.DiffBps = activeBps(pos.Weight, pos.IndexWeight)
		out[i] = pos
	}
	return out
}

// PushToBook applies every break resolved accept_custodian to a copy of the
// book: positions take the custodian quantity, price and USD value, and an
// accepted cash break sets cash to the custodian figure. Active weights are
// recomputed for every position. It returns the new book and the number of
// accepted breaks applied.
func PushToBook(p models.Portfolio, r *models.NAVReconciliation, custodian []models.CustodianPosition, asOf time.Time) (models.Portfolio, int) {
	out := p
	out.Positions = append([]models.Position(nil), p.Positions...)

	custodianByTicker := make(map[string]models.CustodianPosition, len(custodian))
	for _, c := range custodian {
		custodianByTicker[c.Ticker] = c
	}

	applied := 0
	if r != nil {
		for _, b := range r.PositionBreaks {
			if b.Resolution != models.ResolutionAcceptCustodian {
				continue
			}
			c, ok := custodianByTicker[b.Ticker]
			if !ok {
				continue
			}
			for i := range out.Positions {
				if out.Positions[i].Ticker != b.Ticker {
					continue
				}
				out.Positions[i].Quantity = safeNum(c.Quantity)
				out.Positions[i].Price = safeNum(c.Price)
				out.Positions[i].MarketValue = safeNum(c.MarketValueUSD)
				out.Positions[i].Weight = weightOf(c.MarketValueUSD, p.NavUSD)
				applied++
			}
		}
		for _, b := range r.CashBreaks {
			if b.Resolution == models.ResolutionAcceptCustodian {
				out.CurrentCashUSD = b.CustodianCash
				applied++
			}
		}
	}

	for i := range out.Positions {
		out.Positions[i].DiffBps = activeBps(out.Positions[i].Weight, out.Positions[i].IndexWeight)
	}
	out.CurrentCashPct = weightOf(out.CurrentCashUSD, p.NavUSD)
	out.DataAsOf = asOf.UTC().Format(time.RFC3339)
	return out, applied
}
