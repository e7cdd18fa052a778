package services

import (
	"context"
	"fmt"
	"math"

	"github.com/epeers/pmscockpit/internal/models"
)

// SnapshotWarnings reports the normalizations the engines will apply to p:
// unmapped currencies, a missing NAV and non-finite inputs.
func SnapshotWarnings(ctx context.Context, p models.Portfolio, rates models.FXRates) {
	if safeNum(p.NavUSD) == 0 {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnNAVDefaulted,
			Message: "portfolio NAV is zero or missing, percentages are computed against 1",
		})
	}
	for _, pos := range p.Positions {
		rateFor(ctx, rates, pos.Currency)
		warnNonFinite(ctx, pos.Quantity, pos.Ticker+" quantity")
		warnNonFinite(ctx, pos.Price, pos.Ticker+" price")
		warnNonFinite(ctx, pos.MarketValue, pos.Ticker+" market_value")
		warnNonFinite(ctx, pos.Weight, pos.Ticker+" weight")
		warnNonFinite(ctx, pos.IndexWeight, pos.Ticker+" index_weight")
	}
	for _, b := range p.CashBuckets {
		rateFor(ctx, rates, b.Currency)
		for _, h := range models.Horizons {
			warnNonFinite(ctx, b.At(h), fmt.Sprintf("%s cash %s", b.Currency, h))
		}
	}
}

func warnNonFinite(ctx context.Context, v float64, what string) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnNonFiniteValue,
			Message: fmt.Sprintf("%s is not a finite number, treated as 0", what),
		})
	}
}

// SanityChecks runs the consistency checks shown alongside a dashboard.
func SanityChecks(p models.Portfolio, ladder []models.CashBucket, available, investable float64) []models.SanityCheck {
	check := func(name, desc string, ok bool) models.SanityCheck {
		status := models.CheckPassed
		if !ok {
			status = models.CheckFailed
		}
		return models.SanityCheck{Name: name, Description: desc, Status: status}
	}

	finite := true
	weightSum := 0.0
	for _, pos := range p.Positions {
		for _, v := range []float64{pos.Quantity, pos.Price, pos.MarketValue, pos.Weight} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				finite = false
			}
		}
		weightSum += safeNum(pos.Weight)
	}

	nonNegative := true
	for _, b := range ladder {
		for _, h := range models.Horizons {
			if b.At(h) < 0 {
				nonNegative = false
			}
		}
	}

	return []models.SanityCheck{
		check("No NaN values", "All position values valid", finite),
		check("Weights sanity", "Weights + cash ≈ 100%", math.Abs(weightSum+safeNum(p.CurrentCashPct)-100) < 5),
		check("Cash ladder valid", "No negative buckets", nonNegative),
		check("Cash cap enforced", "Investable ≤ Available", investable <= available+1),
	}
}
