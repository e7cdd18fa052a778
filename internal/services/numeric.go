package services

import (
	"context"
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/epeers/pmscockpit/internal/models"
	"github.com/shopspring/decimal"
)

// Thresholds shared by the allocator and the bridge.
const (
	minTicketUSD     = 1000.0 // smallest equity order worth sending
	residualSweepUSD = 1000.0 // residual above this is swept onto existing orders
	minFXTicketUSD   = 100.0  // smallest FX hedge worth sending
	activeBandBps    = 10.0   // |diffBps| at or above this is an active candidate
	bridgeNoiseUSD   = 100.0  // bridge lines at or below this are hidden
)

// safeNum coerces NaN and ±Inf to zero.
func safeNum(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// fxRate returns the USD value of one unit of ccy. Unmapped or zero rates
// read as 1.0 so downstream sums stay defined.
func fxRate(rates models.FXRates, ccy models.Currency) float64 {
	r := safeNum(rates[ccy])
	if r == 0 {
		return 1
	}
	return r
}

// navOrOne guards every division by NAV.
func navOrOne(nav float64) float64 {
	n := safeNum(nav)
	if n == 0 {
		return 1
	}
	return n
}

// roundN rounds half away from zero to n decimal places.
func roundN(f float64, n int) float64 {
	d := decimal.NewFromFloat(safeNum(f))
	d = d.Round(int32(n))
	v, _ := d.Float64()
	return v
}

// wholeLots is floor(amount / price) computed in decimal so exact multiples
// are not lost to binary rounding. Non-positive prices yield zero.
func wholeLots(amount, price float64) float64 {
	amount, price = safeNum(amount), safeNum(price)
	if price <= 0 || amount <= 0 {
		return 0
	}
	q := decimal.NewFromFloat(amount).Div(decimal.NewFromFloat(price)).Floor()
	v, _ := q.Float64()
	return v
}

// formatMoney renders amount with the currency's symbol and grouping.
func formatMoney(amount float64, ccy models.Currency) string {
	// money.New never returns a nil currency
	cur := *money.New(0, string(ccy)).Currency()
	dec := decimal.NewFromFloat(safeNum(amount)).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(dec.IntPart())
}

// formatMillions renders a USD amount as "1.23M".
func formatMillions(usd float64) string {
	return fmt.Sprintf("%.2fM", safeNum(usd)/1e6)
}

// rateFor is fxRate with a W2001 warning when the table has no usable entry.
func rateFor(ctx context.Context, rates models.FXRates, ccy models.Currency) float64 {
	if ccy != models.BaseCurrency && safeNum(rates[ccy]) == 0 {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnUnmappedCurrency,
			Message: fmt.Sprintf("no FX rate for %s, using 1.0", ccy),
		})
	}
	return fxRate(rates, ccy)
}
