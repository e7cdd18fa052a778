package services

import (
	"math"

	"github.com/epeers/pmscockpit/internal/models"
)

// defaultSettlement is used when a trade or order carries no usable horizon.
const defaultSettlement = models.HorizonT2

func settlementOrDefault(h models.Horizon) models.Horizon {
	if h.Valid() {
		return h
	}
	return defaultSettlement
}

// propagate applies amount to column from and every later column. Earlier
// columns are never touched: once settled, cash stays settled.
func propagate(b *models.CashBucket, from models.Horizon, amount float64) {
	started := false
	for _, h := range models.Horizons {
		if h == from {
			started = true
		}
		if started {
			b.Add(h, amount)
		}
	}
}

// syncTotals re-derives Total and EquivUSD from the terminal column.
func syncTotals(b *models.CashBucket, rates models.FXRates) {
	b.Total = b.At(models.TerminalHorizon)
	b.EquivUSD = b.Total * fxRate(rates, b.Currency)
}

func cloneBuckets(base []models.CashBucket) []models.CashBucket {
	out := make([]models.CashBucket, len(base))
	for i, b := range base {
		out[i] = models.CashBucket{
			Currency: b.Currency,
			T:        safeNum(b.T),
			T1:       safeNum(b.T1),
			T2:       safeNum(b.T2),
			T3:       safeNum(b.T3),
			T5:       safeNum(b.T5),
		}
	}
	return out
}

// bucketFor returns the bucket for ccy, appending an empty one if absent.
func bucketFor(buckets *[]models.CashBucket, ccy models.Currency) *models.CashBucket {
	for i := range *buckets {
		if (*buckets)[i].Currency == ccy {
			return &(*buckets)[i]
		}
	}
	*buckets = append(*buckets, models.CashBucket{Currency: ccy})
	return &(*buckets)[len(*buckets)-1]
}

// CumulativeCashAtHorizon reads column h of every bucket, converts to USD and
// sums. Columns are already cumulative, so nothing is summed across horizons.
// An invalid horizon reads T2.
func CumulativeCashAtHorizon(buckets []models.CashBucket, h models.Horizon, rates models.FXRates) float64 {
	h = settlementOrDefault(h)
	total := 0.0
	for _, b := range buckets {
		total += safeNum(b.At(h)) * fxRate(rates, b.Currency)
	}
	return total
}

// CashAtBucket returns the local amount of ccy at h, zero when ccy has no bucket.
func CashAtBucket(buckets []models.CashBucket, ccy models.Currency, h models.Horizon) float64 {
	for _, b := range buckets {
		if b.Currency == ccy {
			return safeNum(b.At(h))
		}
	}
	return 0
}

// TotalCashUSD is the settled (T column) cash across currencies in USD.
func TotalCashUSD(buckets []models.CashBucket, rates models.FXRates) float64 {
	return CumulativeCashAtHorizon(buckets, models.HorizonT, rates)
}

// ApplyPendingFX layers every Pending FX trade onto a copy of base. The sell
// leg is debited and the buy leg credited from the trade's settlement bucket
// onward. base is not modified.
func ApplyPendingFX(base []models.CashBucket, trades []models.FXTrade, rates models.FXRates) []models.CashBucket {
	buckets := cloneBuckets(base)
	for _, t := range trades {
		if t.Status != models.FXStatusPending {
			continue
		}
		from := settlementOrDefault(t.SettlementBucket)
		propagate(bucketFor(&buckets, t.SellCcy), from, -safeNum(t.SellAmt))
		propagate(bucketFor(&buckets, t.BuyCcy), from, safeNum(t.BuyAmt))
	}
	for i := range buckets {
		syncTotals(&buckets[i], rates)
	}
	return buckets
}

// basketIsLive reports whether a basket still moves cash: not yet filled or
// settled, and not cancelled.
func basketIsLive(b models.Basket) bool {
	if b.OrderState == models.StateFilled || b.OrderState == models.StateSettled {
		return false
	}
	return b.Status != models.OrderCancelled && b.Status != models.OrderFilled
}

// equityOrderIsLive excludes do-not-trade, cancelled and FX orders.
func equityOrderIsLive(o models.Order) bool {
	return !o.DoNotTrade && o.Status != models.OrderCancelled && o.Type != models.OrderTypeFX
}

// ApplyPendingEquity layers live equity orders onto a copy of base. Buys
// reduce cash and sells increase it, in the order's currency from its
// settlement bucket onward. base is not modified.
func ApplyPendingEquity(base []models.CashBucket, baskets []models.Basket, rates models.FXRates) []models.CashBucket {
	buckets := cloneBuckets(base)
	for _, bk := range baskets {
		if !basketIsLive(bk) {
			continue
		}
		for _, o := range bk.Orders {
			if !equityOrderIsLive(o) {
				continue
			}
			ccy := o.Currency
			if ccy == "" {
				ccy = models.BaseCurrency
			}
			local := safeNum(o.NotionalUSD) / fxRate(rates, ccy)
			if o.Side == models.SideBuy {
				local = -local
			}
			propagate(bucketFor(&buckets, ccy), settlementOrDefault(o.SettlementBucket), local)
		}
	}
	for i := range buckets {
		syncTotals(&buckets[i], rates)
	}
	return buckets
}

// EffectiveLadder is base with pending FX then pending equity applied.
func EffectiveLadder(base []models.CashBucket, trades []models.FXTrade, baskets []models.Basket, rates models.FXRates) []models.CashBucket {
	return ApplyPendingEquity(ApplyPendingFX(base, trades, rates), baskets, rates)
}

// InvestableCash is available cash above the target buffer. targetCashPct is
// a percentage of NAV. Never negative.
func InvestableCash(availableCash, targetCashPct, navUSD float64) float64 {
	target := safeNum(targetCashPct) / 100 * safeNum(navUSD)
	return math.Max(0, safeNum(availableCash)-target)
}

// ProjectCash combines base cash at h with net pending equity and FX flows.
// FX is netted only against USD legs. Routed status wins over pending and
// projected.
func ProjectCash(p models.Portfolio, baskets []models.Basket, trades []models.FXTrade, rates models.FXRates, h models.Horizon) models.CashProjection {
	h = settlementOrDefault(h)
	nav := navOrOne(p.NavUSD)

	available := CumulativeCashAtHorizon(p.CashBuckets, h, rates)

	var buys, sells float64
	for _, bk := range baskets {
		if !basketIsLive(bk) {
			continue
		}
		for _, o := range bk.Orders {
			if !equityOrderIsLive(o) {
				continue
			}
			if o.Side == models.SideBuy {
				buys += safeNum(o.NotionalUSD)
			} else {
				sells += safeNum(o.NotionalUSD)
			}
		}
	}

	fxNet := 0.0
	for _, t := range trades {
		if t.Status != models.FXStatusPending {
			continue
		}
		if t.BuyCcy == models.BaseCurrency {
			fxNet += safeNum(t.BuyAmt)
		} else if t.SellCcy == models.BaseCurrency {
			fxNet -= safeNum(t.SellAmt)
		}
	}

	projected := available - buys + sells + fxNet

	return models.CashProjection{
		Horizon:          h,
		AvailableCashUSD: available,
		AvailableCashPct: available / nav * 100,
		PendingBuysUSD:   buys,
		PendingSellsUSD:  sells,
		PendingFXNetUSD:  fxNet,
		ProjectedCashUSD: projected,
		ProjectedCashPct: projected / nav * 100,
		Status:           projectionStatus(baskets, buys, sells),
	}
}

func projectionStatus(baskets []models.Basket, buys, sells float64) models.ProjectionStatus {
	var routed, staged bool
	for _, b := range baskets {
		if b.OrderState == models.StateRouted || b.Status == models.OrderRouted || b.Status == models.OrderPartialFill {
			routed = true
		}
		if b.OrderState == models.StateProjected || b.Status == models.OrderPending {
			staged = true
		}
	}
	switch {
	case routed:
		return models.ProjectionRouted
	case staged && (buys > 0 || sells > 0):
		return models.ProjectionPending
	case staged:
		return models.ProjectionProjected
	}
	return models.ProjectionCurrent
}
