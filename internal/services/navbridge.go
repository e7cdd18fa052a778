package services

import (
	"context"
	"fmt"
	"math"

	"github.com/epeers/pmscockpit/internal/models"
)

// Card defaults used when the book does not carry its own figures.
const (
	defaultSharesOutstanding = 10_000_000.0
	defaultManagementFeeBps  = 25.0
	shadowFXMode             = "WMR 4pm London"
	shadowPricingSource      = "Internal EOD"
)

// ShadowNAV recomputes NAV from the internal book and bridges it to the
// administrator's figure. The bridge components always sum to DeltaUSD;
// lines within the noise band are hidden from BridgeItems but stay in the
// residual. The daily accrual line is always shown.
func ShadowNAV(ctx context.Context, p models.Portfolio, custodian models.CustodianFeed, rates models.FXRates) models.ShadowNAVCard {
	shares := safeNum(p.SharesOutstanding)
	if shares <= 0 {
		shares = defaultSharesOutstanding
	}
	feeBps := safeNum(p.ManagementFeeBps)
	if feeBps == 0 {
		feeBps = defaultManagementFeeBps
	}
	adminNAV := safeNum(p.AdminNAV)
	if adminNAV == 0 {
		adminNAV = safeNum(p.NavUSD)
	}
	adminAsOf := p.AdminNAVAsOf
	if adminAsOf == "" {
		adminAsOf = p.DataAsOf
	}

	positionsValue := 0.0
	for _, pos := range p.Positions {
		positionsValue += safeNum(pos.MarketValue)
	}
	cashValue := 0.0
	for _, b := range p.CashBuckets {
		cashValue += safeNum(b.T) * rateFor(ctx, rates, b.Currency)
	}
	shadow := positionsValue + cashValue

	delta := shadow - adminNAV
	accrual := shadow * feeBps / 10000 / 365

	custodianByTicker := make(map[string]models.CustodianPosition, len(custodian.Positions))
	for _, c := range custodian.Positions {
		custodianByTicker[c.Ticker] = c
	}

	var priceEffect, fxEffect float64
	for _, pos := range p.Positions {
		c, ok := custodianByTicker[pos.Ticker]
		if !ok {
			continue
		}
		qty, price := safeNum(pos.Quantity), safeNum(pos.Price)
		internalFX := rateFor(ctx, rates, pos.Currency)
		priceEffect += (safeNum(c.Price) - price) * qty * internalFX

		if pos.Currency != models.BaseCurrency {
			custFX := safeNum(c.FXRate)
			if custFX == 0 {
				custFX = internalFX
			}
			fxEffect += price * qty * (custFX - internalFX)
		}
	}
	cashEffect := cashValue - safeNum(custodian.CashUSD)
	residual := delta - (priceEffect + fxEffect + cashEffect - accrual)

	nav := navOrOne(p.NavUSD)
	toBps := func(v float64) float64 { return roundN(v/nav*10000, 2) }

	items := []models.NAVBridgeItem{}
	addIfMaterial := func(label string, v float64, desc string) {
		if math.Abs(v) > bridgeNoiseUSD {
			items = append(items, models.NAVBridgeItem{Label: label, ValueUSD: v, ValueBps: toBps(v), Description: desc})
		}
	}
	addIfMaterial("Price Effect", priceEffect, "Difference between internal and custodian prices")
	addIfMaterial("FX Effect", fxEffect, "FX rate variance between systems")
	addIfMaterial("Cash/Timing", cashEffect, "Cash position and settlement timing differences")
	items = append(items, models.NAVBridgeItem{
		Label:       "Mgmt Fee Accrual",
		ValueUSD:    -accrual,
		ValueBps:    toBps(-accrual),
		Description: fmt.Sprintf("Daily accrual at %vbps annual", feeBps),
	})
	addIfMaterial("Residual", residual, "Unexplained variance")

	deltaBps := 0.0
	if adminNAV != 0 {
		deltaBps = delta / adminNAV * 10000
	}

	return models.ShadowNAVCard{
		ShadowNAV:         shadow,
		ShadowNAVPerShare: shadow / shares,
		AdminNAV:          adminNAV,
		AdminNAVPerShare:  adminNAV / shares,
		AdminNAVAsOf:      adminAsOf,
		DeltaUSD:          delta,
		DeltaBps:          deltaBps,
		DailyAccrual:      accrual,
		ManagementFeeBps:  feeBps,
		FXMode:            shadowFXMode,
		PricingSource:     shadowPricingSource,
		Components: models.NAVBridgeComponents{
			PriceEffect:  priceEffect,
			FXEffect:     fxEffect,
			CashEffect:   cashEffect,
			DailyAccrual: accrual,
			Residual:     residual,
		},
		BridgeItems: items,
	}
}
