package services

import (
	"fmt"
	"math"

	"github.com/epeers/pmscockpit/internal/models"
)

// Position match thresholds. A matched ticker outside tolerance is classified
// by the first of these that is exceeded, in this order.
const (
	qtyMatchTolerance   = 0.5
	priceMatchTolerance = 0.01
	fxMatchTolerance    = 0.0001
)

// Overall status bands, in bps of official NAV.
const (
	criticalBps    = 50.0
	investigateBps = 10.0
)

// DefaultTolerance is used when a caller supplies none.
var DefaultTolerance = models.BreakTolerance{AbsoluteUSD: 1000, RelativeBps: 1}

// ReconcileInput is one snapshot of both records.
type ReconcileInput struct {
	Custodian        []models.CustodianPosition
	Internal         []models.Position
	CustodianCashUSD float64
	InternalCashUSD  float64
	OfficialNAV      float64
	Rates            models.FXRates
	Tolerance        models.BreakTolerance
}

// ShadowNAVFromCustodian is Σ custodian USD market value plus custodian cash.
func ShadowNAVFromCustodian(custodian []models.CustodianPosition, cashUSD float64) float64 {
	total := safeNum(cashUSD)
	for _, p := range custodian {
		total += safeNum(p.MarketValueUSD)
	}
	return total
}

// ReconcileNAV detects and explains breaks between the custodian and the
// internal book. The result depends only on in; LastReconciledAt and ID are
// left for the caller.
func ReconcileNAV(in ReconcileInput) *models.NAVReconciliation {
	officialNAV := navOrOne(in.OfficialNAV)
	custodianCash := safeNum(in.CustodianCashUSD)
	internalCash := safeNum(in.InternalCashUSD)
	tol := models.BreakTolerance{
		AbsoluteUSD: safeNum(in.Tolerance.AbsoluteUSD),
		RelativeBps: safeNum(in.Tolerance.RelativeBps),
	}

	shadow := ShadowNAVFromCustodian(in.Custodian, custodianCash)
	delta := shadow - officialNAV

	custodianByTicker := make(map[string]models.CustodianPosition, len(in.Custodian))
	for _, p := range in.Custodian {
		custodianByTicker[p.Ticker] = p
	}

	r := &models.NAVReconciliation{
		ShadowNAV:      shadow,
		OfficialNAV:    officialNAV,
		DeltaUSD:       delta,
		DeltaBps:       delta / officialNAV * 10000,
		PositionBreaks: []*models.PositionBreak{},
		CashBreaks:     []*models.CashBreak{},
		Tolerance:      tol,
	}

	nextID := 0
	newID := func() string {
		id := fmt.Sprintf("brk_%d", nextID)
		nextID++
		return id
	}

	for _, internal := range in.Internal {
		custodian, ok := custodianByTicker[internal.Ticker]
		if !ok {
			// no comparison base, so only the absolute floor applies
			mv := safeNum(internal.MarketValue)
			if math.Abs(mv) < tol.AbsoluteUSD {
				continue
			}
			r.PositionBreaks = append(r.PositionBreaks, newPositionBreak(newID(), internal,
				models.MissingMismatch{InternalQty: safeNum(internal.Quantity)},
				-safeNum(internal.Quantity), -mv))
			continue
		}

		deltaUSD := safeNum(custodian.MarketValueUSD) - safeNum(internal.MarketValue)
		deltaBps := math.Abs(deltaUSD / officialNAV * 10000)
		if math.Abs(deltaUSD) < tol.AbsoluteUSD && deltaBps < tol.RelativeBps {
			continue
		}

		mismatch, d := classifyMismatch(internal, custodian, in.Rates)
		if mismatch == nil {
			continue
		}
		r.PositionBreaks = append(r.PositionBreaks, newPositionBreak(newID(), internal, mismatch, d, deltaUSD))
	}

	if cashDelta := custodianCash - internalCash; math.Abs(cashDelta) >= tol.AbsoluteUSD {
		cb := &models.CashBreak{
			ID:            "cash_brk_0",
			Currency:      models.BaseCurrency,
			CustodianCash: custodianCash,
			InternalCash:  internalCash,
			Delta:         cashDelta,
			BreakWorkflow: newWorkflow(),
		}
		cb.CauseAnalysis = AnalyzeCause(cb)
		r.CashBreaks = append(r.CashBreaks, cb)
	}

	RefreshSummary(r)
	return r
}

// classifyMismatch picks the first exceeded threshold: quantity, then price,
// then FX for non-USD holdings. A compound break is reported under the first
// kind only; its other differences stay inside DeltaUSD.
func classifyMismatch(internal models.Position, custodian models.CustodianPosition, rates models.FXRates) (models.Mismatch, float64) {
	custQty, intQty := safeNum(custodian.Quantity), safeNum(internal.Quantity)
	custPrice, intPrice := safeNum(custodian.Price), safeNum(internal.Price)
	custFX, intFX := safeNum(custodian.FXRate), fxRate(rates, custodian.Currency)

	switch {
	case math.Abs(custQty-intQty) > qtyMatchTolerance:
		return models.QuantityMismatch{CustodianQty: custQty, InternalQty: intQty}, custQty - intQty
	case math.Abs(custPrice-intPrice) > priceMatchTolerance:
		return models.PriceMismatch{CustodianPrice: custPrice, InternalPrice: intPrice}, custPrice - intPrice
	case custodian.Currency != models.BaseCurrency && math.Abs(custFX-intFX) > fxMatchTolerance:
		return models.FXMismatch{CustodianFX: custFX, InternalFX: intFX}, custFX - intFX
	}
	return nil, 0
}

func newWorkflow() models.BreakWorkflow {
	return models.BreakWorkflow{
		Resolution: models.ResolutionUnresolved,
		Status:     models.BreakStatusNew,
	}
}

func newPositionBreak(id string, p models.Position, m models.Mismatch, delta, deltaUSD float64) *models.PositionBreak {
	b := &models.PositionBreak{
		ID:            id,
		Ticker:        p.Ticker,
		Name:          p.Name,
		Currency:      p.Currency,
		Mismatch:      m,
		Delta:         delta,
		DeltaUSD:      deltaUSD,
		BreakWorkflow: newWorkflow(),
	}
	b.CauseAnalysis = AnalyzeCause(b)
	return b
}

// RefreshSummary recomputes cause groups, the unresolved count and the
// overall status from the current break set. Groups use the effective cause,
// so overrides move a break between groups.
func RefreshSummary(r *models.NAVReconciliation) {
	groups := make(map[models.BreakCause]*models.CauseGroup, len(models.BreakCauses))
	r.BreaksByCause = make([]models.CauseGroup, len(models.BreakCauses))
	for i, c := range models.BreakCauses {
		r.BreaksByCause[i] = models.CauseGroup{Cause: c}
		groups[c] = &r.BreaksByCause[i]
	}

	unresolved := 0
	for _, b := range r.Breaks() {
		g, ok := groups[models.EffectiveCause(b)]
		if !ok {
			g = groups[models.CauseUnknown]
		}
		g.Count++
		g.TotalUSD += math.Abs(b.ImpactUSD())
		if b.Workflow().Resolution == models.ResolutionUnresolved {
			unresolved++
		}
	}
	r.UnresolvedCount = unresolved

	switch bps := math.Abs(r.DeltaBps); {
	case bps > criticalBps:
		r.Status = models.ReconCritical
	case bps > investigateBps || unresolved > 0:
		r.Status = models.ReconInvestigate
	default:
		r.Status = models.ReconAligned
	}
}
