package services_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reconRates = models.FXRates{models.CurrencyUSD: 1, models.CurrencyEUR: 1.085}

func internalPos(ticker string, ccy models.Currency, qty, price float64, rates models.FXRates) models.Position {
	fx := rates[ccy]
	if fx == 0 {
		fx = 1
	}
	return models.Position{Ticker: ticker, Name: ticker + " Inc", Currency: ccy, Quantity: qty, Price: price, MarketValue: qty * price * fx}
}

func custodianPos(ticker string, ccy models.Currency, qty, price, fx float64) models.CustodianPosition {
	return models.CustodianPosition{
		Ticker: ticker, Currency: ccy, Quantity: qty, Price: price, FXRate: fx,
		MarketValueLocal: qty * price, MarketValueUSD: qty * price * fx,
	}
}

func TestReconcileNAV_Aligned(t *testing.T) {
	in := services.ReconcileInput{
		Internal:         []models.Position{internalPos("AAPL", models.CurrencyUSD, 1000, 200, reconRates)},
		Custodian:        []models.CustodianPosition{custodianPos("AAPL", models.CurrencyUSD, 1000, 200, 1)},
		CustodianCashUSD: 50_000,
		InternalCashUSD:  50_000,
		OfficialNAV:      250_000,
		Rates:            reconRates,
		Tolerance:        services.DefaultTolerance,
	}

	r := services.ReconcileNAV(in)

	assert.Equal(t, 250_000.0, r.ShadowNAV)
	assert.Equal(t, 0.0, r.DeltaUSD)
	assert.Empty(t, r.PositionBreaks)
	assert.Empty(t, r.CashBreaks)
	assert.Equal(t, models.ReconAligned, r.Status)
	assert.Len(t, r.BreaksByCause, len(models.BreakCauses))
	for _, g := range r.BreaksByCause {
		assert.Zero(t, g.Count)
	}
}

func TestReconcileNAV_BreakKinds(t *testing.T) {
	testCases := []struct {
		name      string
		internal  models.Position
		custodian *models.CustodianPosition
		wantType  models.BreakType
		wantCause models.BreakCause
		wantConf  int
		wantDelta float64
	}{
		{
			name:      "round lot quantity",
			internal:  internalPos("MSFT", models.CurrencyUSD, 1000, 400, reconRates),
			custodian: ptr(custodianPos("MSFT", models.CurrencyUSD, 1500, 400, 1)),
			wantType:  models.BreakQuantity,
			wantCause: models.CauseMissingTrade,
			wantConf:  85,
			wantDelta: 500,
		},
		{
			name:      "small quantity",
			internal:  internalPos("MSFT", models.CurrencyUSD, 1000, 400, reconRates),
			custodian: ptr(custodianPos("MSFT", models.CurrencyUSD, 1037, 400, 1)),
			wantType:  models.BreakQuantity,
			wantCause: models.CauseCorporateAction,
			wantConf:  70,
			wantDelta: 37,
		},
		{
			name:      "odd quantity",
			internal:  internalPos("MSFT", models.CurrencyUSD, 1000, 400, reconRates),
			custodian: ptr(custodianPos("MSFT", models.CurrencyUSD, 1250, 400, 1)),
			wantType:  models.BreakQuantity,
			wantCause: models.CauseMissingTrade,
			wantConf:  75,
			wantDelta: 250,
		},
		{
			name:      "small price variance",
			internal:  internalPos("NVDA", models.CurrencyUSD, 10_000, 100, reconRates),
			custodian: ptr(custodianPos("NVDA", models.CurrencyUSD, 10_000, 100.2, 1)),
			wantType:  models.BreakPrice,
			wantCause: models.CausePriceDiscrepancy,
			wantConf:  90,
			wantDelta: 0.2,
		},
		{
			name:      "large price variance",
			internal:  internalPos("NVDA", models.CurrencyUSD, 10_000, 100, reconRates),
			custodian: ptr(custodianPos("NVDA", models.CurrencyUSD, 10_000, 110, 1)),
			wantType:  models.BreakPrice,
			wantCause: models.CauseDataMapping,
			wantConf:  70,
			wantDelta: 10,
		},
		{
			name:      "fx rate",
			internal:  internalPos("SAP", models.CurrencyEUR, 10_000, 150, reconRates),
			custodian: ptr(custodianPos("SAP", models.CurrencyEUR, 10_000, 150, 1.095)),
			wantType:  models.BreakFX,
			wantCause: models.CauseFXIncorrect,
			wantConf:  85,
			wantDelta: 0.01,
		},
		{
			name:      "missing at custodian",
			internal:  internalPos("TSLA", models.CurrencyUSD, 100, 250, reconRates),
			wantType:  models.BreakMissing,
			wantCause: models.CauseMissingPosition,
			wantConf:  95,
			wantDelta: -100,
		},
		{
			name:      "quantity and price together report quantity only",
			internal:  internalPos("MSFT", models.CurrencyUSD, 1000, 400, reconRates),
			custodian: ptr(custodianPos("MSFT", models.CurrencyUSD, 1100, 420, 1)),
			wantType:  models.BreakQuantity,
			wantCause: models.CauseMissingTrade,
			wantConf:  85,
			wantDelta: 100,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := services.ReconcileInput{
				Internal:    []models.Position{tc.internal},
				OfficialNAV: 100_000_000,
				Rates:       reconRates,
				Tolerance:   services.DefaultTolerance,
			}
			if tc.custodian != nil {
				in.Custodian = []models.CustodianPosition{*tc.custodian}
			}

			r := services.ReconcileNAV(in)

			require.Len(t, r.PositionBreaks, 1)
			b := r.PositionBreaks[0]
			assert.Equal(t, "brk_0", b.ID)
			assert.Equal(t, tc.wantType, b.Type())
			assert.Equal(t, tc.wantCause, b.CauseAnalysis.Cause)
			assert.Equal(t, tc.wantConf, b.CauseAnalysis.Confidence)
			assert.InDelta(t, tc.wantDelta, b.Delta, 1e-9)
			assert.NotEmpty(t, b.CauseAnalysis.Evidence)
			assert.NotEmpty(t, b.CauseAnalysis.SuggestedFix)
			assert.Equal(t, models.ResolutionUnresolved, b.Resolution)
			assert.Equal(t, models.BreakStatusNew, b.Status)
			assert.Equal(t, 1, r.UnresolvedCount)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestReconcileNAV_Idempotent(t *testing.T) {
	in := services.ReconcileInput{
		Internal: []models.Position{
			internalPos("MSFT", models.CurrencyUSD, 900, 400, reconRates),
			internalPos("AAPL", models.CurrencyUSD, 1000, 200, reconRates),
			internalPos("SAP", models.CurrencyEUR, 1000, 150, reconRates),
			internalPos("GONE", models.CurrencyUSD, 500, 100, reconRates),
		},
		Custodian: []models.CustodianPosition{
			custodianPos("MSFT", models.CurrencyUSD, 1000, 400, 1),
			custodianPos("AAPL", models.CurrencyUSD, 1000, 210, 1),
			custodianPos("SAP", models.CurrencyEUR, 1000, 150, 1.10),
		},
		CustodianCashUSD: 980_000,
		InternalCashUSD:  1_000_000,
		OfficialNAV:      100_000_000,
		Rates:            reconRates,
		Tolerance:        services.DefaultTolerance,
	}

	first := services.ReconcileNAV(in)
	require.Len(t, first.PositionBreaks, 4)
	require.Len(t, first.CashBreaks, 1)

	for i := 0; i < 3; i++ {
		again := services.ReconcileNAV(in)
		assert.Equal(t, first, again, "run %d", i+2)
	}
}

func TestReconcileNAV_NonFiniteToleranceIsZero(t *testing.T) {
	in := services.ReconcileInput{
		Internal:         []models.Position{internalPos("AAPL", models.CurrencyUSD, 1000, 200, reconRates)},
		Custodian:        []models.CustodianPosition{custodianPos("AAPL", models.CurrencyUSD, 1000, 200, 1)},
		CustodianCashUSD: 45_000,
		InternalCashUSD:  50_000,
		OfficialNAV:      250_000,
		Rates:            reconRates,
		Tolerance:        models.BreakTolerance{AbsoluteUSD: math.NaN(), RelativeBps: math.Inf(1)},
	}

	r := services.ReconcileNAV(in)

	assert.Equal(t, models.BreakTolerance{}, r.Tolerance)
	assert.Empty(t, r.PositionBreaks)
	require.Len(t, r.CashBreaks, 1)
	assert.Equal(t, -5_000.0, r.CashBreaks[0].Delta)

	_, err := json.Marshal(r)
	assert.NoError(t, err)
}

func TestReconcileNAV_WithinTolerance(t *testing.T) {
	// a 0.3 share difference is under the match threshold but would still be
	// skipped by tolerance: $60 and well under 1bp of NAV
	in := services.ReconcileInput{
		Internal:    []models.Position{internalPos("AAPL", models.CurrencyUSD, 1000, 200, reconRates)},
		Custodian:   []models.CustodianPosition{custodianPos("AAPL", models.CurrencyUSD, 1000.3, 200, 1)},
		OfficialNAV: 100_000_000,
		Rates:       reconRates,
		Tolerance:   services.DefaultTolerance,
	}
	r := services.ReconcileNAV(in)
	assert.Empty(t, r.PositionBreaks)
}

func TestReconcileNAV_ToleranceNeedsBothFloors(t *testing.T) {
	// $500 is under the absolute floor but is 5bp of a $1M NAV
	in := services.ReconcileInput{
		Internal:    []models.Position{internalPos("AAPL", models.CurrencyUSD, 1000, 200, reconRates)},
		Custodian:   []models.CustodianPosition{custodianPos("AAPL", models.CurrencyUSD, 1000, 200.5, 1)},
		OfficialNAV: 1_000_000,
		Rates:       reconRates,
		Tolerance:   services.DefaultTolerance,
	}
	r := services.ReconcileNAV(in)
	require.Len(t, r.PositionBreaks, 1)
	assert.Equal(t, models.BreakPrice, r.PositionBreaks[0].Type())
}

func TestReconcileNAV_SmallMissingPositionSkipped(t *testing.T) {
	in := services.ReconcileInput{
		Internal:    []models.Position{internalPos("TINY", models.CurrencyUSD, 1, 500, reconRates)},
		OfficialNAV: 1_000,
		Rates:       reconRates,
		Tolerance:   services.DefaultTolerance,
	}
	r := services.ReconcileNAV(in)
	assert.Empty(t, r.PositionBreaks)
}

func TestReconcileNAV_CashBreak(t *testing.T) {
	testCases := []struct {
		name      string
		custCash  float64
		intCash   float64
		wantBreak bool
		wantCause models.BreakCause
	}{
		{"fees", 995_000, 1_000_000, true, models.CauseFeesTaxes},
		{"settlement", 1_050_000, 1_000_000, true, models.CauseSettlementTiming},
		{"under floor", 1_000_500, 1_000_000, false, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := services.ReconcileNAV(services.ReconcileInput{
				CustodianCashUSD: tc.custCash,
				InternalCashUSD:  tc.intCash,
				OfficialNAV:      tc.intCash,
				Rates:            reconRates,
				Tolerance:        services.DefaultTolerance,
			})
			if !tc.wantBreak {
				assert.Empty(t, r.CashBreaks)
				return
			}
			require.Len(t, r.CashBreaks, 1)
			cb := r.CashBreaks[0]
			assert.Equal(t, "cash_brk_0", cb.ID)
			assert.Equal(t, tc.custCash-tc.intCash, cb.Delta)
			assert.Equal(t, tc.wantCause, cb.CauseAnalysis.Cause)
		})
	}
}

func TestReconcileNAV_IDsOnlyForEmittedBreaks(t *testing.T) {
	in := services.ReconcileInput{
		Internal: []models.Position{
			internalPos("AAA", models.CurrencyUSD, 1000, 10, reconRates),
			internalPos("BBB", models.CurrencyUSD, 1000, 100, reconRates),
			internalPos("CCC", models.CurrencyUSD, 1000, 100, reconRates),
		},
		Custodian: []models.CustodianPosition{
			custodianPos("AAA", models.CurrencyUSD, 1000, 10, 1),
			custodianPos("BBB", models.CurrencyUSD, 2000, 100, 1),
		},
		OfficialNAV: 100_000_000,
		Rates:       reconRates,
		Tolerance:   services.DefaultTolerance,
	}

	r := services.ReconcileNAV(in)

	require.Len(t, r.PositionBreaks, 2)
	assert.Equal(t, "brk_0", r.PositionBreaks[0].ID)
	assert.Equal(t, "BBB", r.PositionBreaks[0].Ticker)
	assert.Equal(t, "brk_1", r.PositionBreaks[1].ID)
	assert.Equal(t, "CCC", r.PositionBreaks[1].Ticker)
}

func TestReconcileNAV_StatusBands(t *testing.T) {
	testCases := []struct {
		name     string
		custCash float64
		expected models.ReconStatus
	}{
		{"critical over 50bp", 1_006_000, models.ReconCritical},
		{"investigate over 10bp", 1_002_000, models.ReconInvestigate},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := services.ReconcileNAV(services.ReconcileInput{
				CustodianCashUSD: tc.custCash,
				InternalCashUSD:  tc.custCash,
				OfficialNAV:      1_000_000,
				Rates:            reconRates,
				Tolerance:        services.DefaultTolerance,
			})
			assert.Empty(t, r.CashBreaks)
			assert.Equal(t, tc.expected, r.Status)
		})
	}
}

func TestRefreshSummary_UsesEffectiveCause(t *testing.T) {
	r := services.ReconcileNAV(services.ReconcileInput{
		CustodianCashUSD: 995_000,
		InternalCashUSD:  1_000_000,
		OfficialNAV:      1_000_000,
		Rates:            reconRates,
		Tolerance:        services.DefaultTolerance,
	})
	require.Len(t, r.CashBreaks, 1)

	r.CashBreaks[0].CauseOverride = &models.CauseOverride{Cause: models.CauseSettlementTiming, Note: "T+1 wire"}
	r.CashBreaks[0].Resolution = models.ResolutionKeepInternal
	services.RefreshSummary(r)

	for _, g := range r.BreaksByCause {
		switch g.Cause {
		case models.CauseSettlementTiming:
			assert.Equal(t, 1, g.Count)
			assert.Equal(t, 5_000.0, g.TotalUSD)
		default:
			assert.Zero(t, g.Count, "cause %s", g.Cause)
		}
	}
	assert.Equal(t, 0, r.UnresolvedCount)
	assert.Equal(t, models.CauseFeesTaxes, r.CashBreaks[0].CauseAnalysis.Cause, "analysis is kept")
}

func TestReconcile_InternalCashFromSettledBuckets(t *testing.T) {
	p := models.Portfolio{
		NavUSD:         1_000_000,
		CurrentCashUSD: 1,
		CashBuckets: []models.CashBucket{
			{Currency: models.CurrencyUSD, T: 500_000, T5: 900_000},
			{Currency: models.CurrencyEUR, T: 100_000},
		},
	}
	feed := models.CustodianFeed{CashUSD: 608_500}

	r := services.Reconcile(context.Background(), p, feed, reconRates, services.DefaultTolerance)

	assert.Empty(t, r.CashBreaks)
	assert.InDelta(t, 608_500.0, r.ShadowNAV, 1e-6)
}

func TestReconcile_FallsBackToCurrentCash(t *testing.T) {
	p := models.Portfolio{NavUSD: 1_000_000, CurrentCashUSD: 20_000}
	feed := models.CustodianFeed{CashUSD: 50_000}

	r := services.Reconcile(context.Background(), p, feed, reconRates, services.DefaultTolerance)

	require.Len(t, r.CashBreaks, 1)
	assert.Equal(t, 20_000.0, r.CashBreaks[0].InternalCash)
	assert.Equal(t, models.CauseSettlementTiming, r.CashBreaks[0].CauseAnalysis.Cause)
}
