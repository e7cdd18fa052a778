package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func previewRequest() models.RebalanceRequest {
	return models.RebalanceRequest{
		Portfolio: models.Portfolio{
			NavUSD: 10_000_000,
			Positions: []models.Position{
				{Ticker: "AAA US", Currency: models.CurrencyUSD, Price: 100, IndexWeight: 50, Tradable: true},
				{Ticker: "BBB GY", Currency: models.CurrencyEUR, Price: 100, IndexWeight: 50, Tradable: true},
			},
			CashBuckets: []models.CashBucket{
				flatBucket(models.CurrencyUSD, 400_000),
				flatBucket(models.CurrencyEUR, 100_000),
			},
		},
		FXRates: models.FXRates{models.CurrencyUSD: 1, models.CurrencyEUR: 1},
	}
}

func TestRebalanceService_PreviewDefaults(t *testing.T) {
	svc := services.NewRebalanceService(nil, cockpitDefaults)
	req := previewRequest()
	req.TradeDate = &models.FlexibleDate{Time: rebalTradeDate}

	resp, err := svc.Preview(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 500_000.0, resp.AvailableCash)
	assert.Equal(t, 300_000.0, resp.InvestableCash)
	assert.Equal(t, models.ModeEverything, resp.Result.Summary.Mode)
	require.Len(t, resp.Result.Allocations, 2)
	assert.Equal(t, 1_500.0, resp.Result.Allocations[0].Quantity)
	require.Len(t, resp.Result.FXOrders, 1)
	assert.Equal(t, "2026-03-06", resp.Result.FXOrders[0].TradeDate)
}

func TestRebalanceService_PartialConfigFilled(t *testing.T) {
	svc := services.NewRebalanceService(nil, cockpitDefaults)
	req := previewRequest()
	req.Config = &models.RebalanceConfig{TargetCashPct: 0, AutoFX: false}

	resp, err := svc.Preview(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 500_000.0, resp.InvestableCash)
	assert.Equal(t, models.ModeEverything, resp.Result.Summary.Mode)
	assert.Empty(t, resp.Result.FXOrders)
}

func TestRebalanceService_PendingFX(t *testing.T) {
	svc := services.NewRebalanceService(nil, cockpitDefaults)
	req := previewRequest()
	req.Config = &models.RebalanceConfig{Horizon: models.HorizonT2}
	req.FXTrades = []models.FXTrade{{
		SellCcy: models.CurrencyUSD, BuyCcy: models.CurrencyEUR,
		SellAmt: 50_000, BuyAmt: 50_000,
		SettlementBucket: models.HorizonT1, Status: models.FXStatusPending,
	}}

	without, err := svc.Preview(context.Background(), req)
	require.NoError(t, err)

	req.UsePendingFX = true
	with, err := svc.Preview(context.Background(), req)
	require.NoError(t, err)

	// a USD/EUR swap at parity leaves the USD total unchanged
	assert.Equal(t, without.AvailableCash, with.AvailableCash)

	req.FXTrades[0].BuyAmt = 40_000
	with, err = svc.Preview(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, without.AvailableCash-10_000, with.AvailableCash)
}

func TestRebalanceService_Errors(t *testing.T) {
	svc := services.NewRebalanceService(nil, cockpitDefaults)

	testCases := []struct {
		name string
		cfg  *models.RebalanceConfig
		want error
	}{
		{"T5 horizon", &models.RebalanceConfig{Horizon: models.HorizonT5}, services.ErrInvalidHorizon},
		{"unknown horizon", &models.RebalanceConfig{Horizon: "T9"}, services.ErrInvalidHorizon},
		{"bad mode", &models.RebalanceConfig{Mode: "all"}, services.ErrInvalidMode},
		{"empty selection", &models.RebalanceConfig{Mode: models.ModeSelected}, services.ErrNoSelection},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := previewRequest()
			req.Config = tc.cfg
			_, err := svc.Preview(context.Background(), req)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}
