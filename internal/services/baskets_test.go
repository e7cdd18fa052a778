package services_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedResult(t *testing.T) models.RebalanceResult {
	t.Helper()
	res, err := services.Rebalance(services.RebalanceInput{
		Portfolio:      deployBook(),
		Config:         everythingConfig(),
		InvestableCash: 100_000,
		Rates:          rebalRates,
		TradeDate:      rebalTradeDate,
	})
	require.NoError(t, err)
	return res
}

func TestBuildBaskets(t *testing.T) {
	baskets, trades := services.BuildBaskets(confirmedResult(t), rebalTradeDate)

	require.Len(t, baskets, 2)
	eq, fx := baskets[0], baskets[1]

	assert.Equal(t, "Rebalance — 2026-03-06", eq.Name)
	assert.Equal(t, models.OrderTypeEquity, eq.Type)
	assert.Equal(t, models.OrderPending, eq.Status)
	assert.Equal(t, models.StateProjected, eq.OrderState)
	assert.InDelta(t, 99_982.25, eq.TotalNotionalUSD, 1e-6)
	require.Len(t, eq.Orders, 2)
	assert.True(t, strings.HasPrefix(eq.Orders[0].ID, "eq_"))
	assert.InDelta(t, 60_000/99_982.25*100, eq.Orders[0].PctOfBasket, 1e-9)
	assert.Equal(t, models.HorizonT1, eq.Orders[0].SettlementBucket)

	assert.Equal(t, "FX Rebalance — 2026-03-06", fx.Name)
	assert.Equal(t, models.OrderTypeFX, fx.Type)
	require.Len(t, fx.Orders, 1)
	assert.Equal(t, "USD/EUR", fx.Orders[0].Ticker)
	assert.Equal(t, "EUR/USD 1.0850", fx.Orders[0].FXMid)
	assert.Equal(t, 100.0, fx.Orders[0].PctOfBasket)

	require.Len(t, trades, 1)
	assert.Equal(t, fx.Orders[0].ID, trades[0].ID)
	assert.Equal(t, "2026-03-06T15:00:00Z", trades[0].CreatedAt)
}

func TestBuildBaskets_ActiveName(t *testing.T) {
	res, err := services.Rebalance(services.RebalanceInput{
		Portfolio:      activeBook(),
		Config:         models.RebalanceConfig{Mode: models.ModeActive},
		InvestableCash: 5_000,
		Rates:          rebalRates,
	})
	require.NoError(t, err)

	baskets, trades := services.BuildBaskets(res, rebalTradeDate)
	require.Len(t, baskets, 1)
	assert.Equal(t, "Active Rebalance — 2026-03-06", baskets[0].Name)
	assert.Equal(t, 40_000.0, baskets[0].TotalNotionalUSD)
	assert.Equal(t, 50.0, baskets[0].Orders[0].PctOfBasket)
	assert.Empty(t, trades)
}

func TestRouteBaskets(t *testing.T) {
	baskets, _ := services.BuildBaskets(confirmedResult(t), rebalTradeDate)
	baskets, err := services.ToggleDoNotTrade(baskets, baskets[0].ID, baskets[0].Orders[1].ID)
	require.NoError(t, err)

	routed := services.RouteBaskets(baskets)

	eq := routed[0]
	assert.Equal(t, models.StateRouted, eq.OrderState)
	assert.Equal(t, models.OrderPartialFill, eq.Status)
	assert.Equal(t, models.OrderPartialFill, eq.Orders[0].Status)
	assert.Equal(t, 70.0, eq.Orders[0].FillPct)
	assert.Equal(t, models.OrderCancelled, eq.Orders[1].Status)
	assert.InDelta(t, 60_000*0.7/99_982.25*100, eq.FillPct, 1e-9)

	fx := routed[1]
	assert.Equal(t, 50.0, fx.Orders[0].FillPct)
	assert.Equal(t, 50.0, fx.FillPct)

	assert.Equal(t, models.OrderPending, baskets[0].Orders[0].Status, "input is not modified")

	// routing again leaves routed baskets alone
	again := services.RouteBaskets(routed)
	assert.Equal(t, routed, again)
}

func TestCancelBaskets(t *testing.T) {
	baskets, _ := services.BuildBaskets(confirmedResult(t), rebalTradeDate)
	cancelled := services.CancelBaskets(services.RouteBaskets(baskets))

	for _, b := range cancelled {
		assert.Equal(t, models.OrderCancelled, b.Status)
		assert.Equal(t, 0.0, b.FillPct)
		for _, o := range b.Orders {
			assert.Equal(t, models.OrderCancelled, o.Status)
		}
	}
}

func TestToggleDoNotTrade(t *testing.T) {
	baskets, _ := services.BuildBaskets(confirmedResult(t), rebalTradeDate)
	bID, oID := baskets[0].ID, baskets[0].Orders[0].ID

	on, err := services.ToggleDoNotTrade(baskets, bID, oID)
	require.NoError(t, err)
	assert.True(t, on[0].Orders[0].DoNotTrade)
	assert.False(t, baskets[0].Orders[0].DoNotTrade)

	off, err := services.ToggleDoNotTrade(on, bID, oID)
	require.NoError(t, err)
	assert.False(t, off[0].Orders[0].DoNotTrade)

	_, err = services.ToggleDoNotTrade(baskets, "nope", oID)
	assert.True(t, errors.Is(err, services.ErrBasketNotFound))

	_, err = services.ToggleDoNotTrade(baskets, bID, "nope")
	assert.True(t, errors.Is(err, services.ErrOrderNotFound))

	_, err = services.ToggleDoNotTrade(services.RouteBaskets(baskets), bID, oID)
	assert.True(t, errors.Is(err, services.ErrInvalidTransition))
}

func TestAggregateBasketStatus(t *testing.T) {
	o := func(s models.OrderStatus) models.Order { return models.Order{Status: s} }

	testCases := []struct {
		name     string
		orders   []models.Order
		expected models.OrderStatus
	}{
		{"empty", nil, models.OrderPending},
		{"all pending", []models.Order{o(models.OrderPending), o(models.OrderPending)}, models.OrderPending},
		{"all cancelled", []models.Order{o(models.OrderCancelled)}, models.OrderCancelled},
		{"filled ignoring cancelled", []models.Order{o(models.OrderFilled), o(models.OrderCancelled)}, models.OrderFilled},
		{"some filled", []models.Order{o(models.OrderFilled), o(models.OrderPending)}, models.OrderPartialFill},
		{"routed", []models.Order{o(models.OrderRouted), o(models.OrderPending)}, models.OrderRouted},
		{"partial wins over routed", []models.Order{o(models.OrderRouted), o(models.OrderPartialFill)}, models.OrderPartialFill},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, services.AggregateBasketStatus(tc.orders))
		})
	}
}

func TestSpotAllToBase(t *testing.T) {
	buckets := []models.CashBucket{
		{Currency: models.CurrencyUSD, T5: 1_000},
		{Currency: models.CurrencyEUR, T5: 10_000},
		{Currency: models.CurrencyGBP, T5: -50},
	}
	trades := services.SpotAllToBase(buckets, rebalRates, rebalTradeDate)

	require.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, models.CurrencyEUR, tr.SellCcy)
	assert.Equal(t, models.CurrencyUSD, tr.BuyCcy)
	assert.Equal(t, 10_000.0, tr.SellAmt)
	assert.InDelta(t, 10_850.0, tr.BuyAmt, 1e-9)
	assert.Equal(t, models.FXSourceSpotToBase, tr.Source)
	assert.Equal(t, "2026-03-10", tr.SettleDate)
	assert.NotEmpty(t, tr.ID)
}
