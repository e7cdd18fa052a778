package services

import (
	"fmt"
	"time"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/google/uuid"
)

// Simulated fill percentages applied when a basket is routed.
const (
	equityRouteFillPct = 70.0
	fxRouteFillPct     = 50.0
)

// BuildBaskets turns a confirmed rebalance into an equity basket and, when
// there are hedges, an FX basket. Both start Pending in the projected state.
// The hedges are returned with ids and creation times so they can join the
// pending FX list.
func BuildBaskets(res models.RebalanceResult, now time.Time) ([]models.Basket, []models.FXTrade) {
	stamp := now.UTC().Format(time.RFC3339)
	day := now.Format(dateLayout)
	baskets := []models.Basket{}

	if len(res.Allocations) > 0 {
		gross := safeNum(res.TotalInvested) + safeNum(res.TotalSold)
		hasSell := false
		orders := make([]models.Order, 0, len(res.Allocations))
		for _, a := range res.Allocations {
			if a.Side == models.SideSell {
				hasSell = true
			}
			pct := 0.0
			if gross > 0 {
				pct = a.Notional / gross * 100
			}
			orders = append(orders, models.Order{
				ID:               "eq_" + uuid.NewString(),
				Ticker:           a.Ticker,
				Side:             a.Side,
				Type:             models.OrderTypeEquity,
				Currency:         a.Currency,
				Quantity:         a.Quantity,
				NotionalUSD:      a.Notional,
				PctOfBasket:      pct,
				SettlementBucket: a.SettlementBucket,
				Status:           models.OrderPending,
			})
		}
		name := "Rebalance — " + day
		if hasSell {
			name = "Active Rebalance — " + day
		}
		baskets = append(baskets, models.Basket{
			ID:               uuid.NewString(),
			Name:             name,
			Timestamp:        stamp,
			Type:             models.OrderTypeEquity,
			Orders:           orders,
			TotalNotionalUSD: gross,
			Status:           models.OrderPending,
			OrderState:       models.StateProjected,
		})
	}

	trades := make([]models.FXTrade, 0, len(res.FXOrders))
	if len(res.FXOrders) > 0 {
		total := 0.0
		orders := make([]models.Order, 0, len(res.FXOrders))
		for _, fx := range res.FXOrders {
			fx.ID = uuid.NewString()
			fx.CreatedAt = stamp
			trades = append(trades, fx)
			total += safeNum(fx.SellAmt)
		}
		for _, fx := range trades {
			pct := 0.0
			if total > 0 {
				pct = fx.SellAmt / total * 100
			}
			orders = append(orders, models.Order{
				ID:               fx.ID,
				Ticker:           fmt.Sprintf("%s/%s", fx.SellCcy, fx.BuyCcy),
				Side:             models.SideBuy,
				Type:             models.OrderTypeFX,
				Currency:         fx.BuyCcy,
				NotionalUSD:      fx.SellAmt,
				PctOfBasket:      pct,
				FXMid:            fmt.Sprintf("%s/USD %.4f", fx.BuyCcy, fx.FXRate),
				FXExecutionType:  fx.ExecutionType,
				SettlementBucket: fx.SettlementBucket,
				Status:           models.OrderPending,
			})
		}
		baskets = append(baskets, models.Basket{
			ID:               uuid.NewString(),
			Name:             "FX Rebalance — " + day,
			Timestamp:        stamp,
			Type:             models.OrderTypeFX,
			Orders:           orders,
			TotalNotionalUSD: total,
			Status:           models.OrderPending,
			OrderState:       models.StateProjected,
		})
	}
	return baskets, trades
}

// RouteBaskets sends every Pending basket to the simulated OMS. Do-not-trade
// orders are cancelled; the rest take a partial fill. Baskets in any other
// status are returned unchanged. The input is not modified.
func RouteBaskets(baskets []models.Basket) []models.Basket {
	out := cloneBaskets(baskets)
	for i := range out {
		b := &out[i]
		if b.Status != models.OrderPending {
			continue
		}
		fill := equityRouteFillPct
		if b.Type == models.OrderTypeFX {
			fill = fxRouteFillPct
		}
		for j := range b.Orders {
			o := &b.Orders[j]
			switch {
			case o.DoNotTrade:
				o.Status = models.OrderCancelled
				o.FillPct = 0
			case o.Status == models.OrderPending:
				o.Status = models.OrderPartialFill
				o.FillPct = fill
			}
		}
		b.Status = AggregateBasketStatus(b.Orders)
		b.FillPct = basketFillPct(b.Orders)
		b.OrderState = models.StateRouted
	}
	return out
}

// CancelBaskets cancels every basket and every order in it.
func CancelBaskets(baskets []models.Basket) []models.Basket {
	out := cloneBaskets(baskets)
	for i := range out {
		for j := range out[i].Orders {
			out[i].Orders[j].Status = models.OrderCancelled
			out[i].Orders[j].FillPct = 0
		}
		out[i].Status = models.OrderCancelled
		out[i].FillPct = 0
	}
	return out
}

// ToggleDoNotTrade flips the do-not-trade flag of one Pending order.
func ToggleDoNotTrade(baskets []models.Basket, basketID, orderID string) ([]models.Basket, error) {
	out := cloneBaskets(baskets)
	for i := range out {
		if out[i].ID != basketID {
			continue
		}
		for j := range out[i].Orders {
			o := &out[i].Orders[j]
			if o.ID != orderID {
				continue
			}
			if o.Status != models.OrderPending {
				return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidTransition, orderID, o.Status)
			}
			o.DoNotTrade = !o.DoNotTrade
			return out, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return nil, fmt.Errorf("%w: %s", ErrBasketNotFound, basketID)
}

// AggregateBasketStatus coarsens order statuses into one basket status.
// Cancelled orders are ignored unless every order is cancelled.
func AggregateBasketStatus(orders []models.Order) models.OrderStatus {
	if len(orders) == 0 {
		return models.OrderPending
	}
	var live, filled, partial, routed int
	for _, o := range orders {
		switch o.Status {
		case models.OrderCancelled:
			continue
		case models.OrderFilled:
			filled++
		case models.OrderPartialFill:
			partial++
		case models.OrderRouted:
			routed++
		}
		live++
	}
	switch {
	case live == 0:
		return models.OrderCancelled
	case filled == live:
		return models.OrderFilled
	case partial > 0 || filled > 0:
		return models.OrderPartialFill
	case routed > 0:
		return models.OrderRouted
	}
	return models.OrderPending
}

// basketFillPct is the notional-weighted fill of the basket.
func basketFillPct(orders []models.Order) float64 {
	var notional, filled float64
	for _, o := range orders {
		n := safeNum(o.NotionalUSD)
		notional += n
		filled += n * safeNum(o.FillPct) / 100
	}
	if notional == 0 {
		return 0
	}
	return filled / notional * 100
}

func cloneBaskets(in []models.Basket) []models.Basket {
	out := make([]models.Basket, len(in))
	for i, b := range in {
		b.Orders = append([]models.Order(nil), b.Orders...)
		out[i] = b
	}
	return out
}
