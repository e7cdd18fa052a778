package services

import (
	"sort"
	"time"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/util"
	"github.com/google/uuid"
)

const dateLayout = models.DateLayout

// SpotAllToBase raises one Pending SPOT trade per non-USD bucket holding a
// positive terminal balance, selling the whole balance for USD at the table
// rate. Trades settle in the T2 bucket.
func SpotAllToBase(buckets []models.CashBucket, rates models.FXRates, tradeDate time.Time) []models.FXTrade {
	settle := util.SettleDateFromType(tradeDate, models.SettlementSpot)
	trades := []models.FXTrade{}
	for _, b := range buckets {
		total := safeNum(b.At(models.TerminalHorizon))
		if b.Currency == models.BaseCurrency || total <= 0 {
			continue
		}
		rate := fxRate(rates, b.Currency)
		trades = append(trades, models.FXTrade{
			ID:               uuid.NewString(),
			SellCcy:          b.Currency,
			BuyCcy:           models.BaseCurrency,
			SellAmt:          total,
			BuyAmt:           total * rate,
			FXRate:           rate,
			TradeDate:        tradeDate.Format(dateLayout),
			SettleDate:       settle.Format(dateLayout),
			ExecutionType:    models.FXExecutionSpot,
			SettlementBucket: models.HorizonT2,
			Status:           models.FXStatusPending,
			Source:           models.FXSourceSpotToBase,
			CreatedAt:        tradeDate.UTC().Format(time.RFC3339),
		})
	}
	return trades
}

// hedgeOrders groups non-USD buy notional by currency and emits one
// USD -> local order per currency, skipping hedges under minFXTicketUSD.
// Hedges always settle T2. Currencies are emitted in code order.
func hedgeOrders(allocs []models.RebalanceAllocation, rates models.FXRates, exec models.FXExecutionType, tradeDate time.Time) []models.FXTrade {
	byCcy := make(map[models.Currency]float64)
	for _, a := range allocs {
		if a.Side != models.SideBuy || a.Currency == models.BaseCurrency || a.Currency == "" {
			continue
		}
		byCcy[a.Currency] += a.Notional
	}

	ccys := make([]models.Currency, 0, len(byCcy))
	for c := range byCcy {
		ccys = append(ccys, c)
	}
	sort.Slice(ccys, func(i, j int) bool { return ccys[i] < ccys[j] })

	if exec == "" {
		exec = models.FXExecutionSpot
	}
	settle := util.SettleDateFromType(tradeDate, models.SettlementSpot)

	orders := []models.FXTrade{}
	for _, ccy := range ccys {
		usd := byCcy[ccy]
		if usd < minFXTicketUSD {
			continue
		}
		rate := fxRate(rates, ccy)
		orders = append(orders, models.FXTrade{
			SellCcy:          models.BaseCurrency,
			BuyCcy:           ccy,
			SellAmt:          usd,
			BuyAmt:           usd / rate,
			FXRate:           rate,
			TradeDate:        tradeDate.Format(dateLayout),
			SettleDate:       settle.Format(dateLayout),
			ExecutionType:    exec,
			SettlementBucket: models.HorizonT2,
			Status:           models.FXStatusPending,
			Source:           models.FXSourceRebalance,
		})
	}
	return orders
}
