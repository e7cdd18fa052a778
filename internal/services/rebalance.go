package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/epeers/pmscockpit/internal/models"
)

// Skip reasons recorded by the eligibility filter.
const (
	skipNotTradable  = "Not tradable"
	skipRestricted   = "Restricted"
	skipMissingPrice = "Missing price"
)

// DefaultRebalanceConfig mirrors the desk defaults.
var DefaultRebalanceConfig = models.RebalanceConfig{
	Mode:            models.ModeEverything,
	Horizon:         models.HorizonT2,
	TargetCashPct:   0.5,
	AutoFX:          true,
	FXExecutionType: models.FXExecutionSpot,
}

// RebalanceInput is everything the allocator reads.
type RebalanceInput struct {
	Portfolio      models.Portfolio
	Config         models.RebalanceConfig
	InvestableCash float64
	Rates          models.FXRates
	TradeDate      time.Time
}

// Rebalance turns a policy and the eligible universe into equity orders and,
// when auto FX is on, USD funding hedges. Only an unknown mode or an empty
// selection in selected mode is an error.
func Rebalance(in RebalanceInput) (models.RebalanceResult, error) {
	cfg := in.Config
	if !cfg.Mode.Valid() {
		return models.RebalanceResult{}, fmt.Errorf("%w: %q", ErrInvalidMode, cfg.Mode)
	}
	selected := make(map[string]bool, len(cfg.SelectedTickers))
	for _, t := range cfg.SelectedTickers {
		if t = strings.TrimSpace(t); t != "" {
			selected[t] = true
		}
	}
	if cfg.Mode == models.ModeSelected && len(selected) == 0 {
		return models.RebalanceResult{}, ErrNoSelection
	}

	investable := safeNum(in.InvestableCash)
	cashBefore := safeNum(in.Portfolio.CurrentCashUSD)

	var candidates []models.Position
	skipped := []models.SkippedPosition{}
	for _, pos := range in.Portfolio.Positions {
		switch {
		case !pos.Tradable:
			skipped = append(skipped, models.SkippedPosition{Ticker: pos.Ticker, Reason: skipNotTradable})
			continue
		case pos.Restricted:
			skipped = append(skipped, models.SkippedPosition{Ticker: pos.Ticker, Reason: skipRestricted})
			continue
		case !(safeNum(pos.Price) > 0):
			skipped = append(skipped, models.SkippedPosition{Ticker: pos.Ticker, Reason: skipMissingPrice})
			continue
		}

		switch cfg.Mode {
		case models.ModeEverything:
			candidates = append(candidates, pos)
		case models.ModeSelected:
			if selected[pos.Ticker] {
				candidates = append(candidates, pos)
			}
		case models.ModeActive:
			if abs(safeNum(pos.DiffBps)) >= activeBandBps {
				candidates = append(candidates, pos)
			}
		}
	}

	if len(candidates) == 0 {
		return models.RebalanceResult{
			Allocations:      []models.RebalanceAllocation{},
			FXOrders:         []models.FXTrade{},
			InvestableCash:   investable,
			ResidualCash:     investable,
			SkippedPositions: skipped,
			Summary: models.RebalanceSummary{
				Mode:           cfg.Mode,
				CashBefore:     cashBefore,
				CashAfter:      cashBefore,
				TopReasons:     []string{"No eligible securities for this mode"},
				TopAllocations: []string{},
			},
		}, nil
	}

	var res models.RebalanceResult
	if cfg.Mode == models.ModeActive {
		res = activeRebalance(in, candidates)
	} else {
		res = deployCash(in, candidates, len(selected))
	}

	res.InvestableCash = investable
	res.SkippedPositions = skipped
	res.FXOrders = []models.FXTrade{}
	if cfg.AutoFX {
		res.FXOrders = hedgeOrders(res.Allocations, in.Rates, cfg.FXExecutionType, in.TradeDate)
	}
	res.Summary.Mode = cfg.Mode
	res.Summary.OrdersCount = len(res.Allocations)
	res.Summary.FXOrdersCount = len(res.FXOrders)
	res.Summary.CashBefore = cashBefore
	return res, nil
}

// settlementFor returns T1 for US listings ("AAPL US") and T2 otherwise.
func settlementFor(ticker string) models.Horizon {
	if strings.HasSuffix(ticker, " US") {
		return models.HorizonT1
	}
	return models.HorizonT2
}

// activeRebalance sells overweights back to benchmark, largest deviation
// first, then funds underweights, largest deficit first, from investable cash
// plus sale proceeds.
func activeRebalance(in RebalanceInput, candidates []models.Position) models.RebalanceResult {
	nav := navOrOne(in.Portfolio.NavUSD)

	var over, under []models.Position
	for _, p := range candidates {
		switch d := safeNum(p.DiffBps); {
		case d >= activeBandBps:
			over = append(over, p)
		case d <= -activeBandBps:
			under = append(under, p)
		}
	}
	sort.SliceStable(over, func(i, j int) bool { return over[i].DiffBps > over[j].DiffBps })
	sort.SliceStable(under, func(i, j int) bool { return under[i].DiffBps < under[j].DiffBps })

	allocs := []models.RebalanceAllocation{}
	var sold, bought float64
	var sells, buys int

	for _, p := range over {
		fx := fxRate(in.Rates, p.Currency)
		price := safeNum(p.Price)
		excess := safeNum(p.MarketValue) - safeNum(p.IndexWeight)/100*nav
		if excess < minTicketUSD {
			continue
		}
		qty := wholeLots(excess/fx, price)
		if qty <= 0 {
			continue
		}
		notional := qty * price * fx
		sold += notional
		sells++
		allocs = append(allocs, models.RebalanceAllocation{
			Ticker:           p.Ticker,
			Name:             p.Name,
			Currency:         p.Currency,
			Side:             models.SideSell,
			CurrentWeight:    p.Weight,
			TargetWeight:     p.IndexWeight,
			DeficitBps:       p.DiffBps,
			Allocation:       -notional,
			Notional:         notional,
			Quantity:         qty,
			Price:            price,
			Reason:           fmt.Sprintf("Overweight by %s bps → sell to index", fmtBps(p.DiffBps)),
			SettlementBucket: settlementFor(p.Ticker),
		})
	}

	remaining := safeNum(in.InvestableCash) + sold
	for _, p := range under {
		if remaining < minTicketUSD {
			break
		}
		fx := fxRate(in.Rates, p.Currency)
		price := safeNum(p.Price)
		gap := safeNum(p.IndexWeight)/100*nav - safeNum(p.MarketValue)
		buyUSD := min(gap, remaining)
		if buyUSD < minTicketUSD {
			continue
		}
		qty := wholeLots(buyUSD/fx, price)
		if qty <= 0 {
			continue
		}
		notional := qty * price * fx
		bought += notional
		remaining -= notional
		buys++
		allocs = append(allocs, models.RebalanceAllocation{
			Ticker:           p.Ticker,
			Name:             p.Name,
			Currency:         p.Currency,
			Side:             models.SideBuy,
			CurrentWeight:    p.Weight,
			TargetWeight:     p.IndexWeight,
			DeficitBps:       abs(p.DiffBps),
			Allocation:       notional,
			Notional:         notional,
			Quantity:         qty,
			Price:            price,
			Reason:           fmt.Sprintf("Underweight by %s bps → buy to index", fmtBps(abs(p.DiffBps))),
			SettlementBucket: settlementFor(p.Ticker),
		})
	}

	top := topAllocations(allocs, 4, func(a models.RebalanceAllocation) string {
		arrow := "↑"
		if a.Side == models.SideSell {
			arrow = "↓"
		}
		return fmt.Sprintf("%s %s: %s", arrow, a.Ticker, formatMillions(a.Notional))
	})

	return models.RebalanceResult{
		Allocations:   allocs,
		TotalInvested: bought,
		TotalSold:     sold,
		ResidualCash:  remaining,
		Summary: models.RebalanceSummary{
			CashAfter: safeNum(in.Portfolio.CurrentCashUSD) + sold - bought,
			TopReasons: []string{
				fmt.Sprintf("Active rebalance: %d sells, %d buys", sells, buys),
				fmt.Sprintf("Selling %s overweights", formatMillions(sold)),
				fmt.Sprintf("Buying %s underweights", formatMillions(bought)),
			},
			TopAllocations: top,
		},
	}
}

// deployCash spreads investable cash pro-rata to benchmark weight, rounds each
// order down to whole shares, then sweeps any residual above the threshold
// onto the existing orders, largest first. The sweep never opens new orders.
func deployCash(in RebalanceInput, candidates []models.Position, selectedCount int) models.RebalanceResult {
	investable := safeNum(in.InvestableCash)

	totalWeight := 0.0
	for _, p := range candidates {
		totalWeight += safeNum(p.IndexWeight)
	}
	if totalWeight == 0 {
		totalWeight = 1
	}

	allocs := []models.RebalanceAllocation{}
	invested := 0.0
	for _, p := range candidates {
		target := investable * safeNum(p.IndexWeight) / totalWeight
		fx := fxRate(in.Rates, p.Currency)
		price := safeNum(p.Price)
		qty := wholeLots(target/fx, price)
		if qty <= 0 {
			continue
		}
		notional := qty * price * fx
		invested += notional

		reason := fmt.Sprintf("Target weight %.2f%%", p.IndexWeight)
		if in.Config.Mode == models.ModeSelected {
			reason = "User selected"
		}
		allocs = append(allocs, models.RebalanceAllocation{
			Ticker:           p.Ticker,
			Name:             p.Name,
			Currency:         p.Currency,
			Side:             models.SideBuy,
			CurrentWeight:    p.Weight,
			TargetWeight:     p.IndexWeight,
			DeficitBps:       max(0, -safeNum(p.DiffBps)),
			Allocation:       target,
			Notional:         notional,
			Quantity:         qty,
			Price:            price,
			Reason:           reason,
			SettlementBucket: settlementFor(p.Ticker),
		})
	}

	residual := investable - invested
	if residual > residualSweepUSD && len(allocs) > 0 {
		order := make([]int, len(allocs))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool { return allocs[order[i]].Notional > allocs[order[j]].Notional })

		for _, i := range order {
			if residual <= residualSweepUSD {
				break
			}
			a := &allocs[i]
			fx := fxRate(in.Rates, a.Currency)
			extra := wholeLots(residual/fx, a.Price)
			if extra <= 0 {
				continue
			}
			add := extra * a.Price * fx
			a.Quantity += extra
			a.Notional += add
			invested += add
			residual -= add
		}
	}

	reasons := []string{"Pro-rata to benchmark weights"}
	if in.Config.Mode == models.ModeSelected {
		reasons = []string{fmt.Sprintf("%d securities selected", selectedCount)}
	}
	deployedPct := 0.0
	if investable > 0 {
		deployedPct = invested / investable * 100
	}
	reasons = append(reasons, fmt.Sprintf("Investing %.1f%% of investable cash", deployedPct))

	return models.RebalanceResult{
		Allocations:   allocs,
		TotalInvested: invested,
		ResidualCash:  residual,
		Summary: models.RebalanceSummary{
			CashAfter:  safeNum(in.Portfolio.CurrentCashUSD) - invested,
			TopReasons: reasons,
			TopAllocations: topAllocations(allocs, 3, func(a models.RebalanceAllocation) string {
				return fmt.Sprintf("%s: %s", a.Ticker, formatMillions(a.Notional))
			}),
		},
	}
}

// topAllocations renders the n largest orders by notional.
func topAllocations(allocs []models.RebalanceAllocation, n int, render func(models.RebalanceAllocation) string) []string {
	sorted := append([]models.RebalanceAllocation(nil), allocs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Notional > sorted[j].Notional })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]string, len(sorted))
	for i, a := range sorted {
		out[i] = render(a)
	}
	return out
}

func fmtBps(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
