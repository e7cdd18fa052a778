package models

// RebalanceMode selects the allocation policy
type RebalanceMode string

const (
	ModeEverything RebalanceMode = "everything"
	ModeSelected   RebalanceMode = "selected"
	ModeActive     RebalanceMode = "active"
)

// Valid reports whether m is a known mode
func (m RebalanceMode) Valid() bool {
	return m == ModeEverything || m == ModeSelected || m == ModeActive
}

// RebalanceConfig is the caller's policy choice.
// TargetCashPct is a percentage of NAV (0.5 = 0.5%).
type RebalanceConfig struct {
	Mode            RebalanceMode   `json:"mode"`
	Horizon         Horizon         `json:"horizon"`
	TargetCashPct   float64         `json:"target_cash_pct"`
	AutoFX          bool            `json:"auto_fx"`
	FXExecutionType FXExecutionType `json:"fx_execution_type"`
	SelectedTickers []string        `json:"selected_tickers,omitempty"`
}

// RebalanceAllocation is one proposed equity order. Allocation is signed:
// negative for sells.
type RebalanceAllocation struct {
	Ticker           string    `json:"ticker"`
	Name             string    `json:"name,omitempty"`
	Currency         Currency  `json:"currency"`
	Side             OrderSide `json:"side"`
	CurrentWeight    float64   `json:"current_weight"`
	TargetWeight     float64   `json:"target_weight"`
	DeficitBps       float64   `json:"deficit_bps"`
	Allocation       float64   `json:"allocation"`
	Notional         float64   `json:"notional"`
	Quantity         float64   `json:"quantity"`
	Price            float64   `json:"price"`
	Reason           string    `json:"reason"`
	SettlementBucket Horizon   `json:"settlement_bucket"`
}

// SkippedPosition records why an otherwise known position was excluded.
type SkippedPosition struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// RebalanceSummary carries the display-oriented fields of a result.
type RebalanceSummary struct {
	Mode           RebalanceMode `json:"mode"`
	OrdersCount    int           `json:"orders_count"`
	FXOrdersCount  int           `json:"fx_orders_count"`
	CashBefore     float64       `json:"cash_before"`
	CashAfter      float64       `json:"cash_after"`
	TopReasons     []string      `json:"top_reasons"`
	TopAllocations []string      `json:"top_allocations"`
}

// RebalanceResult is the allocator output.
type RebalanceResult struct {
	Allocations      []RebalanceAllocation `json:"allocations"`
	FXOrders         []FXTrade             `json:"fx_orders"`
	InvestableCash   float64               `json:"investable_cash"`
	TotalInvested    float64               `json:"total_invested"`
	TotalSold        float64               `json:"total_sold"`
	ResidualCash     float64               `json:"residual_cash"`
	SkippedPositions []SkippedPosition     `json:"skipped_positions"`
	Summary          RebalanceSummary      `json:"summary"`
}
