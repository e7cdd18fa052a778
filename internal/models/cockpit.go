package models

// CockpitSnapshot is a complete, caller-owned view of one portfolio's state.
type CockpitSnapshot struct {
	Portfolio Portfolio        `json:"portfolio" binding:"required"`
	Custodian CustodianFeed    `json:"custodian"`
	FXRates   FXRates          `json:"fx_rates"`
	FXTrades  []FXTrade        `json:"fx_trades"`
	Baskets   []Basket         `json:"baskets"`
	Tolerance *BreakTolerance  `json:"tolerance,omitempty"`
	Rebalance *RebalanceConfig `json:"rebalance,omitempty"`
}

// CheckStatus is the outcome of a snapshot sanity check
type CheckStatus string

const (
	CheckPassed CheckStatus = "passed"
	CheckFailed CheckStatus = "failed"
)

// SanityCheck is one named consistency check over a snapshot.
type SanityCheck struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      CheckStatus `json:"status"`
}

// Dashboard is every derived view of a snapshot, computed together.
type Dashboard struct {
	EffectiveCashBuckets []CashBucket       `json:"effective_cash_buckets"`
	AvailableCash        float64            `json:"available_cash"`
	InvestableCash       float64            `json:"investable_cash"`
	Projection           CashProjection     `json:"projection"`
	Reconciliation       *NAVReconciliation `json:"reconciliation"`
	ShadowNAV            ShadowNAVCard      `json:"shadow_nav"`
	Rebalance            RebalanceResult    `json:"rebalance"`
	Checks               []SanityCheck      `json:"checks"`
	Warnings             []Warning          `json:"warnings,omitempty"`
}
