package models

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LadderRequest represents the request body for building the effective cash ladder
type LadderRequest struct {
	CashBuckets []CashBucket `json:"cash_buckets" binding:"required"`
	FXTrades    []FXTrade    `json:"fx_trades"`
	Baskets     []Basket     `json:"baskets"`
	FXRates     FXRates      `json:"fx_rates"`
}

// LadderResponse is the ladder after pending FX and equity activity.
type LadderResponse struct {
	CashBuckets        []CashBucket        `json:"cash_buckets"`
	AvailableByHorizon map[Horizon]float64 `json:"available_by_horizon"`
	TotalCashUSD       float64             `json:"total_cash_usd"`
	Warnings           []Warning           `json:"warnings,omitempty"`
}

// ProjectionRequest represents the request body for a cash projection
type ProjectionRequest struct {
	Portfolio Portfolio `json:"portfolio" binding:"required"`
	Baskets   []Basket  `json:"baskets"`
	FXTrades  []FXTrade `json:"fx_trades"`
	FXRates   FXRates   `json:"fx_rates"`
	Horizon   Horizon   `json:"horizon"`
}

// ProjectionResponse wraps a CashProjection with warnings
type ProjectionResponse struct {
	Projection CashProjection `json:"projection"`
	Warnings   []Warning      `json:"warnings,omitempty"`
}

// InvestableRequest represents the request body for investable cash
type InvestableRequest struct {
	AvailableCash float64 `json:"available_cash"`
	TargetCashPct float64 `json:"target_cash_pct"`
	NavUSD        float64 `json:"nav_usd"`
}

// InvestableResponse is the cash above the target buffer
type InvestableResponse struct {
	InvestableCash float64 `json:"investable_cash"`
}

// SpotToBaseRequest represents the request body for converting foreign cash to USD
type SpotToBaseRequest struct {
	CashBuckets []CashBucket  `json:"cash_buckets" binding:"required"`
	FXRates     FXRates       `json:"fx_rates"`
	TradeDate   *FlexibleDate `json:"trade_date,omitempty"`
}

// SpotToBaseResponse carries the generated trades and the ladder they produce
type SpotToBaseResponse struct {
	FXTrades    []FXTrade    `json:"fx_trades"`
	CashBuckets []CashBucket `json:"cash_buckets"`
	Warnings    []Warning    `json:"warnings,omitempty"`
}

// ReconcileRequest represents the request body for a reconciliation run
type ReconcileRequest struct {
	Portfolio Portfolio       `json:"portfolio" binding:"required"`
	Custodian CustodianFeed   `json:"custodian" binding:"required"`
	FXRates   FXRates         `json:"fx_rates"`
	Tolerance *BreakTolerance `json:"tolerance,omitempty"`
}

// ReconciliationRun is a stored reconciliation with its inputs and audit trail.
type ReconciliationRun struct {
	ID             string             `json:"id"`
	CreatedAt      string             `json:"created_at"`
	CreatedBy      string             `json:"created_by"`
	Portfolio      Portfolio          `json:"portfolio"`
	Custodian      CustodianFeed      `json:"custodian"`
	FXRates        FXRates            `json:"fx_rates"`
	Reconciliation *NAVReconciliation `json:"reconciliation"`
	Audit          []AuditEntry       `json:"-"`
	Warnings       []Warning          `json:"warnings,omitempty"`
}

// AssignOwnerRequest represents the request body for assigning a break owner
type AssignOwnerRequest struct {
	Owner string `json:"owner" binding:"required"`
}

// UpdateStatusRequest represents the request body for moving a break along its workflow
type UpdateStatusRequest struct {
	Status BreakStatus `json:"status" binding:"required"`
}

// ResolveBreakRequest represents the request body for resolving a break
type ResolveBreakRequest struct {
	Resolution Resolution `json:"resolution" binding:"required"`
	Notes      string     `json:"notes"`
}

// UpdateNotesRequest represents the request body for break notes
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// OverrideCauseRequest represents the request body for a manual cause override
type OverrideCauseRequest struct {
	Cause BreakCause `json:"cause" binding:"required"`
	Note  string     `json:"note" binding:"required"`
}

// PushToBookResponse is the book after accepted custodian values are applied
type PushToBookResponse struct {
	Portfolio Portfolio `json:"portfolio"`
	Applied   int       `json:"applied"`
}

// RebalanceRequest represents the request body for a rebalance preview.
// When UsePendingFX is set, investable cash is read from the ladder after
// pending FX trades.
// A nil Config uses the desk defaults.
type RebalanceRequest struct {
	Portfolio    Portfolio        `json:"portfolio" binding:"required"`
	Config       *RebalanceConfig `json:"config,omitempty"`
	FXRates      FXRates          `json:"fx_rates"`
	FXTrades     []FXTrade        `json:"fx_trades"`
	UsePendingFX bool             `json:"use_pending_fx"`
	TradeDate    *FlexibleDate    `json:"trade_date,omitempty"`
}

// RebalanceResponse is the allocator output plus the cash it was sized from
type RebalanceResponse struct {
	Result         RebalanceResult `json:"result"`
	AvailableCash  float64         `json:"available_cash"`
	InvestableCash float64         `json:"investable_cash"`
	Warnings       []Warning       `json:"warnings,omitempty"`
}

// BuildBasketsRequest represents the request body for confirming a rebalance
type BuildBasketsRequest struct {
	Result RebalanceResult `json:"result" binding:"required"`
}

// DeriveRequest represents the request body for recomputing position weights
type DeriveRequest struct {
	Portfolio Portfolio `json:"portfolio" binding:"required"`
	FXRates   FXRates   `json:"fx_rates"`
}

// DeriveResponse carries the recomputed positions and settled cash
type DeriveResponse struct {
	Positions    []Position `json:"positions"`
	TotalCashUSD float64    `json:"total_cash_usd"`
	Warnings     []Warning  `json:"warnings,omitempty"`
}

// BasketsRequest carries the current basket set for OMS actions
type BasketsRequest struct {
	Baskets []Basket `json:"baskets" binding:"required"`
}

// DoNotTradeRequest identifies the order to toggle
type DoNotTradeRequest struct {
	Baskets  []Basket `json:"baskets" binding:"required"`
	BasketID string   `json:"basket_id" binding:"required"`
	OrderID  string   `json:"order_id" binding:"required"`
}

// BasketsResponse is the basket set after an OMS action
type BasketsResponse struct {
	Baskets  []Basket  `json:"baskets"`
	FXTrades []FXTrade `json:"fx_trades,omitempty"`
}

// AuditResponse lists the audit trail of a reconciliation run
type AuditResponse struct {
	RunID   string       `json:"run_id"`
	Entries []AuditEntry `json:"entries"`
}

// ShadowNAVRequest represents the request body for the shadow NAV card
type ShadowNAVRequest struct {
	Portfolio Portfolio     `json:"portfolio" binding:"required"`
	Custodian CustodianFeed `json:"custodian"`
	FXRates   FXRates       `json:"fx_rates"`
}

// ShadowNAVResponse wraps the card with warnings
type ShadowNAVResponse struct {
	Card     ShadowNAVCard `json:"card"`
	Warnings []Warning     `json:"warnings,omitempty"`
}

// FXRatesResponse is the rate table served to callers
type FXRatesResponse struct {
	Rates    FXRates   `json:"rates"`
	Warnings []Warning `json:"warnings,omitempty"`
}
