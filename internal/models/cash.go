package models

// ProjectionStatus is the coarse progress tag of a cash projection
type ProjectionStatus string

const (
	ProjectionCurrent   ProjectionStatus = "current"
	ProjectionProjected ProjectionStatus = "projected"
	ProjectionPending   ProjectionStatus = "pending"
	ProjectionRouted    ProjectionStatus = "routed"
)

// CashProjection is the current -> projected cash view at one horizon.
type CashProjection struct {
	Horizon          Horizon          `json:"horizon"`
	AvailableCashUSD float64          `json:"available_cash_usd"`
	AvailableCashPct float64          `json:"available_cash_pct"`
	PendingBuysUSD   float64          `json:"pending_buys_usd"`
	PendingSellsUSD  float64          `json:"pending_sells_usd"`
	PendingFXNetUSD  float64          `json:"pending_fx_net_usd"`
	ProjectedCashUSD float64          `json:"projected_cash_usd"`
	ProjectedCashPct float64          `json:"projected_cash_pct"`
	Status           ProjectionStatus `json:"status"`
}
