package models

// FXExecutionType is how an FX order is executed
type FXExecutionType string

const (
	FXExecutionWMR  FXExecutionType = "WMR"  // benchmark fix
	FXExecutionSpot FXExecutionType = "SPOT" // market spot
)

// FXStatus is the lifecycle of an FX trade
type FXStatus string

const (
	FXStatusPending   FXStatus = "Pending"
	FXStatusSettled   FXStatus = "Settled"
	FXStatusCancelled FXStatus = "Cancelled"
)

// FXSource records where an FX trade came from
type FXSource string

const (
	FXSourceManual     FXSource = "Manual"
	FXSourceRebalance  FXSource = "Rebalance"
	FXSourceSpotToBase FXSource = "SpotToBase"
)

// SettlementType is the legacy FX settlement convention.
type SettlementType string

const (
	SettlementON   SettlementType = "ON"
	SettlementTOM  SettlementType = "TOM"
	SettlementSpot SettlementType = "SPOT"
)

// FXTrade is a foreign-exchange order. Only Status changes after creation.
type FXTrade struct {
	ID               string          `json:"id,omitempty"`
	SellCcy          Currency        `json:"sell_ccy"`
	BuyCcy           Currency        `json:"buy_ccy"`
	SellAmt          float64         `json:"sell_amt"`
	BuyAmt           float64         `json:"buy_amt"`
	FXRate           float64         `json:"fx_rate"`
	TradeDate        string          `json:"trade_date"`
	SettleDate       string          `json:"settle_date"`
	ExecutionType    FXExecutionType `json:"execution_type"`
	SettlementBucket Horizon         `json:"settlement_bucket"`
	Status           FXStatus        `json:"status"`
	Source           FXSource        `json:"source"`
	CreatedAt        string          `json:"created_at,omitempty"`
}

// OrderSide is Buy or Sell
type OrderSide string

const (
	SideBuy  OrderSide = "Buy"
	SideSell OrderSide = "Sell"
)

// OrderType distinguishes equity from FX orders within baskets
type OrderType string

const (
	OrderTypeEquity OrderType = "Equity"
	OrderTypeFX     OrderType = "FX"
)

// OrderStatus is the execution status of an order or basket
type OrderStatus string

const (
	OrderPending     OrderStatus = "Pending"
	OrderRouted      OrderStatus = "Routed"
	OrderPartialFill OrderStatus = "PartialFill"
	OrderFilled      OrderStatus = "Filled"
	OrderCancelled   OrderStatus = "Cancelled"
)

// OrderState tracks a basket from projection to settlement
type OrderState string

const (
	StateProjected OrderState = "projected"
	StateRouted    OrderState = "routed"
	StateFilled    OrderState = "filled"
	StateSettled   OrderState = "settled"
)

// Order is one line of a basket. DoNotTrade removes it from execution without
// deleting it.
type Order struct {
	ID               string          `json:"id"`
	Ticker           string          `json:"ticker"`
	Side             OrderSide       `json:"side"`
	Type             OrderType       `json:"type"`
	Currency         Currency        `json:"currency"`
	Quantity         float64         `json:"quantity,omitempty"`
	NotionalUSD      float64         `json:"notional_usd"`
	PctOfBasket      float64         `json:"pct_of_basket"`
	FXMid            string          `json:"fx_mid,omitempty"`
	FXExecutionType  FXExecutionType `json:"fx_execution_type,omitempty"`
	SettlementBucket Horizon         `json:"settlement_bucket,omitempty"`
	Status           OrderStatus     `json:"status"`
	FillPct          float64         `json:"fill_pct"`
	DoNotTrade       bool            `json:"do_not_trade,omitempty"`
}

// Basket is a batch of orders generated together. Status is the coarsened
// aggregate of its orders' statuses.
type Basket struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Timestamp        string      `json:"timestamp"`
	Type             OrderType   `json:"type"`
	Orders           []Order     `json:"orders"`
	TotalNotionalUSD float64     `json:"total_notional_usd"`
	Status           OrderStatus `json:"status"`
	FillPct          float64     `json:"fill_pct"`
	OrderState       OrderState  `json:"order_state,omitempty"`
}
