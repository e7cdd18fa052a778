package models

// Currency is an ISO currency code. USD is the base currency.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCHF Currency = "CHF"
	CurrencyJPY Currency = "JPY"
)

// BaseCurrency is the reporting currency for NAV and all *USD fields.
const BaseCurrency = CurrencyUSD

// FXRates maps a currency to its USD value of one local unit (EUR 1.085 means
// 1 EUR = 1.085 USD). USD is always 1.0.
type FXRates map[Currency]float64

// Horizon names a settlement bucket on the cash ladder
type Horizon string

const (
	HorizonT  Horizon = "T"
	HorizonT1 Horizon = "T1"
	HorizonT2 Horizon = "T2"
	HorizonT3 Horizon = "T3"
	HorizonT5 Horizon = "T5"
)

// Horizons is the ordered ladder. Later entries include everything settled at
// earlier entries.
var Horizons = []Horizon{HorizonT, HorizonT1, HorizonT2, HorizonT3, HorizonT5}

// TerminalHorizon is the last column of the ladder; CashBucket.Total mirrors it.
const TerminalHorizon = HorizonT5

// Valid reports whether h is one of the ladder columns.
func (h Horizon) Valid() bool {
	for _, x := range Horizons {
		if x == h {
			return true
		}
	}
	return false
}

// Position is one book-of-record holding.
// MarketValue is in USD; Weight and IndexWeight are percentages of NAV
// (2.5 = 2.5%); DiffBps is the active weight in basis points.
type Position struct {
	Ticker      string   `json:"ticker"`
	Name        string   `json:"name,omitempty"`
	Exchange    string   `json:"exchange,omitempty"`
	Sector      string   `json:"sector,omitempty"`
	Currency    Currency `json:"currency"`
	Quantity    float64  `json:"quantity"`
	Price       float64  `json:"price"`
	MarketValue float64  `json:"market_value"`
	Weight      float64  `json:"weight"`
	IndexWeight float64  `json:"index_weight"`
	DiffBps     float64  `json:"diff_bps"`
	Tradable    bool     `json:"tradable"`
	Restricted  bool     `json:"restricted,omitempty"`
	TradeQty    *float64 `json:"trade_qty,omitempty"`
}

// CashBucket is a per-currency cumulative cash ledger. Each horizon column
// includes every flow settled at or before that horizon.
type CashBucket struct {
	Currency Currency `json:"currency"`
	T        float64  `json:"T"`
	T1       float64  `json:"T1"`
	T2       float64  `json:"T2"`
	T3       float64  `json:"T3"`
	T5       float64  `json:"T5"`
	Total    float64  `json:"total"`
	EquivUSD float64  `json:"equiv_usd"`
}

// At returns the local amount in column h. Unknown horizons read as zero.
func (b CashBucket) At(h Horizon) float64 {
	switch h {
	case HorizonT:
		return b.T
	case HorizonT1:
		return b.T1
	case HorizonT2:
		return b.T2
	case HorizonT3:
		return b.T3
	case HorizonT5:
		return b.T5
	}
	return 0
}

// Add adds amount to column h only.
func (b *CashBucket) Add(h Horizon, amount float64) {
	switch h {
	case HorizonT:
		b.T += amount
	case HorizonT1:
		b.T1 += amount
	case HorizonT2:
		b.T2 += amount
	case HorizonT3:
		b.T3 += amount
	case HorizonT5:
		b.T5 += amount
	}
}

// Portfolio is the internal book-of-record snapshot.
type Portfolio struct {
	Name              string       `json:"name"`
	Benchmark         string       `json:"benchmark"`
	NavUSD            float64      `json:"nav_usd"`
	CurrentCashPct    float64      `json:"current_cash_pct"`
	CurrentCashUSD    float64      `json:"current_cash_usd"`
	Positions         []Position   `json:"positions"`
	CashBuckets       []CashBucket `json:"cash_buckets"`
	DataAsOf          string       `json:"data_as_of,omitempty"`
	SharesOutstanding float64      `json:"shares_outstanding,omitempty"`
	AdminNAV          float64      `json:"admin_nav,omitempty"`
	AdminNAVAsOf      string       `json:"admin_nav_as_of,omitempty"`
	ManagementFeeBps  float64      `json:"management_fee_bps,omitempty"`
}
