package models

// CustodianPosition is a holding as reported by the custodian. It is joined to
// Position by ticker.
type CustodianPosition struct {
	Ticker           string   `json:"ticker"`
	Quantity         float64  `json:"quantity"`
	Price            float64  `json:"price"`
	Currency         Currency `json:"currency"`
	MarketValueLocal float64  `json:"market_value_local"`
	FXRate           float64  `json:"fx_rate"`
	MarketValueUSD   float64  `json:"market_value_usd"`
}

// CustodianFeed is one custodian file: positions plus the reported cash.
type CustodianFeed struct {
	Filename  string              `json:"filename,omitempty"`
	Positions []CustodianPosition `json:"positions"`
	CashUSD   float64             `json:"cash_usd"`
}
