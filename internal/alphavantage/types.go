package alphavantage

import "time"

// ExchangeRateResponse represents the CURRENCY_EXCHANGE_RATE response.
// AlphaVantage reports throttling and bad keys with a 200 status and a
// Note, Information or Error Message field instead of data.
type ExchangeRateResponse struct {
	Rate         *ExchangeRateQuote `json:"Realtime Currency Exchange Rate"`
	Note         string             `json:"Note"`
	Information  string             `json:"Information"`
	ErrorMessage string             `json:"Error Message"`
}

// ExchangeRateQuote is a single realtime FX quote
type ExchangeRateQuote struct {
	FromCode      string `json:"1. From_Currency Code"`
	FromName      string `json:"2. From_Currency Name"`
	ToCode        string `json:"3. To_Currency Code"`
	ToName        string `json:"4. To_Currency Name"`
	ExchangeRate  string `json:"5. Exchange Rate"`
	LastRefreshed string `json:"6. Last Refreshed"`
	TimeZone      string `json:"7. Time Zone"`
	BidPrice      string `json:"8. Bid Price"`
	AskPrice      string `json:"9. Ask Price"`
}

// ParsedExchangeRate is a quote with numeric fields parsed
type ParsedExchangeRate struct {
	From          string
	To            string
	Rate          float64
	Bid           float64
	Ask           float64
	LastRefreshed time.Time
}
