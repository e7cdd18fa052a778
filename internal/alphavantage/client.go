package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Alphavantage is a market data API that also publishes realtime FX quotes.
// It is a subscription service, but provides free API access
// https://www.alphavantage.co/documentation/#currency-exchange
const defaultBaseURL = "https://www.alphavantage.co/query"

// ErrThrottled is returned when the API answers with a rate-limit note.
var ErrThrottled = errors.New("alphavantage: request throttled")

// Client is an HTTP client for the AlphaVantage API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new AlphaVantage client
func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL)
}

// NewClientWithBaseURL creates a new AlphaVantage client with a custom base URL (for testing)
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetExchangeRate fetches the realtime rate for one unit of from expressed in to.
func (c *Client) GetExchangeRate(ctx context.Context, from, to string) (*ParsedExchangeRate, error) {
	params := url.Values{}
	params.Set("function", "CURRENCY_EXCHANGE_RATE")
	params.Set("from_currency", from)
	params.Set("to_currency", to)
	params.Set("apikey", c.apiKey)

	resp, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var rateResp ExchangeRateResponse
	if err := json.Unmarshal(body, &rateResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	switch {
	case rateResp.Note != "" || rateResp.Information != "":
		return nil, fmt.Errorf("%w: %s", ErrThrottled, strings.TrimSpace(rateResp.Note+" "+rateResp.Information))
	case rateResp.ErrorMessage != "":
		return nil, fmt.Errorf("alphavantage error for %s/%s: %s", from, to, rateResp.ErrorMessage)
	case rateResp.Rate == nil:
		return nil, fmt.Errorf("no exchange rate returned for %s/%s", from, to)
	}

	q := rateResp.Rate
	rate, err := strconv.ParseFloat(q.ExchangeRate, 64)
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("invalid exchange rate %q for %s/%s", q.ExchangeRate, from, to)
	}
	bid, _ := strconv.ParseFloat(q.BidPrice, 64)
	ask, _ := strconv.ParseFloat(q.AskPrice, 64)
	refreshed, _ := time.Parse("2006-01-02 15:04:05", q.LastRefreshed)

	return &ParsedExchangeRate{
		From:          q.FromCode,
		To:            q.ToCode,
		Rate:          rate,
		Bid:           bid,
		Ask:           ask,
		LastRefreshed: refreshed,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, params url.Values) (*http.Response, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	return resp, nil
}
