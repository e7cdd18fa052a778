package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/epeers/pmscockpit/internal/alphavantage"
	"github.com/epeers/pmscockpit/internal/cache"
	"github.com/epeers/pmscockpit/internal/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentQuotes bounds parallel quote requests to the rate provider.
const maxConcurrentQuotes = 4

// FXRateService serves the USD rate table. Live quotes come from the cache or
// AlphaVantage; a currency with no live quote falls back to the desk table
// with a W3001 warning. Without a client the desk table is served as is.
type FXRateService struct {
	cache    *cache.MemoryCache
	avClient *alphavantage.Client
	desk     models.FXRates
}

// NewFXRateService creates a new FXRateService. avClient may be nil.
func NewFXRateService(c *cache.MemoryCache, avClient *alphavantage.Client, desk models.FXRates) *FXRateService {
	d := make(models.FXRates, len(desk)+1)
	for k, v := range desk {
		d[k] = v
	}
	d[models.BaseCurrency] = 1
	return &FXRateService{cache: c, avClient: avClient, desk: d}
}

// Rates returns a rate for every requested currency plus USD. An empty
// request returns every currency in the desk table. Provider failures never
// fail the call.
func (s *FXRateService) Rates(ctx context.Context, currencies []models.Currency) (models.FXRates, error) {
	defer TrackTime("FXRateService.Rates", time.Now())

	if len(currencies) == 0 {
		for c := range s.desk {
			currencies = append(currencies, c)
		}
		sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })
	}

	out := models.FXRates{models.BaseCurrency: 1}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQuotes)
	for _, ccy := range currencies {
		if ccy == models.BaseCurrency || ccy == "" {
			continue
		}
		g.Go(func() error {
			rate := s.rate(gctx, ctx, ccy)
			mu.Lock()
			out[ccy] = rate
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rate resolves one currency. Warnings go to warnCtx, which carries the
// caller's collector.
func (s *FXRateService) rate(ctx, warnCtx context.Context, ccy models.Currency) float64 {
	if s.cache != nil {
		if r, ok := s.cache.GetRate(ccy); ok {
			return r
		}
	}

	if s.avClient != nil {
		q, err := s.avClient.GetExchangeRate(ctx, string(ccy), string(models.BaseCurrency))
		if err == nil {
			if s.cache != nil {
				s.cache.SetRate(ccy, q.Rate)
			}
			return q.Rate
		}
		log.WithError(err).WithField("currency", ccy).Warn("live FX quote unavailable, using desk rate")
		desk := fxRate(s.desk, ccy)
		AddWarning(warnCtx, models.Warning{
			Code:    models.WarnFXFallback,
			Message: fmt.Sprintf("live %s/USD quote unavailable, desk rate %.4f used", ccy, desk),
		})
		return desk
	}

	if _, ok := s.desk[ccy]; !ok {
		AddWarning(warnCtx, models.Warning{
			Code:    models.WarnUnmappedCurrency,
			Message: fmt.Sprintf("no FX rate for %s, using 1.0", ccy),
		})
	}
	return fxRate(s.desk, ccy)
}

// Fill returns rates with every currency used by p resolved. Entries already
// present in rates win.
func (s *FXRateService) Fill(ctx context.Context, p models.Portfolio, rates models.FXRates) (models.FXRates, error) {
	seen := make(map[models.Currency]bool)
	var missing []models.Currency
	need := func(c models.Currency) {
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		if safeNum(rates[c]) == 0 && c != models.BaseCurrency {
			missing = append(missing, c)
		}
	}
	for _, pos := range p.Positions {
		need(pos.Currency)
	}
	for _, b := range p.CashBuckets {
		need(b.Currency)
	}

	out := make(models.FXRates, len(rates)+len(missing)+1)
	for k, v := range rates {
		out[k] = v
	}
	out[models.BaseCurrency] = 1
	if len(missing) == 0 {
		return out, nil
	}
	fetched, err := s.Rates(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, c := range missing {
		out[c] = fetched[c]
	}
	return out, nil
}
