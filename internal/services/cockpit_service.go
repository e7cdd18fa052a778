package services

import (
	"context"
	"time"

	"github.com/epeers/pmscockpit/internal/models"
	"golang.org/x/sync/errgroup"
)

// CockpitService computes every derived view of a snapshot in one call.
type CockpitService struct {
	fx        *FXRateService
	defaults  models.RebalanceConfig
	tolerance models.BreakTolerance
	now       func() time.Time
}

// NewCockpitService creates a new CockpitService. fx may be nil, in which
// case the snapshot's own rate table is used unchanged.
func NewCockpitService(fx *FXRateService, defaults models.RebalanceConfig, tolerance models.BreakTolerance) *CockpitService {
	return &CockpitService{
		fx:        fx,
		defaults:  defaults,
		tolerance: tolerance,
		now:       time.Now,
	}
}

// Dashboard builds the effective ladder first, then runs the projection,
// reconciliation, shadow NAV and rebalance preview concurrently over it.
// The snapshot is not modified.
func (s *CockpitService) Dashboard(ctx context.Context, snap models.CockpitSnapshot) (models.Dashboard, error) {
	defer TrackTime("CockpitService.Dashboard", time.Now())

	cfg, err := resolveRebalanceConfig(s.defaults, snap.Rebalance)
	if err != nil {
		return models.Dashboard{}, err
	}
	tol := s.tolerance
	if snap.Tolerance != nil {
		tol = *snap.Tolerance
	}
	if err := validateTolerance(tol); err != nil {
		return models.Dashboard{}, err
	}

	p := snap.Portfolio
	rates := snap.FXRates
	if s.fx != nil {
		filled, err := s.fx.Fill(ctx, p, rates)
		if err != nil {
			return models.Dashboard{}, err
		}
		rates = filled
	}
	SnapshotWarnings(ctx, p, rates)

	ladder := EffectiveLadder(p.CashBuckets, snap.FXTrades, snap.Baskets, rates)
	available := CumulativeCashAtHorizon(ladder, cfg.Horizon, rates)
	investable := InvestableCash(available, cfg.TargetCashPct, p.NavUSD)

	d := models.Dashboard{
		EffectiveCashBuckets: ladder,
		AvailableCash:        available,
		InvestableCash:       investable,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Projection = ProjectCash(p, snap.Baskets, snap.FXTrades, rates, cfg.Horizon)
		return nil
	})
	g.Go(func() error {
		r := Reconcile(gctx, p, snap.Custodian, rates, tol)
		r.LastReconciledAt = s.now().UTC().Format(time.RFC3339)
		d.Reconciliation = r
		return nil
	})
	g.Go(func() error {
		d.ShadowNAV = ShadowNAV(gctx, p, snap.Custodian, rates)
		return nil
	})
	g.Go(func() error {
		res, err := Rebalance(RebalanceInput{
			Portfolio:      p,
			Config:         cfg,
			InvestableCash: investable,
			Rates:          rates,
			TradeDate:      s.now(),
		})
		if err != nil {
			return err
		}
		d.Rebalance = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Dashboard{}, err
	}

	d.Checks = SanityChecks(p, ladder, available, investable)
	return d, nil
}
