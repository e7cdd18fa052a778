package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/pmscockpit/internal/models"
)

// ErrInvalidHorizon is returned for a rebalance horizon outside T, T1, T2.
var ErrInvalidHorizon = errors.New("rebalance horizon must be T, T1 or T2")

// RebalanceService sizes a rebalance from the cash ladder and runs the
// allocator. Requests without a config use the desk defaults.
type RebalanceService struct {
	fx       *FXRateService
	defaults models.RebalanceConfig
	now      func() time.Time
}

// NewRebalanceService creates a new RebalanceService. fx may be nil.
func NewRebalanceService(fx *FXRateService, defaults models.RebalanceConfig) *RebalanceService {
	return &RebalanceService{fx: fx, defaults: defaults, now: time.Now}
}

// resolveRebalanceConfig fills unset fields of cfg from defaults and
// validates the horizon. A nil cfg is the defaults.
func resolveRebalanceConfig(defaults models.RebalanceConfig, cfg *models.RebalanceConfig) (models.RebalanceConfig, error) {
	out := defaults
	if cfg != nil {
		out = *cfg
		if out.Mode == "" {
			out.Mode = defaults.Mode
		}
		if out.Horizon == "" {
			out.Horizon = defaults.Horizon
		}
		if out.FXExecutionType == "" {
			out.FXExecutionType = defaults.FXExecutionType
		}
	}
	if out.Horizon == "" {
		out.Horizon = defaultSettlement
	}
	switch out.Horizon {
	case models.HorizonT, models.HorizonT1, models.HorizonT2:
	default:
		return out, fmt.Errorf("%w: got %q", ErrInvalidHorizon, out.Horizon)
	}
	return out, nil
}

// Preview computes available and investable cash at the configured horizon
// and returns the allocator result. With UsePendingFX the ladder includes
// pending FX trades.
func (s *RebalanceService) Preview(ctx context.Context, req models.RebalanceRequest) (models.RebalanceResponse, error) {
	defer TrackTime("RebalanceService.Preview", time.Now())

	cfg, err := resolveRebalanceConfig(s.defaults, req.Config)
	if err != nil {
		return models.RebalanceResponse{}, err
	}

	rates := req.FXRates
	if s.fx != nil {
		if rates, err = s.fx.Fill(ctx, req.Portfolio, rates); err != nil {
			return models.RebalanceResponse{}, err
		}
	}
	SnapshotWarnings(ctx, req.Portfolio, rates)

	ladder := req.Portfolio.CashBuckets
	if req.UsePendingFX {
		ladder = ApplyPendingFX(ladder, req.FXTrades, rates)
	}
	available := CumulativeCashAtHorizon(ladder, cfg.Horizon, rates)
	investable := InvestableCash(available, cfg.TargetCashPct, req.Portfolio.NavUSD)

	res, err := Rebalance(RebalanceInput{
		Portfolio:      req.Portfolio,
		Config:         cfg,
		InvestableCash: investable,
		Rates:          rates,
		TradeDate:      req.TradeDate.Or(s.now()),
	})
	if err != nil {
		return models.RebalanceResponse{}, err
	}
	return models.RebalanceResponse{
		Result:         res,
		AvailableCash:  available,
		InvestableCash: investable,
	}, nil
}
