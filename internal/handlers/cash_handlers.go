package handlers

import (
	"net/http"
	"time"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/services"
	"github.com/gin-gonic/gin"
)

// CashHandler serves the cash ladder endpoints
type CashHandler struct {
	now func() time.Time
}

// NewCashHandler creates a new CashHandler
func NewCashHandler() *CashHandler {
	return &CashHandler{now: time.Now}
}

// Ladder handles POST /cash/ladder
// @Summary Build the effective cash ladder
// @Description Layer pending FX trades and live equity baskets onto base cash buckets
// @Tags cash
// @Accept json
// @Produce json
// @Param request body models.LadderRequest true "Base buckets and pending activity"
// @Success 200 {object} models.LadderResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /cash/ladder [post]
func (h *CashHandler) Ladder(c *gin.Context) {
	var req models.LadderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	services.SnapshotWarnings(ctx, models.Portfolio{NavUSD: 1, CashBuckets: req.CashBuckets}, req.FXRates)

	ladder := services.EffectiveLadder(req.CashBuckets, req.FXTrades, req.Baskets, req.FXRates)
	byHorizon := make(map[models.Horizon]float64, len(models.Horizons))
	for _, hz := range models.Horizons {
		byHorizon[hz] = services.CumulativeCashAtHorizon(ladder, hz, req.FXRates)
	}

	c.JSON(http.StatusOK, models.LadderResponse{
		CashBuckets:        ladder,
		AvailableByHorizon: byHorizon,
		TotalCashUSD:       services.TotalCashUSD(ladder, req.FXRates),
		Warnings:           wc.GetWarnings(),
	})
}

// Projection handles POST /cash/projection
// @Summary Project cash at a horizon
// @Description Combine base cash at the horizon with pending equity and FX flows
// @Tags cash
// @Accept json
// @Produce json
// @Param request body models.ProjectionRequest true "Portfolio and pending activity"
// @Success 200 {object} models.ProjectionResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /cash/projection [post]
func (h *CashHandler) Projection(c *gin.Context) {
	var req models.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Horizon != "" && !req.Horizon.Valid() {
		badRequest(c, "horizon must be one of T, T1, T2, T3, T5")
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	services.SnapshotWarnings(ctx, req.Portfolio, req.FXRates)

	projection := services.ProjectCash(req.Portfolio, req.Baskets, req.FXTrades, req.FXRates, req.Horizon)
	c.JSON(http.StatusOK, models.ProjectionResponse{
		Projection: projection,
		Warnings:   wc.GetWarnings(),
	})
}

// Investable handles POST /cash/investable
// @Summary Compute investable cash
// @Description Available cash above the target cash buffer, never negative
// @Tags cash
// @Accept json
// @Produce json
// @Param request body models.InvestableRequest true "Available cash, target pct and NAV"
// @Success 200 {object} models.InvestableResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /cash/investable [post]
func (h *CashHandler) Investable(c *gin.Context) {
	var req models.InvestableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, models.InvestableResponse{
		InvestableCash: services.InvestableCash(req.AvailableCash, req.TargetCashPct, req.NavUSD),
	})
}

// SpotToBase handles POST /cash/spot-to-base
// @Summary Convert foreign cash to USD
// @Description Raise one pending SPOT trade per non-USD bucket and return the resulting ladder
// @Tags cash
// @Accept json
// @Produce json
// @Param request body models.SpotToBaseRequest true "Cash buckets and rates"
// @Success 200 {object} models.SpotToBaseResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /cash/spot-to-base [post]
func (h *CashHandler) SpotToBase(c *gin.Context) {
	var req models.SpotToBaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	services.SnapshotWarnings(ctx, models.Portfolio{NavUSD: 1, CashBuckets: req.CashBuckets}, req.FXRates)

	trades := services.SpotAllToBase(req.CashBuckets, req.FXRates, req.TradeDate.Or(h.now()))
	c.JSON(http.StatusOK, models.SpotToBaseResponse{
		FXTrades:    trades,
		CashBuckets: services.ApplyPendingFX(req.CashBuckets, trades, req.FXRates),
		Warnings:    wc.GetWarnings(),
	})
}
