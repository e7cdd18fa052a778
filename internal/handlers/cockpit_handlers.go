package handlers

import (
	"net/http"
	"strings"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/services"
	"github.com/gin-gonic/gin"
)

// CockpitHandler serves the dashboard, shadow NAV card, derived positions
// and the FX rate table
type CockpitHandler struct {
	cockpitSvc *services.CockpitService
	fxSvc      *services.FXRateService
}

// NewCockpitHandler creates a new CockpitHandler
func NewCockpitHandler(cockpitSvc *services.CockpitService, fxSvc *services.FXRateService) *CockpitHandler {
	return &CockpitHandler{
		cockpitSvc: cockpitSvc,
		fxSvc:      fxSvc,
	}
}

// Dashboard handles POST /cockpit
// @Summary Compute the cockpit dashboard
// @Description Effective ladder, projection, reconciliation, shadow NAV, rebalance preview and sanity checks for one snapshot
// @Tags cockpit
// @Accept json
// @Produce json
// @Param request body models.CockpitSnapshot true "Snapshot"
// @Success 200 {object} models.Dashboard
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /cockpit [post]
func (h *CockpitHandler) Dashboard(c *gin.Context) {
	var snap models.CockpitSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	d, err := h.cockpitSvc.Dashboard(ctx, snap)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	d.Warnings = wc.GetWarnings()
	c.JSON(http.StatusOK, d)
}

// ShadowCard handles POST /nav/shadow-card
// @Summary Build the shadow NAV card
// @Description Shadow NAV against the administrator NAV with the attribution bridge
// @Tags nav
// @Accept json
// @Produce json
// @Param request body models.ShadowNAVRequest true "Portfolio, custodian feed and rates"
// @Success 200 {object} models.ShadowNAVResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /nav/shadow-card [post]
func (h *CockpitHandler) ShadowCard(c *gin.Context) {
	var req models.ShadowNAVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	card := services.ShadowNAV(ctx, req.Portfolio, req.Custodian, req.FXRates)
	c.JSON(http.StatusOK, models.ShadowNAVResponse{
		Card:     card,
		Warnings: wc.GetWarnings(),
	})
}

// Derive handles POST /portfolio/derive
// @Summary Recompute position values and weights
// @Description Market value from quantity, price and FX; weight as pct of NAV; active weight in bps
// @Tags cockpit
// @Accept json
// @Produce json
// @Param request body models.DeriveRequest true "Portfolio and rates"
// @Success 200 {object} models.DeriveResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /portfolio/derive [post]
func (h *CockpitHandler) Derive(c *gin.Context) {
	var req models.DeriveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	services.SnapshotWarnings(ctx, req.Portfolio, req.FXRates)
	c.JSON(http.StatusOK, models.DeriveResponse{
		Positions:    services.DerivePositions(req.Portfolio, req.FXRates),
		TotalCashUSD: services.TotalCashUSD(req.Portfolio.CashBuckets, req.FXRates),
		Warnings:     wc.GetWarnings(),
	})
}

// FXRates handles GET /fx/rates
// @Summary Get USD FX rates
// @Description Live rates where available, desk rates otherwise
// @Tags fx
// @Produce json
// @Param currencies query string false "Comma-separated currency codes (default: desk table)"
// @Success 200 {object} models.FXRatesResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /fx/rates [get]
func (h *CockpitHandler) FXRates(c *gin.Context) {
	var currencies []models.Currency
	for _, s := range strings.Split(c.Query("currencies"), ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			currencies = append(currencies, models.Currency(s))
		}
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	rates, err := h.fxSvc.Rates(ctx, currencies)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.FXRatesResponse{
		Rates:    rates,
		Warnings: wc.GetWarnings(),
	})
}
