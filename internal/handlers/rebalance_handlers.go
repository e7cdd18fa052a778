package handlers

import (
	"net/http"
	"time"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/services"
	"github.com/gin-gonic/gin"
)

// RebalanceHandler handles rebalance previews and the basket OMS actions
type RebalanceHandler struct {
	rebalanceSvc *services.RebalanceService
	now          func() time.Time
}

// NewRebalanceHandler creates a new RebalanceHandler
func NewRebalanceHandler(rebalanceSvc *services.RebalanceService) *RebalanceHandler {
	return &RebalanceHandler{
		rebalanceSvc: rebalanceSvc,
		now:          time.Now,
	}
}

// Preview handles POST /rebalance
// @Summary Preview a rebalance
// @Description Size investable cash at the horizon and allocate it under the chosen mode
// @Tags rebalance
// @Accept json
// @Produce json
// @Param request body models.RebalanceRequest true "Portfolio, policy and rates"
// @Success 200 {object} models.RebalanceResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /rebalance [post]
func (h *RebalanceHandler) Preview(c *gin.Context) {
	var req models.RebalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	resp, err := h.rebalanceSvc.Preview(ctx, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	resp.Warnings = wc.GetWarnings()
	c.JSON(http.StatusOK, resp)
}

// BuildBaskets handles POST /rebalance/baskets
// @Summary Confirm a rebalance into baskets
// @Description Builds the equity basket and, when hedges exist, the FX basket and pending FX trades
// @Tags baskets
// @Accept json
// @Produce json
// @Param request body models.BuildBasketsRequest true "Confirmed rebalance result"
// @Success 200 {object} models.BasketsResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /rebalance/baskets [post]
func (h *RebalanceHandler) BuildBaskets(c *gin.Context) {
	var req models.BuildBasketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	baskets, trades := services.BuildBaskets(req.Result, h.now())
	c.JSON(http.StatusOK, models.BasketsResponse{Baskets: baskets, FXTrades: trades})
}

// Route handles POST /baskets/route
// @Summary Route pending baskets
// @Description Do-not-trade orders are cancelled, the rest take a simulated partial fill
// @Tags baskets
// @Accept json
// @Produce json
// @Param request body models.BasketsRequest true "Current baskets"
// @Success 200 {object} models.BasketsResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /baskets/route [post]
func (h *RebalanceHandler) Route(c *gin.Context) {
	var req models.BasketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, models.BasketsResponse{Baskets: services.RouteBaskets(req.Baskets)})
}

// Cancel handles POST /baskets/cancel
// @Summary Cancel all baskets
// @Tags baskets
// @Accept json
// @Produce json
// @Param request body models.BasketsRequest true "Current baskets"
// @Success 200 {object} models.BasketsResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /baskets/cancel [post]
func (h *RebalanceHandler) Cancel(c *gin.Context) {
	var req models.BasketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, models.BasketsResponse{Baskets: services.CancelBaskets(req.Baskets)})
}

// DoNotTrade handles POST /baskets/do-not-trade
// @Summary Toggle do-not-trade on a pending order
// @Tags baskets
// @Accept json
// @Produce json
// @Param request body models.DoNotTradeRequest true "Baskets and the order to toggle"
// @Success 200 {object} models.BasketsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /baskets/do-not-trade [post]
func (h *RebalanceHandler) DoNotTrade(c *gin.Context) {
	var req models.DoNotTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	baskets, err := services.ToggleDoNotTrade(req.Baskets, req.BasketID, req.OrderID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.BasketsResponse{Baskets: baskets})
}
