package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/epeers/pmscockpit/internal/middleware"
	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/services"
	"github.com/gin-gonic/gin"
)

// ReconciliationHandler handles reconciliation runs and the break workflow
type ReconciliationHandler struct {
	reconSvc *services.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(reconSvc *services.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconSvc: reconSvc,
	}
}

// Create handles POST /reconciliations
// @Summary Run a reconciliation
// @Description Compare the internal book with a custodian feed, classify breaks and store the run
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param X-Operator header string false "Operator name"
// @Param request body models.ReconcileRequest true "Book, custodian feed, rates and tolerance"
// @Success 201 {object} models.ReconciliationRun
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /reconciliations [post]
func (h *ReconciliationHandler) Create(c *gin.Context) {
	var req models.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.run(c, req)
}

// Upload handles POST /reconciliations/upload
// @Summary Run a reconciliation from a custodian CSV
// @Description Multipart form: "metadata" holds the JSON request without custodian positions, "custodian" is the position CSV
// @Tags reconciliation
// @Accept multipart/form-data
// @Produce json
// @Param X-Operator header string false "Operator name"
// @Param metadata formData string true "ReconcileRequest JSON"
// @Param custodian formData file true "Custodian CSV (ticker, quantity, price, currency[, fx_rate, market_value_local, market_value_usd])"
// @Success 201 {object} models.ReconciliationRun
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /reconciliations/upload [post]
func (h *ReconciliationHandler) Upload(c *gin.Context) {
	metadata := c.PostForm("metadata")
	if metadata == "" {
		badRequest(c, "metadata form field is required")
		return
	}
	var req models.ReconcileRequest
	if err := json.Unmarshal([]byte(metadata), &req); err != nil {
		badRequest(c, "invalid metadata JSON: "+err.Error())
		return
	}

	fh, err := c.FormFile("custodian")
	if err != nil {
		badRequest(c, "custodian file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "failed to open custodian file: "+err.Error())
		return
	}
	defer f.Close()

	positions, err := ParseCustodianCSV(f)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	req.Custodian.Positions = positions
	req.Custodian.Filename = fh.Filename

	h.run(c, req)
}

func (h *ReconciliationHandler) run(c *gin.Context, req models.ReconcileRequest) {
	run, err := h.reconSvc.Run(c.Request.Context(), req, middleware.GetOperator(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, run)
}

// Get handles GET /reconciliations/:id
// @Summary Get a reconciliation run
// @Tags reconciliation
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} models.ReconciliationRun
// @Failure 404 {object} models.ErrorResponse
// @Router /reconciliations/{id} [get]
func (h *ReconciliationHandler) Get(c *gin.Context) {
	run, err := h.reconSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// Audit handles GET /reconciliations/:id/audit
// @Summary Get the audit trail of a run
// @Tags reconciliation
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} models.AuditResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reconciliations/{id}/audit [get]
func (h *ReconciliationHandler) Audit(c *gin.Context) {
	runID := c.Param("id")
	entries, err := h.reconSvc.Audit(c.Request.Context(), runID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AuditResponse{RunID: runID, Entries: entries})
}

// AssignOwner handles PUT /reconciliations/:id/breaks/:breakId/owner
// @Summary Assign a break owner
// @Description Sets the owner; a New break becomes Assigned
// @Tags breaks
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Param breakId path string true "Break ID"
// @Param request body models.AssignOwnerRequest true "Owner"
// @Success 200 {object} models.ReconciliationRun
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reconciliations/{id}/breaks/{breakId}/owner [put]
func (h *ReconciliationHandler) AssignOwner(c *gin.Context) {
	var req models.AssignOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	run, err := h.reconSvc.AssignOwner(c.Request.Context(), c.Param("id"), c.Param("breakId"), req.Owner, middleware.GetOperator(c))
	h.respond(c, run, err)
}

// UpdateStatus handles PUT /reconciliations/:id/breaks/:breakId/status
// @Summary Move a break along its workflow
// @Description Forward-only: New, Assigned, In Progress, then Resolved or Waived
// @Tags breaks
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Param breakId path string true "Break ID"
// @Param request body models.UpdateStatusRequest true "Target status"
// @Success 200 {object} models.ReconciliationRun
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /reconciliations/{id}/breaks/{breakId}/status [put]
func (h *ReconciliationHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	run, err := h.reconSvc.UpdateStatus(c.Request.Context(), c.Param("id"), c.Param("breakId"), req.Status, middleware.GetOperator(c))
	h.respond(c, run, err)
}

// Resolve handles PUT /reconciliations/:id/breaks/:breakId/resolution
// @Summary Resolve a break
// @Description ticket_opened mints a ticket id; unresolved reopens the break
// @Tags breaks
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Param breakId path string true "Break ID"
// @Param request body models.ResolveBreakRequest true "Resolution"
// @Success 200 {object} models.ReconciliationRun
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reconciliations/{id}/breaks/{breakId}/resolution [put]
func (h *ReconciliationHandler) Resolve(c *gin.Context) {
	var req models.ResolveBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	run, err := h.reconSvc.Resolve(c.Request.Context(), c.Param("id"), c.Param("breakId"), req.Resolution, req.Notes, middleware.GetOperator(c))
	h.respond(c, run, err)
}

// UpdateNotes handles PUT /reconciliations/:id/breaks/:breakId/notes
// @Summary Update break notes
// @Tags breaks
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Param breakId path string true "Break ID"
// @Param request body models.UpdateNotesRequest true "Notes"
// @Success 200 {object} models.ReconciliationRun
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reconciliations/{id}/breaks/{breakId}/notes [put]
func (h *ReconciliationHandler) UpdateNotes(c *gin.Context) {
	var req models.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	run, err := h.reconSvc.UpdateNotes(c.Request.Context(), c.Param("id"), c.Param("breakId"), req.Notes, middleware.GetOperator(c))
	h.respond(c, run, err)
}

// OverrideCause handles PUT /reconciliations/:id/breaks/:breakId/cause
// @Summary Override the cause of a break
// @Description The automated analysis is kept alongside the override; a note is required
// @Tags breaks
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Param breakId path string true "Break ID"
// @Param request body models.OverrideCauseRequest true "Cause and justification"
// @Success 200 {object} models.ReconciliationRun
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reconciliations/{id}/breaks/{breakId}/cause [put]
func (h *ReconciliationHandler) OverrideCause(c *gin.Context) {
	var req models.OverrideCauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	run, err := h.reconSvc.OverrideCause(c.Request.Context(), c.Param("id"), c.Param("breakId"), req.Cause, req.Note, middleware.GetOperator(c))
	h.respond(c, run, err)
}

// PushToBook handles POST /reconciliations/:id/push
// @Summary Push accepted custodian values to the book
// @Description Breaks resolved accept_custodian overwrite the stored book's quantities, prices and cash
// @Tags reconciliation
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} models.PushToBookResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reconciliations/{id}/push [post]
func (h *ReconciliationHandler) PushToBook(c *gin.Context) {
	p, applied, err := h.reconSvc.PushToBook(c.Request.Context(), c.Param("id"), middleware.GetOperator(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PushToBookResponse{Portfolio: p, Applied: applied})
}

func (h *ReconciliationHandler) respond(c *gin.Context, run *models.ReconciliationRun, err error) {
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
