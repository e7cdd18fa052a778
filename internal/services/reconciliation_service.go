package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/repository"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrRunNotFound       = repository.ErrRunNotFound
	ErrBreakNotFound     = errors.New("break not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidResolution = errors.New("invalid resolution")
	ErrInvalidCause      = errors.New("invalid cause override")
	ErrInvalidTolerance  = errors.New("tolerance values must be non-negative")
	ErrInvalidMode       = errors.New("invalid rebalance mode")
	ErrNoSelection       = errors.New("selected mode requires at least one ticker")
	ErrBasketNotFound    = errors.New("basket not found")
	ErrOrderNotFound     = errors.New("order not found")
)

// Audit actions
const (
	actionReconcile     = "reconcile"
	actionAssignOwner   = "assign_owner"
	actionUpdateStatus  = "update_status"
	actionResolve       = "resolve"
	actionUpdateNotes   = "update_notes"
	actionOverrideCause = "override_cause"
	actionPushToBook    = "push_to_book"
)

// ReconciliationService runs reconciliations and drives the break workflow
// against stored runs. Every mutation is recorded in the run's audit trail.
type ReconciliationService struct {
	repo      *repository.ReconciliationRepository
	tolerance models.BreakTolerance
	now       func() time.Time
}

// NewReconciliationService creates a new ReconciliationService. tolerance is
// used for requests that carry none.
func NewReconciliationService(repo *repository.ReconciliationRepository, tolerance models.BreakTolerance) *ReconciliationService {
	return &ReconciliationService{
		repo:      repo,
		tolerance: tolerance,
		now:       time.Now,
	}
}

// Reconcile runs the break classifier over one book/custodian pair without
// storing anything.
func Reconcile(ctx context.Context, p models.Portfolio, custodian models.CustodianFeed, rates models.FXRates, tol models.BreakTolerance) *models.NAVReconciliation {
	internalCash := safeNum(p.CurrentCashUSD)
	if len(p.CashBuckets) > 0 {
		internalCash = 0
		for _, b := range p.CashBuckets {
			internalCash += safeNum(b.T) * rateFor(ctx, rates, b.Currency)
		}
	}
	for _, c := range custodian.Positions {
		rateFor(ctx, rates, c.Currency)
	}
	return ReconcileNAV(ReconcileInput{
		Custodian:        custodian.Positions,
		Internal:         p.Positions,
		CustodianCashUSD: custodian.CashUSD,
		InternalCashUSD:  internalCash,
		OfficialNAV:      p.NavUSD,
		Rates:            rates,
		Tolerance:        tol,
	})
}

// validateTolerance rejects negative floors.
func validateTolerance(tol models.BreakTolerance) error {
	if tol.AbsoluteUSD < 0 || tol.RelativeBps < 0 {
		return ErrInvalidTolerance
	}
	return nil
}

// Run reconciles and stores the result as a new run.
func (s *ReconciliationService) Run(ctx context.Context, req models.ReconcileRequest, operator string) (*models.ReconciliationRun, error) {
	defer TrackTime("ReconciliationService.Run", time.Now())

	tol := s.tolerance
	if req.Tolerance != nil {
		tol = *req.Tolerance
	}
	if err := validateTolerance(tol); err != nil {
		return nil, err
	}

	wctx, wc := NewWarningContext(ctx)
	SnapshotWarnings(wctx, req.Portfolio, req.FXRates)
	recon := Reconcile(wctx, req.Portfolio, req.Custodian, req.FXRates, tol)

	now := s.now().UTC()
	runID := uuid.NewString()
	recon.ID = runID
	recon.LastReconciledAt = now.Format(time.RFC3339)

	warnings := wc.GetWarnings()
	for _, w := range warnings {
		AddWarning(ctx, w)
	}

	run := &models.ReconciliationRun{
		ID:             runID,
		CreatedAt:      now.Format(time.RFC3339),
		CreatedBy:      operator,
		Portfolio:      req.Portfolio,
		Custodian:      req.Custodian,
		FXRates:        req.FXRates,
		Reconciliation: recon,
		Warnings:       warnings,
	}
	run.Audit = []models.AuditEntry{s.auditEntry(operator, actionReconcile, "reconciliation", runID,
		fmt.Sprintf("%d position breaks, %d cash breaks, status %s", len(recon.PositionBreaks), len(recon.CashBreaks), recon.Status))}

	if err := s.repo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to store reconciliation run: %w", err)
	}
	log.WithFields(log.Fields{
		"run_id":    runID,
		"breaks":    len(recon.PositionBreaks) + len(recon.CashBreaks),
		"delta_bps": recon.DeltaBps,
		"status":    recon.Status,
	}).Info("reconciliation completed")
	return run, nil
}

// Get returns a stored run
func (s *ReconciliationService) Get(ctx context.Context, runID string) (*models.ReconciliationRun, error) {
	return s.repo.GetByID(ctx, runID)
}

// Audit returns the audit trail of a run, oldest first
func (s *ReconciliationService) Audit(ctx context.Context, runID string) ([]models.AuditEntry, error) {
	return s.repo.ListAudit(ctx, runID)
}

// AssignOwner assigns a break to owner
func (s *ReconciliationService) AssignOwner(ctx context.Context, runID, breakID, owner, operator string) (*models.ReconciliationRun, error) {
	return s.mutate(ctx, runID, func(run *models.ReconciliationRun) (models.AuditEntry, error) {
		if err := AssignOwner(run.Reconciliation, breakID, owner); err != nil {
			return models.AuditEntry{}, err
		}
		return s.auditEntry(operator, actionAssignOwner, "break", breakID, "owner set to "+owner), nil
	})
}

// UpdateStatus moves a break forward along its workflow
func (s *ReconciliationService) UpdateStatus(ctx context.Context, runID, breakID string, status models.BreakStatus, operator string) (*models.ReconciliationRun, error) {
	return s.mutate(ctx, runID, func(run *models.ReconciliationRun) (models.AuditEntry, error) {
		if err := SetBreakStatus(run.Reconciliation, breakID, status); err != nil {
			return models.AuditEntry{}, err
		}
		return s.auditEntry(operator, actionUpdateStatus, "break", breakID, "status set to "+string(status)), nil
	})
}

// Resolve records a resolution decision on a break
func (s *ReconciliationService) Resolve(ctx context.Context, runID, breakID string, res models.Resolution, notes, operator string) (*models.ReconciliationRun, error) {
	return s.mutate(ctx, runID, func(run *models.ReconciliationRun) (models.AuditEntry, error) {
		ticket, err := ResolveBreak(run.Reconciliation, breakID, res, notes)
		if err != nil {
			return models.AuditEntry{}, err
		}
		details := "resolution set to " + string(res)
		if ticket != "" {
			details += ", ticket " + ticket
		}
		return s.auditEntry(operator, actionResolve, "break", breakID, details), nil
	})
}

// UpdateNotes replaces the notes of a break
func (s *ReconciliationService) UpdateNotes(ctx context.Context, runID, breakID, notes, operator string) (*models.ReconciliationRun, error) {
	return s.mutate(ctx, runID, func(run *models.ReconciliationRun) (models.AuditEntry, error) {
		if err := UpdateBreakNotes(run.Reconciliation, breakID, notes); err != nil {
			return models.AuditEntry{}, err
		}
		return s.auditEntry(operator, actionUpdateNotes, "break", breakID, "notes updated"), nil
	})
}

// OverrideCause replaces the displayed cause of a break
func (s *ReconciliationService) OverrideCause(ctx context.Context, runID, breakID string, cause models.BreakCause, note, operator string) (*models.ReconciliationRun, error) {
	return s.mutate(ctx, runID, func(run *models.ReconciliationRun) (models.AuditEntry, error) {
		if err := OverrideBreakCause(run.Reconciliation, breakID, cause, note, operator, s.now()); err != nil {
			return models.AuditEntry{}, err
		}
		return s.auditEntry(operator, actionOverrideCause, "break", breakID,
			fmt.Sprintf("cause overridden to %s: %s", cause, note)), nil
	})
}

// PushToBook applies the run's accepted custodian values to its stored book
// and returns the updated book.
func (s *ReconciliationService) PushToBook(ctx context.Context, runID, operator string) (models.Portfolio, int, error) {
	var applied int
	run, err := s.mutate(ctx, runID, func(run *models.ReconciliationRun) (models.AuditEntry, error) {
		run.Portfolio, applied = PushToBook(run.Portfolio, run.Reconciliation, run.Custodian.Positions, s.now())
		return s.auditEntry(operator, actionPushToBook, "reconciliation", run.ID,
			fmt.Sprintf("%d accepted breaks applied to book", applied)), nil
	})
	if err != nil {
		return models.Portfolio{}, 0, err
	}
	return run.Portfolio, applied, nil
}

func (s *ReconciliationService) mutate(ctx context.Context, runID string, fn func(run *models.ReconciliationRun) (models.AuditEntry, error)) (*models.ReconciliationRun, error) {
	return s.repo.Update(ctx, runID, func(run *models.ReconciliationRun) error {
		entry, err := fn(run)
		if err != nil {
			return err
		}
		run.Audit = append(run.Audit, entry)
		return nil
	})
}

func (s *ReconciliationService) auditEntry(user, action, entityType, entityID, details string) models.AuditEntry {
	return models.AuditEntry{
		ID:         uuid.NewString(),
		Timestamp:  s.now().UTC().Format(time.RFC3339Nano),
		User:       user,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
}
