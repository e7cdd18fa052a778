package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/epeers/pmscockpit/internal/models"
)

var ErrRunNotFound = errors.New("reconciliation run not found")

// ReconciliationRepository keeps reconciliation runs and their audit trails
// in memory. Callers always receive copies.
type ReconciliationRepository struct {
	mu   sync.RWMutex
	runs map[string]*models.ReconciliationRun
}

// NewReconciliationRepository creates an empty repository
func NewReconciliationRepository() *ReconciliationRepository {
	return &ReconciliationRepository{
		runs: make(map[string]*models.ReconciliationRun),
	}
}

// Create stores a new run. The run must carry an ID.
func (r *ReconciliationRepository) Create(ctx context.Context, run *models.ReconciliationRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = cloneRun(run)
	return nil
}

// GetByID returns a copy of the run
func (r *ReconciliationRepository) GetByID(ctx context.Context, id string) (*models.ReconciliationRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return cloneRun(run), nil
}

// Update applies fn to the stored run under the write lock. If fn returns an
// error the stored run is left unchanged. The updated copy is returned.
func (r *ReconciliationRepository) Update(ctx context.Context, id string, fn func(run *models.ReconciliationRun) error) (*models.ReconciliationRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	working := cloneRun(stored)
	if err := fn(working); err != nil {
		return nil, err
	}
	r.runs[id] = working
	return cloneRun(working), nil
}

// ListAudit returns the audit trail of a run in the order it was recorded
func (r *ReconciliationRepository) ListAudit(ctx context.Context, id string) ([]models.AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return append([]models.AuditEntry(nil), run.Audit...), nil
}

func cloneRun(run *models.ReconciliationRun) *models.ReconciliationRun {
	c := *run
	c.Portfolio.Positions = append([]models.Position(nil), run.Portfolio.Positions...)
	c.Portfolio.CashBuckets = append([]models.CashBucket(nil), run.Portfolio.CashBuckets...)
	c.Custodian.Positions = append([]models.CustodianPosition(nil), run.Custodian.Positions...)
	c.FXRates = make(models.FXRates, len(run.FXRates))
	for k, v := range run.FXRates {
		c.FXRates[k] = v
	}
	c.Reconciliation = run.Reconciliation.Clone()
	c.Audit = append([]models.AuditEntry(nil), run.Audit...)
	c.Warnings = append([]models.Warning(nil), run.Warnings...)
	return &c
}
