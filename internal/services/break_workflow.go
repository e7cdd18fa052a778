package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/google/uuid"
)

func findBreak(r *models.NAVReconciliation, breakID string) (models.Break, error) {
	b := r.FindBreak(breakID)
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBreakNotFound, breakID)
	}
	return b, nil
}

// AssignOwner sets the owner and promotes a New break to Assigned.
func AssignOwner(r *models.NAVReconciliation, breakID, owner string) error {
	b, err := findBreak(r, breakID)
	if err != nil {
		return err
	}
	w := b.Workflow()
	w.Owner = strings.TrimSpace(owner)
	if w.Status == models.BreakStatusNew {
		w.Status = models.BreakStatusAssigned
	}
	RefreshSummary(r)
	return nil
}

// SetBreakStatus moves a break forward along
// New -> Assigned -> In Progress -> {Resolved | Waived}. Stages may be skipped
// but never revisited; Resolved and Waived are terminal.
func SetBreakStatus(r *models.NAVReconciliation, breakID string, status models.BreakStatus) error {
	b, err := findBreak(r, breakID)
	if err != nil {
		return err
	}
	w := b.Workflow()
	next, cur := status.Rank(), w.Status.Rank()
	if next < 0 || next <= cur {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.Status, status)
	}
	w.Status = status
	RefreshSummary(r)
	return nil
}

// ResolveBreak records a resolution. Any decision other than unresolved marks
// the break Resolved; reverting to unresolved resets it to New and drops the
// ticket. Opening a ticket returns the minted ticket id.
func ResolveBreak(r *models.NAVReconciliation, breakID string, res models.Resolution, notes string) (string, error) {
	if !res.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidResolution, res)
	}
	b, err := findBreak(r, breakID)
	if err != nil {
		return "", err
	}
	w := b.Workflow()
	w.Resolution = res
	w.TicketID = ""
	if res == models.ResolutionUnresolved {
		w.Status = models.BreakStatusNew
	} else {
		w.Status = models.BreakStatusResolved
	}
	if res == models.ResolutionTicketOpened {
		w.TicketID = newTicketID()
	}
	if notes != "" {
		w.Notes = notes
	}
	RefreshSummary(r)
	return w.TicketID, nil
}

// UpdateBreakNotes replaces the free-text notes.
func UpdateBreakNotes(r *models.NAVReconciliation, breakID, notes string) error {
	b, err := findBreak(r, breakID)
	if err != nil {
		return err
	}
	b.Workflow().Notes = notes
	return nil
}

// OverrideBreakCause replaces the displayed cause. The automated analysis is
// left untouched alongside the override.
func OverrideBreakCause(r *models.NAVReconciliation, breakID string, cause models.BreakCause, note, by string, at time.Time) error {
	if !cause.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCause, cause)
	}
	if strings.TrimSpace(note) == "" {
		return fmt.Errorf("%w: justification note is required", ErrInvalidCause)
	}
	b, err := findBreak(r, breakID)
	if err != nil {
		return err
	}
	b.Workflow().CauseOverride = &models.CauseOverride{
		Cause: cause,
		Note:  note,
		By:    by,
		At:    at.UTC().Format(time.RFC3339),
	}
	RefreshSummary(r)
	return nil
}

func newTicketID() string {
	return "TKT-" + strings.ToUpper(uuid.NewString()[:8])
}
