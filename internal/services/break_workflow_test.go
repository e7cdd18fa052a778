package services_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoBreakRecon has one quantity break (brk_0) and one fee-sized cash break.
func twoBreakRecon(t *testing.T) *models.NAVReconciliation {
	t.Helper()
	r := services.ReconcileNAV(services.ReconcileInput{
		Internal:         []models.Position{internalPos("MSFT", models.CurrencyUSD, 1000, 400, reconRates)},
		Custodian:        []models.CustodianPosition{custodianPos("MSFT", models.CurrencyUSD, 1200, 400, 1)},
		CustodianCashUSD: 995_000,
		InternalCashUSD:  1_000_000,
		OfficialNAV:      100_000_000,
		Rates:            reconRates,
		Tolerance:        services.DefaultTolerance,
	})
	require.Len(t, r.PositionBreaks, 1)
	require.Len(t, r.CashBreaks, 1)
	return r
}

func TestAssignOwner(t *testing.T) {
	r := twoBreakRecon(t)

	require.NoError(t, services.AssignOwner(r, "brk_0", "  alice "))
	assert.Equal(t, "alice", r.PositionBreaks[0].Owner)
	assert.Equal(t, models.BreakStatusAssigned, r.PositionBreaks[0].Status)

	// reassigning later in the workflow keeps the stage
	require.NoError(t, services.SetBreakStatus(r, "brk_0", models.BreakStatusInProgress))
	require.NoError(t, services.AssignOwner(r, "brk_0", "bob"))
	assert.Equal(t, models.BreakStatusInProgress, r.PositionBreaks[0].Status)

	err := services.AssignOwner(r, "brk_9", "x")
	assert.True(t, errors.Is(err, services.ErrBreakNotFound))
}

func TestSetBreakStatus(t *testing.T) {
	testCases := []struct {
		name    string
		path    []models.BreakStatus
		wantErr bool
	}{
		{"full path", []models.BreakStatus{models.BreakStatusAssigned, models.BreakStatusInProgress, models.BreakStatusResolved}, false},
		{"skip to waived", []models.BreakStatus{models.BreakStatusWaived}, false},
		{"backwards", []models.BreakStatus{models.BreakStatusInProgress, models.BreakStatusAssigned}, true},
		{"same stage", []models.BreakStatus{models.BreakStatusNew}, true},
		{"terminal to terminal", []models.BreakStatus{models.BreakStatusResolved, models.BreakStatusWaived}, true},
		{"unknown status", []models.BreakStatus{"Escalated"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := twoBreakRecon(t)
			var err error
			for _, s := range tc.path {
				if err = services.SetBreakStatus(r, "brk_0", s); err != nil {
					break
				}
			}
			if tc.wantErr {
				assert.True(t, errors.Is(err, services.ErrInvalidTransition), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.path[len(tc.path)-1], r.PositionBreaks[0].Status)
		})
	}
}

func TestResolveBreak(t *testing.T) {
	r := twoBreakRecon(t)
	require.Equal(t, 2, r.UnresolvedCount)

	ticket, err := services.ResolveBreak(r, "cash_brk_0", models.ResolutionTicketOpened, "raised with custodian")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ticket, "TKT-"), "ticket %q", ticket)
	assert.Len(t, ticket, len("TKT-")+8)

	cb := r.CashBreaks[0]
	assert.Equal(t, models.BreakStatusResolved, cb.Status)
	assert.Equal(t, ticket, cb.TicketID)
	assert.Equal(t, "raised with custodian", cb.Notes)
	assert.Equal(t, 1, r.UnresolvedCount)

	// reopening drops the ticket and keeps the notes
	ticket, err = services.ResolveBreak(r, "cash_brk_0", models.ResolutionUnresolved, "")
	require.NoError(t, err)
	assert.Empty(t, ticket)
	assert.Empty(t, cb.TicketID)
	assert.Equal(t, models.BreakStatusNew, cb.Status)
	assert.Equal(t, "raised with custodian", cb.Notes)
	assert.Equal(t, 2, r.UnresolvedCount)

	_, err = services.ResolveBreak(r, "cash_brk_0", "shrug", "")
	assert.True(t, errors.Is(err, services.ErrInvalidResolution))
}

func TestUpdateBreakNotes(t *testing.T) {
	r := twoBreakRecon(t)
	require.NoError(t, services.UpdateBreakNotes(r, "brk_0", "waiting on blotter"))
	assert.Equal(t, "waiting on blotter", r.PositionBreaks[0].Notes)
	assert.Error(t, services.UpdateBreakNotes(r, "nope", ""))
}

func TestOverrideBreakCause(t *testing.T) {
	at := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	t.Run("moves the break between groups", func(t *testing.T) {
		r := twoBreakRecon(t)
		require.NoError(t, services.OverrideBreakCause(r, "brk_0", models.CauseCorporateAction, "2:1 split", "carol", at))

		b := r.PositionBreaks[0]
		require.NotNil(t, b.CauseOverride)
		assert.Equal(t, models.CauseCorporateAction, b.CauseOverride.Cause)
		assert.Equal(t, "carol", b.CauseOverride.By)
		assert.Equal(t, "2026-03-02T14:00:00Z", b.CauseOverride.At)
		assert.Equal(t, models.CauseMissingTrade, b.CauseAnalysis.Cause)

		counts := map[models.BreakCause]int{}
		for _, g := range r.BreaksByCause {
			counts[g.Cause] = g.Count
		}
		assert.Equal(t, 0, counts[models.CauseMissingTrade])
		assert.Equal(t, 1, counts[models.CauseCorporateAction])
		assert.Equal(t, 1, counts[models.CauseFeesTaxes])
	})

	t.Run("rejects unknown cause", func(t *testing.T) {
		r := twoBreakRecon(t)
		err := services.OverrideBreakCause(r, "brk_0", "Gremlins", "note", "carol", at)
		assert.True(t, errors.Is(err, services.ErrInvalidCause))
	})

	t.Run("requires a note", func(t *testing.T) {
		r := twoBreakRecon(t)
		err := services.OverrideBreakCause(r, "brk_0", models.CauseUnknown, "   ", "carol", at)
		assert.True(t, errors.Is(err, services.ErrInvalidCause))
		assert.Nil(t, r.PositionBreaks[0].CauseOverride)
	})
}
