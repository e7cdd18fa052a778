package models

import (
	"encoding/json"
	"fmt"
)

// BreakType is the wire tag of a break variant
type BreakType string

const (
	BreakMissing  BreakType = "Missing"
	BreakQuantity BreakType = "Quantity"
	BreakPrice    BreakType = "Price"
	BreakFX       BreakType = "FX"
	BreakCash     BreakType = "Cash"
)

// BreakCause is the fixed cause enumeration used for grouping and overrides.
type BreakCause string

const (
	CauseMissingTrade     BreakCause = "Missing trade"
	CauseCorporateAction  BreakCause = "Corporate action"
	CausePriceDiscrepancy BreakCause = "Price discrepancy"
	CauseFXIncorrect      BreakCause = "FX missing/incorrect"
	CauseSettlementTiming BreakCause = "Settlement timing"
	CauseFeesTaxes        BreakCause = "Fees & taxes"
	CauseDataMapping      BreakCause = "Data mapping issue"
	CauseMissingPosition  BreakCause = "Missing position"
	CauseUnknown          BreakCause = "Unknown"
)

// BreakCauses lists every cause in display order. Cause groupings always carry
// one entry per element.
var BreakCauses = []BreakCause{
	CauseMissingTrade,
	CauseCorporateAction,
	CausePriceDiscrepancy,
	CauseFXIncorrect,
	CauseSettlementTiming,
	CauseFeesTaxes,
	CauseDataMapping,
	CauseMissingPosition,
	CauseUnknown,
}

// Valid reports whether c belongs to the cause enumeration.
func (c BreakCause) Valid() bool {
	for _, x := range BreakCauses {
		if x == c {
			return true
		}
	}
	return false
}

// Resolution records the decision taken on a break
type Resolution string

const (
	ResolutionUnresolved        Resolution = "unresolved"
	ResolutionAcceptCustodian   Resolution = "accept_custodian"
	ResolutionKeepInternal      Resolution = "keep_internal"
	ResolutionAdjustmentCreated Resolution = "adjustment_created"
	ResolutionTicketOpened      Resolution = "ticket_opened"
)

// Valid reports whether r is a known resolution
func (r Resolution) Valid() bool {
	switch r {
	case ResolutionUnresolved, ResolutionAcceptCustodian, ResolutionKeepInternal,
		ResolutionAdjustmentCreated, ResolutionTicketOpened:
		return true
	}
	return false
}

// BreakStatus is the workflow stage of a break
type BreakStatus string

const (
	BreakStatusNew        BreakStatus = "New"
	BreakStatusAssigned   BreakStatus = "Assigned"
	BreakStatusInProgress BreakStatus = "In Progress"
	BreakStatusResolved   BreakStatus = "Resolved"
	BreakStatusWaived     BreakStatus = "Waived"
)

// Rank orders the workflow stages; Resolved and Waived are both terminal.
func (s BreakStatus) Rank() int {
	switch s {
	case BreakStatusNew:
		return 0
	case BreakStatusAssigned:
		return 1
	case BreakStatusInProgress:
		return 2
	case BreakStatusResolved, BreakStatusWaived:
		return 3
	}
	return -1
}

// CauseAnalysis is the deterministic explanation attached to a break.
type CauseAnalysis struct {
	Cause        BreakCause `json:"cause"`
	Confidence   int        `json:"confidence"`
	Evidence     []string   `json:"evidence"`
	SuggestedFix string     `json:"suggested_fix"`
}

// CauseOverride replaces the displayed cause. The automated analysis is kept.
type CauseOverride struct {
	Cause BreakCause `json:"cause"`
	Note  string     `json:"note"`
	By    string     `json:"by,omitempty"`
	At    string     `json:"at,omitempty"`
}

// Mismatch is the kind-specific payload of a position break. The set of
// implementations is closed: MissingMismatch, QuantityMismatch, PriceMismatch
// and FXMismatch.
type Mismatch interface {
	BreakType() BreakType
	isMismatch()
}

// MissingMismatch: held internally, absent from the custodian feed.
type MissingMismatch struct {
	InternalQty float64 `json:"internal_qty"`
}

// QuantityMismatch compares share counts.
type QuantityMismatch struct {
	CustodianQty float64 `json:"custodian_qty"`
	InternalQty  float64 `json:"internal_qty"`
}

// PriceMismatch compares local prices.
type PriceMismatch struct {
	CustodianPrice float64 `json:"custodian_price"`
	InternalPrice  float64 `json:"internal_price"`
}

// FXMismatch compares the rate used to convert local value to USD.
type FXMismatch struct {
	CustodianFX float64 `json:"custodian_fx"`
	InternalFX  float64 `json:"internal_fx"`
}

func (MissingMismatch) BreakType() BreakType  { return BreakMissing }
func (QuantityMismatch) BreakType() BreakType { return BreakQuantity }
func (PriceMismatch) BreakType() BreakType    { return BreakPrice }
func (FXMismatch) BreakType() BreakType       { return BreakFX }

func (MissingMismatch) isMismatch()  {}
func (QuantityMismatch) isMismatch() {}
func (PriceMismatch) isMismatch()    {}
func (FXMismatch) isMismatch()       {}

// BreakWorkflow holds the mutable workflow fields shared by every break kind.
type BreakWorkflow struct {
	Resolution    Resolution     `json:"resolution"`
	Status        BreakStatus    `json:"status"`
	Owner         string         `json:"owner,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	TicketID      string         `json:"ticket_id,omitempty"`
	CauseOverride *CauseOverride `json:"cause_override,omitempty"`
}

// Break is a detected discrepancy. Implementations are PositionBreak and
// CashBreak; callers dispatch with a type switch.
type Break interface {
	BreakID() string
	Type() BreakType
	Analysis() CauseAnalysis
	Workflow() *BreakWorkflow
	ImpactUSD() float64
	isBreak()
}

// EffectiveCause is the override cause when present, else the analysed cause.
func EffectiveCause(b Break) BreakCause {
	if o := b.Workflow().CauseOverride; o != nil {
		return o.Cause
	}
	return b.Analysis().Cause
}

// PositionBreak is a per-ticker discrepancy.
type PositionBreak struct {
	ID            string        `json:"id"`
	Ticker        string        `json:"ticker"`
	Name          string        `json:"name,omitempty"`
	Currency      Currency      `json:"currency"`
	Mismatch      Mismatch      `json:"-"`
	Delta         float64       `json:"delta"`
	DeltaUSD      float64       `json:"delta_usd"`
	CauseAnalysis CauseAnalysis `json:"cause_analysis"`
	BreakWorkflow
}

func (b *PositionBreak) BreakID() string          { return b.ID }
func (b *PositionBreak) Analysis() CauseAnalysis  { return b.CauseAnalysis }
func (b *PositionBreak) Workflow() *BreakWorkflow { return &b.BreakWorkflow }
func (b *PositionBreak) ImpactUSD() float64       { return b.DeltaUSD }
func (b *PositionBreak) isBreak()                 {}

// Type returns the mismatch kind, or Missing when no mismatch is attached.
func (b *PositionBreak) Type() BreakType {
	if b.Mismatch == nil {
		return BreakMissing
	}
	return b.Mismatch.BreakType()
}

// MarshalJSON flattens the mismatch under "mismatch" and tags the variant.
func (b PositionBreak) MarshalJSON() ([]byte, error) {
	type alias PositionBreak
	return json.Marshal(struct {
		alias
		Type     BreakType `json:"type"`
		Mismatch Mismatch  `json:"mismatch,omitempty"`
	}{alias(b), b.Type(), b.Mismatch})
}

// UnmarshalJSON restores the mismatch variant from the "type" tag.
func (b *PositionBreak) UnmarshalJSON(data []byte) error {
	type alias PositionBreak
	aux := struct {
		*alias
		Type     BreakType       `json:"type"`
		Mismatch json.RawMessage `json:"mismatch"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var m Mismatch
	switch aux.Type {
	case BreakMissing, "":
		m = &MissingMismatch{}
	case BreakQuantity:
		m = &QuantityMismatch{}
	case BreakPrice:
		m = &PriceMismatch{}
	case BreakFX:
		m = &FXMismatch{}
	default:
		return fmt.Errorf("unknown position break type %q", aux.Type)
	}
	if len(aux.Mismatch) > 0 && string(aux.Mismatch) != "null" {
		if err := json.Unmarshal(aux.Mismatch, m); err != nil {
			return fmt.Errorf("decode %s mismatch: %w", aux.Type, err)
		}
	}
	switch v := m.(type) {
	case *MissingMismatch:
		b.Mismatch = *v
	case *QuantityMismatch:
		b.Mismatch = *v
	case *PriceMismatch:
		b.Mismatch = *v
	case *FXMismatch:
		b.Mismatch = *v
	}
	return nil
}

// CashBreak is the single aggregate USD cash discrepancy.
type CashBreak struct {
	ID            string        `json:"id"`
	Currency      Currency      `json:"currency"`
	CustodianCash float64       `json:"custodian_cash"`
	InternalCash  float64       `json:"internal_cash"`
	Delta         float64       `json:"delta"`
	CauseAnalysis CauseAnalysis `json:"cause_analysis"`
	BreakWorkflow
}

func (b *CashBreak) BreakID() string          { return b.ID }
func (b *CashBreak) Type() BreakType          { return BreakCash }
func (b *CashBreak) Analysis() CauseAnalysis  { return b.CauseAnalysis }
func (b *CashBreak) Workflow() *BreakWorkflow { return &b.BreakWorkflow }
func (b *CashBreak) ImpactUSD() float64       { return b.Delta }
func (b *CashBreak) isBreak()                 {}

// BreakTolerance configures break detection. A matched position is skipped
// only when both floors are satisfied.
type BreakTolerance struct {
	AbsoluteUSD float64 `json:"absolute_usd"`
	RelativeBps float64 `json:"relative_bps"`
}

// CauseGroup is the count and absolute USD total of breaks for one cause.
type CauseGroup struct {
	Cause    BreakCause `json:"cause"`
	Count    int        `json:"count"`
	TotalUSD float64    `json:"total_usd"`
}

// ReconStatus is the overall health of a reconciliation
type ReconStatus string

const (
	ReconAligned     ReconStatus = "aligned"
	ReconInvestigate ReconStatus = "investigate"
	ReconCritical    ReconStatus = "critical"
)

// NAVReconciliation is the output of one reconciliation run.
type NAVReconciliation struct {
	ID               string           `json:"id,omitempty"`
	ShadowNAV        float64          `json:"shadow_nav"`
	OfficialNAV      float64          `json:"official_nav"`
	DeltaUSD         float64          `json:"delta_usd"`
	DeltaBps         float64          `json:"delta_bps"`
	PositionBreaks   []*PositionBreak `json:"position_breaks"`
	CashBreaks       []*CashBreak     `json:"cash_breaks"`
	BreaksByCause    []CauseGroup     `json:"breaks_by_cause"`
	UnresolvedCount  int              `json:"unresolved_count"`
	Status           ReconStatus      `json:"status"`
	LastReconciledAt string           `json:"last_reconciled_at"`
	Tolerance        BreakTolerance   `json:"tolerance"`
}

// Breaks returns every break, positions first.
func (r *NAVReconciliation) Breaks() []Break {
	out := make([]Break, 0, len(r.PositionBreaks)+len(r.CashBreaks))
	for _, b := range r.PositionBreaks {
		out = append(out, b)
	}
	for _, b := range r.CashBreaks {
		out = append(out, b)
	}
	return out
}

// FindBreak returns the break with the given id, or nil.
func (r *NAVReconciliation) FindBreak(id string) Break {
	for _, b := range r.Breaks() {
		if b.BreakID() == id {
			return b
		}
	}
	return nil
}

// Clone returns a deep copy safe to hand to another goroutine.
func (r *NAVReconciliation) Clone() *NAVReconciliation {
	if r == nil {
		return nil
	}
	out := *r
	out.PositionBreaks = make([]*PositionBreak, len(r.PositionBreaks))
	for i, b := range r.PositionBreaks {
		c := *b
		c.CauseAnalysis = b.CauseAnalysis.clone()
		c.BreakWorkflow = b.BreakWorkflow.clone()
		out.PositionBreaks[i] = &c
	}
	out.CashBreaks = make([]*CashBreak, len(r.CashBreaks))
	for i, b := range r.CashBreaks {
		c := *b
		c.CauseAnalysis = b.CauseAnalysis.clone()
		c.BreakWorkflow = b.BreakWorkflow.clone()
		out.CashBreaks[i] = &c
	}
	out.BreaksByCause = append([]CauseGroup(nil), r.BreaksByCause...)
	return &out
}

func (a CauseAnalysis) clone() CauseAnalysis {
	a.Evidence = append([]string(nil), a.Evidence...)
	return a
}

func (w BreakWorkflow) clone() BreakWorkflow {
	if w.CauseOverride != nil {
		o := *w.CauseOverride
		w.CauseOverride = &o
	}
	return w
}
