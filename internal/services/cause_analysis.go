package services

import (
	"fmt"
	"math"

	"github.com/epeers/pmscockpit/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// evidence strings group thousands the way the desk reads them
var printer = message.NewPrinter(language.English)

// AnalyzeCause explains a break deterministically from its own fields.
func AnalyzeCause(b models.Break) models.CauseAnalysis {
	switch brk := b.(type) {
	case *models.CashBreak:
		return analyzeCash(brk)
	case *models.PositionBreak:
		switch m := brk.Mismatch.(type) {
		case models.QuantityMismatch:
			return analyzeQuantity(brk, m)
		case models.PriceMismatch:
			return analyzePrice(m)
		case models.FXMismatch:
			return analyzeFX(m)
		case models.MissingMismatch, nil:
			return models.CauseAnalysis{
				Cause:      models.CauseMissingPosition,
				Confidence: 95,
				Evidence: []string{
					fmt.Sprintf("Position %s exists in one system but not the other", brk.Ticker),
					"May indicate failed trade settlement or data feed issue",
				},
				SuggestedFix: "Check trade status and data feed connectivity",
			}
		}
	}
	return models.CauseAnalysis{
		Cause:        models.CauseUnknown,
		Confidence:   50,
		Evidence:     []string{"Unable to determine root cause automatically"},
		SuggestedFix: "Manual investigation required",
	}
}

func analyzeCash(b *models.CashBreak) models.CauseAnalysis {
	delta := math.Abs(safeNum(b.Delta))
	if delta < 10000 {
		return models.CauseAnalysis{
			Cause:      models.CauseFeesTaxes,
			Confidence: 75,
			Evidence: []string{
				fmt.Sprintf("Delta amount (%s) is consistent with fee/tax range", formatMoney(delta, b.Currency)),
				"Cash breaks under $10K often represent custodian fees or tax withholdings",
			},
			SuggestedFix: "Review fee schedule and tax documentation",
		}
	}
	return models.CauseAnalysis{
		Cause:      models.CauseSettlementTiming,
		Confidence: 65,
		Evidence: []string{
			fmt.Sprintf("Cash delta of %s", formatMoney(delta, b.Currency)),
			"May reflect trades settling at different times between systems",
			"Check T+1/T+2 trade queue",
		},
		SuggestedFix: "Verify pending settlements in both systems",
	}
}

func analyzeQuantity(b *models.PositionBreak, m models.QuantityMismatch) models.CauseAnalysis {
	qtyDelta := math.Abs(safeNum(m.CustodianQty) - safeNum(m.InternalQty))

	if math.Mod(qtyDelta, 100) == 0 || math.Mod(qtyDelta, 1000) == 0 {
		return models.CauseAnalysis{
			Cause:      models.CauseMissingTrade,
			Confidence: 85,
			Evidence: []string{
				printer.Sprintf("Quantity difference of %v shares", qtyDelta),
				"Delta is a round lot, suggesting a missed trade entry",
				fmt.Sprintf("USD impact: %s", formatMoney(math.Abs(b.DeltaUSD), models.BaseCurrency)),
			},
			SuggestedFix: "Search trade blotter for matching quantity",
		}
	}

	if qtyDelta < 100 {
		return models.CauseAnalysis{
			Cause:      models.CauseCorporateAction,
			Confidence: 70,
			Evidence: []string{
				printer.Sprintf("Small quantity difference of %v shares", qtyDelta),
				"Fractional shares often result from stock splits or spin-offs",
				"Check recent corporate action calendar",
			},
			SuggestedFix: "Verify corporate action processing",
		}
	}

	return models.CauseAnalysis{
		Cause:      models.CauseMissingTrade,
		Confidence: 75,
		Evidence: []string{
			printer.Sprintf("Quantity mismatch: Custodian %v, Internal %v", m.CustodianQty, m.InternalQty),
			printer.Sprintf("Delta: %v shares", qtyDelta),
		},
		SuggestedFix: "Reconcile trade records",
	}
}

func analyzePrice(m models.PriceMismatch) models.CauseAnalysis {
	cust, internal := safeNum(m.CustodianPrice), safeNum(m.InternalPrice)
	priceDelta := math.Abs(cust - internal)

	// no internal price means there is nothing to compare against
	pricePct := 100.0
	if internal != 0 {
		pricePct = priceDelta / math.Abs(internal) * 100
	}

	if pricePct < 0.5 {
		return models.CauseAnalysis{
			Cause:      models.CausePriceDiscrepancy,
			Confidence: 90,
			Evidence: []string{
				fmt.Sprintf("Price difference of %.2f (%.2f%%)", priceDelta, pricePct),
				fmt.Sprintf("Custodian: %g, Internal: %g", cust, internal),
				"Small variance likely due to different pricing sources or timing",
			},
			SuggestedFix: "Verify pricing source and timestamp",
		}
	}

	return models.CauseAnalysis{
		Cause:      models.CauseDataMapping,
		Confidence: 70,
		Evidence: []string{
			fmt.Sprintf("Large price variance of %.1f%%", pricePct),
			"May indicate wrong security mapped or stale price",
		},
		SuggestedFix: "Verify security identifier mapping",
	}
}

func analyzeFX(m models.FXMismatch) models.CauseAnalysis {
	fxDelta := math.Abs(safeNum(m.CustodianFX) - safeNum(m.InternalFX))
	return models.CauseAnalysis{
		Cause:      models.CauseFXIncorrect,
		Confidence: 85,
		Evidence: []string{
			fmt.Sprintf("FX rate difference of %.4f", fxDelta),
			fmt.Sprintf("Custodian rate: %g, Internal rate: %g", m.CustodianFX, m.InternalFX),
			"FX rates may be from different cut-off times",
		},
		SuggestedFix: "Align FX rate sources and timestamps",
	}
}
