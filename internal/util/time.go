package util

import (
	"time"

	"github.com/epeers/pmscockpit/internal/models"
	log "github.com/sirupsen/logrus"
)

// NextFixTime returns the next WMR 4pm London benchmark fix at or after
// input, skipping weekends, in UTC.
func NextFixTime(input time.Time) time.Time {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		log.Errorf("Failed to load location 'Europe/London': %v. Falling back to UTC.", err)
		loc = time.UTC
	}
	now := input.In(loc)

	next := time.Date(now.Year(), now.Month(), now.Day(), 16, 0, 0, 0, loc)
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}
	for isWeekend(next) {
		next = next.AddDate(0, 0, 1)
	}

	return next.UTC()
}

// AddBusinessDays moves d forward n weekdays. A zero n returns d unchanged,
// even on a weekend.
func AddBusinessDays(d time.Time, n int) time.Time {
	for n > 0 {
		d = d.AddDate(0, 0, 1)
		if !isWeekend(d) {
			n--
		}
	}
	return d
}

// SettleDateFromType maps an FX settlement convention to a settle date:
// ON same day, TOM next business day, SPOT two business days.
func SettleDateFromType(tradeDate time.Time, st models.SettlementType) time.Time {
	switch st {
	case models.SettlementON:
		return tradeDate
	case models.SettlementTOM:
		return AddBusinessDays(tradeDate, 1)
	default:
		return AddBusinessDays(tradeDate, 2)
	}
}

func isWeekend(d time.Time) bool {
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}
