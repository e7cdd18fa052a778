package services

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// TrackTime logs the elapsed time of a call at debug level.
// Usage: defer TrackTime("ReconcileNAV", time.Now())
func TrackTime(funcName string, start time.Time) {
	elapsed := time.Since(start)
	log.WithField("elapsed_ms", elapsed.Milliseconds()).Debugf("%s took %d ms", funcName, elapsed.Milliseconds())
}
