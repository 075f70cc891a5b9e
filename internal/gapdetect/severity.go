package gapdetect

import (
	"github.com/milesync/milesync-backend/internal/types"
)

// Severity maps a missing-mileage estimate and elapsed days to an ordinal
// severity band. Bands are checked highest first; exactly 100 miles over a
// single day is still low.
func Severity(missingMiles, daysBetween int) string {
	if missingMiles > 1000 || daysBetween > 7 {
		return types.SeverityCritical
	}
	if missingMiles > 500 || daysBetween > 3 {
		return types.SeverityHigh
	}
	if missingMiles > 100 || daysBetween > 1 {
		return types.SeverityMedium
	}
	return types.SeverityLow
}
