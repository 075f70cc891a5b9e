package gapdetect

import (
	"github.com/milesync/milesync-backend/internal/types"
)

type Summary struct {
	TotalGaps         int            `json:"total_gaps"`
	TotalMissingMiles int            `json:"total_missing_miles"`
	BySeverity        map[string]int `json:"by_severity"`
	ByType            map[string]int `json:"by_type"`
}

// Summarize reduces a set of findings into counts by severity and type plus
// total missing mileage. Every severity band and gap type is present in the
// maps even when zero.
func Summarize(gaps []*types.MileageGap) Summary {
	summary := Summary{
		BySeverity: make(map[string]int, len(types.Severities)),
		ByType:     make(map[string]int, len(types.GapTypes)),
	}
	for _, severity := range types.Severities {
		summary.BySeverity[severity] = 0
	}
	for _, gapType := range types.GapTypes {
		summary.ByType[gapType] = 0
	}
	for _, gap := range gaps {
		if gap == nil {
			continue
		}
		summary.TotalGaps++
		summary.TotalMissingMiles += gap.MissingMiles
		summary.BySeverity[gap.Severity]++
		summary.ByType[gap.GapType]++
	}
	return summary
}
