package gapdetect

import (
	"testing"

	"github.com/milesync/milesync-backend/internal/types"
)

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalGaps != 0 || summary.TotalMissingMiles != 0 {
		t.Fatalf("empty summary has totals: %+v", summary)
	}
	for _, severity := range types.Severities {
		if count, ok := summary.BySeverity[severity]; !ok || count != 0 {
			t.Errorf("severity %q missing or nonzero: %d", severity, count)
		}
	}
	for _, gapType := range types.GapTypes {
		if count, ok := summary.ByType[gapType]; !ok || count != 0 {
			t.Errorf("gap type %q missing or nonzero: %d", gapType, count)
		}
	}
}

func TestSummarizeCounts(t *testing.T) {
	gaps := []*types.MileageGap{
		{GapType: types.GapTypeDateGap, Severity: types.SeverityHigh, MissingMiles: 200},
		{GapType: types.GapTypeDateGap, Severity: types.SeverityLow, MissingMiles: 50},
		{GapType: types.GapTypeUnusualPattern, Severity: types.SeverityHigh, MissingMiles: 0},
		nil,
	}
	summary := Summarize(gaps)
	if summary.TotalGaps != 3 {
		t.Errorf("total gaps = %d, want 3", summary.TotalGaps)
	}
	if summary.TotalMissingMiles != 250 {
		t.Errorf("total missing miles = %d, want 250", summary.TotalMissingMiles)
	}
	if summary.BySeverity[types.SeverityHigh] != 2 {
		t.Errorf("high count = %d, want 2", summary.BySeverity[types.SeverityHigh])
	}
	if summary.ByType[types.GapTypeDateGap] != 2 {
		t.Errorf("date_gap count = %d, want 2", summary.ByType[types.GapTypeDateGap])
	}
	if summary.ByType[types.GapTypeOdometerRollover] != 0 {
		t.Errorf("rollover count = %d, want 0", summary.ByType[types.GapTypeOdometerRollover])
	}
}
