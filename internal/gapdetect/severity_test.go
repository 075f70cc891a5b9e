package gapdetect

import (
	"testing"

	"github.com/milesync/milesync-backend/internal/types"
)

func TestSeverityBands(t *testing.T) {
	cases := []struct {
		name         string
		missingMiles int
		daysBetween  int
		want         string
	}{
		{"exactly 100 miles one day stays low", 100, 1, types.SeverityLow},
		{"zero miles one day", 0, 1, types.SeverityLow},
		{"just over 100 miles", 101, 1, types.SeverityMedium},
		{"exactly 500 miles", 500, 1, types.SeverityMedium},
		{"two days elapsed", 0, 2, types.SeverityMedium},
		{"just over 500 miles", 501, 1, types.SeverityHigh},
		{"exactly 1000 miles", 1000, 1, types.SeverityHigh},
		{"four days elapsed", 0, 4, types.SeverityHigh},
		{"just over 1000 miles", 1001, 1, types.SeverityCritical},
		{"over a week elapsed", 0, 8, types.SeverityCritical},
		{"miles dominate days", 1500, 2, types.SeverityCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Severity(tc.missingMiles, tc.daysBetween); got != tc.want {
				t.Errorf("Severity(%d, %d) = %q, want %q", tc.missingMiles, tc.daysBetween, got, tc.want)
			}
		})
	}
}
