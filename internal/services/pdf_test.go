package services

import (
	"testing"
	"time"
)

const sampleLogText = `
MileSync Mileage Log Export

Trip 1/5/2025 12,000 12,150
Trip 1/7/2025 12,150 12,400
Trip 1/7/2025 12,150 12,400
Trip 2/1/2025 12,500 12,450
Odometer: 12,400
Total: 400
2025-01-05 summary line
`

func TestExtractTripCandidates(t *testing.T) {
	candidates := extractTripCandidates(sampleLogText)
	// The duplicate line collapses and the decreasing-mileage line is dropped.
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	first := candidates[0]
	if !first.Date.Equal(time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first candidate date = %s", first.Date)
	}
	if first.StartMileage != 12000 || first.EndMileage != 12150 {
		t.Errorf("first candidate mileage = %d..%d, want 12000..12150", first.StartMileage, first.EndMileage)
	}
	if !candidates[0].Date.Before(candidates[1].Date) {
		t.Error("candidates are not sorted by date")
	}
}

func TestExtractTripCandidatesNoMatches(t *testing.T) {
	if got := extractTripCandidates("no trip lines here"); len(got) != 0 {
		t.Fatalf("expected no candidates, got %d", len(got))
	}
}

func TestExtractDates(t *testing.T) {
	dates := extractDates(sampleLogText)
	if len(dates) < 3 {
		t.Fatalf("expected at least 3 distinct dates, got %d", len(dates))
	}
	for i := 1; i < len(dates); i++ {
		if dates[i].Before(dates[i-1]) {
			t.Fatal("dates are not sorted")
		}
	}
}

func TestExtractOdometerReadings(t *testing.T) {
	readings := extractOdometerReadings(sampleLogText)
	want := map[int]bool{12400: true, 400: true}
	for _, reading := range readings {
		if !want[reading] {
			t.Errorf("unexpected reading %d", reading)
		}
		delete(want, reading)
	}
	if len(want) != 0 {
		t.Errorf("missing readings: %v", want)
	}
}

func TestParseLooseDate(t *testing.T) {
	cases := []struct {
		raw string
		ok  bool
	}{
		{"1/5/2025", true},
		{"01/05/2025", true},
		{"2025-01-05", true},
		{"1/5/25", true},
		{"13/45/2025", false},
		{"1/5/1980", false},
		{"garbage", false},
	}
	for _, tc := range cases {
		if _, ok := parseLooseDate(tc.raw); ok != tc.ok {
			t.Errorf("parseLooseDate(%q) ok = %v, want %v", tc.raw, ok, tc.ok)
		}
	}
}

func TestIsPDF(t *testing.T) {
	if !isPDF([]byte("%PDF-1.7 rest of file")) {
		t.Error("valid PDF header rejected")
	}
	if isPDF([]byte("plain text")) {
		t.Error("non-PDF accepted")
	}
	if isPDF(nil) {
		t.Error("empty input accepted")
	}
}
