package gapdetect

// Thresholds control detection sensitivity. A zero value is not usable;
// construct with DefaultThresholds and override fields as needed.
type Thresholds struct {
	// MaxDailyMiles is the highest plausible miles driven in one day.
	MaxDailyMiles int
	// MinGapMiles is the smallest missing-mileage estimate worth reporting.
	MinGapMiles int
	// MaxGapDays is the nominal upper bound on reportable gap length in
	// days. No rule pass consults it yet.
	MaxGapDays int
	// OdometerRollover is the odometer ceiling used to compute rollover
	// mileage when a later trip starts below the previous trip's end.
	OdometerRollover int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDailyMiles:    500,
		MinGapMiles:      10,
		MaxGapDays:       30,
		OdometerRollover: 999999,
	}
}
