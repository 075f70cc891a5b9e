package gapdetect

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/milesync/milesync-backend/internal/types"
)

// Detect runs all four rule passes over one user's trips and returns the
// concatenated candidate findings. Input order does not matter; Detect sorts
// an internal copy by start date. Candidates carry no ID and status open;
// persistence and deduplication are the caller's concern.
func Detect(userID uuid.UUID, trips []*types.Trip, th Thresholds) []*types.MileageGap {
	if len(trips) == 0 {
		return nil
	}

	sorted := make([]*types.Trip, 0, len(trips))
	for _, t := range trips {
		if t == nil || t.StartDate.IsZero() || t.EndDate.IsZero() {
			// Malformed records are skipped, never abort the run.
			continue
		}
		sorted = append(sorted, t)
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})

	avgDaily := averageDailyMiles(sorted)

	var gaps []*types.MileageGap
	gaps = append(gaps, detectDateGaps(userID, sorted, avgDaily, th)...)
	gaps = append(gaps, detectMileageInconsistencies(userID, sorted, th)...)
	gaps = append(gaps, detectOdometerRollovers(userID, sorted, th)...)
	gaps = append(gaps, detectUnusualPatterns(userID, sorted, th)...)
	return gaps
}

func detectDateGaps(userID uuid.UUID, trips []*types.Trip, avgDaily float64, th Thresholds) []*types.MileageGap {
	var gaps []*types.MileageGap
	for i := 0; i < len(trips)-1; i++ {
		current := trips[i]
		next := trips[i+1]

		days := daysBetween(current.EndDate, next.StartDate)
		if days <= 1 {
			continue
		}
		gapStart := startOfDay(current.EndDate).AddDate(0, 0, 1)
		gapEnd := startOfDay(next.StartDate).AddDate(0, 0, -1)

		missing := int(math.Round(avgDaily * float64(days)))
		if missing < th.MinGapMiles {
			continue
		}
		gaps = append(gaps, &types.MileageGap{
			UserID:          userID,
			GapStartDate:    gapStart,
			GapEndDate:      gapEnd,
			StartMileage:    current.EndMileage,
			EndMileage:      next.StartMileage,
			MissingMiles:    missing,
			GapType:         types.GapTypeDateGap,
			Severity:        Severity(missing, days),
			Status:          types.GapStatusOpen,
			Description:     fmt.Sprintf("Missing %d days of mileage data between %s and %s", days, gapStart.Format("01/02/2006"), gapEnd.Format("01/02/2006")),
			SuggestedAction: "Review calendar and add missing trip entries or mark as personal use",
		})
	}
	return gaps
}

func detectMileageInconsistencies(userID uuid.UUID, trips []*types.Trip, th Thresholds) []*types.MileageGap {
	var gaps []*types.MileageGap
	for i := 0; i < len(trips)-1; i++ {
		current := trips[i]
		next := trips[i+1]

		if current.EndMileage == next.StartMileage {
			continue
		}
		diff := next.StartMileage - current.EndMileage
		if diff < 0 {
			diff = -diff
		}
		if diff < th.MinGapMiles {
			continue
		}
		gaps = append(gaps, &types.MileageGap{
			UserID:       userID,
			GapStartDate: current.EndDate,
			GapEndDate:   next.StartDate,
			StartMileage: current.EndMileage,
			EndMileage:   next.StartMileage,
			MissingMiles: diff,
			GapType:      types.GapTypeMileageInconsistency,
			// Severity treats every inconsistency as a single-day event
			// regardless of actual elapsed time.
			Severity:        Severity(diff, 1),
			Status:          types.GapStatusOpen,
			Description:     fmt.Sprintf("Mileage inconsistency: Trip ended at %d but next trip started at %d", current.EndMileage, next.StartMileage),
			SuggestedAction: "Verify odometer readings and correct mileage entries",
		})
	}
	return gaps
}

func detectOdometerRollovers(userID uuid.UUID, trips []*types.Trip, th Thresholds) []*types.MileageGap {
	var gaps []*types.MileageGap
	for i := 0; i < len(trips)-1; i++ {
		current := trips[i]
		next := trips[i+1]

		if next.StartMileage >= current.EndMileage {
			continue
		}
		rolloverMiles := (th.OdometerRollover - current.EndMileage) + next.StartMileage
		gaps = append(gaps, &types.MileageGap{
			UserID:       userID,
			GapStartDate: current.EndDate,
			GapEndDate:   next.StartDate,
			StartMileage: current.EndMileage,
			EndMileage:   next.StartMileage,
			MissingMiles: rolloverMiles,
			GapType:      types.GapTypeOdometerRollover,
			// Rollover is expected hardware behavior, not a data-quality
			// failure; severity stays medium regardless of magnitude.
			Severity:        types.SeverityMedium,
			Status:          types.GapStatusOpen,
			Description:     fmt.Sprintf("Odometer rollover detected: Trip ended at %d and next trip started at %d", current.EndMileage, next.StartMileage),
			SuggestedAction: "Confirm odometer rollover and adjust mileage calculations accordingly",
		})
	}
	return gaps
}

func detectUnusualPatterns(userID uuid.UUID, trips []*types.Trip, th Thresholds) []*types.MileageGap {
	var gaps []*types.MileageGap
	for _, trip := range trips {
		duration := durationInDays(trip)
		dailyMiles := float64(trip.TotalMiles) / float64(duration)

		if dailyMiles > float64(th.MaxDailyMiles) {
			gaps = append(gaps, &types.MileageGap{
				UserID:       userID,
				GapStartDate: trip.StartDate,
				GapEndDate:   trip.EndDate,
				StartMileage: trip.StartMileage,
				EndMileage:   trip.EndMileage,
				// Suspicious surplus, not a deficit.
				MissingMiles:    0,
				GapType:         types.GapTypeUnusualPattern,
				Severity:        types.SeverityHigh,
				Status:          types.GapStatusOpen,
				Description:     fmt.Sprintf("Unusually high daily mileage: %d miles per day over %d days", int(math.Round(dailyMiles)), duration),
				SuggestedAction: "Verify trip details and consider breaking into multiple trips",
			})
		}

		if trip.TotalMiles < 0 {
			// End mileage below start mileage within a single trip is always
			// a data error; rollover only applies between trips.
			gaps = append(gaps, &types.MileageGap{
				UserID:          userID,
				GapStartDate:    trip.StartDate,
				GapEndDate:      trip.EndDate,
				StartMileage:    trip.StartMileage,
				EndMileage:      trip.EndMileage,
				MissingMiles:    -trip.TotalMiles,
				GapType:         types.GapTypeMileageInconsistency,
				Severity:        types.SeverityCritical,
				Status:          types.GapStatusOpen,
				Description:     fmt.Sprintf("Negative mileage detected: %d miles", trip.TotalMiles),
				SuggestedAction: "Check and correct odometer readings",
			})
		}
	}
	return gaps
}

// averageDailyMiles is the mean of per-trip daily mileage across the whole
// input set, computed once per run.
func averageDailyMiles(trips []*types.Trip) float64 {
	if len(trips) == 0 {
		return 0
	}
	var sum float64
	for _, trip := range trips {
		sum += float64(trip.TotalMiles) / float64(durationInDays(trip))
	}
	return sum / float64(len(trips))
}

func durationInDays(trip *types.Trip) int {
	days := daysBetween(trip.StartDate, trip.EndDate) + 1
	if days < 1 {
		return 1
	}
	return days
}

// daysBetween counts calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	da := startOfDay(a)
	db := startOfDay(b)
	return int(db.Sub(da).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
