package services

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milesync/milesync-backend/internal/apierr"
	"github.com/milesync/milesync-backend/internal/gapdetect"
	"github.com/milesync/milesync-backend/internal/logger"
	"github.com/milesync/milesync-backend/internal/repos"
	"github.com/milesync/milesync-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testDay(dayOfMonth int) time.Time {
	return time.Date(2025, time.March, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func testTrip(userID uuid.UUID, startDay, endDay, startMileage, endMileage int) *types.Trip {
	return &types.Trip{
		ID:           uuid.New(),
		UserID:       userID,
		StartDate:    testDay(startDay),
		EndDate:      testDay(endDay),
		StartMileage: startMileage,
		EndMileage:   endMileage,
		TotalMiles:   endMileage - startMileage,
	}
}

type fakeTripRepo struct {
	trips []*types.Trip
}

func (f *fakeTripRepo) Create(ctx context.Context, tx *gorm.DB, trips []*types.Trip) ([]*types.Trip, error) {
	f.trips = append(f.trips, trips...)
	return trips, nil
}

func (f *fakeTripRepo) GetByIDs(ctx context.Context, tx *gorm.DB, tripIDs []uuid.UUID) ([]*types.Trip, error) {
	var out []*types.Trip
	for _, trip := range f.trips {
		for _, id := range tripIDs {
			if trip.ID == id {
				out = append(out, trip)
			}
		}
	}
	return out, nil
}

func (f *fakeTripRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, startDate, endDate *time.Time) ([]*types.Trip, error) {
	var out []*types.Trip
	for _, trip := range f.trips {
		if trip.UserID != userID {
			continue
		}
		if startDate != nil && trip.StartDate.Before(*startDate) {
			continue
		}
		if endDate != nil && trip.StartDate.After(*endDate) {
			continue
		}
		out = append(out, trip)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (f *fakeTripRepo) List(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter repos.TripListFilter) ([]*types.Trip, int64, error) {
	out, err := f.GetByUserID(ctx, tx, userID, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, 0, err
	}
	return out, int64(len(out)), nil
}

func (f *fakeTripRepo) Update(ctx context.Context, tx *gorm.DB, trip *types.Trip) error {
	for i, existing := range f.trips {
		if existing.ID == trip.ID {
			f.trips[i] = trip
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeTripRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, tripIDs []uuid.UUID) error {
	kept := f.trips[:0]
	for _, trip := range f.trips {
		remove := false
		for _, id := range tripIDs {
			if trip.ID == id {
				remove = true
			}
		}
		if !remove {
			kept = append(kept, trip)
		}
	}
	f.trips = kept
	return nil
}

type fakeGapRepo struct {
	gaps       []*types.MileageGap
	failOnType string
}

func (f *fakeGapRepo) Create(ctx context.Context, tx *gorm.DB, gaps []*types.MileageGap) ([]*types.MileageGap, error) {
	for _, gap := range gaps {
		if f.failOnType != "" && gap.GapType == f.failOnType {
			return nil, fmt.Errorf("simulated insert failure")
		}
	}
	f.gaps = append(f.gaps, gaps...)
	return gaps, nil
}

func (f *fakeGapRepo) GetByIDs(ctx context.Context, tx *gorm.DB, gapIDs []uuid.UUID) ([]*types.MileageGap, error) {
	var out []*types.MileageGap
	for _, gap := range f.gaps {
		for _, id := range gapIDs {
			if gap.ID == id {
				out = append(out, gap)
			}
		}
	}
	return out, nil
}

func (f *fakeGapRepo) FindMatch(ctx context.Context, tx *gorm.DB, userID uuid.UUID, gapStartDate, gapEndDate time.Time, gapType string) (*types.MileageGap, error) {
	for _, gap := range f.gaps {
		if gap.UserID == userID && gap.GapStartDate.Equal(gapStartDate) && gap.GapEndDate.Equal(gapEndDate) && gap.GapType == gapType {
			return gap, nil
		}
	}
	return nil, nil
}

func (f *fakeGapRepo) List(ctx context.Context, tx *gorm.DB, userID uuid.UUID, filter repos.GapListFilter) ([]*types.MileageGap, int64, error) {
	var out []*types.MileageGap
	for _, gap := range f.gaps {
		if gap.UserID != userID {
			continue
		}
		if filter.Status != "" && gap.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && gap.Severity != filter.Severity {
			continue
		}
		if filter.GapType != "" && gap.GapType != filter.GapType {
			continue
		}
		out = append(out, gap)
	}
	return out, int64(len(out)), nil
}

func (f *fakeGapRepo) Update(ctx context.Context, tx *gorm.DB, gap *types.MileageGap) error {
	for i, existing := range f.gaps {
		if existing.ID == gap.ID {
			f.gaps[i] = gap
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeGapRepo) CountOpenByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	for _, gap := range f.gaps {
		if gap.UserID == userID && gap.Status == types.GapStatusOpen {
			count++
		}
	}
	return count, nil
}

func newTestGapService(t *testing.T, tripRepo repos.TripRepo, gapRepo repos.MileageGapRepo) GapService {
	t.Helper()
	return NewGapService(nil, testLogger(t), tripRepo, gapRepo, nil, gapdetect.DefaultThresholds())
}

func TestDetectGapsPersistsFindings(t *testing.T) {
	userID := uuid.New()
	tripRepo := &fakeTripRepo{trips: []*types.Trip{
		testTrip(userID, 1, 1, 100, 150),
		testTrip(userID, 5, 5, 150, 200),
	}}
	gapRepo := &fakeGapRepo{}
	gs := newTestGapService(t, tripRepo, gapRepo)

	result, err := gs.DetectGaps(context.Background(), userID, nil, nil)
	if err != nil {
		t.Fatalf("DetectGaps: %v", err)
	}
	if len(result.Gaps) != 1 {
		t.Fatalf("expected 1 persisted gap, got %d", len(result.Gaps))
	}
	if result.Gaps[0].GapType != types.GapTypeDateGap {
		t.Errorf("gap type = %q, want %q", result.Gaps[0].GapType, types.GapTypeDateGap)
	}
	if result.Gaps[0].ID == uuid.Nil {
		t.Error("persisted gap has no id")
	}
	if len(gapRepo.gaps) != 1 {
		t.Errorf("store holds %d gaps, want 1", len(gapRepo.gaps))
	}
	if result.Summary.TotalGaps != 1 {
		t.Errorf("summary total = %d, want 1", result.Summary.TotalGaps)
	}
	if result.Summary.ByType[types.GapTypeDateGap] != 1 {
		t.Errorf("summary date_gap count = %d, want 1", result.Summary.ByType[types.GapTypeDateGap])
	}
}

func TestDetectGapsIdempotent(t *testing.T) {
	userID := uuid.New()
	tripRepo := &fakeTripRepo{trips: []*types.Trip{
		testTrip(userID, 1, 1, 100, 150),
		testTrip(userID, 5, 5, 150, 200),
	}}
	gapRepo := &fakeGapRepo{}
	gs := newTestGapService(t, tripRepo, gapRepo)

	if _, err := gs.DetectGaps(context.Background(), userID, nil, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := gs.DetectGaps(context.Background(), userID, nil, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Gaps) != 0 {
		t.Errorf("second run persisted %d gaps, want 0", len(second.Gaps))
	}
	if len(gapRepo.gaps) != 1 {
		t.Errorf("store holds %d gaps after rerun, want 1", len(gapRepo.gaps))
	}
	if second.Summary.TotalGaps != 0 {
		t.Errorf("rerun summary total = %d, want 0", second.Summary.TotalGaps)
	}
}

func TestDetectGapsNoTrips(t *testing.T) {
	gs := newTestGapService(t, &fakeTripRepo{}, &fakeGapRepo{})

	result, err := gs.DetectGaps(context.Background(), uuid.New(), nil, nil)
	if err != nil {
		t.Fatalf("DetectGaps: %v", err)
	}
	if len(result.Gaps) != 0 {
		t.Errorf("expected no gaps, got %d", len(result.Gaps))
	}
	if result.Summary.TotalGaps != 0 {
		t.Errorf("summary total = %d, want 0", result.Summary.TotalGaps)
	}
	if _, ok := result.Summary.BySeverity[types.SeverityLow]; !ok {
		t.Error("summary severity map is not zero-filled")
	}
}

func TestDetectGapsRequiresUserID(t *testing.T) {
	gs := newTestGapService(t, &fakeTripRepo{}, &fakeGapRepo{})
	if _, err := gs.DetectGaps(context.Background(), uuid.Nil, nil, nil); apierr.CodeOf(err) != apierr.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDetectGapsContinuesPastInsertFailure(t *testing.T) {
	userID := uuid.New()
	// A rollover pair also reads as a mileage inconsistency, giving the run
	// two candidate findings.
	tripRepo := &fakeTripRepo{trips: []*types.Trip{
		testTrip(userID, 1, 1, 999800, 999900),
		testTrip(userID, 2, 2, 100, 200),
	}}
	gapRepo := &fakeGapRepo{failOnType: types.GapTypeMileageInconsistency}
	gs := newTestGapService(t, tripRepo, gapRepo)

	result, err := gs.DetectGaps(context.Background(), userID, nil, nil)
	if err != nil {
		t.Fatalf("DetectGaps: %v", err)
	}
	if len(result.Gaps) != 1 {
		t.Fatalf("expected 1 persisted gap past the failure, got %d", len(result.Gaps))
	}
	if result.Gaps[0].GapType != types.GapTypeOdometerRollover {
		t.Errorf("persisted gap type = %q, want %q", result.Gaps[0].GapType, types.GapTypeOdometerRollover)
	}
}

func TestResolveGap(t *testing.T) {
	userID := uuid.New()
	gap := &types.MileageGap{
		ID:      uuid.New(),
		UserID:  userID,
		GapType: types.GapTypeDateGap,
		Status:  types.GapStatusOpen,
	}
	gapRepo := &fakeGapRepo{gaps: []*types.MileageGap{gap}}
	gs := newTestGapService(t, &fakeTripRepo{}, gapRepo)

	resolved, err := gs.ResolveGap(context.Background(), userID, gap.ID, "confirmed personal travel", userID)
	if err != nil {
		t.Fatalf("ResolveGap: %v", err)
	}
	if resolved.Status != types.GapStatusResolved {
		t.Errorf("status = %q, want %q", resolved.Status, types.GapStatusResolved)
	}
	if resolved.ResolvedAt == nil {
		t.Error("resolved_at not set")
	}
	if resolved.ResolvedBy == nil || *resolved.ResolvedBy != userID {
		t.Error("resolved_by not set to the resolver")
	}
	if resolved.ResolutionNotes != "confirmed personal travel" {
		t.Errorf("resolution notes = %q", resolved.ResolutionNotes)
	}
}

func TestResolveGapRequiresNotes(t *testing.T) {
	userID := uuid.New()
	gap := &types.MileageGap{ID: uuid.New(), UserID: userID, Status: types.GapStatusOpen}
	gapRepo := &fakeGapRepo{gaps: []*types.MileageGap{gap}}
	gs := newTestGapService(t, &fakeTripRepo{}, gapRepo)

	_, err := gs.ResolveGap(context.Background(), userID, gap.ID, "   ", userID)
	if apierr.CodeOf(err) != apierr.CodeValidation {
		t.Fatalf("expected validation error for blank notes, got %v", err)
	}
	if gap.Status != types.GapStatusOpen {
		t.Error("gap status changed despite rejected resolution")
	}
}

func TestResolveGapUnknownID(t *testing.T) {
	gs := newTestGapService(t, &fakeTripRepo{}, &fakeGapRepo{})
	_, err := gs.ResolveGap(context.Background(), uuid.New(), uuid.New(), "notes", uuid.New())
	if apierr.CodeOf(err) != apierr.CodeNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestResolveGapForeignUser(t *testing.T) {
	owner := uuid.New()
	gap := &types.MileageGap{ID: uuid.New(), UserID: owner, Status: types.GapStatusOpen}
	gapRepo := &fakeGapRepo{gaps: []*types.MileageGap{gap}}
	gs := newTestGapService(t, &fakeTripRepo{}, gapRepo)

	_, err := gs.ResolveGap(context.Background(), uuid.New(), gap.ID, "notes", uuid.New())
	if apierr.CodeOf(err) != apierr.CodeNotFound {
		t.Fatalf("expected not_found for another user's gap, got %v", err)
	}
}
